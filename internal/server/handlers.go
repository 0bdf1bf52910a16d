package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/hadith"
	"github.com/jonathan/daily-ayat-hadith/internal/pipeline"
	"github.com/jonathan/daily-ayat-hadith/internal/progress"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// StatusResponse represents the response for /status
type StatusResponse struct {
	Progress types.ProgressState `json:"progress"`
	Sources  hadith.SourceInfo   `json:"sources"`
	Today    string              `json:"today"`
	Pending  bool                `json:"pending"`
}

// PreviewResponse represents the response for /preview
type PreviewResponse struct {
	AyahReference   string                   `json:"ayah_reference"`
	Ayah            *types.CombinedVerseUnit `json:"ayah"`
	HadithReference string                   `json:"hadith_reference"`
	Hadith          *types.HadithRecord      `json:"hadith"`
}

// GenerateRequest represents the optional request body for /generate
type GenerateRequest struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
}

// GenerateResponse represents the response for /generate
type GenerateResponse struct {
	RunID           string   `json:"run_id"`
	Date            string   `json:"date"`
	Status          string   `json:"status"`
	AyahReference   string   `json:"ayah_reference,omitempty"`
	HadithReference string   `json:"hadith_reference,omitempty"`
	Files           []string `json:"files,omitempty"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports the cursor and whether today still needs a run
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	today := time.Now().Format(progress.DateLayout)
	pending, err := s.deps.Tracker.ShouldGenerate(today)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, StatusResponse{
		Progress: s.deps.Tracker.State(),
		Sources:  s.sources,
		Today:    today,
		Pending:  pending,
	})
}

// handlePreview selects the next content without advancing
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	result, err := pipeline.Preview(r.Context(), s.deps, s.opts)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, PreviewResponse{
		AyahReference:   result.Ayah.Reference(),
		Ayah:            result.Ayah,
		HadithReference: types.HadithBlock(result.Hadith, s.opts.Collection, time.Time{}).Reference,
		Hadith:          result.Hadith,
	})
}

// handleGenerate runs the pipeline for the requested date
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r.Body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := s.generate(r.Context(), req, nil)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, s.generateResponse(result))
}

// handleGenerateStream runs the pipeline and streams progress via SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(r.Body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.generate(r.Context(), req, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			s.logger.Warn("failed to write SSE event", zap.Error(err))
		}
	})
	if err != nil {
		sse.WriteError(err)
		return
	}
	_ = sse.WriteEvent("complete", s.generateResponse(result))
}

// handleManifest returns the manifest of a published date
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if err := progress.ValidateDate(date); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := os.ReadFile(filepath.Join(s.opts.OutputDir, date, pipeline.ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		s.errorResponse(w, http.StatusNotFound, "Nothing generated for "+date)
		return
	}
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleOutputFile serves one image of a published date
func (s *Server) handleOutputFile(w http.ResponseWriter, r *http.Request) {
	date, file := r.PathValue("date"), r.PathValue("file")
	if err := progress.ValidateDate(date); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if file != filepath.Base(file) || !strings.EqualFold(filepath.Ext(file), ".png") {
		s.errorResponse(w, http.StatusBadRequest, "Invalid file name")
		return
	}
	path := filepath.Join(s.opts.OutputDir, date, file)
	if _, err := os.Stat(path); err != nil {
		s.errorResponse(w, http.StatusNotFound, "File not found")
		return
	}
	http.ServeFile(w, r, path)
}

// generate serializes runs; a concurrent request gets ErrBusy.
func (s *Server) generate(ctx context.Context, req GenerateRequest, onProgress pipeline.ProgressCallback) (*pipeline.Result, error) {
	if !s.generating.TryLock() {
		return nil, ErrBusy
	}
	defer s.generating.Unlock()

	opts := s.opts
	opts.OnProgress = onProgress
	opts.Date = time.Now()
	if req.Date != "" {
		if err := progress.ValidateDate(req.Date); err != nil {
			return nil, err
		}
		date, err := time.ParseInLocation(progress.DateLayout, req.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", types.ErrValidation, err)
		}
		opts.Date = date
	}
	return pipeline.Run(ctx, s.deps, opts)
}

func (s *Server) generateResponse(result *pipeline.Result) GenerateResponse {
	resp := GenerateResponse{
		RunID:  result.RunID.String(),
		Date:   result.Date,
		Status: "generated",
	}
	if result.Skipped {
		resp.Status = "skipped"
		return resp
	}
	resp.AyahReference = result.Ayah.Reference()
	resp.HadithReference = types.HadithBlock(result.Hadith, s.opts.Collection, time.Time{}).Reference
	for _, path := range result.Files {
		resp.Files = append(resp.Files, filepath.Base(path))
	}
	return resp
}

func decodeGenerateRequest(body io.Reader) (GenerateRequest, error) {
	var req GenerateRequest
	if body == nil {
		return req, nil
	}
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}
