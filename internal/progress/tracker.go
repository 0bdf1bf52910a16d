// Package progress owns the durable generation cursor: the last date a run
// completed and the last verse and hadith it published.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/daily-ayat-hadith/internal/schemas"
	"github.com/jonathan/daily-ayat-hadith/internal/types"
)

// DateLayout is the ISO calendar date format of LastDate.
const DateLayout = "2006-01-02"

// Tracker reads and advances the cursor file. Only one process may own a
// state file at a time.
type Tracker struct {
	path   string
	mu     sync.Mutex
	state  types.ProgressState
	logger *zap.Logger
}

// Open loads the state at path. A missing file is created with the initial
// state; an unreadable or invalid file is a CorruptStateError.
func Open(path string, logger *zap.Logger) (*Tracker, error) {
	if path == "" {
		return nil, &Error{Message: "state file path is empty", Cause: types.ErrValidation}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.state = types.InitialProgressState()
		if err := t.write(t.state); err != nil {
			return nil, err
		}
		logger.Info("created progress state", zap.String("path", path))
		return t, nil
	}
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read progress state %s", path), Cause: err}
	}

	state, err := decode(data)
	if err != nil {
		return nil, &CorruptStateError{Path: path, Cause: err}
	}
	t.state = state
	logger.Debug("loaded progress state",
		zap.String("last_date", state.LastDate),
		zap.Stringer("last_position", state.LastPosition()),
		zap.Int("last_hadith", state.LastHadith),
	)
	return t, nil
}

// Create writes the initial state to path without reading what is there,
// replacing a corrupt file.
func Create(path string, logger *zap.Logger) (*Tracker, error) {
	if path == "" {
		return nil, &Error{Message: "state file path is empty", Cause: types.ErrValidation}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{path: path, logger: logger}
	if err := t.Reset(); err != nil {
		return nil, err
	}
	return t, nil
}

func decode(data []byte) (types.ProgressState, error) {
	var state types.ProgressState
	if err := schemas.Validate(schemas.Progress, data); err != nil {
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, err
	}
	if err := ValidateDate(state.LastDate); err != nil {
		return state, err
	}
	if state.ContentType == "" {
		state.ContentType = types.ContentHadith
	}
	return state, nil
}

// Path returns the state file location.
func (t *Tracker) Path() string {
	return t.path
}

// State returns a copy of the current cursor.
func (t *Tracker) State() types.ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// ShouldGenerate reports whether date is strictly after the last completed date.
// Dates compare lexicographically, which matches calendar order for YYYY-MM-DD.
func (t *Tracker) ShouldGenerate(date string) (bool, error) {
	if err := ValidateDate(date); err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return date > t.state.LastDate, nil
}

// Advance records a successful run. The stored date only moves forward; the
// verse and hadith cursors are replaced. The file is rewritten atomically and
// the in-memory state changes only after the write succeeded.
func (t *Tracker) Advance(date, contentType string, pos types.VersePosition, hadith int) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	switch contentType {
	case types.ContentAyat, types.ContentHadith, types.ContentBoth:
	default:
		return &Error{Message: fmt.Sprintf("unknown content type %q", contentType), Cause: types.ErrValidation}
	}
	if pos.Surah < 1 || pos.Ayah < 0 || hadith < 0 {
		return &Error{Message: fmt.Sprintf("invalid cursor %s / hadith %d", pos, hadith), Cause: types.ErrValidation}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := types.ProgressState{
		LastDate:    t.state.LastDate,
		ContentType: contentType,
		LastSurah:   pos.Surah,
		LastAyah:    pos.Ayah,
		LastHadith:  hadith,
	}
	if date > next.LastDate {
		next.LastDate = date
	}
	if err := t.write(next); err != nil {
		return err
	}
	t.state = next
	t.logger.Info("advanced progress",
		zap.String("date", next.LastDate),
		zap.Stringer("position", pos),
		zap.Int("hadith", hadith),
	)
	return nil
}

// Reset rewinds the cursor to the initial state.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	initial := types.InitialProgressState()
	if err := t.write(initial); err != nil {
		return err
	}
	t.state = initial
	t.logger.Info("reset progress state", zap.String("path", t.path))
	return nil
}

// write replaces the state file through a temp file in the same directory.
func (t *Tracker) write(state types.ProgressState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &Error{Message: "failed to encode progress state", Cause: err}
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &Error{Message: fmt.Sprintf("failed to create state directory %s", dir), Cause: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return &Error{Message: "failed to create temp state file", Cause: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return &Error{Message: "failed to write progress state", Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &Error{Message: "failed to sync progress state", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Message: "failed to close progress state", Cause: err}
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		return &Error{Message: "failed to replace progress state", Cause: err}
	}
	return nil
}

// ValidateDate checks that date is a real YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return &Error{Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), Cause: types.ErrValidation}
	}
	return nil
}
