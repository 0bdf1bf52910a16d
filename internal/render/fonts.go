package render

import (
	"errors"
	"io/fs"
	"os"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// loadFont parses the TrueType file at path. An empty or missing path falls
// back to the bundled Go Regular face.
func loadFont(path, role string, logger *zap.Logger) (*truetype.Font, error) {
	if path == "" {
		return truetype.Parse(goregular.TTF)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("font file not found, using fallback face", zap.String("role", role), zap.String("path", path))
		return truetype.Parse(goregular.TTF)
	}
	if err != nil {
		return nil, &Error{Message: "failed to read " + role + " font " + path, Cause: err}
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, &Error{Message: "failed to parse " + role + " font " + path, Cause: err}
	}
	return f, nil
}

type faceKey struct {
	font *truetype.Font
	size int
}

// faceCache builds faces on demand. truetype faces keep a glyph cache and
// are not safe for concurrent use, so each render call owns its own cache.
type faceCache map[faceKey]font.Face

func (c faceCache) face(f *truetype.Font, size float64) font.Face {
	key := faceKey{font: f, size: int(size)}
	if face, ok := c[key]; ok {
		return face
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    float64(key.size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	c[key] = face
	return face
}
