package render

import (
	"fmt"
	"sync"

	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	fontSize     = 12.0
	labelPadding = 4.0
)

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

func parsedMono() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
		if monoErr != nil {
			monoErr = fmt.Errorf("failed to parse font: %w", monoErr)
		}
	})
	return monoFont, monoErr
}

// NewFace returns a Go Mono face at size points.
func NewFace(size float64) (font.Face, error) {
	f, err := parsedMono()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// FontMeasurer sizes overlay elements with the face the renderer draws them
// in, so label placement matches the PNG exactly.
type FontMeasurer struct {
	face    font.Face
	padding float64
	mu      sync.Mutex
}

// NewFontMeasurer builds a measurer for the renderer's label face.
func NewFontMeasurer() (*FontMeasurer, error) {
	face, err := NewFace(fontSize)
	if err != nil {
		return nil, err
	}
	return &FontMeasurer{face: face, padding: labelPadding}, nil
}

func (m *FontMeasurer) Measure(kind overlay.Kind, text string) overlay.Size {
	if kind == overlay.KindMarker {
		return overlay.Size{W: overlay.MarkerSize, H: overlay.MarkerSize}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w := font.MeasureString(m.face, text).Ceil()
	h := m.face.Metrics().Height.Ceil()
	return overlay.Size{W: float64(w) + 2*m.padding, H: float64(h) + 2*m.padding}
}
