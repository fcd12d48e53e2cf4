// Package overlay keeps auxiliary screen-space elements (value labels, point
// markers, pane titles) positioned over a pane's plotting surface.
//
// Elements are plain descriptors. Whatever draws the pane (the PNG renderer,
// the HTML export, an API client) reads them from the pane's Surface.
package overlay

import (
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// Kind is the visual kind of an overlay element.
type Kind string

const (
	KindLabel  Kind = "label"
	KindMarker Kind = "marker"
	KindTitle  Kind = "title"
)

// Position is a top-left corner in plot pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a rendered element size in pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Element is one overlay descriptor on a surface.
type Element struct {
	Kind       Kind         `json:"kind"`
	Tag        string       `json:"tag"`
	Anchor     series.Point `json:"-"`
	AnchorTime series.Time  `json:"anchor_time,omitempty"`
	Position   Position     `json:"position"`
	Size       Size         `json:"size"`
	Text       string       `json:"text,omitempty"`
	Color      string       `json:"color,omitempty"`
}

// Measurer reports the size an element takes once rendered.
type Measurer interface {
	Measure(kind Kind, text string) Size
}

// FixedMeasurer approximates text size with a monospace cell.
type FixedMeasurer struct {
	CharWidth  float64
	LineHeight float64
	Padding    float64
}

// DefaultMeasurer matches a 12px monospace face with a small padding.
var DefaultMeasurer = FixedMeasurer{CharWidth: 7.2, LineHeight: 14, Padding: 4}

func (m FixedMeasurer) Measure(kind Kind, text string) Size {
	if kind == KindMarker {
		return Size{W: MarkerSize, H: MarkerSize}
	}
	return Size{
		W: float64(len([]rune(text)))*m.CharWidth + 2*m.Padding,
		H: m.LineHeight + 2*m.Padding,
	}
}

// Surface is the overlay layer of one pane. Elements are owned by the
// surface and mutated only by the manager whose tag they carry.
type Surface struct {
	measure  Measurer
	elements []*Element
}

// NewSurface creates an empty surface. A nil measurer uses DefaultMeasurer.
func NewSurface(m Measurer) *Surface {
	if m == nil {
		m = DefaultMeasurer
	}
	return &Surface{measure: m}
}

// Insert adds e to the surface and measures it. The returned element is the
// surface's copy, so its position can be corrected once its size is known.
func (s *Surface) Insert(e Element) *Element {
	el := e
	el.Size = s.measure.Measure(e.Kind, e.Text)
	s.elements = append(s.elements, &el)
	return &el
}

// RemoveTagged drops every element carrying tag and returns how many were
// removed.
func (s *Surface) RemoveTagged(tag string) int {
	kept := s.elements[:0]
	removed := 0
	for _, el := range s.elements {
		if el.Tag == tag {
			removed++
			continue
		}
		kept = append(kept, el)
	}
	for i := len(kept); i < len(s.elements); i++ {
		s.elements[i] = nil
	}
	s.elements = kept
	return removed
}

// Tagged returns copies of the elements carrying tag, in insertion order.
func (s *Surface) Tagged(tag string) []Element {
	var out []Element
	for _, el := range s.elements {
		if el.Tag == tag {
			out = append(out, *el)
		}
	}
	return out
}

// Elements returns copies of every element on the surface.
func (s *Surface) Elements() []Element {
	out := make([]Element, 0, len(s.elements))
	for _, el := range s.elements {
		out = append(out, *el)
	}
	return out
}

// Clear removes everything.
func (s *Surface) Clear() {
	s.elements = nil
}

// Len is the number of elements on the surface.
func (s *Surface) Len() int { return len(s.elements) }
