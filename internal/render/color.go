package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var named = map[string]color.RGBA{
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"transparent": {0, 0, 0, 0},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
}

// parseColor understands the colour forms chart options use: #rgb, #rrggbb,
// #rrggbbaa, rgb(), rgba() and a few names.
func parseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(s, "rgb") {
		return parseFunc(s)
	}
	return color.RGBA{}, fmt.Errorf("unsupported colour %q", s)
}

func parseHex(h string) (color.RGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("bad hex colour %q", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad hex colour %q: %w", h, err)
	}
	return premultiply(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func parseFunc(s string) (color.RGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.RGBA{}, fmt.Errorf("bad colour %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("bad colour %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return color.RGBA{}, fmt.Errorf("bad colour %q", s)
		}
		ch[i] = uint8(n)
	}
	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.RGBA{}, fmt.Errorf("bad colour %q", s)
		}
		alpha = a
	}
	return premultiply(ch[0], ch[1], ch[2], uint8(alpha*255+0.5)), nil
}

// premultiply builds a color.RGBA, which stores alpha-premultiplied channels.
func premultiply(r, g, b, a uint8) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 255),
		G: uint8(uint16(g) * uint16(a) / 255),
		B: uint8(uint16(b) * uint16(a) / 255),
		A: a,
	}
}

// colorOr parses s, falling back when it is empty or unreadable.
func colorOr(s string, fallback color.RGBA) color.RGBA {
	if s == "" {
		return fallback
	}
	c, err := parseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

func withAlpha(c color.RGBA, alpha float64) color.NRGBA {
	if c.A == 0 {
		return color.NRGBA{}
	}
	// Un-premultiply before applying the new alpha.
	return color.NRGBA{
		R: uint8(uint32(c.R) * 255 / uint32(c.A)),
		G: uint8(uint32(c.G) * 255 / uint32(c.A)),
		B: uint8(uint32(c.B) * 255 / uint32(c.A)),
		A: uint8(alpha * float64(c.A)),
	}
}
