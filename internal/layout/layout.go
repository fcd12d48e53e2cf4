// Package layout reads synchronized layout definitions: which panes a layout
// has, where their series come from and how each pane is displayed.
package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/series"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth      = 865
	DefaultPaneHeight = 300
)

// Catalog is the top-level YAML document.
type Catalog struct {
	Layouts []Definition `yaml:"layouts" json:"layouts"`
}

// Definition describes one synchronized layout.
type Definition struct {
	Name       string              `yaml:"name" json:"name"`
	Width      int                 `yaml:"width" json:"width,omitempty"`
	PaneHeight int                 `yaml:"pane_height" json:"pane_height,omitempty"`
	Chart      engine.ChartOptions `yaml:"chart_options" json:"chart_options,omitempty"`
	Panes      []PaneSpec          `yaml:"panes" json:"panes"`
}

// PaneSpec describes one pane of a layout.
type PaneSpec struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title,omitempty"`
	Geometry string `yaml:"geometry" json:"geometry,omitempty"`
	// Data is a points file relative to the data directory.
	Data string `yaml:"data" json:"data,omitempty"`
	// Points holds inline points in the JSON shape of a data file.
	Points json.RawMessage `yaml:"-" json:"points,omitempty"`
	// Align fills the pane's missing times from the first pane with
	// whitespace so every pane shares one time axis.
	Align        bool                 `yaml:"align" json:"align,omitempty"`
	Labels       bool                 `yaml:"labels" json:"labels,omitempty"`
	Markers      bool                 `yaml:"markers" json:"markers,omitempty"`
	Format       string               `yaml:"format" json:"format,omitempty"`
	Height       int                  `yaml:"height" json:"height,omitempty"`
	VisibleRange *series.LogicalRange `yaml:"visible_range" json:"visible_range,omitempty"`
	Series       engine.SeriesOptions `yaml:"series_options" json:"series_options,omitempty"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("layout config: %w", err)
	}
	seen := make(map[string]bool, len(cat.Layouts))
	for i := range cat.Layouts {
		d := &cat.Layouts[i]
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("layout config: layouts[%d]: %w", i, err)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("layout config: duplicate layout name %q", d.Name)
		}
		seen[d.Name] = true
	}
	return &cat, nil
}

// Find returns the layout with the given name.
func (c *Catalog) Find(name string) (Definition, bool) {
	for _, d := range c.Layouts {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Names lists the layout names in file order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Layouts))
	for _, d := range c.Layouts {
		names = append(names, d.Name)
	}
	return names
}

// Validate checks a definition and fills in default sizes.
func (d *Definition) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return fmt.Errorf("missing name")
	}
	if d.Width <= 0 {
		d.Width = DefaultWidth
	}
	if d.PaneHeight <= 0 {
		d.PaneHeight = DefaultPaneHeight
	}
	if len(d.Panes) == 0 {
		return fmt.Errorf("layout %s: at least one pane is required", d.Name)
	}
	ids := make(map[string]bool, len(d.Panes))
	for i := range d.Panes {
		p := &d.Panes[i]
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return fmt.Errorf("layout %s: panes[%d] missing id", d.Name, i)
		}
		if ids[p.ID] {
			return fmt.Errorf("layout %s: duplicate pane id %q", d.Name, p.ID)
		}
		ids[p.ID] = true
		if p.Data == "" && len(p.Points) == 0 {
			return fmt.Errorf("layout %s: pane %s has neither data nor points", d.Name, p.ID)
		}
		if p.Geometry != "" {
			if _, ok := engine.ParseGeometry(p.Geometry); !ok {
				return fmt.Errorf("layout %s: pane %s: unknown geometry %q", d.Name, p.ID, p.Geometry)
			}
		}
		if _, err := p.Formatter(); err != nil {
			return fmt.Errorf("layout %s: pane %s: %w", d.Name, p.ID, err)
		}
		if r := p.VisibleRange; r != nil {
			if err := r.Check(); err != nil {
				return fmt.Errorf("layout %s: pane %s: visible %w", d.Name, p.ID, err)
			}
		}
	}
	return nil
}

// GeometryOrDefault resolves the pane geometry, AREA when unset.
func (p PaneSpec) GeometryOrDefault() engine.Geometry {
	if p.Geometry == "" {
		return engine.GeometryArea
	}
	g, _ := engine.ParseGeometry(p.Geometry)
	return g
}

// HeightOr returns the pane height or fallback when unset.
func (p PaneSpec) HeightOr(fallback int) int {
	if p.Height > 0 {
		return p.Height
	}
	return fallback
}

// Formatter turns the pane's fmt pattern into a price formatter. An empty
// pattern yields nil, meaning raw numbers.
func (p PaneSpec) Formatter() (engine.PriceFormatter, error) {
	pattern := p.Format
	if pattern == "" {
		return nil, nil
	}
	if probe := fmt.Sprintf(pattern, 1.0); strings.Contains(probe, "%!") {
		return nil, fmt.Errorf("format %q must hold exactly one float verb", pattern)
	}
	return func(price float64) string {
		return fmt.Sprintf(pattern, price)
	}, nil
}
