package service

import (
	"time"

	"github.com/dgnsrekt/tv_panesync/internal/chartsync"
	"github.com/dgnsrekt/tv_panesync/internal/layout"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// CreateRequest picks a catalog layout by name or carries an inline
// definition. Definition wins when both are set.
type CreateRequest struct {
	Name       string             `json:"name,omitempty" doc:"Layout name from the layouts catalog"`
	Definition *layout.Definition `json:"definition,omitempty" doc:"Inline layout definition"`
}

// LayoutInfo describes a live layout.
type LayoutInfo struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
	Panes     []PaneInfo  `json:"panes"`
	Edges     int         `json:"edges"`
	LastRange *RangeEvent `json:"last_range,omitempty" doc:"Latest range pushed between panes"`
}

// PaneInfo describes one live pane.
type PaneInfo struct {
	ID           string               `json:"id"`
	Title        string               `json:"title,omitempty"`
	Geometry     string               `json:"geometry"`
	Width        int                  `json:"width"`
	Height       int                  `json:"height"`
	Points       int                  `json:"points"`
	VisibleRange *series.LogicalRange `json:"visible_range,omitempty"`
	Labels       bool                 `json:"labels"`
	Markers      bool                 `json:"markers"`
	Overlays     int                  `json:"overlays"`
}

// EdgeInfo is one directed synchronization edge.
type EdgeInfo struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// RangeEvent is a visible range pushed along an edge.
type RangeEvent struct {
	Source string              `json:"source"`
	Target string              `json:"target"`
	Range  series.LogicalRange `json:"range"`
	At     time.Time           `json:"at"`
}

// CursorEvent is a cursor action applied along an edge.
type CursorEvent struct {
	Source    string              `json:"source"`
	Target    string              `json:"target"`
	Action    string              `json:"action"`
	Indicator chartsync.Indicator `json:"indicator"`
}

// RangeResult is every pane's visible range after a change settled.
type RangeResult struct {
	Pane      string                          `json:"pane"`
	Range     *series.LogicalRange            `json:"range,omitempty"`
	Panes     map[string]*series.LogicalRange `json:"panes"`
	LastRange *RangeEvent                     `json:"last_range,omitempty"`
}

// CursorRequest moves the pointer to X on a pane, or takes it off the pane
// when Leave is set.
type CursorRequest struct {
	X     *float64 `json:"x,omitempty" doc:"Plot x coordinate in pixels"`
	Leave bool     `json:"leave,omitempty" doc:"Pointer leaves the pane"`
}

// PaneCursor is the cursor indicator state of one pane.
type PaneCursor struct {
	Pane    string      `json:"pane"`
	Source  bool        `json:"source,omitempty"`
	Visible bool        `json:"visible"`
	Price   float64     `json:"price,omitempty"`
	Time    series.Time `json:"time,omitempty"`
}

// CursorResult lists every pane's indicator after a cursor move.
type CursorResult struct {
	Source string       `json:"source"`
	Panes  []PaneCursor `json:"panes"`
}

// OverlaySummary is the overlay count per pane, published after ranges move.
type OverlaySummary struct {
	Pane     string `json:"pane"`
	Labels   int    `json:"labels"`
	Markers  int    `json:"markers"`
	Elements int    `json:"elements"`
}
