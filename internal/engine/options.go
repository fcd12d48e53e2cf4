package engine

// PriceFormatter renders a price for labels and axis text.
type PriceFormatter func(price float64) string

// SeriesOptions style a series. Zero values mean "engine default".
type SeriesOptions struct {
	Color       string         `json:"color,omitempty" yaml:"color"`
	LineColor   string         `json:"line_color,omitempty" yaml:"line_color"`
	TopColor    string         `json:"top_color,omitempty" yaml:"top_color"`
	BottomColor string         `json:"bottom_color,omitempty" yaml:"bottom_color"`
	UpColor     string         `json:"up_color,omitempty" yaml:"up_color"`
	DownColor   string         `json:"down_color,omitempty" yaml:"down_color"`
	LineWidth   int            `json:"line_width,omitempty" yaml:"line_width"`
	LineType    LineType       `json:"line_type,omitempty" yaml:"-"`
	Formatter   PriceFormatter `json:"-" yaml:"-"`
}

// WithSteps returns a copy of o with step interpolation switched on. Every
// other field keeps the caller's value.
func (o SeriesOptions) WithSteps() SeriesOptions {
	o.LineType = LineTypeWithSteps
	return o
}

// MainColor is the colour the series is drawn with.
func (o SeriesOptions) MainColor() string {
	switch {
	case o.LineColor != "":
		return o.LineColor
	case o.Color != "":
		return o.Color
	default:
		return "#2962FF"
	}
}

// Layout holds background and text colours.
type Layout struct {
	Background string `json:"background,omitempty" yaml:"background"`
	TextColor  string `json:"text_color,omitempty" yaml:"text_color"`
}

// Grid toggles the background grid lines by colour.
type Grid struct {
	VertLinesColor string `json:"vert_lines_color,omitempty" yaml:"vert_lines_color"`
	HorzLinesColor string `json:"horz_lines_color,omitempty" yaml:"horz_lines_color"`
}

// TimeScale configures the horizontal axis.
type TimeScale struct {
	Visible     *bool  `json:"visible,omitempty" yaml:"visible"`
	BorderColor string `json:"border_color,omitempty" yaml:"border_color"`
	TextColor   string `json:"text_color,omitempty" yaml:"text_color"`
}

// PriceScale configures the vertical axis.
type PriceScale struct {
	BorderColor  string `json:"border_color,omitempty" yaml:"border_color"`
	TextColor    string `json:"text_color,omitempty" yaml:"text_color"`
	MinimumWidth int    `json:"minimum_width,omitempty" yaml:"minimum_width"`
}

// ChartOptions configure a chart instance.
type ChartOptions struct {
	Width           int        `json:"width,omitempty" yaml:"width"`
	Height          int        `json:"height,omitempty" yaml:"height"`
	Layout          Layout     `json:"layout,omitempty" yaml:"layout"`
	Grid            Grid       `json:"grid,omitempty" yaml:"grid"`
	TimeScale       TimeScale  `json:"time_scale,omitempty" yaml:"time_scale"`
	RightPriceScale PriceScale `json:"right_price_scale,omitempty" yaml:"right_price_scale"`
}

const (
	axisColor   = "#c8c8c8"
	transparent = "rgba(0, 0, 0, 0)"
)

// DefaultChartOptions are the options every pane starts from: white
// background, muted axis text, no grid and a hidden time axis.
func DefaultChartOptions() ChartOptions {
	hidden := false
	return ChartOptions{
		Layout: Layout{Background: "white", TextColor: axisColor},
		Grid:   Grid{VertLinesColor: transparent, HorzLinesColor: transparent},
		TimeScale: TimeScale{
			Visible:     &hidden,
			BorderColor: transparent,
			TextColor:   axisColor,
		},
		RightPriceScale: PriceScale{
			BorderColor:  transparent,
			TextColor:    axisColor,
			MinimumWidth: 65,
		},
	}
}

// Merge overlays every non-zero field of override onto o.
func (o ChartOptions) Merge(override ChartOptions) ChartOptions {
	out := o
	out.Width = pickInt(o.Width, override.Width)
	out.Height = pickInt(o.Height, override.Height)
	out.Layout.Background = pick(o.Layout.Background, override.Layout.Background)
	out.Layout.TextColor = pick(o.Layout.TextColor, override.Layout.TextColor)
	out.Grid.VertLinesColor = pick(o.Grid.VertLinesColor, override.Grid.VertLinesColor)
	out.Grid.HorzLinesColor = pick(o.Grid.HorzLinesColor, override.Grid.HorzLinesColor)
	if override.TimeScale.Visible != nil {
		v := *override.TimeScale.Visible
		out.TimeScale.Visible = &v
	}
	out.TimeScale.BorderColor = pick(o.TimeScale.BorderColor, override.TimeScale.BorderColor)
	out.TimeScale.TextColor = pick(o.TimeScale.TextColor, override.TimeScale.TextColor)
	out.RightPriceScale.BorderColor = pick(o.RightPriceScale.BorderColor, override.RightPriceScale.BorderColor)
	out.RightPriceScale.TextColor = pick(o.RightPriceScale.TextColor, override.RightPriceScale.TextColor)
	out.RightPriceScale.MinimumWidth = pickInt(o.RightPriceScale.MinimumWidth, override.RightPriceScale.MinimumWidth)
	return out
}

// TimeAxisVisible reports whether the time axis is drawn.
func (o ChartOptions) TimeAxisVisible() bool {
	return o.TimeScale.Visible == nil || *o.TimeScale.Visible
}

func pick(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

func pickInt(base, override int) int {
	if override != 0 {
		return override
	}
	return base
}
