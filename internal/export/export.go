// Package export writes a synchronized layout as a standalone HTML page
// driven by TradingView lightweight-charts. The page wires range and
// crosshair synchronization between its charts the same way the server does.
package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/dgnsrekt/tv_panesync/internal/engine"
	"github.com/dgnsrekt/tv_panesync/internal/overlay"
	"github.com/dgnsrekt/tv_panesync/internal/series"
)

// ScriptURL is the lightweight-charts build the page loads.
const ScriptURL = "https://unpkg.com/lightweight-charts@4.1.3/dist/lightweight-charts.standalone.production.js"

// Pane is what the exporter reads from a synchronized pane.
type Pane interface {
	ID() string
	Title() string
	Container() *engine.Container
	Chart() engine.Chart
	Series() engine.Series
	Geometry() engine.Geometry
	Points() []series.Point
	Labels() *overlay.Manager
	Markers() *overlay.Manager
}

// Document is the template input.
type Document struct {
	Title     string
	ScriptURL string
	Panes     []PaneDoc
}

// PaneDoc is one chart of the page.
type PaneDoc struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Method       string               `json:"method"`
	Width        int                  `json:"width"`
	Height       int                  `json:"height"`
	Chart        map[string]any       `json:"chart"`
	Series       map[string]any       `json:"series"`
	Data         json.RawMessage      `json:"data"`
	VisibleRange *series.LogicalRange `json:"visibleRange,omitempty"`
	Labels       bool                 `json:"labels"`
	Markers      bool                 `json:"markers"`
	Format       string               `json:"format,omitempty"`
}

var addMethods = map[engine.Geometry]string{
	engine.GeometryArea:        "addAreaSeries",
	engine.GeometryBar:         "addBarSeries",
	engine.GeometryBaseline:    "addBaselineSeries",
	engine.GeometryCandlestick: "addCandlestickSeries",
	engine.GeometryHistogram:   "addHistogramSeries",
	engine.GeometryLine:        "addLineSeries",
	// Step lines are line series with step interpolation in their options.
	engine.GeometryStepLine: "addLineSeries",
}

type optionsSource interface {
	Options() engine.ChartOptions
}

// Build converts live panes into a document. formats maps pane ids to their
// fmt price pattern. Closed panes are left out.
func Build(title string, panes []Pane, formats map[string]string) (Document, error) {
	doc := Document{Title: title, ScriptURL: ScriptURL}
	for _, p := range panes {
		ch := p.Chart()
		if ch == nil {
			continue
		}
		method, ok := addMethods[p.Geometry()]
		if !ok {
			return Document{}, fmt.Errorf("pane %s: unsupported geometry %q", p.ID(), p.Geometry())
		}
		data, err := series.EncodePoints(p.Points())
		if err != nil {
			return Document{}, fmt.Errorf("pane %s: %w", p.ID(), err)
		}
		opts := engine.DefaultChartOptions()
		if o, ok := ch.(optionsSource); ok {
			opts = o.Options()
		}
		var seriesOpts engine.SeriesOptions
		if s := p.Series(); s != nil {
			seriesOpts = s.Options()
		}
		c := p.Container()
		doc.Panes = append(doc.Panes, PaneDoc{
			ID:           p.ID(),
			Title:        p.Title(),
			Method:       method,
			Width:        c.Width,
			Height:       c.Height,
			Chart:        chartJS(opts, c),
			Series:       seriesJS(seriesOpts),
			Data:         data,
			VisibleRange: ch.VisibleRange(),
			Labels:       p.Labels() != nil,
			Markers:      p.Markers() != nil,
			Format:       formats[p.ID()],
		})
	}
	if len(doc.Panes) == 0 {
		return Document{}, fmt.Errorf("nothing to export")
	}
	return doc, nil
}

// Write renders the page.
func Write(w io.Writer, doc Document) error {
	if doc.ScriptURL == "" {
		doc.ScriptURL = ScriptURL
	}
	return pageTmpl.Execute(w, doc)
}

func chartJS(o engine.ChartOptions, c *engine.Container) map[string]any {
	return map[string]any{
		"width":  c.Width,
		"height": c.Height,
		"layout": map[string]any{
			"background": map[string]any{"color": o.Layout.Background},
			"textColor":  o.Layout.TextColor,
		},
		"grid": map[string]any{
			"vertLines": map[string]any{"color": o.Grid.VertLinesColor},
			"horzLines": map[string]any{"color": o.Grid.HorzLinesColor},
		},
		"timeScale": map[string]any{
			"visible":     o.TimeAxisVisible(),
			"borderColor": o.TimeScale.BorderColor,
		},
		"rightPriceScale": map[string]any{
			"borderColor":  o.RightPriceScale.BorderColor,
			"minimumWidth": o.RightPriceScale.MinimumWidth,
		},
	}
}

func seriesJS(o engine.SeriesOptions) map[string]any {
	out := map[string]any{}
	set := func(key, v string) {
		if v != "" {
			out[key] = v
		}
	}
	set("color", o.Color)
	set("lineColor", o.LineColor)
	set("topColor", o.TopColor)
	set("bottomColor", o.BottomColor)
	set("upColor", o.UpColor)
	set("downColor", o.DownColor)
	if o.LineWidth > 0 {
		out["lineWidth"] = o.LineWidth
	}
	if o.LineType != engine.LineTypeSimple {
		out["lineType"] = int(o.LineType)
	}
	return out
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width,initial-scale=1.0">
	<title>{{.Title}}</title>
	<script src="{{.ScriptURL}}"></script>
	<style>
		body { margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Trebuchet MS', Roboto, Ubuntu, sans-serif; }
		.pane { position: relative; }
		.pane-title { position: absolute; left: 8px; top: 8px; z-index: 3; font-size: 13px; font-weight: 600; }
		.overlay { position: absolute; z-index: 2; pointer-events: none; font: 12px monospace; }
		.overlay.label { padding: 4px; background: #fff; border: 1px solid currentColor; border-radius: 3px; white-space: nowrap; }
		.overlay.marker { width: 8px; height: 8px; border-radius: 50%; background: currentColor; }
	</style>
</head>
<body>
{{range .Panes}}<div class="pane" id="{{.ID}}" style="width: {{.Width}}px; height: {{.Height}}px"><div class="pane-title">{{.Title}}</div></div>
{{end}}<script type="text/javascript">
const defs = {{.Panes}};

function formatter(pattern) {
	const m = /%(?:\.(\d+))?f/.exec(pattern || '');
	if (!m) {
		return null;
	}
	const digits = m[1] === undefined ? 6 : Number(m[1]);
	return (v) => pattern.replace(m[0], v.toFixed(digits)).replace('%%', '%');
}

const panes = defs.map((def) => {
	const container = document.getElementById(def.id);
	const chart = LightweightCharts.createChart(container, def.chart);
	const options = Object.assign({}, def.series);
	const format = formatter(def.format);
	if (format) {
		options.priceFormat = { type: 'custom', formatter: format };
	}
	const series = chart[def.method](options);
	series.setData(def.data);
	if (def.visibleRange) {
		chart.timeScale().setVisibleLogicalRange(def.visibleRange);
	}
	return { def, container, chart, series, format, overlays: [] };
});

function price(point) {
	if (point === undefined) {
		return undefined;
	}
	return point.value !== undefined ? point.value : point.close;
}

function drawOverlays(pane) {
	pane.overlays.forEach((el) => el.remove());
	pane.overlays = [];
	const color = pane.def.series.lineColor || pane.def.series.color || '#2962FF';
	pane.def.data.forEach((point) => {
		const p = price(point);
		if (p === undefined) {
			return;
		}
		const x = pane.chart.timeScale().timeToCoordinate(point.time);
		const y = pane.series.priceToCoordinate(p);
		if (x === null || y === null) {
			return;
		}
		if (pane.def.markers) {
			const el = document.createElement('div');
			el.className = 'overlay marker';
			el.style.color = color;
			pane.container.appendChild(el);
			el.style.left = (x - el.offsetWidth / 2) + 'px';
			el.style.top = (y - el.offsetHeight / 2) + 'px';
			pane.overlays.push(el);
		}
		if (pane.def.labels) {
			const el = document.createElement('div');
			el.className = 'overlay label';
			el.style.color = color;
			el.textContent = pane.format ? pane.format(p) : String(p);
			pane.container.appendChild(el);
			el.style.left = (x - el.offsetWidth / 2) + 'px';
			el.style.top = (y - el.offsetHeight - 6) + 'px';
			pane.overlays.push(el);
		}
	});
}

let syncing = false;
panes.forEach((source) => {
	source.chart.timeScale().subscribeVisibleLogicalRangeChange(() => drawOverlays(source));
	drawOverlays(source);
	panes.forEach((target) => {
		if (target === source) {
			return;
		}
		source.chart.timeScale().subscribeVisibleLogicalRangeChange((range) => {
			if (syncing || range === null) {
				return;
			}
			syncing = true;
			try {
				target.chart.timeScale().setVisibleLogicalRange(range);
			} finally {
				syncing = false;
			}
		});
		source.chart.subscribeCrosshairMove((param) => {
			const matched = param.seriesData ? price(param.seriesData.get(source.series)) : undefined;
			if (matched !== undefined) {
				target.chart.setCrosshairPosition(matched, param.time, target.series);
				return;
			}
			if (param.point) {
				const t = target.chart.timeScale().coordinateToTime(param.point.x);
				if (t !== null) {
					target.chart.setCrosshairPosition(0, t, target.series);
					return;
				}
			}
			target.chart.clearCrosshairPosition();
		});
	});
});
</script>
</body>
</html>
`))
