// Command panerender builds one layout from a layouts file, optionally
// scrolls it and moves the pointer, and writes the result as PNG and HTML.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dgnsrekt/tv_panesync/internal/layout"
	"github.com/dgnsrekt/tv_panesync/internal/render"
	"github.com/dgnsrekt/tv_panesync/internal/series"
	"github.com/dgnsrekt/tv_panesync/internal/service"
	"github.com/dgnsrekt/tv_panesync/internal/storage"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "panerender failed: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	layouts string
	name    string
	data    string
	png     string
	html    string
	pane    string
	window  string
	cursor  float64
	debug   bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("panerender", flag.ContinueOnError)
	fs.StringVar(&o.layouts, "layouts", "./config/layouts.yaml", "layouts YAML file")
	fs.StringVar(&o.name, "name", "", "layout name (default: first layout in the file)")
	fs.StringVar(&o.data, "data", "./data", "directory holding the series files")
	fs.StringVar(&o.png, "png", "", "write a PNG rendering to this path")
	fs.StringVar(&o.html, "html", "", "write a lightweight-charts page to this path")
	fs.StringVar(&o.pane, "pane", "", "pane the range and cursor apply to (default: first pane)")
	fs.StringVar(&o.window, "range", "", "visible logical range as from:to")
	fs.Float64Var(&o.cursor, "cursor", -1, "plot x to place the pointer at; negative leaves it off")
	fs.BoolVar(&o.debug, "debug", false, "log propagation at debug level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.png == "" && o.html == "" {
		return o, fmt.Errorf("nothing to write: pass -png and/or -html")
	}
	return o, nil
}

func parseWindow(s string) (series.LogicalRange, error) {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		return series.LogicalRange{}, fmt.Errorf("range %q: want from:to", s)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(from), 64)
	if err != nil {
		return series.LogicalRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(to), 64)
	if err != nil {
		return series.LogicalRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	r := series.LogicalRange{From: f, To: t}
	if err := r.Check(); err != nil {
		return series.LogicalRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	return r, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cat, err := layout.Load(o.layouts)
	if err != nil {
		return err
	}
	if o.name == "" {
		names := cat.Names()
		if len(names) == 0 {
			return fmt.Errorf("%s defines no layouts", o.layouts)
		}
		o.name = names[0]
	}
	measurer, err := render.NewFontMeasurer()
	if err != nil {
		return err
	}

	svc := service.New(service.Options{
		Catalog:  cat,
		Loader:   storage.NewSeriesLoader(o.data),
		Measurer: measurer,
	})
	defer svc.Close()

	info, err := svc.CreateLayout(ctx, service.CreateRequest{Name: o.name})
	if err != nil {
		return err
	}
	pane := o.pane
	if pane == "" {
		pane = info.Panes[0].ID
	}
	if o.window != "" {
		r, err := parseWindow(o.window)
		if err != nil {
			return err
		}
		if _, err := svc.SetRange(ctx, info.ID, pane, r); err != nil {
			return err
		}
	}
	if o.cursor >= 0 {
		x := o.cursor
		if _, err := svc.MoveCursor(ctx, info.ID, pane, service.CursorRequest{X: &x}); err != nil {
			return err
		}
	}

	if o.png != "" {
		img, err := svc.RenderPNG(ctx, info.ID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.png, img.PNG, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.png, err)
		}
		_, _ = fmt.Fprintf(stdout, "wrote %s (%dx%d)\n", o.png, img.Width, img.Height)
	}
	if o.html != "" {
		page, err := svc.ExportHTML(ctx, info.ID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.html, page, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.html, err)
		}
		_, _ = fmt.Fprintf(stdout, "wrote %s\n", o.html)
	}
	return nil
}
