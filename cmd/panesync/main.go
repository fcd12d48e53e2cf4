package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgnsrekt/tv_panesync/internal/api"
	"github.com/dgnsrekt/tv_panesync/internal/browser"
	"github.com/dgnsrekt/tv_panesync/internal/config"
	"github.com/dgnsrekt/tv_panesync/internal/layout"
	"github.com/dgnsrekt/tv_panesync/internal/netutil"
	"github.com/dgnsrekt/tv_panesync/internal/relay"
	"github.com/dgnsrekt/tv_panesync/internal/render"
	"github.com/dgnsrekt/tv_panesync/internal/service"
	"github.com/dgnsrekt/tv_panesync/internal/snapshot"
	"github.com/dgnsrekt/tv_panesync/internal/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("panesync config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
		"layouts", cfg.LayoutsPath,
		"data_dir", cfg.DataDir,
		"snapshot_dir", cfg.SnapshotDir,
		"journal_dir", cfg.JournalDir,
		"cdp_url", cfg.CDPURL(),
		"browser_launch", cfg.BrowserLaunch,
	)

	catalog, err := loadCatalog(cfg.LayoutsPath)
	if err != nil {
		slog.Error("failed to load layouts", "path", cfg.LayoutsPath, "error", err)
		os.Exit(1)
	}

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	snapStore, err := snapshot.NewStore(cfg.SnapshotDir)
	if err != nil {
		slog.Error("failed to create snapshot store", "dir", cfg.SnapshotDir, "error", err)
		os.Exit(1)
	}

	measurer, err := render.NewFontMeasurer()
	if err != nil {
		slog.Error("failed to load overlay font", "error", err)
		os.Exit(1)
	}

	var launcher *browser.Launcher
	if cfg.BrowserLaunch {
		launcher = browser.NewLauncher(browser.Config{
			CDPAddress: cfg.CDPAddress,
			CDPPort:    cfg.CDPPort,
			ProfileDir: cfg.BrowserProfile,
			Headless:   true,
		})
		if err := launcher.Launch(context.Background()); err != nil {
			slog.Warn("browser launch failed, browser snapshots will fail", "error", err)
		}
		defer launcher.Stop()
	}

	journal := storage.NewJournal(cfg.JournalDir, cfg.JournalBufferSize, cfg.JournalMaxSizeMB)
	defer func() {
		if err := journal.Close(); err != nil {
			slog.Debug("journal close failed", "error", err)
		}
	}()

	broker := relay.NewBroker()
	svc := service.New(service.Options{
		Catalog:   catalog,
		Loader:    storage.NewSeriesLoader(cfg.DataDir),
		Snapshots: snapStore,
		Journal:   journal,
		Publisher: relay.NewPublisher(broker),
		Capturer:  browser.NewCapturer(cfg.CDPURL(), time.Duration(cfg.RenderTimeoutMS)*time.Millisecond),
		Measurer:  measurer,
	})
	defer svc.Close()

	h := api.NewServer(svc, broker)
	srv := &http.Server{Addr: bindAddr, Handler: h}

	go func() {
		slog.Info("panesync listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs", "layouts", len(catalog.Layouts))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("panesync server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("panesync shutdown failed", "error", err)
	}
}

// loadCatalog reads the layouts file. A missing file yields an empty
// catalog; inline definitions still work.
func loadCatalog(path string) (*layout.Catalog, error) {
	cat, err := layout.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("layouts file not found, starting with an empty catalog", "path", path)
		return &layout.Catalog{}, nil
	}
	return cat, err
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
