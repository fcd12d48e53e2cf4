package browser

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestLaunchArgs(t *testing.T) {
	cfg := Config{CDPAddress: "127.0.0.1", CDPPort: 9333, ProfileDir: "/tmp/p", WindowSize: "800,600"}
	args := launchArgs(cfg)
	for _, want := range []string{
		"--remote-debugging-port=9333",
		"--remote-debugging-address=127.0.0.1",
		"--user-data-dir=/tmp/p",
		"--window-size=800,600",
	} {
		if !slices.Contains(args, want) {
			t.Fatalf("launchArgs() = %v; missing %q", args, want)
		}
	}
	if slices.Contains(args, "--headless=new") {
		t.Fatalf("launchArgs() headless without Headless: %v", args)
	}
	if args[len(args)-1] != "about:blank" {
		t.Fatalf("last arg = %q; want about:blank", args[len(args)-1])
	}

	cfg.Headless = true
	if !slices.Contains(launchArgs(cfg), "--headless=new") {
		t.Fatalf("launchArgs() missing --headless=new")
	}
}

func TestNewLauncherDefaultsWindowSize(t *testing.T) {
	l := NewLauncher(Config{})
	if l.cfg.WindowSize != "1280,1024" {
		t.Fatalf("WindowSize = %q; want 1280,1024", l.cfg.WindowSize)
	}
	if l.cfg.StartTimeout != 15*time.Second {
		t.Fatalf("StartTimeout = %v; want 15s", l.cfg.StartTimeout)
	}
	if l.Running() {
		t.Fatalf("Running() = true before Launch")
	}
	l.Stop()
}

func TestLaunchSkipsWhenPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: port, ProfileDir: t.TempDir()})
	if err := l.Launch(context.Background()); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if l.Running() {
		t.Fatalf("Running() = true; want false when a browser already listens")
	}
}

func TestCaptureRejectsEmptyViewport(t *testing.T) {
	c := NewCapturer("http://127.0.0.1:1", time.Second)
	if _, err := c.Capture(context.Background(), []byte("<html></html>"), 0, 100); err == nil ||
		!strings.Contains(err.Error(), "invalid viewport") {
		t.Fatalf("Capture() error = %v; want invalid viewport", err)
	}
	if c.timeout != time.Second {
		t.Fatalf("timeout = %v; want 1s", c.timeout)
	}
	if NewCapturer("x", 0).timeout != 15*time.Second {
		t.Fatalf("default timeout not applied")
	}
}

func TestWaitForCDPReadsVersion(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			http.NotFound(w, r)
			return
		}
		calls++
		if calls == 1 {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"Browser":"HeadlessChrome/126.0","Protocol-Version":"1.3","webSocketDebuggerUrl":"ws://x/devtools/browser/1"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := waitForCDP(ctx, srv.URL)
	if err != nil {
		t.Fatalf("waitForCDP() error = %v", err)
	}
	if v.Browser != "HeadlessChrome/126.0" || v.ProtocolVersion != "1.3" || v.WebSocketDebuggerURL == "" {
		t.Fatalf("waitForCDP() = %+v; want decoded version", v)
	}
}

func TestWaitForCDPHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()
	if _, err := waitForCDP(ctx, srv.URL); err == nil || !strings.Contains(err.Error(), "/json/version") {
		t.Fatalf("waitForCDP() error = %v; want deadline error naming the url", err)
	}
}

func TestEndpoint(t *testing.T) {
	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: 9220})
	if got := l.Endpoint(); got != "http://127.0.0.1:9220" {
		t.Fatalf("Endpoint() = %q; want http://127.0.0.1:9220", got)
	}
}
