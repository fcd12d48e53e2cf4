// Package browser starts a local Chromium for page captures and drives it
// over the DevTools protocol.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"github.com/dgnsrekt/tv_panesync/internal/netutil"
)

const (
	defaultWindowSize   = "1280,1024"
	defaultStartTimeout = 15 * time.Second
)

// Config holds browser launch configuration.
type Config struct {
	CDPAddress   string
	CDPPort      int
	ProfileDir   string
	Headless     bool
	WindowSize   string
	StartTimeout time.Duration
}

// Version is the subset of /json/version the launcher reports.
type Version struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Launcher owns a Chromium process used for page captures.
type Launcher struct {
	cfg     Config
	cmd     *exec.Cmd
	running bool
	version Version
}

// NewLauncher creates a launcher; WindowSize and StartTimeout get defaults.
func NewLauncher(cfg Config) *Launcher {
	if cfg.WindowSize == "" {
		cfg.WindowSize = defaultWindowSize
	}
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = defaultStartTimeout
	}
	return &Launcher{cfg: cfg}
}

// Endpoint is the CDP HTTP endpoint captures connect to.
func (l *Launcher) Endpoint() string {
	return fmt.Sprintf("http://%s:%d", l.cfg.CDPAddress, l.cfg.CDPPort)
}

// Version returns what the browser reported once CDP came up.
func (l *Launcher) Version() Version {
	return l.version
}

func detectBrowser() (string, error) {
	candidates := []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable", "headless-shell"}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	if runtime.GOOS == "darwin" {
		macPath := "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
		if _, err := os.Stat(macPath); err == nil {
			return macPath, nil
		}
	}
	return "", fmt.Errorf("no chromium binary found (tried %v)", candidates)
}

// Launch starts a browser unless one already serves the CDP port, then waits
// for its DevTools endpoint.
func (l *Launcher) Launch(ctx context.Context) error {
	if netutil.Listening(l.cfg.CDPAddress, l.cfg.CDPPort, time.Second) {
		slog.Info("browser already listening, reusing it", "endpoint", l.Endpoint())
		return nil
	}

	browserPath, err := detectBrowser()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.cfg.ProfileDir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	l.cmd = exec.Command(browserPath, launchArgs(l.cfg)...)
	l.cmd.Stdout = os.Stdout
	l.cmd.Stderr = os.Stderr
	if err := l.cmd.Start(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	l.running = true
	slog.Info("browser process started", "path", browserPath, "pid", l.cmd.Process.Pid, "headless", l.cfg.Headless)

	waitCtx, cancel := context.WithTimeout(ctx, l.cfg.StartTimeout)
	defer cancel()
	v, err := waitForCDP(waitCtx, l.Endpoint())
	if err != nil {
		l.Stop()
		return fmt.Errorf("waiting for CDP: %w", err)
	}
	l.version = v
	slog.Info("CDP endpoint ready", "endpoint", l.Endpoint(), "browser", v.Browser, "protocol", v.ProtocolVersion)
	return nil
}

func launchArgs(cfg Config) []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", cfg.CDPPort),
		fmt.Sprintf("--remote-debugging-address=%s", cfg.CDPAddress),
		fmt.Sprintf("--user-data-dir=%s", cfg.ProfileDir),
		"--no-first-run",
		"--disable-dev-shm-usage",
		"--disable-breakpad",
		"--disable-crash-reporter",
		"--hide-scrollbars",
		fmt.Sprintf("--window-size=%s", cfg.WindowSize),
	}
	if cfg.Headless {
		args = append(args, "--headless=new", "--disable-gpu")
	}
	return append(args, "about:blank")
}

// waitForCDP polls endpoint's /json/version until it answers or ctx ends.
func waitForCDP(ctx context.Context, endpoint string) (Version, error) {
	url := endpoint + "/json/version"
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	client := &http.Client{Timeout: time.Second}
	for {
		select {
		case <-ctx.Done():
			return Version{}, fmt.Errorf("%s: %w", url, ctx.Err())
		case <-ticker.C:
			v, err := fetchVersion(ctx, client, url)
			if err != nil {
				slog.Debug("CDP not ready", "url", url, "error", err)
				continue
			}
			return v, nil
		}
	}
}

func fetchVersion(ctx context.Context, client *http.Client, url string) (Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Version{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Version{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Version{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	var v Version
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Version{}, fmt.Errorf("decode version: %w", err)
	}
	return v, nil
}

// Running reports whether this launcher spawned a browser process.
func (l *Launcher) Running() bool {
	return l.running
}

// Stop terminates the browser process with SIGTERM, falling back to SIGKILL.
func (l *Launcher) Stop() {
	if l.cmd == nil || l.cmd.Process == nil {
		return
	}
	slog.Info("stopping browser", "pid", l.cmd.Process.Pid)
	_ = l.cmd.Process.Signal(syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		_ = l.cmd.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("browser stopped gracefully")
	case <-time.After(5 * time.Second):
		slog.Warn("browser did not exit, sending SIGKILL")
		_ = l.cmd.Process.Kill()
		<-done
	}
	l.running = false
}
