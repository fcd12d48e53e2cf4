package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig holds configuration for the pane synchronization API.
type ServerConfig struct {
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	LogLevel string
	LogFile  string

	// Layout definitions and the series files they reference.
	LayoutsPath string
	DataDir     string

	SnapshotDir string

	// Sync event journal
	JournalDir        string
	JournalMaxSizeMB  int
	JournalBufferSize int

	// Chrome used for browser snapshots of the HTML export
	CDPAddress      string
	CDPPort         int
	BrowserLaunch   bool
	BrowserProfile  string
	RenderTimeoutMS int
}

// Load reads configuration from environment variables and an optional .env
// file.
func Load() (*ServerConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &ServerConfig{
		BindAddr:          getEnvOrDefault("PANESYNC_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:    getEnvListOrDefault("PANESYNC_PORT_CANDIDATES", []string{"127.0.0.1:8191", "127.0.0.1:8192"}),
		PortAutoFallback:  getEnvBoolOrDefault("PANESYNC_PORT_AUTO_FALLBACK", true),
		LogLevel:          strings.ToLower(getEnvOrDefault("PANESYNC_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("PANESYNC_LOG_FILE", "logs/panesync.log"),
		LayoutsPath:       getEnvOrDefault("PANESYNC_LAYOUTS", "./config/layouts.yaml"),
		DataDir:           getEnvOrDefault("PANESYNC_DATA_DIR", "./data"),
		SnapshotDir:       getEnvOrDefault("SNAPSHOT_DIR", "./snapshots"),
		JournalDir:        getEnvOrDefault("PANESYNC_JOURNAL_DIR", "./journal"),
		JournalMaxSizeMB:  getEnvIntOrDefault("PANESYNC_JOURNAL_MAX_SIZE_MB", 50),
		JournalBufferSize: getEnvIntOrDefault("PANESYNC_JOURNAL_BUFFER_SIZE", 1000),
		CDPAddress:        getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:           getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9220),
		BrowserLaunch:     getEnvBoolOrDefault("PANESYNC_BROWSER_LAUNCH", false),
		BrowserProfile:    getEnvOrDefault("PANESYNC_BROWSER_PROFILE", "./browser_profile"),
		RenderTimeoutMS:   getEnvIntOrDefault("PANESYNC_RENDER_TIMEOUT_MS", 15000),
	}
	if cfg.RenderTimeoutMS < 1000 {
		cfg.RenderTimeoutMS = 1000
	}
	if cfg.JournalBufferSize < 1 {
		return nil, fmt.Errorf("config: PANESYNC_JOURNAL_BUFFER_SIZE must be positive")
	}
	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint used by the chromedp remote allocator.
func (c *ServerConfig) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
