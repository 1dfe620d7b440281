// Package config reads runtime settings from the environment. Every knob has
// a working default; malformed values fall back with a warning rather than
// aborting startup.
package config

import (
	"os"
	"strconv"

	charmlog "github.com/charmbracelet/log"
)

// Environment variable names.
const (
	EnvListenAddr       = "ENGINE_LISTEN_ADDR"
	EnvContentDir       = "ENGINE_CONTENT_DIR"
	EnvCascadeDepth     = "ENGINE_CASCADE_DEPTH"
	EnvWorkerQueue      = "ENGINE_WORKER_QUEUE"
	EnvBusQueue         = "ENGINE_BUS_QUEUE"
	EnvJournalEntries   = "ENGINE_JOURNAL_ENTRIES"
	EnvJournalKeyframes = "ENGINE_JOURNAL_KEYFRAMES"
	EnvKeyframeInterval = "ENGINE_KEYFRAME_INTERVAL"
	EnvEventLogPath     = "ENGINE_EVENT_LOG"
	EnvLogLevel         = "ENGINE_LOG_LEVEL"
)

// Config is the resolved runtime configuration.
type Config struct {
	ListenAddr       string
	ContentDir       string
	CascadeDepth     int
	WorkerQueue      int
	BusQueue         int
	JournalEntries   int
	JournalKeyframes int
	KeyframeInterval int
	EventLogPath     string
	LogLevel         charmlog.Level
}

// Default returns the baked-in settings.
func Default() Config {
	return Config{
		ListenAddr:       ":8780",
		ContentDir:       "",
		CascadeDepth:     8,
		WorkerQueue:      64,
		BusQueue:         256,
		JournalEntries:   4096,
		JournalKeyframes: 16,
		KeyframeInterval: 64,
		EventLogPath:     "",
		LogLevel:         charmlog.InfoLevel,
	}
}

// FromEnv resolves the configuration from environment variables on top of
// the defaults. Parse problems are logged and the default kept.
func FromEnv(logger *charmlog.Logger) Config {
	if logger == nil {
		logger = charmlog.New(nil)
	}
	cfg := Default()

	if addr := os.Getenv(EnvListenAddr); addr != "" {
		cfg.ListenAddr = addr
	}
	if dir := os.Getenv(EnvContentDir); dir != "" {
		cfg.ContentDir = dir
	}
	cfg.CascadeDepth = intEnv(logger, EnvCascadeDepth, cfg.CascadeDepth)
	cfg.WorkerQueue = intEnv(logger, EnvWorkerQueue, cfg.WorkerQueue)
	cfg.BusQueue = intEnv(logger, EnvBusQueue, cfg.BusQueue)
	cfg.JournalEntries = intEnv(logger, EnvJournalEntries, cfg.JournalEntries)
	cfg.JournalKeyframes = intEnv(logger, EnvJournalKeyframes, cfg.JournalKeyframes)
	cfg.KeyframeInterval = intEnv(logger, EnvKeyframeInterval, cfg.KeyframeInterval)
	if path := os.Getenv(EnvEventLogPath); path != "" {
		cfg.EventLogPath = path
	}
	if raw := os.Getenv(EnvLogLevel); raw != "" {
		level, err := charmlog.ParseLevel(raw)
		if err != nil {
			logger.Warn("invalid log level, keeping default", "env", EnvLogLevel, "value", raw)
		} else {
			cfg.LogLevel = level
		}
	}
	return cfg
}

func intEnv(logger *charmlog.Logger, name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		logger.Warn("invalid integer setting, keeping default",
			"env", name, "value", raw, "default", fallback)
		return fallback
	}
	return value
}
