// pkg/logger/logger.go

package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// PlatformLogPaths lists candidate log file locations, best first.
func PlatformLogPaths() []string {
	return []string{
		"/var/log/ztpctl/ztpctl.log",
		filepath.Join(os.Getenv("HOME"), ".ztpctl", "ztpctl.log"),
	}
}

// FindWritableLogPath returns the first candidate whose directory can be
// created and written to.
func FindWritableLogPath() (string, error) {
	for _, path := range PlatformLogPaths() {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			continue
		}
		f.Close()
		return path, nil
	}
	return "", fmt.Errorf("no writable log path among %v", PlatformLogPaths())
}

// DefaultConsoleEncoderConfig matches the console encoder used across the
// CLI: short keys, ISO8601 time, colored levels.
func DefaultConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "T"
	cfg.LevelKey = "L"
	cfg.NameKey = "N"
	cfg.CallerKey = "C"
	cfg.MessageKey = "M"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// ParseLogLevel maps a LOG_LEVEL env value to a zap level, defaulting to info.
func ParseLogLevel(raw string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// NewFallbackLogger builds a console-only logger for when no log file is
// writable (non-root runs, read-only filesystems).
func NewFallbackLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()),
		zapcore.AddSync(os.Stderr),
		ParseLogLevel(os.Getenv("LOG_LEVEL")),
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// InitializeWithFallback sets up console + JSON-file logging, degrading to
// console-only when the file path is unwritable. Replaces zap globals.
func InitializeWithFallback() {
	path, err := FindWritableLogPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "⚠️  No writable log path found, logging to console only")
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
		return
	}

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	writer, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintln(os.Stderr, "⚠️  Could not open log file, falling back to console:", err)
		log = NewFallbackLogger()
		zap.ReplaceGlobals(log)
		return
	}

	level := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig()), zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(writer), level),
	)

	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	zap.ReplaceGlobals(log)
	log.Debug("Logger initialized", zap.String("log_path", path))
}

// InitFallback is safe to call repeatedly; it only installs a logger when
// none exists yet. Command wrappers call it defensively before building the
// runtime context.
func InitFallback() {
	if log != nil {
		return
	}
	InitializeWithFallback()
}

// L returns the process logger, initializing a fallback one if needed.
func L() *zap.Logger {
	if log == nil {
		InitFallback()
	}
	return log
}
