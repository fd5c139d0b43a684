package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	AppName = "amsvault"

	LogError   = "ERROR"
	LogInfo    = "INFO"
	LogWarning = "WARN"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// InitLogger writes to stdout and to logs/<AppName>.log under dir.
func InitLogger(dir string) error {
	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create logs folder: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(logDir, AppName+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	SetOutput(io.MultiWriter(os.Stdout, logFile))
	LogMsg(LogInfo, "Application started")
	return nil
}

// SetOutput replaces the destination of all log records.
func SetOutput(w io.Writer) {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	mu.Lock()
	logger = slog.New(h).With(slog.String("app", AppName))
	mu.Unlock()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func LogMsg(level string, format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	l := current()
	switch level {
	case LogError:
		l.Error(msg)
	case LogWarning:
		l.Warn(msg)
	default:
		l.Info(msg)
	}
}
