package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	ERROR
)

var (
	Logger       *slog.Logger
	currentLevel LogLevel = INFO
)

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func Configure(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}
	currentLevel = lvl
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel(lvl)}))
	return nil
}

func ParseLogLevel(value string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return INFO, nil
	case "debug":
		return DEBUG, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("invalid log level %q", value)
	}
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case DEBUG:
		return slog.LevelDebug
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debug(msg string, args ...any) {
	if currentLevel <= DEBUG {
		Logger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if currentLevel <= INFO {
		Logger.Info(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if currentLevel <= ERROR {
		Logger.Error(msg, args...)
	}
}
