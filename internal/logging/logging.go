package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"alarmsound/internal/platform"

	"github.com/rs/zerolog"
)

// EnvLogPath overrides the log directory when no flag is given.
const EnvLogPath = "ALARMSOUND_LOG_PATH"

const (
	logFileName = "alarmsound.log"
	timeFormat  = "2006-01-02 15:04:05"
)

// Options controls where and how much is logged.
type Options struct {
	// Dir is the --log-path value; empty falls back to EnvLogPath and then
	// the OS log directory.
	Dir   string
	Level string
	// Extra receives a copy of every record, e.g. stderr for foreground runs.
	Extra io.Writer
}

// Sink is an open log file with the logger writing to it.
type Sink struct {
	Logger zerolog.Logger
	Path   string
	file   *os.File
}

// ResolveDir picks the log directory: flag, then environment, then OS default.
func ResolveDir(appName, flagPath string) (string, error) {
	if flagPath != "" {
		return absolute(flagPath)
	}
	if envPath := os.Getenv(EnvLogPath); envPath != "" {
		return absolute(envPath)
	}
	return platform.LogDir(appName)
}

// Open creates the log directory and file and builds the logger.
func Open(appName string, options Options) (*Sink, error) {
	level, err := ParseLevel(options.Level)
	if err != nil {
		return nil, err
	}
	dir, err := ResolveDir(appName, options.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve log directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = zerolog.ConsoleWriter{
		Out:        file,
		TimeFormat: timeFormat,
		NoColor:    true,
	}
	if options.Extra != nil {
		out = zerolog.MultiLevelWriter(out, zerolog.ConsoleWriter{Out: options.Extra, TimeFormat: timeFormat})
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Int("pid", os.Getpid()).Logger()
	return &Sink{Logger: logger, Path: path, file: file}, nil
}

// Close closes the log file.
func (sink *Sink) Close() error {
	if sink == nil || sink.file == nil {
		return nil
	}
	err := sink.file.Close()
	sink.file = nil
	return err
}

// ParseLevel parses a level name; empty means info.
func ParseLevel(value string) (zerolog.Level, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", value, err)
	}
	return level, nil
}

func absolute(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, path), nil
}
