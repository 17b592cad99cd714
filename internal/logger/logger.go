// Package logger builds the zerolog logger shared by the CLI and server.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0664

// Build collects logger settings.
type Build struct {
	writer  io.Writer
	path    string
	level   string
	console bool
}

// Log is a constructed logger and the file it may own.
type Log struct {
	Logger  zerolog.Logger
	LogFile *os.File
}

// New starts a logger build that writes to stderr at info level.
func New() *Build {
	return &Build{writer: os.Stderr, level: "info"}
}

// FromWriter sends output to w.
func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// FromPath appends output to the file at path. It takes precedence over
// FromWriter.
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

// Level sets the minimum level by name (debug, info, warn, error).
func (b *Build) Level(level string) *Build {
	b.level = level
	return b
}

// Console switches to human readable output.
func (b *Build) Console(on bool) *Build {
	b.console = on
	return b
}

// Make constructs the logger.
func (b *Build) Make() (*Log, error) {
	level := zerolog.InfoLevel
	if name := strings.TrimSpace(b.level); name != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(name))
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", b.level, err)
		}
		level = l
	}

	log := &Log{}
	w := b.writer
	if w == nil {
		w = os.Stderr
	}
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		log.LogFile = f
		w = zerolog.SyncWriter(f)
	}
	if b.console && b.path == "" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return log, nil
}

// Close releases the log file, if any.
func (l *Log) Close() error {
	if l.LogFile == nil {
		return nil
	}
	return l.LogFile.Close()
}
