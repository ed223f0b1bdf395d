// Package logging configures the global zerolog logger. The terminal belongs
// to the game screen, so logs go to a rotating file.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects where and how much to log.
type Config struct {
	Level      string // trace, debug, info, warn, error, fatal or disabled
	File       string // rotated file; empty discards all output
	WithCaller bool
}

// ParseLevel maps a level name to a zerolog level. An empty name is warn.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "log level %q", name)
	}
	return level, nil
}

// Init points the global logger at the configured file and sets the level.
// The returned closer flushes and closes the file.
func Init(cfg Config) (io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var out io.WriteCloser = nopCloser{io.Discard}
	if cfg.File != "" {
		out = NewRotatingFile(cfg.File)
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	log.Logger = logger
	zerolog.SetGlobalLevel(level)
	return out, nil
}

// NewRotatingFile returns a writer that keeps five 1 MB backups.
func NewRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 5,
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
