// Package logging sets up the structured loggers used by the command line tools.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	slogmulti "github.com/samber/slog-multi"
)

// Config defines logger configuration.
type Config struct {
	Debug bool   // Log debug records?
	File  string // Optional file receiving JSON records.
}

// New creates a logger writing text records to w and, if c.File is set,
// JSON records to that file. The returned function closes the file.
func New(w io.Writer, c Config) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	if c.Debug {
		level.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{Level: level}
	handlers := []slog.Handler{
		slog.NewTextHandler(w, opts),
	}

	closer := func() error { return nil }

	if c.File != "" {
		dir := filepath.Dir(c.File)
		if err := os.MkdirAll(dir, 0744); err != nil {
			return nil, nil, errors.Wrapf(err, "log file %s", c.File)
		}

		fd, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "log file %s", c.File)
		}

		handlers = append(handlers, slog.NewJSONHandler(fd, opts))
		closer = fd.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}
