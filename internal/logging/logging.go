package logging

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to w. format is "console" for
// human-readable output or "json" for one object per line.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "log level %q", level)
	}

	out := w
	switch format {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), errors.Errorf("unknown log format %q", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
