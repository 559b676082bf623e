package utils

import (
	"fmt"
	"io"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

// NewLogger builds a logger writing to w at the configured level and format.
func NewLogger(cfg LogConfig, w io.Writer) (log.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	opts := []log.Option{log.LevelOption(level)}
	switch cfg.Format {
	case "json":
		opts = append(opts, log.OutputJSONOption())
	case "text", "":
		opts = append(opts, log.ColorOption(false))
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	return log.NewLogger(w, opts...), nil
}
