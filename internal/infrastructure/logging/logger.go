// Package logging builds the process logger from config.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ersonp/kinship/internal/infrastructure/config"
)

// New returns an slog.Logger writing to stderr.
func New(cfg config.LogConfig) (*slog.Logger, error) {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter returns an slog.Logger backed by a charmbracelet logger.
func NewWithWriter(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	formatter := log.TextFormatter
	switch strings.ToLower(cfg.Format) {
	case "", "text":
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Formatter:       formatter,
	})
	return slog.New(handler), nil
}

func parseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return 0, fmt.Errorf("parsing log level: %w", err)
	}
	return level, nil
}
