// Package source produces RDS blocks from radio devices, serial ports and
// capture files.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bartgrantham/gofm/internal/config"
	"github.com/bartgrantham/gofm/rds"
	"go.bug.st/serial"
)

// Source is a stream of RDS blocks.  ReadBlock returns io.EOF once a finite
// source is exhausted.
type Source interface {
	ReadBlock(ctx context.Context) (rds.Block, error)
	Close() error
}

// Open builds the source described by cfg.
func Open(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (Source, error) {
	logger = logger.With(slog.String("source", cfg.Type))

	switch cfg.Type {
	case config.SourceV4L2, config.SourceFile:
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", cfg.Path, err)
		}
		return NewRecords(f), nil

	case config.SourceHex:
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", cfg.Path, err)
		}
		return NewHex(f, WithLogger(logger)), nil

	case config.SourceSerial:
		port, err := serial.Open(cfg.Path, &serial.Mode{BaudRate: cfg.BaudRate})
		if err != nil {
			return nil, fmt.Errorf("opening serial port %s: %w", cfg.Path, err)
		}
		return NewHex(port, WithLogger(logger)), nil

	case config.SourceSI4703:
		t, err := OpenTuner(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	return nil, fmt.Errorf("unknown source type %q", cfg.Type)
}

// Option configures the logger of the sources that log.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for the source
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
