package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bartgrantham/gofm/internal/config"
	"github.com/bartgrantham/gofm/rds"
	"github.com/bartgrantham/gofm/si4703"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Tuner streams the RDS groups an Si4703 receives.  The chip keeps RDSR up
// for at least 40 ms, so a group seen on consecutive polls is only handed out
// once.
type Tuner struct {
	dev    *si4703.Device
	logger *slog.Logger
	blocks chan tunedBlock
	gen    atomic.Uint64 // bumped by Flush
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
	closer    io.Closer

	ready bool
	last  [4]rds.Block
}

// tunedBlock is a block with the Flush generation it was read in.
type tunedBlock struct {
	rds.Block
	gen uint64
}

// NewTuner starts polling dev every rate.  The device must already be
// powered up and tuned.
func NewTuner(dev *si4703.Device, rate time.Duration, opts ...Option) *Tuner {
	o := newOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tuner{
		dev:    dev,
		logger: o.logger,
		blocks: make(chan tunedBlock, 64),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.run(ctx, rate)
	return t
}

func (t *Tuner) run(ctx context.Context, rate time.Duration) {
	defer close(t.done)
	defer close(t.blocks)
	err := t.dev.Poll(ctx, rate, func() {
		gen := t.gen.Load()
		group, ok := t.dev.RDSBlocks()
		if !ok {
			t.ready = false
			return
		}
		if t.ready && group == t.last {
			return
		}
		t.ready, t.last = true, group
		for _, b := range group {
			select {
			case t.blocks <- tunedBlock{Block: b, gen: gen}:
			case <-ctx.Done():
				return
			}
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.logger.Error("polling stopped", slog.String("err", err.Error()))
	}
}

// Device is the tuner being polled.
func (t *Tuner) Device() *si4703.Device {
	return t.dev
}

// ReadBlock returns io.EOF once the tuner is closed.
func (t *Tuner) ReadBlock(ctx context.Context) (rds.Block, error) {
	for {
		select {
		case <-ctx.Done():
			return rds.Block{}, ctx.Err()
		case b, ok := <-t.blocks:
			if !ok {
				return rds.Block{}, io.EOF
			}
			if b.gen != t.gen.Load() {
				continue
			}
			return b.Block, nil
		}
	}
}

// Flush drops the blocks that were queued but not read yet, e.g. from the
// station before a retune.  Blocks of a poll that was already under way are
// dropped too when they arrive.
func (t *Tuner) Flush() {
	t.gen.Add(1)
	for {
		select {
		case _, ok := <-t.blocks:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (t *Tuner) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.cancel()
		<-t.done
		if t.closer != nil {
			err = t.closer.Close()
		}
	})
	return err
}

// OpenTuner initializes the host, resets and powers up the Si4703 described
// by cfg, tunes it and starts polling.
func OpenTuner(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (*Tuner, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing peripherals: %w", err)
	}

	if cfg.ResetPin != "" {
		pin := gpioreg.ByName(cfg.ResetPin)
		if pin == nil {
			return nil, fmt.Errorf("no such pin %q", cfg.ResetPin)
		}
		if err := si4703.Reset(pin); err != nil {
			return nil, err
		}
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("opening i2c bus %q: %w", cfg.I2CBus, err)
	}

	freq, err := cfg.TuneFrequency()
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	dev, err := si4703.New(bus, cfg.Address, si4703.WithLogger(logger))
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	if err = dev.Init(ctx); err != nil {
		_ = bus.Close()
		return nil, err
	}
	if err = dev.SetChannel(ctx, freq); err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("tuning to %s: %w", freq, err)
	}
	logger.Info("tuned", slog.String("device", dev.String()), slog.String("frequency", freq.String()))

	t := NewTuner(dev, cfg.PollInterval, WithLogger(logger))
	t.closer = bus
	return t, nil
}
