// Command gofm is an interactive FM tuner for an Si4703 on a Raspberry Pi.
// It shows the RDS information of the station it is tuned to.
//
//	up/down    tune 200 kHz up or down
//	+/-        volume
//	m          mute
//	q, ctrl-c  quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin/pinreg"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/rpi"

	"github.com/bartgrantham/gofm/internal/source"
	"github.com/bartgrantham/gofm/rds"
	"github.com/bartgrantham/gofm/si4703"
)

func main() {
	busName := flag.String("bus", "I2C1", "I²C bus the Si4703 is on")
	resetName := flag.String("reset", "", "GPIO wired to RST (default: header pin 16 on a Raspberry Pi)")
	freqFlag := flag.String("freq", "88.5MHz", "frequency to tune to")
	volume := flag.Int("volume", 15, "volume, 0..31")
	rbds := flag.Bool("rbds", true, "decode with the North American RBDS tables")
	bigFont := flag.String("big", "", "FIGlet font for the frequency, e.g. univers.flf")
	mediumFont := flag.String("medium", "", "FIGlet font for the call sign, e.g. nancyj-improved.flf")
	logPath := flag.String("log", "", "write a debug log to this file")
	flag.Parse()

	if err := run(*busName, *resetName, *freqFlag, *volume, *rbds, *bigFont, *mediumFont, *logPath); err != nil {
		fmt.Fprintln(os.Stderr, "gofm:", err)
		os.Exit(1)
	}
}

func openLog(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}

func loadFont(path string) (font, error) {
	if path == "" {
		return plainFont{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewFIGfont(path, f)
}

func resetPin(name string) (gpio.PinOut, error) {
	if name == "" {
		if !rpi.Present() {
			return nil, errors.New("not a Raspberry Pi, give the reset pin with -reset")
		}
		return rpi.P1_16, nil // GPIO23
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("no such pin %q", name)
	}
	return pin, nil
}

func run(busName, resetName, freqFlag string, volume int, rbds bool, bigFont, mediumFont, logPath string) error {
	var freq physic.Frequency
	if err := freq.Set(freqFlag); err != nil {
		return fmt.Errorf("-freq: %w", err)
	}

	logger, closeLog, err := openLog(logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	big, err := loadFont(bigFont)
	if err != nil {
		return err
	}
	medium, err := loadFont(mediumFont)
	if err != nil {
		return err
	}

	if _, err = host.Init(); err != nil {
		return fmt.Errorf("couldn't initialize peripherals: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return fmt.Errorf("couldn't initialize i2c bus: %w", err)
	}
	defer bus.Close()

	if p, ok := bus.(i2c.Pins); ok {
		_, scl := pinreg.Position(p.SCL())
		_, sda := pinreg.Position(p.SDA())
		logger.Info("i2c", slog.String("bus", bus.String()),
			slog.String("scl", fmt.Sprintf("%s pin %d", p.SCL(), scl)),
			slog.String("sda", fmt.Sprintf("%s pin %d", p.SDA(), sda)))
	}

	rst, err := resetPin(resetName)
	if err != nil {
		return err
	}
	if err = si4703.Reset(rst); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dev, err := si4703.New(bus, si4703.DefaultAddr, si4703.WithLogger(logger))
	if err != nil {
		return err
	}
	if err = dev.Init(ctx); err != nil {
		return err
	}
	r := &radio{
		dev:     dev,
		station: rds.New(rbds),
		freq:    freq,
		volume:  volume,
		logger:  logger,
	}
	if err = dev.Volume(volume); err != nil {
		return err
	}
	if err = r.tune(ctx, freq); err != nil {
		return err
	}
	tuner := source.NewTuner(dev, si4703.DefaultPollRate, source.WithLogger(logger))
	defer tuner.Close()
	r.tuner = tuner

	scr, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("couldn't open screen: %w", err)
	}
	if err = scr.Init(); err != nil {
		return fmt.Errorf("couldn't init screen: %w", err)
	}
	defer scr.Fini()
	scr.Clear()

	return r.loop(ctx, scr, newDisplay(scr, big, medium))
}

// blockSource is the part of source.Tuner the radio reads from.
type blockSource interface {
	ReadBlock(ctx context.Context) (rds.Block, error)
	Flush()
}

// taggedBlock is a block with the tuning generation it was read in.
type taggedBlock struct {
	rds.Block
	gen uint64
}

type radio struct {
	dev     *si4703.Device
	tuner   blockSource
	gen     atomic.Uint64 // bumped on every retune
	station *rds.Station
	freq    physic.Frequency
	volume  int
	muted   bool
	logger  *slog.Logger
}

// nextChannel steps f by one channel, wrapping around the band.
func nextChannel(f physic.Frequency, up bool) physic.Frequency {
	if up {
		f += si4703.Spacing
		if f > si4703.BandHigh {
			f = si4703.BandLow
		}
		return f
	}
	f -= si4703.Spacing
	if f < si4703.BandLow {
		f = si4703.BandHigh
	}
	return f
}

// tune changes the channel and forgets the old station, but not the
// reception statistics.
func (r *radio) tune(ctx context.Context, f physic.Frequency) error {
	if err := r.dev.SetChannel(ctx, f); err != nil {
		return err
	}
	r.freq = f
	r.retuned()
	r.logger.Info("tuned", slog.String("frequency", f.String()))
	return nil
}

// retuned starts a new generation.  Blocks read before it are dropped by
// deliver, wherever they are queued.
func (r *radio) retuned() {
	r.gen.Add(1)
	if r.tuner != nil {
		r.tuner.Flush()
	}
	r.station.Reset(false)
}

// forward copies blocks from the tuner to out until ctx is done or the tuner
// stops.
func (r *radio) forward(ctx context.Context, out chan<- taggedBlock) {
	defer close(out)
	for {
		gen := r.gen.Load()
		b, err := r.tuner.ReadBlock(ctx)
		if err != nil {
			return
		}
		select {
		case out <- taggedBlock{Block: b, gen: gen}:
		case <-ctx.Done():
			return
		}
	}
}

// deliver decodes b unless it was read before the last retune.
func (r *radio) deliver(b taggedBlock) rds.Update {
	if b.gen != r.gen.Load() {
		return rds.Update{}
	}
	u, _ := r.station.AddBlock(b.Block)
	return u
}

func (r *radio) view() view {
	return view{
		freq:   r.freq,
		rssi:   r.dev.RSSI(),
		stereo: r.dev.Stereo(),
		ready:  r.dev.RDSReady(),
		volume: r.volume,
		muted:  r.muted,
		snap:   r.station.Snapshot(),
	}
}

func (r *radio) key(ctx context.Context, e *tcell.EventKey) (quit bool, err error) {
	switch e.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return true, nil
	case tcell.KeyUp:
		return false, r.tune(ctx, nextChannel(r.freq, true))
	case tcell.KeyDown:
		return false, r.tune(ctx, nextChannel(r.freq, false))
	case tcell.KeyRune:
		switch e.Rune() {
		case 'q':
			return true, nil
		case '+', '=':
			if r.volume < 31 {
				r.volume++
			}
			return false, r.dev.Volume(r.volume)
		case '-':
			if r.volume > 0 {
				r.volume--
			}
			return false, r.dev.Volume(r.volume)
		case 'm':
			r.muted = !r.muted
			return false, r.dev.Mute(r.muted)
		}
	}
	return false, nil
}

// pumpEvents hands screen events to out until the screen is finalized or
// ctx is done.
func pumpEvents(ctx context.Context, scr tcell.Screen, out chan<- tcell.Event) {
	for {
		e := scr.PollEvent()
		if e == nil {
			return
		}
		select {
		case out <- e:
		case <-ctx.Done():
			return
		}
	}
}

func (r *radio) loop(ctx context.Context, scr tcell.Screen, d *display) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 1)
	go pumpEvents(ctx, scr, events)

	blocks := make(chan taggedBlock, 16)
	go r.forward(ctx, blocks)

	refresh := time.NewTicker(250 * time.Millisecond)
	defer refresh.Stop()

	d.draw(r.view())
	for {
		select {
		case e := <-events:
			switch e := e.(type) {
			case *tcell.EventKey:
				quit, err := r.key(ctx, e)
				if quit {
					return nil
				}
				if err != nil {
					r.logger.Warn("key", slog.String("key", e.Name()), slog.String("err", err.Error()))
				}
				d.draw(r.view())
			case *tcell.EventResize:
				scr.Clear()
				d.draw(r.view())
			}

		case b, ok := <-blocks:
			if !ok {
				return errors.New("tuner stopped")
			}
			u := r.deliver(b)
			if u.Fields != 0 {
				r.logger.Debug("update", slog.String("fields", u.Fields.String()))
				d.draw(r.view())
			}

		case <-refresh.C:
			d.draw(r.view())
		}
	}
}
