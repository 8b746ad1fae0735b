// Package si4703 drives the Silicon Labs Si4703 FM tuner over I²C and hands
// out the RDS blocks it receives.
package si4703

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// DefaultAddr is the fixed I²C address of the Si4703.
const DefaultAddr = 0x10

var (
	ErrInvalidReg  = errors.New("si4703: invalid register")
	ErrInvalidFreq = errors.New("si4703: invalid frequency")
	ErrTimeout     = errors.New("si4703: timeout")
)

const (
	// registers 0..1 are read-only
	DEVICEID = iota
	CHIPID
	// registers 2..7 are read-write
	POWERCFG
	CHANNEL
	SYSCONFIG1
	SYSCONFIG2
	SYSCONFIG3
	OSCILLATOR

	// no registers 8, 9 ; registers a..f are read-only
	_
	_
	STATUSRSSI
	READCHAN
	RDSA
	RDSB
	RDSC
	RDSD
)

// register bits used by the driver
const (
	powerEnable  uint16 = 0x0001
	powerDisable uint16 = 0x0040
	powerRDSM    uint16 = 0x0800 // RDS verbose mode, BLER bits report corrections
	powerDMute   uint16 = 0x4000 // a zero means _mute enabled_

	channelTune uint16 = 0x8000
	channelMask uint16 = 0x03ff

	sys1RDS uint16 = 0x1000

	sys3VolExt uint16 = 0x0100 // _reduces_ the maximum volume

	oscXOSCEN uint16 = 0x8100

	statusRDSR   uint16 = 0x8000
	statusSTC    uint16 = 0x4000
	statusStereo uint16 = 0x0100
)

// Band limits for the US/Europe band with 200 kHz spacing, the power-on
// default.
const (
	BandLow  = 87500 * physic.KiloHertz
	BandHigh = 107900 * physic.KiloHertz
	Spacing  = 200 * physic.KiloHertz
)

/*
From AN230:
> When using the polling method, it is best not to poll continuously.
> The data will appear in intervals of ~88 ms and the RDSR indicator will be
> available for at least 40 ms, so a polling rate of 40 ms or less should be sufficient.
*/
const DefaultPollRate = 40 * time.Millisecond

// Device is one Si4703 on an I²C bus.  Reg is a shadow of the 16 registers as
// of the last Read.
type Device struct {
	mu     sync.Mutex
	dev    i2c.Dev
	reg    [16]uint16
	logger *slog.Logger
}

// WithLogger sets the logger for the device
func WithLogger(logger *slog.Logger) func(d *Device) {
	return func(d *Device) {
		d.logger = logger.With(slog.String("device", d.String()))
	}
}

// New reads the registers of the device at addr.  It does not power it up,
// see Init.
func New(bus i2c.Bus, addr uint16, options ...func(d *Device)) (*Device, error) {
	d := &Device{
		dev:    i2c.Dev{Bus: bus, Addr: addr},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(d)
	}
	if err := d.Read(); err != nil {
		return nil, fmt.Errorf("reading registers: %w", err)
	}
	return d, nil
}

func (d *Device) String() string {
	return "Si4703@" + d.dev.String()
}

// Reset pulses the RST line.  SDIO must be held low by the bus while RST
// rises to select 2-wire mode, which is what the Raspberry Pi's I²C pull-ups
// do once the bus is idle.
func Reset(rst gpio.PinOut) error {
	if err := rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("si4703 reset: %w", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := rst.Out(gpio.High); err != nil {
		return fmt.Errorf("si4703 reset: %w", err)
	}
	time.Sleep(100 * time.Millisecond)
	return nil
}

// Reg returns the shadow value of register r.
func (d *Device) Reg(r int) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reg[r&0xf]
}

// Registers returns a copy of all shadow registers.
func (d *Device) Registers() [16]uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reg
}

// Read refreshes the shadow registers.  The device always starts reading at
// register 0x0a and wraps around.
func (d *Device) Read() error {
	buf := make([]byte, 32)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.dev.Tx(nil, buf); err != nil {
		return err
	}
	for i := 0; i < 16; i++ {
		// (i+10) % 16 == 10, 11, 12, 13, 14, 15, 0, 1....
		d.reg[(i+10)%16] = uint16(buf[i*2])<<8 | uint16(buf[i*2+1])
	}
	return nil
}

// Set writes val to one of the read-write registers 2..7.  Writes always
// start at register 2, so the others are written back from the shadow.
func (d *Device) Set(reg int, val uint16) error {
	if reg < POWERCFG || reg > OSCILLATOR {
		return ErrInvalidReg
	}
	if err := d.Read(); err != nil {
		return err
	}

	d.mu.Lock()
	buf := make([]byte, 12)
	for r := POWERCFG; r <= OSCILLATOR; r++ {
		v := d.reg[r]
		if r == reg {
			v = val
		}
		// big-endian: high byte comes first
		buf[(r-POWERCFG)*2] = byte(v >> 8)
		buf[(r-POWERCFG)*2+1] = byte(v)
	}
	n, err := d.dev.Write(buf)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	// update our cached state
	return d.Read()
}

func (d *Device) update(reg int, fn func(v uint16) uint16) error {
	return d.Set(reg, fn(d.Reg(reg)))
}

// Init powers up the oscillator and the tuner, unmutes and turns on RDS in
// verbose mode.
func (d *Device) Init(ctx context.Context) error {
	if err := d.SetOsc(true); err != nil {
		return fmt.Errorf("enabling oscillator: %w", err)
	}
	// wait for the crystal to power up
	if err := sleep(ctx, 500*time.Millisecond); err != nil {
		return err
	}
	if err := d.Set(POWERCFG, powerDMute|powerEnable); err != nil {
		return fmt.Errorf("enabling radio: %w", err)
	}
	if err := sleep(ctx, 110*time.Millisecond); err != nil {
		return err
	}
	if err := d.EnableRDS(true); err != nil {
		return fmt.Errorf("enabling RDS: %w", err)
	}
	d.logger.Debug("powered up", slog.String("registers", fmt.Sprintf("%.4x", d.Registers())))
	return nil
}

func (d *Device) SetOsc(on bool) error {
	if on {
		return d.Set(OSCILLATOR, oscXOSCEN)
	}
	return d.Set(OSCILLATOR, 0x0000)
}

func (d *Device) Enable() error {
	if d.Reg(POWERCFG)&powerEnable != 0 {
		return nil
	}
	// make sure the ENABLE bit is set, and the DISABLE bit is cleared
	// sleeping for 1.5ms just in case we are coming off of a shutdown
	time.Sleep(1500 * time.Microsecond)
	return d.update(POWERCFG, func(v uint16) uint16 { return (v | powerEnable) &^ powerDisable })
}

func (d *Device) Disable() error {
	return d.update(POWERCFG, func(v uint16) uint16 { return v | powerDisable })
}

func (d *Device) Mute(on bool) error {
	muted := d.Reg(POWERCFG)&powerDMute == 0
	if muted == on {
		return nil
	}
	return d.update(POWERCFG, func(v uint16) uint16 {
		if on {
			return v &^ powerDMute
		}
		return v | powerDMute
	})
}

// EnableRDS turns the RDS receiver on in verbose mode, so blocks with
// uncorrectable errors are reported instead of silently dropped.
func (d *Device) EnableRDS(on bool) error {
	if err := d.update(POWERCFG, func(v uint16) uint16 {
		if on {
			return v | powerRDSM
		}
		return v &^ powerRDSM
	}); err != nil {
		return err
	}
	return d.update(SYSCONFIG1, func(v uint16) uint16 {
		if on {
			return v | sys1RDS
		}
		return v &^ sys1RDS
	})
}

// Volume sets the volume 0..31; 0..15 use the VOLEXT range.
func (d *Device) Volume(v int) error {
	if v < 0 {
		v = 0
	} else if v > 31 {
		v = 31
	}
	ext := d.Reg(SYSCONFIG3)&sys3VolExt != 0
	newext := v&0x10 == 0 // volext == 1 means LOWER volume
	setVol := func() error {
		return d.update(SYSCONFIG2, func(r uint16) uint16 { return r&0xfff0 | uint16(v&0x0f) })
	}
	switch {
	case ext && !newext:
		// volext quiet -> loud: set volume, then clear volext
		if err := setVol(); err != nil {
			return err
		}
		return d.update(SYSCONFIG3, func(r uint16) uint16 { return r &^ sys3VolExt })
	case !ext && newext:
		// volext louder -> quieter: set volext, then set volume
		if err := d.update(SYSCONFIG3, func(r uint16) uint16 { return r | sys3VolExt }); err != nil {
			return err
		}
		return setVol()
	}
	return setVol()
}

/*
Changing the channel:

1. mask off the old channel bits
2. set channel | TUNE
3. send register update
4. wait for STATUSRSSI & STC
5. clear TUNE
*/
func (d *Device) SetChannel(ctx context.Context, f physic.Frequency) error {
	if f < BandLow || f > BandHigh {
		return fmt.Errorf("%w: %s", ErrInvalidFreq, f)
	}
	// 0 == 87.5 ... 5 == 88.5 ... 101 == 107.7 ... 102 == 107.9
	ch := uint16((f - BandLow + Spacing/2) / Spacing)

	if err := d.update(CHANNEL, func(v uint16) uint16 { return v&^channelMask | ch | channelTune }); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for d.Reg(STATUSRSSI)&statusSTC == 0 {
		if err := sleep(ctx, 100*time.Millisecond); err != nil {
			d.logger.Warn("can't tune", slog.String("frequency", f.String()))
			if errors.Is(err, context.DeadlineExceeded) {
				return ErrTimeout
			}
			return err
		}
		if err := d.Read(); err != nil {
			return err
		}
	}

	return d.update(CHANNEL, func(v uint16) uint16 { return v &^ channelTune })
}

// Channel is the frequency the tuner is on, from READCHAN.
func (d *Device) Channel() physic.Frequency {
	return BandLow + physic.Frequency(d.Reg(READCHAN)&channelMask)*Spacing
}

// RSSI is the received signal strength in dBµV.
func (d *Device) RSSI() int {
	return int(d.Reg(STATUSRSSI) & 0xff)
}

func (d *Device) Stereo() bool {
	return d.Reg(STATUSRSSI)&statusStereo != 0
}

func sleep(ctx context.Context, dur time.Duration) error {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
