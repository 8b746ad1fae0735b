package si4703

import (
	"context"
	"time"

	"github.com/bartgrantham/gofm/rds"
)

/*
RDS registers, verbose mode (POWERCFG RDSM set):

    STATUSRSSI : RDSR (15) new group ready, BLERA (10:9)
    READCHAN   : BLERB (15:14), BLERC (13:12), BLERD (11:10)
    RDSA..RDSD : the four blocks of the group

    BLER : 0 no errors, 1 1-2 errors corrected, 2 3-5 errors corrected,
           3 6+ errors, uncorrectable
*/

const (
	blerNone          = 0
	blerUncorrectable = 3
)

// RDSReady reports whether the last Read found a new group.
func (d *Device) RDSReady() bool {
	return d.Reg(STATUSRSSI)&statusRDSR != 0
}

// RDSBlocks returns the group from the last Read as four blocks with their
// error flags.  ok is false if no new group was ready.
func (d *Device) RDSBlocks() (blocks [4]rds.Block, ok bool) {
	reg := d.Registers()
	if reg[STATUSRSSI]&statusRDSR == 0 {
		return blocks, false
	}

	bler := [4]uint16{
		(reg[STATUSRSSI] >> 9) & 0x3,
		(reg[READCHAN] >> 14) & 0x3,
		(reg[READCHAN] >> 12) & 0x3,
		(reg[READCHAN] >> 10) & 0x3,
	}
	pos := [4]rds.Position{rds.BlockA, rds.BlockB, rds.BlockC, rds.BlockD}
	if reg[RDSB]&0x0800 != 0 {
		// version B groups repeat the PI in C'
		pos[2] = rds.BlockCPrime
	}
	for i := range blocks {
		blocks[i] = rds.Block{
			Data:      reg[RDSA+i],
			Position:  pos[i],
			Corrected: bler[i] != blerNone && bler[i] != blerUncorrectable,
			Error:     bler[i] == blerUncorrectable,
		}
	}
	return blocks, true
}

// Poll reads the registers every rate until ctx is done and calls fn after
// each successful read.  Read errors are logged and polling goes on.
func (d *Device) Poll(ctx context.Context, rate time.Duration, fn func()) error {
	if rate <= 0 {
		rate = DefaultPollRate
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Read(); err != nil {
				d.logger.Error("polling registers", "err", err)
				continue
			}
			fn()
		}
	}
}
