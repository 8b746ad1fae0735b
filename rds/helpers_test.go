package rds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// blocks returns the four blocks of a group in transmission order; version
// B groups get C' as their third offset.
func blocks(a, b, c, d uint16) []Block {
	cpos := BlockC
	if b&0x0800 != 0 {
		cpos = BlockCPrime
	}
	return []Block{
		{Data: a, Position: BlockA},
		{Data: b, Position: BlockB},
		{Data: c, Position: cpos},
		{Data: d, Position: BlockD},
	}
}

// feed sends one group and returns the merged updates.
func feed(t *testing.T, st *Station, a, b, c, d uint16) Update {
	t.Helper()
	var u Update
	for _, blk := range blocks(a, b, c, d) {
		got, err := st.AddBlock(blk)
		require.NoError(t, err)
		u = u.merge(got)
	}
	return u
}

// blockB builds block B with TP and PTY clear.
func blockB(id uint8, versionB bool, low uint16) uint16 {
	b := uint16(id)<<12 | low&0x1f
	if versionB {
		b |= 0x0800
	}
	return b
}

func withPTY(b uint16, tp bool, pty uint8) uint16 {
	b |= uint16(pty&0x1f) << 5
	if tp {
		b |= 0x0400
	}
	return b
}

// chars packs two characters into one block.
func chars(s string) uint16 {
	return uint16(s[0])<<8 | uint16(s[1])
}
