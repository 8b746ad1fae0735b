package rds

import "fmt"

/*
A V4L2 RDS capable device hands out one block per 3 byte record:

    byte 0 : lsb of the information word
    byte 1 : msb of the information word
    byte 2 : ee.. .bbb   b: block position, e: error flags

    position : 0 A, 1 B, 2 C, 3 D, 4 C', 7 invalid
    0x40     : block had bit errors which were corrected
    0x80     : block had uncorrectable errors
*/

const RecordSize = 3

const (
	recordPositionMask = 0x07
	recordCorrected    = 0x40
	recordError        = 0x80
)

// Position is the offset word a block was received with.
type Position uint8

const (
	BlockA       Position = 0
	BlockB       Position = 1
	BlockC       Position = 2
	BlockD       Position = 3
	BlockCPrime  Position = 4
	BlockInvalid Position = 7
)

func (p Position) String() string {
	switch p {
	case BlockA:
		return "A"
	case BlockB:
		return "B"
	case BlockC:
		return "C"
	case BlockD:
		return "D"
	case BlockCPrime:
		return "C'"
	}
	return "invalid"
}

// Block is one 16 bit information word as delivered by the capture layer.
type Block struct {
	Data      uint16
	Position  Position
	Corrected bool // bit errors were corrected upstream
	Error     bool // uncorrectable, must be dropped
}

// ParseBlock decodes a raw V4L2 RDS record.
func ParseBlock(rec []byte) (Block, error) {
	if len(rec) < RecordSize {
		return Block{}, fmt.Errorf("%w: got %d bytes", ErrShortRecord, len(rec))
	}
	b := Block{
		Data:      uint16(rec[1])<<8 | uint16(rec[0]),
		Position:  Position(rec[2] & recordPositionMask),
		Corrected: rec[2]&recordCorrected != 0,
		Error:     rec[2]&recordError != 0,
	}
	switch b.Position {
	case BlockA, BlockB, BlockC, BlockD, BlockCPrime:
	default:
		b.Position = BlockInvalid
	}
	return b, nil
}

// Record encodes the block back into the V4L2 wire layout.
func (b Block) Record() [RecordSize]byte {
	flags := byte(b.Position) & recordPositionMask
	if b.Corrected {
		flags |= recordCorrected
	}
	if b.Error {
		flags |= recordError
	}
	return [RecordSize]byte{byte(b.Data), byte(b.Data >> 8), flags}
}

// Erroneous reports whether the block cannot be used at all.
func (b Block) Erroneous() bool {
	return b.Error || b.Position == BlockInvalid
}

func (b Block) String() string {
	s := fmt.Sprintf("%s:%.4x", b.Position, b.Data)
	switch {
	case b.Error:
		s += "!"
	case b.Corrected:
		s += "*"
	}
	return s
}
