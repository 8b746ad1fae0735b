package rds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblerCompletesGroup(t *testing.T) {
	t.Parallel()

	var a assembler
	var g Group
	var out outcome
	for _, b := range blocks(0x3201, 0x0408, 0xe0cd, 0x4142) {
		g, out = a.push(b)
	}
	require.Equal(t, complete, out)
	assert.Equal(t, stateIdle, a.state)
	assert.Equal(t, uint16(0x3201), g.PI)
	assert.Equal(t, uint8(0), g.ID)
	assert.Equal(t, byte('A'), g.Version)
	assert.Equal(t, uint16(0x0408), g.B())
	assert.Equal(t, uint16(0xe0cd), g.C())
	assert.Equal(t, uint16(0x4142), g.D())
	assert.Equal(t, uint8(0x08), g.DataBLSB)
	assert.Equal(t, "0A", g.Type())
}

func TestAssemblerTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		from  assemblerState
		words [4]uint16
		pos   Position
		want  assemblerState
		out   outcome
	}{
		{name: "A from idle", from: stateIdle, pos: BlockA, want: stateHaveA, out: pending},
		{name: "B from idle", from: stateIdle, pos: BlockB, want: stateIdle, out: aborted},
		{name: "B after A", from: stateHaveA, pos: BlockB, want: stateHaveAB, out: pending},
		{name: "C after A", from: stateHaveA, pos: BlockC, want: stateIdle, out: aborted},
		{name: "A restarts after A", from: stateHaveA, pos: BlockA, want: stateHaveA, out: pending},
		{name: "C after AB", from: stateHaveAB, pos: BlockC, want: stateHaveABC, out: pending},
		{name: "C' after AB version A", from: stateHaveAB, pos: BlockCPrime, want: stateIdle, out: aborted},
		{
			name:  "C' after AB version B",
			from:  stateHaveAB,
			words: [4]uint16{0x1234, 0x0800},
			pos:   BlockCPrime,
			want:  stateHaveABC,
			out:   pending,
		},
		{
			name:  "C after AB version B",
			from:  stateHaveAB,
			words: [4]uint16{0x1234, 0x0800},
			pos:   BlockC,
			want:  stateHaveABC,
			out:   pending,
		},
		{name: "D after AB", from: stateHaveAB, pos: BlockD, want: stateIdle, out: aborted},
		{name: "A restarts after ABC", from: stateHaveABC, pos: BlockA, want: stateHaveA, out: pending},
		{name: "B after ABC", from: stateHaveABC, pos: BlockB, want: stateIdle, out: aborted},
		{name: "D after ABC", from: stateHaveABC, pos: BlockD, want: stateIdle, out: complete},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := assembler{state: tt.from, words: tt.words}
			_, out := a.push(Block{Position: tt.pos})
			assert.Equal(t, tt.out, out)
			assert.Equal(t, tt.want, a.state)
		})
	}
}

func TestStationResyncOnBlockA(t *testing.T) {
	t.Parallel()

	st := New(false)
	// A, B then a fresh group starting with A: restart, not an error
	for _, b := range blocks(0x1111, blockB(0, false, 0), 0, 0)[:2] {
		_, err := st.AddBlock(b)
		require.NoError(t, err)
	}
	u := feed(t, st, 0x2222, blockB(0, false, 0), 0xe0cd, chars("AB"))

	assert.True(t, u.Events.Has(EventGroup))
	assert.Equal(t, uint32(0), st.Stats.GroupErrors)
	assert.Equal(t, uint32(1), st.Stats.Groups)
	assert.Equal(t, uint32(6), st.Stats.Blocks)
	assert.Equal(t, uint16(0x2222), st.PI)
}

func TestStationSequenceErrorRecovery(t *testing.T) {
	t.Parallel()

	st := New(false)
	// A, B, D: the missing C aborts the group
	bl := blocks(0x1111, blockB(2, false, 0), chars("XX"), chars("XX"))
	for _, b := range []Block{bl[0], bl[1], bl[3]} {
		u, err := st.AddBlock(b)
		require.NoError(t, err)
		assert.Zero(t, u)
	}
	require.Equal(t, uint32(1), st.Stats.GroupErrors)

	u := feed(t, st, 0x2222, blockB(2, false, 1), chars("OK"), chars("GO"))
	assert.True(t, u.Events.Has(EventGroup))
	assert.Equal(t, uint16(0x2222), st.PI)
	assert.Equal(t, "    OKGO", st.RT())
	assert.NotContains(t, st.RT(), "XX")
	assert.Equal(t, uint32(1), st.Stats.GroupErrors)
}

func TestStationErroneousBlockAbortsGroup(t *testing.T) {
	t.Parallel()

	st := New(false)
	bl := blocks(0x1111, blockB(0, false, 0), 0xe0cd, chars("AB"))
	bl[2].Error = true
	for _, b := range bl {
		u, err := st.AddBlock(b)
		require.NoError(t, err)
		assert.Zero(t, u)
	}

	assert.Equal(t, uint32(4), st.Stats.Blocks)
	assert.Equal(t, uint32(1), st.Stats.BlockErrors)
	// the error aborts the group, the orphaned D is a sequence error
	assert.Equal(t, uint32(2), st.Stats.GroupErrors)
	assert.Equal(t, uint32(0), st.Stats.Groups)
	assert.Equal(t, Fields(0), st.Valid)
	_, ok := st.LastGroup()
	assert.False(t, ok)
}

func TestStationCorrectedBlocksAccepted(t *testing.T) {
	t.Parallel()

	st := New(false)
	bl := blocks(0x1111, blockB(0, false, 0), 0xe0cd, chars("AB"))
	bl[1].Corrected = true
	bl[3].Corrected = true
	var u Update
	for _, b := range bl {
		got, err := st.AddBlock(b)
		require.NoError(t, err)
		u = u.merge(got)
	}

	assert.True(t, u.Events.Has(EventGroup))
	assert.Equal(t, uint32(2), st.Stats.BlocksCorrected)
	assert.Equal(t, uint32(0), st.Stats.BlockErrors)
	assert.Equal(t, uint32(4), st.Stats.Blocks)
}

func TestStationZeroPIIsDecoded(t *testing.T) {
	t.Parallel()

	st := New(false)
	u := feed(t, st, 0x0000, blockB(0, false, 0), 0, chars("AB"))
	assert.True(t, u.Fields.Has(FieldPI))
	assert.Equal(t, uint16(0), st.PI)

	u = feed(t, st, 0x0000, blockB(0, false, 0), 0, chars("AB"))
	assert.False(t, u.Fields.Has(FieldPI))
	assert.True(t, u.Events.Has(EventGroup))
}

func TestStationBlockCounting(t *testing.T) {
	t.Parallel()

	st := New(false)
	input := []Block{
		{Position: BlockA},
		{Position: BlockC},
		{Position: BlockInvalid},
		{Position: BlockA, Error: true},
		{Position: BlockA, Corrected: true},
		{Position: BlockB},
		{Position: BlockC},
		{Position: BlockD},
	}
	for i, b := range input {
		_, err := st.AddBlock(b)
		require.NoError(t, err)
		assert.Equal(t, uint32(i+1), st.Stats.Blocks)
	}
	assert.Equal(t, uint32(2), st.Stats.BlockErrors)
	assert.Equal(t, uint32(1), st.Stats.BlocksCorrected)
	assert.Equal(t, uint32(1), st.Stats.Groups)
}

func TestStationErroneousBlockBetweenGroups(t *testing.T) {
	t.Parallel()

	st := New(false)
	u, err := st.AddBlock(Block{Data: 0x1111, Position: BlockA, Error: true})
	require.NoError(t, err)
	assert.Zero(t, u)

	// no group was in progress, the block still counts against groups
	assert.Equal(t, uint32(1), st.Stats.BlockErrors)
	assert.Equal(t, uint32(1), st.Stats.GroupErrors)
	assert.Equal(t, uint32(0), st.Stats.Groups)
}
