package rds

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationAddRecords(t *testing.T) {
	t.Parallel()

	st := New(false)
	var u Update
	for _, b := range blocks(0x3201, blockB(0, false, 0), 0xe0cd, chars("AB")) {
		rec := b.Record()
		got, err := st.Add(rec[:])
		require.NoError(t, err)
		u = u.merge(got)
	}
	assert.True(t, u.Events.Has(EventGroup))
	assert.True(t, u.Fields.Has(FieldPS))
	assert.Equal(t, "AB", st.PS())
}

func TestStationAddShortRecord(t *testing.T) {
	t.Parallel()

	st := New(false)
	_, err := st.Add([]byte{0x00})
	require.ErrorIs(t, err, ErrShortRecord)
	// a rejected record never reached the decoder
	assert.Equal(t, uint32(0), st.Stats.Blocks)
}

func TestStationNil(t *testing.T) {
	t.Parallel()

	var st *Station
	_, err := st.Add([]byte{0, 0, 0})
	require.ErrorIs(t, err, ErrNilStation)
	_, err = st.AddBlock(Block{})
	require.ErrorIs(t, err, ErrNilStation)
}

func populated(t *testing.T) *Station {
	t.Helper()
	st := New(true)
	b := func(id uint8, low uint16) uint16 {
		return withPTY(blockB(id, false, low), true, 5)
	}
	feed(t, st, 0x1f96, b(0, 0x10), 0xe31f, chars("KI"))
	feed(t, st, 0x1f96, b(2, 0), chars("HE"), chars("LO"))
	feed(t, st, 0x1f96, b(3, 8<<1), 0, AIDTMC)
	feed(t, st, 0x1f96, b(10, 0), chars("RO"), chars("CK"))
	feed(t, st, 0x1f96, b(4, 0x1), 0xd749, 0x3b42)
	require.NotZero(t, st.Valid)
	return st
}

func TestStationResetKeepsStatistics(t *testing.T) {
	t.Parallel()

	st := populated(t)
	stats := st.Stats
	require.Equal(t, uint32(5), stats.Groups)

	st.Reset(false)
	assert.Equal(t, stats, st.Stats)
	assert.Equal(t, Fields(0), st.Valid)
	assert.Equal(t, uint16(0), st.PI)
	assert.False(t, st.TP)
	assert.False(t, st.TA)
	assert.Equal(t, "", st.PS())
	assert.Equal(t, "", st.RT())
	assert.Equal(t, "", st.PTYN())
	assert.False(t, st.RTAB())
	assert.True(t, st.Time.IsZero())
	assert.Equal(t, 0, st.ODA.Len())
	assert.Equal(t, 0, st.AF.Len())
	assert.Equal(t, 0, st.AF.Announced())
	assert.True(t, st.RBDS())
	_, ok := st.LastGroup()
	assert.False(t, ok)

	// fields are reported again after a reset
	u := feed(t, st, 0x1f96, blockB(0, false, 0), 0xe0cd, chars("KI"))
	assert.True(t, u.Fields.Has(FieldPI|FieldPS))
}

func TestStationResetStatistics(t *testing.T) {
	t.Parallel()

	st := populated(t)
	st.Reset(true)
	assert.Equal(t, Statistics{}, st.Stats)
}

func TestStationResetDropsPartialGroup(t *testing.T) {
	t.Parallel()

	st := New(false)
	bl := blocks(0x1111, blockB(2, false, 0), chars("OL"), chars("DX"))
	for _, b := range bl[:3] {
		_, err := st.AddBlock(b)
		require.NoError(t, err)
	}
	st.Reset(false)

	// a D arriving after the reset can't complete the old group
	u, err := st.AddBlock(bl[3])
	require.NoError(t, err)
	assert.Zero(t, u)
	assert.Equal(t, "", st.RT())
}

func TestStationIndependentInstances(t *testing.T) {
	t.Parallel()

	a, b := New(false), New(false)
	feed(t, a, 0x1111, blockB(0, false, 0), 0xe0cd, chars("AA"))
	feed(t, b, 0x2222, blockB(0, false, 0), 0xe0cd, chars("BB"))
	assert.Equal(t, "AA", a.PS())
	assert.Equal(t, "BB", b.PS())
	assert.Equal(t, uint32(1), a.Stats.Groups)
	assert.Equal(t, uint32(1), b.Stats.Groups)
}

func TestStationSnapshot(t *testing.T) {
	t.Parallel()

	st := populated(t)
	snap := st.Snapshot()
	assert.Equal(t, uint16(0x1f96), snap.PI)
	assert.Equal(t, "1F96", snap.PIHex())
	assert.Equal(t, "KFXM", snap.CallSign)
	assert.Equal(t, "Rock", snap.PTYName)
	assert.Equal(t, "ROCK", snap.PTYN)
	assert.Equal(t, "HELO", snap.RT)
	assert.Equal(t, "KI", snap.PS)
	assert.Equal(t, []uint32{90600000}, snap.AF)
	assert.Equal(t, 3, snap.AFAnnounced)
	assert.Equal(t, []ODA{{GroupID: 8, Version: 'A', AID: AIDTMC}}, snap.ODA)
	require.NotNil(t, snap.Time)
	assert.Equal(t, "United States", snap.Country)
	assert.True(t, snap.RBDS)

	p, err := json.Marshal(snap)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(p, &back))
	assert.Equal(t, "HELO", back["rt"])
	assert.Contains(t, back, "stats")

	// the snapshot doesn't alias the station
	snap.AF[0] = 0
	assert.Equal(t, []uint32{90600000}, st.AF.Frequencies())
}
