package source

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bartgrantham/gofm/internal/config"
	"github.com/bartgrantham/gofm/rds"
	"github.com/bartgrantham/gofm/si4703"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func readAll(t *testing.T, s Source) []rds.Block {
	t.Helper()
	var out []rds.Block
	for {
		b, err := s.ReadBlock(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, b)
	}
}

func TestRecords(t *testing.T) {
	t.Parallel()

	want := []rds.Block{
		{Data: 0x3201, Position: rds.BlockA},
		{Data: 0x0408, Position: rds.BlockB, Corrected: true},
		{Data: 0xe0cd, Position: rds.BlockC},
		{Data: 0x4142, Position: rds.BlockD, Error: true},
	}
	var buf bytes.Buffer
	for _, b := range want {
		rec := b.Record()
		buf.Write(rec[:])
	}

	s := NewRecords(io.NopCloser(&buf))
	assert.Equal(t, want, readAll(t, s))
	require.NoError(t, s.Close())
}

func TestRecordsTruncated(t *testing.T) {
	t.Parallel()

	s := NewRecords(io.NopCloser(bytes.NewReader([]byte{0x01, 0x32, 0x00, 0x08})))
	_, err := s.ReadBlock(context.Background())
	require.NoError(t, err)
	_, err = s.ReadBlock(context.Background())
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRecordsCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewRecords(io.NopCloser(bytes.NewReader(make([]byte, 3))))
	_, err := s.ReadBlock(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseHexGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want [4]rds.Block
		err  bool
	}{
		{
			name: "version A",
			line: "3201 0408 E0CD 4142",
			want: [4]rds.Block{
				{Data: 0x3201, Position: rds.BlockA},
				{Data: 0x0408, Position: rds.BlockB},
				{Data: 0xe0cd, Position: rds.BlockC},
				{Data: 0x4142, Position: rds.BlockD},
			},
		},
		{
			name: "version B with comment",
			line: "3201 0808 3201 4142  # 0B",
			want: [4]rds.Block{
				{Data: 0x3201, Position: rds.BlockA},
				{Data: 0x0808, Position: rds.BlockB},
				{Data: 0x3201, Position: rds.BlockCPrime},
				{Data: 0x4142, Position: rds.BlockD},
			},
		},
		{
			name: "lost blocks",
			line: "3201 ---- 2020 ----",
			want: [4]rds.Block{
				{Data: 0x3201, Position: rds.BlockA},
				{Position: rds.BlockB, Error: true},
				{Data: 0x2020, Position: rds.BlockC},
				{Position: rds.BlockD, Error: true},
			},
		},
		{name: "too few", line: "3201 0408 E0CD", err: true},
		{name: "not hex", line: "3201 0408 XYZW 4142", err: true},
		{name: "too wide", line: "3201 0408 E0CD0 4142", err: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseHexGroup(tt.line)
			if tt.err {
				require.ErrorIs(t, err, ErrMalformedLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHex(t *testing.T) {
	t.Parallel()

	dump := strings.Join([]string{
		"# captured 88.5MHz",
		"",
		"3201 0408 E0CD 4B46",
		"garbage",
		"3201 0409 E0CD 584D",
	}, "\n")
	s := NewHex(io.NopCloser(strings.NewReader(dump)))

	st := rds.New(true)
	for _, b := range readAll(t, s) {
		_, err := st.AddBlock(b)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, s.Skipped())
	assert.Equal(t, "KFXM", st.PS())
	assert.Equal(t, uint32(2), st.Stats.Groups)
	require.NoError(t, s.Close())
}

type registers map[int]uint16

func readOp(r registers) i2ctest.IO {
	buf := make([]byte, 32)
	for i := 0; i < 16; i++ {
		v := r[(i+10)%16]
		buf[i*2] = byte(v >> 8)
		buf[i*2+1] = byte(v)
	}
	return i2ctest.IO{Addr: si4703.DefaultAddr, R: buf}
}

func group(a, b, c, d uint16) registers {
	return registers{si4703.STATUSRSSI: 0x8000, si4703.RDSA: a, si4703.RDSB: b, si4703.RDSC: c, si4703.RDSD: d}
}

func TestTuner(t *testing.T) {
	t.Parallel()

	first := group(0x3201, 0x0408, 0xe0cd, 0x4b46)
	second := group(0x3201, 0x0409, 0xe0cd, 0x584d)
	bus := &i2ctest.Playback{DontPanic: true, Ops: []i2ctest.IO{
		readOp(registers{}),
		readOp(first),
		readOp(first), // RDSR still up, same group
		readOp(registers{}),
		readOp(first), // repeated by the station
		readOp(second),
	}}
	dev, err := si4703.New(bus, si4703.DefaultAddr)
	require.NoError(t, err)

	tuner := NewTuner(dev, time.Millisecond)
	assert.Same(t, dev, tuner.Device())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []uint16
	for i := 0; i < 12; i++ {
		b, err := tuner.ReadBlock(ctx)
		require.NoError(t, err)
		got = append(got, b.Data)
	}
	assert.Equal(t, []uint16{
		0x3201, 0x0408, 0xe0cd, 0x4b46,
		0x3201, 0x0408, 0xe0cd, 0x4b46,
		0x3201, 0x0409, 0xe0cd, 0x584d,
	}, got)

	require.NoError(t, tuner.Close())
	require.NoError(t, tuner.Close())
	_, err = tuner.ReadBlock(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestTunerFlush(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{DontPanic: true, Ops: []i2ctest.IO{
		readOp(registers{}),
		readOp(group(0x3201, 0x0408, 0xe0cd, 0x4b46)),
	}}
	dev, err := si4703.New(bus, si4703.DefaultAddr)
	require.NoError(t, err)
	tuner := NewTuner(dev, time.Millisecond)
	defer tuner.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = tuner.ReadBlock(ctx)
	require.NoError(t, err)

	// the rest of the group is dropped
	require.Eventually(t, func() bool { return len(tuner.blocks) == 3 }, time.Second, time.Millisecond)
	tuner.Flush()
	assert.Empty(t, tuner.blocks)
}

func TestTunerFlushDropsLatePoll(t *testing.T) {
	t.Parallel()

	tuner := &Tuner{blocks: make(chan tunedBlock, 4)}
	tuner.Flush()
	// a poll that started before the flush delivers after it
	tuner.blocks <- tunedBlock{Block: rds.Block{Data: 0x1111, Position: rds.BlockA}}
	tuner.blocks <- tunedBlock{Block: rds.Block{Data: 0x2222, Position: rds.BlockA}, gen: 1}
	close(tuner.blocks)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b, err := tuner.ReadBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x2222), b.Data)

	_, err = tuner.ReadBlock(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestOpenUnknown(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), config.SourceConfig{Type: "sdr"}, discardLogger())
	require.Error(t, err)
}

func TestOpenHexFile(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), config.SourceConfig{Type: config.SourceHex, Path: t.TempDir() + "/missing"}, discardLogger())
	require.Error(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
