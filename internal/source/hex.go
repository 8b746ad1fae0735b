package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bartgrantham/gofm/rds"
)

/*
Hex group dumps, one group per line:

    # comment
    3201 0408 E0CD 4142
    3201 ---- 2020 4F4C

Each field is a block in hex; "----" marks a block that was lost.  Anything
after a '#' is ignored.
*/

const lostBlock = "----"

var ErrMalformedLine = errors.New("malformed group line")

var errBlankLine = errors.New("blank line")

// Hex reads group dumps from a text stream, usually a file or a serial port
// attached to a receiver.  Malformed lines are logged and skipped.
type Hex struct {
	rc      io.ReadCloser
	sc      *bufio.Scanner
	logger  *slog.Logger
	pending []rds.Block
	line    int
	skipped int
}

func NewHex(rc io.ReadCloser, opts ...Option) *Hex {
	o := newOptions(opts)
	return &Hex{
		rc:     rc,
		sc:     bufio.NewScanner(rc),
		logger: o.logger,
	}
}

func (s *Hex) ReadBlock(ctx context.Context) (rds.Block, error) {
	for len(s.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return rds.Block{}, err
		}
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				return rds.Block{}, err
			}
			return rds.Block{}, io.EOF
		}
		s.line++

		group, err := ParseHexGroup(s.sc.Text())
		if errors.Is(err, errBlankLine) {
			continue
		}
		if err != nil {
			s.skipped++
			s.logger.Warn("skipping line", slog.Int("line", s.line), slog.String("err", err.Error()))
			continue
		}
		s.pending = group[:]
	}

	b := s.pending[0]
	s.pending = s.pending[1:]
	return b, nil
}

// Skipped is the number of malformed lines so far.
func (s *Hex) Skipped() int {
	return s.skipped
}

func (s *Hex) Close() error {
	return s.rc.Close()
}

// ParseHexGroup parses one line of a group dump into its four blocks.  The
// third block is C' when the second one says the group is version B.
func ParseHexGroup(line string) (group [4]rds.Block, err error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return group, errBlankLine
	}
	if len(fields) != 4 {
		return group, fmt.Errorf("%w: %d fields", ErrMalformedLine, len(fields))
	}

	pos := [4]rds.Position{rds.BlockA, rds.BlockB, rds.BlockC, rds.BlockD}
	for i, f := range fields {
		group[i].Position = pos[i]
		if f == lostBlock {
			group[i].Error = true
			continue
		}
		if len(f) != 4 {
			return group, fmt.Errorf("%w: block %q", ErrMalformedLine, f)
		}
		v, err := strconv.ParseUint(f, 16, 16)
		if err != nil {
			return group, fmt.Errorf("%w: block %q", ErrMalformedLine, f)
		}
		group[i].Data = uint16(v)
	}

	if !group[1].Error && group[1].Data&0x0800 != 0 {
		group[2].Position = rds.BlockCPrime
	}
	return group, nil
}
