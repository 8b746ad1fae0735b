package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bartgrantham/gofm/rds"
)

// Records reads the 3-byte block records a V4L2 radio device hands out,
// either live from /dev/radioN or from a file captured from one.
type Records struct {
	rc  io.ReadCloser
	r   *bufio.Reader
	rec [rds.RecordSize]byte
}

func NewRecords(rc io.ReadCloser) *Records {
	return &Records{
		rc: rc,
		// the driver hands out whole records, a multiple of 3 keeps them aligned
		r: bufio.NewReaderSize(rc, rds.RecordSize*256),
	}
}

// ReadBlock blocks until a whole record is read.  Close unblocks it.
func (s *Records) ReadBlock(ctx context.Context) (rds.Block, error) {
	if err := ctx.Err(); err != nil {
		return rds.Block{}, err
	}
	if _, err := io.ReadFull(s.r, s.rec[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return rds.Block{}, fmt.Errorf("truncated record: %w", err)
		}
		return rds.Block{}, err
	}
	return rds.ParseBlock(s.rec[:])
}

func (s *Records) Close() error {
	return s.rc.Close()
}
