package rds

import "errors"

// Protocol level problems (bad blocks, wrong block order, out of range
// segments, full tables) are never reported as errors, they only show up in
// the Statistics.  The errors below are misuse of the API.
var (
	ErrNilStation  = errors.New("rds: nil station")
	ErrShortRecord = errors.New("rds: short block record")
)
