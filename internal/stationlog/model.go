package stationlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bartgrantham/gofm/rds"
)

// Session is one run of a decoder against one source.
type Session struct {
	ID        int64
	StartTime time.Time
	Source    string
	Standard  string
}

// Record is a stored station snapshot.
type Record struct {
	ID          int64
	SessionID   int64
	Timestamp   time.Time
	PI          uint16
	PS          string
	PTY         uint8
	RT          string
	PTYN        string
	ECC         uint8
	LC          uint8
	TP          bool
	TA          bool
	MS          bool
	DI          uint8
	AF          []uint32
	ClockTime   *time.Time
	Groups      uint32
	BlockErrors uint32
}

type snapshotData struct {
	SessionID   int64
	Timestamp   time.Time
	Snap        rds.Snapshot
	AFJSON      string
	ClockTime   sql.NullTime
	Groups      uint32
	BlockErrors uint32
}

func toSnapshotData(sessionID int64, ts time.Time, snap rds.Snapshot) (*snapshotData, error) {
	af := snap.AF
	if af == nil {
		af = []uint32{}
	}
	p, err := json.Marshal(af)
	if err != nil {
		return nil, fmt.Errorf("marshaling AF: %w", err)
	}

	var clock sql.NullTime
	if snap.Time != nil {
		clock.Time = snap.Time.UTC()
		clock.Valid = true
	}

	return &snapshotData{
		SessionID:   sessionID,
		Timestamp:   ts.UTC(),
		Snap:        snap,
		AFJSON:      string(p),
		ClockTime:   clock,
		Groups:      snap.Stats.Groups,
		BlockErrors: snap.Stats.BlockErrors,
	}, nil
}
