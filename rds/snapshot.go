package rds

import (
	"fmt"
	"time"
)

// Snapshot is a point in time copy of a Station, safe to hand to other
// goroutines and to marshal.
type Snapshot struct {
	PI          uint16     `json:"pi"`
	CallSign    string     `json:"call_sign,omitempty"`
	PS          string     `json:"ps"`
	PTY         uint8      `json:"pty"`
	PTYName     string     `json:"pty_name"`
	PTYN        string     `json:"ptyn,omitempty"`
	RT          string     `json:"rt"`
	TP          bool       `json:"tp"`
	TA          bool       `json:"ta"`
	MS          bool       `json:"ms"`
	DI          uint8      `json:"di"`
	ECC         uint8      `json:"ecc"`
	LC          uint8      `json:"lc"`
	Country     string     `json:"country"`
	Language    string     `json:"language"`
	Coverage    string     `json:"coverage"`
	PIN         PIN        `json:"pin"`
	Time        *time.Time `json:"time,omitempty"`
	AF          []uint32   `json:"af"`
	AFAnnounced int        `json:"af_announced"`
	ODA         []ODA      `json:"oda"`
	Valid       Fields     `json:"valid"`
	RBDS        bool       `json:"rbds"`
	Stats       Statistics `json:"stats"`
}

func (s *Station) Snapshot() Snapshot {
	snap := Snapshot{
		PI:          s.PI,
		CallSign:    s.CallSign(),
		PS:          s.PS(),
		PTY:         s.PTY,
		PTYName:     s.PTYName(),
		PTYN:        s.PTYN(),
		RT:          s.RT(),
		TP:          s.TP,
		TA:          s.TA,
		MS:          s.MS,
		DI:          s.DI,
		ECC:         s.ECC,
		LC:          s.LC,
		Country:     s.CountryName(),
		Language:    s.LanguageName(),
		Coverage:    s.CoverageName(),
		PIN:         s.PIN,
		AF:          s.AF.Frequencies(),
		AFAnnounced: s.AF.Announced(),
		ODA:         s.ODA.Entries(),
		Valid:       s.Valid,
		RBDS:        s.rbds,
		Stats:       s.Stats,
	}
	if s.Valid.Has(FieldTime) {
		t := s.Time
		snap.Time = &t
	}
	return snap
}

// PIHex is the PI code the way receivers display it.
func (s Snapshot) PIHex() string {
	return fmt.Sprintf("%.4X", s.PI)
}
