// Package rds decodes the Radio Data System (and its North American variant
// RBDS) from the raw blocks an FM tuner captures off the 57 kHz subcarrier.
//
// A Station is fed one block at a time, in the order the tuner received
// them.  Blocks are assembled into groups, and every completed group updates
// the station's fields.  Each call reports which fields changed:
//
//	st := rds.New(false)
//	for {
//		n, err := dev.Read(rec[:])
//		...
//		u, err := st.Add(rec[:n])
//		if u.Fields.Has(rds.FieldPS) {
//			fmt.Println(st.PS())
//		}
//	}
//
// A Station is not safe for concurrent use.  Stations share no state, so one
// per tuner can run on separate goroutines.
package rds

import "time"

// PIN is the Program Item Number: the scheduled start of the current
// program, day of month and UTC hour and minute.
type PIN struct {
	Day    uint8 `json:"day"`
	Hour   uint8 `json:"hour"`
	Minute uint8 `json:"minute"`
}

// Station is the decoded RDS state of one tuned channel.
type Station struct {
	rbds bool

	// Valid has a bit set for every field received since the last reset.
	Valid Fields

	PI   uint16
	PTY  uint8
	TP   bool // station carries traffic information
	TA   bool // traffic announcement on air
	MS   bool // true: music, false: speech
	DI   uint8
	ECC  uint8
	LC   uint8
	PIN  PIN
	Time time.Time // local time of transmission

	ps   segments
	ptyn segments
	rt   segments

	ODA   ODASet
	AF    AFSet
	Stats Statistics

	asm       assembler
	last      Group
	haveGroup bool
}

// New starts a decoding session.  rbds selects the North American lookup
// tables; it does not change decoding.
func New(rbds bool) *Station {
	return &Station{
		rbds: rbds,
		ps:   newSegments(PSLength),
		ptyn: newSegments(PTYNLength),
		rt:   newSegments(RTLength),
	}
}

func (s *Station) RBDS() bool { return s.rbds }

// Reset clears all RDS information, e.g. after the tuner changed channel.
// Statistics are kept unless stats is set.  Announced ODAs and AFs belong
// to the channel and are always cleared.
func (s *Station) Reset(stats bool) {
	s.Valid = 0
	s.PI, s.PTY, s.DI, s.ECC, s.LC = 0, 0, 0, 0, 0
	s.TP, s.TA, s.MS = false, false, false
	s.PIN = PIN{}
	s.Time = time.Time{}
	s.ps = newSegments(PSLength)
	s.ptyn = newSegments(PTYNLength)
	s.rt = newSegments(RTLength)
	s.ODA.reset()
	s.AF.reset()
	s.asm.reset()
	s.last = Group{}
	s.haveGroup = false
	if stats {
		s.Stats = Statistics{}
	}
}

// Add decodes one raw V4L2 RDS record, as read from a /dev/radio device.
func (s *Station) Add(rec []byte) (Update, error) {
	if s == nil {
		return Update{}, ErrNilStation
	}
	b, err := ParseBlock(rec)
	if err != nil {
		return Update{}, err
	}
	return s.AddBlock(b)
}

// AddBlock feeds one block and returns what changed.  Bad blocks and broken
// block sequences are counted in Stats, they are not errors.
func (s *Station) AddBlock(b Block) (Update, error) {
	if s == nil {
		return Update{}, ErrNilStation
	}
	s.Stats.Blocks++
	if b.Erroneous() {
		s.Stats.BlockErrors++
		s.Stats.GroupErrors++
		s.asm.reset()
		return Update{}, nil
	}
	if b.Corrected {
		s.Stats.BlocksCorrected++
	}

	g, out := s.asm.push(b)
	switch out {
	case aborted:
		s.Stats.GroupErrors++
	case complete:
		return s.dispatch(g), nil
	}
	return Update{}, nil
}

// LastGroup returns a copy of the most recently completed group, for
// decoding group types this package doesn't handle.
func (s *Station) LastGroup() (Group, bool) {
	return s.last, s.haveGroup
}

// PS is the 8 character Program Service name.
func (s *Station) PS() string { return s.ps.String() }

// PTYN is the 8 character Program Type Name.
func (s *Station) PTYN() string { return s.ptyn.String() }

// RT is the Radio Text up to the terminating carriage return, if one was
// received.
func (s *Station) RT() string { return s.rt.String() }

// RTComplete reports whether every segment of the current radio text has
// been received.
func (s *Station) RTComplete() bool { return s.rt.complete() }

// RTLen is the length of the radio text message.
func (s *Station) RTLen() int { return s.rt.length() }

// RTAB and PTYNAB are the current A/B flags; a flip marks a new message.
func (s *Station) RTAB() bool { return s.rt.ab }

func (s *Station) PTYNAB() bool { return s.ptyn.ab }

// PSBytes, PTYNBytes and RTBytes return zero terminated copies of the raw
// buffers.
func (s *Station) PSBytes() []byte { return s.ps.cstring() }

func (s *Station) PTYNBytes() []byte { return s.ptyn.cstring() }

func (s *Station) RTBytes() []byte { return s.rt.cstring() }

// mark records that f was received and returns f if it is new or changed.
func (s *Station) mark(f Fields, changed bool) Fields {
	first := s.Valid&f == 0
	s.Valid |= f
	if first || changed {
		return f
	}
	return 0
}
