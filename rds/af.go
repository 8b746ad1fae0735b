package rds

// AF Method A allows a maximum of 25 AFs.  Method B lists are longer but are
// capped at the same size.
const MaxAFCount = 25

/*
AF codes, two per 0A group in block C:

    0        : not to be used
    1..204   : 87.6 .. 107.9 MHz in 100 kHz steps
    205      : filler
    224..249 : number of AFs that follow (0..25)
    250      : an LF/MF frequency follows
    others   : not assigned
*/
const (
	afFirstCode    = 1
	afLastCode     = 204
	afCountBase    = 224
	afCountLast    = 249
	afLFMFFollows  = 250
	afBaseHz       = 87500000
	afStepHz       = 100000
	minAFHz uint32 = afBaseHz + afFirstCode*afStepHz
	maxAFHz uint32 = afBaseHz + afLastCode*afStepHz
)

func afCodeHz(code uint8) uint32 {
	return afBaseHz + uint32(code)*afStepHz
}

// AFSet is the list of alternative frequencies of a channel in order of
// arrival; broadcasters may order AFs by preference.
type AFSet struct {
	announced uint8
	freqs     []uint32
}

// Add records the announced count and appends freq (in Hz) if it is a valid
// FM broadcast AF not seen before and there is room.  freq 0 only updates the
// announced count.  It reports whether the set changed.
func (a *AFSet) Add(freq uint32, announced uint8) bool {
	changed := a.announced != announced
	a.announced = announced
	if freq < minAFHz || freq > maxAFHz || a.Contains(freq) || len(a.freqs) >= MaxAFCount {
		return changed
	}
	a.freqs = append(a.freqs, freq)
	return true
}

func (a *AFSet) Contains(freq uint32) bool {
	for _, f := range a.freqs {
		if f == freq {
			return true
		}
	}
	return false
}

// Announced is the number of AFs the broadcaster says it transmits; it may
// differ from Len.
func (a *AFSet) Announced() int { return int(a.announced) }

func (a *AFSet) Len() int { return len(a.freqs) }

// Frequencies returns a copy of the AFs in Hz.
func (a *AFSet) Frequencies() []uint32 {
	return append([]uint32(nil), a.freqs...)
}

func (a *AFSet) reset() {
	a.announced = 0
	a.freqs = a.freqs[:0]
}
