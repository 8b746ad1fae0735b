package rds

type assemblerState uint8

// The next expected block position is implied by the state.
const (
	stateIdle    assemblerState = iota // want A
	stateHaveA                         // want B
	stateHaveAB                        // want C (or C' for version B)
	stateHaveABC                       // want D
)

func (s assemblerState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateHaveA:
		return "A"
	case stateHaveAB:
		return "AB"
	case stateHaveABC:
		return "ABC"
	}
	return "?"
}

type outcome uint8

const (
	pending  outcome = iota // block stored, group incomplete
	complete                // group materialized
	aborted                 // sequence error, partial group dropped
)

// assembler collects validated blocks into groups.  It only judges block
// order, never block content.
type assembler struct {
	state assemblerState
	words [4]uint16
}

func (a *assembler) reset() {
	a.state = stateIdle
	a.words = [4]uint16{}
}

// push runs one transition.  Block A always (re)starts a group; resyncing on
// A is not a fault.  Any other unexpected position aborts.
func (a *assembler) push(b Block) (Group, outcome) {
	if b.Position == BlockA {
		a.words = [4]uint16{b.Data}
		a.state = stateHaveA
		return Group{}, pending
	}

	switch a.state {
	case stateHaveA:
		if b.Position == BlockB {
			a.words[1] = b.Data
			a.state = stateHaveAB
			return Group{}, pending
		}
	case stateHaveAB:
		versionB := a.words[1]&0x0800 != 0
		if b.Position == BlockC || (versionB && b.Position == BlockCPrime) {
			a.words[2] = b.Data
			a.state = stateHaveABC
			return Group{}, pending
		}
	case stateHaveABC:
		if b.Position == BlockD {
			g := newGroup(a.words[0], a.words[1], a.words[2], b.Data)
			a.reset()
			return g, complete
		}
	}

	a.reset()
	return Group{}, aborted
}
