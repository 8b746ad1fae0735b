package rds

import "strings"

// Fields is a bitmask with one bit per decoded RDS field.  The values match
// the V4L2 RDS library so masks can be passed through unchanged.
type Fields uint32

const (
	FieldPI   Fields = 0x01   // Program Identification
	FieldPTY  Fields = 0x02   // Program Type
	FieldTP   Fields = 0x04   // Traffic Program
	FieldPS   Fields = 0x08   // Program Service name
	FieldTA   Fields = 0x10   // Traffic Announcement
	FieldDI   Fields = 0x20   // Decoder Information
	FieldMS   Fields = 0x40   // Music/Speech
	FieldPTYN Fields = 0x80   // Program Type Name
	FieldRT   Fields = 0x100  // Radio Text
	FieldTime Fields = 0x200  // clock time and date
	FieldTMC  Fields = 0x400  // traffic message channel available
	FieldAF   Fields = 0x800  // alternative frequencies
	FieldECC  Fields = 0x1000 // Extended Country Code
	FieldLC   Fields = 0x2000 // Language Code
)

var fieldNames = []struct {
	f    Fields
	name string
}{
	{FieldPI, "PI"},
	{FieldPTY, "PTY"},
	{FieldTP, "TP"},
	{FieldPS, "PS"},
	{FieldTA, "TA"},
	{FieldDI, "DI"},
	{FieldMS, "MS"},
	{FieldPTYN, "PTYN"},
	{FieldRT, "RT"},
	{FieldTime, "TIME"},
	{FieldTMC, "TMC"},
	{FieldAF, "AF"},
	{FieldECC, "ECC"},
	{FieldLC, "LC"},
}

func (f Fields) Has(o Fields) bool {
	return f&o != 0
}

// String lists the set fields, e.g. "PI|PS|RT".
func (f Fields) String() string {
	var names []string
	for _, n := range fieldNames {
		if f&n.f != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// Events describes what happened in the decoding process itself, as opposed
// to which station fields changed.
type Events uint32

const (
	EventGroup Events = 0x01 // a complete group was received
	EventODA   Events = 0x02 // an open data application was announced
)

func (e Events) Has(o Events) bool {
	return e&o != 0
}

// Update is returned for every block handed to a Station.
type Update struct {
	Fields Fields
	Events Events
}

func (u Update) merge(o Update) Update {
	return Update{Fields: u.Fields | o.Fields, Events: u.Events | o.Events}
}

// Decoder Information flags, carried one bit per 0A/0B/15B group.
const (
	DIStereo         uint8 = 0x01
	DIArtificialHead uint8 = 0x02
	DICompressed     uint8 = 0x04
	DIDynamicPTY     uint8 = 0x08
)
