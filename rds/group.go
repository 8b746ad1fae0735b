package rds

import "fmt"

/*
Block layout shared by every group:

    A : PI code
    B : Group Type      : xxxx_...._...._....
        Version         : ...._x..._...._....
        Traffic Program : ...._.x.._...._....
        Program Type    : ...._..xx_xxx._....
        GT-dependent    : ...._...._...x_xxxx
    C : GT-dependent (version B groups repeat PI here, offset C')
    D : GT-dependent
*/

// Group is one completed set of four blocks.  The data fields are left
// uninterpreted so callers can decode group types this package doesn't
// handle (e.g. open data applications).
type Group struct {
	PI      uint16
	ID      uint8 // 0..15
	Version byte  // 'A' or 'B'

	DataBLSB uint8 // group type dependent 5 bits of block B
	DataCMSB uint8
	DataCLSB uint8
	DataDMSB uint8
	DataDLSB uint8

	b uint16
}

func newGroup(a, b, c, d uint16) Group {
	g := Group{
		PI:       a,
		ID:       uint8(b >> 12),
		Version:  'A',
		DataBLSB: uint8(b),
		DataCMSB: uint8(c >> 8),
		DataCLSB: uint8(c),
		DataDMSB: uint8(d >> 8),
		DataDLSB: uint8(d),
		b:        b,
	}
	if b&0x0800 != 0 {
		g.Version = 'B'
	}
	return g
}

// B returns the full block B word.
func (g Group) B() uint16 { return g.b }

func (g Group) C() uint16 { return uint16(g.DataCMSB)<<8 | uint16(g.DataCLSB) }

func (g Group) D() uint16 { return uint16(g.DataDMSB)<<8 | uint16(g.DataDLSB) }

func (g Group) TrafficProgram() bool { return g.b&0x0400 != 0 }

func (g Group) ProgramType() uint8 { return uint8(g.b>>5) & 0x1f }

// Type is the conventional name, e.g. "0A" or "14B".
func (g Group) Type() string {
	return fmt.Sprintf("%d%c", g.ID, g.Version)
}

// Description is the RDS standard's short description of the group type.
func (g Group) Description() string {
	if g.Version == 'B' {
		return groupTypesB[g.ID&0xf]
	}
	return groupTypesA[g.ID&0xf]
}

func (g Group) String() string {
	return fmt.Sprintf("%.4x %.4x %.4x %.4x %s", g.PI, g.b, g.C(), g.D(), g.Type())
}

var groupTypesA = [16]string{
	"Basic Tuning and Switching Information only",
	"Program Item Number and Slow Labeling Codes only",
	"Radio Text only",
	"Applications Identification for ODA only",
	"Clock Time and Date only",
	"Transparent Data Channels (32 channels) or ODA",
	"In-House Applications of ODA",
	"Radio Paging of ODA",
	"Traffic Message Channel or ODA",
	"Emergency Warning System or ODA",
	"Program Type Name",
	"Open Data Applications",
	"Open Data Applications",
	"Enhanced Radio Paging or ODA",
	"Enhanced Other Networks Information Only",
	"Defined in RBDS only",
}

var groupTypesB = [16]string{
	"Basic Tuning and Switching Information only",
	"Program Item Number",
	"Radio Text only",
	"Open Data Applications",
	"Open Data Applications",
	"Transparent Data Channels (32 channels) or ODA",
	"In-House Applications of ODA",
	"Radio Paging of ODA",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Open Data Applications",
	"Enhanced Other Networks Information Only",
	"Fast Switching Information only",
}
