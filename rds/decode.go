package rds

import "time"

/*
RDS data always sent: Program Identification (PI), Program Type (PTY),
Traffic Program (TP).  Group types handled here:

    0A, 0B : TA, M/S, DI, Program Service name, AF pairs (0A only)
    1A, 1B : Program Item Number, slow labeling codes (ECC, LC) in 1A
    2A, 2B : Radio Text
    3A     : Application Identification for Open Data
    4A     : Clock time and date
    10A    : Program Type Name
    15B    : Fast switching information (TA, M/S, DI)

Everything else is counted and kept as the last group.
*/

func (s *Station) dispatch(g Group) Update {
	s.Stats.Groups++
	s.Stats.GroupTypes[g.ID&0xf]++
	s.last = g
	s.haveGroup = true

	u := Update{Events: EventGroup}
	u.Fields |= s.mark(FieldPI, s.PI != g.PI)
	s.PI = g.PI
	u.Fields |= s.mark(FieldTP, s.TP != g.TrafficProgram())
	s.TP = g.TrafficProgram()
	u.Fields |= s.mark(FieldPTY, s.PTY != g.ProgramType())
	s.PTY = g.ProgramType()

	var d Update
	var ok = true
	switch {
	case g.ID == 0:
		d, ok = s.decodeBasic(g, true)
	case g.ID == 1:
		d, ok = s.decodeSlowLabel(g)
	case g.ID == 2:
		d, ok = s.decodeRadioText(g)
	case g.ID == 3 && g.Version == 'A':
		d = s.decodeODA(g)
	case g.ID == 4 && g.Version == 'A':
		d, ok = s.decodeClock(g)
	case g.ID == 10 && g.Version == 'A':
		d, ok = s.decodePTYN(g)
	case g.ID == 15 && g.Version == 'B':
		d, ok = s.decodeBasic(g, false)
	}
	if !ok {
		s.Stats.GroupErrors++
	}
	return u.merge(d)
}

// decodeBasic handles the switching flags of 0A, 0B and 15B and, for group
// 0, the PS segment and AF pair.
func (s *Station) decodeBasic(g Group, group0 bool) (Update, bool) {
	var u Update
	b := g.B()
	idx := int(b & 0x3)

	ta := b&0x10 != 0
	u.Fields |= s.mark(FieldTA, s.TA != ta)
	s.TA = ta

	ms := b&0x08 != 0
	u.Fields |= s.mark(FieldMS, s.MS != ms)
	s.MS = ms

	// segment 0 carries d3 (dynamic PTY) ... segment 3 carries d0 (stereo)
	bit := DIDynamicPTY >> uint(idx)
	di := s.DI &^ bit
	if b&0x04 != 0 {
		di |= bit
	}
	u.Fields |= s.mark(FieldDI, s.DI != di)
	s.DI = di

	if !group0 {
		return u, true
	}

	if !s.ps.fits(idx, 2) {
		return u, false
	}
	u.Fields |= s.mark(FieldPS, s.ps.write(idx, []byte{g.DataDMSB, g.DataDLSB}))

	if g.Version == 'A' {
		u.Fields |= s.decodeAF(g.DataCMSB, g.DataCLSB)
	}
	return u, true
}

func (s *Station) decodeAF(hi, lo uint8) Fields {
	if hi == afLFMFFollows {
		// lo is an LF/MF frequency, not supported
		return 0
	}
	announced := s.AF.announced
	if hi >= afCountBase && hi <= afCountLast {
		announced = hi - afCountBase
	}

	changed := false
	for _, code := range [2]uint8{hi, lo} {
		var freq uint32
		if code >= afFirstCode && code <= afLastCode {
			freq = afCodeHz(code)
		}
		if s.AF.Add(freq, announced) {
			changed = true
		}
	}
	if !changed && s.AF.Len() == 0 && announced == 0 {
		return 0
	}
	return s.mark(FieldAF, changed)
}

/*
1A block C:  LA vvv .... ....   v: variant

    0 : paging (4 bits) + Extended Country Code (8 bits)
    1 : TMC identification
    2 : paging identification
    3 : language code
    4,5 : not assigned
    6 : broadcaster use
    7 : EWS channel identification

Block D of 1A and 1B is the Program Item Number: ddddd hhhhh mmmmmm
*/
func (s *Station) decodeSlowLabel(g Group) (Update, bool) {
	var u Update

	d := g.D()
	if day := uint8(d >> 11); day != 0 {
		s.PIN = PIN{Day: day, Hour: uint8(d>>6) & 0x1f, Minute: uint8(d) & 0x3f}
	}

	if g.Version != 'A' {
		return u, true
	}

	c := g.C()
	switch (c >> 12) & 0x7 {
	case 0:
		ecc := uint8(c)
		u.Fields |= s.mark(FieldECC, s.ECC != ecc)
		s.ECC = ecc
	case 1:
		u.Fields |= s.mark(FieldTMC, false)
	case 3:
		lc := uint8(c)
		u.Fields |= s.mark(FieldLC, s.LC != lc)
		s.LC = lc
	case 4, 5:
		return u, false
	}
	return u, true
}

// decodeRadioText handles 2A (4 chars in C and D) and 2B (2 chars in D).
func (s *Station) decodeRadioText(g Group) (Update, bool) {
	b := g.B()
	idx := int(b & 0xf)
	ab := b&0x10 != 0

	seg := []byte{g.DataCMSB, g.DataCLSB, g.DataDMSB, g.DataDLSB}
	if g.Version == 'B' {
		seg = seg[2:]
	}
	if !s.rt.fits(idx, len(seg)) {
		return Update{}, false
	}

	changed := s.rt.toggle(ab)
	if s.rt.write(idx, seg) {
		changed = true
	}
	return Update{Fields: s.mark(FieldRT, changed)}, true
}

// decodeODA registers the application announced in a 3A group: block B
// carries the group it is broadcast in, block D the AID.
func (s *Station) decodeODA(g Group) Update {
	var u Update
	b := g.B()
	groupID := uint8(b>>1) & 0xf
	version := byte('A')
	if b&0x1 != 0 {
		version = 'B'
	}
	aid := g.D()

	if !s.ODA.Announce(groupID, version, aid) {
		return u
	}
	u.Events |= EventODA
	if aid == AIDTMC || aid == AIDTMCPrivate {
		u.Fields |= s.mark(FieldTMC, true)
	}
	return u
}

/*
4A:
    B : ...._...._...._..jj   MJD bits 16-15
    C : jjjj_jjjj_jjjj_jjjh   MJD bits 14-0, hour bit 4
    D : hhhh_mmmm_mmso_oooo   hour bits 3-0, minute, offset sign, offset in
                              half hours
*/
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

func (s *Station) decodeClock(g Group) (Update, bool) {
	b, c, d := g.B(), g.C(), g.D()
	mjd := int(b&0x3)<<15 | int(c>>1)
	hour := int(c&0x1)<<4 | int(d>>12)
	minute := int(d>>6) & 0x3f
	offset := int(d&0x1f) * 30 * 60
	if d&0x20 != 0 {
		offset = -offset
	}
	if mjd == 0 || hour > 23 || minute > 59 {
		return Update{}, false
	}

	utc := mjdEpoch.AddDate(0, 0, mjd).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	local := utc.In(time.FixedZone("", offset))

	_, prev := s.Time.Zone()
	changed := !s.Time.Equal(local) || prev != offset
	s.Time = local
	return Update{Fields: s.mark(FieldTime, changed)}, true
}

// decodePTYN handles 10A: A/B flag in bit 4 and a one bit segment index,
// 4 chars in C and D.
func (s *Station) decodePTYN(g Group) (Update, bool) {
	b := g.B()
	idx := int(b & 0x1)
	ab := b&0x10 != 0
	seg := []byte{g.DataCMSB, g.DataCLSB, g.DataDMSB, g.DataDLSB}
	if !s.ptyn.fits(idx, len(seg)) {
		return Update{}, false
	}

	changed := s.ptyn.toggle(ab)
	if s.ptyn.write(idx, seg) {
		changed = true
	}
	return Update{Fields: s.mark(FieldPTYN, changed)}, true
}
