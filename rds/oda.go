package rds

// There are 16 groups each with version A or B.  Of these 32 groups 18 can
// carry open data applications.
const MaxODACount = 18

// Application IDs of RDS-TMC (ALERT-C), announced in 3A groups.
const (
	AIDTMC        uint16 = 0xcd46
	AIDTMCPrivate uint16 = 0xcd47
)

// ODA is one open data application announced by a 3A group.  AIDs are
// centrally administered by the RDS Forum.
type ODA struct {
	GroupID uint8  `json:"group_id"`
	Version byte   `json:"version"`
	AID     uint16 `json:"aid"`
}

// ODASet holds the open data applications announced on a channel, keyed by
// the group that carries them.
type ODASet struct {
	entries []ODA
}

// Announce registers an application.  It reports true for a new entry or a
// redefinition of a known group with a different AID; repeats and
// announcements past capacity report false.
func (o *ODASet) Announce(groupID uint8, version byte, aid uint16) bool {
	for i := range o.entries {
		e := &o.entries[i]
		if e.GroupID != groupID || e.Version != version {
			continue
		}
		if e.AID == aid {
			return false
		}
		e.AID = aid
		return true
	}
	if len(o.entries) >= MaxODACount {
		return false
	}
	o.entries = append(o.entries, ODA{GroupID: groupID, Version: version, AID: aid})
	return true
}

// Lookup returns the application carried in the given group, if announced.
func (o *ODASet) Lookup(groupID uint8, version byte) (ODA, bool) {
	for _, e := range o.entries {
		if e.GroupID == groupID && e.Version == version {
			return e, true
		}
	}
	return ODA{}, false
}

func (o *ODASet) Len() int { return len(o.entries) }

// Entries returns a copy in announcement order.
func (o *ODASet) Entries() []ODA {
	return append([]ODA(nil), o.entries...)
}

func (o *ODASet) reset() {
	o.entries = o.entries[:0]
}
