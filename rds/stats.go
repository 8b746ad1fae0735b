package rds

// Statistics are running counters over a decoding session.  Every block
// handed to the station counts once in Blocks whatever happens to it; a
// corrected block counts as corrected only, not as an error.
type Statistics struct {
	Blocks          uint32     `json:"blocks"`
	Groups          uint32     `json:"groups"`           // successfully completed groups
	BlockErrors     uint32     `json:"block_errors"`     // dropped as uncorrectable
	GroupErrors     uint32     `json:"group_errors"`     // bad order, bad content or an uncorrectable block, even between groups
	BlocksCorrected uint32     `json:"blocks_corrected"` // accepted after bit correction
	GroupTypes      [16]uint32 `json:"group_types"`      // completed groups per group id
}

// BlockErrorRate is the share of blocks dropped as uncorrectable.
func (s Statistics) BlockErrorRate() float64 {
	if s.Blocks == 0 {
		return 0
	}
	return float64(s.BlockErrors) / float64(s.Blocks)
}
