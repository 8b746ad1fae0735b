package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/bartgrantham/gofm/rds"
)

func printStats(w io.Writer, st *rds.Station) {
	s := st.Stats
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "blocks\t%s\t\n", humanize.Comma(int64(s.Blocks)))
	fmt.Fprintf(tw, "corrected\t%s\t\n", humanize.Comma(int64(s.BlocksCorrected)))
	fmt.Fprintf(tw, "block errors\t%s\t(%s%%)\n", humanize.Comma(int64(s.BlockErrors)), humanize.FtoaWithDigits(100*s.BlockErrorRate(), 2))
	fmt.Fprintf(tw, "groups\t%s\t\n", humanize.Comma(int64(s.Groups)))
	fmt.Fprintf(tw, "group errors\t%s\t\n", humanize.Comma(int64(s.GroupErrors)))
	for id, n := range s.GroupTypes {
		if n > 0 {
			fmt.Fprintf(tw, "group %d\t%s\t\n", id, humanize.Comma(int64(n)))
		}
	}
	_ = tw.Flush()

	if !st.Valid.Has(rds.FieldPI) {
		return
	}
	snap := st.Snapshot()
	fmt.Fprintf(w, "\n%s  %-8s  %s\n", snap.PIHex(), snap.PS, snap.PTYName)
	if snap.CallSign != "" {
		fmt.Fprintf(w, "call sign  %s\n", snap.CallSign)
	}
	if snap.RT != "" {
		fmt.Fprintf(w, "radiotext  %s\n", snap.RT)
	}
	if len(snap.AF) > 0 {
		fmt.Fprintf(w, "AF         %s\n", formatAF(snap.AF))
	}
	if snap.Time != nil {
		fmt.Fprintf(w, "clock      %s\n", snap.Time.Format("2006-01-02 15:04 -07:00"))
	}
}
