package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell"
	"periph.io/x/conn/v3/physic"

	"github.com/bartgrantham/gofm/rds"
)

// view is everything on screen, gathered from the tuner and the station.
type view struct {
	freq   physic.Frequency
	rssi   int
	stereo bool
	ready  bool
	volume int
	muted  bool
	snap   rds.Snapshot
}

type display struct {
	scr         tcell.Screen
	big, medium font
	freqStyle   tcell.Style
	callStyle   tcell.Style
	statusStyle tcell.Style
}

func newDisplay(scr tcell.Screen, big, medium font) *display {
	black := tcell.Color(int32(232))
	white := tcell.Color(int32(255))
	return &display{
		scr:         scr,
		big:         big,
		medium:      medium,
		freqStyle:   tcell.StyleDefault.Foreground(white).Background(black).Bold(true),
		callStyle:   tcell.StyleDefault,
		statusStyle: tcell.StyleDefault.Reverse(true),
	}
}

func clearRect(scr tcell.Screen, x, y, h, w int, c rune, style tcell.Style) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			scr.SetContent(i, j, c, nil, style)
		}
	}
}

func drawLines(scr tcell.Screen, x, y int, style tcell.Style, lines []string) {
	for j, line := range lines {
		i := 0
		for _, c := range line {
			scr.SetContent(x+i, y+j, c, nil, style)
			i++
		}
	}
}

// centered draws lines in the middle of row y and returns the row below them.
func (d *display) centered(y int, style tcell.Style, lines []string) int {
	w, _ := d.scr.Size()
	width := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > width {
			width = n
		}
	}
	clearRect(d.scr, 0, y, len(lines), w, ' ', style)
	x := (w - width) / 2
	if x < 0 {
		x = 0
	}
	drawLines(d.scr, x, y, style, lines)
	return y + len(lines)
}

func (d *display) draw(v view) {
	w, h := d.scr.Size()

	y := d.centered(1, d.freqStyle, d.big.Render(megahertz(v.freq)))
	y = d.centered(y+1, d.callStyle, d.medium.Render(callLetters(v.snap)))
	y = d.centered(y+1, d.callStyle, []string{v.snap.PTYName})

	rt := ""
	if v.snap.RT != "" {
		rt = "- - - = = =  " + v.snap.RT + "  = = = - - -"
	}
	y = d.centered(y+1, d.callStyle, []string{rt})

	ps := ""
	if v.snap.Valid.Has(rds.FieldPS) {
		ps = "(" + v.snap.PS + ")"
	}
	d.centered(y, d.callStyle, []string{ps})

	clearRect(d.scr, 0, h-1, 1, w, ' ', d.statusStyle)
	drawLines(d.scr, 0, h-1, d.statusStyle, []string{statusLine(v)})
	d.scr.Show()
}

func megahertz(f physic.Frequency) string {
	return fmt.Sprintf("%.1f", float64(f)/float64(physic.MegaHertz))
}

// callLetters is what the big middle line shows: the call sign in North
// America, the PS name elsewhere, the PI code until either is known.
func callLetters(snap rds.Snapshot) string {
	switch {
	case snap.CallSign != "":
		return snap.CallSign
	case snap.Valid.Has(rds.FieldPS):
		return strings.TrimSpace(snap.PS)
	case snap.Valid.Has(rds.FieldPI):
		return snap.PIHex()
	}
	return ""
}

func indicator(on bool, c rune) rune {
	if on {
		return c
	}
	return ' '
}

func statusLine(v view) string {
	stereo := "Mono  "
	if v.stereo {
		stereo = "Stereo"
	}
	vol := fmt.Sprintf("vol %2d", v.volume)
	if v.muted {
		vol = "muted "
	}
	stats := v.snap.Stats
	return fmt.Sprintf(" %s MHz  RSSI %3d  %s  RDS %c  TP %c  TA %c  %s  groups %s  errors %s%%",
		megahertz(v.freq), v.rssi, stereo,
		indicator(v.ready, 'X'), indicator(v.snap.TP, 'T'), indicator(v.snap.TA, 'A'),
		vol,
		humanize.Comma(int64(stats.Groups)),
		humanize.FtoaWithDigits(100*stats.BlockErrorRate(), 1))
}
