package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// See: figfont.txt

// FIGfont is a FIGlet font, enough of one to draw the frequency and call
// sign in big letters.
type FIGfont struct {
	Name      string
	height    int
	hardblank byte
	baseline  int
	maxlen    int
	oldlayout int
	comments  int
	chars     map[rune][]string
}

var (
	ErrInvalidFont = errors.New("invalid FIGfont")
	ErrParse       = errors.New("couldn't parse FIGfont")
)

var charorder = ` !"#$%&'()*+,-./` + `0123456789:;<=>?` + `@ABCDEFGHIJKLMNO` +
	`PQRSTUVWXYZ[\]^_` + "`abcdefghijklmno" + "pqrstuvwxyz{|}~" +
	"ÄÖÜäöüß"

func (f *FIGfont) String() string {
	return f.Name
}

func (f *FIGfont) Height() int {
	return f.height
}

// NewFIGfont reads a .flf font.  Only the required characters are loaded,
// code-tagged ones are ignored.
func NewFIGfont(name string, r io.Reader) (*FIGfont, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrParse
	}

	header := strings.Fields(lines[0])
	if len(header) < 2 || len(header[0]) < 6 || header[0][:5] != "flf2a" {
		return nil, ErrParse
	}

	var params []int
	for _, s := range header[1:] {
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: header %q", ErrParse, lines[0])
		}
		params = append(params, i)
	}
	param := func(i int) int {
		if i < len(params) {
			return params[i]
		}
		return 0
	}

	f := &FIGfont{
		Name:      name,
		hardblank: header[0][5],
		height:    param(0),
		baseline:  param(1),
		maxlen:    param(2),
		oldlayout: param(3),
		comments:  param(4),
		chars:     map[rune][]string{},
	}
	if f.height <= 0 {
		return nil, fmt.Errorf("%w: height %d", ErrInvalidFont, f.height)
	}

	i := 0
	for _, c := range charorder {
		idx := 1 + f.comments + i*f.height
		i++
		if idx+f.height > len(lines) {
			return nil, fmt.Errorf("%w: %q is truncated", ErrInvalidFont, c)
		}
		for j := 0; j < f.height; j++ {
			line := lines[idx+j]
			if line == "" {
				return nil, fmt.Errorf("%w: %q line %d is empty", ErrInvalidFont, c, j)
			}
			// each line ends with one or two endmarks, usually '@'
			endmark := line[len(line)-1:]
			f.chars[c] = append(f.chars[c], strings.TrimRight(line, endmark))
		}
	}
	return f, nil
}

// Render lays the characters of s side by side.  It does _not_ smush or fit
// the way FIGlet does, and skips characters the font doesn't have.
func (f *FIGfont) Render(s string) []string {
	out := make([]string, f.height)
	hardblank := string([]byte{f.hardblank})
	for _, c := range s {
		if c == 0 {
			break
		}
		fig, ok := f.chars[c]
		if !ok {
			continue
		}
		for i := 0; i < f.height; i++ {
			out[i] += strings.ReplaceAll(fig[i], hardblank, " ")
		}
	}
	for i := range out {
		out[i] = strings.TrimRight(out[i], " ")
	}
	return out
}

// plainFont draws text as is, for when no FIGlet font was given.
type plainFont struct{}

func (plainFont) Height() int { return 1 }

func (plainFont) Render(s string) []string { return []string{s} }

type font interface {
	Height() int
	Render(s string) []string
}
