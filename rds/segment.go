package rds

import "bytes"

const (
	PSLength   = 8
	PTYNLength = 8
	RTLength   = 64
)

const carriageReturn = 0x0d

// segments reassembles a fixed length text field from indexed segments.  The
// segment width is a property of the write, so 2A (4 chars) and 2B (2 chars)
// radio text share one buffer.
type segments struct {
	buf      []byte
	received uint64 // one bit per character, fields are at most 64 long
	ab       bool
	end      int // position of the terminating CR, -1 if none seen
}

func newSegments(n int) segments {
	return segments{buf: make([]byte, n), end: -1}
}

func (s *segments) clear() {
	for i := range s.buf {
		s.buf[i] = 0
	}
	s.received = 0
	s.end = -1
}

// fits reports whether segment index of the given width lies in the buffer.
func (s *segments) fits(index, width int) bool {
	return index >= 0 && width > 0 && (index+1)*width <= len(s.buf)
}

// toggle applies the A/B flag of a new segment.  A flip announces a new
// message: the buffer is cleared and true returned.
func (s *segments) toggle(ab bool) bool {
	if ab == s.ab {
		return false
	}
	s.ab = ab
	s.clear()
	return true
}

// write stores seg at index*len(seg) and reports whether the buffer content
// changed.  Callers must check fits first.
func (s *segments) write(index int, seg []byte) bool {
	off := index * len(seg)
	changed := !bytes.Equal(s.buf[off:off+len(seg)], seg)
	copy(s.buf[off:], seg)
	for i := range seg {
		s.received |= 1 << uint(off+i)
	}
	if i := bytes.IndexByte(seg, carriageReturn); i >= 0 {
		if s.end != off+i {
			changed = true
		}
		s.end = off + i
	} else if s.end >= off && s.end < off+len(seg) {
		// the CR was overwritten
		s.end = -1
		changed = true
	}
	return changed
}

// length is the number of meaningful characters: up to the CR if one was
// received, otherwise up to the last received character.
func (s *segments) length() int {
	if s.end >= 0 {
		return s.end
	}
	for i := len(s.buf) - 1; i >= 0; i-- {
		if s.received&(1<<uint(i)) != 0 {
			return i + 1
		}
	}
	return 0
}

// complete reports whether every character up to length has been received.
func (s *segments) complete() bool {
	n := s.length()
	if n == 0 {
		return false
	}
	// for n == 64 the shift yields 0 and the mask wraps to all ones
	mask := uint64(1)<<uint(n) - 1
	return s.received&mask == mask
}

// String renders the text, missing characters as blanks.
func (s *segments) String() string {
	n := s.length()
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if s.buf[i] == 0 {
			out[i] = ' '
		} else {
			out[i] = s.buf[i]
		}
	}
	return string(out)
}

// cstring is the raw buffer plus a terminating zero, the layout C consumers
// of V4L2 RDS data expect.
func (s *segments) cstring() []byte {
	out := make([]byte, len(s.buf)+1)
	copy(out, s.buf[:s.length()])
	return out
}
