// sub-fonts - derive static font variants from OpenType fonts
// Copyright (C) 2025  The sub-fonts Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package gtab

import (
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// writer assembles a table which refers to child tables through 16-bit
// offsets.  Child tables are queued by offsetTo and appended, with
// identical children stored only once, when flush is called.
type writer struct {
	buf     []byte
	pending []pendingChild
	placed  map[string]int
	err     error
}

type pendingChild struct {
	slot int // position of the offset field
	base int // position the offset is relative to
	data []byte
}

func newWriter() *writer {
	return &writer{placed: make(map[string]int)}
}

func (w *writer) u16(vals ...uint16) {
	for _, v := range vals {
		w.buf = append(w.buf, byte(v>>8), byte(v))
	}
}

func (w *writer) int16(v int16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

func (w *writer) count(n int) {
	if n > 0xFFFF {
		w.fail("count exceeds 65535")
	}
	w.u16(uint16(n))
}

func (w *writer) gids(gg []glyph.ID) {
	for _, gid := range gg {
		w.buf = append(w.buf, byte(gid>>8), byte(gid))
	}
}

func (w *writer) tag(tag string) {
	var buf [4]byte
	copy(buf[:], tag+"    ")
	w.buf = append(w.buf, buf[:]...)
}

// pos returns the current length of the output.
func (w *writer) pos() int {
	return len(w.buf)
}

// offsetTo writes an offset field which will point to data, relative to
// base.  A nil data slice gives a NULL offset.
func (w *writer) offsetTo(base int, data []byte) {
	slot := len(w.buf)
	w.buf = append(w.buf, 0, 0)
	if data == nil {
		return
	}
	w.pending = append(w.pending, pendingChild{slot: slot, base: base, data: data})
}

// flush appends all queued child tables and fills in their offsets.
func (w *writer) flush() {
	for _, c := range w.pending {
		key := string(c.data)
		pos, seen := w.placed[key]
		if !seen || pos <= c.base {
			pos = len(w.buf)
			w.buf = append(w.buf, c.data...)
			w.placed[key] = pos
		}
		offs := pos - c.base
		if offs > 0xFFFF {
			w.fail("16-bit offset overflow")
			continue
		}
		w.buf[c.slot] = byte(offs >> 8)
		w.buf[c.slot+1] = byte(offs)
	}
	w.pending = w.pending[:0]
}

func (w *writer) fail(reason string) {
	if w.err == nil {
		w.err = &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/opentype/gtab",
			Feature:   reason,
		}
	}
}

// bytes flushes the writer and returns the encoded table.
func (w *writer) bytes() ([]byte, error) {
	w.flush()
	return w.buf, w.err
}
