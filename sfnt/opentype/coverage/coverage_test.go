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


package coverage

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

func TestFormatChoice(t *testing.T) {
	cases := []struct {
		glyphs []glyph.ID
		format byte
	}{
		{nil, 1},
		{[]glyph.ID{3}, 1},
		{[]glyph.ID{1, 5, 9}, 1},
		{[]glyph.ID{10, 11, 12, 13, 14, 15}, 2},
		{[]glyph.ID{1, 2, 3, 4, 100, 101, 102, 103}, 2},
	}
	for i, c := range cases {
		table := FromGlyphs(c.glyphs)
		data := table.Encode()
		if data[1] != c.format {
			t.Errorf("%d: format %d, expected %d", i, data[1], c.format)
		}
		if len(data) != table.EncodeLen() {
			t.Errorf("%d: EncodeLen %d != %d", i, table.EncodeLen(), len(data))
		}
		table2, err := Read(parser.New("test", data), 0)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(table, table2); d != "" {
			t.Errorf("%d: %s", i, d)
		}
	}
}

func TestPrune(t *testing.T) {
	table := FromGlyphs([]glyph.ID{2, 4, 6, 8})
	table.Prune(2)
	if d := cmp.Diff([]glyph.ID{2, 4}, table.Glyphs()); d != "" {
		t.Error(d)
	}
}

func TestUnordered(t *testing.T) {
	data := []byte{0, 1, 0, 2, 0, 5, 0, 4}
	_, err := Read(parser.New("test", data), 0)
	if err == nil {
		t.Error("unordered coverage table accepted")
	}
}

func FuzzCoverage(f *testing.F) {
	f.Add([]byte{0, 1, 0, 0})
	f.Add([]byte{0, 1, 0, 3, 1, 0, 1, 1, 1, 2})
	f.Add([]byte{0, 2, 0, 0})
	f.Add([]byte{0, 2, 0, 1, 1, 0, 1, 2, 0, 0})
	f.Add([]byte{0, 2, 0, 2, 1, 0, 1, 2, 0, 0, 2, 0, 2, 5, 0, 3})
	f.Fuzz(func(t *testing.T, data1 []byte) {
		c1, err := Read(parser.New("test", data1), 0)
		if err != nil {
			return
		}

		data2 := c1.Encode()
		if len(data2) > len(data1) {
			t.Error("inefficient encoding")
		}

		c2, err := Read(parser.New("test", data2), 0)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(c1, c2); d != "" {
			t.Fatal(d)
		}
	})
}
