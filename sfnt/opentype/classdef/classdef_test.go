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


package classdef

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

func TestRoundTrip(t *testing.T) {
	cases := []Table{
		{},
		{1: 1},
		{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1, 9: 1, 10: 1},
		{1: 1, 2: 2, 3: 3, 4: 1, 100: 2},
		{10: 3, 11: 3, 12: 3, 500: 2, 501: 2, 502: 2},
	}
	for i, info := range cases {
		data := info.Append(nil)
		if len(data) != info.AppendLen() {
			t.Errorf("%d: AppendLen %d != %d", i, info.AppendLen(), len(data))
		}
		info2, err := Read(parser.New("test", data), 0)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(info, info2); d != "" {
			t.Errorf("%d: %s", i, d)
		}
	}
}

func TestGlyphs(t *testing.T) {
	info := Table{5: 2, 3: 1, 4: 2, 9: 1}
	if info.NumClasses() != 3 {
		t.Errorf("NumClasses = %d", info.NumClasses())
	}
	expected := [][]glyph.ID{nil, {3, 9}, {4, 5}}
	if d := cmp.Diff(expected, info.Glyphs()); d != "" {
		t.Error(d)
	}
}

func FuzzClassDef(f *testing.F) {
	f.Add([]byte{0, 1, 0, 1, 0, 2, 0, 1, 0, 2})
	f.Add([]byte{0, 2, 0, 0})
	f.Add([]byte{0, 2, 0, 2, 0, 1, 0, 3, 0, 7, 0, 10, 0, 12, 0, 1})
	f.Fuzz(func(t *testing.T, data1 []byte) {
		info1, err := Read(parser.New("test", data1), 0)
		if err != nil {
			return
		}
		data2 := info1.Append(nil)
		info2, err := Read(parser.New("test", data2), 0)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(info1, info2); d != "" {
			t.Fatal(d)
		}
	})
}
