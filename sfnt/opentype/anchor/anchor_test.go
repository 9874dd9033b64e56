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


package anchor

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

func TestRoundTrip(t *testing.T) {
	cases := []*Table{
		{X: 100, Y: -20, Format: 1},
		{X: 1, Y: 2, Format: 2, AnchorPoint: 7},
		{X: -5, Y: 600, Format: 3, XDevice: &device.VariationIndex{Outer: 0, Inner: 4}},
		{X: -5, Y: 600, Format: 3, YDevice: &device.VariationIndex{Outer: 1, Inner: 2}},
		{X: 0, Y: 0, Format: 3,
			XDevice: &device.VariationIndex{Outer: 1, Inner: 1},
			YDevice: &device.VariationIndex{Outer: 1, Inner: 2}},
	}
	for i, a := range cases {
		data := a.Append(nil)
		if len(data) != a.AppendLen() {
			t.Errorf("%d: AppendLen %d != %d", i, a.AppendLen(), len(data))
		}
		b, err := Read(parser.New("test", data), 0)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(a, b); d != "" {
			t.Errorf("%d: %s", i, d)
		}
	}
}

func TestFormat3WithoutDevices(t *testing.T) {
	data := []byte{0, 3, 0, 10, 0, 20, 0, 0, 0, 0}
	a, err := Read(parser.New("test", data), 0)
	if err != nil {
		t.Fatal(err)
	}
	out := a.Append(nil)
	if out[1] != 1 || len(out) != 6 {
		t.Errorf("expected format 1 output, got % x", out)
	}
}

func FuzzAnchor(f *testing.F) {
	f.Add([]byte{0, 1, 0, 10, 0, 20})
	f.Add([]byte{0, 2, 0, 10, 0, 20, 0, 3})
	f.Add([]byte{0, 3, 0, 10, 0, 20, 0, 10, 0, 0, 0, 1, 0, 2, 0x80, 0})
	f.Fuzz(func(t *testing.T, data []byte) {
		a, err := Read(parser.New("test", data), 0)
		if err != nil {
			return
		}
		b, err := Read(parser.New("test", a.Append(nil)), 0)
		if err != nil {
			t.Fatal(err)
		}
		if a.format() != b.format() || a.X != b.X || a.Y != b.Y ||
			a.AnchorPoint != b.AnchorPoint && a.format() == 2 {
			t.Errorf("%v != %v", a, b)
		}
	})
}
