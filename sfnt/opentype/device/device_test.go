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


package device

import (
	"testing"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

func TestRead(t *testing.T) {
	idx := &VariationIndex{Outer: 2, Inner: 300}
	data := idx.Append(nil)
	if len(data) != Size {
		t.Fatalf("wrong size %d", len(data))
	}
	idx2, err := Read(parser.New("test", data), 0)
	if err != nil {
		t.Fatal(err)
	}
	if *idx2 != *idx {
		t.Errorf("%v != %v", idx2, idx)
	}

	hinting := []byte{0, 12, 0, 18, 0, 1, 0x11, 0x11, 0x11, 0x10}
	idx3, err := Read(parser.New("test", hinting), 0)
	if err != nil {
		t.Fatal(err)
	}
	if idx3 != nil {
		t.Error("hinting device not dropped")
	}

	_, err = Read(parser.New("test", []byte{0, 0, 0, 0, 0, 7}), 0)
	if !fonterror.IsUnsupported(err) {
		t.Errorf("unexpected error %v", err)
	}
}
