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


package markarray

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

func TestRoundTrip(t *testing.T) {
	table := Table{
		{Class: 0, Anchor: &anchor.Table{X: 10, Y: 20, Format: 1}},
		{Class: 2, Anchor: &anchor.Table{X: -10, Y: 500, Format: 2, AnchorPoint: 4}},
		{Class: 1, Anchor: &anchor.Table{X: 0, Y: 0, Format: 1}},
	}
	data := table.Append(nil)
	if len(data) != table.AppendLen() {
		t.Errorf("AppendLen %d != %d", table.AppendLen(), len(data))
	}
	table2, err := Read(parser.New("test", data), 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(table, table2); d != "" {
		t.Error(d)
	}
	if table.MaxClass() != 2 {
		t.Errorf("MaxClass = %d", table.MaxClass())
	}

	short, err := Read(parser.New("test", data), 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(short) != 2 {
		t.Errorf("expected 2 records, got %d", len(short))
	}
}
