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

package head

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/postscript/funit"
)

func TestTime(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	if got := decodeTime(encodeTime(ref)); !got.Equal(ref) {
		t.Errorf("%v != %v", got, ref)
	}
	if got := decodeTime(0); got.Year() != 1904 {
		t.Errorf("wrong epoch: %v", got)
	}
}

func FuzzHead(f *testing.F) {
	info := &Info{
		FontRevision:      0x00018000,
		Flags:             0x000B,
		UnitsPerEm:        1000,
		Created:           time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Modified:          time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		FontBBox:          funit.Rect16{LLx: -100, LLy: -200, URx: 1100, URy: 900},
		MacStyle:          MacStyleBold,
		LowestRecPPEM:     8,
		FontDirectionHint: 2,
		IndexToLocFormat:  1,
	}
	f.Add(info.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		info, err := Read(data)
		if err != nil {
			return
		}
		info2, err := Read(info.Encode())
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(info, info2); d != "" {
			t.Error(d)
		}
	})
}

func TestVersion(t *testing.T) {
	if s := Version(0x00018000).String(); s != "1.500" {
		t.Errorf("wrong version string %q", s)
	}
}
