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

package glyf

import (
	"strconv"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

func decodeLoca(enc *Encoded, numGlyphs int) ([]int, error) {
	offs := make([]int, numGlyphs+1)

	switch enc.LocaFormat {
	case 0:
		if len(enc.LocaData) < 2*(numGlyphs+1) {
			return nil, errInvalidLoca
		}
		for i := range offs {
			offs[i] = 2 * (int(enc.LocaData[2*i])<<8 | int(enc.LocaData[2*i+1]))
		}
	case 1:
		if len(enc.LocaData) < 4*(numGlyphs+1) {
			return nil, errInvalidLoca
		}
		for i := range offs {
			offs[i] = int(enc.LocaData[4*i])<<24 |
				int(enc.LocaData[4*i+1])<<16 |
				int(enc.LocaData[4*i+2])<<8 |
				int(enc.LocaData[4*i+3])
		}
	default:
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/loca",
			Feature:   "loca format " + strconv.Itoa(int(enc.LocaFormat)),
		}
	}

	for i := 0; i < numGlyphs; i++ {
		if offs[i] > offs[i+1] {
			return nil, errInvalidLoca
		}
	}
	if offs[numGlyphs] > len(enc.GlyfData) {
		return nil, errInvalidLoca
	}

	return offs, nil
}

// encodeLoca chooses the short format whenever all offsets fit.
func encodeLoca(offs []int) ([]byte, int16) {
	n := len(offs)
	if offs[n-1] <= 0xFFFF*2 {
		buf := make([]byte, 2*n)
		for i, x := range offs {
			x /= 2
			buf[2*i] = byte(x >> 8)
			buf[2*i+1] = byte(x)
		}
		return buf, 0
	}

	buf := make([]byte, 4*n)
	for i, x := range offs {
		buf[4*i] = byte(x >> 24)
		buf[4*i+1] = byte(x >> 16)
		buf[4*i+2] = byte(x >> 8)
		buf[4*i+3] = byte(x)
	}
	return buf, 1
}

func gidString(i int) string {
	return "gid " + strconv.Itoa(i)
}

var errInvalidLoca = &fonterror.FormatError{
	SubSystem: "sfnt/loca",
	Table:     "loca",
	Reason:    "invalid loca table",
}
