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


// Package device reads and writes the OpenType "Device" and
// "VariationIndex" tables used by GPOS and GDEF.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#device-and-variationindex-tables
//
// Device tables with hinting adjustments (delta formats 1 to 3) are not
// represented: Read returns nil for them.
package device

import (
	"fmt"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// VariationIndex refers to a delta-set in an ItemVariationStore.
type VariationIndex struct {
	Outer uint16 // delta-set outer index (item variation data subtable)
	Inner uint16 // delta-set inner index (row)
}

// NoVariation is the special index which marks a value without variation
// data.
var NoVariation = VariationIndex{Outer: 0xFFFF, Inner: 0xFFFF}

const formatVariationIndex = 0x8000

// Size is the length of the binary representation of a VariationIndex table.
const Size = 6

// Read reads a Device or VariationIndex table.  For Device tables which
// only carry hinting information, nil is returned.
func Read(p *parser.Parser, pos int64) (*VariationIndex, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	buf, err := p.ReadBytes(6)
	if err != nil {
		return nil, err
	}
	first := uint16(buf[0])<<8 | uint16(buf[1])
	second := uint16(buf[2])<<8 | uint16(buf[3])
	deltaFormat := uint16(buf[4])<<8 | uint16(buf[5])

	switch deltaFormat {
	case 1, 2, 3:
		return nil, nil
	case formatVariationIndex:
		return &VariationIndex{Outer: first, Inner: second}, nil
	default:
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/opentype/device",
			Feature:   fmt.Sprintf("device delta format 0x%04x", deltaFormat),
		}
	}
}

// Append appends the binary representation of a VariationIndex table to buf.
func (idx *VariationIndex) Append(buf []byte) []byte {
	return append(buf,
		byte(idx.Outer>>8), byte(idx.Outer),
		byte(idx.Inner>>8), byte(idx.Inner),
		byte(formatVariationIndex>>8), byte(formatVariationIndex&0xFF))
}
