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


// Package anchor reads and writes OpenType "Anchor Tables".
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#anchor-tables
package anchor

import (
	"fmt"

	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// Table is an OpenType "Anchor Table".
type Table struct {
	X, Y funit.Int16

	// Format is the anchor format read from the font.  When the table is
	// written, format 3 is used if variation data is present, format 2
	// if Format is 2, and format 1 otherwise.
	Format uint16

	// AnchorPoint is the contour point index for format 2 anchors.
	AnchorPoint uint16

	XDevice, YDevice *device.VariationIndex
}

// Read reads an anchor table from the given parser.
func Read(p *parser.Parser, pos int64) (*Table, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	buf, err := p.ReadBytes(6)
	if err != nil {
		return nil, err
	}

	res := &Table{
		Format: uint16(buf[0])<<8 | uint16(buf[1]),
		X:      funit.Int16(buf[2])<<8 | funit.Int16(buf[3]),
		Y:      funit.Int16(buf[4])<<8 | funit.Int16(buf[5]),
	}

	switch res.Format {
	case 1:
		// pass
	case 2:
		res.AnchorPoint, err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	case 3:
		offs, err := p.ReadUint16s(2)
		if err != nil {
			return nil, err
		}
		if offs[0] != 0 {
			res.XDevice, err = device.Read(p, pos+int64(offs[0]))
			if err != nil {
				return nil, err
			}
		}
		if offs[1] != 0 {
			res.YDevice, err = device.Read(p, pos+int64(offs[1]))
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, &fonterror.FormatError{
			SubSystem: "sfnt/opentype/anchor",
			Reason:    fmt.Sprintf("invalid anchor table format %d", res.Format),
		}
	}
	return res, nil
}

func (rec *Table) format() uint16 {
	switch {
	case rec.XDevice != nil || rec.YDevice != nil:
		return 3
	case rec.Format == 2:
		return 2
	default:
		return 1
	}
}

// AppendLen returns the length of the binary representation of the anchor.
func (rec *Table) AppendLen() int {
	switch rec.format() {
	case 3:
		total := 10
		if rec.XDevice != nil {
			total += device.Size
		}
		if rec.YDevice != nil {
			total += device.Size
		}
		return total
	case 2:
		return 8
	default:
		return 6
	}
}

// Append appends the binary representation of the Anchor Table to buf.
func (rec *Table) Append(buf []byte) []byte {
	format := rec.format()
	buf = append(buf,
		0, byte(format),
		byte(rec.X>>8), byte(rec.X),
		byte(rec.Y>>8), byte(rec.Y),
	)
	switch format {
	case 2:
		buf = append(buf, byte(rec.AnchorPoint>>8), byte(rec.AnchorPoint))
	case 3:
		var xOffs, yOffs uint16
		pos := uint16(10)
		if rec.XDevice != nil {
			xOffs = pos
			pos += device.Size
		}
		if rec.YDevice != nil {
			yOffs = pos
		}
		buf = append(buf, byte(xOffs>>8), byte(xOffs), byte(yOffs>>8), byte(yOffs))
		if rec.XDevice != nil {
			buf = rec.XDevice.Append(buf)
		}
		if rec.YDevice != nil {
			buf = rec.YDevice.Append(buf)
		}
	}
	return buf
}
