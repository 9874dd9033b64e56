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

// Package head reads and writes the "head" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/head
package head

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Info contains information from the "head" table.
type Info struct {
	FontRevision Version
	Flags        uint16
	UnitsPerEm   uint16
	Created      time.Time
	Modified     time.Time
	FontBBox     funit.Rect16
	MacStyle     uint16

	LowestRecPPEM     uint16
	FontDirectionHint int16

	// IndexToLocFormat is 0 for short "loca" offsets and 1 for long offsets.
	IndexToLocFormat int16
}

// Bits of MacStyle.
const (
	MacStyleBold   = 1 << 0
	MacStyleItalic = 1 << 1
)

// Read decodes the binary representation of the head table.
func Read(data []byte) (*Info, error) {
	enc := &binaryHead{}
	err := binary.Read(bytes.NewReader(data), binary.BigEndian, enc)
	if err != nil {
		return nil, &fonterror.FormatError{
			SubSystem: "sfnt/head",
			Table:     "head",
			Reason:    "table too short",
		}
	}

	if enc.Version != 0x00010000 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/head",
			Feature:   fmt.Sprintf("head table version %08x", enc.Version),
		}
	}
	if enc.MagicNumber != 0x5F0F3CF5 {
		return nil, &fonterror.FormatError{
			SubSystem: "sfnt/head",
			Table:     "head",
			Reason:    fmt.Sprintf("invalid magic number %08x", enc.MagicNumber),
		}
	}

	info := &Info{
		FontRevision: Version(enc.FontRevision),
		Flags:        enc.Flags,
		UnitsPerEm:   enc.UnitsPerEm,
		Created:      decodeTime(enc.Created),
		Modified:     decodeTime(enc.Modified),
		FontBBox: funit.Rect16{
			LLx: funit.Int16(enc.XMin),
			LLy: funit.Int16(enc.YMin),
			URx: funit.Int16(enc.XMax),
			URy: funit.Int16(enc.YMax),
		},
		MacStyle:          enc.MacStyle,
		LowestRecPPEM:     enc.LowestRecPPEM,
		FontDirectionHint: enc.FontDirectionHint,
		IndexToLocFormat:  enc.IndexToLocFormat,
	}
	return info, nil
}

// Encode returns the binary representation of the head table.
// The checksum adjustment is left zero; it is filled in when the font
// is written.
func (info *Info) Encode() []byte {
	enc := &binaryHead{
		Version:           0x00010000,
		FontRevision:      uint32(info.FontRevision),
		MagicNumber:       0x5F0F3CF5,
		Flags:             info.Flags,
		UnitsPerEm:        info.UnitsPerEm,
		Created:           encodeTime(info.Created),
		Modified:          encodeTime(info.Modified),
		XMin:              int16(info.FontBBox.LLx),
		YMin:              int16(info.FontBBox.LLy),
		XMax:              int16(info.FontBBox.URx),
		YMax:              int16(info.FontBBox.URy),
		MacStyle:          info.MacStyle,
		LowestRecPPEM:     info.LowestRecPPEM,
		FontDirectionHint: info.FontDirectionHint,
		IndexToLocFormat:  info.IndexToLocFormat,
	}

	buf := bytes.NewBuffer(make([]byte, 0, headLength))
	_ = binary.Write(buf, binary.BigEndian, enc)
	return buf.Bytes()
}

const headLength = 54

type binaryHead struct {
	Version            uint32
	FontRevision       uint32
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            int64
	Modified           int64

	XMin int16
	YMin int16
	XMax int16
	YMax int16

	MacStyle uint16

	LowestRecPPEM     uint16
	FontDirectionHint int16

	IndexToLocFormat int16
	GlyphDataFormat  int16
}

// Version represents the font revision in 16.16 fixed point format.
type Version uint32

func (v Version) String() string {
	return fmt.Sprintf("%.03f", float64(v)/65536)
}
