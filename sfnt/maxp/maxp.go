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

// Package maxp reads and writes "maxp" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/maxp
package maxp

import (
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
)

// Info contains information from the "maxp" table.
type Info struct {
	// NumGlyphs is number of glyphs in the font, in the range 1, ..., 65535.
	NumGlyphs int

	// TTF contains additional information for TrueType fonts.
	// This is nil for version 0.5 tables.
	TTF *TTFInfo
}

// TTFInfo contains TrueType-specific information from the "maxp" table.
type TTFInfo struct {
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

// Read decodes the "maxp" table.
func Read(data []byte) (*Info, error) {
	if len(data) < 6 {
		return nil, errMaxp("table too short")
	}

	version := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	if version != 0x00005000 && version != 0x00010000 {
		return nil, errMaxp("unknown version")
	}

	numGlyphs := int(data[4])<<8 | int(data[5])
	if numGlyphs == 0 {
		return nil, errMaxp("numGlyphs is zero")
	}
	info := &Info{
		NumGlyphs: numGlyphs,
	}
	if version == 0x00005000 {
		return info, nil
	}

	if len(data) < 32 {
		return nil, errMaxp("table too short")
	}
	buf := data[6:32]
	info.TTF = &TTFInfo{
		MaxPoints:             uint16(buf[0])<<8 | uint16(buf[1]),
		MaxContours:           uint16(buf[2])<<8 | uint16(buf[3]),
		MaxCompositePoints:    uint16(buf[4])<<8 | uint16(buf[5]),
		MaxCompositeContours:  uint16(buf[6])<<8 | uint16(buf[7]),
		MaxZones:              uint16(buf[8])<<8 | uint16(buf[9]),
		MaxTwilightPoints:     uint16(buf[10])<<8 | uint16(buf[11]),
		MaxStorage:            uint16(buf[12])<<8 | uint16(buf[13]),
		MaxFunctionDefs:       uint16(buf[14])<<8 | uint16(buf[15]),
		MaxInstructionDefs:    uint16(buf[16])<<8 | uint16(buf[17]),
		MaxStackElements:      uint16(buf[18])<<8 | uint16(buf[19]),
		MaxSizeOfInstructions: uint16(buf[20])<<8 | uint16(buf[21]),
		MaxComponentElements:  uint16(buf[22])<<8 | uint16(buf[23]),
		MaxComponentDepth:     uint16(buf[24])<<8 | uint16(buf[25]),
	}
	return info, nil
}

// SetStats replaces the outline statistics with the values computed
// from the glyph data.  Hinting limits are kept.
func (info *Info) SetStats(s glyf.Stats) {
	if info.TTF == nil {
		info.TTF = &TTFInfo{MaxZones: 2}
	}
	ttf := info.TTF
	ttf.MaxPoints = clampUint16(s.MaxPoints)
	ttf.MaxContours = clampUint16(s.MaxContours)
	ttf.MaxCompositePoints = clampUint16(s.MaxCompositePoints)
	ttf.MaxCompositeContours = clampUint16(s.MaxCompositeContours)
	ttf.MaxComponentElements = clampUint16(s.MaxComponentElements)
	ttf.MaxComponentDepth = clampUint16(s.MaxComponentDepth)
	ttf.MaxSizeOfInstructions = max(ttf.MaxSizeOfInstructions, clampUint16(s.MaxInstructions))
}

func clampUint16(x int) uint16 {
	if x > 0xFFFF {
		return 0xFFFF
	}
	return uint16(x)
}

// Encode encodes the "maxp" table.
func (info *Info) Encode() []byte {
	numGlyphs := info.NumGlyphs
	if numGlyphs < 1 || numGlyphs >= 1<<16 {
		panic("sfnt/maxp: numGlyphs out of range")
	}
	if info.TTF == nil {
		buf := []byte{
			0x00, 0x00, 0x50, 0x00, byte(numGlyphs >> 8), byte(numGlyphs),
		}
		return buf
	}

	ttf := info.TTF
	buf := []byte{
		0x00, 0x01, 0x00, 0x00, // version
		byte(numGlyphs >> 8), byte(numGlyphs),
		byte(ttf.MaxPoints >> 8), byte(ttf.MaxPoints),
		byte(ttf.MaxContours >> 8), byte(ttf.MaxContours),
		byte(ttf.MaxCompositePoints >> 8), byte(ttf.MaxCompositePoints),
		byte(ttf.MaxCompositeContours >> 8), byte(ttf.MaxCompositeContours),
		byte(ttf.MaxZones >> 8), byte(ttf.MaxZones),
		byte(ttf.MaxTwilightPoints >> 8), byte(ttf.MaxTwilightPoints),
		byte(ttf.MaxStorage >> 8), byte(ttf.MaxStorage),
		byte(ttf.MaxFunctionDefs >> 8), byte(ttf.MaxFunctionDefs),
		byte(ttf.MaxInstructionDefs >> 8), byte(ttf.MaxInstructionDefs),
		byte(ttf.MaxStackElements >> 8), byte(ttf.MaxStackElements),
		byte(ttf.MaxSizeOfInstructions >> 8), byte(ttf.MaxSizeOfInstructions),
		byte(ttf.MaxComponentElements >> 8), byte(ttf.MaxComponentElements),
		byte(ttf.MaxComponentDepth >> 8), byte(ttf.MaxComponentDepth),
	}
	return buf
}

func errMaxp(reason string) error {
	return &fonterror.FormatError{
		SubSystem: "sfnt/maxp",
		Table:     "maxp",
		Reason:    reason,
	}
}
