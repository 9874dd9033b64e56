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

// Package hmtx reads and writes the "hhea" and "hmtx" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/hhea
// https://docs.microsoft.com/en-us/typography/opentype/spec/hmtx
package hmtx

// In a font with TrueType outlines, xMin and xMax values for each glyph are
// given in the 'glyf' table.  The advance width and left side bearing
// are stored in 'hmtx'.  If a glyph has no contours, the left side bearing
// should be zero.
//
// The right side bearing is derived from the other values:
//
//     rsb = aw - (lsb + xMax - xMin)

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Info contains information from the "hhea" and "hmtx" tables.
type Info struct {
	Width []uint16
	LSB   []int16

	Ascent  int16
	Descent int16 // negative
	LineGap int16

	CaretSlopeRise int16
	CaretSlopeRun  int16
	CaretOffset    int16
}

// Decode extracts information from the "hhea" and "hmtx" tables.
// numGlyphs is taken from the "maxp" table.
func Decode(hheaData, hmtxData []byte, numGlyphs int) (*Info, error) {
	hheaEnc := &binaryHhea{}
	err := binary.Read(bytes.NewReader(hheaData), binary.BigEndian, hheaEnc)
	if err != nil {
		return nil, errHmtx("hhea", "table too short")
	}
	if hheaEnc.Version>>16 != 1 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/hmtx",
			Feature:   fmt.Sprintf("hhea version %08x", hheaEnc.Version),
		}
	}
	if hheaEnc.MetricDataFormat != 0 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/hmtx",
			Feature:   fmt.Sprintf("metric data format %d", hheaEnc.MetricDataFormat),
		}
	}

	info := &Info{
		Ascent:         hheaEnc.Ascent,
		Descent:        hheaEnc.Descent,
		LineGap:        hheaEnc.LineGap,
		CaretSlopeRise: hheaEnc.CaretSlopeRise,
		CaretSlopeRun:  hheaEnc.CaretSlopeRun,
		CaretOffset:    hheaEnc.CaretOffset,
	}

	numLong := int(hheaEnc.NumOfLongHorMetrics)
	if numLong == 0 || numLong > numGlyphs {
		return nil, errHmtx("hhea", fmt.Sprintf("invalid numberOfHMetrics %d", numLong))
	}
	if len(hmtxData) < 4*numLong+2*(numGlyphs-numLong) {
		return nil, errHmtx("hmtx", "table too short")
	}

	widths := make([]uint16, numGlyphs)
	lsbs := make([]int16, numGlyphs)
	var prevWidth uint16
	for i := 0; i < numGlyphs; i++ {
		if i < numLong {
			prevWidth = uint16(hmtxData[0])<<8 | uint16(hmtxData[1])
			hmtxData = hmtxData[2:]
		}
		widths[i] = prevWidth
		lsbs[i] = int16(hmtxData[0])<<8 | int16(hmtxData[1])
		hmtxData = hmtxData[2:]
	}
	info.Width = widths
	info.LSB = lsbs

	return info, nil
}

// Encode creates the "hhea" and "hmtx" tables.  The glyph extents are used to
// compute the summary values in "hhea"; glyphs with a zero extent are
// ignored there.
func (info *Info) Encode(extents []funit.Rect16) (hheaData []byte, hmtxData []byte) {
	numGlyphs := len(info.Width)
	if len(info.LSB) != numGlyphs {
		panic("lsb length mismatch")
	}
	if extents != nil && len(extents) != numGlyphs {
		panic("extents length mismatch")
	}

	numLong := numGlyphs
	for numLong > 1 && info.Width[numLong-1] == info.Width[numLong-2] {
		numLong--
	}

	hhea := &binaryHhea{
		Version: 0x00010000, // 1.0
		Ascent:  info.Ascent,
		Descent: info.Descent,
		LineGap: info.LineGap,

		CaretSlopeRise: info.CaretSlopeRise,
		CaretSlopeRun:  info.CaretSlopeRun,
		CaretOffset:    info.CaretOffset,

		NumOfLongHorMetrics: uint16(numLong),
	}

	for _, w := range info.Width {
		if w > hhea.AdvanceWidthMax {
			hhea.AdvanceWidthMax = w
		}
	}

	first := true
	for i, bbox := range extents {
		if bbox.IsZero() {
			continue
		}
		lsb := info.LSB[i]
		rsb := int16(info.Width[i]) - (lsb + int16(bbox.URx-bbox.LLx))
		extent := lsb + int16(bbox.URx-bbox.LLx)
		if first || lsb < hhea.MinLeftSideBearing {
			hhea.MinLeftSideBearing = lsb
		}
		if first || rsb < hhea.MinRightSideBearing {
			hhea.MinRightSideBearing = rsb
		}
		if first || extent > hhea.XMaxExtent {
			hhea.XMaxExtent = extent
		}
		first = false
	}

	buf := bytes.NewBuffer(make([]byte, 0, hheaLength))
	_ = binary.Write(buf, binary.BigEndian, hhea)
	hheaData = buf.Bytes()

	hmtxData = make([]byte, 0, 4*numLong+2*(numGlyphs-numLong))
	for i := 0; i < numGlyphs; i++ {
		if i < numLong {
			hmtxData = append(hmtxData, byte(info.Width[i]>>8), byte(info.Width[i]))
		}
		hmtxData = append(hmtxData, byte(info.LSB[i]>>8), byte(info.LSB[i]))
	}

	return hheaData, hmtxData
}

// Append adds metrics for a new glyph at the end.
func (info *Info) Append(width uint16, lsb int16) {
	info.Width = append(info.Width, width)
	info.LSB = append(info.LSB, lsb)
}

// Clone returns a copy of info which shares no slices with the original.
func (info *Info) Clone() *Info {
	res := *info
	res.Width = append([]uint16(nil), info.Width...)
	res.LSB = append([]int16(nil), info.LSB...)
	return &res
}

const hheaLength = 36

type binaryHhea struct {
	Version             uint32
	Ascent              int16
	Descent             int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	_                   int16
	_                   int16
	_                   int16
	_                   int16
	MetricDataFormat    int16
	NumOfLongHorMetrics uint16
}

func errHmtx(table, reason string) error {
	return &fonterror.FormatError{
		SubSystem: "sfnt/hmtx",
		Table:     table,
		Reason:    reason,
	}
}
