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

// Package os2 has code for reading and writing the "OS/2" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/os2
package os2

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Info contains information from the "OS/2" table.
// All fields are kept, so that a table can be read, modified and
// written back without loss.
type Info struct {
	Version uint16

	AvgCharWidth int16
	WeightClass  uint16
	WidthClass   uint16
	Type         uint16

	SubscriptXSize     int16
	SubscriptYSize     int16
	SubscriptXOffset   int16
	SubscriptYOffset   int16
	SuperscriptXSize   int16
	SuperscriptYSize   int16
	SuperscriptXOffset int16
	SuperscriptYOffset int16
	StrikeoutSize      int16
	StrikeoutPosition  int16

	FamilyClass  int16    // https://docs.microsoft.com/en-us/typography/opentype/spec/ibmfc
	Panose       [10]byte // https://monotype.github.io/panose/
	UnicodeRange [4]uint32
	Vendor       [4]byte
	Selection    uint16

	FirstCharIndex uint16
	LastCharIndex  uint16

	// HasTypoMetrics is false for the short version 0 tables which end
	// after LastCharIndex.
	HasTypoMetrics bool
	TypoAscender   funit.Int16
	TypoDescender  funit.Int16 // as a negative number
	TypoLineGap    funit.Int16
	WinAscent      uint16
	WinDescent     uint16 // positive

	CodePageRange [2]uint32 // version 1 and newer

	XHeight     funit.Int16 // version 2 and newer
	CapHeight   funit.Int16
	DefaultChar uint16
	BreakChar   uint16
	MaxContext  uint16

	LowerOpticalPointSize uint16 // version 5
	UpperOpticalPointSize uint16
}

// Read decodes the "OS/2" table.
func Read(data []byte) (*Info, error) {
	r := bytes.NewReader(data)

	v0 := &v0Data{}
	err := binary.Read(r, binary.BigEndian, v0)
	if err != nil {
		return nil, errTruncated
	} else if v0.Version > 5 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/os2",
			Feature:   fmt.Sprintf("OS/2 version %d", v0.Version),
		}
	}

	info := &Info{
		Version:            v0.Version,
		AvgCharWidth:       v0.AvgCharWidth,
		WeightClass:        v0.WeightClass,
		WidthClass:         v0.WidthClass,
		Type:               v0.Type,
		SubscriptXSize:     v0.SubscriptXSize,
		SubscriptYSize:     v0.SubscriptYSize,
		SubscriptXOffset:   v0.SubscriptXOffset,
		SubscriptYOffset:   v0.SubscriptYOffset,
		SuperscriptXSize:   v0.SuperscriptXSize,
		SuperscriptYSize:   v0.SuperscriptYSize,
		SuperscriptXOffset: v0.SuperscriptXOffset,
		SuperscriptYOffset: v0.SuperscriptYOffset,
		StrikeoutSize:      v0.StrikeoutSize,
		StrikeoutPosition:  v0.StrikeoutPosition,
		FamilyClass:        v0.FamilyClass,
		Panose:             v0.Panose,
		UnicodeRange:       v0.UnicodeRange,
		Vendor:             v0.VendID,
		Selection:          v0.Selection,
		FirstCharIndex:     v0.FirstCharIndex,
		LastCharIndex:      v0.LastCharIndex,
	}

	v0ms := &v0MsData{}
	err = binary.Read(r, binary.BigEndian, v0ms)
	if err == io.EOF && info.Version == 0 {
		return info, nil
	} else if err != nil {
		return nil, errTruncated
	}
	info.HasTypoMetrics = true
	info.TypoAscender = v0ms.TypoAscender
	info.TypoDescender = v0ms.TypoDescender
	info.TypoLineGap = v0ms.TypoLineGap
	info.WinAscent = v0ms.WinAscent
	info.WinDescent = v0ms.WinDescent

	if info.Version < 1 {
		return info, nil
	}
	err = binary.Read(r, binary.BigEndian, info.CodePageRange[:])
	if err != nil {
		return nil, errTruncated
	}

	if info.Version < 2 {
		return info, nil
	}
	v2 := &v2Data{}
	err = binary.Read(r, binary.BigEndian, v2)
	if err != nil {
		return nil, errTruncated
	}
	info.XHeight = v2.XHeight
	info.CapHeight = v2.CapHeight
	info.DefaultChar = v2.DefaultChar
	info.BreakChar = v2.BreakChar
	info.MaxContext = v2.MaxContext

	if info.Version < 5 {
		return info, nil
	}
	var v5 [2]uint16
	err = binary.Read(r, binary.BigEndian, v5[:])
	if err != nil {
		return nil, errTruncated
	}
	info.LowerOpticalPointSize = v5[0]
	info.UpperOpticalPointSize = v5[1]

	return info, nil
}

// Encode converts the info to an "OS/2" table of version info.Version.
func (info *Info) Encode() []byte {
	buf := &bytes.Buffer{}
	v0 := &v0Data{
		Version:            info.Version,
		AvgCharWidth:       info.AvgCharWidth,
		WeightClass:        info.WeightClass,
		WidthClass:         info.WidthClass,
		Type:               info.Type,
		SubscriptXSize:     info.SubscriptXSize,
		SubscriptYSize:     info.SubscriptYSize,
		SubscriptXOffset:   info.SubscriptXOffset,
		SubscriptYOffset:   info.SubscriptYOffset,
		SuperscriptXSize:   info.SuperscriptXSize,
		SuperscriptYSize:   info.SuperscriptYSize,
		SuperscriptXOffset: info.SuperscriptXOffset,
		SuperscriptYOffset: info.SuperscriptYOffset,
		StrikeoutSize:      info.StrikeoutSize,
		StrikeoutPosition:  info.StrikeoutPosition,
		FamilyClass:        info.FamilyClass,
		Panose:             info.Panose,
		UnicodeRange:       info.UnicodeRange,
		VendID:             info.Vendor,
		Selection:          info.Selection,
		FirstCharIndex:     info.FirstCharIndex,
		LastCharIndex:      info.LastCharIndex,
	}
	_ = binary.Write(buf, binary.BigEndian, v0)

	if !info.HasTypoMetrics && info.Version == 0 {
		return buf.Bytes()
	}
	v0ms := &v0MsData{
		TypoAscender:  info.TypoAscender,
		TypoDescender: info.TypoDescender,
		TypoLineGap:   info.TypoLineGap,
		WinAscent:     info.WinAscent,
		WinDescent:    info.WinDescent,
	}
	_ = binary.Write(buf, binary.BigEndian, v0ms)

	if info.Version >= 1 {
		_ = binary.Write(buf, binary.BigEndian, info.CodePageRange[:])
	}
	if info.Version >= 2 {
		v2 := &v2Data{
			XHeight:     info.XHeight,
			CapHeight:   info.CapHeight,
			DefaultChar: info.DefaultChar,
			BreakChar:   info.BreakChar,
			MaxContext:  info.MaxContext,
		}
		_ = binary.Write(buf, binary.BigEndian, v2)
	}
	if info.Version >= 5 {
		v5 := [2]uint16{info.LowerOpticalPointSize, info.UpperOpticalPointSize}
		_ = binary.Write(buf, binary.BigEndian, v5[:])
	}

	return buf.Bytes()
}

// WidthClassFor returns the usWidthClass value closest to the given
// "wdth" axis value, in percent of the normal width.
func WidthClassFor(percent float64) uint16 {
	best := uint16(1)
	bestDist := -1.0
	for i, w := range widthPercent {
		dist := percent - w
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = uint16(i + 1)
			bestDist = dist
		}
	}
	return best
}

// widthPercent lists the nominal widths of the usWidthClass values 1 to 9.
var widthPercent = []float64{50, 62.5, 75, 87.5, 100, 112.5, 125, 150, 200}

var errTruncated = &fonterror.FormatError{
	SubSystem: "sfnt/os2",
	Table:     "OS/2",
	Reason:    "table too short",
}

type v0Data struct {
	Version            uint16
	AvgCharWidth       int16
	WeightClass        uint16
	WidthClass         uint16
	Type               uint16
	SubscriptXSize     int16
	SubscriptYSize     int16
	SubscriptXOffset   int16
	SubscriptYOffset   int16
	SuperscriptXSize   int16
	SuperscriptYSize   int16
	SuperscriptXOffset int16
	SuperscriptYOffset int16
	StrikeoutSize      int16
	StrikeoutPosition  int16
	FamilyClass        int16
	Panose             [10]byte
	UnicodeRange       [4]uint32
	VendID             [4]byte
	Selection          uint16
	FirstCharIndex     uint16
	LastCharIndex      uint16
}

type v0MsData struct {
	TypoAscender  funit.Int16
	TypoDescender funit.Int16
	TypoLineGap   funit.Int16
	WinAscent     uint16
	WinDescent    uint16 // positive
}

type v2Data struct {
	XHeight     funit.Int16
	CapHeight   funit.Int16
	DefaultChar uint16
	BreakChar   uint16
	MaxContext  uint16
}
