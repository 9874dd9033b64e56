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


// Package gdef reads and writes the "GDEF" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/GDEF
package gdef

import (
	"fmt"
	"maps"
	"slices"

	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/classdef"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
	"github.com/chiron-fonts/sub-fonts/sfnt/variation"
)

// Table contains the parsed GDEF table.
type Table struct {
	GlyphClass      classdef.Table
	AttachList      map[glyph.ID][]uint16
	LigCarets       map[glyph.ID][]*CaretValue
	MarkAttachClass classdef.Table
	MarkGlyphSets   []coverage.Table
	VarStore        *variation.ItemVariationStore
}

// Possible values for the GlyphClass field.
const (
	GlyphClassBase      = 1
	GlyphClassLigature  = 2
	GlyphClassMark      = 3
	GlyphClassComponent = 4
)

// CaretValue gives the position of a ligature caret.
type CaretValue struct {
	// Format is 1 for a coordinate, 2 for a contour point and 3 for a
	// coordinate with a device table.
	Format     uint16
	Coordinate int16
	PointIndex uint16
	Device     *device.VariationIndex
}

// Read decodes a GDEF table.
func Read(data []byte) (*Table, error) {
	p := parser.New("GDEF", data)
	buf, err := p.ReadUint16s(6)
	if err != nil {
		return nil, err
	}
	majorVersion, minorVersion := buf[0], buf[1]
	if majorVersion != 1 || (minorVersion != 0 && minorVersion != 2 && minorVersion != 3) {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/opentype/gdef",
			Feature:   fmt.Sprintf("GDEF table version %d.%d", majorVersion, minorVersion),
		}
	}
	glyphClassDefOffset := int64(buf[2])
	attachListOffset := int64(buf[3])
	ligCaretListOffset := int64(buf[4])
	markAttachClassDefOffset := int64(buf[5])
	var markGlyphSetsDefOffset uint16
	if minorVersion >= 2 {
		markGlyphSetsDefOffset, err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	var itemVarStoreOffset uint32
	if minorVersion >= 3 {
		itemVarStoreOffset, err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
	}

	table := &Table{}

	if glyphClassDefOffset != 0 {
		table.GlyphClass, err = classdef.Read(p, glyphClassDefOffset)
		if err != nil {
			return nil, err
		}
	}
	if attachListOffset != 0 {
		table.AttachList, err = readAttachList(p, attachListOffset)
		if err != nil {
			return nil, err
		}
	}
	if ligCaretListOffset != 0 {
		table.LigCarets, err = readLigCaretList(p, ligCaretListOffset)
		if err != nil {
			return nil, err
		}
	}
	if markAttachClassDefOffset != 0 {
		table.MarkAttachClass, err = classdef.Read(p, markAttachClassDefOffset)
		if err != nil {
			return nil, err
		}
	}
	if markGlyphSetsDefOffset != 0 {
		table.MarkGlyphSets, err = readMarkGlyphSets(p, int64(markGlyphSetsDefOffset))
		if err != nil {
			return nil, err
		}
	}
	if itemVarStoreOffset != 0 {
		table.VarStore, err = variation.ReadItemVariationStore(p, int64(itemVarStoreOffset))
		if err != nil {
			return nil, err
		}
	}

	return table, nil
}

// readCoveredOffsets reads a coverage offset followed by a list of offsets,
// one per covered glyph.
func readCoveredOffsets(p *parser.Parser, pos int64) (map[glyph.ID]int64, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	covOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, pos+int64(covOffset))
	if err != nil {
		return nil, err
	}
	res := make(map[glyph.ID]int64, len(cov))
	for gid, idx := range cov {
		if idx >= len(offsets) {
			return nil, p.Error("coverage index %d out of range", idx)
		}
		res[gid] = pos + int64(offsets[idx])
	}
	return res, nil
}

func readAttachList(p *parser.Parser, pos int64) (map[glyph.ID][]uint16, error) {
	offsets, err := readCoveredOffsets(p, pos)
	if err != nil {
		return nil, err
	}
	res := make(map[glyph.ID][]uint16, len(offsets))
	for gid, offs := range offsets {
		err := p.SeekPos(offs)
		if err != nil {
			return nil, err
		}
		points, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		res[gid] = points
	}
	return res, nil
}

func readLigCaretList(p *parser.Parser, pos int64) (map[glyph.ID][]*CaretValue, error) {
	offsets, err := readCoveredOffsets(p, pos)
	if err != nil {
		return nil, err
	}
	res := make(map[glyph.ID][]*CaretValue, len(offsets))
	for gid, ligPos := range offsets {
		err := p.SeekPos(ligPos)
		if err != nil {
			return nil, err
		}
		caretOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		carets := make([]*CaretValue, len(caretOffsets))
		for i, offs := range caretOffsets {
			carets[i], err = readCaretValue(p, ligPos+int64(offs))
			if err != nil {
				return nil, err
			}
		}
		res[gid] = carets
	}
	return res, nil
}

func readCaretValue(p *parser.Parser, pos int64) (*CaretValue, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	buf, err := p.ReadUint16s(2)
	if err != nil {
		return nil, err
	}
	cv := &CaretValue{Format: buf[0]}
	switch cv.Format {
	case 1:
		cv.Coordinate = int16(buf[1])
	case 2:
		cv.PointIndex = buf[1]
	case 3:
		cv.Coordinate = int16(buf[1])
		devOffs, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if devOffs != 0 {
			cv.Device, err = device.Read(p, pos+int64(devOffs))
			if err != nil {
				return nil, err
			}
		}
		if cv.Device == nil {
			cv.Format = 1
		}
	default:
		return nil, p.Error("invalid caret value format %d", cv.Format)
	}
	return cv, nil
}

func readMarkGlyphSets(p *parser.Parser, pos int64) ([]coverage.Table, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, p.Error("invalid mark glyph sets format %d", format)
	}
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i], err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
	}
	res := make([]coverage.Table, count)
	for i, offs := range offsets {
		res[i], err = coverage.Read(p, pos+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Encode returns the binary representation of the table.  The table
// version is the smallest one which can represent the data.
func (table *Table) Encode() ([]byte, error) {
	var minorVersion uint16
	headerLen := 12
	if table.VarStore != nil {
		minorVersion = 3
		headerLen = 18
	} else if len(table.MarkGlyphSets) > 0 {
		minorVersion = 2
		headerLen = 14
	}

	buf := make([]byte, headerLen)
	buf[1] = 1
	buf[3] = byte(minorVersion)
	var err error
	setOffset := func(slot int, data []byte) {
		if len(data) == 0 || err != nil {
			return
		}
		if len(buf) > 0xFFFF {
			err = &fonterror.UnsupportedFormatError{
				SubSystem: "sfnt/opentype/gdef",
				Feature:   "GDEF table larger than 64 KiB",
			}
			return
		}
		buf[slot] = byte(len(buf) >> 8)
		buf[slot+1] = byte(len(buf))
		buf = append(buf, data...)
	}

	if len(table.GlyphClass) > 0 {
		setOffset(4, table.GlyphClass.Append(nil))
	}
	setOffset(6, encodeAttachList(table.AttachList))
	setOffset(8, encodeLigCaretList(table.LigCarets))
	if len(table.MarkAttachClass) > 0 {
		setOffset(10, table.MarkAttachClass.Append(nil))
	}
	if minorVersion >= 2 {
		setOffset(12, encodeMarkGlyphSets(table.MarkGlyphSets))
	}
	if err != nil {
		return nil, err
	}
	if minorVersion >= 3 {
		offs := uint32(len(buf))
		buf[14] = byte(offs >> 24)
		buf[15] = byte(offs >> 16)
		buf[16] = byte(offs >> 8)
		buf[17] = byte(offs)
		buf = append(buf, table.VarStore.Encode()...)
	}
	return buf, nil
}

// encodeCovered writes a coverage table followed by one sub-table per
// covered glyph.  The sub-tables are given in glyph order.
func encodeCovered(glyphs []glyph.ID, subtables [][]byte) []byte {
	cov := coverage.FromGlyphs(glyphs).Encode()
	headerLen := 4 + 2*len(glyphs)
	buf := make([]byte, headerLen, headerLen+len(cov))
	buf[0] = byte(headerLen >> 8)
	buf[1] = byte(headerLen)
	buf[2] = byte(len(glyphs) >> 8)
	buf[3] = byte(len(glyphs))
	buf = append(buf, cov...)
	for i, data := range subtables {
		offs := len(buf)
		buf[4+2*i] = byte(offs >> 8)
		buf[5+2*i] = byte(offs)
		buf = append(buf, data...)
	}
	return buf
}

func encodeAttachList(list map[glyph.ID][]uint16) []byte {
	if len(list) == 0 {
		return nil
	}
	glyphs := slices.Sorted(maps.Keys(list))
	subtables := make([][]byte, len(glyphs))
	for i, gid := range glyphs {
		points := list[gid]
		data := []byte{byte(len(points) >> 8), byte(len(points))}
		for _, pt := range points {
			data = append(data, byte(pt>>8), byte(pt))
		}
		subtables[i] = data
	}
	return encodeCovered(glyphs, subtables)
}

func encodeLigCaretList(list map[glyph.ID][]*CaretValue) []byte {
	if len(list) == 0 {
		return nil
	}
	glyphs := slices.Sorted(maps.Keys(list))
	subtables := make([][]byte, len(glyphs))
	for i, gid := range glyphs {
		carets := list[gid]
		headerLen := 2 + 2*len(carets)
		data := make([]byte, headerLen)
		data[0] = byte(len(carets) >> 8)
		data[1] = byte(len(carets))
		for j, cv := range carets {
			offs := len(data)
			data[2+2*j] = byte(offs >> 8)
			data[3+2*j] = byte(offs)
			data = cv.append(data)
		}
		subtables[i] = data
	}
	return encodeCovered(glyphs, subtables)
}

func (cv *CaretValue) append(buf []byte) []byte {
	switch {
	case cv.Format == 2:
		return append(buf, 0, 2, byte(cv.PointIndex>>8), byte(cv.PointIndex))
	case cv.Device != nil:
		buf = append(buf, 0, 3, byte(cv.Coordinate>>8), byte(cv.Coordinate), 0, 6)
		return cv.Device.Append(buf)
	default:
		return append(buf, 0, 1, byte(cv.Coordinate>>8), byte(cv.Coordinate))
	}
}

func encodeMarkGlyphSets(sets []coverage.Table) []byte {
	headerLen := 4 + 4*len(sets)
	buf := make([]byte, headerLen)
	buf[1] = 1
	buf[2] = byte(len(sets) >> 8)
	buf[3] = byte(len(sets))
	for i, set := range sets {
		offs := len(buf)
		buf[4+4*i] = byte(offs >> 24)
		buf[5+4*i] = byte(offs >> 16)
		buf[6+4*i] = byte(offs >> 8)
		buf[7+4*i] = byte(offs)
		buf = append(buf, set.Encode()...)
	}
	return buf
}
