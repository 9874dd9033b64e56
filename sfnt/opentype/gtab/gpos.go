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


package gtab

import (
	"fmt"

	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/classdef"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// GPOS lookup types.
const (
	GposSingle         = 1
	GposPair           = 2
	GposCursive        = 3
	GposMarkToBase     = 4
	GposMarkToLigature = 5
	GposMarkToMark     = 6
	GposContext        = 7
	GposChainedContext = 8
	GposExtension      = 9
)

// readGposSubtable reads a GPOS subtable.
func readGposSubtable(p *parser.Parser, pos int64, lookupType uint16) (Subtable, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	switch 10*int(lookupType) + int(format) {
	case 11:
		return readGpos1_1(p, pos)
	case 12:
		return readGpos1_2(p, pos)
	case 21:
		return readGpos2_1(p, pos)
	case 22:
		return readGpos2_2(p, pos)
	case 31:
		return readGpos3_1(p, pos)
	case 41:
		return readGpos4_1(p, pos)
	case 51:
		return readGpos5_1(p, pos)
	case 61:
		return readGpos6_1(p, pos)
	case 71:
		return readSeqContext1(p, pos)
	case 72:
		return readSeqContext2(p, pos)
	case 73:
		return readSeqContext3(p, pos)
	case 81:
		return readChainedSeqContext1(p, pos)
	case 82:
		return readChainedSeqContext2(p, pos)
	case 83:
		return readChainedSeqContext3(p, pos)
	default:
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/opentype/gtab",
			Feature:   fmt.Sprintf("GPOS lookup type %d, format %d", lookupType, format),
		}
	}
}

// Gpos1_1 is a Single Adjustment Positioning Subtable (format 1).
// The same adjustment applies to every covered glyph.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#single-adjustment-positioning-format-1-single-positioning-value
type Gpos1_1 struct {
	Cov    coverage.Table
	Format ValueFormat
	Adjust *ValueRecord
}

func readGpos1_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadUint16s(2)
	if err != nil {
		return nil, err
	}
	format := ValueFormat(buf[1])
	adjust, err := readValueRecord(p, subtablePos, format)
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(buf[0]))
	if err != nil {
		return nil, err
	}
	return &Gpos1_1{
		Cov:    cov,
		Format: format,
		Adjust: adjust,
	}, nil
}

// Encode implements the Subtable interface.
func (l *Gpos1_1) Encode() ([]byte, error) {
	w := newWriter()
	w.u16(1)
	w.offsetTo(0, l.Cov.Encode())
	w.u16(uint16(l.Format))
	l.Adjust.write(w, 0, l.Format)
	return w.bytes()
}

// Gpos1_2 is a Single Adjustment Positioning Subtable (format 2).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#single-adjustment-positioning-format-2-array-of-positioning-values
type Gpos1_2 struct {
	Cov    coverage.Table
	Format ValueFormat
	Adjust []*ValueRecord // indexed by coverage index
}

func readGpos1_2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadUint16s(3)
	if err != nil {
		return nil, err
	}
	format := ValueFormat(buf[1])
	valueCount := int(buf[2])
	adjust := make([]*ValueRecord, valueCount)
	for i := range adjust {
		adjust[i], err = readValueRecord(p, subtablePos, format)
		if err != nil {
			return nil, err
		}
	}
	cov, err := coverage.Read(p, subtablePos+int64(buf[0]))
	if err != nil {
		return nil, err
	}
	if len(cov) > valueCount {
		cov.Prune(valueCount)
	} else {
		adjust = adjust[:len(cov)]
	}
	return &Gpos1_2{
		Cov:    cov,
		Format: format,
		Adjust: adjust,
	}, nil
}

// Encode implements the Subtable interface.
func (l *Gpos1_2) Encode() ([]byte, error) {
	w := newWriter()
	w.u16(2)
	w.offsetTo(0, l.Cov.Encode())
	w.u16(uint16(l.Format))
	w.count(len(l.Adjust))
	for _, vr := range l.Adjust {
		vr.write(w, 0, l.Format)
	}
	return w.bytes()
}

// Gpos2_1 is a Pair Adjustment Positioning Subtable (format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#pair-adjustment-positioning-format-1-adjustments-for-glyph-pairs
type Gpos2_1 struct {
	Cov      coverage.Table
	Format1  ValueFormat
	Format2  ValueFormat
	PairSets [][]*PairValueRecord // indexed by coverage index
}

// PairValueRecord describes the adjustment for a pair of glyphs, where the
// first glyph is given by the coverage table of the enclosing subtable.
type PairValueRecord struct {
	SecondGlyph glyph.ID
	First       *ValueRecord
	Second      *ValueRecord
}

func readGpos2_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadUint16s(3)
	if err != nil {
		return nil, err
	}
	format1 := ValueFormat(buf[1])
	format2 := ValueFormat(buf[2])
	pairSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(buf[0]))
	if err != nil {
		return nil, err
	}
	if len(cov) > len(pairSetOffsets) {
		cov.Prune(len(pairSetOffsets))
	} else {
		pairSetOffsets = pairSetOffsets[:len(cov)]
	}

	pairSets := make([][]*PairValueRecord, len(pairSetOffsets))
	for i, offs := range pairSetOffsets {
		pairSetPos := subtablePos + int64(offs)
		err := p.SeekPos(pairSetPos)
		if err != nil {
			return nil, err
		}
		pairValueCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		records := make([]*PairValueRecord, pairValueCount)
		for j := range records {
			secondGlyph, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			first, err := readValueRecord(p, pairSetPos, format1)
			if err != nil {
				return nil, err
			}
			second, err := readValueRecord(p, pairSetPos, format2)
			if err != nil {
				return nil, err
			}
			records[j] = &PairValueRecord{
				SecondGlyph: glyph.ID(secondGlyph),
				First:       first,
				Second:      second,
			}
		}
		pairSets[i] = records
	}

	return &Gpos2_1{
		Cov:      cov,
		Format1:  format1,
		Format2:  format2,
		PairSets: pairSets,
	}, nil
}

// Encode implements the Subtable interface.
func (l *Gpos2_1) Encode() ([]byte, error) {
	w := newWriter()
	w.u16(1)
	w.offsetTo(0, l.Cov.Encode())
	w.u16(uint16(l.Format1), uint16(l.Format2))
	w.count(len(l.PairSets))
	for _, records := range l.PairSets {
		ps := newWriter()
		ps.count(len(records))
		for _, rec := range records {
			ps.u16(uint16(rec.SecondGlyph))
			rec.First.write(ps, 0, l.Format1)
			rec.Second.write(ps, 0, l.Format2)
		}
		data, err := ps.bytes()
		if err != nil {
			return nil, err
		}
		w.offsetTo(0, data)
	}
	return w.bytes()
}

// Gpos2_2 is a Pair Adjustment Positioning Subtable (format 2).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#pair-adjustment-positioning-format-2-class-pair-adjustment
type Gpos2_2 struct {
	Cov     coverage.Table
	Format1 ValueFormat
	Format2 ValueFormat
	Class1  classdef.Table
	Class2  classdef.Table
	Records [][]*PairClassRecord // indexed by class1, then class2
}

// PairClassRecord gives the adjustment for a pair of glyph classes.
type PairClassRecord struct {
	First  *ValueRecord
	Second *ValueRecord
}

func readGpos2_2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadUint16s(7)
	if err != nil {
		return nil, err
	}
	coverageOffset := int64(buf[0])
	format1 := ValueFormat(buf[1])
	format2 := ValueFormat(buf[2])
	classDef1Offset := int64(buf[3])
	classDef2Offset := int64(buf[4])
	class1Count := int(buf[5])
	class2Count := int(buf[6])

	if class1Count*class2Count*(format1.size()+format2.size()) > int(p.Size()) {
		return nil, p.Error("GPOS 2.2 class counts too large")
	}
	records := make([][]*PairClassRecord, class1Count)
	for i := range records {
		row := make([]*PairClassRecord, class2Count)
		for j := range row {
			first, err := readValueRecord(p, subtablePos, format1)
			if err != nil {
				return nil, err
			}
			second, err := readValueRecord(p, subtablePos, format2)
			if err != nil {
				return nil, err
			}
			row[j] = &PairClassRecord{First: first, Second: second}
		}
		records[i] = row
	}

	cov, err := coverage.Read(p, subtablePos+coverageOffset)
	if err != nil {
		return nil, err
	}
	class1, err := classdef.Read(p, subtablePos+classDef1Offset)
	if err != nil {
		return nil, err
	}
	class2, err := classdef.Read(p, subtablePos+classDef2Offset)
	if err != nil {
		return nil, err
	}

	return &Gpos2_2{
		Cov:     cov,
		Format1: format1,
		Format2: format2,
		Class1:  class1,
		Class2:  class2,
		Records: records,
	}, nil
}

// Encode implements the Subtable interface.
func (l *Gpos2_2) Encode() ([]byte, error) {
	class1Count := len(l.Records)
	class2Count := 0
	if class1Count > 0 {
		class2Count = len(l.Records[0])
	}

	w := newWriter()
	w.u16(2)
	w.offsetTo(0, l.Cov.Encode())
	w.u16(uint16(l.Format1), uint16(l.Format2))
	w.offsetTo(0, l.Class1.Append(nil))
	w.offsetTo(0, l.Class2.Append(nil))
	w.count(class1Count)
	w.count(class2Count)
	for _, row := range l.Records {
		if len(row) != class2Count {
			return nil, &fonterror.FormatError{
				SubSystem: "sfnt/opentype/gtab",
				Reason:    "GPOS 2.2: rows of different length",
			}
		}
		for _, rec := range row {
			rec.First.write(w, 0, l.Format1)
			rec.Second.write(w, 0, l.Format2)
		}
	}
	return w.bytes()
}

// Gpos3_1 is a Cursive Attachment Positioning Subtable (format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#cursive-attachment-positioning-format1-cursive-attachment
type Gpos3_1 struct {
	Cov     coverage.Table
	Records []EntryExitRecord // indexed by coverage index
}

// EntryExitRecord gives the entry and exit anchors of a glyph.
// Either anchor can be nil.
type EntryExitRecord struct {
	Entry *anchor.Table
	Exit  *anchor.Table
}

func readGpos3_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16s(2 * int(count))
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) > int(count) {
		cov.Prune(int(count))
	}

	records := make([]EntryExitRecord, len(cov))
	for i := range records {
		if offs := offsets[2*i]; offs != 0 {
			records[i].Entry, err = anchor.Read(p, subtablePos+int64(offs))
			if err != nil {
				return nil, err
			}
		}
		if offs := offsets[2*i+1]; offs != 0 {
			records[i].Exit, err = anchor.Read(p, subtablePos+int64(offs))
			if err != nil {
				return nil, err
			}
		}
	}
	return &Gpos3_1{Cov: cov, Records: records}, nil
}

// Encode implements the Subtable interface.
func (l *Gpos3_1) Encode() ([]byte, error) {
	w := newWriter()
	w.u16(1)
	w.offsetTo(0, l.Cov.Encode())
	w.count(len(l.Records))
	for _, rec := range l.Records {
		w.offsetTo(0, appendAnchor(rec.Entry))
		w.offsetTo(0, appendAnchor(rec.Exit))
	}
	return w.bytes()
}

// appendAnchor returns the binary representation of a, or nil if a is nil.
func appendAnchor(a *anchor.Table) []byte {
	if a == nil {
		return nil
	}
	return a.Append(nil)
}
