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
	"encoding/binary"
	"fmt"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// FeatureVariations lists alternate feature tables for regions of the
// design space of a variable font.  The first record whose conditions are
// all satisfied applies.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#featurevariations-table
type FeatureVariations []*FeatureVariationRecord

// FeatureVariationRecord gives the feature substitutions for one region of
// the design space.
type FeatureVariationRecord struct {
	Conditions    []Condition
	Substitutions []FeatureSubstitution
}

// Condition restricts the range of one axis.  The limits are normalized
// coordinates in F2DOT14 format.
type Condition struct {
	Axis     uint16
	Min, Max int16
}

// FeatureSubstitution replaces the feature with the given index.
type FeatureSubstitution struct {
	FeatureIndex FeatureIndex
	Alternate    *Feature
}

// Matches returns true if the normalized coordinates satisfy every
// condition of the record.  Axes beyond the end of coords are at their
// default.
func (rec *FeatureVariationRecord) Matches(coords []float64) bool {
	for _, c := range rec.Conditions {
		var x float64
		if int(c.Axis) < len(coords) {
			x = coords[c.Axis]
		}
		if x < float64(c.Min)/16384 || x > float64(c.Max)/16384 {
			return false
		}
	}
	return true
}

// Lookup returns the substitutions of the first record which matches the
// given normalized coordinates, or nil if no record matches.
func (fv FeatureVariations) Lookup(coords []float64) []FeatureSubstitution {
	for _, rec := range fv {
		if rec.Matches(coords) {
			return rec.Substitutions
		}
	}
	return nil
}

func readFeatureVariations(p *parser.Parser, pos int64, features FeatureList) (FeatureVariations, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	version, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	if version != 0x00010000 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/opentype/gtab",
			Feature:   fmt.Sprintf("FeatureVariations version 0x%08x", version),
		}
	}
	count, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int64(count)*8 > p.Size() {
		return nil, p.Error("invalid featureVariationRecordCount")
	}
	offsets := make([]uint32, 2*count)
	for i := range offsets {
		offsets[i], err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
	}

	res := make(FeatureVariations, count)
	for i := range res {
		rec := &FeatureVariationRecord{}
		if offs := offsets[2*i]; offs != 0 {
			rec.Conditions, err = readConditionSet(p, pos+int64(offs))
			if err != nil {
				return nil, err
			}
		}
		if offs := offsets[2*i+1]; offs != 0 {
			rec.Substitutions, err = readFeatureSubstitutions(p, pos+int64(offs), features)
			if err != nil {
				return nil, err
			}
		}
		res[i] = rec
	}
	return res, nil
}

func readConditionSet(p *parser.Parser, pos int64) ([]Condition, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
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
	res := make([]Condition, count)
	for i, offs := range offsets {
		err = p.SeekPos(pos + int64(offs))
		if err != nil {
			return nil, err
		}
		buf, err := p.ReadUint16s(4)
		if err != nil {
			return nil, err
		}
		if buf[0] != 1 {
			return nil, &fonterror.UnsupportedFormatError{
				SubSystem: "sfnt/opentype/gtab",
				Feature:   fmt.Sprintf("condition table format %d", buf[0]),
			}
		}
		res[i] = Condition{
			Axis: buf[1],
			Min:  int16(buf[2]),
			Max:  int16(buf[3]),
		}
	}
	return res, nil
}

func readFeatureSubstitutions(p *parser.Parser, pos int64, features FeatureList) ([]FeatureSubstitution, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	version, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	if version != 0x00010000 {
		return nil, p.Error("unknown FeatureTableSubstitution version 0x%08x", version)
	}
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	type record struct {
		idx  FeatureIndex
		offs uint32
	}
	records := make([]record, count)
	for i := range records {
		idx, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		offs, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		records[i] = record{idx: FeatureIndex(idx), offs: offs}
	}

	res := make([]FeatureSubstitution, count)
	for i, rec := range records {
		if int(rec.idx) >= len(features) {
			return nil, p.Error("feature index %d out of range", rec.idx)
		}
		alt, err := readFeature(p, features[rec.idx].Tag, pos+int64(rec.offs))
		if err != nil {
			return nil, err
		}
		res[i] = FeatureSubstitution{FeatureIndex: rec.idx, Alternate: alt}
	}
	return res, nil
}

func (fv FeatureVariations) encode() []byte {
	buf := make([]byte, 8+8*len(fv))
	binary.BigEndian.PutUint32(buf[0:], 0x00010000)
	binary.BigEndian.PutUint32(buf[4:], uint32(len(fv)))

	for i, rec := range fv {
		binary.BigEndian.PutUint32(buf[8+8*i:], uint32(len(buf)))
		n := len(rec.Conditions)
		buf = binary.BigEndian.AppendUint16(buf, uint16(n))
		for j := range rec.Conditions {
			buf = binary.BigEndian.AppendUint32(buf, uint32(2+4*n+8*j))
		}
		for _, c := range rec.Conditions {
			buf = binary.BigEndian.AppendUint16(buf, 1)
			buf = binary.BigEndian.AppendUint16(buf, c.Axis)
			buf = binary.BigEndian.AppendUint16(buf, uint16(c.Min))
			buf = binary.BigEndian.AppendUint16(buf, uint16(c.Max))
		}

		binary.BigEndian.PutUint32(buf[12+8*i:], uint32(len(buf)))
		substPos := len(buf)
		m := len(rec.Substitutions)
		buf = binary.BigEndian.AppendUint32(buf, 0x00010000)
		buf = binary.BigEndian.AppendUint16(buf, uint16(m))
		recPos := len(buf)
		buf = append(buf, make([]byte, 6*m)...)
		for j, s := range rec.Substitutions {
			binary.BigEndian.PutUint16(buf[recPos+6*j:], uint16(s.FeatureIndex))
			binary.BigEndian.PutUint32(buf[recPos+6*j+2:], uint32(len(buf)-substPos))
			buf = append(buf, s.Alternate.encode()...)
		}
	}
	return buf
}
