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


// Package gtab reads and writes the OpenType "GPOS" and "GSUB" tables.
//
// GPOS tables are decoded completely, so that glyph references, value
// records and anchors can be rewritten.  For GSUB tables only the script
// list, the feature list and the feature variations are decoded; the lookup
// list is kept in binary form, with access to single substitutions.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub
package gtab

import (
	"fmt"
	"slices"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// Common contains the parts of a "GPOS" or "GSUB" table which describe
// the scripts, language systems and features.
type Common struct {
	ScriptList        ScriptList
	FeatureList       FeatureList
	FeatureVariations FeatureVariations
}

// GPOS is a decoded "GPOS" table.
type GPOS struct {
	Common
	LookupList LookupList
}

// ReadGPOS decodes a "GPOS" table.
func ReadGPOS(data []byte) (*GPOS, error) {
	p := parser.New("GPOS", data)
	common, lookupListOffset, err := readCommon(p)
	if err != nil {
		return nil, err
	}
	res := &GPOS{Common: *common}
	if lookupListOffset != 0 {
		res.LookupList, err = readLookupList(p, lookupListOffset, GposExtension, readGposSubtable)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Encode returns the binary representation of the table.  The table is
// written as version 1.0, unless feature variations are present.
func (t *GPOS) Encode() ([]byte, error) {
	lookups, err := t.LookupList.encode(GposExtension)
	if err != nil {
		return nil, err
	}
	return t.Common.encode(lookups, 0)
}

// NumLookups returns the number of lookups in the table.
func (t *GPOS) NumLookups() int {
	return len(t.LookupList)
}

func readCommon(p *parser.Parser) (*Common, int64, error) {
	buf, err := p.ReadUint16s(5)
	if err != nil {
		return nil, 0, err
	}
	major, minor := buf[0], buf[1]
	if major != 1 || minor > 1 {
		return nil, 0, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/opentype/gtab",
			Feature:   fmt.Sprintf("table version %d.%d", major, minor),
		}
	}
	scriptListOffset := int64(buf[2])
	featureListOffset := int64(buf[3])
	lookupListOffset := int64(buf[4])
	var featureVariationsOffset int64
	if minor == 1 {
		offs, err := p.ReadUint32()
		if err != nil {
			return nil, 0, err
		}
		featureVariationsOffset = int64(offs)
	}

	res := &Common{}
	if scriptListOffset != 0 {
		res.ScriptList, err = readScriptList(p, scriptListOffset)
		if err != nil {
			return nil, 0, err
		}
	}
	if featureListOffset != 0 {
		res.FeatureList, err = readFeatureList(p, featureListOffset)
		if err != nil {
			return nil, 0, err
		}
	}
	if featureVariationsOffset != 0 {
		res.FeatureVariations, err = readFeatureVariations(p, featureVariationsOffset, res.FeatureList)
		if err != nil {
			return nil, 0, err
		}
	}
	return res, lookupListOffset, nil
}

// encode assembles a complete table.  The lookup list starts at
// lookupListOffset inside lookupData.
func (c *Common) encode(lookupData []byte, lookupListOffset int) ([]byte, error) {
	scriptData, err := c.ScriptList.encode()
	if err != nil {
		return nil, err
	}
	featureData, err := c.FeatureList.encode()
	if err != nil {
		return nil, err
	}

	headerLen := 10
	var minor uint16
	if len(c.FeatureVariations) > 0 {
		headerLen = 14
		minor = 1
	}
	scriptOffs := headerLen
	featureOffs := scriptOffs + len(scriptData)
	lookupPos := featureOffs + len(featureData)
	lookupOffs := lookupPos + lookupListOffset
	if lookupOffs > 0xFFFF {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/opentype/gtab",
			Feature:   "script and feature lists larger than 64 KiB",
		}
	}

	w := newWriter()
	w.u16(1, minor, uint16(scriptOffs), uint16(featureOffs), uint16(lookupOffs))
	if minor == 1 {
		w.u16(0, 0) // feature variations offset, filled in below
	}
	w.buf = append(w.buf, scriptData...)
	w.buf = append(w.buf, featureData...)
	w.buf = append(w.buf, lookupData...)
	if minor == 1 {
		fvOffs := uint32(len(w.buf))
		w.buf[10] = byte(fvOffs >> 24)
		w.buf[11] = byte(fvOffs >> 16)
		w.buf[12] = byte(fvOffs >> 8)
		w.buf[13] = byte(fvOffs)
		w.buf = append(w.buf, c.FeatureVariations.encode()...)
	}
	return w.buf, nil
}

// FeaturesByTag returns the indices of all features with the given tag.
func (c *Common) FeaturesByTag(tag string) []FeatureIndex {
	var res []FeatureIndex
	for i, f := range c.FeatureList {
		if f.Tag == tag {
			res = append(res, FeatureIndex(i))
		}
	}
	return res
}

// DeleteFeatures removes all features for which del returns true.  Feature
// indices in the language systems and in the feature variations are
// renumbered.  The number of removed features is returned.
func (c *Common) DeleteFeatures(del func(*Feature) bool) int {
	newIndex := make([]int, len(c.FeatureList))
	var kept FeatureList
	for i, f := range c.FeatureList {
		if del(f) {
			newIndex[i] = -1
			continue
		}
		newIndex[i] = len(kept)
		kept = append(kept, f)
	}
	removed := len(c.FeatureList) - len(kept)
	if removed == 0 {
		return 0
	}
	c.FeatureList = kept

	remap := func(idx FeatureIndex) (FeatureIndex, bool) {
		if int(idx) >= len(newIndex) || newIndex[idx] < 0 {
			return 0, false
		}
		return FeatureIndex(newIndex[idx]), true
	}
	for _, ff := range c.ScriptList {
		if ff.Required != NoRequiredFeature {
			if idx, ok := remap(ff.Required); ok {
				ff.Required = idx
			} else {
				ff.Required = NoRequiredFeature
			}
		}
		var optional []FeatureIndex
		for _, old := range ff.Optional {
			if idx, ok := remap(old); ok {
				optional = append(optional, idx)
			}
		}
		ff.Optional = optional
	}
	for _, rec := range c.FeatureVariations {
		var substs []FeatureSubstitution
		for _, s := range rec.Substitutions {
			if idx, ok := remap(s.FeatureIndex); ok {
				s.FeatureIndex = idx
				substs = append(substs, s)
			}
		}
		rec.Substitutions = substs
	}
	return removed
}

// ApplyFeatureVariations replaces the features by the alternates given for
// the normalized coordinates, and removes the feature variations.  The
// number of substituted features is returned.
func (c *Common) ApplyFeatureVariations(coords []float64) int {
	substs := c.FeatureVariations.Lookup(coords)
	for _, s := range substs {
		alt := s.Alternate.Clone()
		alt.Tag = c.FeatureList[s.FeatureIndex].Tag
		c.FeatureList[s.FeatureIndex] = alt
	}
	c.FeatureVariations = nil
	return len(substs)
}

// LookupsForFeatures returns the indices of the lookups used by the features
// with the given tag, in increasing order and without duplicates.
func (c *Common) LookupsForFeatures(tag string) []LookupIndex {
	var res []LookupIndex
	for _, f := range c.FeatureList {
		if f.Tag == tag {
			res = append(res, f.Lookups...)
		}
	}
	slices.Sort(res)
	return slices.Compact(res)
}
