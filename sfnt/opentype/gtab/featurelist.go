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
	"strings"

	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// FeatureIndex enumerates features.
// It is used as an index into the FeatureList.
// Valid values are in the range from 0 to 0xFFFE.
type FeatureIndex uint16

// FeatureList contains the contents of an OpenType "Feature List" table.
type FeatureList []*Feature

// Feature describes an OpenType feature, used either in a "GPOS" or "GSUB"
// table.
type Feature struct {
	// Tag describes the function of this feature.
	// https://docs.microsoft.com/en-us/typography/opentype/spec/featuretags
	Tag string

	// Lookups is a list of lookup indices that are used by this feature.
	Lookups []LookupIndex

	// Params holds the binary feature parameters for the "size", "ssXX" and
	// "cvXX" features.  Parameters of other features are not kept.
	Params []byte
}

func (f *Feature) String() string {
	return fmt.Sprintf("%s:%v", f.Tag, f.Lookups)
}

// Clone returns a deep copy of the feature.
func (f *Feature) Clone() *Feature {
	return &Feature{
		Tag:     f.Tag,
		Lookups: append([]LookupIndex(nil), f.Lookups...),
		Params:  append([]byte(nil), f.Params...),
	}
}

// IsStylisticSet returns true for the tags "ss01" to "ss20".
func IsStylisticSet(tag string) bool {
	n, ok := tagNumber(tag, "ss")
	return ok && n >= 1 && n <= 20
}

func isCharacterVariant(tag string) bool {
	n, ok := tagNumber(tag, "cv")
	return ok && n >= 1
}

// tagNumber parses tags of the form prefix followed by two decimal digits.
func tagNumber(tag, prefix string) (int, bool) {
	if len(tag) != 4 || !strings.HasPrefix(tag, prefix) {
		return 0, false
	}
	d1, d2 := tag[2], tag[3]
	if d1 < '0' || d1 > '9' || d2 < '0' || d2 > '9' {
		return 0, false
	}
	return int(d1-'0')*10 + int(d2-'0'), true
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#feature-list-table
func readFeatureList(p *parser.Parser, pos int64) (FeatureList, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	featureCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if featureCount == 0xFFFF {
		return nil, p.Error("too many features")
	}
	type featureRecord struct {
		tag  string
		offs uint16
	}
	records := make([]featureRecord, featureCount)
	for i := range records {
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		records[i] = featureRecord{
			tag:  string(buf[:4]),
			offs: uint16(buf[4])<<8 | uint16(buf[5]),
		}
	}

	info := make(FeatureList, len(records))
	for i, rec := range records {
		info[i], err = readFeature(p, rec.tag, pos+int64(rec.offs))
		if err != nil {
			return nil, err
		}
	}
	return info, nil
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#feature-table
func readFeature(p *parser.Parser, tag string, pos int64) (*Feature, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	featureParamsOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	lookups, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	res := &Feature{
		Tag:     tag,
		Lookups: make([]LookupIndex, len(lookups)),
	}
	for i, idx := range lookups {
		res.Lookups[i] = LookupIndex(idx)
	}

	if featureParamsOffset != 0 {
		paramsPos := pos + int64(featureParamsOffset)
		var n int
		switch {
		case tag == "size":
			n = 10
		case IsStylisticSet(tag):
			n = 4
		case isCharacterVariant(tag):
			err = p.SeekPos(paramsPos + 12)
			if err != nil {
				return nil, err
			}
			charCount, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			n = 14 + 3*int(charCount)
		}
		if n > 0 {
			err = p.SeekPos(paramsPos)
			if err != nil {
				return nil, err
			}
			params, err := p.ReadBytes(n)
			if err != nil {
				return nil, err
			}
			res.Params = append([]byte(nil), params...)
		}
	}
	return res, nil
}

func (f *Feature) encode() []byte {
	w := newWriter()
	if len(f.Params) > 0 {
		w.offsetTo(0, f.Params)
	} else {
		w.offsetTo(0, nil)
	}
	w.count(len(f.Lookups))
	for _, l := range f.Lookups {
		w.u16(uint16(l))
	}
	w.flush()
	return w.buf
}

func (info FeatureList) encode() ([]byte, error) {
	w := newWriter()
	w.count(len(info))
	for _, f := range info {
		w.tag(f.Tag)
		w.offsetTo(0, f.encode())
	}
	return w.bytes()
}
