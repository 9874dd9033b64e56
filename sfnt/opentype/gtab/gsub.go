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
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// GSUB lookup types used by this package.
const (
	GsubSingle    = 1
	GsubExtension = 7
)

// GSUB is a "GSUB" table with an undecoded lookup list.
type GSUB struct {
	Common
	Lookups RawLookups
}

// RawLookups is a lookup list in binary form.  The list starts at Offset
// inside Data; all offsets in the list are interpreted relative to Data.
type RawLookups struct {
	Data   []byte
	Offset int
}

// ReadGSUB decodes a "GSUB" table.
func ReadGSUB(data []byte) (*GSUB, error) {
	p := parser.New("GSUB", data)
	common, lookupListOffset, err := readCommon(p)
	if err != nil {
		return nil, err
	}
	res := &GSUB{Common: *common}
	if lookupListOffset != 0 {
		res.Lookups = RawLookups{Data: data, Offset: int(lookupListOffset)}
	}
	return res, nil
}

// Encode returns the binary representation of the table.
func (t *GSUB) Encode() ([]byte, error) {
	data := t.Lookups.Data
	if data == nil {
		data = []byte{0, 0}
	}
	return t.Common.encode(data, t.Lookups.Offset)
}

// NumLookups returns the number of lookups in the lookup list.
func (rl RawLookups) NumLookups() int {
	if rl.Offset+2 > len(rl.Data) {
		return 0
	}
	return int(rl.Data[rl.Offset])<<8 | int(rl.Data[rl.Offset+1])
}

// SingleSubstitutions returns the mapping given by a single substitution
// lookup, including single substitutions wrapped in extension subtables.
// Earlier subtables take precedence over later ones.  For other lookup
// types, an UnsupportedFormatError is returned.
func (rl RawLookups) SingleSubstitutions(idx LookupIndex) (map[glyph.ID]glyph.ID, error) {
	p := parser.New("GSUB", rl.Data)
	listPos := int64(rl.Offset)
	err := p.SeekPos(listPos)
	if err != nil {
		return nil, err
	}
	lookupOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	if int(idx) >= len(lookupOffsets) {
		return nil, &fonterror.NotFoundError{
			SubSystem: "sfnt/opentype/gtab",
			What:      fmt.Sprintf("GSUB lookup %d", idx),
		}
	}

	lookupPos := listPos + int64(lookupOffsets[idx])
	err = p.SeekPos(lookupPos)
	if err != nil {
		return nil, err
	}
	buf, err := p.ReadUint16s(2)
	if err != nil {
		return nil, err
	}
	lookupType := buf[0]
	subtableOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	res := make(map[glyph.ID]glyph.ID)
	for _, offs := range subtableOffsets {
		subtablePos := lookupPos + int64(offs)
		subtableType := lookupType
		if lookupType == GsubExtension {
			subtableType, subtablePos, err = readExtension(p, subtablePos)
			if err != nil {
				return nil, err
			}
		}
		if subtableType != GsubSingle {
			return nil, &fonterror.UnsupportedFormatError{
				SubSystem: "sfnt/opentype/gtab",
				Feature:   fmt.Sprintf("GSUB lookup type %d in single substitution context", subtableType),
			}
		}
		err = readGsub1(p, subtablePos, res)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// readGsub1 reads a single substitution subtable (format 1 or 2) and adds
// the mappings to res.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#lookuptype-1-single-substitution-subtable
func readGsub1(p *parser.Parser, subtablePos int64, res map[glyph.ID]glyph.ID) error {
	err := p.SeekPos(subtablePos)
	if err != nil {
		return err
	}
	buf, err := p.ReadUint16s(3)
	if err != nil {
		return err
	}
	format, coverageOffset := buf[0], buf[1]

	var substitutes []glyph.ID
	switch format {
	case 1:
		// buf[2] is deltaGlyphID
	case 2:
		substitutes, err = p.ReadGIDs(int(buf[2]))
		if err != nil {
			return err
		}
	default:
		return p.Error("invalid single substitution format %d", format)
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return err
	}
	for gid, idx := range cov {
		if _, seen := res[gid]; seen {
			continue
		}
		if format == 1 {
			res[gid] = gid + glyph.ID(buf[2])
		} else if idx < len(substitutes) {
			res[gid] = substitutes[idx]
		}
	}
	return nil
}
