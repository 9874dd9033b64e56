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

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// LookupFlags contains bits which modify application of a lookup to a glyph string.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookupFlags
type LookupFlags uint16

// Bit values for LookupFlags.
const (
	LookupRightToLeft         LookupFlags = 0x0001
	LookupIgnoreBaseGlyphs    LookupFlags = 0x0002
	LookupIgnoreLigatures     LookupFlags = 0x0004
	LookupIgnoreMarks         LookupFlags = 0x0008
	LookupUseMarkFilteringSet LookupFlags = 0x0010
	LookupMarkAttachTypeMask  LookupFlags = 0xFF00
)

// LookupIndex enumerates lookups.
// It is used as an index into a LookupList.
type LookupIndex uint16

// LookupList contains the information from a Lookup List Table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-list-table
type LookupList []*Lookup

// Lookup represents a lookup table inside a "GPOS" table.  Extension lookups
// are resolved when the table is read: Type is the type of the wrapped
// subtables.
type Lookup struct {
	Type             uint16
	Flags            LookupFlags
	MarkFilteringSet uint16
	Subtables        []Subtable
}

// Subtable represents a subtable of a lookup table.
type Subtable interface {
	// Encode returns the binary representation of the subtable.
	Encode() ([]byte, error)
}

// subtableReader decodes a subtable of the given lookup type.
type subtableReader func(p *parser.Parser, pos int64, lookupType uint16) (Subtable, error)

func readLookupList(p *parser.Parser, pos int64, extensionType uint16, sr subtableReader) (LookupList, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	lookupOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	res := make(LookupList, len(lookupOffsets))
	for i, offs := range lookupOffsets {
		lookupTablePos := pos + int64(offs)
		err := p.SeekPos(lookupTablePos)
		if err != nil {
			return nil, err
		}
		buf, err := p.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		lookup := &Lookup{
			Type:  uint16(buf[0])<<8 | uint16(buf[1]),
			Flags: LookupFlags(buf[2])<<8 | LookupFlags(buf[3]),
		}
		subtableOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		if lookup.Flags&LookupUseMarkFilteringSet != 0 {
			lookup.MarkFilteringSet, err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}

		isExtension := lookup.Type == extensionType
		for j, subtableOffset := range subtableOffsets {
			subtablePos := lookupTablePos + int64(subtableOffset)
			lookupType := lookup.Type
			if isExtension {
				lookupType, subtablePos, err = readExtension(p, subtablePos)
				if err != nil {
					return nil, err
				}
				if j == 0 {
					lookup.Type = lookupType
				} else if lookupType != lookup.Type {
					return nil, &fonterror.FormatError{
						SubSystem: "sfnt/opentype/gtab",
						Reason:    fmt.Sprintf("lookup %d: mixed extension subtable types", i),
					}
				}
			}
			if lookupType == extensionType {
				return nil, &fonterror.FormatError{
					SubSystem: "sfnt/opentype/gtab",
					Reason:    "nested extension subtable",
				}
			}
			subtable, err := sr(p, subtablePos, lookupType)
			if err != nil {
				return nil, err
			}
			lookup.Subtables = append(lookup.Subtables, subtable)
		}
		res[i] = lookup
	}
	return res, nil
}

// readExtension decodes an extension subtable and returns the type and
// position of the wrapped subtable.
func readExtension(p *parser.Parser, pos int64) (uint16, int64, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return 0, 0, err
	}
	buf, err := p.ReadBytes(8)
	if err != nil {
		return 0, 0, err
	}
	format := uint16(buf[0])<<8 | uint16(buf[1])
	if format != 1 {
		return 0, 0, p.Error("invalid extension subtable format %d", format)
	}
	lookupType := uint16(buf[2])<<8 | uint16(buf[3])
	offs := int64(buf[4])<<24 | int64(buf[5])<<16 | int64(buf[6])<<8 | int64(buf[7])
	return lookupType, pos + offs, nil
}

// encode returns the binary representation of the lookup list.  If the
// lookups do not fit into the space addressable by 16-bit offsets, every
// lookup is wrapped into extension subtables of the given type.
func (ll LookupList) encode(extensionType uint16) ([]byte, error) {
	subData := make([][][]byte, len(ll))
	for i, lookup := range ll {
		subData[i] = make([][]byte, len(lookup.Subtables))
		for j, subtable := range lookup.Subtables {
			data, err := subtable.Encode()
			if err != nil {
				return nil, fmt.Errorf("lookup %d, subtable %d: %w", i, j, err)
			}
			subData[i][j] = data
		}
	}

	if buf, ok := ll.encodeCompact(subData); ok {
		return buf, nil
	}
	return ll.encodeExtension(subData, extensionType)
}

func (l *Lookup) headerLen() int {
	total := 6 + 2*len(l.Subtables)
	if l.Flags&LookupUseMarkFilteringSet != 0 {
		total += 2
	}
	return total
}

func (l *Lookup) appendHeader(buf []byte, lookupType uint16, subtableOffsets []int) []byte {
	n := len(subtableOffsets)
	buf = append(buf,
		byte(lookupType>>8), byte(lookupType),
		byte(l.Flags>>8), byte(l.Flags),
		byte(n>>8), byte(n))
	for _, offs := range subtableOffsets {
		buf = append(buf, byte(offs>>8), byte(offs))
	}
	if l.Flags&LookupUseMarkFilteringSet != 0 {
		buf = append(buf, byte(l.MarkFilteringSet>>8), byte(l.MarkFilteringSet))
	}
	return buf
}

func (ll LookupList) encodeCompact(subData [][][]byte) ([]byte, bool) {
	lookupCount := len(ll)
	buf := make([]byte, 2+2*lookupCount)
	buf[0] = byte(lookupCount >> 8)
	buf[1] = byte(lookupCount)

	for i, l := range ll {
		lookupPos := len(buf)
		if lookupPos > 0xFFFF {
			return nil, false
		}
		buf[2+2*i] = byte(lookupPos >> 8)
		buf[3+2*i] = byte(lookupPos)

		offsets := make([]int, len(subData[i]))
		pos := l.headerLen()
		for j, data := range subData[i] {
			if pos > 0xFFFF {
				return nil, false
			}
			offsets[j] = pos
			pos += len(data)
		}
		buf = l.appendHeader(buf, l.Type, offsets)
		for _, data := range subData[i] {
			buf = append(buf, data...)
		}
	}
	return buf, true
}

func (ll LookupList) encodeExtension(subData [][][]byte, extensionType uint16) ([]byte, error) {
	lookupCount := len(ll)
	buf := make([]byte, 2+2*lookupCount)
	buf[0] = byte(lookupCount >> 8)
	buf[1] = byte(lookupCount)

	type stub struct {
		pos        int
		lookupType uint16
		data       []byte
	}
	var stubs []stub
	for i, l := range ll {
		lookupPos := len(buf)
		if lookupPos > 0xFFFF {
			return nil, &fonterror.UnsupportedFormatError{
				SubSystem: "sfnt/opentype/gtab",
				Feature:   "lookup list larger than 64 KiB after extension promotion",
			}
		}
		buf[2+2*i] = byte(lookupPos >> 8)
		buf[3+2*i] = byte(lookupPos)

		offsets := make([]int, len(subData[i]))
		pos := l.headerLen()
		for j := range offsets {
			offsets[j] = pos
			stubs = append(stubs, stub{
				pos:        lookupPos + pos,
				lookupType: l.Type,
				data:       subData[i][j],
			})
			pos += 8
		}
		buf = l.appendHeader(buf, extensionType, offsets)
		buf = append(buf, make([]byte, 8*len(offsets))...)
	}

	for _, s := range stubs {
		offs := uint32(len(buf) - s.pos)
		copy(buf[s.pos:], []byte{
			0, 1, // format
			byte(s.lookupType >> 8), byte(s.lookupType),
			byte(offs >> 24), byte(offs >> 16), byte(offs >> 8), byte(offs),
		})
		buf = append(buf, s.data...)
	}
	return buf, nil
}
