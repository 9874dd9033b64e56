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


// Package markarray reads and writes OpenType "Mark Array Tables".
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#mark-array-table
package markarray

import (
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// Table is a Mark Array Table, indexed by mark coverage index.
type Table []Record

// Record is a mark record.
type Record struct {
	Class  uint16
	Anchor *anchor.Table
}

// Read reads a Mark Array Table from the given parser.
// If there are more than numMarks entries in the table, the remaining entries
// are ignored.
func Read(p *parser.Parser, pos int64, numMarks int) (Table, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	markCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if int(markCount) > numMarks {
		markCount = uint16(numMarks)
	}

	raw, err := p.ReadUint16s(2 * int(markCount))
	if err != nil {
		return nil, err
	}

	res := make(Table, markCount)
	for i := range res {
		res[i].Class = raw[2*i]
		offs := raw[2*i+1]
		if offs == 0 {
			return nil, &fonterror.FormatError{
				SubSystem: "sfnt/opentype/markarray",
				Reason:    "missing mark anchor",
			}
		}
		res[i].Anchor, err = anchor.Read(p, pos+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// MaxClass returns the largest mark class used in the table.
func (table Table) MaxClass() uint16 {
	var res uint16
	for _, rec := range table {
		res = max(res, rec.Class)
	}
	return res
}

// AppendLen returns the length of the binary representation of the table.
func (table Table) AppendLen() int {
	total := 2 + 4*len(table)
	for _, rec := range table {
		total += rec.Anchor.AppendLen()
	}
	return total
}

// Append appends the binary representation of the table to buf.
// Offsets are 16 bit; the caller must check that AppendLen is small enough.
func (table Table) Append(buf []byte) []byte {
	markCount := len(table)
	buf = append(buf, byte(markCount>>8), byte(markCount))
	offs := 2 + 4*markCount
	for _, rec := range table {
		buf = append(buf,
			byte(rec.Class>>8), byte(rec.Class),
			byte(offs>>8), byte(offs))
		offs += rec.Anchor.AppendLen()
	}
	for _, rec := range table {
		buf = rec.Anchor.Append(buf)
	}
	return buf
}
