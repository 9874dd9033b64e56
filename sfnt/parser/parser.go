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

// Package parser reads binary values from the body of an sfnt table.
package parser

import (
	"fmt"

	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Parser allows to read data from an sfnt table.
// All offsets are relative to the start of the table.
type Parser struct {
	data      []byte
	tableName string
	pos       int
}

// New allocates a new Parser for the given table data.
func New(tableName string, data []byte) *Parser {
	return &Parser{
		data:      data,
		tableName: tableName,
	}
}

// Size returns the length of the table data.
func (p *Parser) Size() int64 {
	return int64(len(p.data))
}

// Pos returns the current reading position.
func (p *Parser) Pos() int64 {
	return int64(p.pos)
}

// SeekPos changes the reading position.
func (p *Parser) SeekPos(pos int64) error {
	if pos < 0 || pos > int64(len(p.data)) {
		return p.Error("offset %d outside table (size %d)", pos, len(p.data))
	}
	p.pos = int(pos)
	return nil
}

// Discard skips the next n bytes of input.
func (p *Parser) Discard(n int) error {
	if n < 0 {
		panic("negative discard")
	}
	return p.SeekPos(p.Pos() + int64(n))
}

// ReadBytes reads n bytes, starting at the current position.  The returned
// slice points into the table data and must not be modified by the caller.
func (p *Parser) ReadBytes(n int) ([]byte, error) {
	if n < 0 || p.pos+n > len(p.data) {
		return nil, p.Error("unexpected end of table")
	}
	res := p.data[p.pos : p.pos+n : p.pos+n]
	p.pos += n
	return res, nil
}

// ReadUint8 reads a single uint8 value from the current position.
func (p *Parser) ReadUint8() (uint8, error) {
	buf, err := p.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads a single uint16 value from the current position.
func (p *Parser) ReadUint16() (uint16, error) {
	buf, err := p.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// ReadInt16 reads a single int16 value from the current position.
func (p *Parser) ReadInt16() (int16, error) {
	val, err := p.ReadUint16()
	return int16(val), err
}

// ReadUint32 reads a single uint32 value from the current position.
func (p *Parser) ReadUint32() (uint32, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

// ReadInt32 reads a single int32 value from the current position.
func (p *Parser) ReadInt32() (int32, error) {
	val, err := p.ReadUint32()
	return int32(val), err
}

// ReadFixed reads a 16.16 fixed point number.
func (p *Parser) ReadFixed() (float64, error) {
	val, err := p.ReadInt32()
	return float64(val) / 65536, err
}

// ReadF2Dot14 reads a 2.14 fixed point number.
func (p *Parser) ReadF2Dot14() (float64, error) {
	val, err := p.ReadInt16()
	return float64(val) / 16384, err
}

// ReadTag reads a four-byte tag.
func (p *Parser) ReadTag() (string, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadUint16Slice reads a length followed by a sequence of uint16 values.
func (p *Parser) ReadUint16Slice() ([]uint16, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	return p.ReadUint16s(int(n))
}

// ReadUint16s reads n uint16 values.
func (p *Parser) ReadUint16s(n int) ([]uint16, error) {
	buf, err := p.ReadBytes(2 * n)
	if err != nil {
		return nil, err
	}
	res := make([]uint16, n)
	for i := range res {
		res[i] = uint16(buf[2*i])<<8 | uint16(buf[2*i+1])
	}
	return res, nil
}

// ReadGIDSlice reads a length followed by a sequence of glyph IDs.
func (p *Parser) ReadGIDSlice() ([]glyph.ID, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	return p.ReadGIDs(int(n))
}

// ReadGIDs reads n glyph IDs.
func (p *Parser) ReadGIDs(n int) ([]glyph.ID, error) {
	buf, err := p.ReadBytes(2 * n)
	if err != nil {
		return nil, err
	}
	res := make([]glyph.ID, n)
	for i := range res {
		res[i] = glyph.ID(buf[2*i])<<8 | glyph.ID(buf[2*i+1])
	}
	return res, nil
}

// Error returns a FormatError which identifies the table and the
// current reading position.
func (p *Parser) Error(format string, a ...interface{}) error {
	return &fonterror.FormatError{
		SubSystem: "sfnt/parser",
		Table:     p.tableName,
		Reason:    fmt.Sprintf("%+d: ", p.pos) + fmt.Sprintf(format, a...),
	}
}
