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

// Package post has code for reading and writing the "post" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/post
package post

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// Info contains information from the "post" table.
type Info struct {
	ItalicAngle        float64     // Italic angle in degrees
	UnderlinePosition  funit.Int16 // Underline position (negative)
	UnderlineThickness funit.Int16 // Underline thickness
	IsFixedPitch       bool

	MinMemType42 uint32
	MaxMemType42 uint32
	MinMemType1  uint32
	MaxMemType1  uint32

	Names []string // can be nil
}

// Read decodes the "post" table.
func Read(data []byte) (*Info, error) {
	post := &postEnc{}
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, post); err != nil {
		return nil, &fonterror.FormatError{
			SubSystem: "sfnt/post",
			Table:     "post",
			Reason:    "table too short",
		}
	}

	info := &Info{
		ItalicAngle:        float64(post.ItalicAngle) / 65536,
		UnderlinePosition:  post.UnderlinePosition,
		UnderlineThickness: post.UnderlineThickness,
		IsFixedPitch:       post.IsFixedPitch != 0,
		MinMemType42:       post.MinMemType42,
		MaxMemType42:       post.MaxMemType42,
		MinMemType1:        post.MinMemType1,
		MaxMemType1:        post.MaxMemType1,
	}

	switch post.Version {
	case 0x00010000:
		info.Names = append([]string(nil), macRoman...)

	case 0x00020000:
		p := parser.New("post", data)
		err := p.SeekPos(postHeaderLength)
		if err != nil {
			return nil, err
		}
		indices, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}

		var names []string
		info.Names = make([]string, len(indices))
		nMac := len(macRoman)
		for i, idx := range indices {
			if int(idx) < nMac {
				info.Names[i] = macRoman[idx]
				continue
			}
			k := int(idx) - nMac
			for len(names) <= k {
				l, err := p.ReadUint8()
				if err != nil {
					return nil, err
				}
				name, err := p.ReadBytes(int(l))
				if err != nil {
					return nil, err
				}
				names = append(names, string(name))
			}
			info.Names[i] = names[k]
		}

	case 0x00025000, 0x00030000, 0x00040000:
		// no usable glyph names

	default:
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/post",
			Feature:   fmt.Sprintf("post table version %08x", post.Version),
		}
	}

	return info, nil
}

// Encode encodes the "post" table.  If glyph names are present, version 1
// is used when the names coincide with the standard Macintosh glyph order,
// and version 2 otherwise.
func (info *Info) Encode() ([]byte, error) {
	var version uint32
	if info.Names == nil {
		version = 0x00030000
	} else if isMacRoman(info.Names) {
		version = 0x00010000
	} else {
		version = 0x00020000
	}

	header := &postEnc{
		Version:            version,
		ItalicAngle:        int32(math.Round(info.ItalicAngle * 65536)),
		UnderlinePosition:  info.UnderlinePosition,
		UnderlineThickness: info.UnderlineThickness,
		MinMemType42:       info.MinMemType42,
		MaxMemType42:       info.MaxMemType42,
		MinMemType1:        info.MinMemType1,
		MaxMemType1:        info.MaxMemType1,
	}
	if info.IsFixedPitch {
		header.IsFixedPitch = 1
	}
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, header)

	if version == 0x00020000 {
		numGlyphs := len(info.Names)
		if numGlyphs > 0xFFFF {
			return nil, &fonterror.FormatError{
				SubSystem: "sfnt/post",
				Table:     "post",
				Reason:    fmt.Sprintf("too many glyph names (%d)", numGlyphs),
			}
		}
		buf.Write([]byte{byte(numGlyphs >> 8), byte(numGlyphs)})

		var stringData []byte
		numStrings := 0
		for _, name := range info.Names {
			idx, ok := macRomanIndex[name]
			if !ok {
				if len(name) > 255 {
					return nil, &fonterror.FormatError{
						SubSystem: "sfnt/post",
						Table:     "post",
						Reason:    fmt.Sprintf("glyph name %q too long", name),
					}
				}
				idx = len(macRoman) + numStrings
				stringData = append(stringData, byte(len(name)))
				stringData = append(stringData, name...)
				numStrings++
			}
			buf.Write([]byte{byte(idx >> 8), byte(idx)})
		}
		buf.Write(stringData)
	}

	return buf.Bytes(), nil
}

func isMacRoman(names []string) bool {
	if len(names) != len(macRoman) {
		return false
	}
	for i, name := range names {
		if name != macRoman[i] {
			return false
		}
	}
	return true
}

const postHeaderLength = 32

type postEnc struct {
	Version            uint32
	ItalicAngle        int32
	UnderlinePosition  funit.Int16
	UnderlineThickness funit.Int16
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32
}
