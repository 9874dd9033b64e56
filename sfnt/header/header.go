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

// Package header reads and writes the table directory of sfnt font files.
// https://docs.microsoft.com/en-us/typography/opentype/spec/otff#table-directory
package header

import (
	"fmt"
	"sort"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// Scaler types for the sfnt version field.
const (
	ScalerTypeTrueType = 0x00010000
	ScalerTypeCFF      = 0x4F54544F // "OTTO"
	ScalerTypeApple    = 0x74727565 // "true"
)

// Info describes the table directory of an sfnt file.
type Info struct {
	ScalerType uint32
	Toc        map[string]Record
}

// Record gives the location of one table inside the file.
type Record struct {
	Offset uint32
	Length uint32
}

// Read decodes the table directory at the start of data.
func Read(data []byte) (*Info, error) {
	if len(data) < 12 {
		return nil, errMalformed("file too short")
	}
	scalerType := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	switch scalerType {
	case ScalerTypeTrueType, ScalerTypeCFF, ScalerTypeApple:
		// pass
	case 0x74746366: // "ttcf"
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/header",
			Feature:   "font collections",
		}
	default:
		return nil, errMalformed(fmt.Sprintf("unknown scaler type 0x%08x", scalerType))
	}
	numTables := int(data[4])<<8 | int(data[5])
	if len(data) < 12+16*numTables {
		return nil, errMalformed("truncated table directory")
	}

	info := &Info{
		ScalerType: scalerType,
		Toc:        make(map[string]Record, numTables),
	}
	for i := 0; i < numTables; i++ {
		rec := data[12+16*i : 28+16*i]
		name := string(rec[:4])
		offset := uint32(rec[8])<<24 | uint32(rec[9])<<16 | uint32(rec[10])<<8 | uint32(rec[11])
		length := uint32(rec[12])<<24 | uint32(rec[13])<<16 | uint32(rec[14])<<8 | uint32(rec[15])
		if uint64(offset)+uint64(length) > uint64(len(data)) {
			return nil, errMalformed(fmt.Sprintf("table %q extends beyond end of file", name))
		}
		if _, seen := info.Toc[name]; seen {
			return nil, errMalformed(fmt.Sprintf("duplicate table %q", name))
		}
		info.Toc[name] = Record{Offset: offset, Length: length}
	}
	return info, nil
}

// Has returns true if all of the given tables are present.
func (info *Info) Has(tableNames ...string) bool {
	for _, name := range tableNames {
		if _, ok := info.Toc[name]; !ok {
			return false
		}
	}
	return true
}

// TableNames returns the names of all tables, in the order in which they
// appear in the file.
func (info *Info) TableNames() []string {
	names := make([]string, 0, len(info.Toc))
	for name := range info.Toc {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return info.Toc[names[i]].Offset < info.Toc[names[j]].Offset
	})
	return names
}

// ReadTables returns the bodies of all tables in the file.
// The returned slices point into data.
func ReadTables(data []byte) (*Info, map[string][]byte, error) {
	info, err := Read(data)
	if err != nil {
		return nil, nil, err
	}
	tables := make(map[string][]byte, len(info.Toc))
	for name, rec := range info.Toc {
		tables[name] = data[rec.Offset : rec.Offset+rec.Length : rec.Offset+rec.Length]
	}
	return info, tables, nil
}

func errMalformed(reason string) error {
	return &fonterror.FormatError{
		SubSystem: "sfnt/header",
		Reason:    reason,
	}
}
