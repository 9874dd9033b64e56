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

// Package name has code for reading and writing OpenType "name" tables.
// These tables contain localized strings associated with a font.
// https://docs.microsoft.com/en-us/typography/opentype/spec/name
//
// The table is represented at the level of individual name records,
// so that records in encodings which this package cannot interpret are
// preserved.
package name

import (
	"sort"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// ID is a name identifier.
type ID uint16

// Predefined name IDs.
const (
	Copyright            ID = 0
	Family               ID = 1
	Subfamily            ID = 2
	UniqueID             ID = 3
	FullName             ID = 4
	Version              ID = 5
	PostScriptName       ID = 6
	Trademark            ID = 7
	TypographicFamily    ID = 16
	TypographicSubfamily ID = 17
)

// Platform IDs used in name records and "cmap" subtables.
const (
	PlatformUnicode   = 0
	PlatformMacintosh = 1
	PlatformWindows   = 3
)

// LanguageEnglishUS is the Windows language ID for English (United States).
const LanguageEnglishUS = 0x0409

// Record is a single name record.
type Record struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     ID

	// Value is the string, in the encoding given by PlatformID and
	// EncodingID.
	Value []byte
}

// Table contains the records of a "name" table.
type Table struct {
	Records []*Record

	// LangTags are the language-tag strings of a version 1 table,
	// as stored in the font.
	LangTags [][]byte
}

// Decode reads a "name" table.
func Decode(data []byte) (*Table, error) {
	if len(data) < 6 {
		return nil, errMalformedNames
	}
	version := uint16(data[0])<<8 | uint16(data[1])
	numRec := int(data[2])<<8 | int(data[3])
	storageOffset := int(data[4])<<8 | int(data[5])

	if version > 1 {
		return nil, errMalformedNames
	}

	recBase := 6
	endOfHeader := recBase + 12*numRec
	if endOfHeader > len(data) {
		return nil, errMalformedNames
	}

	numLang := 0
	if version > 0 {
		if endOfHeader+2 > len(data) {
			return nil, errMalformedNames
		}
		numLang = int(data[endOfHeader])<<8 | int(data[endOfHeader+1])
		endOfHeader += 2
		if endOfHeader+4*numLang > len(data) {
			return nil, errMalformedNames
		}
	}
	if storageOffset > len(data) {
		return nil, errMalformedNames
	}

	t := &Table{}
	for i := 0; i < numRec; i++ {
		pos := recBase + i*12
		nameLen := int(data[pos+8])<<8 | int(data[pos+9])
		nameOffset := int(data[pos+10])<<8 | int(data[pos+11])
		if storageOffset+nameOffset+nameLen > len(data) {
			return nil, errMalformedNames
		}
		value := data[storageOffset+nameOffset : storageOffset+nameOffset+nameLen]
		t.Records = append(t.Records, &Record{
			PlatformID: uint16(data[pos])<<8 | uint16(data[pos+1]),
			EncodingID: uint16(data[pos+2])<<8 | uint16(data[pos+3]),
			LanguageID: uint16(data[pos+4])<<8 | uint16(data[pos+5]),
			NameID:     ID(data[pos+6])<<8 | ID(data[pos+7]),
			Value:      append([]byte(nil), value...),
		})
	}
	if version > 0 {
		t.LangTags = make([][]byte, 0, numLang)
		for i := 0; i < numLang; i++ {
			pos := endOfHeader + 4*i
			tagLen := int(data[pos])<<8 | int(data[pos+1])
			tagOffset := int(data[pos+2])<<8 | int(data[pos+3])
			if storageOffset+tagOffset+tagLen > len(data) {
				return nil, errMalformedNames
			}
			tag := data[storageOffset+tagOffset : storageOffset+tagOffset+tagLen]
			t.LangTags = append(t.LangTags, append([]byte(nil), tag...))
		}
	}

	return t, nil
}

// Encode converts a "name" table into its binary form.
// Records are sorted as required by the OpenType specification,
// and identical strings are stored only once.
func (t *Table) Encode() []byte {
	records := append([]*Record(nil), t.Records...)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PlatformID != records[j].PlatformID {
			return records[i].PlatformID < records[j].PlatformID
		}
		if records[i].EncodingID != records[j].EncodingID {
			return records[i].EncodingID < records[j].EncodingID
		}
		if records[i].LanguageID != records[j].LanguageID {
			return records[i].LanguageID < records[j].LanguageID
		}
		return records[i].NameID < records[j].NameID
	})

	b := newNameBuilder()

	var version uint16
	numRec := len(records)
	startOfRecords := 6
	startOfStrings := startOfRecords + numRec*12
	if t.LangTags != nil {
		version = 1
		startOfStrings += 2 + 4*len(t.LangTags)
	}

	header := make([]byte, startOfStrings)
	header[0] = byte(version >> 8)
	header[1] = byte(version)
	header[2] = byte(numRec >> 8)
	header[3] = byte(numRec)
	header[4] = byte(startOfStrings >> 8)
	header[5] = byte(startOfStrings)
	for i, rec := range records {
		offset, length := b.Add(rec.Value)
		base := startOfRecords + i*12
		header[base] = byte(rec.PlatformID >> 8)
		header[base+1] = byte(rec.PlatformID)
		header[base+2] = byte(rec.EncodingID >> 8)
		header[base+3] = byte(rec.EncodingID)
		header[base+4] = byte(rec.LanguageID >> 8)
		header[base+5] = byte(rec.LanguageID)
		header[base+6] = byte(rec.NameID >> 8)
		header[base+7] = byte(rec.NameID)
		header[base+8] = byte(length >> 8)
		header[base+9] = byte(length)
		header[base+10] = byte(offset >> 8)
		header[base+11] = byte(offset)
	}
	if t.LangTags != nil {
		base := startOfRecords + numRec*12
		header[base] = byte(len(t.LangTags) >> 8)
		header[base+1] = byte(len(t.LangTags))
		for i, tag := range t.LangTags {
			offset, length := b.Add(tag)
			pos := base + 2 + 4*i
			header[pos] = byte(length >> 8)
			header[pos+1] = byte(length)
			header[pos+2] = byte(offset >> 8)
			header[pos+3] = byte(offset)
		}
	}

	return append(header, b.data...)
}

// Get returns the first string with the given name ID which can be
// decoded, preferring Windows records in US English.
func (t *Table) Get(nameID ID) (string, bool) {
	var fallback string
	found := false
	for _, rec := range t.Records {
		if rec.NameID != nameID {
			continue
		}
		s, ok := rec.String()
		if !ok {
			continue
		}
		if rec.PlatformID == PlatformWindows && rec.LanguageID == LanguageEnglishUS {
			return s, true
		}
		if !found {
			fallback = s
			found = true
		}
	}
	return fallback, found
}

// Delete removes all records with the given name ID.
// The return value is the number of records removed.
func (t *Table) Delete(nameID ID) int {
	n := 0
	kept := t.Records[:0]
	for _, rec := range t.Records {
		if rec.NameID == nameID {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	for i := len(kept); i < len(t.Records); i++ {
		t.Records[i] = nil
	}
	t.Records = kept
	return n
}

// Set replaces the value of every record with the given name ID.  Records
// in encodings which cannot represent s, or which this package does not
// support, are left unchanged.  If no Windows Unicode record for US English
// exists, one is added.
// The return value is the number of records changed or added.
func (t *Table) Set(nameID ID, s string) int {
	n := 0
	haveWindows := false
	for _, rec := range t.Records {
		if rec.NameID != nameID {
			continue
		}
		if rec.PlatformID == PlatformWindows && rec.EncodingID == 1 && rec.LanguageID == LanguageEnglishUS {
			haveWindows = true
		}
		val, err := EncodeString(rec.PlatformID, rec.EncodingID, s)
		if err != nil {
			continue
		}
		rec.Value = val
		n++
	}
	if !haveWindows {
		val, _ := EncodeString(PlatformWindows, 1, s)
		t.Records = append(t.Records, &Record{
			PlatformID: PlatformWindows,
			EncodingID: 1,
			LanguageID: LanguageEnglishUS,
			NameID:     nameID,
			Value:      val,
		})
		n++
	}
	return n
}

// String decodes the value of the record.  The second return value is
// false if the encoding of the record is not supported.
func (rec *Record) String() (string, bool) {
	enc := encodingFor(rec.PlatformID, rec.EncodingID)
	if enc == nil {
		return "", false
	}
	s, err := enc.NewDecoder().Bytes(rec.Value)
	if err != nil {
		return "", false
	}
	return string(s), true
}

// EncodeString converts s into the byte representation used for name
// records with the given platform and encoding.
func EncodeString(platformID, encodingID uint16, s string) ([]byte, error) {
	enc := encodingFor(platformID, encodingID)
	if enc == nil {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/name",
			Feature:   "name record encoding",
		}
	}
	return enc.NewEncoder().Bytes([]byte(s))
}

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func encodingFor(platformID, encodingID uint16) encoding.Encoding {
	switch {
	case platformID == PlatformUnicode:
		return utf16BE
	case platformID == PlatformWindows && (encodingID == 0 || encodingID == 1 || encodingID == 10):
		return utf16BE
	case platformID == PlatformMacintosh && encodingID == 0:
		return charmap.Macintosh
	}
	return nil
}

type nameBuilder struct {
	data []byte
	idx  map[string]uint16
}

func newNameBuilder() *nameBuilder {
	return &nameBuilder{
		idx: make(map[string]uint16),
	}
}

func (nb *nameBuilder) Add(b []byte) (offs, length uint16) {
	key := string(b)
	if idx, ok := nb.idx[key]; ok {
		return idx, uint16(len(b))
	}
	idx := uint16(len(nb.data))
	nb.idx[key] = idx
	nb.data = append(nb.data, b...)
	return idx, uint16(len(b))
}

var errMalformedNames = &fonterror.FormatError{
	SubSystem: "sfnt/name",
	Table:     "name",
	Reason:    "malformed name table",
}
