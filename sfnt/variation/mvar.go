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


package variation

import (
	"fmt"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// MVAR is a decoded "MVAR" table.  Records maps value tags like "hasc" or
// "xhgt" to entries in the item variation store.
type MVAR struct {
	Records map[string]device.VariationIndex
	Store   *ItemVariationStore
}

// ReadMVAR decodes an "MVAR" table.
func ReadMVAR(data []byte) (*MVAR, error) {
	p := parser.New("MVAR", data)
	buf, err := p.ReadUint16s(6)
	if err != nil {
		return nil, err
	}
	if buf[0] != 1 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/variation",
			Feature:   fmt.Sprintf("MVAR version %d.%d", buf[0], buf[1]),
		}
	}
	recordSize := int(buf[3])
	recordCount := int(buf[4])
	storeOffset := int64(buf[5])
	if recordCount > 0 && recordSize < 8 {
		return nil, p.Error("invalid value record size %d", recordSize)
	}

	res := &MVAR{Records: make(map[string]device.VariationIndex, recordCount)}
	for i := range recordCount {
		err := p.SeekPos(12 + int64(i*recordSize))
		if err != nil {
			return nil, err
		}
		tag, err := p.ReadTag()
		if err != nil {
			return nil, err
		}
		idx, err := p.ReadUint16s(2)
		if err != nil {
			return nil, err
		}
		res.Records[tag] = device.VariationIndex{Outer: idx[0], Inner: idx[1]}
	}

	if storeOffset != 0 {
		res.Store, err = ReadItemVariationStore(p, storeOffset)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Deltas returns the delta for every value tag at the normalized location.
// Tags with a zero delta are omitted.
func (m *MVAR) Deltas(coords []float64) map[string]float64 {
	res := make(map[string]float64)
	for tag, idx := range m.Records {
		d := m.Store.Delta(idx, coords)
		if d != 0 {
			res[tag] = d
		}
	}
	return res
}
