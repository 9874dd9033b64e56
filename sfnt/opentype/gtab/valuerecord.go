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
	"math/bits"
	"strings"

	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// ValueFormat describes which fields are present in the binary
// representation of a ValueRecord.
type ValueFormat uint16

// Bit values for ValueFormat.
const (
	ValueXPlacement       ValueFormat = 0x0001
	ValueYPlacement       ValueFormat = 0x0002
	ValueXAdvance         ValueFormat = 0x0004
	ValueYAdvance         ValueFormat = 0x0008
	ValueXPlacementDevice ValueFormat = 0x0010
	ValueYPlacementDevice ValueFormat = 0x0020
	ValueXAdvanceDevice   ValueFormat = 0x0040
	ValueYAdvanceDevice   ValueFormat = 0x0080

	valueDeviceMask ValueFormat = 0x00F0
)

func (f ValueFormat) size() int {
	return 2 * bits.OnesCount16(uint16(f&0x00FF))
}

// ValueRecord describes an adjustment to the position of a glyph or set of
// glyphs.  Which fields are meaningful is determined by the ValueFormat of
// the enclosing subtable.
// https://docs.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueRecord struct {
	XPlacement funit.Int16
	YPlacement funit.Int16
	XAdvance   funit.Int16
	YAdvance   funit.Int16

	XPlacementDevice *device.VariationIndex
	YPlacementDevice *device.VariationIndex
	XAdvanceDevice   *device.VariationIndex
	YAdvanceDevice   *device.VariationIndex
}

// readValueRecord reads the binary representation of a ValueRecord.  Device
// offsets are interpreted relative to base.  On return, the parser is
// positioned after the record.
func readValueRecord(p *parser.Parser, base int64, format ValueFormat) (*ValueRecord, error) {
	raw, err := p.ReadUint16s(bits.OnesCount16(uint16(format & 0x00FF)))
	if err != nil {
		return nil, err
	}
	next := func() uint16 {
		v := raw[0]
		raw = raw[1:]
		return v
	}

	res := &ValueRecord{}
	if format&ValueXPlacement != 0 {
		res.XPlacement = funit.Int16(next())
	}
	if format&ValueYPlacement != 0 {
		res.YPlacement = funit.Int16(next())
	}
	if format&ValueXAdvance != 0 {
		res.XAdvance = funit.Int16(next())
	}
	if format&ValueYAdvance != 0 {
		res.YAdvance = funit.Int16(next())
	}
	if format&valueDeviceMask == 0 {
		return res, nil
	}

	var devOffs [4]uint16
	for i, bit := range []ValueFormat{ValueXPlacementDevice, ValueYPlacementDevice, ValueXAdvanceDevice, ValueYAdvanceDevice} {
		if format&bit != 0 {
			devOffs[i] = next()
		}
	}
	end := p.Pos()
	devices := [4]**device.VariationIndex{
		&res.XPlacementDevice, &res.YPlacementDevice,
		&res.XAdvanceDevice, &res.YAdvanceDevice,
	}
	for i, offs := range devOffs {
		if offs == 0 {
			continue
		}
		*devices[i], err = device.Read(p, base+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	return res, p.SeekPos(end)
}

// write appends the fields selected by format to w.  Device tables are
// queued as children with offsets relative to base.
func (vr *ValueRecord) write(w *writer, base int, format ValueFormat) {
	if vr == nil {
		vr = &ValueRecord{}
	}
	if format&ValueXPlacement != 0 {
		w.int16(int16(vr.XPlacement))
	}
	if format&ValueYPlacement != 0 {
		w.int16(int16(vr.YPlacement))
	}
	if format&ValueXAdvance != 0 {
		w.int16(int16(vr.XAdvance))
	}
	if format&ValueYAdvance != 0 {
		w.int16(int16(vr.YAdvance))
	}
	for _, d := range []struct {
		bit ValueFormat
		dev *device.VariationIndex
	}{
		{ValueXPlacementDevice, vr.XPlacementDevice},
		{ValueYPlacementDevice, vr.YPlacementDevice},
		{ValueXAdvanceDevice, vr.XAdvanceDevice},
		{ValueYAdvanceDevice, vr.YAdvanceDevice},
	} {
		if format&d.bit == 0 {
			continue
		}
		var data []byte
		if d.dev != nil {
			data = d.dev.Append(nil)
		}
		w.offsetTo(base, data)
	}
}

// HasDevices returns true if any of the device fields is set.
func (vr *ValueRecord) HasDevices() bool {
	return vr != nil && (vr.XPlacementDevice != nil || vr.YPlacementDevice != nil ||
		vr.XAdvanceDevice != nil || vr.YAdvanceDevice != nil)
}

func (vr *ValueRecord) String() string {
	if vr == nil {
		return "<nil>"
	}

	var adjust []string
	if vr.XPlacement != 0 {
		adjust = append(adjust, fmt.Sprintf("xpos%+d", vr.XPlacement))
	}
	if vr.YPlacement != 0 {
		adjust = append(adjust, fmt.Sprintf("ypos%+d", vr.YPlacement))
	}
	if vr.XAdvance != 0 {
		adjust = append(adjust, fmt.Sprintf("xadv%+d", vr.XAdvance))
	}
	if vr.YAdvance != 0 {
		adjust = append(adjust, fmt.Sprintf("yadv%+d", vr.YAdvance))
	}
	if vr.HasDevices() {
		adjust = append(adjust, "var")
	}
	if len(adjust) == 0 {
		return "_"
	}
	return strings.Join(adjust, ",")
}
