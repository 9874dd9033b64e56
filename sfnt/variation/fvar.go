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


// Package variation reads the tables of OpenType variable fonts: "fvar",
// "avar", "gvar" and "MVAR", together with the item variation stores used
// by "GDEF" and "MVAR".
//
// Coordinates in design space are called user coordinates.  The
// instancing code maps them to normalized coordinates in the range [-1, 1],
// with 0 at the default location of every axis.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/otvaroverview
package variation

import (
	"fmt"
	"math"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/parser"
)

// Axis describes one design axis of a variable font.
type Axis struct {
	Tag     string
	Min     float64
	Default float64
	Max     float64
	Flags   uint16
	NameID  uint16
}

// Hidden reports whether the axis should be hidden from user interfaces.
func (a *Axis) Hidden() bool {
	return a.Flags&0x0001 != 0
}

// Normalize maps a user coordinate to the range [-1, 1].  Values outside
// the axis range are clamped.
func (a *Axis) Normalize(v float64) float64 {
	v = math.Max(a.Min, math.Min(a.Max, v))
	var res float64
	switch {
	case v < a.Default && a.Default > a.Min:
		res = (v - a.Default) / (a.Default - a.Min)
	case v > a.Default && a.Max > a.Default:
		res = (v - a.Default) / (a.Max - a.Default)
	}
	return quantize(res)
}

// Instance is a named instance from the "fvar" table.
type Instance struct {
	SubfamilyNameID  uint16
	PostScriptNameID uint16 // 0xFFFF if absent
	Coords           []float64
}

// Fvar is a decoded "fvar" table.
type Fvar struct {
	Axes      []*Axis
	Instances []*Instance
}

// ReadFvar decodes an "fvar" table.
func ReadFvar(data []byte) (*Fvar, error) {
	p := parser.New("fvar", data)
	buf, err := p.ReadUint16s(8)
	if err != nil {
		return nil, err
	}
	if buf[0] != 1 {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt/variation",
			Feature:   fmt.Sprintf("fvar version %d.%d", buf[0], buf[1]),
		}
	}
	axesOffset := int64(buf[2])
	axisCount := int(buf[4])
	axisSize := int(buf[5])
	instanceCount := int(buf[6])
	instanceSize := int(buf[7])
	if axisSize < 20 {
		return nil, p.Error("invalid axis record size %d", axisSize)
	}
	if instanceCount > 0 && instanceSize < 4+4*axisCount {
		return nil, p.Error("invalid instance record size %d", instanceSize)
	}

	res := &Fvar{}
	for i := 0; i < axisCount; i++ {
		err := p.SeekPos(axesOffset + int64(i*axisSize))
		if err != nil {
			return nil, err
		}
		tag, err := p.ReadTag()
		if err != nil {
			return nil, err
		}
		var vals [3]float64
		for j := range vals {
			vals[j], err = p.ReadFixed()
			if err != nil {
				return nil, err
			}
		}
		flags, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		nameID, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if vals[0] > vals[1] || vals[1] > vals[2] {
			return nil, p.Error("axis %q: invalid range %g/%g/%g", tag, vals[0], vals[1], vals[2])
		}
		res.Axes = append(res.Axes, &Axis{
			Tag:     tag,
			Min:     vals[0],
			Default: vals[1],
			Max:     vals[2],
			Flags:   flags,
			NameID:  nameID,
		})
	}

	instancesOffset := axesOffset + int64(axisCount*axisSize)
	for i := 0; i < instanceCount; i++ {
		err := p.SeekPos(instancesOffset + int64(i*instanceSize))
		if err != nil {
			return nil, err
		}
		subfamily, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		err = p.Discard(2)
		if err != nil {
			return nil, err
		}
		inst := &Instance{
			SubfamilyNameID:  subfamily,
			PostScriptNameID: 0xFFFF,
			Coords:           make([]float64, axisCount),
		}
		for j := range inst.Coords {
			inst.Coords[j], err = p.ReadFixed()
			if err != nil {
				return nil, err
			}
		}
		if instanceSize >= 6+4*axisCount {
			inst.PostScriptNameID, err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}
		res.Instances = append(res.Instances, inst)
	}
	return res, nil
}

// AxisIndex returns the index of the axis with the given tag, or -1.
func (f *Fvar) AxisIndex(tag string) int {
	for i, a := range f.Axes {
		if a.Tag == tag {
			return i
		}
	}
	return -1
}

// Normalize maps user coordinates, one per axis, to normalized
// coordinates.
func (f *Fvar) Normalize(user []float64) []float64 {
	res := make([]float64, len(f.Axes))
	for i, a := range f.Axes {
		res[i] = a.Normalize(user[i])
	}
	return res
}

// quantize rounds a normalized coordinate to the nearest F2Dot14 value.
func quantize(x float64) float64 {
	return math.Floor(x*16384+0.5) / 16384
}
