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
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/markarray"
)

// VisitPositions calls valueFn for every value record and anchorFn for every
// anchor table in the positioning subtables of types 1 to 6.  Contextual
// subtables are skipped.  Either function may be nil.  Records and anchors
// which are absent in the font are not visited.
func (ll LookupList) VisitPositions(valueFn func(vr *ValueRecord, format ValueFormat), anchorFn func(a *anchor.Table)) {
	vr := func(r *ValueRecord, format ValueFormat) {
		if r != nil && valueFn != nil {
			valueFn(r, format)
		}
	}
	anc := func(a *anchor.Table) {
		if a != nil && anchorFn != nil {
			anchorFn(a)
		}
	}
	marks := func(mm markarray.Table) {
		for _, rec := range mm {
			anc(rec.Anchor)
		}
	}
	matrix := func(rows [][]*anchor.Table) {
		for _, row := range rows {
			for _, a := range row {
				anc(a)
			}
		}
	}

	for _, l := range ll {
		for _, sub := range l.Subtables {
			switch s := sub.(type) {
			case *Gpos1_1:
				vr(s.Adjust, s.Format)
			case *Gpos1_2:
				for _, r := range s.Adjust {
					vr(r, s.Format)
				}
			case *Gpos2_1:
				for _, set := range s.PairSets {
					for _, rec := range set {
						vr(rec.First, s.Format1)
						vr(rec.Second, s.Format2)
					}
				}
			case *Gpos2_2:
				for _, row := range s.Records {
					for _, rec := range row {
						if rec == nil {
							continue
						}
						vr(rec.First, s.Format1)
						vr(rec.Second, s.Format2)
					}
				}
			case *Gpos3_1:
				for _, rec := range s.Records {
					anc(rec.Entry)
					anc(rec.Exit)
				}
			case *Gpos4_1:
				marks(s.MarkArray)
				matrix(s.BaseArray)
			case *Gpos5_1:
				marks(s.MarkArray)
				for _, lig := range s.LigArray {
					matrix(lig)
				}
			case *Gpos6_1:
				marks(s.Mark1Array)
				matrix(s.Mark2Array)
			}
		}
	}
}

// StripDeviceFormats clears the device bits from the value formats of
// single and pair adjustment subtables where no value record refers to a
// device table.
func (ll LookupList) StripDeviceFormats() {
	for _, l := range ll {
		for _, sub := range l.Subtables {
			switch s := sub.(type) {
			case *Gpos1_1:
				if !s.Adjust.HasDevices() {
					s.Format &^= valueDeviceMask
				}
			case *Gpos1_2:
				if !anyDevices(s.Adjust) {
					s.Format &^= valueDeviceMask
				}
			case *Gpos2_1:
				var first, second []*ValueRecord
				for _, set := range s.PairSets {
					for _, rec := range set {
						first = append(first, rec.First)
						second = append(second, rec.Second)
					}
				}
				if !anyDevices(first) {
					s.Format1 &^= valueDeviceMask
				}
				if !anyDevices(second) {
					s.Format2 &^= valueDeviceMask
				}
			case *Gpos2_2:
				var first, second []*ValueRecord
				for _, row := range s.Records {
					for _, rec := range row {
						if rec != nil {
							first = append(first, rec.First)
							second = append(second, rec.Second)
						}
					}
				}
				if !anyDevices(first) {
					s.Format1 &^= valueDeviceMask
				}
				if !anyDevices(second) {
					s.Format2 &^= valueDeviceMask
				}
			}
		}
	}
}

func anyDevices(rr []*ValueRecord) bool {
	for _, r := range rr {
		if r.HasDevices() {
			return true
		}
	}
	return false
}
