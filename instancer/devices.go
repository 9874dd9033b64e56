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


package instancer

import (
	"github.com/sirupsen/logrus"
	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/anchor"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/device"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gtab"
	"github.com/chiron-fonts/sub-fonts/sfnt/variation"
)

// resolveDevices folds the variation deltas of GPOS value records and
// anchors, and of GDEF caret values, into the static values.  The GDEF
// variation store is removed afterwards.
func resolveDevices(f *sfnt.Font, coords []float64, log logrus.FieldLogger) {
	var store *variation.ItemVariationStore
	if f.GDEF != nil {
		store = f.GDEF.VarStore
	}

	apply := func(v funit.Int16, dev **device.VariationIndex) funit.Int16 {
		if *dev == nil {
			return v
		}
		delta := store.Delta(**dev, coords)
		*dev = nil
		return v + funit.Int16(round(delta))
	}

	if f.GPOS != nil {
		count := 0
		f.GPOS.LookupList.VisitPositions(
			func(vr *gtab.ValueRecord, _ gtab.ValueFormat) {
				if !vr.HasDevices() {
					return
				}
				vr.XPlacement = apply(vr.XPlacement, &vr.XPlacementDevice)
				vr.YPlacement = apply(vr.YPlacement, &vr.YPlacementDevice)
				vr.XAdvance = apply(vr.XAdvance, &vr.XAdvanceDevice)
				vr.YAdvance = apply(vr.YAdvance, &vr.YAdvanceDevice)
				count++
			},
			func(a *anchor.Table) {
				if a.XDevice == nil && a.YDevice == nil {
					return
				}
				a.X = apply(a.X, &a.XDevice)
				a.Y = apply(a.Y, &a.YDevice)
				count++
			})
		f.GPOS.LookupList.StripDeviceFormats()
		if count > 0 {
			log.WithFields(logrus.Fields{"table": "GPOS", "records": count}).Debug("resolved device tables")
		}
	}

	if f.GDEF == nil {
		return
	}
	for _, carets := range f.GDEF.LigCarets {
		for _, c := range carets {
			if c.Device == nil {
				continue
			}
			c.Coordinate = int16(apply(funit.Int16(c.Coordinate), &c.Device))
		}
	}
	if f.GDEF.VarStore != nil {
		f.GDEF.VarStore = nil
		log.WithField("table", "GDEF").Debug("removed variation store")
	}
}
