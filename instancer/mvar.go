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
)

// applyMVAR adds the "MVAR" deltas to the font-wide metrics.
func applyMVAR(f *sfnt.Font, coords []float64, log logrus.FieldLogger) {
	if f.MVAR == nil {
		return
	}
	for tag, delta := range f.MVAR.Deltas(coords) {
		d := int(round(delta))
		if d == 0 {
			continue
		}
		if !applyMetricDelta(f, tag, d) {
			log.WithField("tag", tag).Debug("ignoring MVAR record")
			continue
		}
		log.WithFields(logrus.Fields{"tag": tag, "delta": d}).Debug("applied MVAR delta")
	}
}

// applyMetricDelta adds d to the metric identified by an MVAR value tag.
// The return value is false for unknown tags and for tags which refer to
// absent tables.
func applyMetricDelta(f *sfnt.Font, tag string, d int) bool {
	hhea := f.Metrics
	switch tag {
	case "hcrs":
		hhea.CaretSlopeRise += int16(d)
		return true
	case "hcrn":
		hhea.CaretSlopeRun += int16(d)
		return true
	case "hcof":
		hhea.CaretOffset += int16(d)
		return true
	case "unds":
		f.Post.UnderlineThickness += funit.Int16(d)
		return true
	case "undo":
		f.Post.UnderlinePosition += funit.Int16(d)
		return true
	}

	o := f.OS2
	if o == nil {
		return false
	}
	switch tag {
	case "hasc":
		o.TypoAscender += funit.Int16(d)
	case "hdsc":
		o.TypoDescender += funit.Int16(d)
	case "hlgp":
		o.TypoLineGap += funit.Int16(d)
	case "hcla":
		o.WinAscent = uint16(int(o.WinAscent) + d)
	case "hcld":
		o.WinDescent = uint16(int(o.WinDescent) + d)
	case "xhgt":
		o.XHeight += funit.Int16(d)
	case "cpht":
		o.CapHeight += funit.Int16(d)
	case "sbxs":
		o.SubscriptXSize += int16(d)
	case "sbys":
		o.SubscriptYSize += int16(d)
	case "sbxo":
		o.SubscriptXOffset += int16(d)
	case "sbyo":
		o.SubscriptYOffset += int16(d)
	case "spxs":
		o.SuperscriptXSize += int16(d)
	case "spys":
		o.SuperscriptYSize += int16(d)
	case "spxo":
		o.SuperscriptXOffset += int16(d)
	case "spyo":
		o.SuperscriptYOffset += int16(d)
	case "strs":
		o.StrikeoutSize += int16(d)
	case "stro":
		o.StrikeoutPosition += int16(d)
	default:
		return false
	}
	return true
}
