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


// Package instancer creates static instances of variable TrueType fonts.
//
// The glyph outlines and metrics are moved to the requested location in
// the design space, feature variations and device tables are resolved,
// and the variation tables are removed from the font.
package instancer

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/os2"
)

// Options control the instancing of a variable font.
type Options struct {
	// Location maps axis tags to user space coordinates.  Axes which are
	// not listed are pinned at their default value.
	Location map[string]float64

	Log logrus.FieldLogger
}

// droppedTables lists the tables which only make sense in a variable font.
var droppedTables = []string{
	"fvar", "avar", "gvar", "cvar", "HVAR", "VVAR", "MVAR", "STAT",
}

// Instance converts f into a static font at the location given in opts.
//
// If f is not a variable font, the location is ignored with a warning and
// f is left unchanged.
func Instance(f *sfnt.Font, opts *Options) error {
	log := logging.OrDiscard(opts.Log)

	if !f.IsVariable() {
		if len(opts.Location) > 0 {
			err := &fonterror.ConfigurationError{
				SubSystem: "instancer",
				Reason:    "axis coordinates given for a static font",
			}
			log.WithError(err).Warn("ignoring axis coordinates")
		}
		return nil
	}

	user, coords, err := Location(f, opts.Location, log)
	if err != nil {
		return err
	}
	fields := logrus.Fields{}
	for i, a := range f.Fvar.Axes {
		fields[a.Tag] = user[i]
	}
	log.WithFields(fields).Info("instancing font")

	err = instanceGlyphs(f, coords, log)
	if err != nil {
		return err
	}

	if f.GSUB != nil && len(f.GSUB.FeatureVariations) > 0 {
		n := f.GSUB.ApplyFeatureVariations(coords)
		log.WithFields(logrus.Fields{"table": "GSUB", "features": n}).Debug("applied feature variations")
	}
	if f.GPOS != nil && len(f.GPOS.FeatureVariations) > 0 {
		n := f.GPOS.ApplyFeatureVariations(coords)
		log.WithFields(logrus.Fields{"table": "GPOS", "features": n}).Debug("applied feature variations")
	}
	resolveDevices(f, coords, log)

	applyMVAR(f, coords, log)
	setClasses(f, user)

	for _, tag := range droppedTables {
		present := f.HasTable(tag)
		f.DeleteTable(tag)
		if present {
			log.WithField("table", tag).Debug("removed table")
		}
	}
	return nil
}

// Location returns the user space coordinates and the normalized
// coordinates for the given axis values, one entry per axis of f.
func Location(f *sfnt.Font, location map[string]float64, log logrus.FieldLogger) (user, normalized []float64, err error) {
	log = logging.OrDiscard(log)
	if len(location) == 0 {
		return nil, nil, &fonterror.ConfigurationError{
			SubSystem: "instancer",
			Reason:    "variable font requires axis coordinates",
		}
	}

	var unknown []string
	for tag := range location {
		if f.Fvar.AxisIndex(tag) < 0 {
			unknown = append(unknown, tag)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, nil, &fonterror.ConfigurationError{
			SubSystem: "instancer",
			Reason:    fmt.Sprintf("unknown axis %s", strings.Join(unknown, ", ")),
		}
	}

	user = make([]float64, len(f.Fvar.Axes))
	for i, a := range f.Fvar.Axes {
		v, ok := location[a.Tag]
		if !ok {
			log.WithFields(logrus.Fields{
				"axis":    a.Tag,
				"default": a.Default,
			}).Warn("axis not specified, using default")
			v = a.Default
		}
		user[i] = math.Max(a.Min, math.Min(a.Max, v))
	}

	normalized = f.Fvar.Normalize(user)
	f.Avar.Map(normalized)
	return user, normalized, nil
}

// setClasses updates the OS/2 weight and width classes from the "wght"
// and "wdth" axes.
func setClasses(f *sfnt.Font, user []float64) {
	if f.OS2 == nil {
		return
	}
	if i := f.Fvar.AxisIndex("wght"); i >= 0 {
		w := math.Floor(user[i] + 0.5)
		f.OS2.WeightClass = uint16(math.Max(1, math.Min(1000, w)))
	}
	if i := f.Fvar.AxisIndex("wdth"); i >= 0 {
		f.OS2.WidthClass = os2.WidthClassFor(user[i])
	}
}

// round rounds half-way cases towards positive infinity.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
