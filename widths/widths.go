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


// Package widths widens the advance widths of full-width glyphs.
package widths

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// MinWidth is the smallest advance width which is expanded.
const MinWidth = 1000

// Options control the width adjustment.
type Options struct {
	// Fraction is the relative amount by which advance widths grow.
	Fraction float64

	// SkipPrefix excludes glyphs whose name starts with this prefix, for
	// example glyphs added by a merge.  An empty prefix excludes nothing.
	SkipPrefix string

	Log logrus.FieldLogger
}

// Expand widens every glyph with an advance width of at least MinWidth.
// The extra space is split evenly between both sides of the glyph, but
// only the metrics are changed: the outlines keep their coordinates and
// the left side bearing grows by half of the extra space on one side.
// The number of changed glyphs is returned.
func Expand(f *sfnt.Font, opts *Options) (int, error) {
	log := logging.OrDiscard(opts.Log)
	if opts.Fraction < 0 || math.IsNaN(opts.Fraction) {
		return 0, &fonterror.ConfigurationError{
			SubSystem: "widths",
			Reason:    fmt.Sprintf("invalid width fraction %g", opts.Fraction),
		}
	}

	count := 0
	for i, w := range f.Metrics.Width {
		if w < MinWidth {
			continue
		}
		if opts.SkipPrefix != "" && strings.HasPrefix(f.GlyphNames[i], opts.SkipPrefix) {
			continue
		}
		expand := int(math.Floor(float64(w) * opts.Fraction / 2))
		if expand == 0 {
			continue
		}
		newWidth := int(w) + 2*expand
		if newWidth > 0xFFFF {
			return count, &fonterror.ConfigurationError{
				SubSystem: "widths",
				Reason:    fmt.Sprintf("glyph %q: advance width %d too large", f.GlyphNames[i], newWidth),
			}
		}
		f.Metrics.Width[i] = uint16(newWidth)
		f.Metrics.LSB[i] += int16(expand / 2)
		count++
	}
	log.WithFields(logrus.Fields{
		"glyphs":   count,
		"fraction": opts.Fraction,
	}).Info("expanded advance widths")
	return count, nil
}
