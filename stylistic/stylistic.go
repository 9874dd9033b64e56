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


// Package stylistic bakes stylistic sets into the default glyphs and
// removes unwanted layout features.
package stylistic

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gtab"
)

// Apply replaces every glyph which is substituted by the stylistic set
// tag with its substitute: the outline, advance width and left side
// bearing of the substitute are copied onto the original glyph.  Only
// single substitution lookups are used.  The number of changed glyphs is
// returned.
//
// If the font has no GSUB table, or the tag is not used, the font is left
// unchanged.
func Apply(f *sfnt.Font, tag string, log logrus.FieldLogger) (int, error) {
	log = logging.OrDiscard(log).WithField("feature", tag)
	if !gtab.IsStylisticSet(tag) {
		return 0, &fonterror.ConfigurationError{
			SubSystem: "stylistic",
			Reason:    fmt.Sprintf("invalid stylistic set %q", tag),
		}
	}
	if f.GSUB == nil {
		log.Warn("font has no GSUB table")
		return 0, nil
	}
	lookups := f.GSUB.LookupsForFeatures(tag)
	if len(lookups) == 0 {
		log.Warn("stylistic set not found")
		return 0, nil
	}

	subst := make(map[glyph.ID]glyph.ID)
	for _, idx := range lookups {
		m, err := f.GSUB.Lookups.SingleSubstitutions(idx)
		if fonterror.IsUnsupported(err) {
			log.WithField("lookup", idx).Debug("skipping non-single substitution lookup")
			continue
		} else if err != nil {
			return 0, err
		}
		for from, to := range m {
			if _, seen := subst[from]; !seen {
				subst[from] = to
			}
		}
	}

	// copy from a snapshot, so that chains of substitutions use the
	// original substitute glyphs
	glyphs := slices.Clone(f.Glyphs)
	width := slices.Clone(f.Metrics.Width)
	lsb := slices.Clone(f.Metrics.LSB)

	sources := make([]glyph.ID, 0, len(subst))
	for from := range subst {
		sources = append(sources, from)
	}
	slices.Sort(sources)

	count := 0
	for _, from := range sources {
		to := subst[from]
		if int(from) >= len(glyphs) || int(to) >= len(glyphs) {
			return count, &fonterror.FormatError{
				SubSystem: "stylistic",
				Table:     "GSUB",
				Reason:    fmt.Sprintf("substitution %d -> %d outside glyph range", from, to),
			}
		}
		if from == to {
			continue
		}
		f.Glyphs[from] = cloneGlyph(glyphs[to])
		f.Metrics.Width[from] = width[to]
		f.Metrics.LSB[from] = lsb[to]
		count++
		log.WithFields(logrus.Fields{
			"glyph":      f.GlyphNames[from],
			"substitute": f.GlyphNames[to],
		}).Debug("applied stylistic alternate")
	}
	log.WithField("glyphs", count).Info("applied stylistic set")
	return count, nil
}

func cloneGlyph(g *glyf.Glyph) *glyf.Glyph {
	if g == nil {
		return nil
	}
	res := &glyf.Glyph{Rect16: g.Rect16}
	switch data := g.Data.(type) {
	case glyf.SimpleGlyph:
		res.Data = data.Clone()
	case glyf.CompositeGlyph:
		res.Data = glyf.CompositeGlyph{
			Components:   slices.Clone(data.Components),
			Instructions: slices.Clone(data.Instructions),
		}
	}
	return res
}

// PruneStylisticSets removes the features "ss01" to "ss20" from the GSUB
// and GPOS tables.  The number of removed features is returned.
func PruneStylisticSets(f *sfnt.Font, log logrus.FieldLogger) int {
	return prune(f, func(feat *gtab.Feature) bool {
		return gtab.IsStylisticSet(feat.Tag)
	}, logging.OrDiscard(log).WithField("feature", "ss01-ss20"))
}

// PruneFeature removes all features with the given tag from the GSUB and
// GPOS tables.  The number of removed features is returned.
func PruneFeature(f *sfnt.Font, tag string, log logrus.FieldLogger) int {
	return prune(f, func(feat *gtab.Feature) bool {
		return feat.Tag == tag
	}, logging.OrDiscard(log).WithField("feature", tag))
}

func prune(f *sfnt.Font, del func(*gtab.Feature) bool, log logrus.FieldLogger) int {
	total := 0
	if f.GSUB != nil {
		n := f.GSUB.DeleteFeatures(del)
		if n > 0 {
			log.WithFields(logrus.Fields{"table": "GSUB", "count": n}).Info("removed features")
		}
		total += n
	}
	if f.GPOS != nil {
		n := f.GPOS.DeleteFeatures(del)
		if n > 0 {
			log.WithFields(logrus.Fields{"table": "GPOS", "count": n}).Info("removed features")
		}
		total += n
	}
	return total
}
