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

package subfonts

import (
	"github.com/sirupsen/logrus"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/merge"
	"github.com/chiron-fonts/sub-fonts/rename"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/stylistic"
	"github.com/chiron-fonts/sub-fonts/widths"
)

// DefaultDropTables lists the tables which Build removes unless
// BuildOptions.DropTables is set.
var DefaultDropTables = []string{"STAT", "cv*", "GSUB"}

// BuildOptions control the Build pipeline.
type BuildOptions struct {
	// StylisticSet, if set, is a tag "ss01" to "ss20" whose alternates
	// replace the default glyphs.
	StylisticSet string

	// DropTables lists table tags to remove; a trailing "*" matches any
	// suffix.  If nil, DefaultDropTables is used.
	DropTables []string

	// Donor, if non-nil, is merged into the font.  The donor is not
	// modified.
	Donor *sfnt.Font

	// Prefix is the glyph name prefix for donor glyphs.  If empty,
	// merge.DefaultPrefix is used.
	Prefix string

	// Punctuation selects the punctuation tier of the merge.
	Punctuation int

	// WidthFraction is the relative amount by which full-width advance
	// widths grow.
	WidthFraction float64

	// Family and Version are the new font names.  Names are left
	// unchanged if Family is empty.
	Family  string
	Version string

	// LineGap, if non-zero, is the new line gap.
	LineGap int

	Log logrus.FieldLogger
}

// Build finishes a static font.
func Build(f *sfnt.Font, opts *BuildOptions) error {
	if opts == nil {
		opts = &BuildOptions{}
	}
	log := logging.OrDiscard(opts.Log)

	if f.IsVariable() || f.HasTable("gvar") || f.HasTable("cvar") {
		return &fonterror.ConfigurationError{
			SubSystem: "subfonts",
			Reason:    "input must be a static font",
		}
	}

	if opts.StylisticSet != "" {
		_, err := stylistic.Apply(f, opts.StylisticSet, log.WithField("stage", "stylistic"))
		if err != nil {
			return err
		}
	}
	stylistic.PruneStylisticSets(f, log.WithField("stage", "stylistic"))

	drop := opts.DropTables
	if drop == nil {
		drop = DefaultDropTables
	}
	rename.DropTables(f, drop, log.WithField("stage", "tables"))

	stylistic.PruneFeature(f, "locl", log.WithField("stage", "locl"))

	prefix := opts.Prefix
	if prefix == "" {
		prefix = merge.DefaultPrefix
	}
	if opts.Donor != nil {
		err := merge.Merge(f, opts.Donor, &merge.Options{
			Prefix:      prefix,
			Punctuation: opts.Punctuation,
			Log:         log.WithField("stage", "merge"),
		})
		if err != nil {
			return err
		}
	}

	_, err := widths.Expand(f, &widths.Options{
		Fraction:   opts.WidthFraction,
		SkipPrefix: prefix,
		Log:        log.WithField("stage", "widths"),
	})
	if err != nil {
		return err
	}

	if opts.Family != "" {
		err = rename.SetNames(f, opts.Family, opts.Version, log.WithField("stage", "rename"))
		if err != nil {
			return err
		}
	}
	if opts.LineGap != 0 {
		err = rename.SetLineGap(f, opts.LineGap, log.WithField("stage", "rename"))
		if err != nil {
			return err
		}
	}
	return nil
}
