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

// Package merge grafts the glyphs of a donor font into a primary font.
//
// Donor glyphs are appended to the primary glyph order under a name
// prefix.  Their outlines, advance widths, positioning rules and GDEF
// classes are copied, and the character map of the primary font is
// redirected to the donor glyphs, except for code points whose primary
// glyph is full-width.
package merge

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/cmapedit"
	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
)

// DefaultPrefix is the glyph name prefix used when Options.Prefix is empty.
const DefaultPrefix = "inter_"

// Options control a merge.
type Options struct {
	// Prefix is prepended to the donor glyph names.
	Prefix string

	// Punctuation selects which full-width punctuation glyphs of the
	// primary font are redrawn with donor outlines (PunctuationNone,
	// PunctuationBasic or PunctuationFull).
	Punctuation int

	Log logrus.FieldLogger
}

// NameMap maps the glyphs of the donor font to the glyphs of the merged
// font.
type NameMap struct {
	Prefix string
	Names  map[string]string // donor glyph name -> merged glyph name
	Base   glyph.ID          // glyph ID of the first donor glyph
}

// NewNameMap prefixes the donor glyph names.  The new names must not
// occur in the primary font.
func NewNameMap(primary, donor *sfnt.Font, prefix string) (*NameMap, error) {
	total := primary.NumGlyphs() + donor.NumGlyphs()
	if total > 0xFFFF {
		return nil, &fonterror.FormatError{
			SubSystem: "merge",
			Reason:    fmt.Sprintf("%d glyphs after merge", total),
		}
	}
	existing := primary.GlyphIndex()
	m := &NameMap{
		Prefix: prefix,
		Names:  make(map[string]string, donor.NumGlyphs()),
		Base:   glyph.ID(primary.NumGlyphs()),
	}
	for _, name := range donor.GlyphNames {
		newName := prefix + name
		if _, clash := existing[newName]; clash {
			return nil, &fonterror.FormatError{
				SubSystem: "merge",
				Glyph:     newName,
				Reason:    "glyph name already used in the primary font",
			}
		}
		m.Names[name] = newName
	}
	return m, nil
}

// GID returns the glyph ID of a donor glyph in the merged font.
func (m *NameMap) GID(donorGID glyph.ID) glyph.ID {
	return m.Base + donorGID
}

// Merge copies all glyphs of donor into primary.  The donor must be a
// static font with simple glyphs only.  The donor font is not modified.
//
// Merging the same prefix a second time has no effect.
func Merge(primary, donor *sfnt.Font, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	log := logging.OrDiscard(opts.Log).WithField("prefix", prefix)

	if opts.Punctuation < PunctuationNone || opts.Punctuation > PunctuationFull {
		return &fonterror.ConfigurationError{
			SubSystem: "merge",
			Reason:    fmt.Sprintf("invalid punctuation tier %d", opts.Punctuation),
		}
	}
	if primary.MergedNamespaces[prefix] {
		log.Warn("prefix already merged, skipping")
		return nil
	}
	if donor.IsVariable() {
		return &fonterror.ConfigurationError{
			SubSystem: "merge",
			Reason:    "donor must be a static font",
		}
	}
	for gid := range donor.Glyphs {
		if donor.Glyphs.IsComposite(gid) {
			return &fonterror.UnsupportedFormatError{
				SubSystem: "merge",
				Feature:   fmt.Sprintf("composite donor glyph %q", donor.GlyphNames[gid]),
			}
		}
	}

	if err := checkPunctuation(donor, opts.Punctuation); err != nil {
		return err
	}
	donorMap, err := donor.Unicode()
	if err != nil {
		return fmt.Errorf("donor cmap: %w", err)
	}
	if _, err := primary.Unicode(); err != nil {
		return err
	}

	names, err := NewNameMap(primary, donor, prefix)
	if err != nil {
		return err
	}
	r := newRemapper(primary, names.Base)
	gpos, err := remapGPOS(primary, donor, r, log)
	if err != nil {
		return err
	}

	// The primary font is only modified after this point.

	for gid, g := range donor.Glyphs {
		var out *glyf.Glyph
		if g != nil {
			simple := g.Data.(glyf.SimpleGlyph)
			out = &glyf.Glyph{Rect16: g.Rect16, Data: simple.Clone()}
		}
		primary.AppendGlyph(names.Names[donor.GlyphNames[gid]], out,
			donor.Metrics.Width[gid], donor.Metrics.LSB[gid])
	}
	log.WithField("glyphs", donor.NumGlyphs()).Info("copied donor glyphs")

	mergeGDEF(primary, donor, r, log)
	mergeGPOS(primary, gpos, log)

	_, err = replacePunctuation(primary, donor, opts.Punctuation, log)
	if err != nil {
		return err
	}

	mapping := make(map[rune]glyph.ID, len(donorMap))
	for code, gid := range donorMap {
		mapping[code] = names.GID(gid)
	}
	_, err = cmapedit.Redirect(primary, mapping, cmapedit.ProtectFullWidth(primary), log)
	if err != nil {
		return err
	}

	if primary.MergedNamespaces == nil {
		primary.MergedNamespaces = make(map[string]bool)
	}
	primary.MergedNamespaces[prefix] = true
	return nil
}
