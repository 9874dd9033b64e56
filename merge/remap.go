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

package merge

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/classdef"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gdef"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gtab"
)

// A remapper rewrites the references in a copy of the donor's layout
// tables so that they are valid in the merged font.
type remapper struct {
	glyphs     glyph.ID         // added to every glyph ID
	lookups    gtab.LookupIndex // added to every lookup index
	markSets   uint16           // added to mark filtering set indices
	markAttach uint16           // added to non-zero mark attachment classes

	visited map[any]bool
}

// first reports whether node is seen for the first time.  Nodes are
// identified by pointer, so that shared structures are rewritten once.
func (r *remapper) first(node any) bool {
	if r.visited[node] {
		return false
	}
	r.visited[node] = true
	return true
}

func (r *remapper) coverage(cov coverage.Table) coverage.Table {
	if cov == nil {
		return nil
	}
	res := make(coverage.Table, len(cov))
	for gid, idx := range cov {
		res[gid+r.glyphs] = idx
	}
	return res
}

func (r *remapper) classes(cd classdef.Table) classdef.Table {
	if cd == nil {
		return nil
	}
	res := make(classdef.Table, len(cd))
	for gid, cls := range cd {
		res[gid+r.glyphs] = cls
	}
	return res
}

func (r *remapper) coverages(cc []coverage.Table) {
	for i, cov := range cc {
		cc[i] = r.coverage(cov)
	}
}

func (r *remapper) gids(gg []glyph.ID) {
	for i := range gg {
		gg[i] += r.glyphs
	}
}

func (r *remapper) actions(aa gtab.SeqLookups) {
	for i := range aa {
		aa[i].LookupListIndex += r.lookups
	}
}

func (r *remapper) lookup(l *gtab.Lookup) error {
	if !r.first(l) {
		return nil
	}
	if l.Flags&gtab.LookupUseMarkFilteringSet != 0 {
		l.MarkFilteringSet += r.markSets
	}
	if cls := uint16(l.Flags&gtab.LookupMarkAttachTypeMask) >> 8; cls != 0 && r.markAttach != 0 {
		cls += r.markAttach
		if cls > 0xFF {
			return &fonterror.UnsupportedFormatError{
				SubSystem: "merge",
				Feature:   fmt.Sprintf("mark attachment class %d", cls),
			}
		}
		l.Flags = l.Flags&^gtab.LookupMarkAttachTypeMask | gtab.LookupFlags(cls<<8)
	}
	for _, sub := range l.Subtables {
		err := r.subtable(sub)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *remapper) subtable(sub gtab.Subtable) error {
	if !r.first(sub) {
		return nil
	}
	switch s := sub.(type) {
	case *gtab.Gpos1_1:
		s.Cov = r.coverage(s.Cov)
	case *gtab.Gpos1_2:
		s.Cov = r.coverage(s.Cov)
	case *gtab.Gpos2_1:
		s.Cov = r.coverage(s.Cov)
		for _, set := range s.PairSets {
			for _, rec := range set {
				if r.first(rec) {
					rec.SecondGlyph += r.glyphs
				}
			}
		}
	case *gtab.Gpos2_2:
		s.Cov = r.coverage(s.Cov)
		s.Class1 = r.classes(s.Class1)
		s.Class2 = r.classes(s.Class2)
	case *gtab.Gpos3_1:
		s.Cov = r.coverage(s.Cov)
	case *gtab.Gpos4_1:
		s.MarkCov = r.coverage(s.MarkCov)
		s.BaseCov = r.coverage(s.BaseCov)
	case *gtab.Gpos5_1:
		s.MarkCov = r.coverage(s.MarkCov)
		s.LigCov = r.coverage(s.LigCov)
	case *gtab.Gpos6_1:
		s.Mark1Cov = r.coverage(s.Mark1Cov)
		s.Mark2Cov = r.coverage(s.Mark2Cov)
	case *gtab.SeqContext1:
		s.Cov = r.coverage(s.Cov)
		for _, set := range s.Rules {
			for _, rule := range set {
				if r.first(rule) {
					r.gids(rule.Input)
					r.actions(rule.Actions)
				}
			}
		}
	case *gtab.SeqContext2:
		s.Cov = r.coverage(s.Cov)
		s.Input = r.classes(s.Input)
		for _, set := range s.Rules {
			for _, rule := range set {
				if r.first(rule) {
					r.actions(rule.Actions)
				}
			}
		}
	case *gtab.SeqContext3:
		r.coverages(s.Input)
		r.actions(s.Actions)
	case *gtab.ChainedSeqContext1:
		s.Cov = r.coverage(s.Cov)
		for _, set := range s.Rules {
			for _, rule := range set {
				if r.first(rule) {
					r.gids(rule.Backtrack)
					r.gids(rule.Input)
					r.gids(rule.Lookahead)
					r.actions(rule.Actions)
				}
			}
		}
	case *gtab.ChainedSeqContext2:
		s.Cov = r.coverage(s.Cov)
		s.Backtrack = r.classes(s.Backtrack)
		s.Input = r.classes(s.Input)
		s.Lookahead = r.classes(s.Lookahead)
		for _, set := range s.Rules {
			for _, rule := range set {
				if r.first(rule) {
					r.actions(rule.Actions)
				}
			}
		}
	case *gtab.ChainedSeqContext3:
		r.coverages(s.Backtrack)
		r.coverages(s.Input)
		r.coverages(s.Lookahead)
		r.actions(s.Actions)
	default:
		return &fonterror.UnsupportedFormatError{
			SubSystem: "merge",
			Feature:   fmt.Sprintf("GPOS subtable %T", sub),
		}
	}
	return nil
}

// copyGPOS returns an independent copy of a GPOS table.
func copyGPOS(t *gtab.GPOS) (*gtab.GPOS, error) {
	data, err := t.Encode()
	if err != nil {
		return nil, err
	}
	return gtab.ReadGPOS(data)
}

// newRemapper returns a remapper for merging donor glyphs which start at
// glyph ID base into primary.  The offsets are taken from the layout
// tables of primary before the merge.
func newRemapper(primary *sfnt.Font, base glyph.ID) *remapper {
	r := &remapper{
		glyphs:  base,
		visited: make(map[any]bool),
	}
	if primary.GPOS != nil {
		r.lookups = gtab.LookupIndex(len(primary.GPOS.LookupList))
	}
	if primary.GDEF != nil {
		r.markSets = uint16(len(primary.GDEF.MarkGlyphSets))
		for _, cls := range primary.GDEF.MarkAttachClass {
			r.markAttach = max(r.markAttach, cls)
		}
	}
	return r
}

// remapGPOS returns a copy of the donor GPOS table, with all references
// rewritten for the merged font.  The primary font is not modified.
// The result is nil if the donor has no GPOS table.
func remapGPOS(primary, donor *sfnt.Font, r *remapper, log logrus.FieldLogger) (*gtab.GPOS, error) {
	if donor.GPOS == nil {
		return nil, nil
	}
	src, err := copyGPOS(donor.GPOS)
	if err != nil {
		return nil, fmt.Errorf("donor GPOS: %w", err)
	}
	if len(src.FeatureVariations) > 0 {
		log.Warn("dropping feature variations of the donor GPOS table")
		src.FeatureVariations = nil
	}

	if int(r.lookups)+len(src.LookupList) > 0xFFFF {
		return nil, &fonterror.FormatError{
			SubSystem: "merge",
			Table:     "GPOS",
			Reason:    fmt.Sprintf("%d lookups after merge", int(r.lookups)+len(src.LookupList)),
		}
	}

	for _, l := range src.LookupList {
		err := r.lookup(l)
		if err != nil {
			return nil, err
		}
	}
	for _, feat := range src.FeatureList {
		for i := range feat.Lookups {
			feat.Lookups[i] += r.lookups
		}
	}
	var featureOffset gtab.FeatureIndex
	if primary.GPOS != nil {
		featureOffset = gtab.FeatureIndex(len(primary.GPOS.FeatureList))
	}
	for _, ff := range src.ScriptList {
		if ff.Required != gtab.NoRequiredFeature {
			ff.Required += featureOffset
		}
		for i := range ff.Optional {
			ff.Optional[i] += featureOffset
		}
	}
	return src, nil
}

// mergeGPOS adds the remapped donor table src to the primary font.
// Donor lookups are appended after the primary lookups, donor features
// after the primary features.  Language systems present in both fonts
// use the features of both.
func mergeGPOS(primary *sfnt.Font, src *gtab.GPOS, log logrus.FieldLogger) {
	if src == nil {
		log.Info("donor has no GPOS table")
		return
	}
	if primary.GPOS == nil {
		primary.GPOS = src
		log.WithField("lookups", len(src.LookupList)).Info("adopted donor GPOS table")
		return
	}

	dst := primary.GPOS
	dst.LookupList = append(dst.LookupList, src.LookupList...)
	dst.FeatureList = append(dst.FeatureList, src.FeatureList...)
	if dst.ScriptList == nil {
		dst.ScriptList = make(gtab.ScriptList)
	}
	for _, key := range src.ScriptList.Keys() {
		ff := src.ScriptList[key]
		old, ok := dst.ScriptList[key]
		if !ok {
			dst.ScriptList[key] = ff
			continue
		}
		switch {
		case ff.Required == gtab.NoRequiredFeature:
		case old.Required == gtab.NoRequiredFeature:
			old.Required = ff.Required
		default:
			old.Optional = append(old.Optional, ff.Required)
		}
		old.Optional = append(old.Optional, ff.Optional...)
	}
	log.WithFields(logrus.Fields{
		"lookups":  len(src.LookupList),
		"features": len(src.FeatureList),
	}).Info("merged donor GPOS table")
}

// mergeGDEF copies the glyph classes, mark attachment classes, mark glyph
// sets, attachment points and ligature carets of the donor glyphs, using
// the offsets of r.
func mergeGDEF(primary, donor *sfnt.Font, r *remapper, log logrus.FieldLogger) {
	src := donor.GDEF
	if src == nil {
		return
	}
	if primary.GDEF == nil {
		primary.GDEF = &gdef.Table{}
	}
	dst := primary.GDEF
	if src.VarStore != nil {
		log.Debug("ignoring variation store of the donor GDEF table")
	}

	for _, set := range src.MarkGlyphSets {
		dst.MarkGlyphSets = append(dst.MarkGlyphSets, r.coverage(set))
	}

	if len(src.MarkAttachClass) > 0 && dst.MarkAttachClass == nil {
		dst.MarkAttachClass = make(classdef.Table)
	}
	for gid, cls := range src.MarkAttachClass {
		if cls != 0 {
			dst.MarkAttachClass[gid+r.glyphs] = cls + r.markAttach
		}
	}

	if len(src.GlyphClass) > 0 && dst.GlyphClass == nil {
		dst.GlyphClass = make(classdef.Table)
	}
	for gid, cls := range src.GlyphClass {
		dst.GlyphClass[gid+r.glyphs] = cls
	}

	if len(src.AttachList) > 0 && dst.AttachList == nil {
		dst.AttachList = make(map[glyph.ID][]uint16)
	}
	for gid, points := range src.AttachList {
		dst.AttachList[gid+r.glyphs] = points
	}
	if len(src.LigCarets) > 0 && dst.LigCarets == nil {
		dst.LigCarets = make(map[glyph.ID][]*gdef.CaretValue)
	}
	for gid, carets := range src.LigCarets {
		dst.LigCarets[gid+r.glyphs] = carets
	}
	log.WithField("classes", len(src.GlyphClass)).Debug("merged GDEF glyph classes")
}
