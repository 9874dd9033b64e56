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
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/coverage"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gtab"
)

// TestRemapShared checks that structures which are reachable along
// several paths are rewritten only once.
func TestRemapShared(t *testing.T) {
	pair := &gtab.PairValueRecord{
		SecondGlyph: 2,
		First:       &gtab.ValueRecord{XAdvance: -20},
		Second:      &gtab.ValueRecord{},
	}
	kern := &gtab.Gpos2_1{
		Cov:      coverage.FromGlyphs([]glyph.ID{1, 3}),
		Format1:  gtab.ValueXAdvance,
		PairSets: [][]*gtab.PairValueRecord{{pair}, {pair}},
	}
	rule := &gtab.SeqRule{
		Input:   []glyph.ID{2},
		Actions: gtab.SeqLookups{{SequenceIndex: 1, LookupListIndex: 0}},
	}
	ctx := &gtab.SeqContext1{
		Cov:   coverage.FromGlyphs([]glyph.ID{1}),
		Rules: [][]*gtab.SeqRule{{rule, rule}},
	}
	shared := &gtab.Lookup{Type: gtab.GposPair, Subtables: []gtab.Subtable{kern}}
	lookups := gtab.LookupList{
		shared,
		{Type: gtab.GposPair, Subtables: []gtab.Subtable{kern}},
		shared,
		{Type: gtab.GposContext, Subtables: []gtab.Subtable{ctx, ctx}},
	}

	r := &remapper{glyphs: 10, lookups: 4, visited: make(map[any]bool)}
	for _, l := range lookups {
		err := r.lookup(l)
		if err != nil {
			t.Fatal(err)
		}
	}

	if d := cmp.Diff(coverage.FromGlyphs([]glyph.ID{11, 13}), kern.Cov); d != "" {
		t.Errorf("pair coverage (-want +got):\n%s", d)
	}
	if pair.SecondGlyph != 12 {
		t.Errorf("second glyph %d, expected 12", pair.SecondGlyph)
	}
	if d := cmp.Diff(coverage.FromGlyphs([]glyph.ID{11}), ctx.Cov); d != "" {
		t.Errorf("context coverage (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]glyph.ID{12}, rule.Input); d != "" {
		t.Errorf("rule input (-want +got):\n%s", d)
	}
	if n := rule.Actions[0].LookupListIndex; n != 4 {
		t.Errorf("nested lookup %d, expected 4", n)
	}
}

func TestRemapMarkFilteringSet(t *testing.T) {
	l := &gtab.Lookup{
		Type:             gtab.GposSingle,
		Flags:            gtab.LookupUseMarkFilteringSet | gtab.LookupFlags(3<<8),
		MarkFilteringSet: 1,
		Subtables: []gtab.Subtable{&gtab.Gpos1_1{
			Cov:    coverage.FromGlyphs([]glyph.ID{0}),
			Format: gtab.ValueXAdvance,
			Adjust: &gtab.ValueRecord{XAdvance: 1},
		}},
	}
	r := &remapper{glyphs: 1, markSets: 2, markAttach: 4, visited: make(map[any]bool)}
	if err := r.lookup(l); err != nil {
		t.Fatal(err)
	}
	if err := r.lookup(l); err != nil {
		t.Fatal(err)
	}
	if l.MarkFilteringSet != 3 {
		t.Errorf("mark filtering set %d, expected 3", l.MarkFilteringSet)
	}
	if cls := l.Flags & gtab.LookupMarkAttachTypeMask >> 8; cls != 7 {
		t.Errorf("mark attachment class %d, expected 7", cls)
	}
}
