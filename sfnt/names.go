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


package sfnt

import (
	"fmt"
	"strings"

	"seehuhn.de/go/postscript/type1/names"
	"seehuhn.de/go/sfnt/glyph"
)

// makeGlyphNames returns unique names for all glyphs.  Names are taken
// from the "post" table where available.  Missing names are derived from
// the cmap, or else of the form "glyphNNNNN".
func (f *Font) makeGlyphNames() ([]string, error) {
	numGlyphs := len(f.Glyphs)
	res := make([]string, numGlyphs)
	if f.Post != nil && len(f.Post.Names) == numGlyphs {
		copy(res, f.Post.Names)
	}

	var fromCmap map[glyph.ID]rune
	for i, name := range res {
		if name != "" {
			continue
		}
		if i == 0 {
			res[i] = ".notdef"
			continue
		}
		if fromCmap == nil {
			cmap, err := f.Unicode()
			if err != nil {
				return nil, err
			}
			fromCmap = make(map[glyph.ID]rune, len(cmap))
			for r, gid := range cmap {
				if old, seen := fromCmap[gid]; !seen || r < old {
					fromCmap[gid] = r
				}
			}
		}
		if r, ok := fromCmap[glyph.ID(i)]; ok {
			res[i] = names.FromUnicode(string(r))
		} else {
			res[i] = fmt.Sprintf("glyph%05d", i)
		}
	}

	return makeUnique(res), nil
}

// makeUnique appends "#n" suffixes to repeated names.
func makeUnique(nn []string) []string {
	used := make(map[string]bool, len(nn))
	for _, name := range nn {
		used[name] = true
	}
	seen := make(map[string]bool, len(nn))
	for i, name := range nn {
		if !seen[name] {
			seen[name] = true
			continue
		}
		base, _, _ := strings.Cut(name, "#")
		for k := 1; ; k++ {
			cand := fmt.Sprintf("%s#%d", base, k)
			if !used[cand] {
				nn[i] = cand
				used[cand] = true
				seen[cand] = true
				break
			}
		}
	}
	return nn
}
