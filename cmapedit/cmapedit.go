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

// Package cmapedit redirects character map entries to other glyphs.
package cmapedit

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/cmap"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// FullWidth is the advance width of the glyphs which Redirect leaves in
// place when ProtectFullWidth is used.
const FullWidth = 1000

// IsControl reports whether r is a C0 or C1 control character, or DEL.
// These code points are never redirected.
func IsControl(r rune) bool {
	return r < 0x20 || r >= 0x7F && r < 0xA0
}

// ProtectFullWidth returns a function which reports whether a glyph of f
// has an advance width of exactly FullWidth.
func ProtectFullWidth(f *sfnt.Font) func(glyph.ID) bool {
	return func(gid glyph.ID) bool {
		return int(gid) < len(f.Metrics.Width) && f.Metrics.Width[gid] == FullWidth
	}
}

// Redirect changes the character map of f so that every code point in
// mapping refers to the given glyph.  Control characters are skipped.
// Code points which are currently mapped to a glyph for which protect
// returns true keep their mapping; protect may be nil.
//
// All Unicode subtables of formats 4 and 12 are changed.  Format 4
// subtables only receive code points in the Basic Multilingual Plane.
// Subtables in other formats are left unchanged.  If the font has no
// character map, a new one with a format 4 subtable (and a format 12
// subtable, if needed) is created.
//
// The number of redirected code points is returned.
func Redirect(f *sfnt.Font, mapping map[rune]glyph.ID, protect func(glyph.ID) bool, log logrus.FieldLogger) (int, error) {
	log = logging.OrDiscard(log)

	current, err := f.Unicode()
	if err != nil {
		return 0, err
	}

	codes := make([]rune, 0, len(mapping))
	for r, gid := range mapping {
		if IsControl(r) {
			continue
		}
		if int(gid) >= f.NumGlyphs() {
			return 0, &fonterror.FormatError{
				SubSystem: "cmapedit",
				Table:     "cmap",
				Reason:    fmt.Sprintf("U+%04X mapped to glyph %d, font has %d glyphs", r, gid, f.NumGlyphs()),
			}
		}
		if old, ok := current[r]; ok && protect != nil && protect(old) {
			log.WithFields(logrus.Fields{
				"codepoint": fmt.Sprintf("U+%04X", r),
				"glyph":     f.GlyphNames[old],
			}).Debug("keeping protected mapping")
			continue
		}
		codes = append(codes, r)
	}
	slices.Sort(codes)

	if f.CMap == nil {
		log.Warn("font has no character map, creating one")
		f.CMap = make(cmap.Table)
		f.CMap[cmap.Key{PlatformID: 3, EncodingID: 1}], err = cmap.Format4{}.Encode(0)
		if err != nil {
			return 0, err
		}
		if len(codes) > 0 && codes[len(codes)-1] > 0xFFFF {
			f.CMap[cmap.Key{PlatformID: 3, EncodingID: 10}] = cmap.Format12{}.Encode(0)
		}
	}

	for key, data := range f.CMap {
		if !key.IsUnicode() {
			continue
		}
		format := cmap.Format(data)
		switch format {
		case 4:
			sub, err := cmap.DecodeFormat4(data)
			if err != nil {
				return 0, err
			}
			lang, _ := cmap.Language(data)
			for _, r := range codes {
				if r <= 0xFFFF {
					sub[uint16(r)] = mapping[r]
				}
			}
			f.CMap[key], err = sub.Encode(uint16(lang))
			if err != nil {
				return 0, fmt.Errorf("cmap subtable %d/%d: %w", key.PlatformID, key.EncodingID, err)
			}
		case 12:
			sub, err := cmap.DecodeFormat12(data)
			if err != nil {
				return 0, err
			}
			lang, _ := cmap.Language(data)
			for _, r := range codes {
				sub[uint32(r)] = mapping[r]
			}
			f.CMap[key] = sub.Encode(lang)
		default:
			log.WithFields(logrus.Fields{
				"platform": key.PlatformID,
				"encoding": key.EncodingID,
				"format":   format,
			}).Debug("leaving cmap subtable unchanged")
		}
	}

	log.WithField("codepoints", len(codes)).Info("redirected character map entries")
	return len(codes), nil
}
