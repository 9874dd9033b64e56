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

// Package rename sets the names, vertical metrics and table set of a
// derived font.
package rename

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/postscript/funit"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/name"
)

// SetNames replaces the family, full, PostScript and version names of
// the font and sets the subfamily to "Regular".  The typographic
// subfamily is removed.
func SetNames(f *sfnt.Font, family, version string, log logrus.FieldLogger) error {
	log = logging.OrDiscard(log)
	if family == "" {
		return &fonterror.ConfigurationError{
			SubSystem: "rename",
			Reason:    "empty family name",
		}
	}
	if f.Name == nil {
		f.Name = &name.Table{}
	}
	f.Name.Delete(name.TypographicSubfamily)

	values := []struct {
		id  name.ID
		val string
	}{
		{name.Family, family},
		{name.Subfamily, "Regular"},
		{name.FullName, family},
		{name.Version, version},
		{name.PostScriptName, strings.ReplaceAll(family, " ", "-")},
	}
	for _, v := range values {
		if v.id == name.Version && version == "" {
			continue
		}
		n := f.Name.Set(v.id, v.val)
		log.WithFields(logrus.Fields{
			"nameID":  v.id,
			"value":   v.val,
			"records": n,
		}).Debug("set name")
	}
	log.WithField("family", family).Info("renamed font")
	return nil
}

// SetLineGap sets the line gap in the "hhea" and "OS/2" tables.  The
// Windows ascent and descent grow by half the gap, rounded down.
func SetLineGap(f *sfnt.Font, gap int, log logrus.FieldLogger) error {
	log = logging.OrDiscard(log)
	if gap < math.MinInt16 || gap > math.MaxInt16 {
		return &fonterror.ConfigurationError{
			SubSystem: "rename",
			Reason:    fmt.Sprintf("line gap %d out of range", gap),
		}
	}
	half := gap / 2
	if gap < 0 && gap%2 != 0 {
		half--
	}

	if f.OS2 != nil {
		ascent := int(f.OS2.WinAscent) + half
		descent := int(f.OS2.WinDescent) + half
		if ascent < 0 || ascent > math.MaxUint16 || descent < 0 || descent > math.MaxUint16 {
			return &fonterror.ConfigurationError{
				SubSystem: "rename",
				Reason:    fmt.Sprintf("line gap %d gives invalid Windows metrics %d/%d", gap, ascent, descent),
			}
		}
		f.OS2.TypoLineGap = funit.Int16(gap)
		f.OS2.WinAscent = uint16(ascent)
		f.OS2.WinDescent = uint16(descent)
	}
	f.Metrics.LineGap = int16(gap)
	log.WithField("gap", gap).Info("set line gap")
	return nil
}

// DropTables removes the tables matching any of the patterns.  A pattern
// ending in "*" matches all tags starting with the text before the star;
// other patterns must match the tag exactly.  Required tables are never
// removed.  The removed tags are returned in sorted order.
func DropTables(f *sfnt.Font, patterns []string, log logrus.FieldLogger) []string {
	log = logging.OrDiscard(log)
	var removed []string
	for _, tag := range f.TableNames() {
		if !matchAny(tag, patterns) {
			continue
		}
		if f.DeleteTable(tag) {
			removed = append(removed, tag)
			log.WithField("table", tag).Info("removed table")
		} else {
			log.WithField("table", tag).Warn("cannot remove required table")
		}
	}
	slices.Sort(removed)
	return removed
}

func matchAny(tag string, patterns []string) bool {
	for _, pat := range patterns {
		if prefix, ok := strings.CutSuffix(pat, "*"); ok {
			if strings.HasPrefix(tag, prefix) {
				return true
			}
		} else if tag == pat {
			return true
		}
	}
	return false
}
