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


// Package sfnt holds the in-memory representation of a TrueType font.
//
// A Font owns every table of one font file.  The tables which the
// transformation code edits are decoded into typed fields; all other
// tables are kept as binary data in Raw and are written back unchanged.
package sfnt

import (
	"bytes"
	"fmt"
	"io"

	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/sfnt/cmap"
	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
	"github.com/chiron-fonts/sub-fonts/sfnt/head"
	"github.com/chiron-fonts/sub-fonts/sfnt/header"
	"github.com/chiron-fonts/sub-fonts/sfnt/hmtx"
	"github.com/chiron-fonts/sub-fonts/sfnt/maxp"
	"github.com/chiron-fonts/sub-fonts/sfnt/name"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gdef"
	"github.com/chiron-fonts/sub-fonts/sfnt/opentype/gtab"
	"github.com/chiron-fonts/sub-fonts/sfnt/os2"
	"github.com/chiron-fonts/sub-fonts/sfnt/post"
	"github.com/chiron-fonts/sub-fonts/sfnt/variation"
)

// Font is a TrueType font.
//
// Glyphs, GlyphNames, Metrics.Width and Metrics.LSB are indexed by glyph ID
// and must always have the same length.
type Font struct {
	ScalerType uint32

	Head    *head.Info
	Maxp    *maxp.Info
	Metrics *hmtx.Info
	OS2     *os2.Info   // nil if the font has no "OS/2" table
	Post    *post.Info  // glyph names are kept in GlyphNames
	Name    *name.Table // nil if the font has no "name" table
	CMap    cmap.Table  // nil if the font has no "cmap" table

	Glyphs     glyf.Glyphs
	GlyphNames []string

	GDEF *gdef.Table
	GSUB *gtab.GSUB
	GPOS *gtab.GPOS

	// Fvar, Avar, Gvar and MVAR are read-only views of the corresponding
	// entries in Raw.  Removing the entry from Raw removes the table from
	// the written font.
	Fvar *variation.Fvar
	Avar *variation.Avar
	Gvar *variation.Gvar
	MVAR *variation.MVAR

	// Raw contains the tables which are not decoded.
	Raw map[string][]byte

	// MergedNamespaces records the glyph name prefixes of fonts which have
	// been merged into this font.
	MergedNamespaces map[string]bool
}

// decodedTables lists the tables which are represented by typed fields
// and are re-encoded when the font is written.
var decodedTables = []string{
	"head", "maxp", "hhea", "hmtx", "OS/2", "post", "name", "cmap",
	"glyf", "loca", "GDEF", "GSUB", "GPOS",
}

// Read decodes a TrueType font file.
func Read(data []byte) (*Font, error) {
	toc, tables, err := header.ReadTables(data)
	if err != nil {
		return nil, err
	}
	if toc.ScalerType == header.ScalerTypeCFF || toc.Has("CFF ") || toc.Has("CFF2") {
		return nil, &fonterror.UnsupportedFormatError{
			SubSystem: "sfnt",
			Feature:   "CFF outlines",
		}
	}
	for _, tag := range []string{"head", "maxp", "hhea", "hmtx", "glyf", "loca"} {
		if !toc.Has(tag) {
			return nil, &fonterror.NotFoundError{
				SubSystem: "sfnt",
				What:      fmt.Sprintf("table %q", tag),
			}
		}
	}

	f := &Font{
		ScalerType:       toc.ScalerType,
		Raw:              make(map[string][]byte),
		MergedNamespaces: make(map[string]bool),
	}

	f.Head, err = head.Read(tables["head"])
	if err != nil {
		return nil, err
	}
	f.Maxp, err = maxp.Read(tables["maxp"])
	if err != nil {
		return nil, err
	}
	numGlyphs := f.Maxp.NumGlyphs
	f.Metrics, err = hmtx.Decode(tables["hhea"], tables["hmtx"], numGlyphs)
	if err != nil {
		return nil, err
	}
	f.Glyphs, err = glyf.Decode(&glyf.Encoded{
		GlyfData:   tables["glyf"],
		LocaData:   tables["loca"],
		LocaFormat: f.Head.IndexToLocFormat,
	}, numGlyphs)
	if err != nil {
		return nil, err
	}

	if data, ok := tables["OS/2"]; ok {
		f.OS2, err = os2.Read(data)
		if err != nil {
			return nil, err
		}
	}
	if data, ok := tables["post"]; ok {
		f.Post, err = post.Read(data)
		if err != nil {
			return nil, err
		}
	} else {
		f.Post = &post.Info{}
	}
	if data, ok := tables["name"]; ok {
		f.Name, err = name.Decode(data)
		if err != nil {
			return nil, err
		}
	}
	if data, ok := tables["cmap"]; ok {
		f.CMap, err = cmap.Decode(data)
		if err != nil {
			return nil, err
		}
	}
	if data, ok := tables["GDEF"]; ok {
		f.GDEF, err = gdef.Read(data)
		if err != nil {
			return nil, err
		}
	}
	if data, ok := tables["GSUB"]; ok {
		f.GSUB, err = gtab.ReadGSUB(data)
		if err != nil {
			return nil, err
		}
	}
	if data, ok := tables["GPOS"]; ok {
		f.GPOS, err = gtab.ReadGPOS(data)
		if err != nil {
			return nil, err
		}
	}

	for tag, data := range tables {
		if !isDecoded(tag) {
			f.Raw[tag] = data
		}
	}
	err = f.readVariations(numGlyphs)
	if err != nil {
		return nil, err
	}

	f.GlyphNames, err = f.makeGlyphNames()
	if err != nil {
		return nil, err
	}
	f.Post.Names = nil

	return f, nil
}

func (f *Font) readVariations(numGlyphs int) error {
	var err error
	if data, ok := f.Raw["fvar"]; ok {
		f.Fvar, err = variation.ReadFvar(data)
		if err != nil {
			return err
		}
	}
	if data, ok := f.Raw["avar"]; ok {
		f.Avar, err = variation.ReadAvar(data)
		if err != nil {
			return err
		}
	}
	if data, ok := f.Raw["gvar"]; ok {
		f.Gvar, err = variation.ReadGvar(data, numGlyphs)
		if err != nil {
			return err
		}
	}
	if data, ok := f.Raw["MVAR"]; ok {
		f.MVAR, err = variation.ReadMVAR(data)
		if err != nil {
			return err
		}
	}
	return nil
}

func isDecoded(tag string) bool {
	for _, t := range decodedTables {
		if t == tag {
			return true
		}
	}
	return false
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return len(f.Glyphs)
}

// IsVariable reports whether the font has variation axes.
func (f *Font) IsVariable() bool {
	return f.Fvar != nil && len(f.Fvar.Axes) > 0
}

// GlyphIndex returns a map from glyph names to glyph IDs.
func (f *Font) GlyphIndex() map[string]glyph.ID {
	res := make(map[string]glyph.ID, len(f.GlyphNames))
	for i, name := range f.GlyphNames {
		res[name] = glyph.ID(i)
	}
	return res
}

// AppendGlyph adds a new glyph at the end of the glyph order and returns
// its glyph ID.
func (f *Font) AppendGlyph(name string, g *glyf.Glyph, width uint16, lsb int16) glyph.ID {
	gid := glyph.ID(len(f.Glyphs))
	f.Glyphs = append(f.Glyphs, g)
	f.GlyphNames = append(f.GlyphNames, name)
	f.Metrics.Append(width, lsb)
	return gid
}

// Simple returns the outline of a simple glyph.  The second return value
// is false if the glyph is empty or composite.
func (f *Font) Simple(gid glyph.ID) (glyf.SimpleGlyph, bool) {
	g := f.Glyphs[gid]
	if g == nil {
		return glyf.SimpleGlyph{}, false
	}
	s, ok := g.Data.(glyf.SimpleGlyph)
	return s, ok
}

// Unicode returns the union of the Unicode subtables of the cmap.
func (f *Font) Unicode() (map[rune]glyph.ID, error) {
	if f.CMap == nil {
		return map[rune]glyph.ID{}, nil
	}
	return f.CMap.Unicode()
}

// HasTable reports whether the written font will contain the given table.
func (f *Font) HasTable(tag string) bool {
	switch tag {
	case "head", "maxp", "hhea", "hmtx", "post", "glyf", "loca":
		return true
	case "OS/2":
		return f.OS2 != nil
	case "name":
		return f.Name != nil
	case "cmap":
		return f.CMap != nil
	case "GDEF":
		return f.GDEF != nil
	case "GSUB":
		return f.GSUB != nil
	case "GPOS":
		return f.GPOS != nil
	}
	_, ok := f.Raw[tag]
	return ok
}

// TableNames returns the tags of all tables of the written font.
func (f *Font) TableNames() []string {
	var res []string
	for _, tag := range decodedTables {
		if f.HasTable(tag) {
			res = append(res, tag)
		}
	}
	for tag := range f.Raw {
		res = append(res, tag)
	}
	return res
}

// DeleteTable removes a table from the font.  Required tables cannot be
// removed; for these, false is returned.
func (f *Font) DeleteTable(tag string) bool {
	switch tag {
	case "head", "maxp", "hhea", "hmtx", "post", "glyf", "loca":
		return false
	case "OS/2":
		f.OS2 = nil
	case "name":
		f.Name = nil
	case "cmap":
		f.CMap = nil
	case "GDEF":
		f.GDEF = nil
	case "GSUB":
		f.GSUB = nil
	case "GPOS":
		f.GPOS = nil
	case "fvar":
		f.Fvar = nil
	case "avar":
		f.Avar = nil
	case "gvar":
		f.Gvar = nil
	case "MVAR":
		f.MVAR = nil
	}
	delete(f.Raw, tag)
	return true
}

// check verifies that the per-glyph data is consistent.
func (f *Font) check() error {
	n := len(f.Glyphs)
	if len(f.GlyphNames) != n || len(f.Metrics.Width) != n || len(f.Metrics.LSB) != n {
		return &fonterror.FormatError{
			SubSystem: "sfnt",
			Reason: fmt.Sprintf("inconsistent glyph count: %d outlines, %d names, %d metrics",
				n, len(f.GlyphNames), len(f.Metrics.Width)),
		}
	}
	if n == 0 || n > 0xFFFF {
		return &fonterror.FormatError{
			SubSystem: "sfnt",
			Reason:    fmt.Sprintf("invalid number of glyphs %d", n),
		}
	}
	seen := make(map[string]bool, n)
	for i, name := range f.GlyphNames {
		if seen[name] {
			return &fonterror.FormatError{
				SubSystem: "sfnt",
				Table:     "post",
				Glyph:     fmt.Sprintf("%d", i),
				Reason:    fmt.Sprintf("duplicate glyph name %q", name),
			}
		}
		seen[name] = true
	}
	return nil
}

// Encode returns the binary representation of all tables.  The summary
// values in "head", "maxp" and "hhea" are recomputed from the glyphs.
func (f *Font) Encode() (map[string][]byte, error) {
	err := f.check()
	if err != nil {
		return nil, err
	}

	tables := make(map[string][]byte, len(f.Raw)+len(decodedTables))
	for tag, data := range f.Raw {
		tables[tag] = data
	}

	enc := f.Glyphs.Encode()
	tables["glyf"] = enc.GlyfData
	tables["loca"] = enc.LocaData

	extents := make([]funit.Rect16, len(f.Glyphs))
	var fontBBox funit.Rect16
	first := true
	for i, g := range f.Glyphs {
		if g == nil || g.Rect16.IsZero() {
			continue
		}
		extents[i] = g.Rect16
		if first {
			fontBBox = g.Rect16
			first = false
			continue
		}
		fontBBox.LLx = min(fontBBox.LLx, g.LLx)
		fontBBox.LLy = min(fontBBox.LLy, g.LLy)
		fontBBox.URx = max(fontBBox.URx, g.URx)
		fontBBox.URy = max(fontBBox.URy, g.URy)
	}

	headInfo := *f.Head
	headInfo.IndexToLocFormat = enc.LocaFormat
	headInfo.FontBBox = fontBBox
	tables["head"] = headInfo.Encode()

	maxpInfo := *f.Maxp
	if maxpInfo.TTF != nil {
		ttf := *maxpInfo.TTF
		maxpInfo.TTF = &ttf
	}
	maxpInfo.NumGlyphs = len(f.Glyphs)
	maxpInfo.SetStats(f.Glyphs.Stats())
	tables["maxp"] = maxpInfo.Encode()

	tables["hhea"], tables["hmtx"] = f.Metrics.Encode(extents)

	postInfo := *f.Post
	postInfo.Names = f.GlyphNames
	tables["post"], err = postInfo.Encode()
	if err != nil {
		return nil, err
	}

	if f.OS2 != nil {
		tables["OS/2"] = f.OS2.Encode()
	}
	if f.Name != nil {
		tables["name"] = f.Name.Encode()
	}
	if f.CMap != nil {
		tables["cmap"] = f.CMap.Encode()
	}
	if f.GDEF != nil {
		tables["GDEF"], err = f.GDEF.Encode()
		if err != nil {
			return nil, fmt.Errorf("GDEF: %w", err)
		}
	}
	if f.GSUB != nil {
		tables["GSUB"], err = f.GSUB.Encode()
		if err != nil {
			return nil, fmt.Errorf("GSUB: %w", err)
		}
	}
	if f.GPOS != nil {
		tables["GPOS"], err = f.GPOS.Encode()
		if err != nil {
			return nil, fmt.Errorf("GPOS: %w", err)
		}
	}
	return tables, nil
}

// Write writes the font in sfnt format to w.
func (f *Font) Write(w io.Writer) (int64, error) {
	tables, err := f.Encode()
	if err != nil {
		return 0, err
	}
	scalerType := f.ScalerType
	if scalerType != header.ScalerTypeApple {
		scalerType = header.ScalerTypeTrueType
	}
	return header.Write(w, scalerType, tables)
}

// Bytes returns the binary representation of the font file.
func (f *Font) Bytes() ([]byte, error) {
	buf := &bytes.Buffer{}
	_, err := f.Write(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
