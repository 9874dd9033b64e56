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

// Subfont derives static font variants from TrueType fonts.
//
// Usage:
//
//	subfont extract IN OUT [-a wght=320,opsz=20] [-t xx,xy,yx,yy,dx,dy] [-c] [-x]
//	subfont build IN OUT -w FRACTION -n NAME -v VERSION [-m DONOR] [-s ssNN] [-p N] [-g GAP]
//	subfont info FILE
package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	subfonts "github.com/chiron-fonts/sub-fonts"
	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/name"
)

var cli struct {
	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`

	Extract extractCmd `cmd:"" help:"Extract a static instance, decompose composite glyphs and transform outlines."`
	Build   buildCmd   `cmd:"" help:"Apply stylistic sets, merge a donor font, widen full-width glyphs and rename."`
	Info    infoCmd    `cmd:"" help:"Show a summary of a font file."`
}

type extractCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Input font file."`
	Output string `arg:"" type:"path" help:"Output font file."`

	Axis          string `short:"a" help:"Axis settings for variable fonts, e.g. \"wght=400,wdth=100\"."`
	Transform     string `short:"t" help:"Affine transform \"xx,xy,yx,yy,dx,dy\" for the glyph outlines."`
	FullWidthOnly bool   `short:"c" name:"cjk-mode-transform" help:"Only transform glyphs with an advance width of 1000, keep metrics and GPOS."`
	SkipDecompose bool   `short:"x" name:"skip-decomposition" help:"Keep composite glyphs."`
}

func (c *extractCmd) Run(log *logrus.Logger) error {
	axes, err := subfonts.ParseAxes(c.Axis)
	if err != nil {
		return err
	}
	M, err := subfonts.ParseTransform(c.Transform)
	if err != nil {
		return err
	}

	f, err := subfonts.ReadFile(c.Input)
	if err != nil {
		return err
	}
	err = subfonts.Extract(f, &subfonts.ExtractOptions{
		Axes:          axes,
		Transform:     M,
		FullWidthOnly: c.FullWidthOnly,
		SkipDecompose: c.SkipDecompose,
		Log:           log.WithField("font", c.Input),
	})
	if err != nil {
		return err
	}
	log.WithField("file", c.Output).Info("writing font")
	return subfonts.WriteFile(f, c.Output)
}

type buildCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Input font file (static)."`
	Output string `arg:"" type:"path" help:"Output font file."`

	Width       float64 `short:"w" required:"" help:"Relative width increase of full-width glyphs, e.g. 0.1."`
	Name        string  `short:"n" required:"" help:"New family name."`
	Version     string  `short:"v" required:"" help:"New version string."`
	Merge       string  `short:"m" type:"existingfile" help:"Donor font to merge."`
	Stylistic   string  `short:"s" help:"Stylistic set to apply (ss01 to ss20)."`
	Punctuation int     `short:"p" default:"0" help:"Punctuation replacement tier (0, 1 or 2)."`
	LineGap     int     `short:"g" default:"0" help:"New line gap."`
	Prefix      string  `default:"inter_" help:"Glyph name prefix for merged glyphs."`
}

func (c *buildCmd) Run(log *logrus.Logger) error {
	f, err := subfonts.ReadFile(c.Input)
	if err != nil {
		return err
	}
	var donor *sfnt.Font
	if c.Merge != "" {
		donor, err = subfonts.ReadFile(c.Merge)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Merge, err)
		}
	}
	err = subfonts.Build(f, &subfonts.BuildOptions{
		StylisticSet:  c.Stylistic,
		Donor:         donor,
		Prefix:        c.Prefix,
		Punctuation:   c.Punctuation,
		WidthFraction: c.Width,
		Family:        c.Name,
		Version:       c.Version,
		LineGap:       c.LineGap,
		Log:           log.WithField("font", c.Input),
	})
	if err != nil {
		return err
	}
	log.WithField("file", c.Output).Info("writing font")
	return subfonts.WriteFile(f, c.Output)
}

type infoCmd struct {
	File string `arg:"" type:"existingfile" help:"Font file."`
}

func (c *infoCmd) Run() error {
	f, err := subfonts.ReadFile(c.File)
	if err != nil {
		return err
	}
	if f.Name != nil {
		for _, id := range []name.ID{name.Family, name.Subfamily, name.Version, name.PostScriptName} {
			if s, ok := f.Name.Get(id); ok {
				fmt.Printf("name %-2d  %s\n", id, s)
			}
		}
	}
	fmt.Printf("glyphs   %d\n", f.NumGlyphs())
	fmt.Printf("upem     %d\n", f.Head.UnitsPerEm)
	if f.IsVariable() {
		for _, a := range f.Fvar.Axes {
			fmt.Printf("axis     %s %g..%g (default %g)\n", a.Tag, a.Min, a.Max, a.Default)
		}
	}
	composites := 0
	for i := range f.Glyphs {
		if f.Glyphs.IsComposite(i) {
			composites++
		}
	}
	fmt.Printf("composite glyphs %d\n", composites)
	if f.GPOS != nil {
		fmt.Printf("GPOS     %d lookups, %d features\n", len(f.GPOS.LookupList), len(f.GPOS.FeatureList))
	}
	tables := f.TableNames()
	slices.Sort(tables)
	fmt.Printf("tables   %v\n", tables)
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("subfont"),
		kong.Description("Derive static font variants from TrueType fonts."),
		kong.UsageOnError(),
	)
	log, err := logging.New(cli.LogLevel)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(log)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
