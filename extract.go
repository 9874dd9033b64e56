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

// Package subfonts derives static font variants from TrueType fonts.
//
// Two pipelines are provided.  [Extract] turns a (possibly variable) font
// into a static font with simple glyphs, optionally transformed.  [Build]
// finishes such a font: it resolves stylistic sets, removes unwanted
// tables and features, grafts in the glyphs of a donor font, widens
// full-width glyphs and renames the result.
//
// Both pipelines edit an [sfnt.Font] in place.  [ReadFile] and
// [WriteFile] convert between fonts and files.
package subfonts

import (
	"os"

	"github.com/sirupsen/logrus"
	"seehuhn.de/go/geom/matrix"

	"github.com/chiron-fonts/sub-fonts/decompose"
	"github.com/chiron-fonts/sub-fonts/instancer"
	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/outline/overlap"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/transform"
)

// ExtractOptions control the Extract pipeline.
type ExtractOptions struct {
	// Axes gives the user space coordinates of the instance.  It must be
	// non-empty for variable fonts and is ignored for static fonts.
	Axes map[string]float64

	// Transform, if non-nil, is applied to the glyph outlines.
	Transform *matrix.Matrix

	// FullWidthOnly restricts the transform to full-width glyphs and
	// leaves metrics and GPOS unchanged.
	FullWidthOnly bool

	// SkipDecompose keeps composite glyphs.  Transforms cannot be applied
	// to fonts with composite glyphs.
	SkipDecompose bool

	Log logrus.FieldLogger
}

// Extract converts f into a static font with simple glyphs and applies the
// optional transform.
func Extract(f *sfnt.Font, opts *ExtractOptions) error {
	if opts == nil {
		opts = &ExtractOptions{}
	}
	log := logging.OrDiscard(opts.Log)

	variable := f.IsVariable()
	err := instancer.Instance(f, &instancer.Options{
		Location: opts.Axes,
		Log:      log.WithField("stage", "instance"),
	})
	if err != nil {
		return err
	}
	if variable {
		overlap.Remove(f, log.WithField("stage", "overlap"))
	}

	if opts.SkipDecompose {
		log.Info("skipping decomposition")
	} else {
		_, err = decompose.Decompose(f, log.WithField("stage", "decompose"))
		if err != nil {
			return err
		}
	}

	if opts.Transform != nil {
		err = transform.Apply(f, &transform.Options{
			Matrix:        *opts.Transform,
			FullWidthOnly: opts.FullWidthOnly,
			Log:           log.WithField("stage", "transform"),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadFile reads a font file.
func ReadFile(path string) (*sfnt.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return sfnt.Read(data)
}

// WriteFile writes f to the named file.
func WriteFile(f *sfnt.Font, path string) error {
	data, err := f.Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
