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

// Package fonterror defines the error types reported by the font
// transformation code.
//
// All errors are returned as pointers, so that callers can use errors.As to
// distinguish the different kinds:
//
//	var cfgErr *fonterror.ConfigurationError
//	if errors.As(err, &cfgErr) {
//		...
//	}
package fonterror

import (
	"errors"
	"strings"
)

// ConfigurationError indicates that caller-supplied parameters are
// inconsistent with the capabilities of the input font.
type ConfigurationError struct {
	SubSystem string
	Reason    string
}

func (err *ConfigurationError) Error() string {
	return err.SubSystem + ": " + err.Reason
}

// FormatError indicates that the internal structure of a font violates an
// invariant which the code depends on.
type FormatError struct {
	SubSystem string
	Table     string // optional
	Glyph     string // optional
	Reason    string
}

func (err *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(err.SubSystem)
	if err.Table != "" {
		b.WriteString(": table ")
		b.WriteString(strings.TrimRight(err.Table, " "))
	}
	if err.Glyph != "" {
		b.WriteString(": glyph ")
		b.WriteString(err.Glyph)
	}
	b.WriteString(": ")
	b.WriteString(err.Reason)
	return b.String()
}

// UnsupportedFormatError indicates that a font uses a valid OpenType
// structure which is outside the supported subset.
type UnsupportedFormatError struct {
	SubSystem string
	Feature   string
}

func (err *UnsupportedFormatError) Error() string {
	return err.SubSystem + ": " + err.Feature + " not supported"
}

// NotFoundError indicates that a glyph, code point or table which is
// required by an operation is absent.
type NotFoundError struct {
	SubSystem string
	What      string
}

func (err *NotFoundError) Error() string {
	return err.SubSystem + ": " + err.What + " not found"
}

// IsUnsupported returns true if err is, or wraps, an UnsupportedFormatError.
func IsUnsupported(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsFormat returns true if err is, or wraps, a FormatError.
func IsFormat(err error) bool {
	var target *FormatError
	return errors.As(err, &target)
}

// IsConfiguration returns true if err is, or wraps, a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsNotFound returns true if err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
