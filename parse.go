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

package subfonts

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"

	"github.com/chiron-fonts/sub-fonts/sfnt/fonterror"
)

// ParseAxes parses axis settings of the form "wght=320,opsz=20".  An
// empty string gives an empty map.
func ParseAxes(s string) (map[string]float64, error) {
	res := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tag, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, axisError("axis setting %q has no '='", part)
		}
		tag = strings.TrimSpace(tag)
		if len(tag) == 0 || len(tag) > 4 {
			return nil, axisError("invalid axis tag %q", tag)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, axisError("invalid value %q for axis %q", val, tag)
		}
		if _, dup := res[tag]; dup {
			return nil, axisError("axis %q given twice", tag)
		}
		res[tag] = x
	}
	return res, nil
}

func axisError(format string, a ...any) error {
	return &fonterror.ConfigurationError{
		SubSystem: "subfonts",
		Reason:    fmt.Sprintf(format, a...),
	}
}

// ParseTransform parses six comma-separated coefficients
// "xx,xy,yx,yy,dx,dy".  The transformed point is
// (xx*x + yx*y + dx, xy*x + yy*y + dy).  An empty string gives nil.
func ParseTransform(s string) (*matrix.Matrix, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return nil, &fonterror.ConfigurationError{
			SubSystem: "subfonts",
			Reason:    fmt.Sprintf("transform needs 6 values, got %d", len(parts)),
		}
	}
	var M matrix.Matrix
	for i, part := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &fonterror.ConfigurationError{
				SubSystem: "subfonts",
				Reason:    fmt.Sprintf("invalid transform value %q", part),
			}
		}
		M[i] = x
	}
	return &M, nil
}
