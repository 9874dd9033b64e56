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


package variation

import (
	"seehuhn.de/go/geom/vec"
)

// interpolateUntouched infers the deltas of untouched points from the
// nearest touched points on the same contour, separately for x and y.
// Contours without touched points are not moved.
func interpolateUntouched(delta []vec.Vec2, touched []bool, orig []vec.Vec2, ends []int) {
	first := 0
	for _, last := range ends {
		if last >= len(orig) {
			break
		}
		iupContour(delta, touched, orig, first, last)
		first = last + 1
	}
}

func iupContour(delta []vec.Vec2, touched []bool, orig []vec.Vec2, first, last int) {
	var refs []int
	for i := first; i <= last; i++ {
		if touched[i] {
			refs = append(refs, i)
		}
	}
	switch len(refs) {
	case 0:
		return
	case 1:
		d := delta[refs[0]]
		for i := first; i <= last; i++ {
			delta[i] = d
		}
		return
	}

	for k, r1 := range refs {
		r2 := refs[(k+1)%len(refs)]
		// walk the untouched points between r1 and r2, cyclically
		for i := next(r1, first, last); i != r2; i = next(i, first, last) {
			delta[i].X = iupCoord(orig[i].X, orig[r1].X, orig[r2].X, delta[r1].X, delta[r2].X)
			delta[i].Y = iupCoord(orig[i].Y, orig[r1].Y, orig[r2].Y, delta[r1].Y, delta[r2].Y)
		}
	}
}

func next(i, first, last int) int {
	if i == last {
		return first
	}
	return i + 1
}

func iupCoord(x, c1, c2, d1, d2 float64) float64 {
	if c1 == c2 {
		if d1 == d2 {
			return d1
		}
		return 0
	}
	if c1 > c2 {
		c1, c2 = c2, c1
		d1, d2 = d2, d1
	}
	switch {
	case x <= c1:
		return d1
	case x >= c2:
		return d2
	default:
		return d1 + (x-c1)*(d2-d1)/(c2-c1)
	}
}
