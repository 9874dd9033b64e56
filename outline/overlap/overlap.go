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


// Package overlap removes overlapping contours from TrueType glyphs.
//
// Glyphs whose contours neither intersect nor nest with equal orientation
// are left untouched.  For all other glyphs the contours are flattened to
// polygons and the union of the filled areas is computed.  The result
// consists of on-curve points only.
package overlap

import (
	"math"

	"github.com/ctessum/polyclip-go"
	"github.com/sirupsen/logrus"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/chiron-fonts/sub-fonts/internal/logging"
	"github.com/chiron-fonts/sub-fonts/sfnt"
	"github.com/chiron-fonts/sub-fonts/sfnt/glyf"
)

// flattenSteps is the number of line segments used for each quadratic
// Bézier segment.
const flattenSteps = 8

// Remove replaces the outlines of all simple glyphs with overlapping
// contours by their union.  The left side bearings of changed glyphs are
// set to the new xMin.  The number of changed glyphs is returned.
func Remove(f *sfnt.Font, log logrus.FieldLogger) int {
	log = logging.OrDiscard(log)
	count := 0
	for i, g := range f.Glyphs {
		if g == nil {
			continue
		}
		simple, ok := g.Data.(glyf.SimpleGlyph)
		if !ok {
			continue
		}
		res, changed := Glyph(simple)
		if !changed {
			continue
		}
		bbox := res.BBox()
		f.Glyphs[i] = &glyf.Glyph{Rect16: bbox, Data: res}
		f.Metrics.LSB[i] = int16(bbox.LLx)
		count++
		log.WithFields(logrus.Fields{
			"glyph":    f.GlyphNames[i],
			"gid":      glyph.ID(i),
			"contours": len(res.Contours),
		}).Debug("removed overlaps")
	}
	log.WithField("glyphs", count).Info("overlap removal done")
	return count
}

// Glyph returns the union of the contours of g.  If the contours of g
// do not overlap, g is returned unchanged and the second return value is
// false.
func Glyph(g glyf.SimpleGlyph) (glyf.SimpleGlyph, bool) {
	var polys []polyclip.Contour
	for _, c := range g.Contours {
		poly := flatten(c)
		if len(poly) >= 3 {
			polys = append(polys, poly)
		}
	}
	if !overlapping(polys) {
		return g, false
	}

	// group every outer contour with the holes directly inside it
	var outer []int
	var holes []int
	for i, poly := range polys {
		if area(poly) < 0 {
			outer = append(outer, i)
		} else {
			holes = append(holes, i)
		}
	}
	groupHoles := make(map[int]polyclip.Polygon, len(outer))
	for _, h := range holes {
		best := -1
		bestArea := math.Inf(1)
		for _, o := range outer {
			a := -area(polys[o])
			if a < bestArea && contains(polys[o], polys[h]) {
				best = o
				bestArea = a
			}
		}
		if best >= 0 {
			groupHoles[best] = append(groupHoles[best], polys[h])
		}
	}

	var union polyclip.Polygon
	for _, o := range outer {
		part := polyclip.Polygon{polys[o]}
		if hh := groupHoles[o]; len(hh) > 0 {
			part = part.Construct(polyclip.DIFFERENCE, hh)
		}
		if union == nil {
			union = part
		} else {
			union = union.Construct(polyclip.UNION, part)
		}
	}

	res := glyf.SimpleGlyph{Instructions: g.Instructions}
	var rounded []polyclip.Contour
	for _, poly := range union {
		poly = simplify(poly)
		if len(poly) >= 3 {
			rounded = append(rounded, poly)
		}
	}
	for i, poly := range rounded {
		depth := 0
		for j, other := range rounded {
			if i != j && other.Contains(poly[0]) {
				depth++
			}
		}
		// outer contours clockwise, holes counter-clockwise
		isHole := depth%2 == 1
		if (area(poly) > 0) != isHole {
			reverse(poly)
		}
		contour := make(glyf.Contour, len(poly))
		for k, p := range poly {
			contour[k] = glyf.Point{X: funit.Int16(p.X), Y: funit.Int16(p.Y), OnCurve: true}
		}
		res.Contours = append(res.Contours, contour)
	}
	return res, true
}

// flatten converts a TrueType contour into a polygon.
func flatten(c glyf.Contour) polyclip.Contour {
	n := len(c)
	if n == 0 {
		return nil
	}
	pt := func(i int) vec.Vec2 {
		p := c[(i+n)%n]
		return vec.Vec2{X: float64(p.X), Y: float64(p.Y)}
	}

	// find an on-curve starting point
	start := -1
	for i, p := range c {
		if p.OnCurve {
			start = i
			break
		}
	}
	var first vec.Vec2
	if start >= 0 {
		first = pt(start)
	} else {
		start = 0
		first = pt(0).Add(pt(1)).Mul(0.5)
	}

	var res polyclip.Contour
	add := func(v vec.Vec2) {
		q := polyclip.Point{X: v.X, Y: v.Y}
		if len(res) > 0 && res[len(res)-1].Equals(q) {
			return
		}
		res = append(res, q)
	}

	add(first)
	cur := first
	var ctrl *vec.Vec2
	for k := 1; k <= n; k++ {
		i := start + k
		p := c[(i+n)%n]
		v := pt(i)
		if k == n {
			// close the contour at the starting point
			v = first
		}
		switch {
		case p.OnCurve || k == n:
			if ctrl != nil {
				addQuad(add, cur, *ctrl, v)
				ctrl = nil
			} else {
				add(v)
			}
			cur = v
		case ctrl == nil:
			ctrl = &v
		default:
			mid := ctrl.Add(v).Mul(0.5)
			addQuad(add, cur, *ctrl, mid)
			cur = mid
			ctrl = &v
		}
	}
	if len(res) > 1 && res[0].Equals(res[len(res)-1]) {
		res = res[:len(res)-1]
	}
	return res
}

func addQuad(add func(vec.Vec2), p0, p1, p2 vec.Vec2) {
	for k := 1; k <= flattenSteps; k++ {
		t := float64(k) / flattenSteps
		s := 1 - t
		add(p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t)))
	}
}

// overlapping reports whether any two segments of the polygons intersect,
// or whether a polygon lies inside another one of the same orientation.
func overlapping(polys []polyclip.Contour) bool {
	boxes := make([]polyclip.Rectangle, len(polys))
	for i, poly := range polys {
		boxes[i] = poly.BoundingBox()
	}
	for i, a := range polys {
		if selfIntersecting(a) {
			return true
		}
		for j := i + 1; j < len(polys); j++ {
			b := polys[j]
			if !boxesOverlap(boxes[i], boxes[j]) {
				continue
			}
			if crossing(a, b) {
				return true
			}
			if (area(a) < 0) == (area(b) < 0) && (contains(a, b) || contains(b, a)) {
				return true
			}
		}
	}
	return false
}

func boxesOverlap(a, b polyclip.Rectangle) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}

func selfIntersecting(c polyclip.Contour) bool {
	n := len(c)
	for i := 0; i < n; i++ {
		a0, a1 := c[i], c[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsIntersect(a0, a1, c[j], c[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

func crossing(a, b polyclip.Contour) bool {
	for i := range a {
		a0, a1 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if segmentsIntersect(a0, a1, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect reports whether the closed segments p0-p1 and q0-q1
// have a point in common.
func segmentsIntersect(p0, p1, q0, q1 polyclip.Point) bool {
	d1 := orient(q0, q1, p0)
	d2 := orient(q0, q1, p1)
	d3 := orient(p0, p1, q0)
	d4 := orient(p0, p1, q1)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return d1 == 0 && onSegment(q0, q1, p0) ||
		d2 == 0 && onSegment(q0, q1, p1) ||
		d3 == 0 && onSegment(p0, p1, q0) ||
		d4 == 0 && onSegment(p0, p1, q1)
}

func orient(a, b, c polyclip.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p polyclip.Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// contains reports whether inner lies inside outer.  The contours are
// assumed not to cross.
func contains(outer, inner polyclip.Contour) bool {
	for _, p := range inner {
		if !outer.Contains(p) {
			return false
		}
	}
	return true
}

// area returns the signed area of the polygon.  The area is negative for
// clockwise polygons.
func area(c polyclip.Contour) float64 {
	var sum float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// simplify rounds the points to integers and removes repeated and
// collinear points.
func simplify(c polyclip.Contour) polyclip.Contour {
	res := make(polyclip.Contour, 0, len(c))
	for _, p := range c {
		q := polyclip.Point{X: math.Floor(p.X + 0.5), Y: math.Floor(p.Y + 0.5)}
		if len(res) > 0 && res[len(res)-1].Equals(q) {
			continue
		}
		res = append(res, q)
	}
	for len(res) > 1 && res[0].Equals(res[len(res)-1]) {
		res = res[:len(res)-1]
	}

	for changed := true; changed && len(res) >= 3; {
		changed = false
		for i := 0; i < len(res) && len(res) >= 3; i++ {
			prev := res[(i+len(res)-1)%len(res)]
			next := res[(i+1)%len(res)]
			if orient(prev, res[i], next) == 0 {
				res = append(res[:i], res[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return res
}

func reverse(c polyclip.Contour) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}
