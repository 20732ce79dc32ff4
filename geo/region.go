package geo

import "math"

// Point is a coordinate pair in the index's configured domain.
type Point struct {
	X, Y float64
}

// Box is an axis-aligned rectangle with Min <= Max component-wise.
type Box struct {
	Min, Max Point
}

// NewBox builds a Box from two corners, normalizing so Min <= Max on each
// axis regardless of the order the corners were given in.
func NewBox(a, b Point) Box {
	box := Box{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
	return box
}

// Clamp restricts the box to the index's domain, matching fixBox's
// behavior of normalizing a caller-supplied box against the index range.
func (d *IndexDescriptor) Clamp(b Box) Box {
	return Box{
		Min: Point{X: clampf(b.Min.X, d.Min, d.Max), Y: clampf(b.Min.Y, d.Min, d.Max)},
		Max: Point{X: clampf(b.Max.X, d.Min, d.Max), Y: clampf(b.Max.Y, d.Min, d.Max)},
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Width and Height are the box's extent on each axis.
func (b Box) Width() float64  { return b.Max.X - b.Min.X }
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }

// Area is the box's area; zero for a degenerate (point or line) box.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Center is the box's midpoint.
func (b Box) Center() Point {
	return Point{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// mid returns the overlap of [amin,amax] and [bmin,bmax] on one axis, or
// false if they don't overlap at all.
func mid(amin, amax, bmin, bmax float64) (float64, float64, bool) {
	lo := math.Max(amin, bmin)
	hi := math.Min(amax, bmax)
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// Intersects returns the ratio of the two boxes' overlap area to their
// average area, in [0, 1]; zero when they don't overlap at all.
func (b Box) Intersects(other Box) float64 {
	xlo, xhi, ok := mid(b.Min.X, b.Max.X, other.Min.X, other.Max.X)
	if !ok {
		return 0
	}
	ylo, yhi, ok := mid(b.Min.Y, b.Max.Y, other.Min.Y, other.Max.Y)
	if !ok {
		return 0
	}
	overlap := (xhi - xlo) * (yhi - ylo)
	avg := (b.Area() + other.Area()) / 2
	if avg == 0 {
		return 0
	}
	return overlap / avg
}

func between(v, lo, hi, fudge float64) bool {
	return v >= lo-fudge && v <= hi+fudge
}

// Inside reports whether p lies within the box, expanded by fudge on every
// side.
func (b Box) Inside(p Point, fudge float64) bool {
	return between(p.X, b.Min.X, b.Max.X, fudge) && between(p.Y, b.Min.Y, b.Max.Y, fudge)
}

// OnBoundary reports whether p lies within fudge of any of the box's four
// edges.
func (b Box) OnBoundary(p Point, fudge float64) bool {
	nearX := math.Abs(p.X-b.Min.X) <= fudge || math.Abs(p.X-b.Max.X) <= fudge
	nearY := math.Abs(p.Y-b.Min.Y) <= fudge || math.Abs(p.Y-b.Max.Y) <= fudge
	if nearX && p.Y >= b.Min.Y-fudge && p.Y <= b.Max.Y+fudge {
		return true
	}
	if nearY && p.X >= b.Min.X-fudge && p.X <= b.Max.X+fudge {
		return true
	}
	return false
}

// Contains reports whether other lies entirely within b, expanded by
// fudge — both of other's corners must be inside.
func (b Box) Contains(other Box, fudge float64) bool {
	return b.Inside(other.Min, fudge) && b.Inside(other.Max, fudge)
}

// Polygon is an ordered, cyclic sequence of at least three points.
type Polygon struct {
	points []Point

	boundsCalculated bool
	bounds           Box

	centroidCalculated bool
	centroid           Point
}

// NewPolygon validates and builds a polygon. At least 3 points are
// required.
func NewPolygon(points []Point) (*Polygon, error) {
	if len(points) < 3 {
		return nil, newUserError("polygon requires at least 3 points, got %d", len(points))
	}
	return &Polygon{points: append([]Point(nil), points...)}, nil
}

// Bounds returns (and caches) the polygon's axis-aligned bounding box.
func (p *Polygon) Bounds() Box {
	if p.boundsCalculated {
		return p.bounds
	}
	b := Box{Min: p.points[0], Max: p.points[0]}
	for _, pt := range p.points[1:] {
		b.Min.X = math.Min(b.Min.X, pt.X)
		b.Min.Y = math.Min(b.Min.Y, pt.Y)
		b.Max.X = math.Max(b.Max.X, pt.X)
		b.Max.Y = math.Max(b.Max.Y, pt.Y)
	}
	p.bounds = b
	p.boundsCalculated = true
	return b
}

// MaxDim returns the larger of the bounding box's width and height.
func (p *Polygon) MaxDim() float64 {
	b := p.Bounds()
	return math.Max(b.Width(), b.Height())
}

// Centroid returns (and caches) the polygon's area centroid via the
// signed-area shoelace formula.
func (p *Polygon) Centroid() Point {
	if p.centroidCalculated {
		return p.centroid
	}
	var area, cx, cy float64
	n := len(p.points)
	for i := 0; i < n; i++ {
		a := p.points[i]
		b := p.points[(i+1)%n]
		cross := a.X*b.Y - b.X*a.Y
		area += cross
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	area /= 2
	if area != 0 {
		cx /= 6 * area
		cy /= 6 * area
	}
	p.centroid = Point{X: cx, Y: cy}
	p.centroidCalculated = true
	return p.centroid
}

// Contains tests p against the polygon with an eps-wide fudge band around
// every edge. It returns +1 if p is inside, -1 if outside, and 0 if p
// falls within eps of some edge — an indeterminate verdict that callers
// must resolve with an exact re-check against the real document geometry.
func (poly *Polygon) Contains(p Point, eps float64) int {
	n := len(poly.points)
	for i := 0; i < n; i++ {
		a := poly.points[i]
		b := poly.points[(i+1)%n]
		if segmentNearPoint(a, b, p, eps) {
			return 0
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := poly.points[i]
		b := poly.points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	if inside {
		return 1
	}
	return -1
}

// segmentNearPoint reports whether p lies within eps of the segment a-b,
// using an axis-aligned fudge box around p as a cheap pre-check before the
// precise point-to-segment distance, matching the ray-caster's own
// fudge-box guard against boundary ambiguity.
func segmentNearPoint(a, b, p Point, eps float64) bool {
	box := Box{
		Min: Point{X: p.X - eps, Y: p.Y - eps},
		Max: Point{X: p.X + eps, Y: p.Y + eps},
	}
	segBox := NewBox(a, b)
	if segBox.Intersects(box) == 0 && !segBox.Contains(box, 0) && !box.Contains(segBox, 0) {
		// Quick rejection: segment's own bounding box doesn't come near p's
		// fudge box at all.
		if !boxesOverlap(segBox, box) {
			return false
		}
	}
	return pointSegmentDistance(p, a, b) <= eps
}

func boxesOverlap(a, b Box) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X && a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y
}

func pointSegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = clampf(t, 0, 1)
	cx := a.X + t*dx
	cy := a.Y + t*dy
	return math.Hypot(p.X-cx, p.Y-cy)
}
