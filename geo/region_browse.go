package geo

import (
	"encoding/json"
	"fmt"
)

// BrowseShape selects which region-containment test a RegionBrowse
// applies.
type BrowseShape int

const (
	ShapeBox BrowseShape = iota
	ShapeCircle
	ShapeCircleSphere
	ShapePolygon
)

type browseState int

const (
	stateStart browseState = iota
	stateExpand
	stateDoneNeighbor
	stateDone
)

// RegionBrowse is the generic box/circle/centerSphere/polygon expansion
// state machine: START -> DOING_EXPAND -> DONE_NEIGHBOR -> {DOING_EXPAND |
// DONE}. It visits every index key whose cell could overlap the region
// exactly once.
type RegionBrowse struct {
	desc   *IndexDescriptor
	cursor BtreeCursor
	docs   DocumentStore
	acc    *Accumulator
	shape  BrowseShape

	box     Box     // ShapeBox
	center  Point    // ShapeCircle, ShapeCircleSphere
	radius  float64  // ShapeCircle, ShapeCircleSphere
	polygon *Polygon // ShapePolygon

	fudge   float64
	wantLen float64
	region  Box // characteristic bounding box, used for the neighbor intersects test

	state       browseState
	prefix      GeoHash
	neighborIdx int
	depth       int

	results []GeoPoint
}

const maxNeighborRecursionDepth = 8

func newRegionBrowse(desc *IndexDescriptor, cursor BtreeCursor, docs DocumentStore, matcher ResidualMatcher) (*RegionBrowse, error) {
	acc, err := NewAccumulator(matcher)
	if err != nil {
		return nil, err
	}
	return &RegionBrowse{desc: desc, cursor: cursor, docs: docs, acc: acc, state: stateStart}, nil
}

// NewBoxBrowse scans for documents whose location falls in box, with an
// epsilon-fudge to resolve the boundary exactly.
func NewBoxBrowse(desc *IndexDescriptor, cursor BtreeCursor, docs DocumentStore, matcher ResidualMatcher, box Box) (*RegionBrowse, error) {
	rb, err := newRegionBrowse(desc, cursor, docs, matcher)
	if err != nil {
		return nil, err
	}
	clamped := desc.Clamp(box)
	rb.shape = ShapeBox
	rb.box = clamped
	rb.fudge = desc.ErrorPlane()
	rb.wantLen = rb.fudge + maxF(clamped.Width(), clamped.Height())
	rb.region = clamped
	rb.prefix, err = desc.Hash(clamped.Center().X, clamped.Center().Y)
	if err != nil {
		return nil, err
	}
	return rb, nil
}

// NewCircleBrowse scans for documents within radius of center, using
// planar distance if sphere is false or great-circle distance if true (in
// which case radius is in radians and must be less than pi).
func NewCircleBrowse(desc *IndexDescriptor, cursor BtreeCursor, docs DocumentStore, matcher ResidualMatcher, center Point, radius float64, sphere bool) (*RegionBrowse, error) {
	rb, err := newRegionBrowse(desc, cursor, docs, matcher)
	if err != nil {
		return nil, err
	}
	rb.center = center
	rb.radius = radius
	var xScan, yScan float64
	if sphere {
		if radius >= piConst {
			return nil, newUserError("centerSphere radius must be < pi, got %v", radius)
		}
		rb.shape = ShapeCircleSphere
		rb.fudge = desc.ErrorSphere()
		yScan = rad2deg(radius) + rad2deg(rb.fudge)
		xScan = computeXScanDistance(center.Y, yScan)
		if center.X-xScan < desc.Min || center.X+xScan > desc.Max || center.Y-yScan < desc.Min || center.Y+yScan > desc.Max {
			return nil, newUserError("centerSphere scan box would wrap the domain edge")
		}
	} else {
		rb.shape = ShapeCircle
		rb.fudge = desc.ErrorPlane()
		xScan = radius + rb.fudge
		yScan = radius + rb.fudge
	}
	rb.wantLen = maxF(xScan, yScan)
	rb.region = Box{
		Min: Point{X: center.X - xScan, Y: center.Y - yScan},
		Max: Point{X: center.X + xScan, Y: center.Y + yScan},
	}
	rb.prefix, err = desc.Hash(center.X, center.Y)
	if err != nil {
		return nil, err
	}
	return rb, nil
}

// NewPolygonBrowse scans for documents whose location falls inside poly.
func NewPolygonBrowse(desc *IndexDescriptor, cursor BtreeCursor, docs DocumentStore, matcher ResidualMatcher, poly *Polygon) (*RegionBrowse, error) {
	rb, err := newRegionBrowse(desc, cursor, docs, matcher)
	if err != nil {
		return nil, err
	}
	rb.shape = ShapePolygon
	rb.polygon = poly
	rb.fudge = desc.ErrorPlane()
	rb.wantLen = rb.fudge + poly.MaxDim()
	rb.region = poly.Bounds()
	c := poly.Centroid()
	rb.prefix, err = desc.Hash(c.X, c.Y)
	if err != nil {
		return nil, err
	}
	return rb, nil
}

const piConst = 3.14159265358979323846

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Close releases the browse's accumulator cache.
func (rb *RegionBrowse) Close() { rb.acc.Close() }

// Run drives FillStack to completion and returns every accepted result.
func (rb *RegionBrowse) Run(maxToCheck int) ([]GeoPoint, error) {
	for {
		done, err := rb.FillStack(maxToCheck)
		if err != nil {
			return nil, err
		}
		if done {
			return rb.results, nil
		}
	}
}

// FillStack advances the state machine by up to maxToCheck units of work
// and returns true once the browse has visited every relevant cell. It is
// the cooperative suspension point: a cancelled query may stop calling
// FillStack between quanta and simply drop the RegionBrowse.
func (rb *RegionBrowse) FillStack(maxToCheck int) (bool, error) {
	checked := 0
	for checked < maxToCheck {
		switch rb.state {
		case stateStart:
			rb.state = stateExpand
		case stateExpand:
			n, err := rb.drainFullPrefix(rb.prefix, maxToCheck-checked)
			checked += n
			if err != nil {
				return false, err
			}
			if checked >= maxToCheck {
				return false, nil
			}
			if rb.prefix.Bits() == 0 {
				rb.state = stateDone
			} else if rb.fitsInBox(rb.desc.SizeEdge(rb.prefix)) {
				rb.prefix = rb.prefix.Parent()
			} else {
				rb.state = stateDoneNeighbor
				rb.neighborIdx = 0
			}
		case stateDoneNeighbor:
			if rb.neighborIdx >= 9 {
				rb.state = stateDone
				break
			}
			i := rb.neighborIdx/3 - 1
			j := rb.neighborIdx%3 - 1
			rb.neighborIdx++
			if i == 0 && j == 0 {
				continue
			}
			neighbor, err := rb.prefix.Move(i, j)
			if err != nil {
				continue // would wrap past the world edge
			}
			neighborBox := Box{
				Min: Point{X: rb.desc.Min, Y: rb.desc.Min},
				Max: Point{X: rb.desc.Max, Y: rb.desc.Max},
			}
			if x, y := rb.desc.Unhash(neighbor); !neighborBox.Inside(Point{X: x, Y: y}, rb.desc.SizeEdge(neighbor)) {
				continue
			}
			if rb.depth >= maxNeighborRecursionDepth {
				continue
			}
			if rb.region.Intersects(cellBox(rb.desc, neighbor)) <= 0 {
				continue
			}
			rb.depth++
			n, err := rb.drainFullPrefix(neighbor, maxToCheck-checked)
			rb.depth--
			checked += n
			if err != nil {
				return false, err
			}
			if checked >= maxToCheck {
				rb.neighborIdx-- // budget ran out inside this neighbor: revisit it next call
				return false, nil
			}
		case stateDone:
			return true, nil
		}
	}
	return rb.state == stateDone, nil
}

func cellBox(desc *IndexDescriptor, h GeoHash) Box {
	lx, ly := desc.lowCorner(h)
	edge := desc.SizeEdge(h)
	return Box{Min: Point{X: lx, Y: ly}, Max: Point{X: lx + edge, Y: ly + edge}}
}

func (rb *RegionBrowse) fitsInBox(edge float64) bool {
	return edge < rb.wantLen
}

// drainFullPrefix visits every key under prefix, honoring a work budget.
// Keys already visited by an earlier call are skipped without spending
// budget, so a call made after the budget ran out continues through the
// rest of the prefix.
func (rb *RegionBrowse) drainFullPrefix(prefix GeoHash, budget int) (int, error) {
	pos, _, err := rb.cursor.Locate(prefix.Bytes(), 1)
	if err != nil {
		return 0, nil // empty range
	}
	n := 0
	for n < budget {
		raw, ref, err := rb.cursor.KeyAt(pos)
		if err != nil {
			return n, err
		}
		h, err := rb.desc.DecodeKey(raw)
		if err != nil {
			return n, err
		}
		if !h.HasPrefix(prefix) {
			break
		}
		if _, seen := rb.acc.seen[dedupKey(raw, ref)]; !seen {
			if err := rb.acc.Visit(raw, ref, h, rb.checkDistance, rb.addSpecific); err != nil {
				return n, err
			}
			n++
		}
		next, ok, err := rb.cursor.Advance(pos, 1)
		if err != nil {
			return n, err
		}
		if !ok {
			break
		}
		pos = next
	}
	return n, nil
}

func (rb *RegionBrowse) checkDistance(raw []byte, hash GeoHash) (bool, float64) {
	x, y := rb.desc.Unhash(hash)
	p := Point{X: x, Y: y}
	switch rb.shape {
	case ShapeBox:
		return rb.box.Inside(p, rb.fudge), 0
	case ShapeCircle:
		d := distancePoints(rb.center, p)
		if abs(d-rb.radius) <= rb.fudge {
			return true, d // boundary: needs exact re-check in addSpecific
		}
		return d <= rb.radius, d
	case ShapeCircleSphere:
		d := SphereDistance(rb.center.X, rb.center.Y, x, y)
		if abs(d-rb.radius) <= rb.fudge {
			return true, d
		}
		return d <= rb.radius, d
	case ShapePolygon:
		verdict := rb.polygon.Contains(p, rb.fudge)
		return verdict >= 0, 0
	}
	return false, 0
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (rb *RegionBrowse) addSpecific(raw []byte, ref DocRef, approx float64, isNewDoc bool) error {
	exact, within, err := rb.exactCheck(ref)
	if err != nil {
		return err
	}
	if !within {
		return nil
	}
	rb.results = append(rb.results, GeoPoint{Key: raw, Ref: ref, ExactDistance: exact, WithinBound: true})
	return nil
}

// exactCheck loads ref's document and re-evaluates the region predicate
// exactly against each of its raw locations, needed whenever the
// approximate test landed in the epsilon-indeterminate band.
func (rb *RegionBrowse) exactCheck(ref DocRef) (float64, bool, error) {
	raw, err := rb.docs.Load(ref)
	if err != nil {
		return 0, false, fmt.Errorf("region browse: failed to load document %s: %w", ref, err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, false, fmt.Errorf("region browse: document %s is not valid JSON: %w", ref, err)
	}
	keys, err := GetKeys(doc, rb.desc)
	if err != nil {
		return 0, false, err
	}
	best := -1.0
	anyWithin := false
	for _, k := range keys {
		switch rb.shape {
		case ShapeBox:
			if rb.box.Inside(k.Location, 0) {
				anyWithin = true
			}
		case ShapeCircle:
			d := distancePoints(rb.center, k.Location)
			if best < 0 || d < best {
				best = d
			}
			if d <= rb.radius {
				anyWithin = true
			}
		case ShapeCircleSphere:
			d := SphereDistance(rb.center.X, rb.center.Y, k.Location.X, k.Location.Y)
			if best < 0 || d < best {
				best = d
			}
			if d <= rb.radius {
				anyWithin = true
			}
		case ShapePolygon:
			if rb.polygon.Contains(k.Location, 0) > 0 {
				anyWithin = true
			}
		}
	}
	if best < 0 {
		best = 0
	}
	return best, anyWithin, nil
}
