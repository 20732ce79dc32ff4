package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// GeoPoint is one result record: the index key and document reference
// that produced it, together with its exact (re-checked) distance from
// the query origin.
type GeoPoint struct {
	Key           []byte
	Ref           DocRef
	ExactDistance float64
	WithinBound   bool
}

// wholeCollectionBitsThreshold, boxDeepenItemThreshold and
// boxDeepenMaxDepth are heuristic thresholds carried forward from the
// system this index's search strategy is modeled on; their exact values
// are not independently re-derived here.
const (
	wholeCollectionBitsThreshold = 1
	boxDeepenItemThreshold       = 100
	boxDeepenMaxDepth            = 2
)

type nearCandidate struct {
	raw    []byte
	ref    DocRef
	approx float64
	exact  float64
}

// NearSearch runs the k-nearest expansion described in the geospatial
// index's design: a prefix-descent phase that grows outward from the
// query origin cell by cell, followed by a bounding-box completion phase
// that mops up any candidates phase 1's coarse stopping rule might have
// missed.
type NearSearch struct {
	desc    *IndexDescriptor
	cursor  BtreeCursor
	docs    DocumentStore
	acc     *Accumulator
	metric  Metric
	origin  Point
	oHash   GeoHash
	k       int
	maxDist float64

	candidates []nearCandidate
	farthest   float64
}

// NewNearSearch builds a k-nearest search over cursor for the given
// origin, residual predicate (matcher), cap k, and maxDistance bound.
func NewNearSearch(desc *IndexDescriptor, cursor BtreeCursor, docs DocumentStore, matcher ResidualMatcher, origin Point, k int, maxDistance float64, metric Metric) (*NearSearch, error) {
	if k <= 0 {
		return nil, newUserError("near search: num must be positive, got %d", k)
	}
	oHash, err := desc.Hash(origin.X, origin.Y)
	if err != nil {
		return nil, err
	}
	acc, err := NewAccumulator(matcher)
	if err != nil {
		return nil, err
	}
	return &NearSearch{
		desc: desc, cursor: cursor, docs: docs, acc: acc, metric: metric,
		origin: origin, oHash: oHash, k: k, maxDist: maxDistance,
		farthest: maxDistance,
	}, nil
}

// Close releases resources (the accumulator's residual-match cache).
func (n *NearSearch) Close() { n.acc.Close() }

// Run executes the search to completion (NearSearch never suspends) and
// returns up to k results in strictly ascending exact distance.
func (n *NearSearch) Run() ([]GeoPoint, error) {
	if err := n.phase1(); err != nil {
		return nil, err
	}
	if err := n.phase2(); err != nil {
		return nil, err
	}
	return n.results(), nil
}

// phase1 walks the B-tree both directions from the origin's prefix at
// each level, shrinking the prefix toward the root, until enough
// candidates are accumulated and the cell already exceeds the scan
// distance, or the root is reached. A cell larger than the scan distance
// alone does not end the phase while fewer than k candidates are held.
func (n *NearSearch) phase1() error {
	prefix := n.oHash
	for {
		if err := n.scanPrefixFromOrigin(prefix); err != nil {
			return err
		}

		enough := len(n.candidates) >= n.k
		cellDone := n.desc.SizeEdge(prefix) > n.scanDistance()
		if (prefix.Bits() == 0) || (enough && cellDone) {
			break
		}
		prefix = prefix.Parent()
	}
	return nil
}

// scanDistance is the plane-or-sphere search radius phase 1 compares
// cell size against.
func (n *NearSearch) scanDistance() float64 {
	if n.maxDist > 0 {
		return n.maxDist
	}
	return n.farthest
}

// phase2 forms a bounding box around the current farthest accepted
// distance and sweeps the coarsest prefix (plus its 8 neighbors) that
// covers it, exactly re-checking every candidate found.
func (n *NearSearch) phase2() error {
	farthest := n.farthest
	if len(n.candidates) < n.k {
		farthest = n.scanDistance()
	} else {
		farthest += n.desc.ErrorPlane()
	}
	if n.metric == MetricSphere {
		farthest = computeXScanDistance(n.origin.Y, rad2deg(farthest))
	}

	prefix := n.oHash
	for prefix.Bits() > wholeCollectionBitsThreshold && n.desc.SizeEdge(prefix) < farthest {
		prefix = prefix.Parent()
	}

	if prefix.Bits() <= wholeCollectionBitsThreshold {
		// Heuristic fallback: the search radius is large relative to the
		// domain, so a prefix-bounded neighbor sweep buys nothing — scan
		// everything at the root instead.
		return n.scanPrefixFromOrigin(GeoHash{})
	}

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			neighbor, err := prefix.Move(dx, dy)
			if err != nil {
				continue
			}
			if err := n.scanPrefixFromOrigin(neighbor); err != nil {
				return err
			}
		}
	}
	return nil
}

// scanPrefixFromOrigin drains the B-tree both directions from the origin
// hash's position (or, when prefix does not contain the origin, from the
// low end of prefix's key range), visiting every key that falls under
// prefix.
func (n *NearSearch) scanPrefixFromOrigin(prefix GeoHash) error {
	start := n.oHash
	if !n.oHash.HasPrefix(prefix) {
		start = prefix
	}
	minPos, _, err := n.cursor.Locate(start.Bytes(), -1)
	haveMin := err == nil
	maxPos, _, err := n.cursor.Locate(start.Bytes(), 1)
	haveMax := err == nil

	for haveMin || haveMax {
		if haveMin {
			ok, err := n.visitAt(minPos, prefix)
			if err != nil {
				return err
			}
			if !ok {
				haveMin = false
			} else if nextPos, adv, err := n.cursor.Advance(minPos, -1); err != nil {
				return err
			} else if !adv {
				haveMin = false
			} else {
				minPos = nextPos
			}
		}
		if haveMax {
			ok, err := n.visitAt(maxPos, prefix)
			if err != nil {
				return err
			}
			if !ok {
				haveMax = false
			} else if nextPos, adv, err := n.cursor.Advance(maxPos, 1); err != nil {
				return err
			} else if !adv {
				haveMax = false
			} else {
				maxPos = nextPos
			}
		}
	}
	return nil
}

// visitAt loads the key at pos and, if it falls under prefix, runs it
// through the accumulator. It returns ok=false when pos has left prefix
// (signaling the caller to stop walking this direction).
func (n *NearSearch) visitAt(pos Position, prefix GeoHash) (ok bool, err error) {
	raw, ref, err := n.cursor.KeyAt(pos)
	if err != nil {
		return false, err
	}
	h, err := n.desc.DecodeKey(raw)
	if err != nil {
		return false, err
	}
	if !h.HasPrefix(prefix) {
		return false, nil
	}
	return true, n.acc.Visit(raw, ref, h, n.checkDistance, n.addSpecific)
}

// checkDistance is the approximate-distance test driving the accumulator:
// a candidate survives if its approximate distance is within maxDistance
// (when bounded) plus twice the quantization error, and either the result
// set isn't full yet or it beats the current farthest accepted candidate
// by the same margin.
func (n *NearSearch) checkDistance(raw []byte, hash GeoHash) (bool, float64) {
	approx := n.desc.Distance(n.oHash, hash)
	errBound := n.desc.ErrorPlane()
	if n.metric == MetricSphere {
		ox, oy := n.origin.X, n.origin.Y
		hx, hy := n.desc.Unhash(hash)
		approx = SphereDistance(ox, oy, hx, hy)
		errBound = n.desc.ErrorSphere()
	}
	if n.maxDist > 0 && approx > n.maxDist+2*errBound {
		return false, approx
	}
	if len(n.candidates) >= n.k && approx > n.farthest+2*errBound {
		return false, approx
	}
	return true, approx
}

// addSpecific computes the exact distance for a candidate that passed the
// approximate test and the residual predicate, inserts it into the
// ordered candidate set, and trims the set back down to k.
func (n *NearSearch) addSpecific(raw []byte, ref DocRef, approx float64, isNewDoc bool) error {
	exact, within, err := n.exactDistance(ref)
	if err != nil {
		return err
	}
	if n.maxDist > 0 && !within {
		return nil
	}

	n.candidates = append(n.candidates, nearCandidate{raw: raw, ref: ref, approx: approx, exact: exact})
	sort.Slice(n.candidates, func(i, j int) bool { return n.candidates[i].exact < n.candidates[j].exact })
	if len(n.candidates) > n.k {
		n.candidates = n.candidates[:n.k]
	}
	if len(n.candidates) > 0 {
		n.farthest = n.candidates[len(n.candidates)-1].exact
	}
	return nil
}

// exactDistance loads the referenced document's raw locations and returns
// the minimum exact distance from the origin among them, along with
// whether that minimum is within maxDistance (when bounded).
func (n *NearSearch) exactDistance(ref DocRef) (float64, bool, error) {
	raw, err := n.docs.Load(ref)
	if err != nil {
		return 0, false, fmt.Errorf("near search: failed to load document %s: %w", ref, err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, false, fmt.Errorf("near search: document %s is not valid JSON: %w", ref, err)
	}
	keys, err := GetKeys(doc, n.desc)
	if err != nil {
		return 0, false, err
	}
	if len(keys) == 0 {
		return 0, false, nil
	}

	best := -1.0
	for _, k := range keys {
		var d float64
		if n.metric == MetricSphere {
			d = SphereDistance(n.origin.X, n.origin.Y, k.Location.X, k.Location.Y)
		} else {
			d = distancePoints(n.origin, k.Location)
		}
		if best < 0 || d < best {
			best = d
		}
	}
	within := n.maxDist <= 0 || best <= n.maxDist
	return best, within, nil
}

func distancePoints(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func (n *NearSearch) results() []GeoPoint {
	out := make([]GeoPoint, len(n.candidates))
	for i, c := range n.candidates {
		out[i] = GeoPoint{Key: c.raw, Ref: c.ref, ExactDistance: c.exact, WithinBound: n.maxDist <= 0 || c.exact <= n.maxDist}
	}
	return out
}
