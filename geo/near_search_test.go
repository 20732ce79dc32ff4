package geo

import (
	"math"
	"testing"
)

func buildNearSearchFixture(t *testing.T) (*IndexDescriptor, *fakeCursor, *fakeDocStore, map[string]Point) {
	t.Helper()
	d, err := NewIndexDescriptor("loc", nil, 24, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}

	docs := newFakeDocStore()
	points := map[string]Point{
		"near1": {X: 1, Y: 0},
		"near2": {X: 0, Y: 2},
		"mid":   {X: 5, Y: 5},
		"far":   {X: -20, Y: -20},
	}

	var entries []memEntry
	for _, p := range points {
		h, err := d.Hash(p.X, p.Y)
		if err != nil {
			t.Fatalf("unexpected error hashing %+v: %v", p, err)
		}
		ref := NewDocRef()
		docs.put(ref, map[string]interface{}{"loc": []interface{}{p.X, p.Y}})
		entries = append(entries, memEntry{key: h.Bytes(), ref: ref})
	}
	return d, newFakeCursor(entries), docs, points
}

func TestNearSearchReturnsClosestKInAscendingOrder(t *testing.T) {
	d, cursor, docs, _ := buildNearSearchFixture(t)

	n, err := NewNearSearch(d, cursor, docs, acceptAllMatcher{}, Point{X: 0, Y: 0}, 2, 0, MetricPlane)
	if err != nil {
		t.Fatalf("unexpected error building search: %v", err)
	}
	defer n.Close()

	results, err := n.Run()
	if err != nil {
		t.Fatalf("unexpected error running search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ExactDistance > results[1].ExactDistance {
		t.Errorf("expected ascending distance order, got %v then %v", results[0].ExactDistance, results[1].ExactDistance)
	}
	if math.Abs(results[0].ExactDistance-1) > 0.01 {
		t.Errorf("expected closest result at distance ~1, got %v", results[0].ExactDistance)
	}
	if math.Abs(results[1].ExactDistance-2) > 0.01 {
		t.Errorf("expected second-closest result at distance ~2, got %v", results[1].ExactDistance)
	}
}

func TestNearSearchHonorsMaxDistance(t *testing.T) {
	d, cursor, docs, _ := buildNearSearchFixture(t)

	n, err := NewNearSearch(d, cursor, docs, acceptAllMatcher{}, Point{X: 0, Y: 0}, 10, 3, MetricPlane)
	if err != nil {
		t.Fatalf("unexpected error building search: %v", err)
	}
	defer n.Close()

	results, err := n.Run()
	if err != nil {
		t.Fatalf("unexpected error running search: %v", err)
	}
	for _, r := range results {
		if r.ExactDistance > 3+1e-6 {
			t.Errorf("expected every result within maxDistance=3, got %v", r.ExactDistance)
		}
	}
	if len(results) != 2 {
		t.Errorf("expected exactly the two points within radius 3, got %d", len(results))
	}
}

func TestNewNearSearchRejectsNonPositiveK(t *testing.T) {
	d, cursor, docs, _ := buildNearSearchFixture(t)
	if _, err := NewNearSearch(d, cursor, docs, acceptAllMatcher{}, Point{}, 0, 0, MetricPlane); err == nil {
		t.Errorf("expected an error for k=0")
	}
}
