package geo

import "testing"

func buildRegionBrowseFixture(t *testing.T) (*IndexDescriptor, *fakeCursor, *fakeDocStore, map[string]Point) {
	t.Helper()
	d, err := NewIndexDescriptor("loc", nil, 20, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}

	docs := newFakeDocStore()
	points := map[string]Point{
		"inside1": {X: 1, Y: 0},
		"inside2": {X: 0, Y: 2},
		"inside3": {X: 3, Y: 3},
		"outside": {X: -20, Y: -20},
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

func TestBoxBrowseReturnsOnlyInteriorPoints(t *testing.T) {
	d, cursor, docs, _ := buildRegionBrowseFixture(t)

	rb, err := NewBoxBrowse(d, cursor, docs, acceptAllMatcher{}, NewBox(Point{X: -5, Y: -5}, Point{X: 5, Y: 5}))
	if err != nil {
		t.Fatalf("unexpected error building browse: %v", err)
	}
	defer rb.Close()

	results, err := rb.Run(1000)
	if err != nil {
		t.Fatalf("unexpected error running browse: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results inside the box, got %d", len(results))
	}
}

func TestCircleBrowseReturnsOnlyPointsWithinRadius(t *testing.T) {
	d, cursor, docs, _ := buildRegionBrowseFixture(t)

	rb, err := NewCircleBrowse(d, cursor, docs, acceptAllMatcher{}, Point{X: 0, Y: 0}, 1.5, false)
	if err != nil {
		t.Fatalf("unexpected error building browse: %v", err)
	}
	defer rb.Close()

	results, err := rb.Run(1000)
	if err != nil {
		t.Fatalf("unexpected error running browse: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 result within radius 1.5 of the origin, got %d", len(results))
	}
}

func TestCircleSphereRejectsRadiusAtOrAbovePi(t *testing.T) {
	d, cursor, docs, _ := buildRegionBrowseFixture(t)
	if _, err := NewCircleBrowse(d, cursor, docs, acceptAllMatcher{}, Point{X: 0, Y: 0}, 3.2, true); err == nil {
		t.Errorf("expected an error for a centerSphere radius >= pi")
	}
}

func TestPolygonBrowseReturnsOnlyContainedPoints(t *testing.T) {
	d, cursor, docs, _ := buildRegionBrowseFixture(t)

	triangle, err := NewPolygon([]Point{{X: -2, Y: -2}, {X: 4, Y: -2}, {X: -2, Y: 4}})
	if err != nil {
		t.Fatalf("unexpected error building polygon: %v", err)
	}
	rb, err := NewPolygonBrowse(d, cursor, docs, acceptAllMatcher{}, triangle)
	if err != nil {
		t.Fatalf("unexpected error building browse: %v", err)
	}
	defer rb.Close()

	results, err := rb.Run(1000)
	if err != nil {
		t.Fatalf("unexpected error running browse: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 result inside the triangle, got %d", len(results))
	}
}

func TestFillStackSuspendsAndResumesWithinBudget(t *testing.T) {
	d, cursor, docs, _ := buildRegionBrowseFixture(t)

	rb, err := NewBoxBrowse(d, cursor, docs, acceptAllMatcher{}, NewBox(Point{X: -180, Y: -180}, Point{X: 180, Y: 180}))
	if err != nil {
		t.Fatalf("unexpected error building browse: %v", err)
	}
	defer rb.Close()

	steps := 0
	for {
		done, err := rb.FillStack(1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		steps++
		if done {
			break
		}
		if steps > 10000 {
			t.Fatalf("FillStack did not converge within a reasonable number of tiny steps")
		}
	}
	if len(rb.results) != 4 {
		t.Errorf("expected all 4 points within the whole-domain box, got %d", len(rb.results))
	}
}
