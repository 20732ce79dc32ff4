package geo

import "math"

// ClusterBox is one box-grouped summary produced by Cluster: how many
// matched documents fell in the box, and a representative point (the
// first match's decoded cell center) for display purposes.
type ClusterBox struct {
	Box            Box
	Count          int
	Representative Point
}

// Cluster groups a set of already-matched results into boxes of the
// caller-chosen cellSize, returning one ClusterBox per non-empty cell in
// first-seen order.
//
// This grouping is domain-agnostic: it grids the index's native [min,
// max) domain directly and does not apply a Web Mercator latitude clamp.
// A latitude/longitude index could reasonably want the map-projection
// version instead, but nothing in this core is WGS84-specific, so that
// choice is left to a caller building on top of this index rather than
// baked in here.
func (d *IndexDescriptor) Cluster(points []GeoPoint, cellSize float64) ([]ClusterBox, error) {
	if cellSize <= 0 {
		return nil, newUserError("cluster: cell size must be positive, got %v", cellSize)
	}

	type bucketKey struct{ ix, iy int64 }
	groups := make(map[bucketKey]*ClusterBox)
	var order []bucketKey

	for _, p := range points {
		h, err := d.DecodeKey(p.Key)
		if err != nil {
			return nil, err
		}
		x, y := d.Unhash(h)
		bx := int64(math.Floor((x - d.Min) / cellSize))
		by := int64(math.Floor((y - d.Min) / cellSize))
		key := bucketKey{bx, by}

		cb, ok := groups[key]
		if !ok {
			cb = &ClusterBox{
				Box: Box{
					Min: Point{X: d.Min + float64(bx)*cellSize, Y: d.Min + float64(by)*cellSize},
					Max: Point{X: d.Min + float64(bx+1)*cellSize, Y: d.Min + float64(by+1)*cellSize},
				},
				Representative: Point{X: x, Y: y},
			}
			groups[key] = cb
			order = append(order, key)
		}
		cb.Count++
	}

	out := make([]ClusterBox, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out, nil
}
