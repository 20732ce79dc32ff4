package geo

// Suitability ranks how well this index can serve a query's geo
// predicate.
type Suitability int

const (
	Useless Suitability = iota
	Helpful
	Optimal
)

// QueryShape is the parsed form of a geo predicate, produced from the
// raw query document the host hands in. Exactly one of the shape-specific
// fields is meaningful, selected by Kind.
type QueryShape struct {
	Kind ShapeKind

	Near        Point
	MaxDistance float64
	Sphere      bool

	Box     Box
	Center  Point
	Radius  float64
	Polygon []Point

	HasResidualFields bool
}

// ShapeKind enumerates the six query shapes the planner recognizes.
type ShapeKind int

const (
	ShapeKindNone ShapeKind = iota
	ShapeKindNear
	ShapeKindNearSphere
	ShapeKindWithinCenter
	ShapeKindWithinCenterSphere
	ShapeKindWithinBox
	ShapeKindWithinPolygon
	ShapeKindEquality
)

// Suitability scores a parsed query shape against this index, per the
// OPTIMAL/HELPFUL/USELESS rules: any of the six recognized geo shapes is
// OPTIMAL; an equality match against the indexed field is HELPFUL only
// when the query carries no other (non-indexable-here) residual fields,
// because the residual can't be pushed down through this index's key
// shape; anything else is USELESS.
func (d *IndexDescriptor) Suitability(q QueryShape) Suitability {
	switch q.Kind {
	case ShapeKindNear, ShapeKindNearSphere, ShapeKindWithinCenter, ShapeKindWithinCenterSphere, ShapeKindWithinBox, ShapeKindWithinPolygon:
		return Optimal
	case ShapeKindEquality:
		if q.HasResidualFields {
			return Useless
		}
		return Helpful
	default:
		return Useless
	}
}

// NewCursor dispatches a parsed query shape to the matching search
// strategy, rejecting shapes this index can't serve.
func (d *IndexDescriptor) NewCursor(cursor BtreeCursor, docs DocumentStore, matcher ResidualMatcher, q QueryShape, num int) (interface {
	Run(maxToCheck int) ([]GeoPoint, error)
	Close()
}, error) {
	switch q.Kind {
	case ShapeKindNear, ShapeKindNearSphere:
		metric := MetricPlane
		if q.Kind == ShapeKindNearSphere {
			metric = MetricSphere
		}
		n, err := NewNearSearch(d, cursor, docs, matcher, q.Near, num, q.MaxDistance, metric)
		if err != nil {
			return nil, err
		}
		return nearSearchAdapter{n}, nil
	case ShapeKindWithinCenter:
		return NewCircleBrowse(d, cursor, docs, matcher, q.Center, q.Radius, false)
	case ShapeKindWithinCenterSphere:
		return NewCircleBrowse(d, cursor, docs, matcher, q.Center, q.Radius, true)
	case ShapeKindWithinBox:
		return NewBoxBrowse(d, cursor, docs, matcher, q.Box)
	case ShapeKindWithinPolygon:
		poly, err := NewPolygon(q.Polygon)
		if err != nil {
			return nil, err
		}
		return NewPolygonBrowse(d, cursor, docs, matcher, poly)
	default:
		return nil, newUserError("geo index cannot serve this query shape")
	}
}

// nearSearchAdapter gives NearSearch the same Run/Close surface as
// RegionBrowse so NewCursor can return a single interface regardless of
// strategy, matching the source's single-cursor-type design note.
type nearSearchAdapter struct{ *NearSearch }

func (a nearSearchAdapter) Run(maxToCheck int) ([]GeoPoint, error) { return a.NearSearch.Run() }
