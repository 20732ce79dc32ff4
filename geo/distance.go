package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// Metric selects which distance function a query should use.
type Metric int

const (
	MetricPlane Metric = iota
	MetricSphere
)

// EarthRadiusKm and EarthRadiusMiles convert a SphereDistance result (a
// great-circle angle in radians) into ground distance. Matches the
// source's own EARTH_RADIUS_KM / EARTH_RADIUS_MILES.
const (
	EarthRadiusKm    = 6371.0
	EarthRadiusMiles = EarthRadiusKm * 0.621371192
)

// Distance computes the planar Euclidean distance, in domain units,
// between the points two hashes decode to.
func (d *IndexDescriptor) Distance(a, b GeoHash) float64 {
	ax, ay := d.Unhash(a)
	bx, by := d.Unhash(b)
	return math.Hypot(bx-ax, by-ay)
}

// SphereDistance returns the great-circle angle, in radians, between two
// (longitude, latitude) points given in the index's domain units
// (typically degrees). It is zero for equal points, pi for antipodes, and
// never NaN for finite inputs.
func SphereDistance(ax, ay, bx, by float64) float64 {
	a := s2.LatLngFromDegrees(ay, ax)
	b := s2.LatLngFromDegrees(by, bx)
	return a.Distance(b).Radians()
}

// computeXScanDistance converts a north-south scan distance in degrees
// into the east-west scan distance needed to cover the same great-circle
// range at latitude y, accounting for meridian convergence. Latitude is
// clamped to +/-89 degrees to keep the cosine away from zero near the
// poles, matching the source's own guard.
func computeXScanDistance(y, maxDistDegrees float64) float64 {
	cosNorth := math.Cos(deg2rad(math.Min(89, y+maxDistDegrees)))
	cosSouth := math.Cos(deg2rad(math.Max(-89, y-maxDistDegrees)))
	return maxDistDegrees / math.Min(cosNorth, cosSouth)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180.0 }
func rad2deg(r float64) float64 { return r * 180.0 / math.Pi }
