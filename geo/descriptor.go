package geo

import "math"

const fullCircle = 4294967296.0 // 2^32, the quantization range per axis

// IndexDescriptor holds the immutable configuration of one geospatial
// index: which document field carries the location, which sibling fields
// ride along in the index key, and the domain the coordinates live in.
// Constructed once when the index is opened; every derived quantity
// (scaling, errorPlane, errorSphere) is computed at construction time and
// never recomputed.
type IndexDescriptor struct {
	GeoField    string
	OtherFields []string
	Bits        uint8
	Min, Max    float64

	scaling      float64
	errorPlane   float64
	errorSphere  float64
}

// NewIndexDescriptor validates and builds an index descriptor. bits must
// be in [1, 32]; max must be strictly greater than min.
func NewIndexDescriptor(geoField string, otherFields []string, bits uint8, min, max float64) (*IndexDescriptor, error) {
	if bits == 0 || bits > MaxBits {
		return nil, newUserError("index bits must be in [1, %d], got %d", MaxBits, bits)
	}
	if !(max > min) {
		return nil, newUserError("index domain requires max > min, got min=%v max=%v", min, max)
	}
	d := &IndexDescriptor{
		GeoField:    geoField,
		OtherFields: append([]string(nil), otherFields...),
		Bits:        bits,
		Min:         min,
		Max:         max,
		scaling:     fullCircle / (max - min),
	}
	origin, err := d.Hash(min, min)
	if err != nil {
		return nil, err
	}
	corner, err := origin.Move(1, 1)
	if err != nil {
		// A single-cell-wide domain at full precision has nowhere to move;
		// fall back to the origin itself so error bounds degrade to zero
		// rather than failing index construction.
		corner = origin
	}
	d.errorPlane = d.Distance(origin, corner)
	d.errorSphere = d.errorPlane * math.Pi / 180.0
	return d, nil
}

// ErrorPlane is the coordinate error induced by quantization at this
// index's precision, expressed in domain units.
func (d *IndexDescriptor) ErrorPlane() float64 { return d.errorPlane }

// ErrorSphere reinterprets ErrorPlane, expressed in the domain's degree
// units, as radians — matching the source's own reuse of the planar error
// bound for spherical queries.
func (d *IndexDescriptor) ErrorSphere() float64 { return d.errorSphere }

func (d *IndexDescriptor) quantize(v float64) (uint32, error) {
	if v < d.Min || v >= d.Max {
		return 0, newUserError("coordinate %v outside domain [%v, %v)", v, d.Min, d.Max)
	}
	return uint32((v - d.Min) * d.scaling), nil
}

func (d *IndexDescriptor) unquantize(q uint32) float64 {
	return d.Min + float64(q)/d.scaling
}

// Hash quantizes (x, y) to this index's configured precision.
func (d *IndexDescriptor) Hash(x, y float64) (GeoHash, error) {
	qx, err := d.quantize(x)
	if err != nil {
		return GeoHash{}, err
	}
	qy, err := d.quantize(y)
	if err != nil {
		return GeoHash{}, err
	}
	return newGeoHash(d.Bits, qx, qy), nil
}

// Unhash decodes a hash back to a real-valued point at the center of the
// cell it names.
func (d *IndexDescriptor) Unhash(h GeoHash) (x, y float64) {
	qx, qy := h.centeredComponents()
	return d.unquantize(qx), d.unquantize(qy)
}

// DecodeKey parses the leading 8 bytes of a stored index key back into a
// GeoHash at this descriptor's configured precision.
func (d *IndexDescriptor) DecodeKey(raw []byte) (GeoHash, error) {
	return decodeGeoHash(d.Bits, raw)
}

// SizeEdge returns the edge length, in domain units, of the cell h names.
// It handles the domain-maximum singularity: the neighboring cell one
// bucket over on an axis may not exist at the domain edge (Move rejects
// the wrap), in which case that side of the cell is taken to be Max
// directly rather than failing.
func (d *IndexDescriptor) SizeEdge(h GeoHash) float64 {
	loX, _ := d.lowCorner(h)

	hiX := d.Max
	if moved, err := h.Move(1, 1); err == nil {
		hiX, _ = d.lowCorner(moved)
	}

	return math.Abs(loX - hiX)
}

// lowCorner decodes h to the low (non-centered) corner of its cell.
func (d *IndexDescriptor) lowCorner(h GeoHash) (float64, float64) {
	qx, qy := h.components()
	return d.unquantize(qx), d.unquantize(qy)
}
