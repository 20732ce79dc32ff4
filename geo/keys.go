package geo

import (
	"sort"
	"strings"
)

// ExtractedKey is one (geohash, other-field projection) pair produced by
// GetKeys for a single location found in a document.
type ExtractedKey struct {
	Hash     GeoHash
	Other    []interface{}
	Location Point
}

// GetKeys walks doc's dotted geoField path, collects every location found
// there, and quantizes each into a geohash alongside a projection of the
// index's other fields. A document with no value at geoField yields no
// keys — that is not an error, it simply means the document isn't
// reachable through this index. An empty location (no locations found
// after navigation) is likewise skipped. A field that resolves to
// something other than a location or a collection of locations is a
// user error.
func GetKeys(doc map[string]interface{}, desc *IndexDescriptor) ([]ExtractedKey, error) {
	matches := lookupPath(doc, desc.GeoField)
	if len(matches) == 0 {
		return nil, nil
	}

	var out []ExtractedKey
	for _, m := range matches {
		locs, err := collectLocations(m)
		if err != nil {
			return nil, err
		}
		if len(locs) == 0 {
			continue
		}
		other := projectOtherFields(doc, desc.OtherFields)
		for _, loc := range locs {
			h, err := desc.Hash(loc.X, loc.Y)
			if err != nil {
				return nil, err
			}
			out = append(out, ExtractedKey{Hash: h, Other: other, Location: loc})
		}
	}
	return out, nil
}

// lookupPath resolves a dotted field path against doc, fanning out across
// arrays encountered along the way so that e.g. "places.loc" matches
// loc on every element of an array found at "places".
func lookupPath(doc interface{}, path string) []interface{} {
	cur := []interface{}{doc}
	for _, seg := range strings.Split(path, ".") {
		var next []interface{}
		for _, c := range cur {
			switch v := c.(type) {
			case map[string]interface{}:
				if val, ok := v[seg]; ok {
					next = append(next, val)
				}
			case []interface{}:
				for _, item := range v {
					if m, ok := item.(map[string]interface{}); ok {
						if val, ok := m[seg]; ok {
							next = append(next, val)
						}
					}
				}
			}
		}
		cur = next
	}
	return cur
}

// collectLocations interprets v as either a single {x,y} location or a
// collection (array or object) of such locations, per the exactly-two-
// coordinate rule: an array of exactly two numbers is a single location,
// not a pair of one-coordinate locations.
func collectLocations(v interface{}) ([]Point, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		if len(val) == 2 {
			if x, ok1 := toFloat(val[0]); ok1 {
				if y, ok2 := toFloat(val[1]); ok2 {
					return []Point{{X: x, Y: y}}, nil
				}
			}
		}
		var pts []Point
		for _, item := range val {
			sub, err := collectLocations(item)
			if err != nil {
				return nil, err
			}
			pts = append(pts, sub...)
		}
		return pts, nil
	case map[string]interface{}:
		if x, y, ok := xyFields(val); ok {
			return []Point{{X: x, Y: y}}, nil
		}
		var pts []Point
		for _, item := range val {
			sub, err := collectLocations(item)
			if err != nil {
				return nil, err
			}
			pts = append(pts, sub...)
		}
		return pts, nil
	default:
		return nil, newUserError("getKeys: geo field value must be a location or a collection of locations, got %T", v)
	}
}

// xyFields picks a location's two coordinates out of an object. Named
// fields take priority; a two-field object with no recognized name falls
// back to the positional rule instead of being rejected.
func xyFields(m map[string]interface{}) (x, y float64, ok bool) {
	if xv, xok := firstOf(m, "x", "lon", "lng"); xok {
		if yv, yok := firstOf(m, "y", "lat"); yok {
			x, okx := toFloat(xv)
			y, oky := toFloat(yv)
			return x, y, okx && oky
		}
	}
	return positionalXYFields(m)
}

// positionalXYFields implements the "first field numeric" rule for a
// two-field location object that uses neither of the recognized name
// sets. BSON preserves a document's field order, so the original
// (db/geo/2d.cpp, BSONElement x = i.next(); y = i.next();) can take the
// first two elements as-is; a Go map[string]interface{} does not, so the
// two keys are sorted to make the choice deterministic across repeated
// reads of the same document rather than varying with Go's randomized
// map iteration.
func positionalXYFields(m map[string]interface{}) (x, y float64, ok bool) {
	if len(m) != 2 {
		return 0, 0, false
	}
	keys := make([]string, 0, 2)
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	x, okx := toFloat(m[keys[0]])
	y, oky := toFloat(m[keys[1]])
	return x, y, okx && oky
}

func firstOf(m map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// projectOtherFields looks up each of the index's non-geo fields in doc.
// A field resolving to more than one value (through array fan-out) is
// stored as a nested slice — documents indexed this way can't serve
// equality seeks on that field, per the index's own contract.
func projectOtherFields(doc map[string]interface{}, fields []string) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		matches := lookupPath(doc, f)
		switch len(matches) {
		case 0:
			out[i] = nil
		case 1:
			out[i] = matches[0]
		default:
			out[i] = matches
		}
	}
	return out
}
