package geo

import "testing"

func descriptorForKeyTests(t *testing.T) *IndexDescriptor {
	t.Helper()
	d, err := NewIndexDescriptor("loc", []string{"name"}, 26, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}
	return d
}

func TestGetKeysSingleLocation(t *testing.T) {
	d := descriptorForKeyTests(t)
	doc := map[string]interface{}{
		"name": "central park",
		"loc":  []interface{}{-73.97, 40.78},
	}
	keys, err := GetKeys(doc, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected exactly one key, got %d", len(keys))
	}
	if keys[0].Location.X != -73.97 || keys[0].Location.Y != 40.78 {
		t.Errorf("unexpected location: %+v", keys[0].Location)
	}
	if len(keys[0].Other) != 1 || keys[0].Other[0] != "central park" {
		t.Errorf("unexpected projected other field: %+v", keys[0].Other)
	}
}

func TestGetKeysTwoElementArrayIsOneLocation(t *testing.T) {
	d := descriptorForKeyTests(t)
	doc := map[string]interface{}{"loc": []interface{}{1.0, 2.0}}
	keys, err := GetKeys(doc, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("a 2-element numeric array must decode to exactly one location, got %d", len(keys))
	}
}

func TestGetKeysArrayOfLocations(t *testing.T) {
	d := descriptorForKeyTests(t)
	doc := map[string]interface{}{
		"loc": []interface{}{
			[]interface{}{1.0, 2.0},
			[]interface{}{3.0, 4.0},
		},
	}
	keys, err := GetKeys(doc, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected two locations, got %d", len(keys))
	}
}

func TestGetKeysObjectLocation(t *testing.T) {
	d := descriptorForKeyTests(t)
	doc := map[string]interface{}{
		"loc": map[string]interface{}{"lng": 5.0, "lat": 6.0},
	}
	keys, err := GetKeys(doc, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 1 || keys[0].Location.X != 5.0 || keys[0].Location.Y != 6.0 {
		t.Fatalf("unexpected keys: %+v", keys)
	}
}

func TestGetKeysMissingFieldYieldsNoKeys(t *testing.T) {
	d := descriptorForKeyTests(t)
	doc := map[string]interface{}{"name": "no location here"}
	keys, err := GetKeys(doc, d)
	if err != nil {
		t.Fatalf("a missing geo field is not an error, got %v", err)
	}
	if keys != nil {
		t.Errorf("expected no keys for a document with no geo field, got %+v", keys)
	}
}

func TestGetKeysDottedPathFanOut(t *testing.T) {
	d, err := NewIndexDescriptor("places.loc", nil, 26, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := map[string]interface{}{
		"places": []interface{}{
			map[string]interface{}{"loc": []interface{}{1.0, 1.0}},
			map[string]interface{}{"loc": []interface{}{2.0, 2.0}},
		},
	}
	keys, err := GetKeys(doc, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected fan-out across the array to produce two keys, got %d", len(keys))
	}
}

func TestGetKeysInvalidValueIsUserError(t *testing.T) {
	d := descriptorForKeyTests(t)
	doc := map[string]interface{}{"loc": "not a location"}
	if _, err := GetKeys(doc, d); err == nil {
		t.Errorf("expected an error for a geo field that isn't a location")
	}
}
