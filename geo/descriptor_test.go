package geo

import (
	"math"
	"testing"
)

func TestNewIndexDescriptorValidatesBits(t *testing.T) {
	if _, err := NewIndexDescriptor("loc", nil, 0, -180, 180); err == nil {
		t.Errorf("expected an error for bits=0")
	}
	if _, err := NewIndexDescriptor("loc", nil, 33, -180, 180); err == nil {
		t.Errorf("expected an error for bits > 32")
	}
	if _, err := NewIndexDescriptor("loc", nil, 26, 180, -180); err == nil {
		t.Errorf("expected an error when max <= min")
	}
	if _, err := NewIndexDescriptor("loc", nil, 26, -180, 180); err != nil {
		t.Errorf("unexpected error for valid descriptor: %v", err)
	}
}

func TestIndexDescriptorHashUnhashRoundTrip(t *testing.T) {
	// literal scenario: hash(73.01212, 41.352964, bits=26) should decode
	// back within one quantization cell of the original input.
	d, err := NewIndexDescriptor("loc", nil, 26, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}
	h, err := d.Hash(73.01212, 41.352964)
	if err != nil {
		t.Fatalf("unexpected error hashing: %v", err)
	}
	if h.Bits() != 26 {
		t.Fatalf("expected hash precision 26, got %d", h.Bits())
	}
	x, y := d.Unhash(h)
	if math.Abs(x-73.01212) > 0.001 || math.Abs(y-41.352964) > 0.001 {
		t.Errorf("unhash(hash(x,y)) drifted too far: got (%v, %v)", x, y)
	}
}

func TestIndexDescriptorQuantizeRejectsOutOfRange(t *testing.T) {
	d, err := NewIndexDescriptor("loc", nil, 26, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}
	if _, err := d.Hash(180, 0); err == nil {
		t.Errorf("expected an error hashing x at the domain maximum (half-open range)")
	}
	if _, err := d.Hash(-180.0001, 0); err == nil {
		t.Errorf("expected an error hashing x below the domain minimum")
	}
	if _, err := d.Hash(-180, 0); err != nil {
		t.Errorf("unexpected error hashing x at the domain minimum: %v", err)
	}
}

func TestIndexDescriptorDecodeKeyMatchesHash(t *testing.T) {
	d, err := NewIndexDescriptor("loc", nil, 26, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}
	h, err := d.Hash(1, 4)
	if err != nil {
		t.Fatalf("unexpected error hashing: %v", err)
	}
	decoded, err := d.DecodeKey(h.Bytes())
	if err != nil {
		t.Fatalf("unexpected error decoding key: %v", err)
	}
	if decoded != h {
		t.Errorf("DecodeKey round-trip mismatch: got %+v, want %+v", decoded, h)
	}
}

func TestIndexDescriptorSizeEdgeShrinksWithPrecision(t *testing.T) {
	d, err := NewIndexDescriptor("loc", nil, 26, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}
	h, err := d.Hash(0, 0)
	if err != nil {
		t.Fatalf("unexpected error hashing: %v", err)
	}
	coarse := d.SizeEdge(h.Parent())
	fine := d.SizeEdge(h)
	if fine >= coarse {
		t.Errorf("expected a higher-precision cell to have a smaller edge: fine=%v coarse=%v", fine, coarse)
	}
}

func TestIndexDescriptorSizeEdgeAtDomainMaximum(t *testing.T) {
	d, err := NewIndexDescriptor("loc", nil, 8, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}
	// Just under the domain maximum on both axes, so the top-right neighbor
	// does not exist and SizeEdge must fall back to Max rather than error.
	h, err := d.Hash(179.9, 179.9)
	if err != nil {
		t.Fatalf("unexpected error hashing: %v", err)
	}
	if edge := d.SizeEdge(h); edge <= 0 {
		t.Errorf("expected a positive edge length at the domain corner, got %v", edge)
	}
}

func TestIndexDescriptorErrorBoundsArePositive(t *testing.T) {
	d, err := NewIndexDescriptor("loc", nil, 26, -180, 180)
	if err != nil {
		t.Fatalf("unexpected error building descriptor: %v", err)
	}
	if d.ErrorPlane() <= 0 {
		t.Errorf("expected a positive planar error bound, got %v", d.ErrorPlane())
	}
	if d.ErrorSphere() <= 0 {
		t.Errorf("expected a positive spherical error bound, got %v", d.ErrorSphere())
	}
}
