package models

import "testing"

func TestVector_ValueScanRoundTrip(t *testing.T) {
	original := Vector{1.5, -2.25, 0, 3.75}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	var scanned Vector
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	if len(scanned) != len(original) {
		t.Fatalf("length mismatch after round trip: got %d, want %d", len(scanned), len(original))
	}
	for i := range original {
		if scanned[i] != original[i] {
			t.Errorf("element %d: got %f, want %f", i, scanned[i], original[i])
		}
	}
}

func TestVector_NilRoundTrip(t *testing.T) {
	var original Vector
	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if value != nil {
		t.Errorf("Value() for a nil Vector should be nil, got %v", value)
	}

	scanned := Vector{1, 2, 3}
	if err := scanned.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error: %v", err)
	}
	if scanned != nil {
		t.Errorf("Scan(nil) should reset the receiver to nil, got %v", scanned)
	}
}

func TestVector_GormDataType(t *testing.T) {
	if got := (Vector{}).GormDataType(); got != "real[]" {
		t.Errorf("GormDataType() = %q, want %q", got, "real[]")
	}
}

func TestVector_ScanRejectsGarbage(t *testing.T) {
	var v Vector
	if err := v.Scan(12345); err == nil {
		t.Errorf("Scan of a non-array-shaped value should error")
	}
}
