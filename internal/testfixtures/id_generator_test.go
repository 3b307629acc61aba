package testfixtures

import "testing"

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("booking")

	if first, second := gen.Next(), gen.Next(); first != "booking-1" || second != "booking-2" {
		t.Fatalf("sequence = %q, %q", first, second)
	}

	gen.Reset()
	if next := gen.Next(); next != "booking-1" {
		t.Errorf("after Reset got %q, want booking-1", next)
	}
}

func TestIDGeneratorEmptyPrefix(t *testing.T) {
	if next := NewIDGenerator("").Next(); next != "id-1" {
		t.Fatalf("empty prefix yields %q", next)
	}
}
