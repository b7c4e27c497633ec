package util

import (
	"math"
	"testing"
)

func TestRoundTo(t *testing.T) {
	if got := RoundTo(1.23456789, 4); got != 1.2346 {
		t.Fatalf("RoundTo(1.23456789, 4) = %v", got)
	}
	if got := RoundTo(-0.005, 2); got != -0.01 && got != 0 {
		// math.Round half-away-from-zero: -0.005*100 = -0.5 rounds to -1
		t.Fatalf("RoundTo(-0.005, 2) = %v", got)
	}
	if got := RoundTo(math.NaN(), 2); got != 0 {
		t.Fatalf("RoundTo(NaN) = %v, want 0", got)
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("got %d", got)
	}
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
}

func TestParseBoolDefault(t *testing.T) {
	if !ParseBoolDefault("true", false) {
		t.Fatal("expected true")
	}
	if ParseBoolDefault("nope", false) {
		t.Fatal("expected default false")
	}
}
