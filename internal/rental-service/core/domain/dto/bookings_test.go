package dto

import (
	"testing"
	"time"
)

func TestParseTs(t *testing.T) {
	got, err := ParseTs("2025-03-10T09:30:00")
	if err != nil {
		t.Fatalf("ParseTs: %v", err)
	}
	want := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// RFC3339 input keeps its wall-clock reading, the offset is dropped
	got, err = ParseTs("2025-03-10T09:30:00+03:00")
	if err != nil {
		t.Fatalf("ParseTs rfc3339: %v", err)
	}
	if got.Hour() != 9 || got.Minute() != 30 {
		t.Fatalf("offset leaked into wall clock: %v", got)
	}

	if _, err := ParseTs("10/03/2025"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
	if _, err := ParseTs(""); err == nil {
		t.Fatal("expected error for empty timestamp")
	}
}

func TestFormatTsRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	back, err := ParseTs(FormatTs(ts))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !back.Equal(ts) {
		t.Fatalf("round trip changed value: %v", back)
	}
}
