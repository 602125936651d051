package clock

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(base)

	if got := f.Now(); !got.Equal(base) {
		t.Fatalf("Now() = %v, want %v", got, base)
	}

	f.Advance(90 * time.Second)
	if got := f.Now(); !got.Equal(base.Add(90 * time.Second)) {
		t.Fatalf("Now() after advance = %v, want %v", got, base.Add(90*time.Second))
	}
}

func TestFakeNeverGoesBackward(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(base)

	f.Advance(-time.Hour)
	if got := f.Now(); !got.Equal(base) {
		t.Fatalf("Now() after negative advance = %v, want %v", got, base)
	}

	f.Set(base.Add(-time.Minute))
	if got := f.Now(); !got.Equal(base) {
		t.Fatalf("Now() after backward Set = %v, want %v", got, base)
	}

	f.Set(base.Add(time.Minute))
	if got := f.Now(); !got.Equal(base.Add(time.Minute)) {
		t.Fatalf("Now() after forward Set = %v, want %v", got, base.Add(time.Minute))
	}
}
