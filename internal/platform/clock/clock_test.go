package clock

import (
	"testing"
	"time"
)

func TestFixed_SetAndAdvance(t *testing.T) {
	start := time.Date(2025, 3, 10, 7, 55, 0, 0, time.UTC)
	c := NewFixed(start)

	if !c.Now().Equal(start) {
		t.Fatalf("expected %v, got %v", start, c.Now())
	}

	c.Advance(3 * time.Minute)
	if want := start.Add(3 * time.Minute); !c.Now().Equal(want) {
		t.Fatalf("expected %v after advance, got %v", want, c.Now())
	}

	other := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	c.Set(other)
	if !c.Now().Equal(other) {
		t.Fatalf("expected %v after set, got %v", other, c.Now())
	}
}

func TestSystem_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	now := System{Location: loc}.Now()
	if now.Location() != loc {
		t.Fatalf("expected location %v, got %v", loc, now.Location())
	}
}

func TestFunc_AdaptsFunction(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var c Clock = Func(func() time.Time { return at })
	if !c.Now().Equal(at) {
		t.Fatalf("expected %v, got %v", at, c.Now())
	}
}
