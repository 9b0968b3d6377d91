package sequence

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistry_New(t *testing.T) {
	reg := NewRegistry(map[string]Factory{
		"Home": func() Step { return fixed("Home", "h") },
	})

	a, err := reg.New("Home")
	if err != nil {
		t.Fatalf("New(Home) error: %v", err)
	}
	b, _ := reg.New("Home")
	if a == b {
		t.Error("New() should return a fresh step each call")
	}

	if _, err := reg.New("Nope"); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("New(Nope) = %v, want ErrUnknownStep", err)
	}
}

func TestRegistry_Immutable(t *testing.T) {
	factories := map[string]Factory{
		"Home": func() Step { return fixed("Home") },
	}
	reg := NewRegistry(factories)
	delete(factories, "Home")
	factories["Later"] = func() Step { return fixed("Later") }

	if !reg.Has("Home") || reg.Has("Later") {
		t.Errorf("registry changed with its source map: %v", reg.Names())
	}
}

func TestRegistry_Build(t *testing.T) {
	reg := NewRegistry(map[string]Factory{
		"Home":   func() Step { return fixed("Home") },
		"Pickup": func() Step { return fixed("Left Pickup") },
	})

	seq, unknown := reg.Build([]string{"Home", "Bogus", "Pickup", "Home", "Other"})

	if got := names(seq.Steps()); !slices.Equal(got, []string{"Home", "Left Pickup", "Home"}) {
		t.Errorf("sequence = %v", got)
	}
	if !slices.Equal(unknown, []string{"Bogus", "Other"}) {
		t.Errorf("unknown = %v, want [Bogus Other]", unknown)
	}
	if seq.Steps()[0] == seq.Steps()[2] {
		t.Error("repeated names should build distinct steps")
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry(map[string]Factory{
		"Wait": nil, "Home": nil, "BackPush": nil,
	})
	if got := reg.Names(); !slices.Equal(got, []string{"BackPush", "Home", "Wait"}) {
		t.Errorf("Names() = %v", got)
	}
}
