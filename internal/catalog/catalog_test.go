package catalog

import "testing"

func TestDefaultCatalogCoversAllStates(t *testing.T) {
	cat := DefaultCatalog()
	for _, state := range []string{"HIGH_ACTIVATION", "LOW_ENERGY", "REGULATED"} {
		actions := cat.ForState(state)
		if len(actions) < 2 {
			t.Fatalf("expected at least 2 actions for %s, got %d", state, len(actions))
		}
	}
}

func TestDefaultActionExists(t *testing.T) {
	cat := DefaultCatalog()
	def := cat.Default()
	if def.ID == "" {
		t.Fatal("default action not found in catalog")
	}
	if def.ID != cat.DefaultActionID {
		t.Fatalf("expected default %s, got %s", cat.DefaultActionID, def.ID)
	}
}

func TestGetUnknownID(t *testing.T) {
	cat := DefaultCatalog()
	if _, ok := cat.Get("no-such-action"); ok {
		t.Fatal("expected lookup miss for unknown id")
	}
}

func TestBoundsContains(t *testing.T) {
	b := DefaultBounds()
	cases := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{1, true},
		{0.5, true},
		{-0.01, false},
		{1.01, false},
	}
	for _, c := range cases {
		if got := b.Contains(c.v); got != c.want {
			t.Fatalf("Contains(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestActionDurationsMatchInstructions(t *testing.T) {
	cat := DefaultCatalog()
	for _, a := range cat.Actions {
		if len(a.Instructions) == 0 {
			t.Fatalf("action %s has no instructions", a.ID)
		}
		if a.Duration <= 0 {
			t.Fatalf("action %s has non-positive duration", a.ID)
		}
	}
}
