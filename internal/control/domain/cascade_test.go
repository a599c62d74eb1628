package control

import "testing"

func TestOrderPutsOuterBeforeInner(t *testing.T) {
	configs := []Config{
		{ID: "inner1", CascadeLevel: LevelInner, ParentID: "outer1"},
		{ID: "outer1", CascadeLevel: LevelOuter},
		{ID: "standalone", CascadeLevel: LevelStandalone},
	}

	ordered, skipped := Order(configs)
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}
	position := make(map[string]int, len(ordered))
	for i, cfg := range ordered {
		position[cfg.ID] = i
	}
	if len(position) != 3 {
		t.Fatalf("expected 3 ordered loops, got %d", len(position))
	}
	if position["outer1"] > position["inner1"] {
		t.Fatal("outer loop must come before its inner child")
	}
}

func TestOrderSkipsOrphanedInner(t *testing.T) {
	configs := []Config{
		{ID: "inner1", CascadeLevel: LevelInner, ParentID: "missing"},
		{ID: "outer1", CascadeLevel: LevelOuter},
	}
	ordered, skipped := Order(configs)
	if _, ok := skipped["inner1"]; !ok {
		t.Fatal("inner loop with missing parent must be skipped")
	}
	if len(ordered) != 1 || ordered[0].ID != "outer1" {
		t.Fatalf("remaining loops must still be ordered, got %+v", ordered)
	}
}

func TestOrderSkipsInnerWithNonOuterParent(t *testing.T) {
	configs := []Config{
		{ID: "standalone", CascadeLevel: LevelStandalone},
		{ID: "inner1", CascadeLevel: LevelInner, ParentID: "standalone"},
	}
	_, skipped := Order(configs)
	if _, ok := skipped["inner1"]; !ok {
		t.Fatal("inner loop whose parent is not an outer loop must be skipped")
	}
}
