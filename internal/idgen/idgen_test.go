package idgen

import "testing"

func TestListingIDGenerator(t *testing.T) {
	g := NewDefaultListingIDGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if !g.Validate(id) {
			t.Fatalf("Validate(%q) = false", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}

	for _, id := range []string{"", "PROP-", "PROP-short", "XXXX-7K2M9QX4TB", "PROP-7K2M9QX4Tb"} {
		if g.Validate(id) {
			t.Errorf("Validate(%q) = true", id)
		}
	}
}

func TestNewListingIDGeneratorBounds(t *testing.T) {
	if _, err := NewListingIDGenerator("P", 2, DefaultListingAlphabet); err == nil {
		t.Error("expected error for size 2")
	}
	if _, err := NewListingIDGenerator("P", 8, "A"); err == nil {
		t.Error("expected error for single-letter alphabet")
	}
}

func TestUUIDGenerator(t *testing.T) {
	g := NewUUIDGenerator()
	id, err := g.Generate()
	if err != nil || !g.Validate(id) {
		t.Fatalf("Generate() = %q, %v", id, err)
	}
	if g.Validate("not-a-uuid") {
		t.Error("Validate accepted garbage")
	}
}
