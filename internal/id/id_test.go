package id

import (
	"strings"
	"testing"
)

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		k, err := Generate(CategoryPrefix)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if seen[k] {
			t.Fatalf("duplicate key %s", k)
		}
		seen[k] = true
	}
}

func TestGenerate_Format(t *testing.T) {
	k := MustGenerate(LibraryPrefix)
	if !strings.HasPrefix(k, "lib_") {
		t.Errorf("key = %q, want lib_ prefix", k)
	}
	if len(k) != len("lib_")+21 {
		t.Errorf("len(key) = %d, want %d", len(k), len("lib_")+21)
	}
}

func TestSequence(t *testing.T) {
	gen := Sequence()
	if got := gen("lib"); got != "lib_1" {
		t.Errorf("first = %q", got)
	}
	if got := gen("cat"); got != "cat_2" {
		t.Errorf("second = %q", got)
	}
}
