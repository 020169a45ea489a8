package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempCache(t *testing.T, opts ...FSOption) *FS {
	t.Helper()
	fs, err := NewFS(filepath.Join(t.TempDir(), "cache"), opts...)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestSetAndGet(t *testing.T) {
	s := tempCache(t)
	if err := s.Set("tabOrganizer", `{"libraries":{}}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get("tabOrganizer")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != `{"libraries":{}}` {
		t.Errorf("value = %q", got)
	}
}

func TestGet_Missing(t *testing.T) {
	s := tempCache(t)
	_, ok, err := s.Get("nothing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected ok=false for missing key")
	}
}

func TestSet_Overwrites(t *testing.T) {
	s := tempCache(t)
	_ = s.Set("k", "one")
	_ = s.Set("k", "two")
	got, _, _ := s.Get("k")
	if got != "two" {
		t.Errorf("value = %q, want two", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempCache(t)
	_ = s.Set("k", "v")
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Error("key still present after delete")
	}
	if err := s.Delete("k"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestKeys_IgnoresTempAndForeignFiles(t *testing.T) {
	s := tempCache(t)
	_ = s.Set("b", "1")
	_ = s.Set("a", "2")
	_ = os.WriteFile(filepath.Join(s.Root(), ".taborg-tmp-123"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0o644)

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if strings.Join(keys, ",") != "a,b" {
		t.Errorf("keys = %v, want [a b]", keys)
	}
}

func TestPath_RejectsTraversal(t *testing.T) {
	s := tempCache(t)
	for _, k := range []string{"../escape", "a/b", "", ".hidden"} {
		if err := s.Set(k, "x"); err == nil {
			t.Errorf("Set(%q) should fail", k)
		}
	}
}

func TestQuota(t *testing.T) {
	s := tempCache(t, WithQuota(10))
	if err := s.Set("a", "12345"); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if err := s.Set("a", "1234567890"); err != nil {
		t.Fatalf("replacing a value should only count the new size: %v", err)
	}
	err := s.Set("b", "x")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	_ = m.Set("k", "v")
	if v, ok, _ := m.Get("k"); !ok || v != "v" {
		t.Errorf("Get = %q %v", v, ok)
	}
	m.SetErr = ErrQuotaExceeded
	if err := m.Set("k", "w"); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("err = %v", err)
	}
}
