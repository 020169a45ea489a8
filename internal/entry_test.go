package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/starford/taborganizer/internal/importer"
	"github.com/starford/taborganizer/internal/remote"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Cache.Dir = t.TempDir()
	cfg.Watch.Enabled = false
	return cfg
}

func TestImportThenExport(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	quiet := WithLogOutput(io.Discard)

	raw := []byte(`{"libraries":{"lib_a":{"name":"Reading","icon":"📚","categories":{
		"cat_a":{"name":"Papers","links":[{"url":"https://example.com/p","title":"Paper"}]}}}}}`)
	res, err := Import(ctx, raw, importer.PolicyMerge, WithConfig(cfg), quiet)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 1 || res.Links != 1 {
		t.Fatalf("result = %+v", res)
	}

	var out bytes.Buffer
	if err := Export(ctx, &out, WithConfig(cfg), quiet); err != nil {
		t.Fatal(err)
	}
	var exp struct {
		TotalLibraries int `json:"totalLibraries"`
	}
	if err := json.Unmarshal(out.Bytes(), &exp); err != nil {
		t.Fatal(err)
	}
	// Default General library plus the imported one.
	if exp.TotalLibraries != 2 {
		t.Errorf("totalLibraries = %d, want 2", exp.TotalLibraries)
	}
}

func TestImport_SyncsToRemote(t *testing.T) {
	cfg := testConfig(t)
	cfg.Remote = RemoteConfig{Driver: remote.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "remote.db")}
	cfg.Session = SessionConfig{Mode: SessionModeAuthenticated, UserID: "u1", Email: "u1@example.com"}
	ctx := context.Background()

	raw := []byte(`{"categories":{"c1":{"name":"Old","links":[{"url":"https://x.com"}]}}}`)
	if _, err := Import(ctx, raw, importer.PolicyRename, WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatal(err)
	}

	b, err := remote.OpenSQLite(cfg.Remote.SQLitePath)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	rec, err := b.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("remote record: %v", err)
	}
	if !bytes.Contains(rec.Data, []byte("Imported")) {
		t.Errorf("remote data = %s", rec.Data)
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}
