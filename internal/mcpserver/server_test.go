package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/organizer"
	"github.com/starford/taborganizer/internal/persist"
	"github.com/starford/taborganizer/internal/testutil"
)

func testServer(t *testing.T) (*Server, *organizer.Store, string) {
	t.Helper()
	store, _ := testutil.TestStore(t, persist.Config{})
	lib := store.Document().CurrentLibrary
	cat, err := store.SaveCategory(lib, "", organizer.CategoryInput{Name: "Talks"})
	if err != nil {
		t.Fatal(err)
	}
	return New(store, "test"), store, cat
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_links":
		result, err = srv.searchLinks(ctx, req)
	case "list_libraries":
		result, err = srv.listLibraries(ctx, req)
	case "add_link":
		result, err = srv.addLink(ctx, req)
	case "set_link_status_level":
		result, err = srv.setLinkStatusLevel(ctx, req)
	case "export_document":
		result, err = srv.exportDocument(ctx, req)
	case "get_snapshot_contract":
		result, err = srv.getSnapshotContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddLinkAndSetLevel(t *testing.T) {
	srv, store, cat := testServer(t)
	lib := store.Document().CurrentLibrary

	r := callTool(t, srv, "add_link", map[string]interface{}{
		"category": cat,
		"url":      "https://go.dev/talks",
		"title":    "Go Talks",
	})
	if r.IsError || !strings.HasPrefix(resultText(r), "added: ") {
		t.Fatalf("add_link = %q", resultText(r))
	}

	r = callTool(t, srv, "set_link_status_level", map[string]interface{}{
		"category": cat,
		"index":    float64(0),
		"level":    "watched",
	})
	if r.IsError {
		t.Fatalf("set_link_status_level = %q", resultText(r))
	}
	got := store.Document().Category(lib, cat).Links[0]
	if got.Title != "Go Talks" || got.Status != models.StatusAt(models.LevelWatched) {
		t.Errorf("link = %+v", got)
	}
}

func TestSetLevel_Errors(t *testing.T) {
	srv, _, cat := testServer(t)
	r := callTool(t, srv, "set_link_status_level", map[string]interface{}{
		"category": cat, "index": float64(3), "level": "watched",
	})
	if !r.IsError {
		t.Error("expected error for missing link")
	}
	r = callTool(t, srv, "set_link_status_level", map[string]interface{}{
		"category": cat, "index": float64(0), "level": "finished",
	})
	if !r.IsError {
		t.Error("expected error for unknown level")
	}
}

func TestSearchAndList(t *testing.T) {
	srv, _, cat := testServer(t)
	_ = callTool(t, srv, "add_link", map[string]interface{}{"category": cat, "url": "https://example.com/needle"})

	r := callTool(t, srv, "search_links", map[string]interface{}{"query": "NEEDLE"})
	if !strings.Contains(resultText(r), "needle") {
		t.Errorf("search = %q", resultText(r))
	}
	r = callTool(t, srv, "search_links", map[string]interface{}{"query": "haystack"})
	if resultText(r) != "no matches found" {
		t.Errorf("search miss = %q", resultText(r))
	}
	r = callTool(t, srv, "search_links", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without query")
	}

	text := resultText(callTool(t, srv, "list_libraries", map[string]interface{}{}))
	if !strings.Contains(text, "General") || !strings.Contains(text, "(current)") || !strings.Contains(text, "Talks") {
		t.Errorf("list = %q", text)
	}
}

func TestExportAndContract(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "export_document", map[string]interface{}{})
	var exp struct {
		Version        string
		TotalLibraries int
	}
	if err := json.Unmarshal([]byte(resultText(r)), &exp); err != nil || exp.TotalLibraries != 1 || exp.Version != "3.0" {
		t.Errorf("export = %q", resultText(r))
	}
	if !strings.Contains(resultText(callTool(t, srv, "get_snapshot_contract", nil)), "link_type") {
		t.Error("contract missing link_type")
	}
}
