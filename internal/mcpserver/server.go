// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the organizer to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/taborganizer/internal/models"
	"github.com/starford/taborganizer/internal/organizer"
)

// ContractURI is the resource URI of the snapshot format contract.
const ContractURI = "taborganizer://snapshot-format"

// Server wraps the MCP server with organizer tools.
type Server struct {
	mcp   *server.MCPServer
	store *organizer.Store
	now   func() time.Time
}

// New creates a new MCP server with all organizer tools registered.
func New(store *organizer.Store, version string) *Server {
	s := &Server{store: store, now: time.Now}

	s.mcp = server.NewMCPServer(
		"TabOrganizer",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_links",
		mcp.WithDescription("Case-insensitive search over library, category and link titles, descriptions, urls and quick notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchLinks)

	s.mcp.AddTool(mcp.NewTool("list_libraries",
		mcp.WithDescription("List libraries with their categories and link counts. The current library is marked."),
	), s.listLibraries)

	s.mcp.AddTool(mcp.NewTool("add_link",
		mcp.WithDescription("Append a link to a category. The link starts with all progress flags cleared."),
		mcp.WithString("library", mcp.Description("Library key (defaults to the current library)")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category key")),
		mcp.WithString("url", mcp.Required(), mcp.Description("Link URL")),
		mcp.WithString("title", mcp.Description("Display title (defaults to Untitled)")),
		mcp.WithString("description", mcp.Description("Optional description")),
	), s.addLink)

	s.mcp.AddTool(mcp.NewTool("set_link_status_level",
		mcp.WithDescription("Set the progress ladder of a link: every stage up to and including the level is set, later stages are cleared."),
		mcp.WithString("library", mcp.Description("Library key (defaults to the current library)")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category key")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based link index within the category")),
		mcp.WithString("level", mcp.Required(),
			mcp.Enum("none", "watching", "watched", "understood", "applied"),
			mcp.Description("Target stage")),
	), s.setLinkStatusLevel)

	s.mcp.AddTool(mcp.NewTool("export_document",
		mcp.WithDescription("Return a full export of every library, including progress and notes."),
	), s.exportDocument)

	s.mcp.AddTool(mcp.NewTool("get_snapshot_contract",
		mcp.WithDescription("Returns the shareable snapshot format. "+
			"Read it before producing data meant for import as a shared library."),
	), s.getSnapshotContract)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Snapshot Format Contract",
			mcp.WithResourceDescription("Portable format of a shared library subset."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// libraryArg resolves the optional library argument to a key.
func (s *Server) libraryArg(req mcp.CallToolRequest) string {
	if lib := req.GetString("library", ""); lib != "" {
		return lib
	}
	var key string
	s.store.Read(func(doc *models.Document) { key = doc.CurrentLibrary })
	return key
}

func (s *Server) searchLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits := s.store.Search(query)
	if len(hits) == 0 {
		return mcp.NewToolResultText("no matches found"), nil
	}
	return jsonResult(hits)
}

func (s *Server) listLibraries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	s.store.Read(func(doc *models.Document) {
		for p := doc.Libraries.Oldest(); p != nil; p = p.Next() {
			marker := ""
			if p.Key == doc.CurrentLibrary {
				marker = " (current)"
			}
			fmt.Fprintf(&b, "%s %s [%s]%s\n", p.Value.Icon, p.Value.Name, p.Key, marker)
			for c := p.Value.Categories.Oldest(); c != nil; c = c.Next() {
				fmt.Fprintf(&b, "  - %s [%s]: %d links\n", c.Value.Name, c.Key, len(c.Value.Links))
			}
		}
	})
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) addLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lib := s.libraryArg(req)
	idx, err := s.store.AddLink(lib, cat, organizer.LinkInput{
		URL:         url,
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s/%s[%d]", lib, cat, idx)), nil
}

func (s *Server) setLinkStatusLevel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idx, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	level, err := models.ParseLevel(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lib := s.libraryArg(req)
	if err := s.store.SetStatusLevel(lib, cat, idx, level); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("status: %s", level)), nil
}

func (s *Server) exportDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exp, err := s.store.Export(nil, s.now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(exp)
}

func (s *Server) getSnapshotContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SnapshotContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     SnapshotContract,
		},
	}, nil
}
