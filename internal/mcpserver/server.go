// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/access"
	"github.com/starford/raido/internal/locationservice"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/search"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *locationservice.Service
	engine *search.Engine
	gate   *access.Gate
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *locationservice.Service, engine *search.Engine, gate *access.Gate) *Server {
	s := &Server{svc: svc, engine: engine, gate: gate}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_locations",
		mcp.WithDescription("Search saved delivery locations and, when a region is given, nearby places."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text (address fragment or house number)")),
		mcp.WithString("region", mcp.Description("Region for nearby place results; required when a place provider is configured")),
	), s.searchLocations)

	s.mcp.AddTool(mcp.NewTool("get_location",
		mcp.WithDescription("Read a saved location record with its content blocks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record identifier (address slug or uuid)")),
	), s.getLocation)

	s.mcp.AddTool(mcp.NewTool("save_location",
		mcp.WithDescription("Create or overwrite a location record. Content MUST be a JSON array of "+
			"content blocks following the block format contract. Read the contract first via "+
			"the get_block_contract tool or the raido://block-format resource."),
		mcp.WithString("id", mcp.Description("Existing record id to overwrite (empty to create)")),
		mcp.WithString("address", mcp.Required(), mcp.Description("Full delivery address")),
		mcp.WithString("content", mcp.Description("JSON array of content blocks")),
	), s.saveLocation)

	s.mcp.AddTool(mcp.NewTool("delete_location",
		mcp.WithDescription("Delete a saved location record."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record identifier")),
	), s.deleteLocation)

	s.mcp.AddTool(mcp.NewTool("list_regions",
		mcp.WithDescription("List regions with configured access codes."),
	), s.listRegions)

	s.mcp.AddTool(mcp.NewTool("validate_access",
		mcp.WithDescription("Check a region access code. Returns granted, denied, or unconfigured."),
		mcp.WithString("region", mcp.Required(), mcp.Description("Region name")),
		mcp.WithString("code", mcp.Required(), mcp.Description("Entered access code")),
	), s.validateAccess)

	s.mcp.AddTool(mcp.NewTool("get_block_contract",
		mcp.WithDescription("Returns the canonical content block format contract. "+
			"Call this before creating or updating records to ensure correct structure."),
	), s.getBlockContract)

	s.mcp.AddTool(mcp.NewTool("encode_attachment",
		mcp.WithDescription("Fetch an image or video from a URL (or decode a data URI) and return it "+
			"as a ready-to-insert content block."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or base64 data URI of the file")),
	), s.encodeAttachment)

	// Resource: block format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://block-format", "Content Block Contract",
			mcp.WithResourceDescription("Canonical content block format that all records must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readBlockContractResource,
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

func (s *Server) searchLocations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	region := ""
	if v, rErr := req.RequireString("region"); rErr == nil {
		region = v
	}
	results, err := s.engine.Search(ctx, query, region)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := req.RequireString("address")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := ""
	if v, idErr := req.RequireString("id"); idErr == nil {
		id = v
	}

	var content []models.ContentBlock
	if raw, cErr := req.RequireString("content"); cErr == nil && raw != "" {
		if err := json.Unmarshal([]byte(raw), &content); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid content blocks: %v", err)), nil
		}
	}

	rec, err := s.svc.Save(ctx, id, address, content, models.PlaceMeta{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", rec.ID)), nil
}

func (s *Server) deleteLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ok, err := s.svc.Delete(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) listRegions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	regions := s.gate.Regions()
	if len(regions) == 0 {
		return mcp.NewToolResultText("no regions configured"), nil
	}
	return mcp.NewToolResultText(strings.Join(regions, "\n")), nil
}

func (s *Server) validateAccess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	region, err := req.RequireString("region")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.gate.Validate(region, code).String()), nil
}

func (s *Server) getBlockContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BlockFormatContract), nil
}

func (s *Server) readBlockContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://block-format",
			MIMEType: "text/markdown",
			Text:     BlockFormatContract,
		},
	}, nil
}
