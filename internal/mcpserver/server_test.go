package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/access"
	"github.com/starford/raido/internal/locationservice"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/places"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	local, _ := testutil.TestLocal(t)
	svc := locationservice.NewService(local, nil)
	engine := search.NewEngine(local, nil, testutil.Logger())
	gate := access.NewGate(map[string]string{
		"IRVING":   "45678",
		"KENTUCKY": "56789",
	})
	return New(svc, engine, gate)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_locations":
		result, err = srv.searchLocations(ctx, req)
	case "get_location":
		result, err = srv.getLocation(ctx, req)
	case "save_location":
		result, err = srv.saveLocation(ctx, req)
	case "delete_location":
		result, err = srv.deleteLocation(ctx, req)
	case "list_regions":
		result, err = srv.listRegions(ctx, req)
	case "validate_access":
		result, err = srv.validateAccess(ctx, req)
	case "get_block_contract":
		result, err = srv.getBlockContract(ctx, req)
	case "encode_attachment":
		result, err = srv.encodeAttachment(ctx, req)
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

func TestSaveAndGetLocation(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "save_location", map[string]interface{}{
		"address": "123 Main Street",
		"content": `[{"type":"text","data":"gate code 4411"}]`,
	})
	text := resultText(r)
	if text != "saved: 123-main-street" {
		t.Errorf("save result = %q", text)
	}

	r = callTool(t, srv, "get_location", map[string]interface{}{
		"id": "123-main-street",
	})
	var rec models.LocationRecord
	if err := json.Unmarshal([]byte(resultText(r)), &rec); err != nil {
		t.Fatalf("get result not a record: %v", err)
	}
	if rec.HouseNumber != "123" {
		t.Errorf("house number = %q", rec.HouseNumber)
	}
	if len(rec.Content) != 1 || rec.Content[0].Data != "gate code 4411" {
		t.Errorf("content = %+v", rec.Content)
	}
}

func TestSaveLocation_InvalidBlocks(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "save_location", map[string]interface{}{
		"address": "5 Oak Lane",
		"content": `[{"type":"audio","data":"x"}]`,
	})
	if !r.IsError {
		t.Error("expected error for unknown block type")
	}

	r = callTool(t, srv, "save_location", map[string]interface{}{
		"address": "5 Oak Lane",
		"content": `not json`,
	})
	if !r.IsError {
		t.Error("expected error for malformed content")
	}
}

func TestSearchLocations(t *testing.T) {
	srv := testServer(t)
	_ = callTool(t, srv, "save_location", map[string]interface{}{
		"address": "742 Evergreen Terrace",
	})

	r := callTool(t, srv, "search_locations", map[string]interface{}{
		"query": "evergreen",
	})
	if !strings.Contains(resultText(r), "742-evergreen-terrace") {
		t.Errorf("search result = %q", resultText(r))
	}
}

type stubProvider struct {
	found []places.Place
}

func (s *stubProvider) GeocodeRegion(_ context.Context, _ string) (places.Area, error) {
	return places.Area{Center: places.LatLng{Lat: 32.8, Lng: -96.9}, Radius: 20000}, nil
}

func (s *stubProvider) TextSearch(_ context.Context, _ string, _ places.Area) ([]places.Place, error) {
	return s.found, nil
}

func (s *stubProvider) Details(_ context.Context, _ string) (places.Place, error) {
	return places.Place{}, nil
}

func TestSearchLocationsRegionRequiredWithProvider(t *testing.T) {
	local, _ := testutil.TestLocal(t)
	svc := locationservice.NewService(local, nil)
	prov := &stubProvider{found: []places.Place{
		{PlaceID: "p1", Name: "Depot", Address: "1 Depot Way"},
	}}
	engine := search.NewEngine(local, prov, testutil.Logger())
	srv := New(svc, engine, access.NewGate(nil))

	r := callTool(t, srv, "search_locations", map[string]interface{}{
		"query": "depot",
	})
	if !r.IsError {
		t.Error("expected error when no region given and a provider is configured")
	}

	r = callTool(t, srv, "search_locations", map[string]interface{}{
		"query":  "depot",
		"region": "IRVING",
	})
	if r.IsError {
		t.Fatalf("search with region failed: %q", resultText(r))
	}
	if !strings.Contains(resultText(r), "Depot") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestGetLocationMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_location", map[string]interface{}{"id": "no-such-place"})
	if !r.IsError {
		t.Error("expected error for missing record")
	}
}

func TestDeleteLocation(t *testing.T) {
	srv := testServer(t)
	_ = callTool(t, srv, "save_location", map[string]interface{}{"address": "9 Pine Court"})

	r := callTool(t, srv, "delete_location", map[string]interface{}{"id": "9-pine-court"})
	if resultText(r) != "deleted: 9-pine-court" {
		t.Errorf("delete result = %q", resultText(r))
	}

	r = callTool(t, srv, "delete_location", map[string]interface{}{"id": "9-pine-court"})
	if !r.IsError {
		t.Error("expected error deleting a missing record")
	}
}

func TestListRegionsAndValidateAccess(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_regions", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "IRVING") || !strings.Contains(text, "KENTUCKY") {
		t.Errorf("regions = %q", text)
	}

	cases := []struct {
		region, code, want string
	}{
		{"IRVING", "45678", "granted"},
		{"IRVING", "00000", "denied"},
		{"ATLANTA", "45678", "unconfigured"},
	}
	for _, tc := range cases {
		r = callTool(t, srv, "validate_access", map[string]interface{}{
			"region": tc.region,
			"code":   tc.code,
		})
		if resultText(r) != tc.want {
			t.Errorf("validate(%s, %s) = %q, want %q", tc.region, tc.code, resultText(r), tc.want)
		}
	}
}

func TestGetBlockContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_block_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Content Block Contract") {
		t.Error("contract text missing")
	}
}

func TestEncodeAttachment_DataURI(t *testing.T) {
	srv := testServer(t)

	encoded := base64.StdEncoding.EncodeToString([]byte("fake-png"))
	r := callTool(t, srv, "encode_attachment", map[string]interface{}{
		"url": "data:image/png;base64," + encoded,
	})
	if r.IsError {
		t.Fatalf("encode failed: %s", resultText(r))
	}
	var res encodeResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if res.Block.Type != models.BlockImage {
		t.Errorf("block type = %q, want image", res.Block.Type)
	}
	if !strings.HasPrefix(res.Block.Data, "data:image/png;base64,") {
		t.Errorf("block data = %q", res.Block.Data)
	}
}

func TestEncodeAttachment_RejectsOtherTypes(t *testing.T) {
	srv := testServer(t)

	encoded := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake"))
	r := callTool(t, srv, "encode_attachment", map[string]interface{}{
		"url": "data:application/pdf;base64," + encoded,
	})
	if !r.IsError {
		t.Error("expected error for pdf attachment")
	}
}
