package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

func testRemote(t *testing.T, handler http.HandlerFunc) *Remote {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRemote(RemoteConfig{BaseURL: ts.URL, APIKey: "test-key"}, logger)
}

func TestRemoteSearch(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if got := req.URL.Query().Get("address"); got != "ilike.*oak*" {
			t.Errorf("address param = %q", got)
		}
		if got := req.URL.Query().Get("order"); got != "created_at.desc" {
			t.Errorf("order param = %q", got)
		}
		if got := req.Header.Get("apikey"); got != "test-key" {
			t.Errorf("apikey header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]locationRow{
			{ID: "u1", Address: "456 Oak Avenue, Boston, MA 02101", Location: "IRVING"},
		})
	})

	got, err := r.Search(context.Background(), "oak")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].HouseNumber != "456" {
		t.Errorf("house number = %q (derived from address)", got[0].HouseNumber)
	}
	if got[0].Meta.Region != "IRVING" {
		t.Errorf("region = %q", got[0].Meta.Region)
	}
}

func TestRemoteSearch_BlankQueryNoRoundTrip(t *testing.T) {
	called := false
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		called = true
	})
	got, err := r.Search(context.Background(), "  ")
	if err != nil || got != nil {
		t.Fatalf("Search = %v, %v", got, err)
	}
	if called {
		t.Error("blank query hit the backend")
	}
}

func TestRemoteSearch_FailureDegradesToEmpty(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	got, err := r.Search(context.Background(), "oak")
	if err != nil {
		t.Fatalf("Search should not propagate read failures, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestRemotePatternMetacharactersEscaped(t *testing.T) {
	var searchParam, findParam string
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Query().Get("limit") {
		case "1":
			findParam = req.URL.Query().Get("address")
		default:
			searchParam = req.URL.Query().Get("address")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]locationRow{})
	})

	if _, err := r.Search(context.Background(), "50% Oak_St*"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if want := `ilike.*50\% Oak\_St\**`; searchParam != want {
		t.Errorf("search address param = %q, want %q", searchParam, want)
	}

	if _, err := r.FindByAddress(context.Background(), `C:\share 100%`); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("FindByAddress: %v", err)
	}
	if want := `ilike.C:\\share 100\%`; findParam != want {
		t.Errorf("find address param = %q, want %q", findParam, want)
	}
}

func TestRemoteGetByID_NotFound(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if got := req.Header.Get("Accept"); got != "application/vnd.pgrst.object+json" {
			t.Errorf("Accept = %q", got)
		}
		http.Error(w, `{"message":"JSON object requested, multiple (or no) rows returned"}`, http.StatusNotAcceptable)
	})
	if _, err := r.GetByID(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoteGetByID_ServiceErrorNormalizedToNotFound(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	if _, err := r.GetByID(context.Background(), "u1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoteSave_Insert(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			t.Errorf("method = %s", req.Method)
		}
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		var body []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &body); err != nil || len(body) != 1 {
			t.Fatalf("body decode: %v (%d rows)", err, len(body))
		}
		// The table owns its timestamp columns; an insert must not send them.
		if _, ok := body[0]["created_at"]; ok {
			t.Errorf("insert body carries created_at: %s", raw)
		}
		if _, ok := body[0]["updated_at"]; ok {
			t.Errorf("insert body carries updated_at: %s", raw)
		}
		var rows []locationRow
		if err := json.Unmarshal(raw, &rows); err != nil {
			t.Fatalf("row decode: %v", err)
		}
		if rows[0].ID == "" {
			t.Error("insert carries no generated key")
		}
		if rows[0].Location != "IRVING" {
			t.Errorf("location = %q", rows[0].Location)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rows)
	})

	content := []models.ContentBlock{{Type: models.BlockText, Data: "A"}, {Type: models.BlockImage, Data: ""}}
	rec, err := r.Save(context.Background(), "", "456 Oak Avenue, Boston, MA 02101", content, models.PlaceMeta{Region: "IRVING"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == "" {
		t.Error("saved record has no id")
	}
	if len(rec.Content) != 2 || rec.Content[0].Data != "A" {
		t.Errorf("content = %+v", rec.Content)
	}
}

func TestRemoteSave_UpdateOverwrites(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPatch {
			t.Errorf("method = %s", req.Method)
		}
		if got := req.URL.Query().Get("id"); got != "eq.u1" {
			t.Errorf("id param = %q", got)
		}
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		var body map[string]json.RawMessage
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("body decode: %v", err)
		}
		// created_at is immutable; a PATCH that sends it would overwrite
		// the column server-side.
		if _, ok := body["created_at"]; ok {
			t.Errorf("update body carries created_at: %s", raw)
		}
		if _, ok := body["updated_at"]; !ok {
			t.Error("update does not refresh updated_at")
		}
		var row locationRow
		if err := json.Unmarshal(raw, &row); err != nil {
			t.Fatalf("row decode: %v", err)
		}
		if row.UpdatedAt.IsZero() {
			t.Error("updated_at is zero")
		}
		row.ID = "u1"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]locationRow{row})
	})

	rec, err := r.Save(context.Background(), "u1", "789 Pine Road, Seattle, WA 98101", nil, models.PlaceMeta{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID != "u1" {
		t.Errorf("id = %q", rec.ID)
	}
}

func TestRemoteSave_FailurePropagates(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "quota exceeded", http.StatusServiceUnavailable)
	})
	_, err := r.Save(context.Background(), "", "1 Somewhere St", nil, models.PlaceMeta{})
	if !errors.Is(err, apperr.ErrBackend) {
		t.Errorf("err = %v, want ErrBackend", err)
	}
}

func TestRemoteSave_EmptyAddress(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		t.Error("validation failure reached the backend")
	})
	if _, err := r.Save(context.Background(), "", "", nil, models.PlaceMeta{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestRemoteDelete(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodDelete {
			t.Errorf("method = %s", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]locationRow{{ID: "u1"}})
	})
	ok, err := r.Delete(context.Background(), "u1")
	if err != nil || !ok {
		t.Errorf("Delete = %v, %v", ok, err)
	}
}

func TestRemoteDelete_MissingRowIsFalse(t *testing.T) {
	r := testRemote(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]locationRow{})
	})
	ok, err := r.Delete(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok {
		t.Error("missing row reported deleted")
	}
}
