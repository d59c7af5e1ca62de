package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/models"
)

func TestLoad_MissingFile(t *testing.T) {
	f, err := New(filepath.Join(t.TempDir(), "locations.json"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	records, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}
}

func TestWriteAndLoad_PreservesOrder(t *testing.T) {
	f, err := New(filepath.Join(t.TempDir(), "data", "locations.json"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := []models.LocationRecord{
		{ID: "456-oak-avenue", Address: "456 Oak Avenue", HouseNumber: "456"},
		{ID: "123-main-street", Address: "123 Main Street", HouseNumber: "123",
			Content: []models.ContentBlock{{Type: models.BlockText, Data: "Ring doorbell."}}},
	}
	if err := f.Write(in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].ID != "456-oak-avenue" || out[1].ID != "123-main-street" {
		t.Errorf("order not preserved: %s, %s", out[0].ID, out[1].ID)
	}
	if len(out[1].Content) != 1 || out[1].Content[0].Data != "Ring doorbell." {
		t.Errorf("content not round-tripped: %+v", out[1].Content)
	}
}

func TestWrite_ReplacesWholeFile(t *testing.T) {
	f, err := New(filepath.Join(t.TempDir(), "locations.json"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Write([]models.LocationRecord{{ID: "a", Address: "A"}, {ID: "b", Address: "B"}}); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := f.Write([]models.LocationRecord{{ID: "b", Address: "B"}}); err != nil {
		t.Fatalf("second Write: %v", err)
	}
	out, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 1 || out[0].ID != "b" {
		t.Errorf("out = %+v, want only b", out)
	}
}
