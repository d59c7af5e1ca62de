package draft

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/models"
)

func TestNew_DeepCopy(t *testing.T) {
	src := []models.ContentBlock{{Type: models.BlockText, Data: "original"}}
	d := New(src)

	if err := d.SetData(0, "edited"); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if src[0].Data != "original" {
		t.Errorf("source mutated: %q", src[0].Data)
	}
	if d.Blocks()[0].Data != "edited" {
		t.Errorf("draft not mutated: %q", d.Blocks()[0].Data)
	}
}

func TestAddAndDelete_ShiftsIndices(t *testing.T) {
	d := New(nil)
	d.AddText()
	d.AddImage()
	d.AddText()
	_ = d.SetData(0, "a")
	_ = d.SetData(2, "c")

	if err := d.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	blocks := d.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("len = %d, want 2", len(blocks))
	}
	// The block that was at index 2 is now at index 1.
	if blocks[1].Data != "c" || blocks[1].Type != models.BlockText {
		t.Errorf("blocks[1] = %+v", blocks[1])
	}
}

func TestDelete_OutOfRange(t *testing.T) {
	d := New(nil)
	if err := d.Delete(0); err == nil {
		t.Error("expected error deleting from empty draft")
	}
}

func TestSetFile_ImageBlock(t *testing.T) {
	d := New(nil)
	d.AddImage()
	if d.Blocks()[0].Filled() {
		t.Error("placeholder block reported filled")
	}

	err := d.SetFile(0, "image/png", strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatalf("SetFile: %v", err)
	}
	got := d.Blocks()[0].Data
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("data = %q, want data URI prefix", got)
	}
	if !d.Blocks()[0].Filled() {
		t.Error("filled block reported empty")
	}
}

func TestSetFile_RejectsWrongContentType(t *testing.T) {
	d := New(nil)
	d.AddImage()
	if err := d.SetFile(0, "video/mp4", strings.NewReader("x")); err == nil {
		t.Error("image block accepted video content type")
	}

	d.AddVideo()
	if err := d.SetFile(1, "image/png", strings.NewReader("x")); err == nil {
		t.Error("video block accepted image content type")
	}

	d.AddText()
	if err := d.SetFile(2, "image/png", strings.NewReader("x")); err == nil {
		t.Error("text block accepted a file")
	}
}
