// Package draft implements the in-session working copy of a location's
// content blocks. All mutators operate on the draft only; nothing here
// touches persisted state.
package draft

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/starford/raido/internal/models"
)

// Draft is an editable copy of a record's content sequence. Blocks have no
// identity beyond their position; deleting a block shifts later indices down,
// so callers must not cache indices across a delete.
type Draft struct {
	blocks []models.ContentBlock
}

// New takes a deep copy of blocks so the caller's sequence stays pristine
// when the edit session is cancelled.
func New(blocks []models.ContentBlock) *Draft {
	return &Draft{blocks: models.CloneContent(blocks)}
}

// Blocks returns a copy of the current working sequence.
func (d *Draft) Blocks() []models.ContentBlock {
	return models.CloneContent(d.blocks)
}

// Len returns the number of blocks in the draft.
func (d *Draft) Len() int { return len(d.blocks) }

// AddText appends an empty text block.
func (d *Draft) AddText() {
	d.blocks = append(d.blocks, models.ContentBlock{Type: models.BlockText})
}

// AddImage appends an empty image placeholder block.
func (d *Draft) AddImage() {
	d.blocks = append(d.blocks, models.ContentBlock{Type: models.BlockImage})
}

// AddVideo appends an empty video placeholder block.
func (d *Draft) AddVideo() {
	d.blocks = append(d.blocks, models.ContentBlock{Type: models.BlockVideo})
}

// Delete removes the block at index, shifting subsequent blocks down.
func (d *Draft) Delete(index int) error {
	if index < 0 || index >= len(d.blocks) {
		return fmt.Errorf("draft: index %d out of range [0,%d)", index, len(d.blocks))
	}
	d.blocks = append(d.blocks[:index], d.blocks[index+1:]...)
	return nil
}

// SetData replaces the payload of the block at index.
func (d *Draft) SetData(index int, data string) error {
	if index < 0 || index >= len(d.blocks) {
		return fmt.Errorf("draft: index %d out of range [0,%d)", index, len(d.blocks))
	}
	d.blocks[index].Data = data
	return nil
}

// SetFile reads r to completion and stores it on the block at index as a
// data URI. The block is not considered filled until the read completes.
// Only the content type prefix is checked: image blocks accept image/*,
// video blocks accept video/*.
func (d *Draft) SetFile(index int, contentType string, r io.Reader) error {
	if index < 0 || index >= len(d.blocks) {
		return fmt.Errorf("draft: index %d out of range [0,%d)", index, len(d.blocks))
	}
	b := d.blocks[index]
	switch b.Type {
	case models.BlockImage:
		if !strings.HasPrefix(contentType, "image/") {
			return fmt.Errorf("draft: image block rejects content type %q", contentType)
		}
	case models.BlockVideo:
		if !strings.HasPrefix(contentType, "video/") {
			return fmt.Errorf("draft: video block rejects content type %q", contentType)
		}
	default:
		return fmt.Errorf("draft: block %d (%s) does not accept files", index, b.Type)
	}

	uri, err := DataURI(contentType, r)
	if err != nil {
		return err
	}
	d.blocks[index].Data = uri
	return nil
}

// DataURI reads r to completion and returns a base64 data URI with the given
// content type.
func DataURI(contentType string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("draft: read file: %w", err)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
