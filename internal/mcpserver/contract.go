package mcpserver

// BlockFormatContract describes the canonical content block format that
// LLM consumers should follow when creating or updating location records.
const BlockFormatContract = `# Raido Content Block Contract

Every location record stores its delivery notes as an ordered JSON array of
content blocks. Tools that write records MUST follow this structure.

## Structure

` + "```" + `json
[
  {"type": "text",  "data": "Gate code is 4411, leave at side door."},
  {"type": "image", "data": "data:image/png;base64,iVBORw0KG..."},
  {"type": "video", "data": ""}
]
` + "```" + `

## Rules

1. **type** is one of ` + "`" + `text` + "`" + `, ` + "`" + `image` + "`" + `, ` + "`" + `video` + "`" + `. Nothing else is accepted.
2. **text blocks** carry plain UTF-8 text in ` + "`" + `data` + "`" + `. Markdown is not interpreted.
3. **image and video blocks** carry either an empty string (a placeholder the
   courier fills in later) or a complete base64 data URI
   (` + "`" + `data:image/...;base64,` + "`" + ` or ` + "`" + `data:video/...;base64,` + "`" + `).
   Only ` + "`" + `image/*` + "`" + ` and ` + "`" + `video/*` + "`" + ` media types are accepted.
4. **Order matters.** Blocks render top to bottom exactly as stored. Deleting
   a block shifts the ones after it up; there is no reordering operation.
5. **Saving replaces everything.** A save overwrites the record's whole block
   array; there is no partial patch. Read the record first, modify the array,
   then save it back.
6. Use the ` + "`" + `encode_attachment` + "`" + ` tool to turn a file URL into a valid
   image or video block instead of building data URIs by hand.

## Example

To add a note to an existing record:

1. ` + "`" + `get_location` + "`" + ` with the record id.
2. Append ` + "`" + `{"type": "text", "data": "Ring twice."}` + "`" + ` to the content array.
3. ` + "`" + `save_location` + "`" + ` with the same id, address, and the full array.
`
