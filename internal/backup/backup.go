// Package backup encodes the whole tracker state as one JSON document and
// restores it as a sparse overlay.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/reforma-dev/reforma/internal/asset"
	"github.com/reforma-dev/reforma/internal/record"
)

// Version is written to every exported document.
const Version = "1.0"

// Reserved document keys.
const (
	keyVersion    = "_version"
	keyExportedAt = "_exportedAt"
	keyImages     = "_images"
)

var (
	// ErrInvalidFile means the input is not a JSON object.
	ErrInvalidFile = errors.New("invalid backup file")
	// ErrInvalidBackup means the document carries no version tag.
	ErrInvalidBackup = errors.New("malformed backup: missing version")
)

// Snapshotter reads raw persisted sections.
type Snapshotter interface {
	ReadSection(section string) json.RawMessage
}

// Restorer overwrites raw persisted sections.
type Restorer interface {
	WriteSection(section string, data json.RawMessage) error
}

// AssetImporter upserts images.
type AssetImporter interface {
	ImportAll(ctx context.Context, assets []asset.Asset) error
}

// Document is a full backup. A nil section is absent; a section holding the
// JSON literal null is present but empty, and both leave existing data alone
// on import.
type Document struct {
	Sections   map[string]json.RawMessage
	ExportedAt string
	Version    string
	Images     []asset.Asset
}

// Export reads every section as stored. Unreadable sections export as null.
func Export(src Snapshotter, images []asset.Asset, now time.Time) Document {
	doc := Document{
		Sections:   make(map[string]json.RawMessage, len(record.Sections())),
		ExportedAt: record.Timestamp(now),
		Version:    Version,
		Images:     images,
	}
	for _, name := range record.Sections() {
		raw := src.ReadSection(name)
		if raw == nil {
			raw = json.RawMessage("null")
		}
		doc.Sections[name] = raw
	}
	if doc.Images == nil {
		doc.Images = []asset.Asset{}
	}
	return doc
}

// MarshalJSON writes sections in their fixed order, then the reserved keys.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	field := func(key string, value []byte) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
	}

	for _, name := range record.Sections() {
		raw, ok := d.Sections[name]
		if !ok {
			continue
		}
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, fmt.Errorf("encoding section %s: %w", name, err)
		}
		field(name, compact.Bytes())
	}

	exported, _ := json.Marshal(d.ExportedAt)
	field(keyExportedAt, exported)
	version, _ := json.Marshal(d.Version)
	field(keyVersion, version)

	images := d.Images
	if images == nil {
		images = []asset.Asset{}
	}
	encoded, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encoding images: %w", err)
	}
	field(keyImages, encoded)

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a document. Unknown keys are ignored. A version tag
// that is present but not a string keeps its JSON text.
func (d *Document) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		return errors.New("document is null")
	}

	*d = Document{Sections: map[string]json.RawMessage{}}
	for _, name := range record.Sections() {
		if raw, ok := m[name]; ok {
			d.Sections[name] = raw
		}
	}
	if raw, ok := m[keyExportedAt]; ok {
		_ = json.Unmarshal(raw, &d.ExportedAt)
	}
	if raw, ok := m[keyVersion]; ok && truthy(raw) {
		if err := json.Unmarshal(raw, &d.Version); err != nil {
			d.Version = string(raw)
		}
	}
	if raw, ok := m[keyImages]; ok && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		if err := json.Unmarshal(raw, &d.Images); err != nil {
			return fmt.Errorf("decoding images: %w", err)
		}
	}
	return nil
}

// truthy reports whether a JSON value counts as set: not null, false, 0 or "".
func truthy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// Write encodes doc to w as indented JSON.
func Write(w io.Writer, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// Read decodes a document and checks its version tag.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if doc.Version == "" {
		return Document{}, ErrInvalidBackup
	}
	return doc, nil
}

// Import overlays doc onto dst. Every present, non-null section replaces the
// stored one wholesale; others are kept. Images are upserted by id. On a
// write failure the sections written so far stay written.
func Import(ctx context.Context, dst Restorer, assets AssetImporter, doc Document) error {
	if doc.Version == "" {
		return ErrInvalidBackup
	}
	for _, name := range record.Sections() {
		raw, ok := doc.Sections[name]
		if !ok || !present(raw) {
			continue
		}
		if err := dst.WriteSection(name, raw); err != nil {
			return fmt.Errorf("restoring %s: %w", name, err)
		}
	}
	if assets != nil && len(doc.Images) > 0 {
		if err := assets.ImportAll(ctx, doc.Images); err != nil {
			return fmt.Errorf("restoring images: %w", err)
		}
	}
	return nil
}

func present(raw json.RawMessage) bool {
	s := string(bytes.TrimSpace(raw))
	return s != "" && s != "null"
}
