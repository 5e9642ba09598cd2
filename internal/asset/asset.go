// Package asset stores images (floor plans, progress photos and receipts)
// in a SQLite database kept apart from the record store.
package asset

import (
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/reforma-dev/reforma/internal/id"
)

// Type tags what an image shows.
type Type string

const (
	TypePlan    Type = "plan"
	TypePhoto   Type = "photo"
	TypeReceipt Type = "receipt"
)

// ParseType validates an asset type name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypePlan, TypePhoto, TypeReceipt:
		return t, nil
	}
	return "", fmt.Errorf("unknown image type %q", s)
}

// Asset is one stored image. Receipts also carry the fields extracted
// from their OCR text.
type Asset struct {
	ID           string `json:"id"`
	Type         Type   `json:"type"`
	Room         string `json:"room,omitempty"`
	RelatedID    string `json:"relatedId,omitempty"`
	EncodedImage string `json:"encodedImage"`
	Caption      string `json:"caption,omitempty"`
	CreatedAt    string `json:"createdAt"`
	Hash         string `json:"hash,omitempty"`

	ExtractedText        string   `json:"extractedText,omitempty"`
	ExtractedAmount      *float64 `json:"extractedAmount,omitempty"`
	ExtractedDescription string   `json:"extractedDescription,omitempty"`
	ExtractedDate        string   `json:"extractedDate,omitempty"`
	Linked               bool     `json:"linked,omitempty"`
	LinkedExpenseID      string   `json:"linkedExpenseId,omitempty"`
}

// Filter selects assets. Empty fields match everything.
type Filter struct {
	Type      Type
	Room      string
	RelatedID string
}

// Hash returns the xxhash64 hex digest of an encoded image.
func Hash(encoded string) string {
	h := xxhash.New()
	_, _ = h.WriteString(encoded)
	return hex.EncodeToString(h.Sum(nil))
}

// Created returns when the asset was added. Assets without a readable
// createdAt fall back to the time embedded in their id.
func (a Asset) Created() time.Time {
	if t, err := time.Parse(time.RFC3339Nano, a.CreatedAt); err == nil {
		return t
	}
	if t, err := id.Time(a.ID); err == nil {
		return t
	}
	return time.Time{}
}

// SortNewestFirst orders assets by creation time, most recent first.
func SortNewestFirst(assets []Asset) {
	slices.SortStableFunc(assets, func(a, b Asset) int {
		return b.Created().Compare(a.Created())
	})
}
