package catalog

import "github.com/reforma-dev/reforma/internal/model"

// Kind distinguishes the two catalogs.
type Kind string

const (
	KindCategory Kind = "category"
	KindRoom     Kind = "room"
)

// Entry is one category or room.
type Entry struct {
	Slug   string
	Label  string
	Custom bool
}

// DefaultCategories returns the built-in expense categories.
func DefaultCategories() []Entry {
	return []Entry{
		{Slug: model.CategoryMaterial, Label: "Material"},
		{Slug: model.CategoryLabor, Label: "Labor"},
		{Slug: model.CategoryFreight, Label: "Freight"},
		{Slug: model.CategoryTools, Label: "Tools"},
		{Slug: model.CategoryOther, Label: "Other"},
	}
}

// DefaultRooms returns the built-in rooms.
func DefaultRooms() []Entry {
	return []Entry{
		{Slug: "bbq", Label: "BBQ area"},
		{Slug: "bath", Label: "Bathroom"},
		{Slug: "bedroom", Label: "Bedroom"},
		{Slug: "general", Label: "General"},
	}
}
