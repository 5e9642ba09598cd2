// Package catalog manages expense categories and rooms: the built-in sets
// plus user additions persisted in the config singleton.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/reforma-dev/reforma/internal/record"
)

// ErrTooShort is returned for names under two characters.
var ErrTooShort = errors.New("name must have at least 2 characters")

// ConfigStore persists the custom entries.
type ConfigStore interface {
	Config() record.Config
	SaveConfig(record.Config) error
}

// Service provides lookup over categories and rooms.
type Service struct {
	store ConfigStore
}

// NewService creates a Service over store.
func NewService(store ConfigStore) *Service {
	return &Service{store: store}
}

// Categories returns the default categories followed by custom ones.
func (s *Service) Categories() []Entry {
	return merge(DefaultCategories(), s.store.Config().CustomCategories)
}

// Rooms returns the default rooms followed by custom ones.
func (s *Service) Rooms() []Entry {
	return merge(DefaultRooms(), s.store.Config().CustomRooms)
}

// All returns the entries of one kind.
func (s *Service) All(k Kind) []Entry {
	if k == KindRoom {
		return s.Rooms()
	}
	return s.Categories()
}

// Get returns an entry by slug.
func (s *Service) Get(k Kind, slug string) (Entry, bool) {
	for _, e := range s.All(k) {
		if e.Slug == slug {
			return e, true
		}
	}
	return Entry{}, false
}

// Exists reports whether a slug is known.
func (s *Service) Exists(k Kind, slug string) bool {
	_, ok := s.Get(k, slug)
	return ok
}

// Add slugifies name and stores it as a custom entry. Adding an existing
// slug, default or custom, is a no-op. The slug is returned either way.
func (s *Service) Add(k Kind, name string) (string, error) {
	slug := Slugify(name)
	if len([]rune(slug)) < 2 {
		return "", fmt.Errorf("adding %s %q: %w", k, name, ErrTooShort)
	}
	if s.Exists(k, slug) {
		return slug, nil
	}
	cfg := s.store.Config()
	if k == KindRoom {
		cfg.CustomRooms = append(cfg.CustomRooms, slug)
	} else {
		cfg.CustomCategories = append(cfg.CustomCategories, slug)
	}
	if err := s.store.SaveConfig(cfg); err != nil {
		return "", fmt.Errorf("adding %s %q: %w", k, name, err)
	}
	return slug, nil
}

// Remove deletes a custom entry. Defaults cannot be removed; unknown slugs
// are ignored. It reports whether anything was removed.
func (s *Service) Remove(k Kind, slug string) (bool, error) {
	cfg := s.store.Config()
	list := &cfg.CustomCategories
	if k == KindRoom {
		list = &cfg.CustomRooms
	}
	n := len(*list)
	*list = slices.DeleteFunc(*list, func(c string) bool { return c == slug })
	if len(*list) == n {
		return false, nil
	}
	if err := s.store.SaveConfig(cfg); err != nil {
		return false, fmt.Errorf("removing %s %q: %w", k, slug, err)
	}
	return true, nil
}

func merge(defaults []Entry, custom []string) []Entry {
	out := slices.Clone(defaults)
	for _, slug := range custom {
		if slices.ContainsFunc(out, func(e Entry) bool { return e.Slug == slug }) {
			continue
		}
		out = append(out, Entry{Slug: slug, Label: slug, Custom: true})
	}
	return out
}

// Fold lowercases s and strips diacritics.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Slugify folds name and joins its words with hyphens.
func Slugify(name string) string {
	return strings.Join(strings.Fields(Fold(name)), "-")
}
