package asset

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reforma-dev/reforma/internal/id"
	"github.com/reforma-dev/reforma/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// Store is the SQLite-backed image store.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs sets the identifier generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Open creates or opens the image database at path.
//
// The database runs in WAL mode with NORMAL sync, a 5 second busy timeout
// and a single connection, so writes never contend with each other.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening image store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to image store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying image schema: %w", err)
	}

	s := &Store{db: db, now: time.Now, newID: id.New}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func put(ctx context.Context, db execer, a Asset) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding image %s: %w", a.ID, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO images (id, type, room, related_id, hash, created_at, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			room = excluded.room,
			related_id = excluded.related_id,
			hash = excluded.hash,
			created_at = excluded.created_at,
			doc = excluded.doc
	`, a.ID, string(a.Type), a.Room, a.RelatedID, a.Hash, a.CreatedAt, string(doc))
	if err != nil {
		return fmt.Errorf("writing image %s: %w", a.ID, err)
	}
	return nil
}

// Add stores a new image, assigning its id, createdAt and hash.
func (s *Store) Add(ctx context.Context, a Asset) (Asset, error) {
	if _, err := ParseType(string(a.Type)); err != nil {
		return Asset{}, err
	}
	a.ID = s.newID()
	a.CreatedAt = record.Timestamp(s.now())
	a.Hash = Hash(a.EncodedImage)
	if err := put(ctx, s.db, a); err != nil {
		return Asset{}, err
	}
	return a, nil
}

func (s *Store) query(ctx context.Context, where string, args ...any) ([]Asset, error) {
	q := "SELECT doc FROM images"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()

	out := []Asset{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		var a Asset
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading images: %w", err)
	}
	return out, nil
}

// GetAll returns the images matching f in storage order.
func (s *Store) GetAll(ctx context.Context, f Filter) ([]Asset, error) {
	var conds []string
	var args []any
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Room != "" {
		conds = append(conds, "room = ?")
		args = append(args, f.Room)
	}
	if f.RelatedID != "" {
		conds = append(conds, "related_id = ?")
		args = append(args, f.RelatedID)
	}
	return s.query(ctx, strings.Join(conds, " AND "), args...)
}

// GetByID returns one image.
func (s *Store) GetByID(ctx context.Context, assetID string) (Asset, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM images WHERE id = ?", assetID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, fmt.Errorf("reading image %s: %w", assetID, err)
	}
	var a Asset
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return Asset{}, false, fmt.Errorf("decoding image %s: %w", assetID, err)
	}
	return a, true, nil
}

// FindByHash returns the images whose payload hashes to hash.
func (s *Store) FindByHash(ctx context.Context, hash string) ([]Asset, error) {
	return s.query(ctx, "hash = ?", hash)
}

// Remove deletes one image. Removing an absent id is not an error.
func (s *Store) Remove(ctx context.Context, assetID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM images WHERE id = ?", assetID); err != nil {
		return fmt.Errorf("removing image %s: %w", assetID, err)
	}
	return nil
}

// Clear deletes every image.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM images"); err != nil {
		return fmt.Errorf("clearing images: %w", err)
	}
	return nil
}

// ExportAll returns every image.
func (s *Store) ExportAll(ctx context.Context) ([]Asset, error) {
	return s.query(ctx, "")
}

// ImportAll upserts images by id in one transaction. Importing the same
// list twice leaves the store unchanged.
func (s *Store) ImportAll(ctx context.Context, assets []Asset) error {
	for i, a := range assets {
		if a.ID == "" {
			return fmt.Errorf("image %d has no id", i)
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting image import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, a := range assets {
		if a.Hash == "" {
			a.Hash = Hash(a.EncodedImage)
		}
		if err := put(ctx, tx, a); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing image import: %w", err)
	}
	return nil
}

// MarkLinked records that an expense was generated from a receipt.
// It reports false when the image does not exist.
func (s *Store) MarkLinked(ctx context.Context, assetID, expenseID string) (bool, error) {
	a, ok, err := s.GetByID(ctx, assetID)
	if err != nil || !ok {
		return false, err
	}
	a.Linked = true
	a.LinkedExpenseID = expenseID
	if err := put(ctx, s.db, a); err != nil {
		return false, err
	}
	return true, nil
}

// SetPlan replaces the floor plan of a room.
func (s *Store) SetPlan(ctx context.Context, room, encoded string) (Asset, error) {
	a := Asset{
		ID:           s.newID(),
		Type:         TypePlan,
		Room:         room,
		EncodedImage: encoded,
		CreatedAt:    record.Timestamp(s.now()),
		Hash:         Hash(encoded),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Asset{}, fmt.Errorf("starting plan update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM images WHERE type = ? AND room = ?", string(TypePlan), room); err != nil {
		return Asset{}, fmt.Errorf("removing old plan for %s: %w", room, err)
	}
	if err := put(ctx, tx, a); err != nil {
		return Asset{}, err
	}
	if err := tx.Commit(); err != nil {
		return Asset{}, fmt.Errorf("committing plan update: %w", err)
	}
	return a, nil
}
