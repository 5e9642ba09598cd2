// Package importer turns pasted text or dropped files into records: one
// parser per collection, reading delimited lines with a free-text fallback.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/reforma-dev/reforma/internal/record"
)

// Parser converts import text into records of one collection.
type Parser interface {
	Parse(text string) []record.Record
	Collection() record.Collection
}

// Registry holds parsers keyed by collection.
type Registry struct {
	parsers map[record.Collection]Parser
}

// FileInfo describes a file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[record.Collection]Parser)}
}

// Register adds a parser. Panics on a duplicate collection.
func (r *Registry) Register(p Parser) {
	c := p.Collection()
	if _, ok := r.parsers[c]; ok {
		panic("duplicate parser for collection: " + string(c))
	}
	r.parsers[c] = p
}

// Get returns the parser for c, or nil.
func (r *Registry) Get(c record.Collection) Parser {
	return r.parsers[c]
}

// Collections lists the collections that can be imported, sorted.
func (r *Registry) Collections() []record.Collection {
	out := make([]record.Collection, 0, len(r.parsers))
	for c := range r.parsers {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Parse runs the parser registered for c.
func (r *Registry) Parse(c record.Collection, text string) ([]record.Record, error) {
	p := r.Get(c)
	if p == nil {
		return nil, fmt.Errorf("no importer for %s", c)
	}
	return p.Parse(text), nil
}

// DefaultRegistry returns a registry with every built-in parser. today is
// the date given to rows that carry none.
func DefaultRegistry(today string) *Registry {
	r := NewRegistry()
	r.Register(&ExpenseParser{Today: today})
	r.Register(&MaterialParser{})
	r.Register(&TaskParser{})
	r.Register(&ProfessionalParser{})
	return r
}

// importDir is the subdirectory for files waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported files.
const processedDir = "import/processed"

// Scan returns the .csv and .txt files in <dataDir>/import/.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".csv" && ext != ".txt" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// CollectionFor picks the collection a file belongs to from its name prefix,
// e.g. "materials-bath.csv". It reports false when no registered
// collection matches.
func (r *Registry) CollectionFor(fileName string) (record.Collection, bool) {
	base := strings.ToLower(filepath.Base(fileName))
	for _, c := range r.Collections() {
		if strings.HasPrefix(base, string(c)) {
			return c, true
		}
	}
	return "", false
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(dataDir, fileName string) error {
	src := filepath.Join(dataDir, importDir, fileName)
	dstDir := filepath.Join(dataDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
