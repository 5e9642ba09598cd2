// Package history keeps the activity log: one CSV row per change made
// through the tracker, capped to the most recent entries.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Actions recorded in the log.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionImport = "import"
	ActionLink   = "link"
	ActionBackup = "backup"
)

// MaxEntries is how many entries the log keeps.
const MaxEntries = 200

// Entry is one row in the history log.
type Entry struct {
	Timestamp time.Time
	Action    string
	Entity    string
	RecordID  string
	Details   string
}

// Header is the CSV header for history.csv.
const Header = "timestamp,action,entity,record_id,details"

const (
	numFields   = 5
	logDir      = "logs"
	logFile     = "logs/history.csv"
	colTime     = 0
	colAction   = 1
	colEntity   = 2
	colRecordID = 3
	colDetails  = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colAction] = e.Action
	row[colEntity] = e.Entity
	row[colRecordID] = e.RecordID
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(row []string) (Entry, error) {
	if len(row) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}
	ts, err := time.Parse(time.RFC3339, row[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", row[colTime], err)
	}
	return Entry{
		Timestamp: ts,
		Action:    row[colAction],
		Entity:    row[colEntity],
		RecordID:  row[colRecordID],
		Details:   row[colDetails],
	}, nil
}

// Path returns the log file location under dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, logFile)
}

// Append writes entries to <dataDir>/logs/history.csv, creating the file and
// header if needed. Once the log outgrows MaxEntries the oldest rows are dropped.
func Append(dataDir string, entries ...Entry) error {
	if err := os.MkdirAll(filepath.Join(dataDir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dataDir)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history log: %w", err)
	}
	if err := writeRows(f, needsHeader, entries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing history log: %w", err)
	}
	return prune(dataDir, MaxEntries)
}

func writeRows(w io.Writer, header bool, entries []Entry) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// prune rewrites the log with only its newest keep entries.
func prune(dataDir string, keep int) error {
	entries, err := Read(dataDir)
	if err != nil || len(entries) <= keep {
		return err
	}
	entries = entries[len(entries)-keep:]

	path := Path(dataDir)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating history log: %w", err)
	}
	if err := writeRows(f, true, entries); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing history log: %w", err)
	}
	return os.Rename(tmp, path)
}

// Read returns all entries from <dataDir>/logs/history.csv, oldest first.
// Returns nil if the file does not exist.
func Read(dataDir string) ([]Entry, error) {
	f, err := os.Open(Path(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func Recent(dataDir string, n int) ([]Entry, error) {
	entries, err := Read(dataDir)
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history CSV: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, row := range rows[1:] {
		e, err := UnmarshalEntry(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Log appends entries stamped with its clock.
type Log struct {
	dataDir string
	now     func() time.Time
}

// NewLog creates a Log writing under dataDir.
func NewLog(dataDir string, now func() time.Time) *Log {
	if now == nil {
		now = time.Now
	}
	return &Log{dataDir: dataDir, now: now}
}

// Record appends one entry.
func (l *Log) Record(action, entity, recordID, details string) error {
	return Append(l.dataDir, Entry{
		Timestamp: l.now(),
		Action:    action,
		Entity:    entity,
		RecordID:  recordID,
		Details:   details,
	})
}
