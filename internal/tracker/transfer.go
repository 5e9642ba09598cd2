package tracker

import (
	"context"
	"fmt"

	"github.com/reforma-dev/reforma/internal/backup"
	"github.com/reforma-dev/reforma/internal/history"
	"github.com/reforma-dev/reforma/internal/record"
)

// Export snapshots every section and image into a backup document.
func (s *Service) Export(ctx context.Context) (backup.Document, error) {
	store, err := s.imageStore()
	if err != nil {
		return backup.Document{}, err
	}
	images, err := store.ExportAll(ctx)
	if err != nil {
		return backup.Document{}, fmt.Errorf("exporting images: %w", err)
	}
	return backup.Export(s.records, images, s.now()), nil
}

// Restore writes a backup document over the stores.
func (s *Service) Restore(ctx context.Context, doc backup.Document) error {
	store, err := s.imageStore()
	if err != nil {
		return err
	}
	if err := backup.Import(ctx, s.records, store, doc); err != nil {
		return err
	}
	s.logChange(history.ActionBackup, "backup", doc.Version, "restored export of "+doc.ExportedAt)
	s.log.WithField("exported_at", doc.ExportedAt).Info("backup restored")
	return nil
}

// ImportResult counts what an import created.
type ImportResult struct {
	Created int
	Skipped []error // one per invalid row
}

// ImportRecords validates and stores parsed rows. Invalid rows are skipped
// and reported; the rest are kept.
func (s *Service) ImportRecords(c record.Collection, rows []record.Record) (ImportResult, error) {
	var res ImportResult
	for i, r := range rows {
		if err := ValidateRecord(c, r); err != nil {
			res.Skipped = append(res.Skipped, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		if room := r.String("room"); room != "" {
			if err := s.checkRoom(string(c), room); err != nil {
				res.Skipped = append(res.Skipped, fmt.Errorf("row %d: %w", i+1, err))
				continue
			}
		}
		if _, err := s.records.Create(c, r); err != nil {
			return res, fmt.Errorf("importing %s: %w", c, err)
		}
		res.Created++
	}
	if res.Created > 0 {
		s.logChange(history.ActionImport, c, "", fmt.Sprintf("%d imported", res.Created))
	}
	if len(res.Skipped) > 0 {
		s.log.WithFields(map[string]any{"collection": c, "skipped": len(res.Skipped)}).Warn("rows skipped on import")
	}
	return res, nil
}
