package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/reforma-dev/reforma/internal/backup"
	"github.com/reforma-dev/reforma/internal/history"
	"github.com/reforma-dev/reforma/internal/importer"
	"github.com/reforma-dev/reforma/internal/record"
)

func newBackupCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the whole project",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export [file]",
			Short: "Write a backup document (default exports/reforma-backup-<date>.json, - for stdout)",
			Args:  cobra.MaximumNArgs(1),
			RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
				doc, err := s.svc.Export(cmd.Context())
				if err != nil {
					return err
				}
				path := filepath.Join(s.dir, "exports", "reforma-backup-"+s.svc.Today()+".json")
				if len(args) > 0 {
					path = args[0]
				}
				if path == "-" {
					return backup.Write(cmd.OutOrStdout(), doc)
				}
				if err := writeFile(path, func(w io.Writer) error { return backup.Write(w, doc) }); err != nil {
					return err
				}
				printf(cmd, "Exported %d image(s) to %s\n", len(doc.Images), path)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Restore a backup document over the current data",
			Long: "Restore a backup document. Each collection present in the file replaces the stored one;\n" +
				"collections missing from the file are kept. Images are merged by id.",
			Args: cobra.ExactArgs(1),
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening backup: %w", err)
				}
				defer f.Close()

				doc, err := backup.Read(f)
				switch {
				case errors.Is(err, backup.ErrInvalidBackup):
					return fmt.Errorf("%s is not a reforma backup: %w", args[0], err)
				case err != nil:
					return err
				}
				if err := s.svc.Restore(cmd.Context(), doc); err != nil {
					return err
				}
				printf(cmd, "Restored backup exported at %s\n", doc.ExportedAt)
				return nil
			}),
		},
	)
	return cmd
}

// writeFile creates path, including its directory, and writes it with fn.
func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newImportCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Batch-import records from delimited text",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "file <collection> <file>",
			Short: "Import one file (- for stdin)",
			Args:  cobra.ExactArgs(2),
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				c, err := collectionArg(args[0])
				if err != nil {
					return err
				}
				var data []byte
				if args[1] == "-" {
					data, err = io.ReadAll(cmd.InOrStdin())
				} else {
					data, err = os.ReadFile(args[1])
				}
				if err != nil {
					return fmt.Errorf("reading import: %w", err)
				}
				return importText(cmd, s, c, args[1], string(data))
			}),
		},
		&cobra.Command{
			Use:   "inbox",
			Short: "Import every file in <dir>/import and move it to import/processed",
			Long: "Import every .csv or .txt file in the import directory. The collection is\n" +
				"taken from the file name prefix, e.g. expenses-march.csv.",
			Args: cobra.NoArgs,
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				files, err := importer.Scan(s.dir)
				if err != nil {
					return err
				}
				registry := importer.DefaultRegistry(s.svc.Today())
				for _, f := range files {
					c, ok := registry.CollectionFor(f.Name)
					if !ok {
						s.log.WithField("file", f.Name).Warn("no collection matches file name, skipped")
						continue
					}
					data, err := os.ReadFile(f.Path)
					if err != nil {
						return fmt.Errorf("reading %s: %w", f.Name, err)
					}
					if err := importText(cmd, s, c, f.Name, string(data)); err != nil {
						return err
					}
					if err := importer.MarkProcessed(s.dir, f.Name); err != nil {
						return err
					}
				}
				if len(files) == 0 {
					printf(cmd, "Nothing to import\n")
				}
				return nil
			}),
		},
	)
	return cmd
}

func importText(cmd *cobra.Command, s *session, c record.Collection, name, text string) error {
	rows, err := importer.DefaultRegistry(s.svc.Today()).Parse(c, text)
	if err != nil {
		return err
	}
	res, err := s.svc.ImportRecords(c, rows)
	if err != nil {
		return err
	}
	printf(cmd, "%s: %d %s imported, %d skipped\n", name, res.Created, c, len(res.Skipped))
	for _, e := range res.Skipped {
		printf(cmd, "  %v\n", e)
	}
	return nil
}

func newHistoryCommand(dir func() string) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent changes",
		Args:  cobra.NoArgs,
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			entries, err := history.Recent(s.dir, n)
			if err != nil {
				return err
			}
			for _, e := range entries {
				printf(cmd, "%s  %-6s %-13s %s %s\n", e.Timestamp.Local().Format(time.DateTime), e.Action, e.Entity, e.RecordID, e.Details)
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&n, "limit", "n", 20, "number of entries (0 for all)")
	return cmd
}
