package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reforma-dev/reforma/internal/asset"
	"github.com/reforma-dev/reforma/internal/buildinfo"
	"github.com/reforma-dev/reforma/internal/config"
	"github.com/reforma-dev/reforma/internal/gitops"
	"github.com/reforma-dev/reforma/internal/history"
	"github.com/reforma-dev/reforma/internal/kv"
	"github.com/reforma-dev/reforma/internal/record"
	"github.com/reforma-dev/reforma/internal/tracker"
)

// imagesFile is the image database inside the data dir.
const imagesFile = "images.db"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dataDir string

	rootCmd := &cobra.Command{
		Use:     "reforma",
		Short:   "Track a home renovation: expenses, materials, tasks and budget",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	defaultDir := os.Getenv(config.EnvDir)
	if defaultDir == "" {
		defaultDir = "."
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDir, "data directory (env "+config.EnvDir+")")

	dir := func() string { return dataDir }
	rootCmd.AddCommand(
		newInitCommand(),
		newAddCommand(dir),
		newListCommand(dir),
		newShowCommand(dir),
		newUpdateCommand(dir),
		newRemoveCommand(dir),
		newDuplicateCommand(dir),
		newBudgetCommand(dir),
		newConfigCommand(dir),
		newSummaryCommand(dir),
		newTasksCommand(dir),
		newQuotesCommand(dir),
		newBackupCommand(dir),
		newImageCommand(dir),
		newReceiptCommand(dir),
		newImportCommand(dir),
		newCalcCommand(dir),
		newReportCommand(dir),
		newHistoryCommand(dir),
		newSnapshotCommand(dir),
	)

	return rootCmd
}

// session holds the open stores of one data dir for the length of a
// command. Close must be called on every path.
type session struct {
	dir     string
	cfg     *config.Config
	log     *logrus.Logger
	kv      *kv.Dir
	records *record.Store
	assets  *asset.Store
	svc     *tracker.Service
}

func openSession(dataDir string, stderr io.Writer) (*session, error) {
	dir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("data dir %s: %w", dir, err)
	}

	cfg, err := config.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}

	s := &session{dir: dir, cfg: cfg, log: log}
	if s.kv, err = kv.Open(dir); err != nil {
		return nil, err
	}
	if s.assets, err = asset.Open(filepath.Join(dir, imagesFile)); err != nil {
		s.kv.Close()
		return nil, err
	}
	s.records = record.NewStore(s.kv)
	s.svc = tracker.New(s.records, s.assets,
		tracker.WithHistory(history.NewLog(dir, time.Now)),
		tracker.WithLogger(log),
		tracker.WithPresets(tracker.Presets{
			asset.TypePlan:    cfg.Images.Plan,
			asset.TypePhoto:   cfg.Images.Photo,
			asset.TypeReceipt: cfg.Images.Receipt,
		}),
	)
	log.WithField("dir", dir).Debug("session opened")
	return s, nil
}

func (s *session) Close() error {
	return errors.Join(s.assets.Close(), s.kv.Close())
}

// autoCommit snapshots the data dir after a change when git.auto_commit is on.
// A failed snapshot is logged, not returned: the change itself is saved.
func (s *session) autoCommit(message string) {
	if !s.cfg.Git.AutoCommit {
		return
	}
	author := gitops.Author{Name: s.cfg.Git.AuthorName, Email: s.cfg.Git.AuthorEmail}
	hash, err := gitops.Snapshot(s.dir, message, author)
	if err != nil {
		s.log.WithError(err).Warn("auto-commit failed")
		return
	}
	if hash != "" {
		s.log.WithField("commit", hash).Debug("snapshot")
	}
}

type sessionFunc func(cmd *cobra.Command, args []string, s *session) error

// withSession opens the data dir around fn and closes it however fn exits.
func withSession(dir func() string, fn sessionFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession(dir(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing data dir: %w", cerr)
			}
		}()
		return fn(cmd, args, s)
	}
}

// mutating is withSession for commands that change data: on success the
// data dir is auto-committed with the command path as message.
func mutating(dir func() string, fn sessionFunc) func(*cobra.Command, []string) error {
	return withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
		if err := fn(cmd, args, s); err != nil {
			return err
		}
		s.autoCommit(cmd.CommandPath())
		return nil
	})
}

// collectionArg accepts a collection name in plural or singular form.
func collectionArg(name string) (record.Collection, error) {
	c, err := record.ParseCollection(name)
	if err != nil {
		if plural, perr := record.ParseCollection(name + "s"); perr == nil {
			return plural, nil
		}
	}
	return c, err
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
