package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/reforma-dev/reforma/internal/calculator"
	"github.com/reforma-dev/reforma/internal/gitops"
	"github.com/reforma-dev/reforma/internal/report"
)

func newCalcCommand(dir func() string) *cobra.Command {
	values := map[calculator.Field]*string{}
	var room string
	var add bool

	cmd := &cobra.Command{
		Use:   "calc <material>",
		Short: "Estimate a material quantity from measurements",
		Long:  "Estimate a material quantity. Run without arguments to list the estimators.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tMATERIAL\tMEASUREMENTS")
				for _, e := range calculator.Estimators() {
					fmt.Fprintf(tw, "%s\t%s\t%v\n", e.Key, e.Name, e.Fields)
				}
				return tw.Flush()
			}

			est, ok := calculator.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown material %q", args[0])
			}
			measures := map[calculator.Field]decimal.Decimal{}
			for f, v := range values {
				if *v == "" {
					continue
				}
				d, err := parseMoney(string(f), *v)
				if err != nil {
					return err
				}
				measures[f] = d
			}
			res, err := est.Estimate(measures)
			if err != nil {
				return err
			}
			printf(cmd, "%s: %s %s\n", est.Name, res.Quantity, est.Label)
			if !add {
				return nil
			}
			return mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				m, err := s.svc.AddMaterial(res.Material(room))
				if err != nil {
					return err
				}
				printf(cmd, "Added material %s\n", m.ID)
				return nil
			})(cmd, args)
		},
	}
	for _, f := range []calculator.Field{calculator.Width, calculator.Length, calculator.Height, calculator.Thickness, calculator.TotalLength} {
		values[f] = cmd.Flags().String(string(f), "", fmt.Sprintf("%s measurement", f))
	}
	cmd.Flags().BoolVar(&add, "add", false, "add the estimate as a pending material")
	cmd.Flags().StringVar(&room, "room", "general", "room of the added material")
	return cmd
}

func newReportCommand(dir func() string) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Share-ready summaries",
	}
	textCmd := &cobra.Command{
		Use:   "text",
		Short: "Print a plain-text summary for messaging",
		Args:  cobra.NoArgs,
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			if lang == "" {
				lang = s.cfg.Project.Language
			}
			out, err := report.Text(collectReport(s), lang)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		}),
	}
	textCmd.Flags().StringVar(&lang, "lang", "", "number formatting language (default from reforma.yaml)")

	cmd.AddCommand(
		textCmd,
		&cobra.Command{
			Use:   "xlsx [file]",
			Short: "Write expenses, materials and payments to a spreadsheet",
			Args:  cobra.MaximumNArgs(1),
			RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
				path := filepath.Join(s.dir, "exports", "reforma-"+s.svc.Today()+".xlsx")
				if len(args) > 0 {
					path = args[0]
				}
				if err := writeFile(path, func(w io.Writer) error { return report.WriteXLSX(w, collectReport(s)) }); err != nil {
					return err
				}
				printf(cmd, "Wrote %s\n", path)
				return nil
			}),
		},
	)
	return cmd
}

func collectReport(s *session) report.Data {
	return report.Collect(s.records, s.records.Budget(), s.cfg.Project.Name, s.cfg.Project.Currency, time.Now())
}

func newSnapshotCommand(dir func() string) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Commit the data directory to its git history",
		Args:  cobra.NoArgs,
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			author := gitops.Author{Name: s.cfg.Git.AuthorName, Email: s.cfg.Git.AuthorEmail}
			hash, err := gitops.Snapshot(s.dir, message, author)
			if err != nil {
				return err
			}
			if hash == "" {
				printf(cmd, "Nothing to commit\n")
				return nil
			}
			printf(cmd, "Snapshot %s\n", hash)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&message, "message", "m", "snapshot", "commit message")
	return cmd
}
