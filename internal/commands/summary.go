package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/record"
	"github.com/reforma-dev/reforma/internal/schedule"
	"github.com/reforma-dev/reforma/internal/summary"
)

func newSummaryCommand(dir func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show spend, budget, progress and alerts",
		Args:  cobra.NoArgs,
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			o := summary.BuildOverview(s.records, s.records.Budget())
			cur := s.cfg.Project.Currency

			printf(cmd, "Budget:    %s %s\n", cur, o.Budget.StringFixed(2))
			printf(cmd, "Spent:     %s %s\n", cur, o.Spent.StringFixed(2))
			printf(cmd, "Remaining: %s %s\n", cur, o.Remaining.StringFixed(2))
			printf(cmd, "Materials: %s %s\n", cur, o.Materials.StringFixed(2))
			printf(cmd, "Labor:     %s %s\n", cur, o.Labor.StringFixed(2))
			printf(cmd, "Progress:  %d%% (%d/%d tasks done)\n", o.Progress, o.TasksDone, o.Tasks)

			for _, a := range summary.BudgetAlerts(s.records, s.records.Budget()) {
				switch a.Level {
				case summary.LevelOver:
					printf(cmd, "! %s is over budget: %s of %s\n", a.Room, a.Spent.StringFixed(2), a.Budget.StringFixed(2))
				case summary.LevelNear:
					printf(cmd, "! %s is near its budget: %s of %s\n", a.Room, a.Spent.StringFixed(2), a.Budget.StringFixed(2))
				}
			}
			return nil
		}),
	}
}

func newTasksCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Schedule operations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "reconcile",
			Short: "Mark tasks past their due date as late",
			Args:  cobra.NoArgs,
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				ids, err := s.svc.ReconcileOverdue()
				if err != nil {
					return err
				}
				printf(cmd, "%d task(s) marked late\n", len(ids))
				for _, id := range ids {
					printf(cmd, "  %s\n", id)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "Show the schedule, late tasks first",
			Args:  cobra.NoArgs,
			RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
				var tasks []model.Task
				for _, r := range s.records.ListAll(record.Tasks) {
					tasks = append(tasks, model.TaskFromRecord(r))
				}
				schedule.Sort(tasks)
				today := s.svc.Today()

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSTATUS\tROOM\tSTART\tEND\tDESCRIPTION")
				for _, t := range tasks {
					status := string(t.Status)
					if t.Status != model.TaskLate && schedule.Overdue(t, today) {
						status += " (overdue)"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, status, t.Room, t.StartDate, t.EndDate, t.Description)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				printf(cmd, "Progress: %d%%\n", summary.Progress(s.records))
				return nil
			}),
		},
	)
	return cmd
}

func newQuotesCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Compare supplier prices",
		Args:  cobra.NoArgs,
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			names := supplierNames(s.records)
			for _, g := range summary.QuoteGroups(s.records) {
				printf(cmd, "%s\n", g.Material)
				for i, q := range g.Quotes {
					mark := " "
					if i == 0 {
						mark = "*"
					}
					printf(cmd, "  %s %s  %s\n", mark, q.Decimal("price").StringFixed(2), supplierName(names, q.String("supplierId")))
				}
			}
			return nil
		}),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "best <material>",
			Short: "Show the cheapest quote for a material",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
				q, ok := summary.BestQuote(s.records, args[0])
				if !ok {
					return fmt.Errorf("no quotes for %q", args[0])
				}
				names := supplierNames(s.records)
				printf(cmd, "%s: %s from %s\n", q.String("material"), q.Decimal("price").StringFixed(2), supplierName(names, q.String("supplierId")))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "shopping",
			Short: "Price pending materials at their best quotes",
			Args:  cobra.NoArgs,
			RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
				list := summary.BuildShoppingList(s.records)
				names := supplierNames(s.records)
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "MATERIAL\tQTY\tUNIT PRICE\tSUBTOTAL\tSUPPLIER")
				for _, it := range list.Items {
					supplier := "-"
					if it.BestQuote != nil {
						supplier = supplierName(names, it.BestQuote.String("supplierId"))
					}
					fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\n", it.Material.Name, it.Material.Quantity, it.Material.Unit,
						it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2), supplier)
				}
				fmt.Fprintf(tw, "TOTAL\t\t\t%s\t\n", list.Total.StringFixed(2))
				return tw.Flush()
			}),
		},
	)
	return cmd
}

func supplierNames(l summary.Lister) map[string]string {
	names := map[string]string{}
	for _, r := range l.ListAll(record.Suppliers) {
		names[r.ID()] = r.String("name")
	}
	return names
}

// supplierName resolves a supplier id; deleted suppliers are shown as such.
func supplierName(names map[string]string, supplierID string) string {
	if n, ok := names[supplierID]; ok {
		return n
	}
	return "(removed supplier)"
}
