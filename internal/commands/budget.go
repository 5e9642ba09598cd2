package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reforma-dev/reforma/internal/catalog"
	"github.com/reforma-dev/reforma/internal/record"
	"github.com/reforma-dev/reforma/internal/summary"
)

func newBudgetCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or set the per-room budget",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show each room's budget and spend",
			Args:  cobra.NoArgs,
			RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
				b := s.records.Budget()
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ROOM\tBUDGET\tSPENT\tUSED\tSTATUS")
				budgets := summary.RoomBudgets(s.records, b)
				for _, room := range record.BudgetRooms() {
					spent := summary.TotalExpenses(s.records, summary.ExpenseFilter{Room: room})
					used, level := "-", "-"
					for _, rb := range budgets {
						if rb.Room == room {
							used, level = rb.Percent.String()+"%", rb.Level
						}
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", room, b.For(room).StringFixed(2), spent.StringFixed(2), used, level)
				}
				fmt.Fprintf(tw, "total\t%s\t%s\t\t\n", b.Total().StringFixed(2),
					summary.TotalExpenses(s.records, summary.ExpenseFilter{}).StringFixed(2))
				return tw.Flush()
			}),
		},
		&cobra.Command{
			Use:   "set <room> <amount>",
			Short: "Set one room's budget",
			Args:  cobra.ExactArgs(2),
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				amount, err := parseMoney("amount", args[1])
				if err != nil {
					return err
				}
				b, err := s.svc.SetBudget(args[0], amount)
				if err != nil {
					return err
				}
				printf(cmd, "Budget for %s set to %s (total %s)\n", args[0], amount.StringFixed(2), b.Total().StringFixed(2))
				return nil
			}),
		},
	)
	return cmd
}

func newConfigCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change app preferences, categories and rooms",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored preferences",
			Args:  cobra.NoArgs,
			RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
				return writeJSON(cmd.OutOrStdout(), s.records.Config())
			}),
		},
		&cobra.Command{
			Use:       "dark-mode on|off",
			Short:     "Turn dark mode on or off",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"on", "off"},
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				var on bool
				switch args[0] {
				case "on":
					on = true
				case "off":
				default:
					return fmt.Errorf("expected on or off, got %q", args[0])
				}
				return s.svc.SetDarkMode(on)
			}),
		},
		newCatalogCommand(dir, catalog.KindCategory),
		newCatalogCommand(dir, catalog.KindRoom),
	)
	return cmd
}

func newCatalogCommand(dir func() string, kind catalog.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("List, add or remove %s entries", kind),
		Args:  cobra.NoArgs,
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			for _, e := range s.svc.Catalog().All(kind) {
				mark := ""
				if e.Custom {
					mark = " (custom)"
				}
				printf(cmd, "%s\t%s%s\n", e.Slug, e.Label, mark)
			}
			return nil
		}),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a custom " + string(kind),
			Args:  cobra.ExactArgs(1),
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				slug, err := s.svc.Catalog().Add(kind, args[0])
				if err != nil {
					return err
				}
				printf(cmd, "Added %s %s\n", kind, slug)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <slug>",
			Short: "Remove a custom " + string(kind),
			Args:  cobra.ExactArgs(1),
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				removed, err := s.svc.Catalog().Remove(kind, args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no custom %s %q", kind, args[0])
				}
				printf(cmd, "Removed %s %s\n", kind, args[0])
				return nil
			}),
		},
	)
	return cmd
}
