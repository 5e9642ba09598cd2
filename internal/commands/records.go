package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/record"
	"github.com/reforma-dev/reforma/internal/schedule"
)

// parseMoney reads a flag value as a decimal. Empty means zero.
func parseMoney(flag, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", flag, s)
	}
	return d, nil
}

func newAddCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
	}
	cmd.AddCommand(
		newAddExpenseCommand(dir),
		newAddMaterialCommand(dir),
		newAddTaskCommand(dir),
		newAddProfessionalCommand(dir),
		newAddPaymentCommand(dir),
		newAddSupplierCommand(dir),
		newAddQuoteCommand(dir),
	)
	return cmd
}

func newAddExpenseCommand(dir func() string) *cobra.Command {
	var e model.Expense
	var amount string
	var installments int

	cmd := &cobra.Command{
		Use:   "expense <description>",
		Short: "Add an expense",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			var err error
			e.Description = args[0]
			if e.Amount, err = parseMoney("amount", amount); err != nil {
				return err
			}
			if installments > 1 {
				parts, err := s.svc.SplitInstallments(e, installments)
				if err != nil {
					return err
				}
				for _, p := range parts {
					printf(cmd, "Added expense %s: %s %s on %s\n", p.ID, p.Description, p.Amount.StringFixed(2), p.Date)
				}
				return nil
			}
			added, err := s.svc.AddExpense(e)
			if err != nil {
				return err
			}
			printf(cmd, "Added expense %s: %s %s (%s, %s)\n", added.ID, added.Description, added.Amount.StringFixed(2), added.Room, added.Category)
			return nil
		}),
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount paid (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&e.Date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&e.Category, "category", "", "category (detected from the description by default)")
	cmd.Flags().StringVar(&e.Room, "room", "", "room (detected from the description by default)")
	cmd.Flags().StringVar(&e.PaymentMethod, "payment", "", "payment method (default cash)")
	cmd.Flags().IntVar(&installments, "installments", 0, "split into this many monthly installments")
	return cmd
}

func newAddMaterialCommand(dir func() string) *cobra.Command {
	var m model.Material
	var quantity, price, status string

	cmd := &cobra.Command{
		Use:   "material <name>",
		Short: "Add a material to buy",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			var err error
			m.Name = args[0]
			m.Status = model.MaterialStatus(status)
			if m.Quantity, err = parseMoney("quantity", quantity); err != nil {
				return err
			}
			if m.UnitPrice, err = parseMoney("price", price); err != nil {
				return err
			}
			added, err := s.svc.AddMaterial(m)
			if err != nil {
				return err
			}
			printf(cmd, "Added material %s: %s %s %s, total %s\n", added.ID, added.Quantity, added.Unit, added.Name, added.Cost().StringFixed(2))
			return nil
		}),
	}
	cmd.Flags().StringVar(&quantity, "quantity", "1", "quantity")
	cmd.Flags().StringVar(&m.Unit, "unit", "un", "unit of measure")
	cmd.Flags().StringVar(&price, "price", "", "unit price")
	cmd.Flags().StringVar(&m.Room, "room", "", "room (detected from the name by default)")
	cmd.Flags().StringVar(&status, "status", "", "pending, bought, delivered or applied")
	return cmd
}

func newAddTaskCommand(dir func() string) *cobra.Command {
	var t model.Task
	var status string

	cmd := &cobra.Command{
		Use:   "task <description>",
		Short: "Add a scheduled task",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			t.Description = args[0]
			t.Status = model.TaskStatus(status)
			added, err := s.svc.AddTask(t)
			if err != nil {
				return err
			}
			printf(cmd, "Added task %s: %s (%s)\n", added.ID, added.Description, added.Status)
			return nil
		}),
	}
	cmd.Flags().StringVar(&t.Room, "room", "", "room (detected from the description by default)")
	cmd.Flags().StringVar(&t.StartDate, "start", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&t.EndDate, "end", "", "due date YYYY-MM-DD")
	cmd.Flags().StringVar(&t.Assignee, "assignee", "", "who does it")
	cmd.Flags().StringVar(&status, "status", "", "pending, in-progress, done or late")
	return cmd
}

func newAddProfessionalCommand(dir func() string) *cobra.Command {
	var p model.Professional
	var rate string

	cmd := &cobra.Command{
		Use:   "professional <name>",
		Short: "Add a hired professional",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			var err error
			p.Name = args[0]
			if p.Rate, err = parseMoney("rate", rate); err != nil {
				return err
			}
			added, err := s.svc.AddProfessional(p)
			if err != nil {
				return err
			}
			printf(cmd, "Added professional %s: %s\n", added.ID, added.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&p.Specialty, "specialty", "", "trade, e.g. mason or plumber")
	cmd.Flags().StringVar(&p.Contact, "contact", "", "phone or e-mail")
	cmd.Flags().StringVar(&p.BillingType, "billing", "", "daily or contract (default daily)")
	cmd.Flags().StringVar(&rate, "rate", "", "daily rate or contract value")
	return cmd
}

func newAddPaymentCommand(dir func() string) *cobra.Command {
	var p model.Payment
	var amount string

	cmd := &cobra.Command{
		Use:   "payment <professional-id>",
		Short: "Record a payment to a professional",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			var err error
			p.ProfessionalID = args[0]
			if p.Amount, err = parseMoney("amount", amount); err != nil {
				return err
			}
			added, err := s.svc.AddPayment(p)
			if err != nil {
				return err
			}
			printf(cmd, "Added payment %s: %s on %s\n", added.ID, added.Amount.StringFixed(2), added.Date)
			return nil
		}),
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount paid (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&p.Date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&p.Description, "description", "", "what the payment covers")
	return cmd
}

func newAddSupplierCommand(dir func() string) *cobra.Command {
	var sup model.Supplier

	cmd := &cobra.Command{
		Use:   "supplier <name>",
		Short: "Add a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			sup.Name = args[0]
			added, err := s.svc.AddSupplier(sup)
			if err != nil {
				return err
			}
			printf(cmd, "Added supplier %s: %s\n", added.ID, added.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&sup.Kind, "kind", "", "kind of store")
	cmd.Flags().StringVar(&sup.Contact, "contact", "", "phone or e-mail")
	cmd.Flags().StringVar(&sup.Address, "address", "", "address")
	return cmd
}

func newAddQuoteCommand(dir func() string) *cobra.Command {
	var q model.Quote
	var price string

	cmd := &cobra.Command{
		Use:   "quote <supplier-id> <material>",
		Short: "Record a supplier's price for a material",
		Args:  cobra.ExactArgs(2),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			var err error
			q.SupplierID, q.Material = args[0], args[1]
			if q.Price, err = parseMoney("price", price); err != nil {
				return err
			}
			added, err := s.svc.AddQuote(q)
			if err != nil {
				return err
			}
			printf(cmd, "Added quote %s: %s at %s\n", added.ID, added.Material, added.Price.StringFixed(2))
			return nil
		}),
	}
	cmd.Flags().StringVar(&price, "price", "", "price per unit (required)")
	_ = cmd.MarkFlagRequired("price")
	cmd.Flags().StringVar(&q.Unit, "unit", "", "unit the price refers to")
	cmd.Flags().StringVar(&q.Notes, "notes", "", "notes")
	return cmd
}

func newListCommand(dir func() string) *cobra.Command {
	var room, category, status, professional string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List the records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			out := []record.Record{}
			for _, r := range s.records.ListAll(c) {
				if !matches(r, model.FieldRoom, room) || !matches(r, model.FieldCategory, category) ||
					!matches(r, model.FieldStatus, status) || !matches(r, "professionalId", professional) {
					continue
				}
				out = append(out, r)
			}
			if c == record.Tasks {
				out = sortTasks(out)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return writeTable(cmd.OutOrStdout(), c, out)
		}),
	}
	cmd.Flags().StringVar(&room, "room", "", "only this room")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&status, "status", "", "only this status")
	cmd.Flags().StringVar(&professional, "professional", "", "only payments to this professional")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func matches(r record.Record, field, want string) bool {
	return want == "" || r.String(field) == want
}

// sortTasks orders task records the way the schedule shows them.
func sortTasks(records []record.Record) []record.Record {
	byID := make(map[string]record.Record, len(records))
	tasks := make([]model.Task, len(records))
	for i, r := range records {
		tasks[i] = model.TaskFromRecord(r)
		byID[r.ID()] = r
	}
	schedule.Sort(tasks)
	out := make([]record.Record, len(tasks))
	for i, t := range tasks {
		out[i] = byID[t.ID]
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, c record.Collection, records []record.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintf(w, "No %s.\n", c)
		return err
	}
	fields := model.Fields(c)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"ID"}
	for _, f := range fields {
		header = append(header, strings.ToUpper(f.Name))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range records {
		row := []string{r.ID()}
		for _, f := range fields {
			v := r.String(f.Name)
			if f.Kind == model.KindNumber {
				v = r.Decimal(f.Name).StringFixed(2)
			}
			row = append(row, v)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func newShowCommand(dir func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <collection> <id>",
		Short: "Print one record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			r, ok := s.records.GetByID(c, args[1])
			if !ok {
				return fmt.Errorf("%s %s: not found", c, args[1])
			}
			return writeJSON(cmd.OutOrStdout(), r)
		}),
	}
}

func newUpdateCommand(dir func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "update <collection> <id> field=value...",
		Short: "Change fields of a record",
		Args:  cobra.MinimumNArgs(3),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			partial, err := model.ParseAssignments(c, args[2:])
			if err != nil {
				return err
			}
			r, ok, err := s.svc.Update(c, args[1], partial)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s %s: not found", c, args[1])
			}
			printf(cmd, "Updated %s %s\n", c, r.ID())
			return nil
		}),
	}
}

func newRemoveCommand(dir func() string) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <collection> <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a record",
		Long:    "Delete a record. Removing a professional also removes their payments; removing a supplier removes its quotes.",
		Args:    cobra.ExactArgs(2),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			if err := s.svc.Remove(c, args[1]); err != nil {
				return err
			}
			printf(cmd, "Removed %s %s\n", c, args[1])
			return nil
		}),
	}
}

func newDuplicateCommand(dir func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "dup <collection> <id>",
		Short: "Copy a record under a new id",
		Args:  cobra.ExactArgs(2),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			c, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			r, ok, err := s.svc.Duplicate(c, args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s %s: not found", c, args[1])
			}
			printf(cmd, "Created %s %s\n", c, r.ID())
			return nil
		}),
	}
}
