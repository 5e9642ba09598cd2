// Package summary computes derived figures over the record collections.
// Every function rescans its inputs; nothing is cached.
package summary

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/record"
)

// Lister is read access to record collections.
type Lister interface {
	ListAll(c record.Collection) []record.Record
}

var hundred = decimal.NewFromInt(100)

// ExpenseFilter constrains TotalExpenses. Empty fields match everything.
type ExpenseFilter struct {
	Room     string
	Category string
}

// TotalExpenses sums expense amounts matching f exactly.
func TotalExpenses(l Lister, f ExpenseFilter) decimal.Decimal {
	total := decimal.Zero
	for _, r := range l.ListAll(record.Expenses) {
		if f.Room != "" && r.String(model.FieldRoom) != f.Room {
			continue
		}
		if f.Category != "" && r.String(model.FieldCategory) != f.Category {
			continue
		}
		total = total.Add(r.Decimal(model.FieldAmount))
	}
	return total
}

// MaterialFilter constrains TotalMaterialsCost.
type MaterialFilter struct {
	Room   string
	Status string
}

// TotalMaterialsCost sums quantity*unitPrice over matching materials.
func TotalMaterialsCost(l Lister, f MaterialFilter) decimal.Decimal {
	total := decimal.Zero
	for _, r := range l.ListAll(record.Materials) {
		if f.Room != "" && r.String(model.FieldRoom) != f.Room {
			continue
		}
		if f.Status != "" && r.String(model.FieldStatus) != f.Status {
			continue
		}
		total = total.Add(r.Decimal("quantity").Mul(r.Decimal("unitPrice")))
	}
	return total
}

// PaymentFilter constrains TotalPayments.
type PaymentFilter struct {
	ProfessionalID string
}

// TotalPayments sums payments, optionally for one professional.
func TotalPayments(l Lister, f PaymentFilter) decimal.Decimal {
	total := decimal.Zero
	for _, r := range l.ListAll(record.Payments) {
		if f.ProfessionalID != "" && r.String("professionalId") != f.ProfessionalID {
			continue
		}
		total = total.Add(r.Decimal(model.FieldAmount))
	}
	return total
}

// Progress is the percentage of done tasks, rounded half up. Zero without tasks.
func Progress(l Lister) int {
	tasks := l.ListAll(record.Tasks)
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, r := range tasks {
		if r.String(model.FieldStatus) == string(model.TaskDone) {
			done++
		}
	}
	return int(percent(decimal.NewFromInt(int64(done)), decimal.NewFromInt(int64(len(tasks)))).Round(0).IntPart())
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}

// MaterialKey normalizes a material name for quote matching.
func MaterialKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// QuoteGroup holds every quote for one material, cheapest first.
type QuoteGroup struct {
	Material string
	Quotes   []record.Record
}

// Best is the cheapest quote of the group.
func (g QuoteGroup) Best() record.Record {
	return g.Quotes[0]
}

// QuoteGroups groups quotes by material key in first-seen order. Quotes in a
// group are stably sorted by ascending price.
func QuoteGroups(l Lister) []QuoteGroup {
	var groups []QuoteGroup
	index := map[string]int{}
	for _, q := range l.ListAll(record.Quotes) {
		key := MaterialKey(q.String("material"))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, QuoteGroup{Material: key})
		}
		groups[i].Quotes = append(groups[i].Quotes, q)
	}
	for i := range groups {
		slices.SortStableFunc(groups[i].Quotes, func(a, b record.Record) int {
			return a.Decimal("price").Cmp(b.Decimal("price"))
		})
	}
	return groups
}

// BestQuote returns the cheapest quote for a material.
func BestQuote(l Lister, material string) (record.Record, bool) {
	key := MaterialKey(material)
	for _, g := range QuoteGroups(l) {
		if g.Material == key {
			return g.Best(), true
		}
	}
	return nil, false
}
