package summary

import (
	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/record"
)

// Budget usage levels.
const (
	LevelOK   = "ok"
	LevelWarn = "warn"
	LevelOver = "over"
	LevelNear = "near"
)

var (
	warnAt = decimal.NewFromInt(80)
	ninety = decimal.RequireFromString("0.9")
)

// RoomBudget is one room's spend against its budget.
type RoomBudget struct {
	Room    string
	Budget  decimal.Decimal
	Spent   decimal.Decimal
	Percent decimal.Decimal // capped at 100
	Level   string
}

// RoomBudgets reports every budgeted room. Rooms without a budget are skipped.
func RoomBudgets(l Lister, b record.Budget) []RoomBudget {
	var out []RoomBudget
	for _, room := range record.BudgetRooms() {
		budget := b.For(room)
		if !budget.IsPositive() {
			continue
		}
		spent := TotalExpenses(l, ExpenseFilter{Room: room})
		pct := percent(spent, budget)

		level := LevelOK
		switch {
		case pct.GreaterThanOrEqual(hundred):
			level = LevelOver
		case pct.GreaterThanOrEqual(warnAt):
			level = LevelWarn
		}
		out = append(out, RoomBudget{
			Room:    room,
			Budget:  budget,
			Spent:   spent,
			Percent: decimal.Min(pct, hundred).Round(1),
			Level:   level,
		})
	}
	return out
}

// Alert flags a room whose spend exceeds or approaches its budget.
type Alert struct {
	Room   string
	Level  string // LevelOver or LevelNear
	Spent  decimal.Decimal
	Budget decimal.Decimal
}

// BudgetAlerts reports rooms spending more than their budget, or at least 90% of it.
func BudgetAlerts(l Lister, b record.Budget) []Alert {
	var out []Alert
	for _, room := range record.BudgetRooms() {
		budget := b.For(room)
		if !budget.IsPositive() {
			continue
		}
		spent := TotalExpenses(l, ExpenseFilter{Room: room})
		switch {
		case spent.GreaterThan(budget):
			out = append(out, Alert{Room: room, Level: LevelOver, Spent: spent, Budget: budget})
		case spent.GreaterThanOrEqual(budget.Mul(ninety)):
			out = append(out, Alert{Room: room, Level: LevelNear, Spent: spent, Budget: budget})
		}
	}
	return out
}

// MaterialStatusCounts counts materials per status. Every known status is present.
func MaterialStatusCounts(l Lister) map[string]int {
	counts := map[string]int{}
	for _, s := range model.MaterialStatuses() {
		counts[string(s)] = 0
	}
	for _, r := range l.ListAll(record.Materials) {
		counts[r.String(model.FieldStatus)]++
	}
	return counts
}

// TaskStatusCounts counts tasks per status. Every known status is present.
func TaskStatusCounts(l Lister) map[string]int {
	counts := map[string]int{}
	for _, s := range model.TaskStatuses() {
		counts[string(s)] = 0
	}
	for _, r := range l.ListAll(record.Tasks) {
		counts[r.String(model.FieldStatus)]++
	}
	return counts
}

// Balance is what a professional was paid.
type Balance struct {
	Professional model.Professional
	Paid         decimal.Decimal
	Payments     int
}

// ProfessionalBalances lists each professional with their payment total.
func ProfessionalBalances(l Lister) []Balance {
	payments := l.ListAll(record.Payments)
	var out []Balance
	for _, r := range l.ListAll(record.Professionals) {
		b := Balance{Professional: model.ProfessionalFromRecord(r), Paid: decimal.Zero}
		for _, p := range payments {
			if p.String("professionalId") == r.ID() {
				b.Paid = b.Paid.Add(p.Decimal(model.FieldAmount))
				b.Payments++
			}
		}
		out = append(out, b)
	}
	return out
}

// ShoppingItem is a pending material priced for purchase.
type ShoppingItem struct {
	Material  model.Material
	BestQuote record.Record // nil when no supplier quoted it
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// ShoppingList is the pending materials with their grand total.
type ShoppingList struct {
	Items []ShoppingItem
	Total decimal.Decimal
}

// BuildShoppingList prices pending materials with their best quote,
// falling back to the material's own unit price.
func BuildShoppingList(l Lister) ShoppingList {
	best := map[string]record.Record{}
	for _, g := range QuoteGroups(l) {
		best[g.Material] = g.Best()
	}

	list := ShoppingList{Total: decimal.Zero}
	for _, r := range l.ListAll(record.Materials) {
		m := model.MaterialFromRecord(r)
		if m.Status != model.MaterialPending {
			continue
		}
		item := ShoppingItem{Material: m, UnitPrice: m.UnitPrice}
		if q, ok := best[MaterialKey(m.Name)]; ok {
			item.BestQuote = q
			item.UnitPrice = q.Decimal("price")
		}
		item.Subtotal = item.UnitPrice.Mul(m.Quantity)
		list.Total = list.Total.Add(item.Subtotal)
		list.Items = append(list.Items, item)
	}
	return list
}

// Overview is the headline dashboard figures.
type Overview struct {
	Budget    decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Materials decimal.Decimal
	Labor     decimal.Decimal
	Progress  int
	TasksDone int
	Tasks     int
}

// BuildOverview computes the dashboard figures.
func BuildOverview(l Lister, b record.Budget) Overview {
	spent := TotalExpenses(l, ExpenseFilter{})
	counts := TaskStatusCounts(l)
	return Overview{
		Budget:    b.Total(),
		Spent:     spent,
		Remaining: b.Total().Sub(spent),
		Materials: TotalMaterialsCost(l, MaterialFilter{}),
		Labor:     TotalPayments(l, PaymentFilter{}),
		Progress:  Progress(l),
		TasksDone: counts[string(model.TaskDone)],
		Tasks:     len(l.ListAll(record.Tasks)),
	}
}
