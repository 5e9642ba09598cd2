package summary

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reforma-dev/reforma/internal/kv"
	"github.com/reforma-dev/reforma/internal/record"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func newStore(t *testing.T) *record.Store {
	t.Helper()
	return record.NewStore(kv.NewMemory())
}

func add(t *testing.T, s *record.Store, c record.Collection, fields record.Record) record.Record {
	t.Helper()
	r, err := s.Create(c, fields)
	require.NoError(t, err)
	return r
}

func TestTotalExpenses_Empty(t *testing.T) {
	s := newStore(t)
	assertDec(t, "0", TotalExpenses(s, ExpenseFilter{}))
	assertDec(t, "0", TotalMaterialsCost(s, MaterialFilter{}))
	assertDec(t, "0", TotalPayments(s, PaymentFilter{}))
	assert.Equal(t, 0, Progress(s))
	assert.Empty(t, QuoteGroups(s))
}

func TestTotalExpenses_Cement(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Expenses, record.Record{"description": "Cement", "amount": 35.90, "room": "bath", "category": "material", "date": "2026-02-20"})

	assertDec(t, "35.90", TotalExpenses(s, ExpenseFilter{}))
	assertDec(t, "35.90", TotalExpenses(s, ExpenseFilter{Room: "bath"}))
	assertDec(t, "0", TotalExpenses(s, ExpenseFilter{Room: "bedroom"}))
}

func TestTotalExpenses_Filters(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Expenses, record.Record{"amount": 100.0, "room": "bath", "category": "material"})
	add(t, s, record.Expenses, record.Record{"amount": 50.0, "room": "bath", "category": "labor"})
	add(t, s, record.Expenses, record.Record{"amount": "25.5", "room": "bbq", "category": "material"})
	add(t, s, record.Expenses, record.Record{"amount": "n/a", "room": "bbq", "category": "material"})
	add(t, s, record.Expenses, record.Record{"amount": 7.0, "room": "Bath", "category": "material"})

	assertDec(t, "182.5", TotalExpenses(s, ExpenseFilter{}))
	assertDec(t, "150", TotalExpenses(s, ExpenseFilter{Room: "bath"}))
	assertDec(t, "100", TotalExpenses(s, ExpenseFilter{Room: "bath", Category: "material"}))
	assertDec(t, "132.5", TotalExpenses(s, ExpenseFilter{Category: "material"}))
	assertDec(t, "7", TotalExpenses(s, ExpenseFilter{Room: "Bath"}))
}

func TestTotalMaterialsCost(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Materials, record.Record{"name": "Cement", "quantity": 10.0, "unitPrice": 35.90, "room": "bath", "status": "pending"})
	add(t, s, record.Materials, record.Record{"name": "Tile", "quantity": 3.0, "unitPrice": 189.0, "room": "bbq", "status": "bought"})

	assertDec(t, "926.00", TotalMaterialsCost(s, MaterialFilter{}))
	assertDec(t, "359", TotalMaterialsCost(s, MaterialFilter{Room: "bath"}))
	assertDec(t, "567", TotalMaterialsCost(s, MaterialFilter{Status: "bought"}))
}

func TestTotalPayments(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Payments, record.Record{"professionalId": "p1", "amount": 200.0})
	add(t, s, record.Payments, record.Record{"professionalId": "p2", "amount": 150.0})

	assertDec(t, "350", TotalPayments(s, PaymentFilter{}))
	assertDec(t, "200", TotalPayments(s, PaymentFilter{ProfessionalID: "p1"}))
}

func TestProgress(t *testing.T) {
	tests := []struct {
		statuses []string
		want     int
	}{
		{[]string{"done"}, 100},
		{[]string{"done", "pending"}, 50},
		{[]string{"done", "pending", "pending"}, 33},
		{[]string{"done", "done", "pending"}, 67},
		{[]string{"done", "late", "late", "in-progress", "pending", "pending", "pending", "pending"}, 13},
	}
	for _, tt := range tests {
		s := newStore(t)
		for _, st := range tt.statuses {
			add(t, s, record.Tasks, record.Record{"status": st})
		}
		assert.Equal(t, tt.want, Progress(s), "statuses %v", tt.statuses)
	}
}

func TestQuoteGroups(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Quotes, record.Record{"material": "Cement ", "price": 40.0, "supplierId": "a"})
	add(t, s, record.Quotes, record.Record{"material": "sand", "price": 90.0, "supplierId": "a"})
	add(t, s, record.Quotes, record.Record{"material": "cement", "price": 35.0, "supplierId": "b"})
	add(t, s, record.Quotes, record.Record{"material": "CEMENT", "price": 35.0, "supplierId": "c"})

	groups := QuoteGroups(s)
	require.Len(t, groups, 2)
	assert.Equal(t, "cement", groups[0].Material)
	assert.Equal(t, "sand", groups[1].Material)

	require.Len(t, groups[0].Quotes, 3)
	// Ties keep insertion order.
	assert.Equal(t, "b", groups[0].Best()["supplierId"])
	assert.Equal(t, "c", groups[0].Quotes[1]["supplierId"])
	assert.Equal(t, "a", groups[0].Quotes[2]["supplierId"])

	best, ok := BestQuote(s, "  Cement")
	require.True(t, ok)
	assert.Equal(t, "b", best["supplierId"])

	_, ok = BestQuote(s, "lime")
	assert.False(t, ok)
}

func TestRoomBudgetsAndAlerts(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Expenses, record.Record{"amount": 1200.0, "room": "bath"})
	add(t, s, record.Expenses, record.Record{"amount": 850.0, "room": "bbq"})
	add(t, s, record.Expenses, record.Record{"amount": 910.0, "room": "bedroom"})
	add(t, s, record.Expenses, record.Record{"amount": 100.0, "room": "general"})

	b := record.Budget{BBQ: 1000, Bath: 1000, Bedroom: 1000}

	rooms := RoomBudgets(s, b)
	require.Len(t, rooms, 3)
	byRoom := map[string]RoomBudget{}
	for _, r := range rooms {
		byRoom[r.Room] = r
	}
	assert.Equal(t, LevelOver, byRoom["bath"].Level)
	assertDec(t, "100", byRoom["bath"].Percent)
	assert.Equal(t, LevelWarn, byRoom["bbq"].Level)
	assertDec(t, "85", byRoom["bbq"].Percent)
	assert.Equal(t, LevelWarn, byRoom["bedroom"].Level)

	alerts := BudgetAlerts(s, b)
	require.Len(t, alerts, 2)
	assert.Equal(t, "bath", alerts[0].Room)
	assert.Equal(t, LevelOver, alerts[0].Level)
	assertDec(t, "1200", alerts[0].Spent)
	assert.Equal(t, "bedroom", alerts[1].Room)
	assert.Equal(t, LevelNear, alerts[1].Level)
}

func TestStatusCounts(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Materials, record.Record{"status": "pending"})
	add(t, s, record.Materials, record.Record{"status": "pending"})
	add(t, s, record.Materials, record.Record{"status": "applied"})
	add(t, s, record.Tasks, record.Record{"status": "late"})

	m := MaterialStatusCounts(s)
	assert.Equal(t, 2, m["pending"])
	assert.Equal(t, 0, m["bought"])
	assert.Equal(t, 1, m["applied"])

	tasks := TaskStatusCounts(s)
	assert.Equal(t, 1, tasks["late"])
	assert.Equal(t, 0, tasks["done"])
}

func TestProfessionalBalances(t *testing.T) {
	s := newStore(t)
	p := add(t, s, record.Professionals, record.Record{"name": "Joao", "billingType": "daily", "rate": 250.0})
	add(t, s, record.Payments, record.Record{"professionalId": p.ID(), "amount": 250.0})
	add(t, s, record.Payments, record.Record{"professionalId": p.ID(), "amount": 500.0})
	add(t, s, record.Payments, record.Record{"professionalId": "gone", "amount": 99.0})

	balances := ProfessionalBalances(s)
	require.Len(t, balances, 1)
	assert.Equal(t, "Joao", balances[0].Professional.Name)
	assertDec(t, "750", balances[0].Paid)
	assert.Equal(t, 2, balances[0].Payments)
}

func TestShoppingList(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Materials, record.Record{"name": "Cement", "quantity": 10.0, "unitPrice": 40.0, "status": "pending"})
	add(t, s, record.Materials, record.Record{"name": "Grout", "quantity": 2.0, "unitPrice": 15.5, "status": "pending"})
	add(t, s, record.Materials, record.Record{"name": "Tile", "quantity": 3.0, "unitPrice": 189.0, "status": "bought"})
	add(t, s, record.Quotes, record.Record{"material": "cement", "price": 35.90})
	add(t, s, record.Quotes, record.Record{"material": "cement", "price": 38.0})

	list := BuildShoppingList(s)
	require.Len(t, list.Items, 2)
	assertDec(t, "359", list.Items[0].Subtotal)
	assert.NotNil(t, list.Items[0].BestQuote)
	assert.Nil(t, list.Items[1].BestQuote)
	assertDec(t, "31", list.Items[1].Subtotal)
	assertDec(t, "390", list.Total)
}

func TestBuildOverview(t *testing.T) {
	s := newStore(t)
	add(t, s, record.Expenses, record.Record{"amount": 300.0, "room": "bath"})
	add(t, s, record.Tasks, record.Record{"status": "done"})
	add(t, s, record.Tasks, record.Record{"status": "pending"})

	o := BuildOverview(s, record.Budget{Bath: 1000, General: 500})
	assertDec(t, "1500", o.Budget)
	assertDec(t, "300", o.Spent)
	assertDec(t, "1200", o.Remaining)
	assert.Equal(t, 50, o.Progress)
	assert.Equal(t, 1, o.TasksDone)
	assert.Equal(t, 2, o.Tasks)
}
