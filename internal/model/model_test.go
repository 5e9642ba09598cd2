package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reforma-dev/reforma/internal/record"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validExpense() Expense {
	return Expense{
		Description:   "Cement",
		Amount:        dec("35.90"),
		Date:          "2026-02-20",
		Category:      CategoryMaterial,
		Room:          "bath",
		PaymentMethod: PaymentCash,
	}
}

func TestExpenseRecordMapping(t *testing.T) {
	e := validExpense()
	r := e.ToRecord()
	assert.Equal(t, 35.90, r[FieldAmount])
	assert.NotContains(t, r, "receiptId")
	assert.NotContains(t, r, "installmentTotal")

	r[record.FieldID] = "x1"
	back := ExpenseFromRecord(r)
	assert.Equal(t, "x1", back.ID)
	assert.True(t, back.Amount.Equal(e.Amount))
	assert.Equal(t, e.Description, back.Description)
	assert.Equal(t, e.Room, back.Room)
}

func TestMaterialFromRecord_StringNumbers(t *testing.T) {
	m := MaterialFromRecord(record.Record{"name": "Sand", "quantity": "3", "unitPrice": "189", "status": "pending"})
	assert.True(t, m.Cost().Equal(dec("567")))
	assert.Equal(t, MaterialPending, m.Status)
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate("expense", validExpense()))
	assert.NoError(t, Validate("material", Material{
		Name: "Sand", Quantity: dec("3"), Unit: "bag", UnitPrice: dec("189"), Room: "bath", Status: MaterialPending,
	}))
	assert.NoError(t, Validate("task", Task{Description: "Tile", Room: "bath", Status: TaskPending}))
}

func TestValidate_Fields(t *testing.T) {
	e := validExpense()
	e.Description = ""
	e.Amount = decimal.Zero
	e.Date = "20/02/2026"

	err := Validate("expense", e)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "expense", verr.Entity)
	assert.ElementsMatch(t, []FieldError{
		{Field: "description", Rule: "required"},
		{Field: "amount", Rule: "gt"},
		{Field: "date", Rule: "datetime"},
	}, verr.Fields)
	assert.Contains(t, err.Error(), "invalid expense")
}

func TestValidate_Status(t *testing.T) {
	err := Validate("task", Task{Description: "Tile", Room: "bath", Status: "someday"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []FieldError{{Field: "status", Rule: "oneof"}}, verr.Fields)
}

func TestSplitInstallments(t *testing.T) {
	e := validExpense()
	e.Description = "Tiles"
	e.Amount = dec("1000")
	e.Date = "2026-01-31"

	parts, err := SplitInstallments(e, 3)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	assert.Equal(t, "Tiles (1/3)", parts[0].Description)
	assert.Equal(t, "Tiles (3/3)", parts[2].Description)
	for i, p := range parts {
		assert.True(t, p.Amount.Equal(dec("333.33")), "part %d amount %s", i, p.Amount)
		assert.Equal(t, i+1, p.InstallmentCurrent)
		assert.Equal(t, 3, p.InstallmentTotal)
	}
	assert.Equal(t, "2026-01-31", parts[0].Date)
	// Month overflow rolls forward, as calendar arithmetic does.
	assert.Equal(t, "2026-03-03", parts[1].Date)
	assert.Equal(t, "2026-03-31", parts[2].Date)

	r := parts[1].ToRecord()
	assert.Equal(t, 2, r["installmentCurrent"])
}

func TestSplitInstallments_Errors(t *testing.T) {
	_, err := SplitInstallments(validExpense(), 1)
	assert.Error(t, err)

	e := validExpense()
	e.Date = ""
	_, err = SplitInstallments(e, 2)
	assert.Error(t, err)
}

func TestParseAssignments(t *testing.T) {
	partial, err := ParseAssignments(record.Expenses, []string{"amount=42.5", "room=bath", "description=Tile = grey"})
	require.NoError(t, err)
	assert.Equal(t, record.Record{"amount": 42.5, "room": "bath", "description": "Tile = grey"}, partial)

	_, err = ParseAssignments(record.Expenses, []string{"amount=lots"})
	assert.Error(t, err)

	_, err = ParseAssignments(record.Expenses, []string{"id=x"})
	assert.Error(t, err)

	_, err = ParseAssignments(record.Quotes, []string{"price"})
	assert.Error(t, err)
}

func TestFieldsCoverEveryCollection(t *testing.T) {
	for _, c := range record.Collections() {
		assert.NotEmpty(t, Fields(c), "collection %s", c)
	}
}
