package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reforma-dev/reforma/internal/model"
)

func m(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEstimate(t *testing.T) {
	tests := []struct {
		key    string
		values map[Field]decimal.Decimal
		want   string
	}{
		{"floor-tile", map[Field]decimal.Decimal{Width: m("3"), Length: m("4")}, "14"},
		{"floor-tile", map[Field]decimal.Decimal{Width: m("10"), Length: m("1")}, "11"},
		{"floor-mortar", map[Field]decimal.Decimal{Width: m("3"), Length: m("4")}, "3"},
		{"grout", map[Field]decimal.Decimal{Width: m("3"), Length: m("3")}, "5"},
		{"paint", map[Field]decimal.Decimal{Width: m("10"), Height: m("2.8")}, "2"},
		{"putty", map[Field]decimal.Decimal{Width: m("10"), Height: m("2.8")}, "2"},
		{"cement", map[Field]decimal.Decimal{Width: m("3"), Length: m("4"), Thickness: m("5")}, "9"},
		{"sand", map[Field]decimal.Decimal{Width: m("3"), Length: m("4"), Thickness: m("5")}, "0.8"},
		{"brick", map[Field]decimal.Decimal{Width: m("4"), Height: m("2.5")}, "263"},
		{"wall-tile", map[Field]decimal.Decimal{Width: m("2"), Height: m("2.5")}, "6"},
		{"pvc-pipe", map[Field]decimal.Decimal{TotalLength: m("13")}, "3"},
	}
	for _, tt := range tests {
		e, ok := Get(tt.key)
		require.True(t, ok, tt.key)
		r, err := e.Estimate(tt.values)
		require.NoError(t, err, tt.key)
		assert.True(t, r.Quantity.Equal(m(tt.want)), "%s: want %s, got %s", tt.key, tt.want, r.Quantity)
	}
}

func TestEstimate_InvalidMeasurements(t *testing.T) {
	e, ok := Get("cement")
	require.True(t, ok)

	_, err := e.Estimate(map[Field]decimal.Decimal{Width: m("3"), Length: m("4")})
	assert.ErrorIs(t, err, ErrMeasurement)

	_, err = e.Estimate(map[Field]decimal.Decimal{Width: m("3"), Length: m("0"), Thickness: m("5")})
	assert.ErrorIs(t, err, ErrMeasurement)
	assert.Contains(t, err.Error(), "length")
}

func TestGet_Unknown(t *testing.T) {
	_, ok := Get("granite")
	assert.False(t, ok)
	assert.Len(t, Estimators(), 10)
}

func TestResultMaterial(t *testing.T) {
	e, _ := Get("grout")
	r, err := e.Estimate(map[Field]decimal.Decimal{Width: m("2"), Length: m("2")})
	require.NoError(t, err)

	mat := r.Material("bath")
	assert.Equal(t, "Grout", mat.Name)
	assert.Equal(t, "kg", mat.Unit)
	assert.Equal(t, model.MaterialPending, mat.Status)
	assert.True(t, mat.Quantity.Equal(m("2")))
	assert.NoError(t, model.Validate("material", mat))
}
