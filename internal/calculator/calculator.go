// Package calculator estimates material quantities from room measurements.
package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/model"
)

// Field names one measurement.
type Field string

const (
	Width       Field = "width"        // m
	Length      Field = "length"       // m
	Height      Field = "height"       // m
	Thickness   Field = "thickness"    // cm
	TotalLength Field = "total-length" // m
)

// ErrMeasurement is returned when a measurement is missing or not positive.
var ErrMeasurement = errors.New("measurements must be positive")

// Estimator computes the quantity of one material.
type Estimator struct {
	Key    string
	Name   string
	Unit   string
	Label  string
	Fields []Field
	calc   func(v []decimal.Decimal) decimal.Decimal
}

// Result is an estimated quantity.
type Result struct {
	Estimator Estimator
	Quantity  decimal.Decimal
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	tenth = d("0.1")
	wall  = []Field{Width, Height}
	floor = []Field{Width, Length}
	slab  = []Field{Width, Length, Thickness}
)

func area(v []decimal.Decimal) decimal.Decimal { return v[0].Mul(v[1]) }

// volume is width*length*thickness, with thickness in centimetres.
func volume(v []decimal.Decimal) decimal.Decimal {
	return v[0].Mul(v[1]).Mul(v[2].Div(decimal.NewFromInt(100)))
}

var estimators = []Estimator{
	{Key: "floor-tile", Name: "Floor tile", Unit: "m2", Label: "m2 (+10% waste)", Fields: floor,
		calc: func(v []decimal.Decimal) decimal.Decimal { return area(v).Mul(d("1.1")).Ceil() }},
	{Key: "floor-mortar", Name: "Floor mortar", Unit: "bag 20kg", Label: "20kg bags (5kg/m2)", Fields: floor,
		calc: func(v []decimal.Decimal) decimal.Decimal { return area(v).Mul(d("5")).Div(d("20")).Ceil() }},
	{Key: "grout", Name: "Grout", Unit: "kg", Label: "kg (0.5kg/m2)", Fields: floor,
		calc: func(v []decimal.Decimal) decimal.Decimal { return area(v).Mul(d("0.5")).Ceil() }},
	{Key: "paint", Name: "Paint (2 coats)", Unit: "can 3.6L", Label: "3.6L cans (40m2/can, 2 coats)", Fields: wall,
		calc: func(v []decimal.Decimal) decimal.Decimal { return area(v).Mul(d("2")).Div(d("40")).Ceil() }},
	{Key: "putty", Name: "Wall putty", Unit: "can 25kg", Label: "25kg cans (1kg/m2)", Fields: wall,
		calc: func(v []decimal.Decimal) decimal.Decimal { return area(v).Div(d("25")).Ceil() }},
	{Key: "cement", Name: "Cement", Unit: "bag 50kg", Label: "50kg bags (subfloor)", Fields: slab,
		calc: func(v []decimal.Decimal) decimal.Decimal { return volume(v).Mul(d("14")).Ceil() }},
	{Key: "sand", Name: "Sand", Unit: "m3", Label: "m3 (subfloor)", Fields: slab,
		calc: func(v []decimal.Decimal) decimal.Decimal { return volume(v).Mul(d("1.3")).Mul(d("10")).Ceil().Mul(tenth) }},
	{Key: "brick", Name: "Brick (wall)", Unit: "un", Label: "bricks (25/m2 +5%)", Fields: wall,
		calc: func(v []decimal.Decimal) decimal.Decimal { return area(v).Mul(d("25")).Mul(d("1.05")).Ceil() }},
	{Key: "wall-tile", Name: "Wall tile", Unit: "m2", Label: "m2 (+10% waste)", Fields: wall,
		calc: func(v []decimal.Decimal) decimal.Decimal { return area(v).Mul(d("1.1")).Ceil() }},
	{Key: "pvc-pipe", Name: "PVC pipe 100mm", Unit: "bar 6m", Label: "6m bars", Fields: []Field{TotalLength},
		calc: func(v []decimal.Decimal) decimal.Decimal { return v[0].Div(d("6")).Ceil() }},
}

// Estimators lists every estimator.
func Estimators() []Estimator {
	return estimators
}

// Get returns an estimator by key.
func Get(key string) (Estimator, bool) {
	for _, e := range estimators {
		if e.Key == key {
			return e, true
		}
	}
	return Estimator{}, false
}

// Estimate computes the quantity for the given measurements. Every field of
// the estimator must be present and positive.
func (e Estimator) Estimate(values map[Field]decimal.Decimal) (Result, error) {
	v := make([]decimal.Decimal, len(e.Fields))
	for i, f := range e.Fields {
		x, ok := values[f]
		if !ok || !x.IsPositive() {
			return Result{}, fmt.Errorf("%s: %s: %w", e.Key, f, ErrMeasurement)
		}
		v[i] = x
	}
	return Result{Estimator: e, Quantity: e.calc(v)}, nil
}

// Material turns the estimate into a pending material for room.
func (r Result) Material(room string) model.Material {
	return model.Material{
		Name:      r.Estimator.Name,
		Quantity:  r.Quantity,
		Unit:      r.Estimator.Unit,
		UnitPrice: decimal.Zero,
		Room:      room,
		Status:    model.MaterialPending,
	}
}
