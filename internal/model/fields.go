package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/record"
)

// Kind is how a field's text input is converted.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

// Field is one editable field of an entity.
type Field struct {
	Name string
	Kind Kind
}

var editable = map[record.Collection][]Field{
	record.Expenses: {
		{FieldDescription, KindText}, {FieldAmount, KindNumber}, {FieldDate, KindText},
		{FieldCategory, KindText}, {FieldRoom, KindText}, {"paymentMethod", KindText},
	},
	record.Materials: {
		{"name", KindText}, {"quantity", KindNumber}, {"unit", KindText},
		{"unitPrice", KindNumber}, {FieldRoom, KindText}, {FieldStatus, KindText},
	},
	record.Tasks: {
		{FieldDescription, KindText}, {FieldRoom, KindText}, {"startDate", KindText},
		{"endDate", KindText}, {"assignee", KindText}, {FieldStatus, KindText},
	},
	record.Professionals: {
		{"name", KindText}, {"specialty", KindText}, {"contact", KindText},
		{"billingType", KindText}, {"rate", KindNumber},
	},
	record.Payments: {
		{"professionalId", KindText}, {FieldAmount, KindNumber}, {FieldDate, KindText},
		{FieldDescription, KindText},
	},
	record.Suppliers: {
		{"name", KindText}, {"kind", KindText}, {"contact", KindText}, {"address", KindText},
	},
	record.Quotes: {
		{"supplierId", KindText}, {"material", KindText}, {"price", KindNumber},
		{"unit", KindText}, {"notes", KindText},
	},
}

// Fields lists the editable fields of a collection's entity.
func Fields(c record.Collection) []Field {
	return editable[c]
}

// ParseAssignments converts "field=value" pairs into a partial record,
// rejecting fields the entity does not have.
func ParseAssignments(c record.Collection, pairs []string) (record.Record, error) {
	fields := Fields(c)
	out := make(record.Record, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("expected field=value, got %q", pair)
		}
		f, ok := lookup(fields, name)
		if !ok {
			return nil, fmt.Errorf("%s has no editable field %q", c, name)
		}
		v, err := f.parse(raw)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func lookup(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (f Field) parse(raw string) (any, error) {
	switch f.Kind {
	case KindNumber:
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", f.Name, raw)
		}
		return d.InexactFloat64(), nil
	}
	return raw, nil
}
