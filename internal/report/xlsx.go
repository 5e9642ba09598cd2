package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the workbook.
const (
	SheetExpenses  = "Expenses"
	SheetMaterials = "Materials"
	SheetPayments  = "Payments"
)

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// WriteXLSX writes the expenses, materials and payments sheets to w.
func WriteXLSX(w io.Writer, d Data) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{SheetMaterials, SheetPayments} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("adding sheet %s: %w", name, err)
		}
	}

	if err := setRow(f, SheetExpenses, 1, "Date", "Description", "Category", "Room", "Payment", "Amount"); err != nil {
		return err
	}
	for i, e := range d.Expenses {
		if err := setRow(f, SheetExpenses, i+2, e.Date, e.Description, e.Category, e.Room, e.PaymentMethod, e.Amount.InexactFloat64()); err != nil {
			return fmt.Errorf("writing expense %s: %w", e.ID, err)
		}
	}

	if err := setRow(f, SheetMaterials, 1, "Name", "Quantity", "Unit", "Unit price", "Total", "Room", "Status"); err != nil {
		return err
	}
	for i, m := range d.Materials {
		if err := setRow(f, SheetMaterials, i+2, m.Name, m.Quantity.InexactFloat64(), m.Unit,
			m.UnitPrice.InexactFloat64(), m.Cost().InexactFloat64(), m.Room, string(m.Status)); err != nil {
			return fmt.Errorf("writing material %s: %w", m.ID, err)
		}
	}

	names := make(map[string]string, len(d.Professionals))
	for _, p := range d.Professionals {
		names[p.ID] = p.Name
	}
	if err := setRow(f, SheetPayments, 1, "Date", "Professional", "Description", "Amount"); err != nil {
		return err
	}
	for i, p := range d.Payments {
		if err := setRow(f, SheetPayments, i+2, p.Date, names[p.ProfessionalID], p.Description, p.Amount.InexactFloat64()); err != nil {
			return fmt.Errorf("writing payment %s: %w", p.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
