// Package report renders the renovation summary for sharing: a plain text
// digest and an XLSX workbook.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/record"
	"github.com/reforma-dev/reforma/internal/schedule"
	"github.com/reforma-dev/reforma/internal/summary"
)

// RoomLine is one room's spend against its budget.
type RoomLine struct {
	Room   string
	Spent  decimal.Decimal
	Budget decimal.Decimal
}

// Data is everything a report shows, gathered in one pass.
type Data struct {
	Project   string
	Currency  string
	Generated time.Time

	Overview       summary.Overview
	Rooms          []RoomLine
	MaterialCounts map[string]int
	Balances       []summary.Balance
	Tasks          []model.Task // schedule order
	Late           []model.Task

	Expenses      []model.Expense
	Materials     []model.Material
	Payments      []model.Payment
	Professionals []model.Professional
}

// Collect gathers report data from the collections and budget.
func Collect(l summary.Lister, b record.Budget, project, currency string, now time.Time) Data {
	d := Data{
		Project:        project,
		Currency:       currency,
		Generated:      now,
		Overview:       summary.BuildOverview(l, b),
		MaterialCounts: summary.MaterialStatusCounts(l),
		Balances:       summary.ProfessionalBalances(l),
	}
	for _, room := range record.BudgetRooms() {
		d.Rooms = append(d.Rooms, RoomLine{
			Room:   room,
			Spent:  summary.TotalExpenses(l, summary.ExpenseFilter{Room: room}),
			Budget: b.For(room),
		})
	}

	today := now.Format(record.DateFormat)
	for _, r := range l.ListAll(record.Tasks) {
		t := model.TaskFromRecord(r)
		d.Tasks = append(d.Tasks, t)
		if t.Status == model.TaskLate || schedule.Overdue(t, today) {
			d.Late = append(d.Late, t)
		}
	}
	schedule.Sort(d.Tasks)

	for _, r := range l.ListAll(record.Expenses) {
		d.Expenses = append(d.Expenses, model.ExpenseFromRecord(r))
	}
	for _, r := range l.ListAll(record.Materials) {
		d.Materials = append(d.Materials, model.MaterialFromRecord(r))
	}
	for _, r := range l.ListAll(record.Payments) {
		d.Payments = append(d.Payments, model.PaymentFromRecord(r))
	}
	for _, r := range l.ListAll(record.Professionals) {
		d.Professionals = append(d.Professionals, model.ProfessionalFromRecord(r))
	}
	return d
}

type writer struct {
	sb       strings.Builder
	p        *message.Printer
	currency string
}

func (w *writer) line(format string, args ...any) {
	w.sb.WriteString(w.p.Sprintf(format, args...))
	w.sb.WriteByte('\n')
}

func (w *writer) money(d decimal.Decimal) string {
	return w.p.Sprintf("%s %v", w.currency, number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

func taskMark(s model.TaskStatus) string {
	switch s {
	case model.TaskDone:
		return "[x]"
	case model.TaskLate:
		return "[!]"
	}
	return "[ ]"
}

// Text renders the share summary. lang is a BCP 47 tag selecting number
// formatting, e.g. "pt-BR" or "en".
func Text(d Data, lang string) (string, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("report language %q: %w", lang, err)
	}
	w := &writer{p: message.NewPrinter(tag), currency: d.Currency}
	o := d.Overview

	w.line("Renovation report: %s", d.Project)
	w.line("Generated %s", d.Generated.Format(record.DateFormat))
	w.line("")
	w.line("Finances")
	w.line("  Budget:    %s", w.money(o.Budget))
	w.line("  Spent:     %s", w.money(o.Spent))
	w.line("  Remaining: %s", w.money(o.Remaining))
	w.line("  Materials: %s", w.money(o.Materials))
	w.line("  Labor:     %s", w.money(o.Labor))
	w.line("  Progress:  %d%% (%d/%d tasks)", o.Progress, o.TasksDone, o.Tasks)

	w.line("")
	w.line("Rooms")
	for _, r := range d.Rooms {
		w.line("  %s: %s / %s", r.Room, w.money(r.Spent), w.money(r.Budget))
	}

	w.line("")
	w.line("Materials")
	for _, s := range model.MaterialStatuses() {
		w.line("  %s: %d", s, d.MaterialCounts[string(s)])
	}

	if len(d.Balances) > 0 {
		w.line("")
		w.line("Labor")
		for _, b := range d.Balances {
			w.line("  %s (%s): paid %s in %d payment(s)", b.Professional.Name, b.Professional.Specialty, w.money(b.Paid), b.Payments)
		}
	}

	if len(d.Tasks) > 0 {
		w.line("")
		w.line("Schedule")
		for _, t := range d.Tasks {
			dates := ""
			if t.StartDate != "" {
				dates = fmt.Sprintf(" %s to %s", t.StartDate, t.EndDate)
			}
			w.line("  %s %s [%s]%s", taskMark(t.Status), t.Description, t.Room, dates)
		}
	}

	if len(d.Late) > 0 {
		w.line("")
		w.line("Late tasks")
		for _, t := range d.Late {
			w.line("  %s (due %s)", t.Description, t.EndDate)
		}
	}
	return w.sb.String(), nil
}
