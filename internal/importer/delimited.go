package importer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/catalog"
	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/receipt"
	"github.com/reforma-dev/reforma/internal/record"
)

var headerLine = regexp.MustCompile(`(?i)^(descri|nome|name|item|material|tarefa|task|data|date|#)`)

// lines splits text into trimmed lines longer than two characters.
func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if utf8.RuneCountInString(l) > 2 {
			out = append(out, l)
		}
	}
	return out
}

// delimiter prefers tab, then semicolon, then comma.
func delimiter(text string) string {
	switch {
	case strings.Contains(text, "\t"):
		return "\t"
	case strings.Contains(text, ";"):
		return ";"
	}
	return ","
}

// rows returns the data rows of delimited text: header-like lines and lines
// with fewer than two columns are skipped.
func rows(text string) [][]string {
	delim := delimiter(text)
	var out [][]string
	for _, l := range lines(text) {
		if headerLine.MatchString(l) {
			continue
		}
		cols := split(l, delim)
		if len(cols) < 2 {
			continue
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		out = append(out, cols)
	}
	return out
}

// split cuts a line at delim. A comma between two digits is a decimal
// comma, not a delimiter.
func split(line, delim string) []string {
	if delim != "," {
		return strings.Split(line, delim)
	}
	var cols []string
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] != ',' {
			continue
		}
		if i > 0 && i+1 < len(line) && isDigit(line[i-1]) && isDigit(line[i+1]) {
			continue
		}
		cols = append(cols, line[start:i])
		start = i + 1
	}
	return append(cols, line[start:])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func col(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// money reads an amount column, ignoring currency marks and spaces.
func money(s string) (decimal.Decimal, bool) {
	s = strings.Map(func(r rune) rune {
		if r == 'R' || r == '$' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	return receipt.ParseNumber(s)
}

// ExpenseParser reads description;amount;date;category;room;payment rows.
// Rows without a positive amount are skipped.
type ExpenseParser struct {
	Today string
}

func (p *ExpenseParser) Collection() record.Collection { return record.Expenses }

func (p *ExpenseParser) Parse(text string) []record.Record {
	var out []record.Record
	for _, cols := range rows(text) {
		amount, ok := money(cols[1])
		if !ok || !amount.IsPositive() {
			continue
		}
		out = append(out, model.Expense{
			Description:   cols[0],
			Amount:        amount,
			Date:          or(col(cols, 2), p.Today),
			Category:      or(col(cols, 3), catalog.DetectCategory(cols[0])),
			Room:          or(col(cols, 4), catalog.DetectRoom(cols[0])),
			PaymentMethod: or(col(cols, 5), model.PaymentCash),
		}.ToRecord())
	}
	if len(out) == 0 {
		return p.parseFree(text)
	}
	return out
}

// MaterialParser reads name;quantity;unit;unitPrice;room;status rows.
type MaterialParser struct{}

func (p *MaterialParser) Collection() record.Collection { return record.Materials }

func (p *MaterialParser) Parse(text string) []record.Record {
	var out []record.Record
	for _, cols := range rows(text) {
		qty, ok := receipt.ParseNumber(cols[1])
		if !ok || qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		price, _ := money(col(cols, 3))
		out = append(out, model.Material{
			Name:      cols[0],
			Quantity:  qty,
			Unit:      or(col(cols, 2), "un"),
			UnitPrice: price,
			Room:      or(col(cols, 4), catalog.DetectRoom(cols[0])),
			Status:    model.MaterialStatus(or(col(cols, 5), string(model.MaterialPending))),
		}.ToRecord())
	}
	if len(out) == 0 {
		return p.parseFree(text)
	}
	return out
}

// TaskParser reads description;room;start;end;assignee;status rows.
type TaskParser struct{}

func (p *TaskParser) Collection() record.Collection { return record.Tasks }

func (p *TaskParser) Parse(text string) []record.Record {
	var out []record.Record
	for _, cols := range rows(text) {
		out = append(out, model.Task{
			Description: cols[0],
			Room:        or(cols[1], catalog.DetectRoom(cols[0])),
			StartDate:   col(cols, 2),
			EndDate:     col(cols, 3),
			Assignee:    col(cols, 4),
			Status:      model.TaskStatus(or(col(cols, 5), string(model.TaskPending))),
		}.ToRecord())
	}
	return out
}

// ProfessionalParser reads name;specialty;contact;billing;rate rows.
type ProfessionalParser struct{}

func (p *ProfessionalParser) Collection() record.Collection { return record.Professionals }

func (p *ProfessionalParser) Parse(text string) []record.Record {
	var out []record.Record
	for _, cols := range rows(text) {
		rate, _ := money(col(cols, 4))
		out = append(out, model.Professional{
			Name:        cols[0],
			Specialty:   cols[1],
			Contact:     col(cols, 2),
			BillingType: or(col(cols, 3), model.BillingDaily),
			Rate:        rate,
		}.ToRecord())
	}
	return out
}
