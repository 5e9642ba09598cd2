package importer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/catalog"
	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/receipt"
	"github.com/reforma-dev/reforma/internal/record"
)

var (
	amountInLine   = regexp.MustCompile(`R?\$?\s*(\d[\d.,]*)`)
	quantityInLine = regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(un|kg|m2|m3|m|saco|lata|cx|pct|rolo)\b`)
	separators     = regexp.MustCompile(`[;\t|]+`)
)

const maxFreeText = 80

func clean(s string) string {
	s = strings.TrimSpace(separators.ReplaceAllString(s, " "))
	if r := []rune(s); len(r) > maxFreeText {
		s = string(r[:maxFreeText])
	}
	return s
}

// parseFree reads one expense per line holding an amount; the rest of the
// line is the description.
func (p *ExpenseParser) parseFree(text string) []record.Record {
	var out []record.Record
	for _, l := range lines(text) {
		m := amountInLine.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		amount, ok := receipt.ParseAmount(m[1])
		if !ok {
			continue
		}
		desc := clean(strings.Replace(l, m[0], "", 1))
		if len([]rune(desc)) <= 1 {
			continue
		}
		out = append(out, model.Expense{
			Description:   desc,
			Amount:        amount,
			Date:          p.Today,
			Category:      catalog.DetectCategory(desc),
			Room:          catalog.DetectRoom(desc),
			PaymentMethod: model.PaymentCash,
		}.ToRecord())
	}
	return out
}

// parseFree reads one material per line holding a quantity with unit or a
// price. The quantity is taken out of the line before the price is looked for.
func (p *MaterialParser) parseFree(text string) []record.Record {
	var out []record.Record
	for _, l := range lines(text) {
		rest := l
		qty, unit := decimal.NewFromInt(1), "un"
		qm := quantityInLine.FindStringSubmatch(rest)
		if qm != nil {
			if q, ok := receipt.ParseNumber(qm[1]); ok && q.IsPositive() {
				qty = q
			}
			unit = strings.ToLower(qm[2])
			rest = strings.Replace(rest, qm[0], "", 1)
		}

		price := decimal.Zero
		pm := amountInLine.FindStringSubmatch(rest)
		if pm != nil {
			if v, ok := receipt.ParseNumber(pm[1]); ok {
				price = v
			}
			rest = strings.Replace(rest, pm[0], "", 1)
		}
		if qm == nil && pm == nil {
			continue
		}

		name := clean(rest)
		if len([]rune(name)) <= 1 {
			continue
		}
		out = append(out, model.Material{
			Name:      name,
			Quantity:  qty,
			Unit:      unit,
			UnitPrice: price,
			Room:      catalog.DetectRoom(name),
			Status:    model.MaterialPending,
		}.ToRecord())
	}
	return out
}
