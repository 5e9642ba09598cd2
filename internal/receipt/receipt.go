// Package receipt pulls expense fields out of OCR text from a receipt photo.
package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Extraction holds what could be read from a receipt. Zero values mean
// the field was not found.
type Extraction struct {
	Description string
	Amount      *decimal.Decimal
	Date        string // YYYY-MM-DD
}

var (
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:total|valor|vlr|subtotal|pagar)[:\s]*R?\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)R\$\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)(?:total|valor)[:\s]*([\d.,]+)`),
	}
	datePattern   = regexp.MustCompile(`(\d{2})[/\-](\d{2})[/\-](\d{2,4})`)
	numericPrefix = regexp.MustCompile(`^\d*\.?\d*`)
	decimalDot    = regexp.MustCompile(`^\d+\.\d{1,2}(?:[^\d.]|$)`)

	maxAmount = decimal.NewFromInt(1_000_000)
)

const maxDescription = 60

// Extract reads the amount, date and description from OCR text.
func Extract(text string) Extraction {
	var ex Extraction
	for _, p := range amountPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if amount, ok := ParseAmount(m[1]); ok {
			ex.Amount = &amount
			break
		}
	}

	if m := datePattern.FindStringSubmatch(text); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day >= 1 && day <= 31 && month >= 1 && month <= 12 {
			ex.Date = fmt.Sprintf("%s-%02d-%02d", year, month, day)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) > 3 {
			ex.Description = truncate(line, maxDescription)
			break
		}
	}
	return ex
}

// ParseAmount reads a Brazilian-formatted receipt amount. Only amounts in
// (0, 1,000,000) are accepted.
func ParseAmount(s string) (decimal.Decimal, bool) {
	d, ok := ParseNumber(s)
	if !ok || !d.IsPositive() || !d.LessThan(maxAmount) {
		return decimal.Zero, false
	}
	return d, true
}

// ParseNumber reads a Brazilian-formatted number: dots group thousands and
// the first comma is the decimal separator. Without a comma, a single dot
// followed by one or two digits is taken as a decimal point ("35.90").
// Trailing garbage is ignored.
func ParseNumber(s string) (decimal.Decimal, bool) {
	if strings.Contains(s, ",") || !decimalDot.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	prefix := numericPrefix.FindString(s)
	if strings.Trim(prefix, ".") == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(prefix, "."))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
