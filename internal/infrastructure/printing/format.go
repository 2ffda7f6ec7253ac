package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts, quantities and labels for one locale
type Formatter struct {
	tag      language.Tag
	printer  *message.Printer
	title    cases.Caser
	currency string
}

// NewFormatter parses a BCP 47 tag such as "en-US" or "de-DE". The currency
// code is the one used in the tag's region, USD when the region has none.
func NewFormatter(locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid receipt language %q: %w", locale, err)
	}
	code := "USD"
	if unit, conf := currency.FromTag(tag); conf != language.No {
		code = unit.String()
	}
	return &Formatter{
		tag:      tag,
		printer:  message.NewPrinter(tag),
		title:    cases.Title(tag),
		currency: code,
	}, nil
}

// Language returns the parsed tag
func (f *Formatter) Language() language.Tag {
	return f.tag
}

// Currency returns the ISO 4217 code printed on receipts
func (f *Formatter) Currency() string {
	return f.currency
}

// Money formats an amount with two fraction digits and locale grouping
func (f *Formatter) Money(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// Percent formats a fraction such as 0.0825 as a percentage
func (f *Formatter) Percent(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.Mul(decimal.NewFromInt(100)).InexactFloat64(), number.MaxFractionDigits(2))) + "%"
}

// Int formats a count with locale grouping
func (f *Formatter) Int(n int) string {
	return f.printer.Sprint(number.Decimal(n))
}

// Label turns an enum value such as E_WALLET into "E Wallet"
func (f *Formatter) Label(v string) string {
	return f.title.String(strings.ToLower(strings.ReplaceAll(v, "_", " ")))
}

// DateTime formats t in UTC with a fixed layout
func (f *Formatter) DateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}
