// Package format renders prices and dates for templates.
package format

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("en-AU"))

// Price formats a major-unit amount. Whole amounts drop the cents, so
// 4999 renders as "$4,999" and 1299.5 as "$1,299.50". Currencies other than
// AUD are prefixed with their code.
func Price(amount float64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	neg := amount < 0
	amount = math.Abs(amount)

	var digits string
	if amount == math.Trunc(amount) {
		digits = printer.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
	} else {
		digits = printer.Sprint(number.Decimal(amount, number.Scale(2)))
	}

	out := "$" + digits
	if currency != "" && currency != "AUD" {
		out = currency + " " + out
	}
	if neg {
		return "-" + out
	}
	return out
}

// Date formats t in the short Australian form, e.g. "2 Jan 2006".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}

// ISODate formats t as YYYY-MM-DD for datetime attributes and structured data.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
