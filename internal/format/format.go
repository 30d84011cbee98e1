// Package format renders amounts and dates for terminal output.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/debtdesk/internal/model"
)

// Currency renders an amount with thousand separators and two decimals,
// e.g. "12.500,00 RSD".
func Currency(amount decimal.Decimal, currency string) string {
	s := amount.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}

// Date renders a calendar date as DD.MM.YYYY.
func Date(t time.Time) string { return t.Format("02.01.2006") }

// DateTime renders a timestamp as DD.MM.YYYY HH:MM.
func DateTime(t time.Time) string { return t.Format("02.01.2006 15:04") }

// RelativeTime renders the distance from now, e.g. "2 hours ago".
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}
	type unit struct {
		span time.Duration
		name string
	}
	units := []unit{
		{365 * 24 * time.Hour, "year"},
		{30 * 24 * time.Hour, "month"},
		{7 * 24 * time.Hour, "week"},
		{24 * time.Hour, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
	}
	for _, u := range units {
		if n := int(d / u.span); n >= 1 {
			if n > 1 {
				return fmt.Sprintf("%d %ss ago", n, u.name)
			}
			return fmt.Sprintf("1 %s ago", u.name)
		}
	}
	return "just now"
}

// RemainingDebt computes what a customer still owes given their payments.
// A customer marked paid owes zero regardless of the arithmetic.
func RemainingDebt(c model.Customer, payments []model.Payment) decimal.Decimal {
	if c.PaymentStatus == model.StatusPaid {
		return decimal.Zero
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.AmountPaid)
	}
	return c.TotalDebt.Sub(paid)
}
