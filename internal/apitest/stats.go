package apitest

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/and161185/debtdesk/internal/model"
)

type yearMonth struct {
	year  int
	month int
}

// handleMonthlyStats aggregates expected installments and realized income per
// calendar month across all customers.
func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	expected := map[yearMonth]decimal.Decimal{}
	income := map[yearMonth]decimal.Decimal{}

	s.mu.Lock()
	for _, c := range s.customers {
		due := c.StartDate
		for i := 0; i < c.NumberOfInstallments; i++ {
			ym := yearMonth{due.Year(), int(due.Month())}
			expected[ym] = expected[ym].Add(c.InstallmentAmount)
			due = due.AddDate(0, 1, 0)
		}
	}
	for _, p := range s.payments {
		ym := yearMonth{p.PaymentDate.Year(), int(p.PaymentDate.Month())}
		income[ym] = income[ym].Add(p.AmountPaid)
	}
	s.mu.Unlock()

	months := map[yearMonth]struct{}{}
	for ym := range expected {
		months[ym] = struct{}{}
	}
	for ym := range income {
		months[ym] = struct{}{}
	}

	out := make([]model.MonthlyStatistic, 0, len(months))
	for ym := range months {
		out = append(out, model.MonthlyStatistic{
			Year:          ym.year,
			Month:         ym.month,
			Income:        income[ym],
			ExpectedDebt:  expected[ym],
			RemainingDebt: expected[ym].Sub(income[ym]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	writeJSON(w, http.StatusOK, out)
}
