package apitest

import (
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/debtdesk/internal/model"
)

func nowUTC() time.Time { return time.Now().UTC() }

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	page, orderBy, dir, _ := listParams(r)

	s.mu.Lock()
	items := make([]model.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		items = append(items, p)
	}
	pageSize := s.pageSize
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var less bool
		switch orderBy {
		case "paymentDate":
			less = a.PaymentDate.Before(b.PaymentDate)
		case "amountPaid":
			less = a.AmountPaid.LessThan(b.AmountPaid)
		default: // createdAt
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if dir == "desc" {
			return !less
		}
		return less
	})

	writeJSON(w, http.StatusOK, paginate(items, page, pageSize))
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.payments[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCustomerPayments(w http.ResponseWriter, r *http.Request) {
	customerID := pathID(r, "customerId")
	s.mu.Lock()
	if _, ok := s.customers[customerID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	items := make([]model.Payment, 0)
	for _, p := range s.payments {
		if p.CustomerID == customerID {
			items = append(items, p)
		}
	}
	s.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].PaymentDate.Before(items[j].PaymentDate) })
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	customerID := pathID(r, "customerId")
	var in model.CreatePayment
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(in.PaymentDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "paymentDate: bad date")
		return
	}

	s.mu.Lock()
	if _, ok := s.customers[customerID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	p := model.Payment{
		ID:                s.seq("payment"),
		CustomerID:        customerID,
		AmountPaid:        in.AmountPaid,
		PaymentDate:       date,
		InstallmentNumber: in.InstallmentNumber,
		Notes:             in.Notes,
		CreatedAt:         nowUTC(),
	}
	s.payments[p.ID] = p
	s.recalcStatusLocked(customerID)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var in model.UpdatePayment
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[pathID(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if in.AmountPaid != nil {
		p.AmountPaid = *in.AmountPaid
	}
	if in.PaymentDate != nil {
		t, err := parseDate(*in.PaymentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "paymentDate: bad date")
			return
		}
		p.PaymentDate = t
	}
	if in.InstallmentNumber != nil {
		p.InstallmentNumber = in.InstallmentNumber
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	s.payments[p.ID] = p
	s.recalcStatusLocked(p.CustomerID)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	p, ok := s.payments[id]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	delete(s.payments, id)
	s.recalcStatusLocked(p.CustomerID)
	w.WriteHeader(http.StatusNoContent)
}

// recalcStatusLocked re-derives a customer's payment status from their
// payments. Caller holds s.mu.
func (s *Server) recalcStatusLocked(customerID int64) {
	c, ok := s.customers[customerID]
	if !ok {
		return
	}
	paid := decimal.Zero
	for _, p := range s.payments {
		if p.CustomerID == customerID {
			paid = paid.Add(p.AmountPaid)
		}
	}
	switch {
	case paid.GreaterThanOrEqual(c.TotalDebt) && c.TotalDebt.IsPositive():
		c.PaymentStatus = model.StatusPaid
	case paid.IsPositive():
		c.PaymentStatus = model.StatusInProgress
	default:
		c.PaymentStatus = model.StatusUnpaid
	}
	c.UpdatedAt = nowUTC()
	s.customers[customerID] = c
}
