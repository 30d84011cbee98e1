package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/and161185/debtdesk/internal/model"
)

func paginate[T any](items []T, page, pageSize int) model.PaginatedResult[T] {
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return model.PaginatedResult[T]{
		Data: items[start:end],
		Pagination: model.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}
}

func listParams(r *http.Request) (page int, orderBy, orderDirection, search string) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	orderBy = r.URL.Query().Get("orderBy")
	if orderBy == "" {
		orderBy = "createdAt"
	}
	orderDirection = r.URL.Query().Get("orderDirection")
	if orderDirection != "desc" {
		orderDirection = "asc"
	}
	search = r.URL.Query().Get("search")
	return
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	page, orderBy, dir, search := listParams(r)

	s.mu.Lock()
	items := make([]model.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(c.FullName), needle) &&
				!strings.Contains(strings.ToLower(c.Company), needle) {
				continue
			}
		}
		items = append(items, c)
	}
	pageSize := s.pageSize
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var less bool
		switch orderBy {
		case "fullName":
			less = a.FullName < b.FullName
		case "totalDebt":
			less = a.TotalDebt.LessThan(b.TotalDebt)
		case "startDate":
			less = a.StartDate.Before(b.StartDate)
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

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c, ok := s.customers[pathID(r, "id")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in model.CreateCustomer
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, err := parseDate(in.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate: bad date")
		return
	}
	c := model.Customer{
		UserID:               in.UserID,
		FullName:             in.FullName,
		Company:              in.Company,
		JMBG:                 in.JMBG,
		PhoneNumber:          in.PhoneNumber,
		NumberOfInstallments: in.NumberOfInstallments,
		InstallmentAmount:    in.InstallmentAmount,
		TotalDebt:            in.TotalDebt,
		PaymentStatus:        in.PaymentStatus,
		StartDate:            start,
		Notes:                in.Notes,
	}
	if in.EndDate != "" {
		end, err := parseDate(in.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate: bad date")
			return
		}
		c.EndDate = &end
	}
	writeJSON(w, http.StatusCreated, s.AddCustomer(c))
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var in model.UpdateCustomer
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[pathID(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	if in.FullName != nil {
		c.FullName = *in.FullName
	}
	if in.Company != nil {
		c.Company = *in.Company
	}
	if in.JMBG != nil {
		c.JMBG = *in.JMBG
	}
	if in.PhoneNumber != nil {
		c.PhoneNumber = *in.PhoneNumber
	}
	if in.NumberOfInstallments != nil {
		c.NumberOfInstallments = *in.NumberOfInstallments
	}
	if in.InstallmentAmount != nil {
		c.InstallmentAmount = *in.InstallmentAmount
	}
	if in.TotalDebt != nil {
		c.TotalDebt = *in.TotalDebt
	}
	if in.PaymentStatus != nil {
		c.PaymentStatus = *in.PaymentStatus
	}
	if in.StartDate != nil {
		t, err := parseDate(*in.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate: bad date")
			return
		}
		c.StartDate = t
	}
	if in.EndDate != nil {
		t, err := parseDate(*in.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate: bad date")
			return
		}
		c.EndDate = &t
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	c.UpdatedAt = nowUTC()
	s.customers[c.ID] = c
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := s.customers[id]; !ok {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	delete(s.customers, id)
	w.WriteHeader(http.StatusNoContent)
}
