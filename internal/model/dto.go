package model

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ListOptions selects a page of a list query. Zero values fall back to the
// server-side defaults applied by Normalized.
type ListOptions struct {
	Page           int
	OrderBy        string
	OrderDirection string
	Search         string
}

// Normalized returns a copy with defaults applied: page 1, ordered by
// creation time ascending.
func (o ListOptions) Normalized() ListOptions {
	if o.Page <= 0 {
		o.Page = 1
	}
	if o.OrderBy == "" {
		o.OrderBy = "createdAt"
	}
	if o.OrderDirection == "" {
		o.OrderDirection = "asc"
	}
	return o
}

// Query encodes the options as the API's query string. Parameter order is
// fixed (page, orderBy, orderDirection, search) and part of the wire contract.
func (o ListOptions) Query() string {
	var b strings.Builder
	b.WriteString("page=")
	b.WriteString(strconv.Itoa(o.Page))
	b.WriteString("&orderBy=")
	b.WriteString(url.QueryEscape(o.OrderBy))
	b.WriteString("&orderDirection=")
	b.WriteString(url.QueryEscape(o.OrderDirection))
	if o.Search != "" {
		b.WriteString("&search=")
		b.WriteString(url.QueryEscape(o.Search))
	}
	return b.String()
}

// CreateCustomer is the payload for POST /customers.
type CreateCustomer struct {
	UserID               int64           `json:"userId" validate:"required"`
	FullName             string          `json:"fullName" validate:"required"`
	Company              string          `json:"company" validate:"required"`
	JMBG                 string          `json:"jmbg" validate:"required"`
	PhoneNumber          string          `json:"phoneNumber" validate:"required"`
	NumberOfInstallments int             `json:"numberOfInstallments" validate:"gt=0"`
	InstallmentAmount    decimal.Decimal `json:"installmentAmount"`
	TotalDebt            decimal.Decimal `json:"totalDebt"`
	PaymentStatus        PaymentStatus   `json:"customerPaymentStatus" validate:"oneof=unpaid inProgress paid"`
	StartDate            string          `json:"startDate" validate:"required"`
	EndDate              string          `json:"endDate,omitempty"`
	Notes                string          `json:"notes,omitempty"`
}

// UpdateCustomer is the partial payload for PATCH /customers/{id}.
// Nil fields are left untouched by the server.
type UpdateCustomer struct {
	FullName             *string          `json:"fullName,omitempty"`
	Company              *string          `json:"company,omitempty"`
	JMBG                 *string          `json:"jmbg,omitempty"`
	PhoneNumber          *string          `json:"phoneNumber,omitempty"`
	NumberOfInstallments *int             `json:"numberOfInstallments,omitempty" validate:"omitempty,gt=0"`
	InstallmentAmount    *decimal.Decimal `json:"installmentAmount,omitempty"`
	TotalDebt            *decimal.Decimal `json:"totalDebt,omitempty"`
	PaymentStatus        *PaymentStatus   `json:"customerPaymentStatus,omitempty" validate:"omitempty,oneof=unpaid inProgress paid"`
	StartDate            *string          `json:"startDate,omitempty"`
	EndDate              *string          `json:"endDate,omitempty"`
	Notes                *string          `json:"notes,omitempty"`
}

// CreatePayment is the payload for POST /payments/customers/{id}/payments.
type CreatePayment struct {
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	PaymentDate       string          `json:"paymentDate" validate:"required"`
	InstallmentNumber *int            `json:"installmentNumber,omitempty" validate:"omitempty,gt=0"`
	Notes             string          `json:"notes,omitempty"`
}

// UpdatePayment is the partial payload for PATCH /payments/payments/{id}.
type UpdatePayment struct {
	AmountPaid        *decimal.Decimal `json:"amountPaid,omitempty"`
	PaymentDate       *string          `json:"paymentDate,omitempty"`
	InstallmentNumber *int             `json:"installmentNumber,omitempty" validate:"omitempty,gt=0"`
	Notes             *string          `json:"notes,omitempty"`
}

// Credentials is the payload for POST /users and POST /users/login.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}
