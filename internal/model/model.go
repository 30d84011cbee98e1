// Package model defines domain entities exchanged with the debt-tracking API.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The API speaks plain JSON numbers for currency amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentStatus describes how far along a customer is with their installments.
type PaymentStatus string

// Allowed PaymentStatus values.
const (
	StatusUnpaid     PaymentStatus = "unpaid"
	StatusInProgress PaymentStatus = "inProgress"
	StatusPaid       PaymentStatus = "paid"
)

// Customer is a debtor with installment terms. Owned by the server; the client
// holds transient cached copies only.
type Customer struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"userId"`
	FullName             string          `json:"fullName"`
	Company              string          `json:"company"`
	JMBG                 string          `json:"jmbg"` // national identity number
	PhoneNumber          string          `json:"phoneNumber"`
	NumberOfInstallments int             `json:"numberOfInstallments"`
	InstallmentAmount    decimal.Decimal `json:"installmentAmount"`
	TotalDebt            decimal.Decimal `json:"totalDebt"`
	PaymentStatus        PaymentStatus   `json:"customerPaymentStatus"`
	StartDate            time.Time       `json:"startDate"`
	EndDate              *time.Time      `json:"endDate"`
	Notes                string          `json:"notes"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// Payment is a single repayment against a customer's debt.
type Payment struct {
	ID                int64           `json:"id"`
	CustomerID        int64           `json:"customerId"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	PaymentDate       time.Time       `json:"paymentDate"`
	InstallmentNumber *int            `json:"installmentNumber"`
	Notes             string          `json:"notes"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// User is an account on the server. Exactly one current user exists client-side.
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	UserPermissionsID *int64    `json:"userPermissionsId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MonthlyStatistic is a server-computed aggregate for one calendar month.
// Never mutated by the client.
type MonthlyStatistic struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Income        decimal.Decimal `json:"income"`
	ExpectedDebt  decimal.Decimal `json:"expectedDebt"`
	RemainingDebt decimal.Decimal `json:"remainingDebt"`
}

// Pagination carries page metadata returned alongside list results.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// PaginatedResult is one page of entities plus its pagination metadata.
type PaginatedResult[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// AuthResponse is returned by login/logout endpoints.
type AuthResponse struct {
	Message string `json:"message"`
}
