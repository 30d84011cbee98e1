package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/and161185/debtdesk/internal/cache"
	"github.com/and161185/debtdesk/internal/errs"
	"github.com/and161185/debtdesk/internal/model"
	"github.com/and161185/debtdesk/internal/transport"
)

func TestCustomers_List_PaginationMetadata(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)
	for i := 0; i < 25; i++ {
		e.seedCustomer(fmt.Sprintf("Customer %02d", i), 10000)
	}
	ctx := context.Background()

	res, err := e.customers.List(ctx, model.ListOptions{Page: 3})
	require.NoError(t, err)
	require.Len(t, res.Data, 5)
	require.Equal(t, model.Pagination{Page: 3, PageSize: 10, TotalItems: 25, TotalPages: 3}, res.Pagination)
}

func TestCustomers_List_ExactRequestPath(t *testing.T) {
	t.Parallel()
	var gotURI string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		_ = json.NewEncoder(w).Encode(model.PaginatedResult[model.Customer]{Data: []model.Customer{}})
	}))
	t.Cleanup(ts.Close)

	api, err := transport.New(ts.URL+"/api/v1", zap.NewNop())
	require.NoError(t, err)
	svc := NewCustomers(api, cache.New(time.Minute, zap.NewNop()))

	_, err = svc.List(context.Background(), model.ListOptions{Search: "Doe"})
	require.NoError(t, err)
	require.Equal(t, "/api/v1/customers?page=1&orderBy=createdAt&orderDirection=asc&search=Doe", gotURI)
}

func TestCustomers_List_CachedPerParameterSet(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)
	e.seedCustomer("Ana Anić", 10000)
	ctx := context.Background()

	_, err := e.customers.List(ctx, model.ListOptions{})
	require.NoError(t, err)
	_, err = e.customers.List(ctx, model.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, e.fake.Hits("GET /api/v1/customers"), "same params served from cache")

	_, err = e.customers.List(ctx, model.ListOptions{Search: "Ana"})
	require.NoError(t, err)
	require.Equal(t, 2, e.fake.Hits("GET /api/v1/customers"), "distinct params cached independently")
}

func TestCustomers_Get_ZeroIDIssuesNoRequest(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)

	_, err := e.customers.Get(context.Background(), 0)
	require.ErrorIs(t, err, errs.ErrMissingID)
	require.NotErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, 0, e.fake.Hits("GET /api/v1/customers/0"))
}

func TestCustomers_Get_NotFound(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)

	_, err := e.customers.Get(context.Background(), 999)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCustomers_Create_InvalidatesListBeforeReturning(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)
	e.seedCustomer("Ana Anić", 10000)
	ctx := context.Background()

	res, err := e.customers.List(ctx, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)

	_, err = e.customers.Create(ctx, model.CreateCustomer{
		UserID:               1,
		FullName:             "Marko Marković",
		Company:              "Marković doo",
		JMBG:                 "0202985123456",
		PhoneNumber:          "+381641112233",
		NumberOfInstallments: 6,
		InstallmentAmount:    decimal.NewFromInt(2000),
		TotalDebt:            decimal.NewFromInt(12000),
		PaymentStatus:        model.StatusUnpaid,
		StartDate:            "2024-02-01",
	})
	require.NoError(t, err)
	require.Equal(t, 2, e.fake.Hits("GET /api/v1/customers"), "list refetched during invalidation")

	// list is already fresh: read reflects the new customer without a request
	res, err = e.customers.List(ctx, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	require.Equal(t, 2, e.fake.Hits("GET /api/v1/customers"))
}

func TestCustomers_Create_LocalValidationBlocksRequest(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)

	_, err := e.customers.Create(context.Background(), model.CreateCustomer{UserID: 1})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Equal(t, 0, e.fake.Hits("POST /api/v1/customers"))

	_, err = e.customers.Create(context.Background(), model.CreateCustomer{
		UserID:               1,
		FullName:             "X",
		Company:              "Y",
		JMBG:                 "1",
		PhoneNumber:          "2",
		NumberOfInstallments: 1,
		InstallmentAmount:    decimal.NewFromInt(-5),
		TotalDebt:            decimal.NewFromInt(10),
		PaymentStatus:        model.StatusUnpaid,
		StartDate:            "2024-02-01",
	})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Equal(t, 0, e.fake.Hits("POST /api/v1/customers"))
}

func TestCustomers_Update_WriteThroughSlot(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)
	c := e.seedCustomer("Ana Anić", 10000)
	ctx := context.Background()

	phone := "+381609998877"
	updated, err := e.customers.Update(ctx, c.ID, model.UpdateCustomer{PhoneNumber: &phone})
	require.NoError(t, err)
	require.Equal(t, phone, updated.PhoneNumber)

	// immediately following get-by-id resolves from the slot, no network call
	slotPath := fmt.Sprintf("GET /api/v1/customers/%d", c.ID)
	got, err := e.customers.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, phone, got.PhoneNumber)
	require.Equal(t, 0, e.fake.Hits(slotPath))
}

func TestCustomers_Update_ZeroID(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	_, err := e.customers.Update(context.Background(), 0, model.UpdateCustomer{})
	require.ErrorIs(t, err, errs.ErrMissingID)
}

func TestCustomers_Delete_InvalidatesList(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)
	c := e.seedCustomer("Ana Anić", 10000)
	ctx := context.Background()

	res, err := e.customers.List(ctx, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)

	require.NoError(t, e.customers.Delete(ctx, c.ID))

	res, err = e.customers.List(ctx, model.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, res.Data)
	require.Equal(t, 2, e.fake.Hits("GET /api/v1/customers"))
}

func TestCustomers_TransportFailurePropagatesUnchanged(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)

	_, err := e.customers.Get(context.Background(), 12345)
	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr), "service must surface the transport failure unchanged")
	require.Equal(t, 404, apiErr.Status)
	require.Equal(t, "customer not found", apiErr.Message)
}

func TestCustomers_Delete_DropsSlot(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t)
	c := e.seedCustomer("Ana Anić", 10000)
	ctx := context.Background()

	slotPath := fmt.Sprintf("GET /api/v1/customers/%d", c.ID)
	paymentsPath := fmt.Sprintf("GET /api/v1/payments/customers/%d/payments", c.ID)

	_, err := e.customers.Get(ctx, c.ID)
	require.NoError(t, err)
	_, err = e.payments.ForCustomer(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, e.fake.Hits(slotPath))

	require.NoError(t, e.customers.Delete(ctx, c.ID))

	// the slot must not answer from cache: a fresh read reaches the server
	// and reports the customer gone
	_, err = e.customers.Get(ctx, c.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, 2, e.fake.Hits(slotPath))

	// the nested per-customer payment list was dropped with the slot
	_, err = e.payments.ForCustomer(ctx, c.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, 2, e.fake.Hits(paymentsPath))
}
