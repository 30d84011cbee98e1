package service

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/and161185/debtdesk/internal/apitest"
	"github.com/and161185/debtdesk/internal/cache"
	"github.com/and161185/debtdesk/internal/model"
	"github.com/and161185/debtdesk/internal/session"
	"github.com/and161185/debtdesk/internal/transport"
)

// env wires the full client stack against an in-process fake API.
type env struct {
	fake  *apitest.Server
	api   *transport.Client
	cache *cache.Store
	sess  *session.Store

	auth      *Auth
	customers *Customers
	payments  *Payments
	stats     *Stats
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zap.NewNop()
	fake := apitest.New(log)
	ts := httptest.NewServer(fake.Router())
	t.Cleanup(ts.Close)

	api, err := transport.New(ts.URL+"/api/v1", log)
	require.NoError(t, err)

	store := cache.New(time.Minute, log)
	sess := session.New()
	return &env{
		fake:      fake,
		api:       api,
		cache:     store,
		sess:      sess,
		auth:      NewAuth(api, store, sess),
		customers: NewCustomers(api, store),
		payments:  NewPayments(api, store),
		stats:     NewStats(api, store),
	}
}

// login registers a fixture account and authenticates the client stack.
func (e *env) login(t *testing.T) model.User {
	t.Helper()
	e.fake.AddUser("admin", "correcthorse")
	u, err := e.auth.Login(context.Background(), model.Credentials{
		Username: "admin", Password: "correcthorse",
	})
	require.NoError(t, err)
	return u
}

func (e *env) seedCustomer(name string, totalDebt int64) model.Customer {
	return e.fake.AddCustomer(model.Customer{
		UserID:               1,
		FullName:             name,
		Company:              name + " doo",
		JMBG:                 "0101990123456",
		PhoneNumber:          "+381601112233",
		NumberOfInstallments: 10,
		InstallmentAmount:    decimal.NewFromInt(totalDebt / 10),
		TotalDebt:            decimal.NewFromInt(totalDebt),
		StartDate:            time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
}
