package service

import (
	"context"
	"fmt"

	"github.com/and161185/debtdesk/internal/cache"
	"github.com/and161185/debtdesk/internal/errs"
	"github.com/and161185/debtdesk/internal/model"
	"github.com/and161185/debtdesk/internal/transport"
)

// Customers exposes queries and mutations over the customer entity.
type Customers struct {
	api   *transport.Client
	cache *cache.Store
}

// NewCustomers constructs the customer service.
func NewCustomers(api *transport.Client, store *cache.Store) *Customers {
	return &Customers{api: api, cache: store}
}

// List returns one page of customers. Distinct parameter combinations are
// cached independently.
func (s *Customers) List(ctx context.Context, opts model.ListOptions) (model.PaginatedResult[model.Customer], error) {
	opts = opts.Normalized()
	return cache.Get(ctx, s.cache, customerListKey(opts),
		func(ctx context.Context) (model.PaginatedResult[model.Customer], error) {
			return transport.Get[model.PaginatedResult[model.Customer]](ctx, s.api, "/customers?"+opts.Query())
		})
}

// Get returns a single customer. A zero id issues no request and returns
// ErrMissingID, which is distinct from the server's not-found.
func (s *Customers) Get(ctx context.Context, id int64) (model.Customer, error) {
	if id == 0 {
		return model.Customer{}, errs.ErrMissingID
	}
	return cache.Get(ctx, s.cache, customerKey(id),
		func(ctx context.Context) (model.Customer, error) {
			return transport.Get[model.Customer](ctx, s.api, "/customers/"+itoa(id))
		})
}

// Create adds a customer and invalidates the customer list family, waiting
// for dependent refetches so a subsequent list read reflects the new record.
func (s *Customers) Create(ctx context.Context, in model.CreateCustomer) (model.Customer, error) {
	if err := checkInput(in); err != nil {
		return model.Customer{}, err
	}
	if !in.InstallmentAmount.IsPositive() || !in.TotalDebt.IsPositive() {
		return model.Customer{}, fmt.Errorf("%w: amounts must be positive", errs.ErrValidation)
	}
	c, err := transport.Post[model.Customer](ctx, s.api, "/customers", in)
	if err != nil {
		return model.Customer{}, err
	}
	if err := s.cache.Invalidate(ctx, "customers", "list"); err != nil {
		return c, err
	}
	return c, nil
}

// Update patches a customer. The returned entity is written straight into its
// single-entity slot (no round trip for the common read-after-write), then the
// list family is invalidated.
func (s *Customers) Update(ctx context.Context, id int64, in model.UpdateCustomer) (model.Customer, error) {
	if id == 0 {
		return model.Customer{}, errs.ErrMissingID
	}
	if err := checkInput(in); err != nil {
		return model.Customer{}, err
	}
	c, err := transport.Patch[model.Customer](ctx, s.api, "/customers/"+itoa(id), in)
	if err != nil {
		return model.Customer{}, err
	}
	s.cache.Set(customerKey(c.ID), c)
	if err := s.cache.Invalidate(ctx, "customers", "list"); err != nil {
		return c, err
	}
	return c, nil
}

// Delete removes a customer, drops its slot (and the nested per-customer
// payment list) and invalidates the list family.
func (s *Customers) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return errs.ErrMissingID
	}
	if err := s.api.Delete(ctx, "/customers/"+itoa(id)); err != nil {
		return err
	}
	s.cache.Drop("customers", itoa(id))
	return s.cache.Invalidate(ctx, "customers", "list")
}
