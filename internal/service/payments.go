package service

import (
	"context"
	"fmt"

	"github.com/and161185/debtdesk/internal/cache"
	"github.com/and161185/debtdesk/internal/errs"
	"github.com/and161185/debtdesk/internal/model"
	"github.com/and161185/debtdesk/internal/transport"
)

// Payments exposes queries and mutations over the payment entity.
type Payments struct {
	api   *transport.Client
	cache *cache.Store
}

// NewPayments constructs the payment service.
func NewPayments(api *transport.Client, store *cache.Store) *Payments {
	return &Payments{api: api, cache: store}
}

// List returns one page of all payments.
func (s *Payments) List(ctx context.Context, opts model.ListOptions) (model.PaginatedResult[model.Payment], error) {
	opts.Search = "" // the payments endpoint has no search parameter
	opts = opts.Normalized()
	return cache.Get(ctx, s.cache, paymentListKey(opts),
		func(ctx context.Context) (model.PaginatedResult[model.Payment], error) {
			return transport.Get[model.PaginatedResult[model.Payment]](ctx, s.api, "/payments/payments?"+opts.Query())
		})
}

// ForCustomer returns every payment of one customer, cached under its own key
// family independent of the global payment list.
func (s *Payments) ForCustomer(ctx context.Context, customerID int64) ([]model.Payment, error) {
	if customerID == 0 {
		return nil, errs.ErrMissingID
	}
	return cache.Get(ctx, s.cache, customerPaymentsKey(customerID),
		func(ctx context.Context) ([]model.Payment, error) {
			return transport.Get[[]model.Payment](ctx, s.api, "/payments/customers/"+itoa(customerID)+"/payments")
		})
}

// Get returns a single payment. A zero id issues no request.
func (s *Payments) Get(ctx context.Context, id int64) (model.Payment, error) {
	if id == 0 {
		return model.Payment{}, errs.ErrMissingID
	}
	return cache.Get(ctx, s.cache, paymentKey(id),
		func(ctx context.Context) (model.Payment, error) {
			return transport.Get[model.Payment](ctx, s.api, "/payments/payments/"+itoa(id))
		})
}

// Create records a payment for a customer. On success it invalidates, in
// order: the customer's payment list, the global payment list, the customer's
// own slot (their status may have changed server-side as an effect of the
// payment), and the customer list family. Each invalidation is awaited before
// the next begins.
func (s *Payments) Create(ctx context.Context, customerID int64, in model.CreatePayment) (model.Payment, error) {
	if customerID == 0 {
		return model.Payment{}, errs.ErrMissingID
	}
	if err := checkInput(in); err != nil {
		return model.Payment{}, err
	}
	if !in.AmountPaid.IsPositive() {
		return model.Payment{}, fmt.Errorf("%w: amountPaid must be positive", errs.ErrValidation)
	}
	p, err := transport.Post[model.Payment](ctx, s.api, "/payments/customers/"+itoa(customerID)+"/payments", in)
	if err != nil {
		return model.Payment{}, err
	}
	for _, family := range [][]string{
		{"customers", itoa(customerID), "payments"},
		{"payments", "list"},
		{"customers", itoa(customerID)},
		{"customers", "list"},
	} {
		if err := s.cache.Invalidate(ctx, family...); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Update patches a payment, writes the result into its slot, then invalidates
// the owning customer's payment list and the global payment list.
func (s *Payments) Update(ctx context.Context, id int64, in model.UpdatePayment) (model.Payment, error) {
	if id == 0 {
		return model.Payment{}, errs.ErrMissingID
	}
	if err := checkInput(in); err != nil {
		return model.Payment{}, err
	}
	if in.AmountPaid != nil && !in.AmountPaid.IsPositive() {
		return model.Payment{}, fmt.Errorf("%w: amountPaid must be positive", errs.ErrValidation)
	}
	p, err := transport.Patch[model.Payment](ctx, s.api, "/payments/payments/"+itoa(id), in)
	if err != nil {
		return model.Payment{}, err
	}
	s.cache.Set(paymentKey(p.ID), p)
	if err := s.cache.Invalidate(ctx, "customers", itoa(p.CustomerID), "payments"); err != nil {
		return p, err
	}
	if err := s.cache.Invalidate(ctx, "payments", "list"); err != nil {
		return p, err
	}
	return p, nil
}

// Delete removes a payment and drops its slot. The owning customer is unknown
// from the id alone, so invalidation is conservative: the global payment list plus the entire
// customer family (which covers every per-customer payment list).
func (s *Payments) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return errs.ErrMissingID
	}
	if err := s.api.Delete(ctx, "/payments/payments/"+itoa(id)); err != nil {
		return err
	}
	s.cache.Drop("payments", itoa(id))
	if err := s.cache.Invalidate(ctx, "payments", "list"); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, "customers")
}
