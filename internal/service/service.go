// Package service contains the per-entity query and mutation operations,
// each declaring which cached query families it invalidates on success.
package service

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/debtdesk/internal/cache"
	"github.com/and161185/debtdesk/internal/errs"
	"github.com/and161185/debtdesk/internal/model"
)

var validate = validator.New()

// checkInput runs struct validation and maps failures onto ErrValidation so
// callers can distinguish local rejections from transport failures.
func checkInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	return nil
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// Cache key families. Lists live under their own "<entity>/list" prefix so a
// write-through to a single-entity slot survives a list-family invalidation.
func customerListKey(opts model.ListOptions) string {
	return cache.Key("customers", "list", opts.Query())
}

func customerKey(id int64) string { return cache.Key("customers", itoa(id)) }

func customerPaymentsKey(id int64) string {
	return cache.Key("customers", itoa(id), "payments")
}

func paymentListKey(opts model.ListOptions) string {
	return cache.Key("payments", "list", opts.Query())
}

func paymentKey(id int64) string { return cache.Key("payments", itoa(id)) }

const (
	userMeKey       = "user/me"
	statsMonthlyKey = "statistics/monthly"
)
