package pricing

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/smmboost/panel/internal/app/models"
)

// The engine is pure: no I/O, no clock, no shared state. All amounts are
// integer paise; order totals floor at the per-1000 division boundary, the
// same rule the backend applies, so the displayed estimate and the charged
// amount can only diverge through a concurrent price change.

type QuantityReason string

const (
	NotANumber   QuantityReason = "not_a_number"
	BelowMinimum QuantityReason = "below_minimum"
	AboveMaximum QuantityReason = "above_maximum"
)

type QuantityError struct {
	Reason QuantityReason
	Min    int64
	Max    int64
}

func (qe *QuantityError) Error() string {
	switch qe.Reason {
	case BelowMinimum:
		return "quantity below service minimum of " + strconv.FormatInt(qe.Min, 10)
	case AboveMaximum:
		return "quantity above service maximum of " + strconv.FormatInt(qe.Max, 10)
	default:
		return "quantity is not a positive whole number"
	}
}

var errNegativeInput = errors.New("negative price or quantity")

var thousand = decimal.NewFromInt(1000)

// ComputeOrderTotal returns floor(pricePer1000 * quantity / 1000) in paise.
// Negative inputs never produce a negative total; callers are expected to
// have rejected them already, and the guard keeps the arithmetic total-safe.
func ComputeOrderTotal(pricePer1000, quantity int64) int64 {
	if pricePer1000 <= 0 || quantity <= 0 {
		return 0
	}
	total := decimal.NewFromInt(pricePer1000).
		Mul(decimal.NewFromInt(quantity)).
		Div(thousand).
		Floor()
	return total.IntPart()
}

// ParseQuantity accepts the raw form value: only a positive base-10 integer
// is a quantity, anything else is NotANumber.
func ParseQuantity(raw string) (int64, error) {
	qty, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || qty <= 0 {
		return 0, &QuantityError{Reason: NotANumber}
	}
	return qty, nil
}

// ValidateQuantity checks qty against the service bounds, inclusive on both
// ends. The service must come from the current catalog fetch, not a stale
// snapshot taken before the order form was opened.
func ValidateQuantity(svc models.Service, qty int64) error {
	if qty <= 0 {
		return &QuantityError{Reason: NotANumber}
	}
	if qty < svc.MinOrder {
		return &QuantityError{Reason: BelowMinimum, Min: svc.MinOrder, Max: svc.MaxOrder}
	}
	if qty > svc.MaxOrder {
		return &QuantityError{Reason: AboveMaximum, Min: svc.MinOrder, Max: svc.MaxOrder}
	}
	return nil
}

// HasSufficientBalance is advisory only: it drives the insufficient-funds
// warning before submission, while the backend performs the authoritative
// check against the live balance and can still reject.
func HasSufficientBalance(balance, total int64) bool {
	return balance >= total
}

// CoercePricePer1000 converts a wire price into integer paise. The backend
// may serialize prices as fractional JSON numbers; fractional paise are
// floored, negative and non-numeric values are rejected before the value can
// reach any arithmetic.
func CoercePricePer1000(raw string) (int64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, errors.New("price is not numeric")
	}
	if d.IsNegative() {
		return 0, errNegativeInput
	}
	return d.Floor().IntPart(), nil
}
