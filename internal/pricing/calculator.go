package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ValidationError marks a pricing input the server refuses to trust:
// a missing variant, an oversized quantity, or a client-submitted price
// that disagrees with the stored one.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ItemInput is one submitted order line, prices as the client sent them.
type ItemInput struct {
	VariantID     int64
	Quantity      int
	Price         int64
	DiscountPrice int64
}

// VariantRecord is the authoritative view of a variant used to check
// submitted lines. Kept local to avoid depending on the catalog package.
type VariantRecord struct {
	VariantID     int64
	ProductID     int64
	Stock         int
	Price         int64
	DiscountPrice int64
}

// EffectiveUnitPrice returns the discounted price when one is set,
// otherwise the base price.
func EffectiveUnitPrice(price, discountPrice int64) int64 {
	if discountPrice > 0 {
		return discountPrice
	}
	return price
}

// ItemsCost sums effective_unit_price * quantity over all submitted items
// and builds the human-readable order description, one
// "{product_id} : {quantity}" line per item.
//
// Each line is checked against the authoritative variant record: the
// variant must exist, the quantity must fit the current stock, and the
// submitted effective price must equal the stored one.
func ItemsCost(items []ItemInput, variants map[int64]VariantRecord) (int64, string, error) {
	var total int64
	var desc strings.Builder

	for _, item := range items {
		v, ok := variants[item.VariantID]
		if !ok {
			return 0, "", newValidationError("variant %d not found", item.VariantID)
		}
		if item.Quantity <= 0 {
			return 0, "", newValidationError("quantity must be greater than zero")
		}
		if item.Quantity > v.Stock {
			return 0, "", newValidationError("quantity %d exceeds stock of variant %d", item.Quantity, item.VariantID)
		}

		submitted := EffectiveUnitPrice(item.Price, item.DiscountPrice)
		stored := EffectiveUnitPrice(v.Price, v.DiscountPrice)
		if submitted != stored {
			return 0, "", newValidationError("price mismatch for variant %d", item.VariantID)
		}

		total += stored * int64(item.Quantity)
		fmt.Fprintf(&desc, "%d : %d\n", v.ProductID, item.Quantity)
	}

	return total, desc.String(), nil
}

// CostSpec names one percentage-based markup. Predetermined, when set,
// is the amount the client claims for that cost; it must match the
// server-side calculation exactly.
type CostSpec struct {
	Name          string
	Percentage    float64
	Predetermined *int64
}

// AdditionalCosts computes round(basis * pct / 100) per named cost.
// A predetermined value that disagrees with the calculation fails the
// whole computation; the client never dictates derived costs.
func AdditionalCosts(basis int64, specs []CostSpec) (map[string]int64, error) {
	costs := make(map[string]int64, len(specs))

	// deterministic iteration for stable error reporting
	ordered := make([]CostSpec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	for _, spec := range ordered {
		calculated := RoundHalfUp(float64(basis) * spec.Percentage / 100)
		if spec.Predetermined != nil && *spec.Predetermined != calculated {
			return nil, newValidationError(
				"%s cost mismatch: submitted %d, calculated %d",
				spec.Name, *spec.Predetermined, calculated,
			)
		}
		costs[spec.Name] = calculated
	}

	return costs, nil
}

// RoundHalfUp rounds to the nearest integer, halves away from zero.
func RoundHalfUp(x float64) int64 {
	return int64(math.Round(x))
}

// ToLocalCurrency converts a cost-basis amount into local currency at the
// given rate. Applied once to the aggregate total, never per line item,
// so rounding error does not compound.
func ToLocalCurrency(amount int64, rate float64) int64 {
	return RoundHalfUp(float64(amount) * rate)
}

// displayDenomination is the step display prices snap to.
const displayDenomination = 10_000

// DisplayPrice converts a variant's foreign-currency cost into a local
// display price, ceiling to the nearest 10,000. This is the repricing
// rule, distinct from the order-total rounding.
func DisplayPrice(currencyPrice, rate float64) int64 {
	raw := currencyPrice * rate
	return int64(math.Ceil(raw/displayDenomination)) * displayDenomination
}

// DiscountedDisplayPrice applies a discount percentage to a display
// price, snapping to the same denomination. Repricing preserves each
// variant's discount percentage, not its absolute discount amount.
func DiscountedDisplayPrice(price int64, discountPercent float64) int64 {
	if discountPercent <= 0 {
		return 0
	}
	raw := float64(price) * (100 - discountPercent) / 100
	return int64(math.Ceil(raw/displayDenomination)) * displayDenomination
}

// DiscountPercent recovers the discount percentage a variant currently
// carries, used to preserve it across repricing.
func DiscountPercent(price, discountPrice int64) float64 {
	if price <= 0 || discountPrice <= 0 || discountPrice >= price {
		return 0
	}
	return float64(price-discountPrice) / float64(price) * 100
}
