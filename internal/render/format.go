package render

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sohamda/fantasy-football/internal/domain"
)

const (
	currencySymbol = "€"
	pricePeriod    = "/month"

	textUnlimited   = "Unlimited"
	textIncluded    = "Included"
	textNotIncluded = "Not included"
)

// FormatPrice renders a monthly price as "€19.99".
func FormatPrice(price decimal.Decimal) string {
	return currencySymbol + price.StringFixed(2)
}

// FormatQuota renders a team generation allowance.
func FormatQuota(n int) string {
	switch {
	case n == domain.Unlimited:
		return textUnlimited
	case n == 1:
		return "1 team"
	default:
		return fmt.Sprintf("%d teams", n)
	}
}

// FormatCapability renders a plan capability flag.
func FormatCapability(included bool) string {
	if included {
		return textIncluded
	}
	return textNotIncluded
}
