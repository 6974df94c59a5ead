package enums

// Currency is the ISO currency code carried on orders. The storefront is
// USD-only today; the column exists so historical orders keep their unit.
type Currency string

const CurrencyUSD Currency = "USD"

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}
