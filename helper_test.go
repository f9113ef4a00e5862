package ibcgt

import "github.com/etnz/ibcgt/date"

// GBP is a helper for tests to create GBP money from const
func GBP(v float64) Money { return M(v, "GBP") }

// USD is a helper for tests to create USD money from const
func USD(v float64) Money { return M(v, "USD") }

// tr builds a USD-denominated trade for tests. Amounts follow the
// statement sign convention: buys have positive quantity and negative
// notional, sells the opposite; commissions are negative.
func tr(id int, typ InstrumentType, symbol, on string, qty, nv, comm, nvGBP, commGBP float64) Trade {
	return Trade{
		Type:             typ,
		ID:               TradeID(id),
		Symbol:           symbol,
		Currency:         "USD",
		Date:             date.MustParse(on),
		Quantity:         Q(qty),
		NotionalValue:    USD(nv),
		Commission:       USD(comm),
		NotionalValueGBP: GBP(nvGBP),
		CommissionGBP:    GBP(commGBP),
	}
}
