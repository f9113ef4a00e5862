package ibcgt

import "github.com/etnz/ibcgt/date"

// TradeID identifies a trade row in its source ledger file. It is the
// zero-based row position in the input, and stays stable while the
// working ledger is sorted and consumed.
type TradeID int

// Trade is one (possibly partial) trade: its quantity and monetary
// amounts, in both the trade currency and GBP.
//
// All monetary fields scale linearly with Quantity: a fragment produced
// by a partial match carries original_field * fragment_qty/original_qty.
type Trade struct {
	Type             InstrumentType
	ID               TradeID
	Symbol           string
	Currency         string
	Date             date.Date
	Quantity         Quantity // signed: positive buy, negative sell
	NotionalValue    Money    // in the trade currency
	Commission       Money    // in the trade currency
	NotionalValueGBP Money
	CommissionGBP    Money
}

// FX returns the trade's own conversion ratio, notional value over
// notional value in GBP, or zero when the GBP notional is zero.
func (t Trade) FX() Quantity {
	return t.NotionalValue.DivMoney(t.NotionalValueGBP)
}

// Add sums two fragments of the same symbol: quantity and the four
// monetary fields are added, the receiver keeps its identity fields
// (id, date, currency, type). Fragments of different symbols cannot be
// combined into one disposal.
func (t Trade) Add(o Trade) (Trade, error) {
	if t.Symbol != o.Symbol {
		return Trade{}, &SymbolMismatchError{A: t.Symbol, B: o.Symbol}
	}
	t.Quantity = t.Quantity.Add(o.Quantity)
	t.NotionalValue = t.NotionalValue.Add(o.NotionalValue)
	t.Commission = t.Commission.Add(o.Commission)
	t.NotionalValueGBP = t.NotionalValueGBP.Add(o.NotionalValueGBP)
	t.CommissionGBP = t.CommissionGBP.Add(o.CommissionGBP)
	return t, nil
}

// fragment returns a copy of the trade scaled down to matched units,
// where matched is a positive quantity no greater than abs(t.Quantity).
// The fragment keeps the sign of the original quantity.
func (t Trade) fragment(matched Quantity) Trade {
	scale := matched.Div(t.Quantity.Abs())
	if t.Quantity.IsNegative() {
		t.Quantity = matched.Neg()
	} else {
		t.Quantity = matched
	}
	t.NotionalValue = t.NotionalValue.Mul(scale)
	t.Commission = t.Commission.Mul(scale)
	t.NotionalValueGBP = t.NotionalValueGBP.Mul(scale)
	t.CommissionGBP = t.CommissionGBP.Mul(scale)
	return t
}

// SymbolMismatchError reports an attempt to combine trade fragments of
// two different instruments. The candidate filters only ever select
// same-symbol trades, so this is a data or programming error.
type SymbolMismatchError struct{ A, B string }

func (e *SymbolMismatchError) Error() string {
	return "cannot add trades with different symbols: " + e.A + " != " + e.B
}
