package ibcgt

// Disposal is one tax event: the disposing trade, aggregated over all
// its fragments, and the ordered acquisition fragments it was matched
// against. It is a read-only view, built once matching for the original
// trade is complete, and owns copies independent of the working ledger.
type Disposal struct {
	Trade    Trade // the aggregated disposal trade
	Matching []Trade
}

// Proceeds returns the GBP notional of the disposal trade.
//
// When the disposal trade is a buy (closing a short position) the figure
// is the cost of buying back and the matched sells carry the proceeds;
// the arithmetic of Gain and Loss is unchanged because the statement
// sign convention already nets proceeds against costs.
func (d Disposal) Proceeds() Money { return d.Trade.NotionalValueGBP }

// Costs returns the GBP cost contribution of the matched acquisitions
// plus the disposal's own commission. The figures keep the statement
// sign convention, so Proceeds().Add(Costs()) is the net result.
//
// For Futures and Forex every matching trade is converted with the FX
// rate of the disposal date; for other instrument types each matching
// trade carries its own GBP conversion.
func (d Disposal) Costs() Money {
	var notionals, fees Money
	if d.Trade.Type.usesDisposalFX() {
		fx := d.Trade.FX()
		var nv, comm Money
		for _, t := range d.Matching {
			nv = nv.Add(t.NotionalValue)
			comm = comm.Add(t.Commission)
		}
		notionals = nv.Div(fx).In("GBP")
		fees = comm.Div(fx).In("GBP")
	} else {
		for _, t := range d.Matching {
			notionals = notionals.Add(t.NotionalValueGBP)
			fees = fees.Add(t.CommissionGBP)
		}
	}
	return notionals.Add(fees).Add(d.Trade.CommissionGBP)
}

// net is proceeds plus costs, the signed outcome of the disposal.
func (d Disposal) net() Money {
	return d.Proceeds().Add(d.Costs())
}

// Gain returns the positive outcome of the disposal, zero for a loss.
func (d Disposal) Gain() Money {
	if n := d.net(); n.IsPositive() {
		return n
	}
	return M(0, "GBP")
}

// Loss returns the negative outcome of the disposal, zero for a gain.
// Exactly one of Gain and Loss is nonzero, unless both are zero.
func (d Disposal) Loss() Money {
	if n := d.net(); n.IsNegative() {
		return n
	}
	return M(0, "GBP")
}
