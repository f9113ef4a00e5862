package ibcgt

import "slices"

// Match partitions the ledger into disposal events by applying the HMRC
// share-matching rules to each trade in ledger order: same-day first,
// then bed-and-breakfast, then the section 104 pool. Each rule runs to
// completion before the next, and a trade whose quantity reaches zero is
// done, the remaining rules and candidates are skipped.
//
// Matching mutates the ledger: matched quantities are consumed in place,
// and pooled section 104 rows are collapsed. Rows still holding a
// nonzero quantity afterwards are available from Unmatched.
func (l *Ledger) Match() ([]Disposal, error) {
	// The iteration order is captured before any mutation. Trades fully
	// consumed by an earlier disposal are skipped when their turn comes.
	order := slices.Clone(l.order)

	var disposals []Disposal
	for _, id := range order {
		t, ok := l.trade(id)
		if !ok || t.Quantity.IsZero() {
			continue
		}

		var fragments, matching []Trade

		l.matchCandidates(id, l.sameDay(t), &fragments, &matching)
		if left, _ := l.trade(id); !left.Quantity.IsZero() {
			l.matchCandidates(id, l.bedAndBreakfast(t), &fragments, &matching)
		}
		if left, _ := l.trade(id); !left.Quantity.IsZero() {
			if pool := l.section104(t); len(pool) > 0 {
				// The pool is collapsed to a single row, so one match
				// call consumes as much of it as the disposal needs.
				pooled := l.collapse(pool)
				fragment, match := l.processMatch(id, pooled)
				fragments = append(fragments, fragment)
				matching = append(matching, match)
			}
		}

		if len(fragments) == 0 {
			// Entirely unmatched: no disposal event, the row stays in
			// the residual table.
			continue
		}
		d, err := newDisposal(fragments, matching)
		if err != nil {
			return nil, err
		}
		disposals = append(disposals, d)
	}
	return disposals, nil
}

// matchCandidates matches the disposal row against each candidate in
// order, stopping as soon as the disposal quantity is exhausted.
func (l *Ledger) matchCandidates(id TradeID, candidates []TradeID, fragments, matching *[]Trade) {
	for _, candidate := range candidates {
		fragment, match := l.processMatch(id, candidate)
		*fragments = append(*fragments, fragment)
		*matching = append(*matching, match)
		if t, _ := l.trade(id); t.Quantity.IsZero() {
			break
		}
	}
}

// processMatch matches the minimum of the two absolute remaining
// quantities, returns a scaled fragment of each row, and consumes the
// matched units from both rows in place.
func (l *Ledger) processMatch(disposalID, matchingID TradeID) (fragment, match Trade) {
	d := l.rows[disposalID]
	m := l.rows[matchingID]

	matched := d.Quantity.Abs().Min(m.Quantity.Abs())

	fragment = d.Trade.fragment(matched)
	match = m.Trade.fragment(matched)

	l.reduce(disposalID, matched)
	l.reduce(matchingID, matched)
	return fragment, match
}

// newDisposal aggregates the disposal fragments of one original trade
// into a single trade, paired with the ordered matching fragments. The
// matching fragments are not aggregated: each keeps its own identity,
// date and amounts for reporting.
func newDisposal(fragments, matching []Trade) (Disposal, error) {
	aggregated := fragments[0]
	for _, f := range fragments[1:] {
		var err error
		aggregated, err = aggregated.Add(f)
		if err != nil {
			return Disposal{}, err
		}
	}
	return Disposal{Trade: aggregated, Matching: matching}, nil
}
