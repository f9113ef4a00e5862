package ibcgt

import "testing"

func TestMatch_SameDayFullMatch(t *testing.T) {
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", 100, -1000, 0, -1000, 0),
		tr(1, Stocks, "ABC", "2024-01-10", -100, 1100, 0, 1100, 0),
	)
	disposals, err := l.Match()
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(disposals))
	}

	// the earlier-iterated trade becomes the disposal leg
	d := disposals[0]
	if !d.Trade.Quantity.Equal(Q(100)) {
		t.Errorf("disposal Quantity = %v, want 100", d.Trade.Quantity)
	}
	if len(d.Matching) != 1 || !d.Matching[0].Quantity.Equal(Q(-100)) {
		t.Errorf("Matching = %+v, want one fragment of -100", d.Matching)
	}

	// both ledger rows fully consumed
	for _, id := range []TradeID{0, 1} {
		if row, _ := l.trade(id); !row.Quantity.IsZero() {
			t.Errorf("row %d Quantity = %v, want 0", id, row.Quantity)
		}
	}
	if res := l.Unmatched(); len(res) != 0 {
		t.Errorf("Unmatched() = %v, want none", res)
	}
}

func TestMatch_RulePriority(t *testing.T) {
	// A same-day buy fully covers the disposal: the bed-and-breakfast
	// candidate must not be touched.
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", -100, 1100, 0, 880, 0),
		tr(1, Stocks, "ABC", "2024-01-10", 100, -1000, 0, -800, 0),
		tr(2, Stocks, "ABC", "2024-01-20", 100, -1050, 0, -840, 0),
	)
	if _, err := l.Match(); err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	later, _ := l.trade(2)
	if !later.Quantity.Equal(Q(100)) {
		t.Errorf("bed-and-breakfast candidate consumed: Quantity = %v, want untouched 100", later.Quantity)
	}
}

func TestMatch_BedAndBreakfast(t *testing.T) {
	// A buy followed by an opposite sell within 30 days matches at the
	// buy's iteration, through the bed-and-breakfast window.
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", 30, -300, 0, -240, 0),
		tr(1, Stocks, "ABC", "2024-01-25", -30, 360, 0, 288, 0),
	)
	disposals, err := l.Match()
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(disposals))
	}
	d := disposals[0]
	if d.Trade.ID != 0 || !d.Trade.Quantity.Equal(Q(30)) {
		t.Errorf("disposal = id %v qty %v, want the day-10 buy of 30", d.Trade.ID, d.Trade.Quantity)
	}
	if len(d.Matching) != 1 || d.Matching[0].ID != 1 {
		t.Errorf("Matching = %+v, want the day-25 sell", d.Matching)
	}
}

func TestMatch_Section104Pool(t *testing.T) {
	// Two old buys, then a sell well outside the bed-and-breakfast
	// window of either: the two buys are pooled into one synthetic row
	// and a single match call consumes both sides.
	l := NewLedger(
		tr(0, Stocks, "XYZ", "2024-01-01", 30, -300, -1, -240, -0.8),
		tr(1, Stocks, "XYZ", "2024-01-05", 20, -200, -1, -160, -0.8),
		tr(2, Stocks, "XYZ", "2024-03-01", -50, 600, -2, 480, -1.6),
	)
	disposals, err := l.Match()
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(disposals))
	}
	d := disposals[0]
	if d.Trade.ID != 2 || !d.Trade.Quantity.Equal(Q(-50)) {
		t.Errorf("disposal = id %v qty %v, want the sell of 50", d.Trade.ID, d.Trade.Quantity)
	}
	if len(d.Matching) != 1 {
		t.Fatalf("Matching = %+v, want exactly one pooled fragment", d.Matching)
	}
	pooled := d.Matching[0]
	if !pooled.Quantity.Equal(Q(50)) {
		t.Errorf("pooled fragment Quantity = %v, want 50", pooled.Quantity)
	}
	if !pooled.NotionalValue.Equal(USD(-500)) {
		t.Errorf("pooled fragment NotionalValue = %v, want -500", pooled.NotionalValue)
	}
	// the pooled rows are gone, nothing is left unmatched
	if res := l.Unmatched(); len(res) != 0 {
		t.Errorf("Unmatched() = %v, want none", res)
	}
}

func TestMatch_PartialAcrossRules(t *testing.T) {
	// The disposal is covered partly on the same day and partly by the
	// section 104 pool; the disposal fragments aggregate back into one
	// trade while the matching fragments stay separate. The same-day buy
	// carries a higher id than the sell so the sell is iterated first.
	l := NewLedger(
		tr(0, Stocks, "ABC", "2023-06-01", 40, -400, 0, -320, 0),
		tr(1, Stocks, "ABC", "2024-01-10", -100, 1100, 0, 880, 0),
		tr(2, Stocks, "ABC", "2024-01-10", 60, -630, 0, -504, 0),
	)
	disposals, err := l.Match()
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(disposals))
	}
	d := disposals[0]
	if d.Trade.ID != 1 {
		t.Fatalf("disposal trade = id %v, want 1", d.Trade.ID)
	}
	if !d.Trade.Quantity.Equal(Q(-100)) {
		t.Errorf("aggregated disposal Quantity = %v, want -100", d.Trade.Quantity)
	}
	if !d.Trade.NotionalValue.Equal(USD(1100)) {
		t.Errorf("aggregated disposal NotionalValue = %v, want 1100", d.Trade.NotionalValue)
	}
	if len(d.Matching) != 2 {
		t.Fatalf("Matching = %+v, want same-day fragment then pool fragment", d.Matching)
	}
	if d.Matching[0].ID != 2 || !d.Matching[0].Quantity.Equal(Q(60)) {
		t.Errorf("Matching[0] = id %v qty %v, want same-day 60", d.Matching[0].ID, d.Matching[0].Quantity)
	}
	if d.Matching[1].ID != 0 || !d.Matching[1].Quantity.Equal(Q(40)) {
		t.Errorf("Matching[1] = id %v qty %v, want pooled 40", d.Matching[1].ID, d.Matching[1].Quantity)
	}
	if res := l.Unmatched(); len(res) != 0 {
		t.Errorf("Unmatched() = %v, want none", res)
	}
}

func TestMatch_UnmatchedResidual(t *testing.T) {
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", 100, -1000, 0, -800, 0),
	)
	disposals, err := l.Match()
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(disposals) != 0 {
		t.Fatalf("got %d disposals, want none for a lone buy", len(disposals))
	}
	res := l.Unmatched()
	if len(res) != 1 || !res[0].Quantity.Equal(Q(100)) {
		t.Errorf("Unmatched() = %+v, want the untouched buy", res)
	}
}

func TestMatch_PartialQuantityConservation(t *testing.T) {
	// A sell of 100 against a same-day buy of 40: the matched amount is
	// the minimum of the two, and the remainders reflect exactly what
	// was consumed.
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", 40, -400, 0, -320, 0),
		tr(1, Stocks, "ABC", "2024-01-10", -100, 1200, 0, 960, 0),
	)
	fragment, match := l.processMatch(1, 0)
	if !fragment.Quantity.Equal(Q(-40)) || !match.Quantity.Equal(Q(40)) {
		t.Errorf("fragments = %v and %v, want -40 and 40", fragment.Quantity, match.Quantity)
	}
	disposal, _ := l.trade(1)
	counter, _ := l.trade(0)
	if !disposal.Quantity.Equal(Q(-60)) {
		t.Errorf("disposal remainder = %v, want -60", disposal.Quantity)
	}
	if !counter.Quantity.IsZero() {
		t.Errorf("counter remainder = %v, want 0", counter.Quantity)
	}
	// monetary fields scaled with the consumed quantity
	if !disposal.NotionalValue.Equal(USD(720)) {
		t.Errorf("disposal remainder NotionalValue = %v, want 720", disposal.NotionalValue)
	}
}
