package ibcgt

import (
	"strings"
	"testing"
)

const testLedgerCSV = `Instrument Type,Currency,Symbol,Date/Time,Quantity,Notional Value,Comm/Fee,Notional Value GBP,Comm in GBP,FX Rate
Stocks,USD,ABC,"2024-01-10, 14:30:02",100,-1000,-2,-800,-1.6,0.8
Stocks,USD,ABC,"2024-01-10, 15:12:45",-100,1100,-2,880,-1.6,0.8
Futures,USD,ESZ4,"2024-01-11, 09:00:00",2,-5000,-4,-4000,-3.2,0.8
Bonds,USD,T-NOTE,"2024-01-12, 10:00:00",10,-10000,-5,-8000,-4,0.8
`

func TestReadLedger(t *testing.T) {
	l, err := ReadLedger(strings.NewReader(testLedgerCSV), []InstrumentType{Stocks})
	if err != nil {
		t.Fatalf("ReadLedger() error = %v", err)
	}
	if len(l.order) != 2 {
		t.Fatalf("got %d rows, want 2 (Futures and Bonds rows filtered out)", len(l.order))
	}
	buy, ok := l.trade(0)
	if !ok {
		t.Fatal("trade(0) not found")
	}
	if buy.Symbol != "ABC" || !buy.Quantity.Equal(Q(100)) {
		t.Errorf("trade(0) = %v %v", buy.Symbol, buy.Quantity)
	}
	if !buy.NotionalValueGBP.Equal(GBP(-800)) {
		t.Errorf("trade(0) NotionalValueGBP = %v, want -800", buy.NotionalValueGBP)
	}
	if buy.Date.String() != "2024-01-10" {
		t.Errorf("trade(0) Date = %v, want 2024-01-10 (time component dropped)", buy.Date)
	}
}

func TestReadLedger_RejectsUnsupportedTypes(t *testing.T) {
	_, err := ReadLedger(strings.NewReader(testLedgerCSV), []InstrumentType{Stocks, Bonds})
	if err == nil {
		t.Fatal("ReadLedger() must fail fast on a selection containing Bonds")
	}
}

func TestLedgerOrder(t *testing.T) {
	// out of order input: sorted by symbol then date, id breaks ties
	l := NewLedger(
		tr(0, Stocks, "ZZZ", "2024-01-05", 10, -100, 0, -80, 0),
		tr(1, Stocks, "AAA", "2024-03-01", 10, -100, 0, -80, 0),
		tr(2, Stocks, "AAA", "2024-01-05", 10, -100, 0, -80, 0),
	)
	want := []TradeID{2, 1, 0}
	for i, id := range l.order {
		if id != want[i] {
			t.Fatalf("order = %v, want %v", l.order, want)
		}
	}
}

func TestCandidateFilters(t *testing.T) {
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", 100, -1000, 0, -800, 0),  // same day buy
		tr(1, Stocks, "ABC", "2024-01-10", 50, -500, 0, -400, 0),    // same day buy
		tr(2, Stocks, "ABC", "2024-02-09", 30, -300, 0, -240, 0),    // +30 days: last b&b day
		tr(3, Stocks, "ABC", "2024-02-10", 30, -300, 0, -240, 0),    // +31 days: outside window
		tr(4, Stocks, "ABC", "2024-01-02", 20, -200, 0, -160, 0),    // earlier: section 104
		tr(5, Stocks, "XYZ", "2024-01-10", 40, -400, 0, -320, 0),    // other symbol
		tr(6, Stocks, "ABC", "2024-01-10", -10, 110, 0, 88, 0),      // same sign as disposal
		tr(7, Stocks, "ABC", "2024-01-10", -200, 2200, 0, 1760, 0),  // the disposal itself
	)
	disposal, _ := l.trade(7)

	if got := l.sameDay(disposal); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("sameDay = %v, want [0 1]", got)
	}
	if got := l.bedAndBreakfast(disposal); len(got) != 1 || got[0] != 2 {
		t.Errorf("bedAndBreakfast = %v, want [2]", got)
	}
	if got := l.section104(disposal); len(got) != 1 || got[0] != 4 {
		t.Errorf("section104 = %v, want [4]", got)
	}
}

func TestCandidateFilters_SkipConsumedRows(t *testing.T) {
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", 100, -1000, 0, -800, 0),
		tr(1, Stocks, "ABC", "2024-01-10", -100, 1100, 0, 880, 0),
	)
	l.reduce(0, Q(100)) // fully consumed
	disposal, _ := l.trade(1)
	if got := l.sameDay(disposal); len(got) != 0 {
		t.Errorf("sameDay = %v, want none: zero-quantity rows never match again", got)
	}
}

func TestCollapse_SingleTradeUnchanged(t *testing.T) {
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-02", 20, -200, -1, -160, -0.8),
	)
	before, _ := l.trade(0)
	id := l.collapse([]TradeID{0})
	if id != 0 {
		t.Fatalf("collapse() = %v, want 0", id)
	}
	after, _ := l.trade(0)
	if after != before {
		t.Errorf("collapse of a single trade changed the row: %+v != %+v", after, before)
	}
}

func TestCollapse_PoolsIntoFirstRow(t *testing.T) {
	l := NewLedger(
		tr(0, Stocks, "XYZ", "2024-01-01", 30, -300, -1, -240, -0.8),
		tr(1, Stocks, "XYZ", "2024-01-05", 20, -200, -1, -160, -0.8),
	)
	id := l.collapse([]TradeID{0, 1})
	if id != 0 {
		t.Fatalf("collapse() = %v, want first row 0", id)
	}
	pooled, _ := l.trade(0)
	if !pooled.Quantity.Equal(Q(50)) {
		t.Errorf("pooled Quantity = %v, want 50", pooled.Quantity)
	}
	if !pooled.NotionalValue.Equal(USD(-500)) {
		t.Errorf("pooled NotionalValue = %v, want -500", pooled.NotionalValue)
	}
	if !pooled.NotionalValueGBP.Equal(GBP(-400)) {
		t.Errorf("pooled NotionalValueGBP = %v, want -400", pooled.NotionalValueGBP)
	}
	if !pooled.Commission.Equal(USD(-2)) {
		t.Errorf("pooled Commission = %v, want -2", pooled.Commission)
	}
	// the other row is gone for good
	if _, ok := l.trade(1); ok {
		t.Error("collapsed row 1 must be removed from the ledger")
	}
	// recomputed rate: total GBP notional over total notional
	if !l.rows[0].FXRate.Equal(Q(0.8)) {
		t.Errorf("pooled FXRate = %v, want 0.8", l.rows[0].FXRate)
	}
}

func TestReduce_Conservation(t *testing.T) {
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", -100, 1000, -4, 800, -3.2),
	)
	before, _ := l.trade(0)
	frag := before.fragment(Q(25))
	l.reduce(0, Q(25))
	after, _ := l.trade(0)

	if !after.Quantity.Equal(Q(-75)) {
		t.Errorf("remaining Quantity = %v, want -75", after.Quantity)
	}
	// the fragment and the remainder sum back to the original
	sum, err := frag.Add(after)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !sum.Quantity.Equal(before.Quantity) {
		t.Errorf("fragment+remainder Quantity = %v, want %v", sum.Quantity, before.Quantity)
	}
	if !sum.NotionalValue.Equal(before.NotionalValue) {
		t.Errorf("fragment+remainder NotionalValue = %v, want %v", sum.NotionalValue, before.NotionalValue)
	}
	if !sum.CommissionGBP.Equal(before.CommissionGBP) {
		t.Errorf("fragment+remainder CommissionGBP = %v, want %v", sum.CommissionGBP, before.CommissionGBP)
	}
}

func TestWriteUnmatched(t *testing.T) {
	l := NewLedger(
		tr(0, Stocks, "ABC", "2024-01-10", 100, -1000, -2, -800, -1.6),
		tr(1, Stocks, "ABC", "2024-01-10", -60, 660, -2, 528, -1.6),
	)
	if _, err := l.Match(); err != nil {
		t.Fatalf("Match() error = %v", err)
	}

	var b strings.Builder
	if err := l.WriteUnmatched(&b); err != nil {
		t.Fatalf("WriteUnmatched() error = %v", err)
	}
	out := b.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one residual row:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "ABC") || !strings.Contains(lines[1], "40") {
		t.Errorf("residual row = %q, want the 40 remaining units of ABC", lines[1])
	}
}
