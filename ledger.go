package ibcgt

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/ibcgt/date"
	"github.com/shopspring/decimal"
)

// ledger CSV columns, in the order produced by the parse command.
var ledgerColumns = []string{
	"Instrument Type",
	"Currency",
	"Symbol",
	"Date/Time",
	"Quantity",
	"Notional Value",
	"Comm/Fee",
	"Notional Value GBP",
	"Comm in GBP",
	"FX Rate",
}

// row is a mutable working copy of a trade, plus the FX Rate column of
// the ledger file. The column is GBP per unit of trade currency (the
// inverse of Trade.FX) and is only carried so that residual rows are
// written back with the rate the broker statement established.
type row struct {
	Trade
	FXRate Quantity
}

// Ledger is the working set of trades being matched. Rows are keyed by
// their stable TradeID; iteration order is by (symbol, date) ascending
// and is fixed when the ledger is created. Matching only ever reduces
// quantities or collapses pooled rows, never reorders.
type Ledger struct {
	rows  map[TradeID]*row
	order []TradeID
}

// NewLedger builds a working ledger from trades. The FX Rate column of
// each row is derived from the trade's GBP and local notionals.
func NewLedger(trades ...Trade) *Ledger {
	l := &Ledger{rows: make(map[TradeID]*row, len(trades))}
	for _, t := range trades {
		l.rows[t.ID] = &row{Trade: t, FXRate: t.NotionalValueGBP.DivMoney(t.NotionalValue)}
		l.order = append(l.order, t.ID)
	}
	l.sort()
	return l
}

// sort fixes the iteration order: symbol, then date, then id for rows of
// the same symbol and day.
func (l *Ledger) sort() {
	slices.SortFunc(l.order, func(a, b TradeID) int {
		ra, rb := l.rows[a], l.rows[b]
		if c := strings.Compare(ra.Symbol, rb.Symbol); c != 0 {
			return c
		}
		if ra.Date.Before(rb.Date) {
			return -1
		}
		if ra.Date.After(rb.Date) {
			return 1
		}
		return int(a - b)
	})
}

// ReadLedger reads a trade ledger CSV, keeps only the selected
// instrument types, and returns the working ledger sorted by symbol and
// date. The selection is validated before any row is read.
func ReadLedger(r io.Reader, types []InstrumentType) (*Ledger, error) {
	if err := ValidateInstrumentTypes(types); err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read ledger header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range ledgerColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("ledger is missing column %q", name)
		}
	}

	var trades []Trade
	for id := 0; ; id++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read ledger row %d: %w", id, err)
		}
		field := func(name string) string { return strings.TrimSpace(record[col[name]]) }

		t, err := ParseInstrumentType(field("Instrument Type"))
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", id, err)
		}
		if !slices.Contains(types, t) {
			continue
		}

		on, err := parseDay(field("Date/Time"))
		if err != nil {
			return nil, fmt.Errorf("ledger row %d: %w", id, err)
		}
		currency := field("Currency")

		qty, err := parseQuantity(field("Quantity"))
		if err != nil {
			return nil, fmt.Errorf("ledger row %d quantity: %w", id, err)
		}
		nv, err := parseMoney(field("Notional Value"), currency)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d notional value: %w", id, err)
		}
		comm, err := parseMoney(field("Comm/Fee"), currency)
		if err != nil {
			return nil, fmt.Errorf("ledger row %d comm/fee: %w", id, err)
		}
		nvGBP, err := parseMoney(field("Notional Value GBP"), "GBP")
		if err != nil {
			return nil, fmt.Errorf("ledger row %d notional value gbp: %w", id, err)
		}
		commGBP, err := parseMoney(field("Comm in GBP"), "GBP")
		if err != nil {
			return nil, fmt.Errorf("ledger row %d comm in gbp: %w", id, err)
		}

		trades = append(trades, Trade{
			Type:             t,
			ID:               TradeID(id),
			Symbol:           field("Symbol"),
			Currency:         currency,
			Date:             on,
			Quantity:         qty,
			NotionalValue:    nv,
			Commission:       comm,
			NotionalValueGBP: nvGBP,
			CommissionGBP:    commGBP,
		})
	}
	return NewLedger(trades...), nil
}

// parseDay reads the date part of a statement timestamp such as
// "2024-03-05, 14:30:02" or "2024-03-05 14:30:02".
func parseDay(s string) (date.Date, error) {
	day, _, _ := strings.Cut(s, ",")
	day, _, _ = strings.Cut(day, " ")
	return date.Parse(day)
}

func parseQuantity(s string) (Quantity, error) {
	if s == "" {
		return Quantity{}, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return Quantity{}, err
	}
	return Q(d), nil
}

func parseMoney(s, currency string) (Money, error) {
	q, err := parseQuantity(s)
	if err != nil {
		return Money{}, err
	}
	return M(q.value, currency), nil
}

// trade returns a copy of the current state of a row, false when the row
// was removed by a pool collapse.
func (l *Ledger) trade(id TradeID) (Trade, bool) {
	r, ok := l.rows[id]
	if !ok {
		return Trade{}, false
	}
	return r.Trade, true
}

// candidates returns, in ledger order, the ids of live rows of the same
// symbol and opposite sign whose date satisfies pred.
func (l *Ledger) candidates(d Trade, pred func(date.Date) bool) []TradeID {
	var ids []TradeID
	for _, id := range l.order {
		r, ok := l.rows[id]
		if !ok || r.Quantity.IsZero() {
			continue
		}
		if r.Symbol != d.Symbol || r.Quantity.Sign() == d.Quantity.Sign() {
			continue
		}
		if pred(r.Date) {
			ids = append(ids, id)
		}
	}
	return ids
}

// sameDay selects opposite trades of the same symbol on the same calendar day.
func (l *Ledger) sameDay(d Trade) []TradeID {
	return l.candidates(d, func(on date.Date) bool { return on == d.Date })
}

// bedAndBreakfast selects opposite trades strictly after the disposal
// date and within the following 30 calendar days, inclusive.
func (l *Ledger) bedAndBreakfast(d Trade) []TradeID {
	limit := d.Date.Add(30)
	return l.candidates(d, func(on date.Date) bool { return on.After(d.Date) && !on.After(limit) })
}

// section104 selects all opposite trades strictly before the disposal date.
func (l *Ledger) section104(d Trade) []TradeID {
	return l.candidates(d, func(on date.Date) bool { return on.Before(d.Date) })
}

// collapse pools the section 104 candidates into their first row:
// quantity and the four monetary fields are summed, the other rows are
// permanently removed, and the row's FX rate becomes total notional GBP
// over total notional (zero when the total notional is zero). A pool of
// one trade is returned unchanged.
func (l *Ledger) collapse(ids []TradeID) TradeID {
	first := ids[0]
	if len(ids) == 1 {
		return first
	}
	pooled := l.rows[first]
	for _, id := range ids[1:] {
		r := l.rows[id]
		pooled.Quantity = pooled.Quantity.Add(r.Quantity)
		pooled.NotionalValue = pooled.NotionalValue.Add(r.NotionalValue)
		pooled.Commission = pooled.Commission.Add(r.Commission)
		pooled.NotionalValueGBP = pooled.NotionalValueGBP.Add(r.NotionalValueGBP)
		pooled.CommissionGBP = pooled.CommissionGBP.Add(r.CommissionGBP)
		delete(l.rows, id)
	}
	pooled.FXRate = pooled.NotionalValueGBP.DivMoney(pooled.NotionalValue)
	return first
}

// reduce consumes matched units (a positive quantity) from a row: the
// signed matched amount is subtracted from the remaining quantity and
// the monetary fields are rescaled to the new remainder. A row reduced
// to zero never matches again.
func (l *Ledger) reduce(id TradeID, matched Quantity) {
	r := l.rows[id]
	signed := matched
	if r.Quantity.IsNegative() {
		signed = matched.Neg()
	}
	remaining := r.Quantity.Sub(signed)
	scale := remaining.Div(r.Quantity) // zero when the row was already empty
	r.Quantity = remaining
	r.NotionalValue = r.NotionalValue.Mul(scale)
	r.Commission = r.Commission.Mul(scale)
	r.NotionalValueGBP = r.NotionalValueGBP.Mul(scale)
	r.CommissionGBP = r.CommissionGBP.Mul(scale)
}

// Unmatched returns, in ledger order, the rows whose quantity is still
// nonzero once matching is over. They are reported for audit and
// carried forward to the next batch.
func (l *Ledger) Unmatched() []Trade {
	var trades []Trade
	for _, id := range l.order {
		r, ok := l.rows[id]
		if !ok || r.Quantity.IsZero() {
			continue
		}
		trades = append(trades, r.Trade)
	}
	return trades
}

// csvRecord renders one ledger CSV row.
func csvRecord(t Trade, fxRate Quantity) []string {
	return []string{
		t.Type.String(),
		t.Currency,
		t.Symbol,
		t.Date.String(),
		t.Quantity.String(),
		t.NotionalValue.value.String(),
		t.Commission.value.String(),
		t.NotionalValueGBP.value.String(),
		t.CommissionGBP.value.String(),
		fxRate.String(),
	}
}

// WriteLedger writes trades as a ledger CSV, the format ReadLedger
// consumes. The FX Rate column is derived from each trade's GBP and
// local notionals.
func WriteLedger(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerColumns); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write(csvRecord(t, t.NotionalValueGBP.DivMoney(t.NotionalValue))); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUnmatched writes the residual rows as a ledger CSV, with the same
// columns as the input file. Collapsed pool rows keep their recomputed
// FX rate.
func (l *Ledger) WriteUnmatched(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerColumns); err != nil {
		return err
	}
	for _, id := range l.order {
		r, ok := l.rows[id]
		if !ok || r.Quantity.IsZero() {
			continue
		}
		if err := cw.Write(csvRecord(r.Trade, r.FXRate)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
