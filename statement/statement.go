// Package statement extracts trades from a broker activity statement in
// HTML and enriches them into the ledger rows the matching engine
// consumes.
//
// A statement trade table interleaves three kinds of rows: header rows
// naming the columns of the following section, single-cell rows naming
// either the instrument type or the currency of the following trades,
// and the trade rows themselves. Subtotal rows are skipped.
package statement

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/ibcgt"
	"github.com/etnz/ibcgt/date"
	"github.com/etnz/ibcgt/fx"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

// instrumentTypes are the section headers recognized in a statement.
var instrumentTypes = []string{
	"Futures",
	"Stocks",
	"Forex",
	"Bonds",
	"Equity and Index Options",
}

// Record is one raw trade row: its section context plus the cell values
// keyed by the column headers of its section.
type Record struct {
	InstrumentType string
	Currency       string
	Fields         map[string]string
}

// Parse extracts the trade records from the tableIndex-th table of the
// statement HTML.
func Parse(r io.Reader, tableIndex int) ([]Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse statement: %w", err)
	}
	tables := findAll(doc, "table")
	if tableIndex < 0 || tableIndex >= len(tables) {
		return nil, fmt.Errorf("statement has %d tables, no table %d", len(tables), tableIndex)
	}

	var records []Record
	var columns []string
	var instrumentType, currency string

	for _, row := range findAll(tables[tableIndex], "tr") {
		if headers := findAll(row, "th"); len(headers) > 0 {
			// a new section starts: its rows use these columns
			columns = columns[:0]
			for _, th := range headers {
				columns = append(columns, cleanText(th))
			}
			continue
		}

		cells := findAll(row, "td")
		if len(cells) == 0 {
			continue
		}
		if len(cells) == 1 {
			// a single cell names the instrument type or the currency of
			// the following trades
			value := cleanText(cells[0])
			if t, ok := instrumentTypePrefix(value); ok {
				instrumentType = t
			} else {
				currency = value
			}
			continue
		}
		if strings.HasPrefix(cleanText(cells[0]), "Total") {
			continue
		}

		fields := make(map[string]string, len(columns))
		for i, td := range cells {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			fields[columns[i]] = cleanText(td)
		}
		records = append(records, Record{
			InstrumentType: instrumentType,
			Currency:       currency,
			Fields:         fields,
		})
	}
	return records, nil
}

// instrumentTypePrefix reports whether the value starts with a known
// instrument type, and which.
func instrumentTypePrefix(value string) (string, bool) {
	for _, t := range instrumentTypes {
		if strings.HasPrefix(value, t) {
			return t, true
		}
	}
	return "", false
}

// findAll returns, in document order, the element nodes of the given tag.
func findAll(n *html.Node, tag string) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			nodes = append(nodes, n)
			// tables do not nest in a statement, no need to descend
			if tag == "table" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return nodes
}

// cleanText returns the text content of a node with non-breaking spaces
// normalized and surrounding space trimmed.
func cleanText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.ReplaceAll(b.String(), " ", " "))
}

// Enrich converts raw records into ledger trades: it selects the
// notional value, resolves the FX rate of each trade date, and fills the
// GBP amounts. Forex pairs with a GBP leg read their rate off the trade
// itself instead of the rate store.
func Enrich(records []Record, rates *fx.Store) ([]ibcgt.Trade, error) {
	trades := make([]ibcgt.Trade, 0, len(records))
	for i, r := range records {
		t, err := enrich(ibcgt.TradeID(i), r, rates)
		if err != nil {
			return nil, fmt.Errorf("statement row %d (%s %s): %w", i, r.InstrumentType, r.Fields["Symbol"], err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func enrich(id ibcgt.TradeID, r Record, rates *fx.Store) (ibcgt.Trade, error) {
	typ, err := ibcgt.ParseInstrumentType(r.InstrumentType)
	if err != nil {
		return ibcgt.Trade{}, err
	}
	on, err := parseDay(r.Fields["Date/Time"])
	if err != nil {
		return ibcgt.Trade{}, err
	}
	symbol := r.Fields["Symbol"]

	quantity, err := parseNumber(r.Fields["Quantity"])
	if err != nil {
		return ibcgt.Trade{}, fmt.Errorf("quantity: %w", err)
	}

	// Futures statements carry a true notional value; for every other
	// instrument type the proceeds column is the notional.
	notionalField := "Notional Value"
	if typ != ibcgt.Futures || r.Fields[notionalField] == "" {
		notionalField = "Proceeds"
	}
	notional, err := parseNumber(r.Fields[notionalField])
	if err != nil {
		return ibcgt.Trade{}, fmt.Errorf("notional value: %w", err)
	}
	commission, err := parseNumber(r.Fields["Comm/Fee"])
	if err != nil {
		return ibcgt.Trade{}, fmt.Errorf("comm/fee: %w", err)
	}

	var notionalGBP decimal.Decimal
	switch {
	case typ == ibcgt.Forex && strings.HasPrefix(symbol, "GBP"):
		// quantity is the GBP leg
		notionalGBP = quantity.Neg()
	case typ == ibcgt.Forex && strings.HasSuffix(symbol, "GBP"):
		// the notional is already GBP
		notionalGBP = notional
	default:
		rate, err := rates.Rate(r.Currency, on)
		if err != nil {
			return ibcgt.Trade{}, err
		}
		notionalGBP = notional.Mul(rate)
	}

	var commissionGBP decimal.Decimal
	if typ == ibcgt.Forex {
		// forex rows report their commission in GBP on the statement
		commissionGBP, err = parseNumber(r.Fields["Comm in GBP"])
		if err != nil {
			return ibcgt.Trade{}, fmt.Errorf("comm in gbp: %w", err)
		}
	} else {
		rate, err := rates.Rate(r.Currency, on)
		if err != nil {
			return ibcgt.Trade{}, err
		}
		commissionGBP = commission.Mul(rate)
	}

	return ibcgt.Trade{
		Type:             typ,
		ID:               id,
		Symbol:           symbol,
		Currency:         r.Currency,
		Date:             on,
		Quantity:         ibcgt.Q(quantity),
		NotionalValue:    ibcgt.M(notional, r.Currency),
		Commission:       ibcgt.M(commission, r.Currency),
		NotionalValueGBP: ibcgt.M(notionalGBP, "GBP"),
		CommissionGBP:    ibcgt.M(commissionGBP, "GBP"),
	}, nil
}

// parseDay reads the date part of a statement timestamp such as
// "2024-03-05, 14:30:02".
func parseDay(s string) (date.Date, error) {
	day, _, _ := strings.Cut(s, ",")
	day, _, _ = strings.Cut(day, " ")
	return date.Parse(day)
}

// parseNumber reads a statement number, tolerating thousand separators
// and empty cells (zero).
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
