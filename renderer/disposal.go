// Package renderer turns disposals and tax-year reports into markdown.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/ibcgt"
	md "github.com/nao1215/markdown"
)

// tradeHeader are the columns of a trade table.
var tradeHeader = []string{
	"ID", "Date", "Qty", "Symbol", "Currency",
	"Proceeds", "GBP Proceeds", "Fees", "Fees in GBP", "FX",
}

var tradeAlignment = []md.TableAlignment{
	md.AlignRight, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft,
	md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight,
}

func tradeRow(t ibcgt.Trade) []string {
	return []string{
		fmt.Sprint(t.ID),
		t.Date.String(),
		t.Quantity.String(),
		t.Symbol,
		t.Currency,
		t.NotionalValue.String(),
		t.NotionalValueGBP.String(),
		t.Commission.String(),
		t.CommissionGBP.String(),
		t.FX().String(),
	}
}

// DisposalMarkdown renders one disposal: the disposing trade, the trades
// it was matched against, and the resulting gain or loss.
func DisposalMarkdown(d ibcgt.Disposal) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2(fmt.Sprintf("Disposing %s Trade: %s", d.Trade.Type, d.Trade.Symbol))
	doc.Table(md.TableSet{
		Alignment: tradeAlignment,
		Header:    tradeHeader,
		Rows:      [][]string{tradeRow(d.Trade)},
	})

	doc.H3("Matching Trades")
	rows := make([][]string, 0, len(d.Matching))
	for _, t := range d.Matching {
		rows = append(rows, tradeRow(t))
	}
	doc.Table(md.TableSet{
		Alignment: tradeAlignment,
		Header:    tradeHeader,
		Rows:      rows,
	})

	doc.PlainText(outcome(d))
	return doc.String()
}

// outcome phrases the gain or loss of a disposal and which FX convention
// produced it.
func outcome(d ibcgt.Disposal) string {
	result := d.Loss()
	if !d.Gain().IsZero() {
		result = d.Gain()
	}
	convention := "corresponding FX rates on each trade date"
	if d.Trade.Type == ibcgt.Futures || d.Trade.Type == ibcgt.Forex {
		convention = "the FX rate on the disposal date"
	}
	return fmt.Sprintf("Resulting in a gain/loss of %s, using %s.", result.SignedString(), convention)
}
