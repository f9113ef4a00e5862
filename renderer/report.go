package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/ibcgt"
	md "github.com/nao1215/markdown"
)

// TaxYearMarkdown renders the summary of one UK tax year followed by
// each of its disposals.
func TaxYearMarkdown(r *ibcgt.TaxYearReport) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Tax Year: %s - %s",
		r.Range.From.Format("02 January 2006"),
		r.Range.To.Format("02 January 2006")))

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header: []string{
			md.Bold("Total Gains/Losses"),
			md.Bold(r.Net().SignedString()),
		},
		Rows: [][]string{
			{"Number of Disposals", fmt.Sprint(len(r.Disposals))},
			{"Disposal Proceeds", r.Proceeds().String()},
			{"Costs", r.Costs().String()},
			{"Gains", r.Gains().String()},
			{"Losses", r.Losses().String()},
		},
	})

	var b strings.Builder
	b.WriteString(doc.String())
	for _, d := range r.Disposals {
		b.WriteString("\n")
		b.WriteString(DisposalMarkdown(d))
	}
	return b.String()
}
