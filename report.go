package ibcgt

import (
	"time"

	"github.com/etnz/ibcgt/date"
)

// TaxYearRange returns the UK tax year starting on 6 April of the given
// year and ending on 5 April of the next.
func TaxYearRange(year int) date.Range {
	return date.Range{
		From: date.New(year, time.April, 6),
		To:   date.New(year+1, time.April, 5),
	}
}

// TaxYearReport summarizes the disposals of one UK tax year.
type TaxYearReport struct {
	Year      int
	Range     date.Range
	Disposals []Disposal
}

// NewTaxYearReport keeps the disposals whose disposal date falls within
// the tax year starting 6 April of the given year.
func NewTaxYearReport(year int, disposals []Disposal) *TaxYearReport {
	r := &TaxYearReport{Year: year, Range: TaxYearRange(year)}
	for _, d := range disposals {
		if r.Range.Contains(d.Trade.Date) {
			r.Disposals = append(r.Disposals, d)
		}
	}
	return r
}

// Proceeds returns the total disposal proceeds of the year.
func (r *TaxYearReport) Proceeds() Money {
	var total Money
	for _, d := range r.Disposals {
		total = total.Add(d.Proceeds())
	}
	return total
}

// Costs returns the total allowable costs of the year, as a positive
// magnitude.
func (r *TaxYearReport) Costs() Money {
	var total Money
	for _, d := range r.Disposals {
		total = total.Add(d.Costs())
	}
	return total.Neg()
}

// Gains returns the total of the gains of the year.
func (r *TaxYearReport) Gains() Money {
	var total Money
	for _, d := range r.Disposals {
		total = total.Add(d.Gain())
	}
	return total
}

// Losses returns the total of the losses of the year, as a positive
// magnitude.
func (r *TaxYearReport) Losses() Money {
	var total Money
	for _, d := range r.Disposals {
		total = total.Add(d.Loss())
	}
	return total.Neg()
}

// Net returns gains less losses.
func (r *TaxYearReport) Net() Money {
	return r.Gains().Sub(r.Losses())
}
