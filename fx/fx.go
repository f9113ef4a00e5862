// Package fx resolves foreign-exchange rates to GBP by currency and
// date, from per-currency CSV price files.
//
// Each file holds the daily price of one currency against USD, so a rate
// to GBP is the cross of the currency's USD price and the GBP USD price.
package fx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/etnz/ibcgt/date"
	"github.com/shopspring/decimal"
)

// point is one daily price of a currency against USD.
type point struct {
	On    date.Date
	Price decimal.Decimal
}

// Store holds the per-currency USD price series, sorted by date.
type Store struct {
	series map[string][]point
}

// Load reads every "*.csv" file of dir as the price series of one
// currency, keyed by the first three characters of the file name.
// Files carry a DATETIME,PRICE header; the time component is ignored.
func Load(dir string) (*Store, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	s := &Store{series: make(map[string][]point)}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if len(name) < 3 {
			continue
		}
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		serie, err := readSeries(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("cannot read fx file %q: %w", file, err)
		}
		s.series[name[:3]] = serie
	}
	return s, nil
}

// readSeries reads one DATETIME,PRICE series and returns it sorted by date.
func readSeries(r io.Reader) ([]point, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	iDate, iPrice := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "DATETIME":
			iDate = i
		case "PRICE":
			iPrice = i
		}
	}
	if iDate < 0 || iPrice < 0 {
		return nil, fmt.Errorf("missing DATETIME or PRICE column")
	}

	var serie []point
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		day, _, _ := strings.Cut(strings.TrimSpace(record[iDate]), " ")
		on, err := date.Parse(day)
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[iPrice]))
		if err != nil {
			return nil, err
		}
		serie = append(serie, point{On: on, Price: price})
	}
	slices.SortFunc(serie, func(a, b point) int {
		switch {
		case a.On.Before(b.On):
			return -1
		case a.On.After(b.On):
			return 1
		default:
			return 0
		}
	})
	return serie, nil
}

// usd returns the currency's USD price at or before the given date, or
// the first known price when the date precedes the whole series.
func usd(serie []point, on date.Date) decimal.Decimal {
	price := serie[0].Price
	for _, p := range serie {
		if p.On.After(on) {
			break
		}
		price = p.Price
	}
	return price
}

// Rate returns the conversion rate from the currency to GBP on the given
// date, using the last known price at or before that date.
func (s *Store) Rate(currency string, on date.Date) (decimal.Decimal, error) {
	if currency == "GBP" {
		return decimal.NewFromInt(1), nil
	}

	gbp, ok := s.series["GBP"]
	if !ok || len(gbp) == 0 {
		return decimal.Zero, fmt.Errorf("no GBP price series loaded")
	}
	toGBP := usd(gbp, on)
	if toGBP.IsZero() {
		return decimal.Zero, fmt.Errorf("zero GBP price on %s", on)
	}

	toUSD := decimal.NewFromInt(1)
	if currency != "USD" {
		serie, ok := s.series[currency]
		if !ok || len(serie) == 0 {
			return decimal.Zero, fmt.Errorf("no price series for currency %q", currency)
		}
		toUSD = usd(serie, on)
	}
	return toUSD.Div(toGBP), nil
}
