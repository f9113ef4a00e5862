package ibcgt

import (
	"fmt"
	"strings"
)

// InstrumentType classifies a trade by the kind of instrument traded.
// The values mirror the section headers of a broker activity statement.
type InstrumentType int

const (
	Stocks InstrumentType = iota
	Futures
	Forex
	EquityAndIndexOptions
	Bonds
)

func (t InstrumentType) String() string {
	switch t {
	case Stocks:
		return "Stocks"
	case Futures:
		return "Futures"
	case Forex:
		return "Forex"
	case EquityAndIndexOptions:
		return "Equity and Index Options"
	case Bonds:
		return "Bonds"
	default:
		return "unknown"
	}
}

// ParseInstrumentType parses a string into an InstrumentType.
func ParseInstrumentType(s string) (InstrumentType, error) {
	switch s {
	case "Stocks":
		return Stocks, nil
	case "Futures":
		return Futures, nil
	case "Forex":
		return Forex, nil
	case "Equity and Index Options":
		return EquityAndIndexOptions, nil
	case "Bonds":
		return Bonds, nil
	default:
		return 0, fmt.Errorf("unknown instrument type: %q", s)
	}
}

// usesDisposalFX reports whether gains on this instrument type are
// converted with the FX rate of the disposal trade rather than the FX
// rate of each matching trade.
func (t InstrumentType) usesDisposalFX() bool { return t == Futures || t == Forex }

// ValidateInstrumentTypes rejects a selection that cannot be processed.
// It runs before any matching so that an unsupported selection fails the
// whole batch rather than skipping rows.
func ValidateInstrumentTypes(types []InstrumentType) error {
	if len(types) == 0 {
		return fmt.Errorf("no instrument types selected")
	}
	for _, t := range types {
		if t == Bonds {
			return fmt.Errorf("instrument type %q is not supported", t)
		}
	}
	return nil
}

// ParseInstrumentTypes parses a list of instrument type names and
// validates the selection.
func ParseInstrumentTypes(names []string) ([]InstrumentType, error) {
	types := make([]InstrumentType, 0, len(names))
	for _, name := range names {
		t, err := ParseInstrumentType(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if err := ValidateInstrumentTypes(types); err != nil {
		return nil, err
	}
	return types, nil
}
