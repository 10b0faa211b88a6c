package rates

import "strings"

// Provider converts an amount denominated in one currency to another.
// The engine uses it to express pip values in the account currency.
type Provider interface {
	Rate(from, to string) float64
}

// Static serves a fixed table of approximate conversion rates. It is a known
// simplification carried over from the original sizing model: production
// deployments should wire a live-rate provider instead.
type Static struct {
	table map[string]float64
}

func NewStatic() *Static {
	return &Static{
		table: map[string]float64{
			"USD/EUR": 0.92,
			"USD/GBP": 0.79,
			"EUR/USD": 1.09,
			"GBP/USD": 1.27,
		},
	}
}

// Rate returns 1.0 for same-currency conversions and for pairs missing from
// the table.
func (s *Static) Rate(from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" || from == to {
		return 1
	}
	if r, ok := s.table[from+"/"+to]; ok {
		return r
	}
	return 1
}
