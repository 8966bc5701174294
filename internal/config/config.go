// Package config loads the exchange-rate table the evaluator uses to convert
// between currencies. The table is external configuration, never mutated by
// the interpreter once loaded.
package config

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Codes is the closed set of currency codes the language recognizes.
var Codes = []string{"USD", "EUR", "PLN"}

// Rates is a fixed mapping rate[from][to] covering every pair among the
// supported currency codes. Rates[x][x] is always 1.
type Rates map[string]map[string]float64

// Lookup returns the conversion multiplier from one code to another.
// Both codes are assumed valid (callers check token.CurrencyCodes first);
// a missing entry is a configuration bug, not a user error, so Lookup
// panics rather than returning a zero rate that would silently corrupt
// arithmetic.
func (r Rates) Lookup(from, to string) float64 {
	row, ok := r[from]
	if !ok {
		panic(fmt.Sprintf("config: no exchange rate row for currency %q", from))
	}
	rate, ok := row[to]
	if !ok {
		panic(fmt.Sprintf("config: no exchange rate from %q to %q", from, to))
	}
	return rate
}

// Default returns the built-in exchange-rate table used when no external
// configuration file is supplied.
func Default() Rates {
	r := Rates{}
	for _, from := range Codes {
		r[from] = map[string]float64{}
		for _, to := range Codes {
			if from == to {
				r[from][to] = 1
			}
		}
	}
	r["USD"]["EUR"] = 0.92
	r["EUR"]["USD"] = 1.09
	r["USD"]["PLN"] = 3.95
	r["PLN"]["USD"] = 0.25
	r["EUR"]["PLN"] = 4.30
	r["PLN"]["EUR"] = 0.23
	return r
}

// fileShape mirrors the on-disk YAML layout: a flat rates: {from: {to: rate}}
// document, so config files stay readable without a nested schema.
type fileShape struct {
	Rates map[string]map[string]float64 `yaml:"rates"`
}

// Load reads an exchange-rate table from a YAML file, overlaying it onto
// Default() so a config file only needs to override the pairs it cares
// about. An empty path returns Default() unchanged.
func Load(path string) (Rates, error) {
	rates := Default()
	if path == "" {
		return rates, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading exchange rate config %q", path)
	}
	var shape fileShape
	if err := yaml.Unmarshal(data, &shape); err != nil {
		return nil, pkgerrors.Wrapf(err, "parsing exchange rate config %q", path)
	}
	for from, row := range shape.Rates {
		if rates[from] == nil {
			rates[from] = map[string]float64{}
		}
		for to, rate := range row {
			rates[from][to] = rate
		}
	}
	return rates, nil
}
