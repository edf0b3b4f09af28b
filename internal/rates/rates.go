// Package rates supplies currency conversion factors to the currency keypad.
//
// Two providers share the exchange-rate document format of open.er-api.com:
// HTTPProvider queries the service per base currency, and FileProvider reads
// a table from disk and reloads it when the file changes.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
)

var (
	ErrInvalidCode     = errors.New("invalid currency code")
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrBadRate         = errors.New("rate is not a positive finite number")
	ErrUpstream        = errors.New("rate lookup failed")
)

var tracer = otel.Tracer("rates")

// Provider returns the multiplier converting an amount in from to an amount
// in to.
type Provider interface {
	Rate(ctx context.Context, from, to string) (float64, error)
	Currencies(ctx context.Context) ([]string, error)
}

// Table is an exchange-rate document: every rate converts one unit of Base.
type Table struct {
	Result string             `json:"result,omitempty"`
	Base   string             `json:"base_code"`
	Rates  map[string]float64 `json:"rates"`
}

// Normalize upper-cases a currency code and checks that it is three letters.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
		}
	}
	return code, nil
}

func decodeTable(r io.Reader) (Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return Table{}, fmt.Errorf("decoding rate table: %w", err)
	}

	if t.Result != "" && t.Result != "success" {
		return Table{}, fmt.Errorf("%w: result %q", ErrUpstream, t.Result)
	}

	base, err := Normalize(t.Base)
	if err != nil {
		return Table{}, fmt.Errorf("rate table base: %w", err)
	}
	t.Base = base

	if len(t.Rates) == 0 {
		return Table{}, fmt.Errorf("%w: empty rate table", ErrUpstream)
	}

	return t, nil
}

// lookup returns the rate for code, treating the base currency as 1.
func (t Table) lookup(code string) (float64, error) {
	if code == t.Base {
		if r, ok := t.Rates[code]; ok {
			return checkRate(code, r)
		}
		return 1, nil
	}

	r, ok := t.Rates[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return checkRate(code, r)
}

// Cross returns the rate from -> to computed through the table base.
func (t Table) Cross(from, to string) (float64, error) {
	fromRate, err := t.lookup(from)
	if err != nil {
		return 0, err
	}
	toRate, err := t.lookup(to)
	if err != nil {
		return 0, err
	}
	return checkRate(from+"/"+to, toRate/fromRate)
}

// Codes returns the sorted currency codes of the table, base included.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t.Rates)+1)
	for code := range t.Rates {
		codes = append(codes, code)
	}
	if _, ok := t.Rates[t.Base]; !ok && t.Base != "" {
		codes = append(codes, t.Base)
	}
	slices.Sort(codes)
	return codes
}

func checkRate(label string, r float64) (float64, error) {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: %s=%v", ErrBadRate, label, r)
	}
	return r, nil
}

// pair normalises both codes of a lookup.
func pair(from, to string) (string, string, error) {
	f, err := Normalize(from)
	if err != nil {
		return "", "", err
	}
	t, err := Normalize(to)
	if err != nil {
		return "", "", err
	}
	return f, t, nil
}
