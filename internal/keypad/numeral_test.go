package keypad

import (
	"math"
	"strings"
	"testing"
)

func TestNumeral(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0"},
		{in: math.Copysign(0, -1), want: "0"},
		{in: 5, want: "5"},
		{in: -5, want: "-5"},
		{in: 0.3, want: "0.3"},
		{in: 1234567.125, want: "1234567.125"},
		{in: 1e20, want: "100000000000000000000"},
		{in: 1e21, want: "1e+21"},
		{in: -2.5e22, want: "-2.5e+22"},
		{in: 0.000001, want: "0.000001"},
		{in: 1e-7, want: "1e-7"},
		{in: 1.5e-10, want: "1.5e-10"},
		{in: math.Inf(1), want: "Infinity"},
		{in: math.Inf(-1), want: "-Infinity"},
		{in: math.NaN(), want: "NaN"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := Numeral(tc.in); got != tc.want {
				t.Fatalf("Numeral(%v): expected %q, got %q", tc.in, tc.want, got)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "0", want: 0},
		{in: "42", want: 42},
		{in: "-3.5", want: -3.5},
		{in: "5.", want: 5},
		{in: "0.", want: 0},
		{in: "1e-7", want: 1e-7},
		{in: "1e+21", want: 1e21},
		{in: "Infinity", want: math.Inf(1)},
		{in: "-Infinity", want: math.Inf(-1)},
		{in: "", want: 0},
		{in: "-", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := Parse(tc.in); got != tc.want {
				t.Fatalf("Parse(%q): expected %v, got %v", tc.in, tc.want, got)
			}
		})
	}

	if got := Parse("NaN"); !math.IsNaN(got) {
		t.Fatalf("Parse(NaN): expected NaN, got %v", got)
	}
}

func TestParseOutOfRange(t *testing.T) {
	huge := "1" + strings.Repeat("0", 400)

	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "overflow", in: huge, want: math.Inf(1)},
		{name: "negative overflow", in: "-" + huge, want: math.Inf(-1)},
		{name: "overflow with fraction", in: huge + ".5", want: math.Inf(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Parse(tc.in); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0.1 + 0.2, want: 0.3},
		{in: 1.0 / 3, want: 0.33333333},
		{in: 123456789.123456789, want: 123456789.12345679},
		{in: -0.000000004, want: 0},
		{in: 7, want: 7},
	}

	for _, tc := range tests {
		if got := Round(tc.in); got != tc.want {
			t.Fatalf("Round(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}

	if got := Round(math.Inf(1)); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf to pass through, got %v", got)
	}
	if got := Round(math.NaN()); !math.IsNaN(got) {
		t.Fatalf("expected NaN to pass through, got %v", got)
	}
}

func TestIsLiteral(t *testing.T) {
	for _, in := range []string{"0", "12", "-3", "0.", "-0.25", "5."} {
		if !isLiteral(in) {
			t.Fatalf("expected %q to be a literal", in)
		}
	}

	for _, in := range []string{"", "-", ".", "1e-7", "Infinity", "NaN", "1.2.3", "--1"} {
		if isLiteral(in) {
			t.Fatalf("expected %q not to be a literal", in)
		}
	}
}
