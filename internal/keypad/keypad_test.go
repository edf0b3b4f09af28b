package keypad

import (
	"errors"
	"testing"
)

func TestKeypadPressNotifiesObservers(t *testing.T) {
	var got []Snapshot
	k := New(CalculatorKeys, WithObserver(func(s Snapshot) {
		got = append(got, s)
	}))

	k.Press(DigitKey(1))
	k.Press(OperatorKey(OpAdd))
	k.Press(DigitKey(2))

	if len(got) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(got))
	}

	last := got[2]
	if last.Display != "2" {
		t.Fatalf("expected display %q, got %q", "2", last.Display)
	}
	if last.Indicator != "1 +" {
		t.Fatalf("expected indicator %q, got %q", "1 +", last.Indicator)
	}
	if last.Operand == nil || *last.Operand != 1 {
		t.Fatalf("expected operand 1, got %v", last.Operand)
	}
	if last.Operator != "+" {
		t.Fatalf("expected operator %q, got %q", "+", last.Operator)
	}
}

func TestKeypadIgnoresDisabledKeys(t *testing.T) {
	calls := 0
	k := New(CurrencyKeys, WithObserver(func(Snapshot) { calls++ }))

	k.Press(DigitKey(4))

	for _, key := range []Key{OperatorKey(OpAdd), EqualsKey, PercentKey, {}} {
		snap, applied := k.Press(key)
		if applied {
			t.Fatalf("expected %v to be ignored", key.Kind)
		}
		if snap.Display != "4" {
			t.Fatalf("expected display to stay %q, got %q", "4", snap.Display)
		}
	}

	if calls != 1 {
		t.Fatalf("expected 1 observer call, got %d", calls)
	}

	if _, applied := k.Press(ToggleSignKey); !applied {
		t.Fatal("expected toggle sign to be enabled on the currency keypad")
	}
	if got := k.Snapshot().Display; got != "-4" {
		t.Fatalf("expected display %q, got %q", "-4", got)
	}
}

func TestKeypadWithEntryAndReset(t *testing.T) {
	k := New(CurrencyKeys, WithEntry("1"))

	if got := k.Value(); got != 1 {
		t.Fatalf("expected mounted value 1, got %v", got)
	}

	k.Press(DigitKey(5))
	if got := k.Snapshot().Display; got != "15" {
		t.Fatalf("expected display %q, got %q", "15", got)
	}

	k.Press(ClearAllKey)
	if got := k.Snapshot().Display; got != "0" {
		t.Fatalf("expected clear to show %q, got %q", "0", got)
	}

	k.Reset()
	if got := k.Snapshot().Display; got != "1" {
		t.Fatalf("expected reset to restore %q, got %q", "1", got)
	}

	if got := New(CalculatorKeys, WithEntry("1e5")).Snapshot().Display; got != "0" {
		t.Fatalf("expected non-literal entry to be ignored, got %q", got)
	}
}

func TestSnapshotWithoutPendingOperator(t *testing.T) {
	snap := Initial().Snapshot()

	if snap.Display != "0" || snap.Indicator != "" || snap.Operand != nil || snap.Operator != "" {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}
}

func TestCapabilities(t *testing.T) {
	caps := Keys(KindDigit, KindClearAll)

	if !caps.Has(KindDigit) || !caps.Has(KindClearAll) {
		t.Fatal("expected enabled kinds to be reported")
	}
	if caps.Has(KindOperator) {
		t.Fatal("did not expect operator to be enabled")
	}
	if CalculatorKeys.Has(KindNone) {
		t.Fatal("did not expect the zero kind to be enabled")
	}
}

func TestOperatorKeyRejectsNone(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for OpNone")
		}
	}()

	OperatorKey(OpNone)
}

func TestKeymapParse(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{name: "7", want: DigitKey(7)},
		{name: "Numpad3", want: DigitKey(3)},
		{name: ",", want: DecimalPointKey},
		{name: "Enter", want: EqualsKey},
		{name: "Escape", want: ClearAllKey},
		{name: "AC", want: ClearAllKey},
		{name: "x", want: OperatorKey(OpMultiply)},
		{name: "*", want: OperatorKey(OpMultiply)},
		{name: "/", want: OperatorKey(OpDivide)},
		{name: "-", want: OperatorKey(OpSubtract)},
		{name: "+/-", want: ToggleSignKey},
		{name: "%", want: PercentKey},
		{name: "Backspace", want: BackspaceKey},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseKey(tc.name)
			if err != nil {
				t.Fatalf("ParseKey(%q): %v", tc.name, err)
			}
			if got != tc.want {
				t.Fatalf("ParseKey(%q): expected %v, got %v", tc.name, tc.want, got)
			}
		})
	}

	if _, err := ParseKey("F1"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestKeymapFromCode(t *testing.T) {
	tests := []struct {
		code int
		want Key
	}{
		{code: 96, want: DigitKey(0)},
		{code: 105, want: DigitKey(9)},
		{code: 53, want: DigitKey(5)},
		{code: 110, want: DecimalPointKey},
		{code: 13, want: EqualsKey},
		{code: 27, want: ClearAllKey},
		{code: 8, want: BackspaceKey},
		{code: 107, want: OperatorKey(OpAdd)},
	}

	for _, tc := range tests {
		got, err := KeyFromCode(tc.code)
		if err != nil {
			t.Fatalf("KeyFromCode(%d): %v", tc.code, err)
		}
		if got != tc.want {
			t.Fatalf("KeyFromCode(%d): expected %v, got %v", tc.code, tc.want, got)
		}
	}

	if _, err := KeyFromCode(112); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestCurrencyKeymapFlipsSign(t *testing.T) {
	for _, name := range []string{"+", "-"} {
		got, err := CurrencyKeymap.Parse(name)
		if err != nil {
			t.Fatalf("Parse(%q): %v", name, err)
		}
		if got != ToggleSignKey {
			t.Fatalf("Parse(%q): expected toggle sign, got %v", name, got)
		}
	}

	if got, _ := CurrencyKeymap.FromCode(109); got != ToggleSignKey {
		t.Fatalf("expected code 109 to toggle sign, got %v", got)
	}

	if got, _ := CalculatorKeymap.Parse("+"); got != OperatorKey(OpAdd) {
		t.Fatalf("expected calculator keymap to keep + as add, got %v", got)
	}
}
