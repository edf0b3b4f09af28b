package keypad

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

var ErrUnknownKey = errors.New("unknown key")

// Keymap translates key names and DOM key codes into keys for one surface.
type Keymap struct {
	names map[string]Key
	codes map[int]Key
}

var (
	// CalculatorKeymap is the binding set of the four-function calculator.
	CalculatorKeymap = defaultKeymap()

	// CurrencyKeymap is the binding set of the currency keypad, where the
	// plus and minus keys flip the sign of the amount.
	CurrencyKeymap = defaultKeymap().with(
		map[string]Key{
			"+":           ToggleSignKey,
			"-":           ToggleSignKey,
			"−":           ToggleSignKey,
			"numpadadd":   ToggleSignKey,
			"numpadminus": ToggleSignKey,
		},
		map[int]Key{
			107: ToggleSignKey,
			109: ToggleSignKey,
			187: ToggleSignKey,
			189: ToggleSignKey,
		},
	)
)

func defaultKeymap() Keymap {
	m := Keymap{
		names: map[string]Key{
			".":             DecimalPointKey,
			",":             DecimalPointKey,
			"decimal":       DecimalPointKey,
			"numpaddecimal": DecimalPointKey,

			"backspace": BackspaceKey,
			"delete":    BackspaceKey,

			"±":      ToggleSignKey,
			"+/-":    ToggleSignKey,
			"negate": ToggleSignKey,

			"%":       PercentKey,
			"percent": PercentKey,

			"+":              OperatorKey(OpAdd),
			"add":            OperatorKey(OpAdd),
			"numpadadd":      OperatorKey(OpAdd),
			"-":              OperatorKey(OpSubtract),
			"−":              OperatorKey(OpSubtract),
			"subtract":       OperatorKey(OpSubtract),
			"numpadminus":    OperatorKey(OpSubtract),
			"numpadsubtract": OperatorKey(OpSubtract),
			"*":              OperatorKey(OpMultiply),
			"x":              OperatorKey(OpMultiply),
			"×":              OperatorKey(OpMultiply),
			"multiply":       OperatorKey(OpMultiply),
			"numpadmultiply": OperatorKey(OpMultiply),
			"/":              OperatorKey(OpDivide),
			"÷":              OperatorKey(OpDivide),
			"divide":         OperatorKey(OpDivide),
			"numpaddivide":   OperatorKey(OpDivide),
			"mod":            OperatorKey(OpModulo),
			"modulo":         OperatorKey(OpModulo),

			"=":           EqualsKey,
			"enter":       EqualsKey,
			"numpadenter": EqualsKey,
			"equals":      EqualsKey,

			"escape": ClearAllKey,
			"esc":    ClearAllKey,
			"ac":     ClearAllKey,
			"c":      ClearAllKey,
			"clear":  ClearAllKey,
		},
		codes: map[int]Key{
			8:   BackspaceKey,
			13:  EqualsKey,
			27:  ClearAllKey,
			106: OperatorKey(OpMultiply),
			107: OperatorKey(OpAdd),
			109: OperatorKey(OpSubtract),
			110: DecimalPointKey,
			111: OperatorKey(OpDivide),
			187: EqualsKey,
			188: DecimalPointKey,
			189: OperatorKey(OpSubtract),
			190: DecimalPointKey,
			191: OperatorKey(OpDivide),
		},
	}

	for d := range 10 {
		key := DigitKey(d)
		m.names[strconv.Itoa(d)] = key
		m.names["numpad"+strconv.Itoa(d)] = key
		m.names["digit"+strconv.Itoa(d)] = key
		m.codes[48+d] = key
		m.codes[96+d] = key
	}

	return m
}

// with returns a copy of m with the given bindings replaced.
func (m Keymap) with(names map[string]Key, codes map[int]Key) Keymap {
	out := Keymap{
		names: maps.Clone(m.names),
		codes: maps.Clone(m.codes),
	}
	maps.Copy(out.names, names)
	maps.Copy(out.codes, codes)
	return out
}

// Parse looks up a key by name. Names are case-insensitive, so "Enter",
// "Numpad7" and "AC" all resolve.
func (m Keymap) Parse(name string) (Key, error) {
	key, ok := m.names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return key, nil
}

// FromCode looks up a key by DOM keyCode, including the numeric keypad
// range 96-105.
func (m Keymap) FromCode(code int) (Key, error) {
	key, ok := m.codes[code]
	if !ok {
		return Key{}, fmt.Errorf("%w: code %d", ErrUnknownKey, code)
	}
	return key, nil
}

// ParseKey looks up name in CalculatorKeymap.
func ParseKey(name string) (Key, error) {
	return CalculatorKeymap.Parse(name)
}

// KeyFromCode looks up code in CalculatorKeymap.
func KeyFromCode(code int) (Key, error) {
	return CalculatorKeymap.FromCode(code)
}
