package keypad

import "strconv"

// Kind is a key class. Adapters map physical or virtual keys onto kinds.
type Kind uint8

const (
	KindNone Kind = iota
	KindDigit
	KindDecimalPoint
	KindBackspace
	KindToggleSign
	KindPercent
	KindOperator
	KindEquals
	KindClearAll
)

func (k Kind) String() string {
	switch k {
	case KindDigit:
		return "digit"
	case KindDecimalPoint:
		return "decimal_point"
	case KindBackspace:
		return "backspace"
	case KindToggleSign:
		return "toggle_sign"
	case KindPercent:
		return "percent"
	case KindOperator:
		return "operator"
	case KindEquals:
		return "equals"
	case KindClearAll:
		return "clear_all"
	default:
		return "none"
	}
}

// Key is one key event. Digit and operator keys carry a payload and can only
// be built with DigitKey and OperatorKey.
type Key struct {
	Kind  Kind
	digit uint8
	op    Operator
}

var (
	DecimalPointKey = Key{Kind: KindDecimalPoint}
	BackspaceKey    = Key{Kind: KindBackspace}
	ToggleSignKey   = Key{Kind: KindToggleSign}
	PercentKey      = Key{Kind: KindPercent}
	EqualsKey       = Key{Kind: KindEquals}
	ClearAllKey     = Key{Kind: KindClearAll}
)

// DigitKey returns the key for d. It panics when d is not a single digit.
func DigitKey(d int) Key {
	return Key{Kind: KindDigit, digit: uint8(mustDigit(d))}
}

// OperatorKey returns the key for op. It panics on OpNone.
func OperatorKey(op Operator) Key {
	if op == OpNone || op > OpModulo {
		panic("keypad: invalid operator: " + strconv.Itoa(int(op)))
	}
	return Key{Kind: KindOperator, op: op}
}

// Digit returns the digit of a KindDigit key.
func (k Key) Digit() int { return int(k.digit) }

// Operator returns the operator of a KindOperator key.
func (k Key) Operator() Operator { return k.op }

// String renders the key as its keypad label.
func (k Key) String() string {
	switch k.Kind {
	case KindDigit:
		return strconv.Itoa(int(k.digit))
	case KindDecimalPoint:
		return "."
	case KindBackspace:
		return "⌫"
	case KindToggleSign:
		return "+/-"
	case KindPercent:
		return "%"
	case KindOperator:
		return k.op.Symbol()
	case KindEquals:
		return "="
	case KindClearAll:
		return "AC"
	default:
		return ""
	}
}

// Capabilities is the set of key kinds a keypad accepts.
type Capabilities uint16

// Keys returns the capability set enabling exactly kinds.
func Keys(kinds ...Kind) Capabilities {
	var c Capabilities
	for _, k := range kinds {
		c |= 1 << k
	}
	return c
}

// Has reports whether kind is enabled.
func (c Capabilities) Has(kind Kind) bool {
	return kind != KindNone && c&(1<<kind) != 0
}

var (
	// CalculatorKeys is the full four-function keypad.
	CalculatorKeys = Keys(
		KindDigit, KindDecimalPoint, KindBackspace, KindToggleSign,
		KindPercent, KindOperator, KindEquals, KindClearAll,
	)

	// CurrencyKeys is the amount-entry keypad: operator, percent and
	// equals keys are shown disabled.
	CurrencyKeys = Keys(
		KindDigit, KindDecimalPoint, KindBackspace, KindToggleSign, KindClearAll,
	)
)
