package keypad

import (
	"math"
	"strconv"
	"strings"
)

// Operator is a pending binary operation.
type Operator uint8

const (
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
)

// String returns the operator name used in logs and metric attributes.
func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	case OpModulo:
		return "modulo"
	default:
		return "none"
	}
}

// Symbol returns the keypad label of the operator.
func (op Operator) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	case OpModulo:
		return "%"
	default:
		return ""
	}
}

// apply evaluates x op y. Division by zero is not an error: it yields
// ±Inf or NaN like any other float64 operation.
func (op Operator) apply(x, y float64) float64 {
	switch op {
	case OpAdd:
		return x + y
	case OpSubtract:
		return x - y
	case OpMultiply:
		return x * y
	case OpDivide:
		return x / y
	case OpModulo:
		return math.Mod(x, y)
	default:
		return y
	}
}

// State is the accumulator of one keypad. Every operation returns the next
// state and leaves the receiver untouched.
type State struct {
	// Entry is the operand being typed and the text on the main display.
	Entry string

	// Operand is the pending left operand, valid when HasOperand is set.
	Operand    float64
	HasOperand bool

	// Operator is the pending operator, OpNone when nothing is pending.
	Operator Operator

	// Fresh marks that the next digit or decimal point starts a new entry.
	Fresh bool
}

// Initial returns the state of a freshly mounted keypad.
func Initial() State {
	return State{Entry: "0"}
}

// Value is the numeric value of the entry.
func (s State) Value() float64 {
	return Parse(s.Entry)
}

// Pending reports whether an operator is waiting for its right operand.
func (s State) Pending() bool {
	return s.HasOperand && s.Operator != OpNone
}

// Digit types d, which must be in 0-9. An entry that is not a typed numeral,
// such as "Infinity" or "1e-8", is replaced rather than appended to.
func (s State) Digit(d int) State {
	digit := strconv.Itoa(mustDigit(d))

	switch {
	case s.Fresh, !isLiteral(s.Entry):
		s.Entry = digit
		s.Fresh = false
	case s.Entry == "0":
		s.Entry = digit
	default:
		s.Entry += digit
	}

	return s
}

// DecimalPoint starts the fractional part once. Like Digit it replaces an
// entry that is not a typed numeral, starting over at "0.".
func (s State) DecimalPoint() State {
	switch {
	case s.Fresh, !isLiteral(s.Entry):
		s.Entry = "0."
		s.Fresh = false
	case !strings.Contains(s.Entry, "."):
		s.Entry += "."
	}

	return s
}

// Backspace drops the last typed character. Nothing is erased while the
// display still shows a result that has not been typed over.
func (s State) Backspace() State {
	if s.Fresh {
		return s
	}

	entry := s.Entry[:max(len(s.Entry)-1, 0)]
	if entry == "" || entry == "-" || !isLiteral(s.Entry) {
		entry = "0"
	}
	s.Entry = entry

	return s
}

func (s State) ToggleSign() State {
	s.Entry = Numeral(-s.Value())
	return s
}

func (s State) Percent() State {
	s.Entry = Numeral(s.Value() / 100)
	return s
}

// PushOperator records op as the pending operator. When an operator is already
// pending the chain so far is evaluated first, so 2 + 3 × 4 is (2+3)×4.
func (s State) PushOperator(op Operator) State {
	x := s.Value()

	switch {
	case !s.HasOperand:
		s.Operand = x
		s.HasOperand = true
	case s.Operator != OpNone:
		result := Round(s.Operator.apply(s.Operand, x))
		s.Entry = Numeral(result)
		s.Operand = result
	}

	s.Operator = op
	s.Fresh = true

	return s
}

// Equals finalizes the pending operation. The result stays on the display
// until the next digit replaces it.
func (s State) Equals() State {
	if !s.Pending() {
		return s
	}

	result := Round(s.Operator.apply(s.Operand, s.Value()))

	return State{
		Entry: Numeral(result),
		Fresh: true,
	}
}

func (s State) ClearAll() State {
	return Initial()
}

// Apply dispatches k to the matching operation. The zero Key is a no-op.
func (s State) Apply(k Key) State {
	switch k.Kind {
	case KindDigit:
		return s.Digit(int(k.digit))
	case KindDecimalPoint:
		return s.DecimalPoint()
	case KindBackspace:
		return s.Backspace()
	case KindToggleSign:
		return s.ToggleSign()
	case KindPercent:
		return s.Percent()
	case KindOperator:
		return s.PushOperator(k.op)
	case KindEquals:
		return s.Equals()
	case KindClearAll:
		return s.ClearAll()
	default:
		return s
	}
}
