package keypad

// Snapshot is what a render surface needs to draw a keypad display.
type Snapshot struct {
	Display   string   `json:"display"`
	Operand   *float64 `json:"operand,omitempty"`
	Operator  string   `json:"operator,omitempty"`
	Indicator string   `json:"indicator"`
	Fresh     bool     `json:"fresh"`
}

// Snapshot renders s for a render surface.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		Display: s.Entry,
		Fresh:   s.Fresh,
	}

	if s.HasOperand {
		operand := s.Operand
		snap.Operand = &operand
	}

	if s.Pending() {
		snap.Operator = s.Operator.Symbol()
		snap.Indicator = Numeral(s.Operand) + " " + snap.Operator
	}

	return snap
}

// Keypad is the mutable accumulator behind one keypad surface. It is not
// safe for concurrent use; each surface owns its own Keypad and routes key
// presses to it one at a time.
type Keypad struct {
	caps      Capabilities
	initial   State
	state     State
	observers []func(Snapshot)
}

// Option configures a Keypad.
type Option func(*Keypad)

// WithObserver registers fn to receive a snapshot after every applied key.
func WithObserver(fn func(Snapshot)) Option {
	return func(k *Keypad) {
		k.observers = append(k.observers, fn)
	}
}

// WithEntry mounts the keypad showing entry instead of "0". Entries that are
// not plain numerals are ignored.
func WithEntry(entry string) Option {
	return func(k *Keypad) {
		if isLiteral(entry) {
			k.initial.Entry = entry
		}
	}
}

// New returns a keypad accepting the key kinds in caps.
func New(caps Capabilities, opts ...Option) *Keypad {
	k := &Keypad{
		caps:    caps,
		initial: Initial(),
	}

	for _, opt := range opts {
		opt(k)
	}

	k.state = k.initial

	return k
}

// Capabilities returns the enabled key kinds.
func (k *Keypad) Capabilities() Capabilities {
	return k.caps
}

// Press applies key and notifies observers. A key whose kind is disabled is
// ignored and Press reports false.
func (k *Keypad) Press(key Key) (Snapshot, bool) {
	if !k.caps.Has(key.Kind) {
		return k.state.Snapshot(), false
	}

	k.state = k.state.Apply(key)
	snap := k.state.Snapshot()

	for _, fn := range k.observers {
		fn(snap)
	}

	return snap, true
}

// State returns a copy of the current state.
func (k *Keypad) State() State {
	return k.state
}

func (k *Keypad) Snapshot() Snapshot {
	return k.state.Snapshot()
}

// Value is the numeric value on the display.
func (k *Keypad) Value() float64 {
	return k.state.Value()
}

// Reset restores the state the keypad was mounted with.
func (k *Keypad) Reset() {
	k.state = k.initial
}
