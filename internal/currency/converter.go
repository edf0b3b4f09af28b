// Package currency implements the currency entry surface: a keypad limited to
// amount entry whose value is scaled by an exchange rate looked up
// asynchronously from a rates.Provider.
package currency

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"smart-calculator/internal/keypad"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/rates"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultFrom   = "USD"
	DefaultTo     = "BDT"
	DefaultAmount = "1"

	// ConvertedPlaces is the number of decimals shown for converted amounts.
	ConvertedPlaces = 4

	// FetchErrorMessage is shown in place of the converted amount when the
	// rate lookup fails.
	FetchErrorMessage = "Failed to fetch exchange rate. Please try again later."
)

var ErrClosed = errors.New("converter closed")

var tracer = otel.Tracer("currency")

// View is what a render surface needs to draw the currency keypad.
type View struct {
	Amount    string   `json:"amount"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Rate      *float64 `json:"rate,omitempty"`
	Converted string   `json:"converted"`
	Loading   bool     `json:"loading"`
	Error     string   `json:"error,omitempty"`
}

// Option configures a Converter.
type Option func(*options)

type options struct {
	from, to  string
	amount    string
	logger    *zap.Logger
	observers []func(View)
}

// WithPair selects the initial currency pair.
func WithPair(from, to string) Option {
	return func(o *options) {
		o.from, o.to = from, to
	}
}

// WithAmount mounts the keypad showing amount instead of "1".
func WithAmount(amount string) Option {
	return func(o *options) {
		o.amount = amount
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver registers fn to receive the view after every applied key and
// every settled rate lookup. fn may run on a lookup goroutine.
func WithObserver(fn func(View)) Option {
	return func(o *options) {
		o.observers = append(o.observers, fn)
	}
}

// Converter couples a currency keypad with the latest known rate for its
// pair. Key presses never wait on a lookup: the converted amount is
// recomputed from the entry and whatever rate is known at the time.
type Converter struct {
	provider  rates.Provider
	logger    *zap.Logger
	observers []func(View)

	padMu sync.Mutex
	pad   *keypad.Keypad

	mu      sync.Mutex
	from    string
	to      string
	rate    float64
	hasRate bool
	loading bool
	errMsg  string
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool

	lookups sync.WaitGroup
}

// New mounts a converter and starts the lookup for its initial pair. The
// lookup outlives ctx's cancellation but keeps its values, so trace context
// carries over.
func New(ctx context.Context, provider rates.Provider, opts ...Option) (*Converter, error) {
	o := options{
		from:   DefaultFrom,
		to:     DefaultTo,
		amount: DefaultAmount,
	}
	for _, opt := range opts {
		opt(&o)
	}

	from, err := rates.Normalize(o.from)
	if err != nil {
		return nil, err
	}
	to, err := rates.Normalize(o.to)
	if err != nil {
		return nil, err
	}

	if o.logger == nil {
		o.logger = observability.Logger
	}

	c := &Converter{
		provider:  provider,
		logger:    o.logger,
		observers: o.observers,
		pad:       keypad.New(keypad.CurrencyKeys, keypad.WithEntry(o.amount)),
		from:      from,
		to:        to,
	}

	c.mu.Lock()
	c.startLookup(ctx, true)
	c.mu.Unlock()

	return c, nil
}

// Press applies key to the amount keypad. Keys the currency keypad does not
// carry are ignored and Press reports false.
func (c *Converter) Press(key keypad.Key) (View, bool) {
	c.padMu.Lock()
	_, applied := c.pad.Press(key)
	c.padMu.Unlock()

	v := c.View()
	if applied {
		c.notify(v)
	}
	return v, applied
}

// SetPair switches the currency pair. Any in-flight lookup is cancelled and
// its result discarded; the previous rate is forgotten until the new lookup
// settles. Setting the current pair again is a no-op.
func (c *Converter) SetPair(ctx context.Context, from, to string) error {
	from, err := rates.Normalize(from)
	if err != nil {
		return err
	}
	to, err = rates.Normalize(to)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if from == c.from && to == c.to {
		c.mu.Unlock()
		return nil
	}
	c.from, c.to = from, to
	c.startLookup(ctx, true)
	c.mu.Unlock()

	c.notify(c.View())
	return nil
}

// Swap exchanges the source and target currencies.
func (c *Converter) Swap(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.from, c.to = c.to, c.from
	c.startLookup(ctx, true)
	c.mu.Unlock()

	c.notify(c.View())
	return nil
}

// Refresh looks the current pair up again. The known rate stays on display
// until the new one arrives.
func (c *Converter) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.startLookup(ctx, false)
	c.mu.Unlock()

	c.notify(c.View())
	return nil
}

// Wait blocks until the current lookup settles or ctx is done.
func (c *Converter) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any in-flight lookup and waits for every lookup goroutine,
// superseded ones included, to return. It must not be called from an
// observer.
func (c *Converter) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.gen++
		if c.cancel != nil {
			c.cancel()
		}
	}
	c.mu.Unlock()

	c.lookups.Wait()
}

// View renders the current amount, pair and conversion.
func (c *Converter) View() View {
	c.padMu.Lock()
	amount := c.pad.State().Entry
	value := c.pad.Value()
	c.padMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Amount:  amount,
		From:    c.from,
		To:      c.to,
		Loading: c.loading,
		Error:   c.errMsg,
	}

	if c.hasRate {
		rate := c.rate
		v.Rate = &rate
		v.Converted = Convert(value, rate)
	}

	return v
}

// Convert scales amount by rate and formats it with ConvertedPlaces
// decimals. Non-finite products are rendered as keypad numerals.
func Convert(amount, rate float64) string {
	product := amount * rate
	if math.IsNaN(product) || math.IsInf(product, 0) {
		return keypad.Numeral(product)
	}

	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		StringFixed(ConvertedPlaces)
}

// startLookup supersedes the current lookup. c.mu must be held.
func (c *Converter) startLookup(ctx context.Context, forget bool) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.gen++
	c.errMsg = ""
	if forget {
		c.rate, c.hasRate = 0, false
	}

	if c.from == c.to {
		c.rate, c.hasRate = 1, true
		c.loading = false
		c.done = nil
		return
	}

	lookupCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	c.loading = true
	c.cancel = cancel
	c.done = done

	gen, from, to := c.gen, c.from, c.to
	c.lookups.Go(func() {
		c.lookup(lookupCtx, cancel, done, gen, from, to)
	})
}

func (c *Converter) lookup(ctx context.Context, cancel context.CancelFunc, done chan struct{}, gen uint64, from, to string) {
	defer close(done)
	defer cancel()

	ctx, span := tracer.Start(ctx, "currency.rate_lookup",
		trace.WithAttributes(
			attribute.String("currency.from", from),
			attribute.String("currency.to", to),
		),
	)
	defer span.End()

	start := time.Now()
	rate, err := c.provider.Rate(ctx, from, to)
	recordLookup(ctx, from, to, time.Since(start), err)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		span.AddEvent("discarded", trace.WithAttributes(attribute.Bool("superseded", true)))
		return
	}

	c.loading = false
	if err != nil {
		c.errMsg = FetchErrorMessage
	} else {
		c.rate, c.hasRate = rate, true
	}
	c.mu.Unlock()

	logger := c.logger.With(
		zap.String("from", from),
		zap.String("to", to),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate lookup failed")
		logger.Warn("rate lookup failed", zap.Error(err))
	} else {
		span.SetAttributes(attribute.Float64("currency.rate", rate))
		span.SetStatus(codes.Ok, "")
		logger.Debug("rate lookup settled", zap.Float64("rate", rate))
	}

	c.notify(c.View())
}

func (c *Converter) notify(v View) {
	for _, fn := range c.observers {
		fn(v)
	}
}
