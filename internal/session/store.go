package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

type entry[T any] struct {
	mu       sync.Mutex
	value    T
	lastSeen time.Time
}

// Store keeps one value per client session. Calls through With on the same
// session are serialised, so a keypad sees one key press at a time.
type Store[T any] struct {
	mu       sync.RWMutex
	sessions map[string]*entry[T]
	now      func() time.Time
	onEvict  func(T)
}

// NewStore returns an empty store. onEvict, when not nil, runs for every
// value removed by Delete or Sweep.
func NewStore[T any](onEvict func(T)) *Store[T] {
	return &Store[T]{
		sessions: make(map[string]*entry[T]),
		now:      time.Now,
		onEvict:  onEvict,
	}
}

// Create stores v under a new session id.
func (s *Store[T]) Create(v T) string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &entry[T]{value: v, lastSeen: s.now()}
	s.mu.Unlock()

	return id
}

// With runs fn on the value of session id while holding that session's lock.
func (s *Store[T]) With(id string, fn func(T) error) error {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastSeen = s.now()

	return fn(e.value)
}

// Delete removes session id.
func (s *Store[T]) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	s.evict(e)

	return nil
}

// Sweep removes sessions unused for longer than idle and returns how many
// were removed. Sessions busy in With are kept.
func (s *Store[T]) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	var expired []*entry[T]

	s.mu.Lock()
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		stale := e.lastSeen.Before(cutoff)
		e.mu.Unlock()

		if stale {
			delete(s.sessions, id)
			expired = append(expired, e)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		s.evict(e)
	}

	return len(expired)
}

// Len returns the number of live sessions.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *Store[T]) evict(e *entry[T]) {
	if s.onEvict == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s.onEvict(e.value)
}

// RunJanitor sweeps the store every interval until ctx is done.
func (s *Store[T]) RunJanitor(ctx context.Context, interval, idle time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				logger.Info("expired idle sessions",
					zap.Int("expired", n),
					zap.Int("remaining", s.Len()),
				)
			}
		}
	}
}

// Collector exposes the number of live sessions as a Prometheus gauge
// labelled with surface.
func (s *Store[T]) Collector(surface string) prometheus.Collector {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "keypad_sessions_active",
			Help:        "Number of live keypad sessions.",
			ConstLabels: prometheus.Labels{"surface": surface},
		},
		func() float64 { return float64(s.Len()) },
	)
}

// Register adds c to the default Prometheus registry. A collector that is
// already registered is not an error.
func Register(c prometheus.Collector) error {
	err := prometheus.Register(c)

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}

	return err
}
