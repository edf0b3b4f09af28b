package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"smart-calculator/internal/handlers"
	"smart-calculator/internal/keypad"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/session"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Sessions holds one four-function keypad per client.
type Sessions = session.Store[*keypad.Keypad]

// NewSessions returns an empty calculator session store.
func NewSessions() *Sessions {
	return session.NewStore[*keypad.Keypad](nil)
}

// Handler serves the calculator surface.
type Handler struct {
	sessions *Sessions
}

func NewHandler(sessions *Sessions) *Handler {
	return &Handler{sessions: sessions}
}

// Create handles POST /calculator/sessions: mounts a fresh keypad.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	k := keypad.New(keypad.CalculatorKeys)
	id := h.sessions.Create(k)

	observability.LoggerWithTrace(r.Context()).Info("calculator session created",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(r.Context())),
	)

	handlers.WriteJSON(w, http.StatusCreated, SessionResponse{
		ID:    id,
		State: k.Snapshot(),
	})
}

// Get handles GET /calculator/sessions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var snap keypad.Snapshot
	err := h.sessions.With(id, func(k *keypad.Keypad) error {
		snap = k.Snapshot()
		return nil
	})
	if err != nil {
		h.sessionError(w, r, "get", err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, SessionResponse{ID: id, State: snap})
}

// Delete handles DELETE /calculator/sessions/{id}: the surface unmounts and
// its state is discarded.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.sessions.Delete(id); err != nil {
		h.sessionError(w, r, "delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Press handles POST /calculator/sessions/{id}/keys. Keys of one request are
// applied in order while the session is locked.
func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	// --- 1. Child span for the whole batch ---
	ctx, span := tracer.Start(ctx, "calculator.press",
		trace.WithAttributes(
			attribute.String("session.id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// --- 2. Decode and map keys ---
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	keys, err := req.Resolve(keypad.CalculatorKeymap)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("keypad.keys", len(keys)))

	// --- 3. Apply keys under the session lock ---
	resp := PressResponse{ID: id}
	err = h.sessions.With(id, func(k *keypad.Keypad) error {
		for _, key := range keys {
			before := k.State()

			snap, applied := k.Press(key)
			if !applied {
				resp.Ignored++
				continue
			}
			resp.Applied++

			attrs := metric.WithAttributes(attribute.String("kind", key.Kind.String()))
			keysCounter.Add(ctx, 1, attrs)

			if evaluates(before, key) {
				recordEvaluation(ctx, before.Operator, k.Value())
			}

			span.AddEvent("key.applied", trace.WithAttributes(
				attribute.String("key", key.String()),
				attribute.String("display", snap.Display),
			))
		}

		resp.State = k.Snapshot()
		return nil
	})
	if err != nil {
		h.sessionError(w, r.WithContext(ctx), "press", err)
		return
	}

	span.SetAttributes(attribute.String("keypad.display", resp.State.Display))
	span.SetStatus(codes.Ok, "")

	// --- 4. Structured log with trace correlation ---
	logger.Info("calculator keys applied",
		zap.String("session_id", id),
		zap.Int("applied", resp.Applied),
		zap.String("display", resp.State.Display),
		zap.String("indicator", resp.State.Indicator),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// evaluates reports whether pressing key on before runs a pending operation.
func evaluates(before keypad.State, key keypad.Key) bool {
	if !before.Pending() {
		return false
	}
	return key.Kind == keypad.KindEquals || key.Kind == keypad.KindOperator
}

func recordEvaluation(ctx context.Context, op keypad.Operator, result float64) {
	attrs := metric.WithAttributes(attribute.String("operation", op.String()))
	evalCounter.Add(ctx, 1, attrs)

	// Gauges cannot carry non-finite values; a division by zero is still
	// counted above.
	if !math.IsNaN(result) && !math.IsInf(result, 0) {
		resultGauge.Record(ctx, result, attrs)
	}
}

// sessionError maps a session store failure onto an HTTP error.
func (h *Handler) sessionError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)
	logger := observability.LoggerWithTrace(ctx)

	if errors.Is(err, session.ErrNotFound) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
		return
	}

	observability.RecordError(ctx, span, logger, errorCounter, opName, "internal error", err, http.StatusInternalServerError, w)
}
