package currency

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/handlers"
	"smart-calculator/internal/keypad"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/rates"
	"smart-calculator/internal/session"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Sessions holds one converter per client. Evicted converters are closed.
type Sessions = session.Store[*Converter]

func NewSessions() *Sessions {
	return session.NewStore(func(c *Converter) { c.Close() })
}

// Handler serves the currency surface.
type Handler struct {
	sessions *Sessions
	provider rates.Provider
}

func NewHandler(sessions *Sessions, provider rates.Provider) *Handler {
	return &Handler{sessions: sessions, provider: provider}
}

// Create handles POST /currency/sessions. The body is optional.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	span := trace.SpanFromContext(ctx)

	var req PairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		observability.RecordError(ctx, span, logger, errorCounter, "create", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	opts := []Option{WithPair(orDefault(req.From, DefaultFrom), orDefault(req.To, DefaultTo))}
	c, err := New(ctx, h.provider, opts...)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	id := h.sessions.Create(c)
	v := c.View()

	logger.Info("currency session created",
		zap.String("session_id", id),
		zap.String("from", v.From),
		zap.String("to", v.To),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	h.respond(w, r, http.StatusCreated, id, c)
}

// Get handles GET /currency/sessions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.converter(id)
	if err != nil {
		h.sessionError(w, r, "get", err)
		return
	}

	h.respond(w, r, http.StatusOK, id, c)
}

// Press handles POST /currency/sessions/{id}/keys.
func (h *Handler) Press(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "currency.press",
		trace.WithAttributes(
			attribute.String("session.id", id),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	var req calculator.KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	keys, err := req.Resolve(keypad.CurrencyKeymap)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	resp := PressResponse{ID: id}
	err = h.sessions.With(id, func(c *Converter) error {
		for _, key := range keys {
			if _, applied := c.Press(key); !applied {
				resp.Ignored++
				continue
			}
			resp.Applied++
			keysCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", key.Kind.String())))
		}
		resp.View = c.View()
		return nil
	})
	if err != nil {
		h.sessionError(w, r.WithContext(ctx), "press", err)
		return
	}

	span.SetAttributes(
		attribute.String("currency.amount", resp.View.Amount),
		attribute.Int("keypad.ignored", resp.Ignored),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("currency keys applied",
		zap.String("session_id", id),
		zap.Int("applied", resp.Applied),
		zap.Int("ignored", resp.Ignored),
		zap.String("amount", resp.View.Amount),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// SetPair handles PUT /currency/sessions/{id}/pair.
func (h *Handler) SetPair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	span := trace.SpanFromContext(ctx)
	id := chi.URLParam(r, "id")

	var req PairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "set_pair", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	var conv *Converter
	err := h.sessions.With(id, func(c *Converter) error {
		conv = c
		return c.SetPair(ctx, req.From, req.To)
	})
	switch {
	case errors.Is(err, rates.ErrInvalidCode):
		observability.RecordError(ctx, span, logger, errorCounter, "set_pair", err.Error(), err, http.StatusBadRequest, w)
		return
	case err != nil:
		h.sessionError(w, r, "set_pair", err)
		return
	}

	h.respond(w, r, http.StatusOK, id, conv)
}

// Swap handles POST /currency/sessions/{id}/swap.
func (h *Handler) Swap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var conv *Converter
	err := h.sessions.With(id, func(c *Converter) error {
		conv = c
		return c.Swap(r.Context())
	})
	if err != nil {
		h.sessionError(w, r, "swap", err)
		return
	}

	h.respond(w, r, http.StatusOK, id, conv)
}

// Delete handles DELETE /currency/sessions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		h.sessionError(w, r, "delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Currencies handles GET /currency/currencies.
func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.provider.Currencies(ctx)
	if err != nil {
		observability.RecordError(ctx, trace.SpanFromContext(ctx), observability.LoggerWithTrace(ctx), errorCounter,
			"currencies", "failed to list currencies", err, http.StatusBadGateway, w)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, CurrenciesResponse{Currencies: list})
}

func (h *Handler) converter(id string) (*Converter, error) {
	var conv *Converter
	err := h.sessions.With(id, func(c *Converter) error {
		conv = c
		return nil
	})
	return conv, err
}

// respond writes the converter's view. With ?wait=true the pending rate
// lookup settles first, bounded by the request context.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, id string, c *Converter) {
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		if err := c.Wait(r.Context()); err != nil {
			ctx := r.Context()
			observability.RecordError(ctx, trace.SpanFromContext(ctx), observability.LoggerWithTrace(ctx), errorCounter,
				"wait", "rate lookup did not settle", err, http.StatusGatewayTimeout, w)
			return
		}
	}

	handlers.WriteJSON(w, status, SessionResponse{ID: id, View: c.View()})
}

func (h *Handler) sessionError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)
	logger := observability.LoggerWithTrace(ctx)

	switch {
	case errors.Is(err, session.ErrNotFound):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
	case errors.Is(err, ErrClosed):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session closed", err, http.StatusGone, w)
	default:
		observability.RecordError(ctx, span, logger, errorCounter, opName, "internal error", err, http.StatusInternalServerError, w)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
