package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/currency"
	"smart-calculator/internal/handlers"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/rates"
	"smart-calculator/internal/session"
)

// Deps are the collaborators shared by the keypad surfaces.
type Deps struct {
	Calculators *calculator.Sessions
	Converters  *currency.Sessions
	Rates       rates.Provider
}

func NewRouter(deps Deps) (http.Handler, error) {
	if err := session.Register(deps.Calculators.Collector("calculator")); err != nil {
		return nil, fmt.Errorf("registering calculator sessions gauge: %w", err)
	}
	if err := session.Register(deps.Converters.Collector("currency")); err != nil {
		return nil, fmt.Errorf("registering currency sessions gauge: %w", err)
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, calculator.NewHandler(deps.Calculators))
	currency.RegisterRoutes(r, currency.NewHandler(deps.Converters, deps.Rates))

	return r, nil
}
