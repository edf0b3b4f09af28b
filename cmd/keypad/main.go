// Command keypad runs the calculator or currency keypad in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"smart-calculator/internal/config"
	"smart-calculator/internal/currency"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/rates"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

func main() {
	var (
		mode    = flag.String("mode", "calculator", "keypad surface: calculator or currency")
		from    = flag.String("from", currency.DefaultFrom, "source currency (currency mode)")
		to      = flag.String("to", currency.DefaultTo, "target currency (currency mode)")
		logPath = flag.String("log", "", "write JSON logs to this file")
	)
	flag.Parse()

	if err := run(*mode, *from, *to, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "keypad: %v\n", err)
		os.Exit(1)
	}
}

func run(mode, from, to, logPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	// Logs never go to the terminal the keypad draws on.
	if logPath != "" {
		if err := observability.InitFileLogger(logPath); err != nil {
			return err
		}
		defer observability.SyncLogger()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	var a *app

	switch mode {
	case "calculator":
		a = newCalculatorApp(screen)

	case "currency":
		provider, err := rateProvider(ctx, cfg)
		if err != nil {
			return err
		}

		a, err = newCurrencyApp(ctx, screen, provider, from, to)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	defer a.close()

	observability.Logger.Info("keypad started", zap.String("mode", mode))

	a.run(ctx)

	return nil
}

func rateProvider(ctx context.Context, cfg config.Config) (rates.Provider, error) {
	if cfg.RatesFile == "" {
		return rates.NewHTTPProvider(cfg.RatesBaseURL,
			rates.WithTimeout(cfg.RatesTimeout),
			rates.WithCacheTTL(cfg.RatesCacheTTL),
		), nil
	}

	p, err := rates.NewFileProvider(cfg.RatesFile, rates.WithLogger(observability.Logger))
	if err != nil {
		return nil, err
	}

	go func() {
		if err := p.Watch(ctx); err != nil {
			observability.Logger.Error("rate file watcher stopped", zap.Error(err))
		}
	}()

	return p, nil
}
