package main

import (
	"context"
	"fmt"

	"smart-calculator/internal/currency"
	"smart-calculator/internal/keypad"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/rates"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

var (
	styleDefault = tcell.StyleDefault
	styleDisplay = tcell.StyleDefault.Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// app drives one keypad surface on a tcell screen.
type app struct {
	screen tcell.Screen
	keymap keypad.Keymap

	// calculator mode
	pad  *keypad.Keypad
	snap keypad.Snapshot

	// currency mode
	conv *currency.Converter
	view currency.View
}

func newCalculatorApp(screen tcell.Screen) *app {
	a := &app{screen: screen, keymap: keypad.CalculatorKeymap}
	a.pad = keypad.New(keypad.CalculatorKeys, keypad.WithObserver(func(s keypad.Snapshot) {
		a.snap = s
	}))
	a.snap = a.pad.Snapshot()
	return a
}

// newCurrencyApp mounts a converter whose notifications feed the event loop.
// Lookups settle on their own goroutine, so they only post an interrupt and
// the loop reads the view itself.
func newCurrencyApp(ctx context.Context, screen tcell.Screen, provider rates.Provider, from, to string) (*app, error) {
	a := &app{screen: screen, keymap: keypad.CurrencyKeymap}

	conv, err := currency.New(ctx, provider,
		currency.WithPair(from, to),
		currency.WithObserver(func(currency.View) {
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
		}),
	)
	if err != nil {
		return nil, err
	}

	a.conv = conv
	a.view = conv.View()
	return a, nil
}

// close releases the converter, if any.
func (a *app) close() {
	if a.conv != nil {
		a.conv.Close()
	}
}

func (a *app) run(ctx context.Context) {
	for {
		a.draw()
		a.screen.Show()

		switch ev := a.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventInterrupt:
			if a.conv != nil {
				a.view = a.conv.View()
			}
		case *tcell.EventKey:
			if a.handleKey(ctx, ev) {
				return
			}
		}
	}
}

// handleKey reports whether the client should quit.
func (a *app) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	name, act := translate(ev)

	switch act {
	case actionQuit:
		return true
	case actionSwap:
		if a.conv != nil {
			if err := a.conv.Swap(ctx); err != nil {
				observability.Logger.Debug("swap rejected", zap.Error(err))
			}
			a.view = a.conv.View()
		}
		return false
	case actionRefresh:
		if a.conv != nil {
			if err := a.conv.Refresh(ctx); err != nil {
				observability.Logger.Debug("refresh rejected", zap.Error(err))
			}
			a.view = a.conv.View()
		}
		return false
	}

	if name == "" {
		return false
	}

	key, err := a.keymap.Parse(name)
	if err != nil {
		observability.Logger.Debug("unbound key", zap.String("name", name))
		return false
	}

	if a.conv != nil {
		a.view, _ = a.conv.Press(key)
		return false
	}

	a.pad.Press(key)
	return false
}

func (a *app) draw() {
	a.screen.Clear()

	w, _ := a.screen.Size()

	if a.conv != nil {
		a.drawCurrency(w)
		return
	}

	a.drawCalculator(w)
}

func (a *app) drawCalculator(w int) {
	drawRight(a.screen, w, 1, a.snap.Indicator, styleDim)
	drawRight(a.screen, w, 2, a.snap.Display, styleDisplay)
	drawText(a.screen, 1, 4, "0-9 . %  + - * / =  n: ±  esc: AC  backspace  q: quit", styleDim)
}

func (a *app) drawCurrency(w int) {
	v := a.view

	drawRight(a.screen, w, 1, v.Amount+" "+v.From, styleDisplay)

	switch {
	case v.Error != "":
		drawRight(a.screen, w, 2, v.Error, styleError)
	case v.Loading && v.Converted == "":
		drawRight(a.screen, w, 2, "loading rate...", styleDim)
	case v.Converted != "":
		drawRight(a.screen, w, 2, v.Converted+" "+v.To, styleDefault)
	}

	if v.Rate != nil {
		drawRight(a.screen, w, 3, fmt.Sprintf("1 %s = %g %s", v.From, *v.Rate, v.To), styleDim)
	}

	drawText(a.screen, 1, 5, "0-9 .  +/-: ±  esc: clear  tab: swap  ctrl+r: refresh  q: quit", styleDim)
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawRight right-aligns text one column from the edge, like a calculator
// display.
func drawRight(s tcell.Screen, w, y int, text string, style tcell.Style) {
	x := max(w-1-len([]rune(text)), 0)
	drawText(s, x, y, text, style)
}
