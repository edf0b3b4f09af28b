package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// action is what a terminal key does beyond pressing a keypad key.
type action int

const (
	actionNone action = iota
	actionQuit
	actionSwap
	actionRefresh
)

// runeNames are terminal-only spellings that differ from keymap names.
var runeNames = map[rune]string{
	'n': "negate",
	'N': "negate",
	'_': "negate",
}

// translate maps a tcell key event onto a keypad keymap name or a client
// action. An empty name with actionNone means the event is not bound.
func translate(ev *tcell.EventKey) (string, action) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return "", actionQuit
	case tcell.KeyTab:
		return "", actionSwap
	case tcell.KeyCtrlR:
		return "", actionRefresh
	case tcell.KeyEnter:
		return "enter", actionNone
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace", actionNone
	case tcell.KeyDelete:
		return "delete", actionNone
	case tcell.KeyEscape:
		return "escape", actionNone
	case tcell.KeyRune:
	default:
		return "", actionNone
	}

	r := ev.Rune()
	switch r {
	case 'q', 'Q':
		return "", actionQuit
	}

	if name, ok := runeNames[r]; ok {
		return name, actionNone
	}
	return strings.ToLower(string(r)), actionNone
}
