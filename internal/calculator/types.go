package calculator

import (
	"errors"
	"fmt"

	"smart-calculator/internal/keypad"
)

// MaxKeysPerRequest bounds the "keys" batch of a single request.
const MaxKeysPerRequest = 256

var (
	ErrNoKey        = errors.New("no key provided")
	ErrAmbiguousKey = errors.New("provide exactly one of key, code or keys")
	ErrTooManyKeys  = fmt.Errorf("more than %d keys in one request", MaxKeysPerRequest)
)

// KeyRequest is the JSON body of POST .../keys. Exactly one field is set:
// a key name ("7", "Enter", "÷"), a DOM keyCode, or a batch of names.
type KeyRequest struct {
	Key  string   `json:"key,omitempty"`
	Code *int     `json:"code,omitempty"`
	Keys []string `json:"keys,omitempty"`
}

// Resolve maps the request onto keys using m.
func (r KeyRequest) Resolve(m keypad.Keymap) ([]keypad.Key, error) {
	set := 0
	if r.Key != "" {
		set++
	}
	if r.Code != nil {
		set++
	}
	if len(r.Keys) > 0 {
		set++
	}

	switch {
	case set == 0:
		return nil, ErrNoKey
	case set > 1:
		return nil, ErrAmbiguousKey
	}

	switch {
	case r.Code != nil:
		key, err := m.FromCode(*r.Code)
		if err != nil {
			return nil, err
		}
		return []keypad.Key{key}, nil

	case r.Key != "":
		key, err := m.Parse(r.Key)
		if err != nil {
			return nil, err
		}
		return []keypad.Key{key}, nil
	}

	if len(r.Keys) > MaxKeysPerRequest {
		return nil, ErrTooManyKeys
	}

	keys := make([]keypad.Key, 0, len(r.Keys))
	for _, name := range r.Keys {
		key, err := m.Parse(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// SessionResponse is the JSON response for session create and get.
type SessionResponse struct {
	ID    string          `json:"id"`
	State keypad.Snapshot `json:"state"`
}

// PressResponse is the JSON response for POST .../keys.
type PressResponse struct {
	ID      string          `json:"id"`
	State   keypad.Snapshot `json:"state"`
	Applied int             `json:"applied"`
	Ignored int             `json:"ignored"`
}
