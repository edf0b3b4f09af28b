package rates

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTable(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing rate table: %v", err)
	}
}

func TestFileProviderCrossRates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	writeTable(t, path, `{"base_code":"USD","rates":{"EUR":0.5,"BDT":110}}`)

	p, err := NewFileProvider(path)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}

	ctx := context.Background()
	tests := []struct {
		from, to string
		want     float64
	}{
		{from: "USD", to: "EUR", want: 0.5},
		{from: "EUR", to: "USD", want: 2},
		{from: "EUR", to: "BDT", want: 220},
		{from: "bdt", to: "bdt", want: 1},
	}

	for _, tc := range tests {
		got, err := p.Rate(ctx, tc.from, tc.to)
		if err != nil {
			t.Fatalf("Rate %s->%s: %v", tc.from, tc.to, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Rate %s->%s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}

	if _, err := p.Rate(ctx, "USD", "GBP"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}

	codes, _ := p.Currencies(ctx)
	if len(codes) != 3 || codes[0] != "BDT" || codes[2] != "USD" {
		t.Fatalf("unexpected currencies %v", codes)
	}
}

func TestNewFileProviderRejectsBadTables(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewFileProvider(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	writeTable(t, bad, `{"base_code":"USD","rates":{}}`)
	if _, err := NewFileProvider(bad); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream for empty table, got %v", err)
	}
}

func TestFileProviderReloadKeepsPreviousTableOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	writeTable(t, path, `{"base_code":"USD","rates":{"EUR":0.5}}`)

	p, err := NewFileProvider(path)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}

	writeTable(t, path, `not json`)
	if err := p.Reload(); err == nil {
		t.Fatal("expected reload error")
	}

	got, err := p.Rate(context.Background(), "USD", "EUR")
	if err != nil || got != 0.5 {
		t.Fatalf("expected previous rate 0.5, got %v (%v)", got, err)
	}
}

func TestFileProviderWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	writeTable(t, path, `{"base_code":"USD","rates":{"EUR":0.5}}`)

	p, err := NewFileProvider(path, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register before changing the file.
	time.Sleep(100 * time.Millisecond)
	writeTable(t, path, `{"base_code":"USD","rates":{"EUR":0.8}}`)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if got, _ := p.Rate(ctx, "USD", "EUR"); got == 0.8 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}

	t.Fatal("expected rate table to be reloaded after write")
}
