package observability

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestNewRequestIDReturnsUUID(t *testing.T) {
	id := NewRequestID()
	if id == "" {
		t.Fatal("expected non-empty request id")
	}

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected valid UUID, got %q: %v", id, err)
	}
}

func TestRequestIDFromHeader(t *testing.T) {
	const clientID = "5f2b8c4e-1d3a-4c6b-9e7f-0a1b2c3d4e5f"

	if got := RequestIDFromHeader(clientID); got != clientID {
		t.Fatalf("expected client id %q to be kept, got %q", clientID, got)
	}

	for _, in := range []string{"", "not-a-uuid", "12345"} {
		got := RequestIDFromHeader(in)
		if got == in {
			t.Fatalf("expected %q to be replaced", in)
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("expected generated UUID, got %q: %v", got, err)
		}
	}
}

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := "abc-123"

	ctx = ContextWithRequestID(ctx, want)
	got := RequestIDFromContext(ctx)

	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRequestIDFromContextWhenMissingOrWrongType(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		got := RequestIDFromContext(context.Background())
		if got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), RequestIDKey, 42)
		got := RequestIDFromContext(ctx)
		if got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})
}
