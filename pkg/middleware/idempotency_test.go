package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func idempotentRequest(userID, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("Idempotency-Key", key)
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestIdempotencyReplaysForSameUser(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, "call-%d", calls)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest("user-1", "key-1"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest("user-1", "key-1"))

	if calls != 1 {
		t.Fatalf("expected one handler invocation, got %d", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != "call-1" {
		t.Fatalf("expected replayed first response, got %d %q", second.Code, second.Body.String())
	}
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, "call-%d", calls)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest("user-1", "shared-key"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest("user-2", "shared-key"))

	if calls != 2 {
		t.Fatalf("another user's key must not replay a cached response, got %d invocations", calls)
	}
	if second.Body.String() != "call-2" {
		t.Fatalf("expected a fresh response for the second user, got %q", second.Body.String())
	}
}
