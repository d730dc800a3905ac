package membership

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyTokenToleratesMemberEnvelopes(t *testing.T) {
	shapes := []map[string]any{
		{"member": map[string]any{"id": "m1", "email": "a@example.com"}},
		{"user": map[string]any{"id": "m1", "email": "a@example.com"}},
		{"data": map[string]any{"member": map[string]any{"id": "m1", "email": "a@example.com"}}},
		{"id": "m1", "email": "a@example.com"},
		{"_id": "m1", "loginEmail": "a@example.com"},
	}
	for i, shape := range shapes {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/verify" {
				http.NotFound(w, r)
				return
			}
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(shape)
		}))
		c := NewClient(srv.URL, "key-1")
		member, err := c.VerifyToken("tok-1")
		srv.Close()
		if err != nil {
			t.Fatalf("shape %d: verify: %v", i, err)
		}
		if member.ID != "m1" || member.Email != "a@example.com" {
			t.Fatalf("shape %d: unexpected member %+v", i, member)
		}
	}
}

func TestVerifyTokenUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad token"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.VerifyToken("tok-bad")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "bad token" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestClientSendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "t"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	if _, err := c.Login("a@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if gotKey != "secret-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
}
