package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPIgnoresForwardedHeaderFromUntrustedPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4123"
	req.Header.Set("X-Forwarded-For", "198.51.100.7")

	if got := ClientIP(req, nil); got != "203.0.113.9" {
		t.Fatalf("expected remote addr for untrusted peer, got %q", got)
	}
}

func TestClientIPUsesForwardedHeaderFromTrustedPeer(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"10.0.0.0/8"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:9000"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")

	if got := ClientIP(req, trusted); got != "198.51.100.7" {
		t.Fatalf("expected first untrusted hop, got %q", got)
	}
}

func TestNewTrustedProxiesRejectsInvalidEntry(t *testing.T) {
	if _, err := NewTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Fatal("expected error for invalid entry")
	}
}
