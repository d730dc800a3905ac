package directory

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coursedeck/internal/domain"
	"coursedeck/internal/session"
)

func TestMutatingCallsFailFastWithoutSession(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryCache())
	if _, err := c.Create(domain.Course{Title: "X"}); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if err := c.Delete("c1"); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if _, _, err := c.List("m1"); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("owner filter without session should fail, got %v", err)
	}
	if called {
		t.Fatal("no request should have been sent")
	}
}

func TestLoginStoresSessionAndAuthorizesLaterCalls(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"token":  "tok-1",
				"member": map[string]string{"id": "m1", "email": "a@b.c"},
			})
		case "/api/courses":
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"course": map[string]any{"id": "c1", "title": "X"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cache := session.NewMemoryCache()
	c := New(srv.URL, cache)
	member, err := c.Login("a@b.c", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if member.ID != "m1" {
		t.Fatalf("unexpected member: %+v", member)
	}

	created, err := c.Create(domain.Course{Title: "X"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "c1" {
		t.Fatalf("unexpected course: %+v", created)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected cached token on request, got %q", gotAuth)
	}
}

func TestListUnauthenticatedWorks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]any{"courses": []map[string]any{{"id": "c1", "title": "A"}}})
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryCache())
	courses, msg, err := c.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(courses) != 1 || courses[0].ID != "c1" || msg != "" {
		t.Fatalf("unexpected: %+v %q", courses, msg)
	}
}

func TestAPIErrorCarriesServiceMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "course not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryCache())
	_, err := c.Get("missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "course not found" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogoutClearsCacheEvenOnRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cache := session.NewMemoryCache()
	cache.Put(session.Session{Token: "tok-1"})
	c := New(srv.URL, cache)
	if err := c.Logout(); err == nil {
		t.Fatal("expected remote error to surface")
	}
	if _, ok, _ := cache.Get(); ok {
		t.Fatal("cache should have been cleared")
	}
}

func TestCheckMigrationMissingTables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/migrate" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "missing_tables",
			"missing": []string{"courses"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryCache())
	status, err := c.CheckMigration()
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if status.Status != "missing_tables" || len(status.Missing) != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestSeedClampsCountBeforeSending(t *testing.T) {
	var gotCount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCount = r.URL.Query().Get("count")
		json.NewEncoder(w).Encode(map[string]any{"created": 200, "errors": 0})
	}))
	defer srv.Close()

	cache := session.NewMemoryCache()
	cache.Put(session.Session{Token: "tok-1"})
	c := New(srv.URL, cache)
	result, err := c.Seed(9999)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if gotCount != "200" {
		t.Fatalf("expected clamped count 200, sent %q", gotCount)
	}
	if result.Created != 200 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
