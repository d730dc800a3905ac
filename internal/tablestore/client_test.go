package tablestore

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListRecordsToleratesEnvelopes(t *testing.T) {
	record := map[string]any{"id": "c1", "data": map[string]any{"title": "X"}}
	shapes := []any{
		[]any{record},
		map[string]any{"data": []any{record}},
		map[string]any{"data": map[string]any{"records": []any{record}}},
	}
	for i, shape := range shapes {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(shape)
		}))
		c := NewClient(srv.URL, "")
		records, err := c.ListRecords("courses", nil)
		srv.Close()
		if err != nil {
			t.Fatalf("shape %d: list: %v", i, err)
		}
		if len(records) != 1 || records[0].ID != "c1" {
			t.Fatalf("shape %d: unexpected records %+v", i, records)
		}
	}
}

func TestListRecordsDrainsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
				"records": []any{map[string]any{"id": "c1"}},
				"cursor":  "page-2",
			}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"records": []any{map[string]any{"id": "c2"}},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	records, err := c.ListRecords("courses", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].ID != "c1" || records[1].ID != "c2" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestListRecordsDropsIdlessItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]any{
			map[string]any{"id": "c1"},
			map[string]any{"title": "no id"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	records, err := c.ListRecords("courses", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestListRecordsTableNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no such table"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.ListRecords("courses", nil); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}

func TestListRecordsUnexpectedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"surprise": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.ListRecords("courses", nil); !errors.Is(err, ErrUnexpectedShape) {
		t.Fatalf("expected ErrUnexpectedShape, got %v", err)
	}
}

func TestGetRecordSingleEnvelopes(t *testing.T) {
	shapes := []any{
		map[string]any{"id": "c1", "data": map[string]any{"title": "X"}},
		map[string]any{"data": map[string]any{"record": map[string]any{"id": "c1", "title": "X"}}},
		map[string]any{"data": map[string]any{"id": "c1", "title": "X"}},
	}
	for i, shape := range shapes {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(shape)
		}))
		c := NewClient(srv.URL, "")
		rec, found, err := c.GetRecord("courses", "c1")
		srv.Close()
		if err != nil || !found {
			t.Fatalf("shape %d: get: found=%v err=%v", i, found, err)
		}
		if rec.ID != "c1" {
			t.Fatalf("shape %d: unexpected record %+v", i, rec)
		}
	}
}

func TestGetRecordNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, found, err := c.GetRecord("courses", "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}

func TestCreateRecordSendsDataEnvelope(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "c1", "data": map[string]any{"title": "X"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	rec, err := c.CreateRecord("courses", map[string]any{"title": "X"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID != "c1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	data, ok := captured["data"].(map[string]any)
	if !ok || data["title"] != "X" {
		t.Fatalf("expected data envelope in request, got %+v", captured)
	}
}

func TestTableExists(t *testing.T) {
	exists := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	ok, err := c.TableExists("courses")
	if err != nil || !ok {
		t.Fatalf("expected table to exist: ok=%v err=%v", ok, err)
	}
	exists = false
	ok, err = c.TableExists("courses")
	if err != nil || ok {
		t.Fatalf("expected table to be absent: ok=%v err=%v", ok, err)
	}
}
