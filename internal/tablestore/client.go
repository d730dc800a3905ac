package tablestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTableNotFound marks a 404-class response on a table-level operation,
// meaning the backing table was never provisioned. This code cannot create
// tables, only detect their absence.
var ErrTableNotFound = errors.New("table not found")

// ErrUnexpectedShape marks a list response that matched none of the known
// envelope shapes. Callers on the read path degrade to an empty list.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// Record is one row of an external data table after envelope flattening.
type Record struct {
	ID   string
	Data map[string]any
}

// Client calls the external data-table platform over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// APIError represents a data-table platform error response.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a data-table platform client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ListRecords fetches all records of a table, draining cursor pagination.
// Exact-match filters are passed through as query parameters.
func (c *Client) ListRecords(table string, filter map[string]string) ([]Record, error) {
	out := []Record{}
	cursor := ""
	for {
		q := url.Values{}
		for k, v := range filter {
			q.Set(k, v)
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		path := fmt.Sprintf("/tables/%s/records", url.PathEscape(table))
		if encoded := q.Encode(); encoded != "" {
			path += "?" + encoded
		}
		body, err := c.do(http.MethodGet, path, nil)
		if err != nil {
			return nil, mapTableError(err)
		}
		items, next, err := decodeListPage(body)
		if err != nil {
			return nil, err
		}
		for _, bag := range items {
			if rec, ok := recordFromBag(bag); ok {
				out = append(out, rec)
			}
		}
		if next == "" || next == cursor {
			return out, nil
		}
		cursor = next
	}
}

// GetRecord fetches a single record. A 404 means the record (or the table)
// does not exist; both report not-found.
func (c *Client) GetRecord(table, id string) (Record, bool, error) {
	path := fmt.Sprintf("/tables/%s/records/%s", url.PathEscape(table), url.PathEscape(id))
	body, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	rec, ok := decodeSingle(body)
	if !ok {
		// A record with no id anywhere is treated as not-found, never
		// returned with an empty identifier.
		return Record{}, false, nil
	}
	return rec, true, nil
}

// CreateRecord inserts a record wrapped in the platform's data envelope.
func (c *Client) CreateRecord(table string, fields map[string]any) (Record, error) {
	path := fmt.Sprintf("/tables/%s/records", url.PathEscape(table))
	body, err := c.do(http.MethodPost, path, map[string]any{"data": fields})
	if err != nil {
		return Record{}, mapTableError(err)
	}
	rec, ok := decodeSingle(body)
	if !ok {
		return Record{}, fmt.Errorf("create record: %w", ErrUnexpectedShape)
	}
	return rec, nil
}

// UpdateRecord patches a record's field bag.
func (c *Client) UpdateRecord(table, id string, fields map[string]any) (Record, error) {
	path := fmt.Sprintf("/tables/%s/records/%s", url.PathEscape(table), url.PathEscape(id))
	body, err := c.do(http.MethodPut, path, map[string]any{"data": fields})
	if err != nil {
		return Record{}, err
	}
	rec, ok := decodeSingle(body)
	if !ok {
		return Record{}, fmt.Errorf("update record: %w", ErrUnexpectedShape)
	}
	return rec, nil
}

// DeleteRecord removes a record. Deleting an already-missing record is not
// an error.
func (c *Client) DeleteRecord(table, id string) error {
	path := fmt.Sprintf("/tables/%s/records/%s", url.PathEscape(table), url.PathEscape(id))
	_, err := c.do(http.MethodDelete, path, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil
	}
	return err
}

// TableExists probes a table with a trivial single-record read.
func (c *Client) TableExists(table string) (bool, error) {
	path := fmt.Sprintf("/tables/%s/records?limit=1", url.PathEscape(table))
	_, err := c.do(http.MethodGet, path, nil)
	if err == nil {
		return true, nil
	}
	if errors.Is(mapTableError(err), ErrTableNotFound) {
		return false, nil
	}
	return false, err
}

func mapTableError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrTableNotFound, apiErr.Message)
	}
	return err
}

func (c *Client) do(method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.Unmarshal(data, &errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg, Code: strings.TrimSpace(errResp.Code)}
	}
	return data, nil
}

// decodeListPage tolerates the three observed list envelopes: a bare array,
// `{data: [...]}` and `{data: {records: [...], cursor: "..."}}`.
func decodeListPage(body []byte) ([]map[string]any, string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, "", nil
	}
	if trimmed[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return items, "", nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil || len(envelope.Data) == 0 {
		return nil, "", ErrUnexpectedShape
	}
	inner := bytes.TrimSpace(envelope.Data)
	if len(inner) > 0 && inner[0] == '[' {
		var items []map[string]any
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		return items, "", nil
	}
	var page struct {
		Records []map[string]any `json:"records"`
		Cursor  string           `json:"cursor"`
		Next    string           `json:"nextCursor"`
	}
	if err := json.Unmarshal(inner, &page); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if page.Records == nil {
		return nil, "", ErrUnexpectedShape
	}
	cursor := page.Cursor
	if cursor == "" {
		cursor = page.Next
	}
	return page.Records, cursor, nil
}

// decodeSingle tolerates `{data: {record: {...}}}`, `{data: {...}}` and a
// bare record object. The bare-record case is tried first so an outer-level
// id is never shadowed by the response envelope.
func decodeSingle(body []byte) (Record, bool) {
	var outer map[string]any
	if err := json.Unmarshal(body, &outer); err != nil {
		return Record{}, false
	}
	if rec, ok := recordFromBag(outer); ok {
		return rec, true
	}
	data, ok := outer["data"].(map[string]any)
	if !ok {
		return Record{}, false
	}
	if inner, ok := data["record"].(map[string]any); ok {
		return recordFromBag(inner)
	}
	return recordFromBag(data)
}
