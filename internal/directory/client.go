package directory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"coursedeck/internal/domain"
	"coursedeck/internal/seed"
	"coursedeck/internal/session"
)

// ErrAuthRequired is returned by mutating operations when no session token
// is cached. Callers should log in first instead of burning a round trip.
var ErrAuthRequired = errors.New("directory: authentication required")

// APIError carries a non-2xx response from the catalog service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("directory: status %d: %s", e.Status, e.Message)
}

// Client is the consumer-side client for the course catalog service. It
// reads the bearer token from the injected session cache, so a login made
// through it is visible to subsequent calls.
type Client struct {
	baseURL    string
	sessions   session.Cache
	httpClient *http.Client
}

// New constructs a client for the catalog at baseURL.
func New(baseURL string, sessions session.Cache) *Client {
	if sessions == nil {
		sessions = session.NewMemoryCache()
	}
	return &Client{
		baseURL:    baseURL,
		sessions:   sessions,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// MigrationStatus reports whether the backing tables exist.
type MigrationStatus struct {
	Status       string         `json:"status"`
	Missing      []string       `json:"missing,omitempty"`
	Schema       map[string]any `json:"schema,omitempty"`
	Instructions string         `json:"instructions,omitempty"`
}

type coursesEnvelope struct {
	Courses []domain.Course `json:"courses"`
	Message string          `json:"message,omitempty"`
}

type courseEnvelope struct {
	Course domain.Course `json:"course"`
}

type authEnvelope struct {
	Token  string        `json:"token"`
	Member domain.Member `json:"member"`
}

// Login authenticates and stores the resulting session in the cache.
func (c *Client) Login(email, password string) (domain.Member, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authEnvelope
	if err := c.do(http.MethodPost, "/api/auth/login", nil, body, false, &resp); err != nil {
		return domain.Member{}, err
	}
	if err := c.sessions.Put(session.Session{Token: resp.Token, Member: resp.Member}); err != nil {
		return domain.Member{}, fmt.Errorf("cache session: %w", err)
	}
	return resp.Member, nil
}

// Logout ends the session on the service and clears the local cache. The
// cache is cleared even when the remote call fails.
func (c *Client) Logout() error {
	err := c.do(http.MethodPost, "/api/auth/logout", nil, nil, false, nil)
	if clearErr := c.sessions.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// List fetches courses, optionally filtered by owner. An owner filter
// requires a cached session.
func (c *Client) List(ownerID string) ([]domain.Course, string, error) {
	query := url.Values{}
	if ownerID != "" {
		if _, ok := c.token(); !ok {
			return nil, "", ErrAuthRequired
		}
		query.Set("owner_id", ownerID)
	}
	var resp coursesEnvelope
	if err := c.do(http.MethodGet, "/api/courses", query, nil, false, &resp); err != nil {
		return nil, "", err
	}
	return resp.Courses, resp.Message, nil
}

// Get fetches a single course by id.
func (c *Client) Get(id string) (domain.Course, error) {
	var resp courseEnvelope
	if err := c.do(http.MethodGet, "/api/courses/"+url.PathEscape(id), nil, nil, false, &resp); err != nil {
		return domain.Course{}, err
	}
	return resp.Course, nil
}

// Create creates a course owned by the logged-in member.
func (c *Client) Create(course domain.Course) (domain.Course, error) {
	var resp courseEnvelope
	if err := c.do(http.MethodPost, "/api/courses", nil, course, true, &resp); err != nil {
		return domain.Course{}, err
	}
	return resp.Course, nil
}

// Update modifies an owned course.
func (c *Client) Update(id string, course domain.Course) (domain.Course, error) {
	var resp courseEnvelope
	if err := c.do(http.MethodPut, "/api/courses/"+url.PathEscape(id), nil, course, true, &resp); err != nil {
		return domain.Course{}, err
	}
	return resp.Course, nil
}

// Delete removes an owned course.
func (c *Client) Delete(id string) error {
	return c.do(http.MethodDelete, "/api/courses/"+url.PathEscape(id), nil, nil, true, nil)
}

// Lessons fetches the lessons of a course, ordered.
func (c *Client) Lessons(courseID string) ([]domain.Lesson, error) {
	query := url.Values{}
	if courseID != "" {
		query.Set("course_id", courseID)
	}
	var resp struct {
		Lessons []domain.Lesson `json:"lessons"`
	}
	if err := c.do(http.MethodGet, "/api/lessons", query, nil, false, &resp); err != nil {
		return nil, err
	}
	return resp.Lessons, nil
}

// CheckMigration asks the service whether the backing tables exist.
func (c *Client) CheckMigration() (MigrationStatus, error) {
	var resp MigrationStatus
	if err := c.do(http.MethodPost, "/api/migrate", nil, nil, false, &resp); err != nil {
		return MigrationStatus{}, err
	}
	return resp, nil
}

// Seed asks the service to create count sample courses for the logged-in
// member. Count is clamped the same way the service clamps it.
func (c *Client) Seed(count int) (seed.Result, error) {
	query := url.Values{}
	query.Set("count", strconv.Itoa(seed.ClampCount(count)))
	var resp seed.Result
	if err := c.do(http.MethodPost, "/api/seed-courses", query, nil, true, &resp); err != nil {
		return seed.Result{}, err
	}
	return resp, nil
}

func (c *Client) token() (string, bool) {
	sess, ok, err := c.sessions.Get()
	if err != nil || !ok || sess.Token == "" {
		return "", false
	}
	return sess.Token, true
}

func (c *Client) do(method, path string, query url.Values, body any, requireAuth bool, out any) error {
	token, hasToken := c.token()
	if requireAuth && !hasToken {
		return ErrAuthRequired
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if hasToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
