package membership

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coursedeck/internal/domain"
)

// Client calls the external membership platform over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// APIError represents a membership platform error response.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a membership platform client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Login authenticates a member. The platform's response shape is unstable
// across versions, so the raw decoded body is returned for token resolution.
func (c *Client) Login(email, password string) (map[string]any, error) {
	payload := map[string]string{"email": email, "password": password}
	var raw map[string]any
	if err := c.doJSON(http.MethodPost, "/auth/login", "", payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SignUp registers a member. Same raw-shape caveat as Login.
func (c *Client) SignUp(email, password, firstName, lastName string) (map[string]any, error) {
	payload := map[string]string{
		"email":     email,
		"password":  password,
		"firstName": firstName,
		"lastName":  lastName,
	}
	var raw map[string]any
	if err := c.doJSON(http.MethodPost, "/auth/signup", "", payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Logout invalidates the session on the platform side.
func (c *Client) Logout(token string) error {
	return c.doJSON(http.MethodPost, "/auth/logout", token, nil, nil)
}

// VerifyToken asks the platform to validate a bearer token and returns the
// member it belongs to.
func (c *Client) VerifyToken(token string) (domain.Member, error) {
	var raw map[string]any
	if err := c.doJSON(http.MethodPost, "/auth/verify", token, nil, &raw); err != nil {
		return domain.Member{}, err
	}
	member, ok := memberFromRaw(raw)
	if !ok {
		return domain.Member{}, &APIError{Status: http.StatusUnauthorized, Message: "token did not resolve to a member"}
	}
	return member, nil
}

// Me fetches the current member profile.
func (c *Client) Me(token string) (domain.Member, error) {
	var raw map[string]any
	if err := c.doJSON(http.MethodGet, "/auth/me", token, nil, &raw); err != nil {
		return domain.Member{}, err
	}
	member, ok := memberFromRaw(raw)
	if !ok {
		return domain.Member{}, &APIError{Status: http.StatusUnauthorized, Message: "profile response had no member"}
	}
	return member, nil
}

// memberFromRaw tolerates `{member:{...}}`, `{user:{...}}`, `{data:{member:{...}}}`
// and bare member objects.
func memberFromRaw(raw map[string]any) (domain.Member, bool) {
	bag := raw
	for _, path := range [][]string{{"member"}, {"user"}, {"data", "member"}, {"data", "user"}} {
		if nested, ok := dig(raw, path...); ok {
			if m, ok := nested.(map[string]any); ok {
				bag = m
				break
			}
		}
	}
	id, _ := stringField(bag, "id", "_id", "memberId")
	if id == "" {
		return domain.Member{}, false
	}
	email, _ := stringField(bag, "email", "loginEmail")
	first, _ := stringField(bag, "firstName", "first_name")
	last, _ := stringField(bag, "lastName", "last_name")
	return domain.Member{
		ID:        id,
		Email:     email,
		FirstName: first,
		LastName:  last,
	}, true
}

func (c *Client) doJSON(method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	url := c.baseURL + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Code: strings.TrimSpace(errResp.Code)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode membership response: %w", err)
	}
	return nil
}
