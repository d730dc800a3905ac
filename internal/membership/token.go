package membership

import (
	"net/http"
	"strings"
)

// The membership platform has returned its access token in different places
// across versions. Resolution is an explicit ordered list of typed probes so
// the supported shapes stay visible in one place.
type tokenProbe struct {
	name string
	fn   func(map[string]any) (string, bool)
}

var tokenProbes = []tokenProbe{
	{"data.tokens.accessToken", func(raw map[string]any) (string, bool) { return stringAt(raw, "data", "tokens", "accessToken") }},
	{"data.token", func(raw map[string]any) (string, bool) { return stringAt(raw, "data", "token") }},
	{"token", func(raw map[string]any) (string, bool) { return stringAt(raw, "token") }},
	{"data.accessToken", func(raw map[string]any) (string, bool) { return stringAt(raw, "data", "accessToken") }},
	{"accessToken", func(raw map[string]any) (string, bool) { return stringAt(raw, "accessToken") }},
}

// ResolveToken locates a bearer token in an auth response of unknown shape.
// It returns ("", false) when no probe matches; callers must treat that as
// "unauthenticated", not as a failure.
func ResolveToken(raw map[string]any) (string, bool) {
	if raw == nil {
		return "", false
	}
	for _, probe := range tokenProbes {
		if token, ok := probe.fn(raw); ok {
			return token, true
		}
	}
	return "", false
}

// Platform endpoints that may hand back the current session token, probed in
// order by ResolveTokenWithFallback when the response itself carried none.
var sessionTokenPaths = []string{
	"/auth/token",
	"/auth/access-token",
	"/auth/session-token",
}

// ResolveTokenWithFallback runs the response probes, then asks the platform
// for the session token directly, and finally inspects the embedded member
// object. Like ResolveToken it reports not-found instead of failing.
func (c *Client) ResolveTokenWithFallback(raw map[string]any) (string, bool) {
	if token, ok := ResolveToken(raw); ok {
		return token, true
	}
	if token, ok := c.sessionToken(); ok {
		return token, true
	}
	return memberEmbeddedToken(raw)
}

func (c *Client) sessionToken() (string, bool) {
	for _, path := range sessionTokenPaths {
		var raw map[string]any
		if err := c.doJSON(http.MethodGet, path, "", nil, &raw); err != nil {
			continue
		}
		if token, ok := stringAt(raw, "token"); ok {
			return token, true
		}
		if token, ok := stringAt(raw, "accessToken"); ok {
			return token, true
		}
	}
	return "", false
}

func memberEmbeddedToken(raw map[string]any) (string, bool) {
	for _, path := range [][]string{{"member"}, {"user"}, {"data", "member"}} {
		nested, ok := dig(raw, path...)
		if !ok {
			continue
		}
		bag, ok := nested.(map[string]any)
		if !ok {
			continue
		}
		if token, ok := stringAt(bag, "token"); ok {
			return token, true
		}
		if token, ok := stringAt(bag, "accessToken"); ok {
			return token, true
		}
	}
	return "", false
}

// dig walks nested maps along keys.
func dig(raw map[string]any, keys ...string) (any, bool) {
	var current any = raw
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func stringAt(raw map[string]any, keys ...string) (string, bool) {
	v, ok := dig(raw, keys...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func stringField(bag map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := stringAt(bag, key); ok {
			return s, true
		}
	}
	return "", false
}
