package drtv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const anonymousSSOPath = "/api/authorization/anonymous-sso?device=web_browser&lang=da&supportFallbackToken=true"

// tokenManager issues and caches the anonymous session token that
// authorizes search requests. The token is process-wide and re-issued
// synchronously once expired.
type tokenManager struct {
	httpClient *http.Client
	authURL    string

	mu     sync.Mutex
	value  string
	expiry time.Time
}

func newTokenManager(authURL string, httpClient *http.Client) *tokenManager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &tokenManager{httpClient: httpClient, authURL: strings.TrimRight(authURL, "/")}
}

type tokenResponse struct {
	Value          string `json:"value"`
	ExpirationDate string `json:"expirationDate"`
}

// bearer returns a valid token value, registering a new anonymous
// device session when the cached token is absent or expired.
func (m *tokenManager) bearer(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value != "" && time.Now().Before(m.expiry) {
		return m.value, nil
	}

	payload, err := json.Marshal(map[string]any{
		"deviceId": uuid.NewString(),
		"scopes":   []string{"Catalog"},
		"optout":   true,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.authURL+anonymousSSOPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamStatus, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrUpstreamStatus, resp.StatusCode)
	}

	// The endpoint issues two tokens; the first is the user profile
	// token, the second is the one accepted by the search API.
	var tokens []tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if len(tokens) < 2 {
		return "", fmt.Errorf("token endpoint returned %d tokens, want 2", len(tokens))
	}
	expiry, err := time.Parse(time.RFC3339, tokens[1].ExpirationDate)
	if err != nil {
		return "", fmt.Errorf("parse token expiry: %w", err)
	}

	m.value = tokens[1].Value
	m.expiry = expiry
	return m.value, nil
}
