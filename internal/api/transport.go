// internal/api/transport.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"

	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/common/metrics"
)

// retryMarker flags a request that has already been replayed once after a
// refresh. A request never triggers more than one refresh attempt.
const retryMarker = "X-Auth-Retried"

// TokenSource provides and updates the credentials attached to requests.
// Implementations must be safe for concurrent use.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	UpdateTokens(access, refresh string) error
}

// authTransport attaches the bearer token to every request and, on a 401,
// refreshes the access token at most once and replays the request. Concurrent
// 401s share a single refresh call.
type authTransport struct {
	base       http.RoundTripper
	tokens     TokenSource
	refreshURL string
	group      singleflight.Group
	logger     logger.Logger

	// onExpired is invoked once per failed refresh so the session controller
	// can force a logout.
	onExpired func()
}

func newAuthTransport(base http.RoundTripper, tokens TokenSource, refreshURL string, log logger.Logger) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		base:       base,
		tokens:     tokens,
		refreshURL: refreshURL,
		logger:     log,
	}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// The round tripper contract forbids mutating the caller's request, so
	// the bearer goes on a clone.
	attached := false
	if token := t.tokens.AccessToken(); token != "" && req.Header.Get("Authorization") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
		attached = true
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	// A 401 without a bearer attached is a credential failure, not an
	// expired token; it is passed through untouched.
	if resp.StatusCode != http.StatusUnauthorized || !attached || req.Header.Get(retryMarker) != "" {
		return resp, nil
	}

	// The original response is abandoned in favour of the replay.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	access, err := t.refreshShared(req.Context())
	if err != nil {
		t.logger.WithError(err).Warn("token refresh failed, session expired", nil)
		metrics.ForcedLogoutsTotal.Inc()
		if t.onExpired != nil {
			t.onExpired()
		}
		return nil, errs.NewSessionExpiredError(err.Error())
	}

	retry, err := cloneRequest(req)
	if err != nil {
		return nil, err
	}
	retry.Header.Set(retryMarker, "1")
	retry.Header.Set("Authorization", "Bearer "+access)
	return t.base.RoundTrip(retry)
}

// refreshShared collapses concurrent refresh attempts into one upstream call.
func (t *authTransport) refreshShared(ctx context.Context) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (interface{}, error) {
		return t.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (t *authTransport) refresh(ctx context.Context) (string, error) {
	refreshToken := t.tokens.RefreshToken()
	if refreshToken == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("no refresh token available")
	}

	payload, _ := json.Marshal(map[string]string{"refresh": refreshToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("refresh endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("decoding refresh response: %w", err)
	}
	if tokenResp.Access == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("refresh response missing access token")
	}

	if tokenResp.Refresh == "" {
		tokenResp.Refresh = refreshToken
	}
	if err := t.tokens.UpdateTokens(tokenResp.Access, tokenResp.Refresh); err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return "", err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	t.logger.Debug("access token refreshed", nil)
	return tokenResp.Access, nil
}

// cloneRequest rebuilds a request so its body can be sent again.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}
