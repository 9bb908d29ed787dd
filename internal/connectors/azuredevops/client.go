package azuredevops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/orgsync/internal/core/domain"
	"github.com/custodia-labs/orgsync/internal/logger"
)

// Client issues authenticated JSON requests against Azure DevOps.
type Client struct {
	httpClient *http.Client
	authHeader string
	cfg        Config
	limiter    *rate.Limiter
}

// NewClient creates a client for the given personal access token.
// The Basic auth header is encoded once here; no request is issued.
func NewClient(token string, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		httpClient: cfg.HTTPClient,
		authHeader: BasicAuthHeader(token),
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// BasicAuthHeader returns the Authorization header value for a PAT:
// Basic auth with an empty user name.
func BasicAuthHeader(token string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+token))
}

// endpoint joins escaped path segments onto base.
func endpoint(base string, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(escaped, "/")
}

// getJSON issues a GET and decodes a successful JSON body into out.
func (c *Client) getJSON(ctx context.Context, operation string, timeout time.Duration, rawURL string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return wrapTransportError(err, operation)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &domain.ProviderError{Provider: domain.ProviderAzureDevOps, Kind: domain.KindAPI, Message: fmt.Sprintf("%s: %v", operation, err)}
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransportError(err, operation)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapTransportError(err, operation)
	}

	logger.Debug("azuredevops: GET %s -> %d", req.URL.Path, resp.StatusCode)

	// 203 is returned instead of 401 for some malformed tokens.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || resp.StatusCode == http.StatusNonAuthoritativeInfo || IsHTML(resp) {
		return ClassifyResponse(resp, body, operation)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ProviderError{
			Provider:   domain.ProviderAzureDevOps,
			Kind:       domain.KindAPI,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: invalid response body", operation),
			Details:    err.Error(),
		}
	}
	return nil
}
