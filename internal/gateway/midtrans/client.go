// Package midtrans adapts the regional bank-transfer processor to the
// gateway interface. The provider captures directly, so payments skip the
// requires_capture state.
package midtrans

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperr "gigpay/internal/errors"
)

type httpClient struct {
	baseURL   string
	serverKey string
	client    *http.Client
}

func newHTTPClient(baseURL, serverKey string) *httpClient {
	return &httpClient{
		baseURL:   baseURL,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// do performs an authenticated JSON request and decodes the response into
// out. API errors are normalized into the domain taxonomy here so the
// adapter methods stay thin.
func (c *httpClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization",
		"Basic "+base64.StdEncoding.EncodeToString([]byte(c.serverKey+":")))

	resp, err := c.client.Do(req)
	if err != nil {
		return apperr.ErrProviderUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.ErrProviderUnavailable.WithCause(err)
	}

	if resp.StatusCode >= 500 {
		return apperr.ErrProviderUnavailable.WithCause(
			fmt.Errorf("provider returned %d: %s", resp.StatusCode, data))
	}
	if resp.StatusCode >= 400 {
		return apperr.ErrProviderDeclined.WithCause(
			fmt.Errorf("provider returned %d: %s", resp.StatusCode, data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
