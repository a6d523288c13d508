// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages. Every
// outbound call is single-attempt: failures surface immediately to the
// caller and are never retried.
package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmossmd/ed-copilot/pkg/types"
)

// NewClient builds the shared HTTP client with the uniform request timeout.
func NewClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// GetBytes issues a GET request and returns the response body. A non-2xx
// status is an error; the body is read fully so the connection can be
// reused.
func GetBytes(ctx context.Context, client *http.Client, rawURL, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL.Host)
	}
	return body, nil
}

// GetJSON issues a GET request and decodes the JSON response into v.
func GetJSON(ctx context.Context, client *http.Client, rawURL, userAgent string, v any) error {
	body, err := GetBytes(ctx, client, rawURL, userAgent)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
