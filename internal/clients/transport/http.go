package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const snippetLimit = 8 << 10

// HTTPError reports a non-2xx answer. The decoded body, when it was JSON,
// is still returned next to it so callers can read application errors.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
	Snippet    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %s: %s: %s", e.URL, e.Status, e.Snippet)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > snippetLimit {
		s = s[:snippetLimit]
	}
	return s
}

func Get[r any](h *http.Client, ctx context.Context, url string, headers map[string]string) (r, error) {

	var response r

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response, err
	}

	for key, val := range headers {
		req.Header.Add(key, val)
	}

	return do[r](h, req)
}

func Post[b, r any](h *http.Client, ctx context.Context, url string, body b, headers map[string]string) (r, error) {

	var response r

	payload, err := json.Marshal(body)
	if err != nil {
		return response, fmt.Errorf("marshal %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return response, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, val := range headers {
		req.Header.Add(key, val)
	}

	return do[r](h, req)
}

func do[r any](h *http.Client, req *http.Request) (r, error) {

	var response r
	url := req.URL.String()

	resp, err := h.Do(req)
	if err != nil {
		return response, err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return response, err
	}

	decodeErr := json.Unmarshal(responseBytes, &response)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr != nil {
			var zero r
			response = zero
		}
		return response, &HTTPError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Snippet:    snippet(responseBytes),
		}
	}

	if decodeErr != nil {
		return response, fmt.Errorf("unmarshal %s: %w: %s", url, decodeErr, snippet(responseBytes))
	}

	return response, nil
}

func Download(h *http.Client, ctx context.Context, url string, headers map[string]string) (*http.Response, error) {

	var resp *http.Response

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resp, err
	}

	for key, val := range headers {
		req.Header.Add(key, val)
	}

	resp, err = h.Do(req)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, snippetLimit))
		_ = resp.Body.Close()
		return resp, fmt.Errorf("download failed: %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	return resp, nil
}
