package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"genstudio/internal/clients/transport"
	"genstudio/types"
	"genstudio/utils"

	"github.com/charmbracelet/log"
)

const DefaultTimeout = 120 * time.Second

// Client talks to the generation API. Application level failures
// ({"status":"error"}) come back as responses, not errors; errors are
// reserved for transport problems.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout bounds every API call. Zero or negative keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     log.With("component", "studio-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

func (c *Client) GenerateImage(ctx context.Context, req types.GenerateImageRequest) (types.GenerationResponse, error) {
	return post[types.GenerateImageRequest, types.GenerationResponse](c, ctx, "/generate", req)
}

func (c *Client) GenerateVideo(ctx context.Context, req types.GenerateVideoRequest) (types.GenerationResponse, error) {
	return post[types.GenerateVideoRequest, types.GenerationResponse](c, ctx, "/generate_video", req)
}

func (c *Client) BatchGenerate(ctx context.Context, req types.BatchImageRequest) (types.BatchResponse, error) {
	return post[types.BatchImageRequest, types.BatchResponse](c, ctx, "/batch_generate", req)
}

func (c *Client) BatchGenerateVideo(ctx context.Context, req types.BatchVideoRequest) (types.BatchResponse, error) {
	return post[types.BatchVideoRequest, types.BatchResponse](c, ctx, "/batch_generate_video", req)
}

func (c *Client) History(ctx context.Context, page, perPage int) (types.HistoryResponse, error) {
	return get[types.HistoryResponse](c, ctx, "/history", page, perPage)
}

func (c *Client) VideoHistory(ctx context.Context, page, perPage int) (types.HistoryResponse, error) {
	return get[types.HistoryResponse](c, ctx, "/video_history", page, perPage)
}

func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return transport.Get[types.HealthResponse](c.httpClient, ctx, c.endpoint("/health"), nil)
}

// statusCarrier is implemented by every API response envelope.
type statusCarrier interface {
	types.GenerationResponse | types.BatchResponse | types.HistoryResponse
}

func post[b any, r statusCarrier](c *Client, ctx context.Context, path string, body b) (r, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := transport.Post[b, r](c.httpClient, ctx, c.endpoint(path), body, nil)
	c.logger.Debug("api call", "method", http.MethodPost, "path", path, "dur", time.Since(start).String(), "err", err)
	return unwrapApplicationError(resp, err)
}

func get[r statusCarrier](c *Client, ctx context.Context, path string, page, perPage int) (r, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	u := c.endpoint(path)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	start := time.Now()
	resp, err := transport.Get[r](c.httpClient, ctx, u, nil)
	c.logger.Debug("api call", "method", http.MethodGet, "path", path, "dur", time.Since(start).String(), "err", err)
	return unwrapApplicationError(resp, err)
}

// unwrapApplicationError turns a non-2xx answer that still carried a status
// envelope into a plain response.
func unwrapApplicationError[r statusCarrier](resp r, err error) (r, error) {
	if err == nil {
		return resp, nil
	}
	var httpErr *transport.HTTPError
	if errors.As(err, &httpErr) && statusOf(resp) != "" {
		return resp, nil
	}
	return resp, err
}

func statusOf(v any) string {
	switch t := v.(type) {
	case types.GenerationResponse:
		return t.Status
	case types.BatchResponse:
		return t.Status
	case types.HistoryResponse:
		return t.Status
	}
	return ""
}

// Download saves contentURL into dir and returns the written path. Relative
// URLs are resolved against the API base URL.
func (c *Client) Download(ctx context.Context, contentURL, dir, fallbackStem, fallbackExt string) (string, error) {
	contentURL = strings.TrimSpace(contentURL)
	if contentURL == "" {
		return "", errors.New("missing content url")
	}
	if !strings.HasPrefix(contentURL, "http://") && !strings.HasPrefix(contentURL, "https://") {
		contentURL = c.endpoint("/" + strings.TrimLeft(contentURL, "/"))
	}

	target, err := utils.SafeSubdir(dir, "")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("error creating download dir: %w", err)
	}

	resp, err := transport.Download(c.httpClient, ctx, contentURL, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	filename := utils.FileNameFromURL(contentURL)
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if fn := utils.FileNameFromCd(cd); fn != "" {
			filename = fn
		}
	}
	filename = utils.SanitizeFilename(filename, fallbackStem, fallbackExt)

	tmpPath := filepath.Join(target, filename+".part")
	finalPath := filepath.Join(target, filename)

	out, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}

	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()

	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return "", copyErr
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return "", closeErr
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return finalPath, nil
}
