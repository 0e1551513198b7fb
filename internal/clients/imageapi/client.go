// Package imageapi calls a hosted text-to-image HTTP API.
package imageapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"genstudio/internal/clients/transport"
	"genstudio/internal/generator"
	"genstudio/types"
)

type request struct {
	Prompt string `json:"prompt"`
}

type response struct {
	Status   string `json:"status"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

// Client implements generator.Images. Only the enhanced prompt is sent; the
// API picks resolution and format itself.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		url:        strings.TrimSpace(url),
		httpClient: httpClient,
		logger:     log.With("component", "imageapi"),
	}
}

func (c *Client) Name() string {
	return "imageapi"
}

func (c *Client) GenerateImage(ctx context.Context, job generator.ImageJob) (generator.Image, error) {
	if c.url == "" {
		return generator.Image{}, fmt.Errorf("%w: image api url is not configured", generator.ErrUnavailable)
	}

	c.logger.Info("sending request", "recordId", job.RecordID, "prompt", job.Prompt)

	start := time.Now()
	resp, err := transport.Post[request, response](c.httpClient, ctx, c.url, request{Prompt: job.Prompt}, nil)
	if err != nil {
		if isTimeout(ctx, err) {
			return generator.Image{}, fmt.Errorf("%w: %v", generator.ErrTimeout, err)
		}
		return generator.Image{}, fmt.Errorf("image api request failed: %w", err)
	}
	c.logger.Debug("api response", "recordId", job.RecordID, "status", resp.Status, "dur", time.Since(start).String())

	if resp.Status != types.StatusSuccess || resp.ImageURL == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown error occurred"
		}
		return generator.Image{}, &generator.RejectedError{Message: msg}
	}
	return generator.Image{URL: resp.ImageURL}, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
