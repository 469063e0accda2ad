package allocator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"
)

// ErrNoResources is returned by Client.Allocate when the daemon has nothing free.
var ErrNoResources = errors.New("no resources available")

// Client talks to an allocation daemon.
type Client struct {
	rc *resty.Client
}

// NewClient creates a client for the daemon at baseURL, e.g. "http://localhost:8000".
func NewClient(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{rc: rc}
}

// Close releases the client's resources.
func (c *Client) Close() error {
	return c.rc.Close()
}

// Allocate asks for a resource for job.
func (c *Client) Allocate(ctx context.Context, job string) (string, error) {
	var out AllocateResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(JobRequest{Job: job}).
		SetResult(&out).
		Post("/allocate")
	if err != nil {
		return "", fmt.Errorf("allocate %s: %w", job, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return out.Resource, nil
	case http.StatusServiceUnavailable:
		return "", ErrNoResources
	default:
		return "", responseError("allocate", resp)
	}
}

// Release returns the resource held by job.
func (c *Client) Release(ctx context.Context, job string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(JobRequest{Job: job}).
		Post("/release")
	if err != nil {
		return fmt.Errorf("release %s: %w", job, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return responseError("release", resp)
	}
	return nil
}

// Status fetches the resource counts.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/status")
	if err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Status{}, responseError("status", resp)
	}
	return out, nil
}

func responseError(op string, resp *resty.Response) error {
	var e ErrorResponse
	if err := json.Unmarshal([]byte(resp.String()), &e); err == nil && e.Error != "" {
		return fmt.Errorf("%s: %s (HTTP %d)", op, e.Error, resp.StatusCode())
	}
	return fmt.Errorf("%s: unexpected HTTP %d", op, resp.StatusCode())
}
