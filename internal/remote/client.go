package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/trip-board/backend/internal/auth"
	"github.com/trip-board/backend/internal/storage/models"
)

// StatusError is returned when the trip API answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

// Client is a client for the trip API.
type Client struct {
	config     Config
	httpClient *http.Client

	tokenOnce sync.Once
	token     string
	tokenErr  error
}

// NewClient creates a new trip API client.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Points retrieves all waypoints in server order.
func (c *Client) Points(ctx context.Context) ([]Point, error) {
	var points []Point
	if err := c.do(ctx, http.MethodGet, "/points", nil, &points, http.StatusOK); err != nil {
		return nil, err
	}
	return points, nil
}

// Destinations retrieves the destinations table.
func (c *Client) Destinations(ctx context.Context) ([]models.Destination, error) {
	var destinations []models.Destination
	if err := c.do(ctx, http.MethodGet, "/destinations", nil, &destinations, http.StatusOK); err != nil {
		return nil, err
	}
	return destinations, nil
}

// Offers retrieves the offer catalog grouped by waypoint type.
func (c *Client) Offers(ctx context.Context) ([]models.OfferGroup, error) {
	var groups []models.OfferGroup
	if err := c.do(ctx, http.MethodGet, "/offers", nil, &groups, http.StatusOK); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreatePoint posts a new waypoint and returns it with the assigned id.
func (c *Client) CreatePoint(ctx context.Context, p Point) (Point, error) {
	p.ID = ""
	var created Point
	if err := c.do(ctx, http.MethodPost, "/points", p, &created, http.StatusOK, http.StatusCreated); err != nil {
		return Point{}, err
	}
	return created, nil
}

// UpdatePoint replaces a waypoint and returns the stored version.
func (c *Client) UpdatePoint(ctx context.Context, p Point) (Point, error) {
	var updated Point
	path := "/points/" + url.PathEscape(p.ID)
	if err := c.do(ctx, http.MethodPut, path, p, &updated, http.StatusOK); err != nil {
		return Point{}, err
	}
	return updated, nil
}

// DeletePoint removes a waypoint.
func (c *Client) DeletePoint(ctx context.Context, id string) error {
	path := "/points/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, http.StatusOK, http.StatusNoContent)
}

// do sends a request and decodes the response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any, accept ...int) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if !statusAccepted(resp.StatusCode, accept) {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusAccepted(status int, accept []int) bool {
	for _, s := range accept {
		if status == s {
			return true
		}
	}
	return false
}

// newRequest creates a new HTTP request with authentication.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.config.HasCredentials() {
		token, err := c.authToken()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// authToken returns the configured token, minting one from the secret once.
func (c *Client) authToken() (string, error) {
	if c.config.Token != "" {
		return c.config.Token, nil
	}
	c.tokenOnce.Do(func() {
		c.token, c.tokenErr = auth.IssueToken([]byte(c.config.Secret), "trip-board", 0)
	})
	if c.tokenErr != nil {
		return "", fmt.Errorf("issuing token: %w", c.tokenErr)
	}
	return c.token, nil
}
