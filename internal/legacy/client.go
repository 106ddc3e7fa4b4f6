package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	carsPath      = "/api/Car"
	locationsPath = "/api/RentalLocation"
	ordersPath    = "/api/RentalOrder"
)

// Client reads catalogue data from the previous backend.
type Client struct {
	base string
	hc   *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) Cars(ctx context.Context) ([]Record, error) {
	return c.list(ctx, carsPath)
}

func (c *Client) Locations(ctx context.Context) ([]Record, error) {
	return c.list(ctx, locationsPath)
}

func (c *Client) Orders(ctx context.Context) ([]Record, error) {
	return c.list(ctx, ordersPath)
}

func (c *Client) list(ctx context.Context, path string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: http %d", path, resp.StatusCode)
	}

	items, err := Unwrap(raw)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return records(items)
}

func records(items []json.RawMessage) ([]Record, error) {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		r, err := NewRecord(it)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
