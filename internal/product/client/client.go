// Package client implements the product capability over the product service REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/allisson/orders/internal/product/domain"
)

// Client calls the product service. It performs a single attempt per call;
// timeouts, retries and circuit breaking are applied by the resilience package.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a product service client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type stockResponse struct {
	Available bool `json:"available"`
}

// Lookup fetches a product by id. Returns domain.ErrProductNotFound on 404.
func (c *Client) Lookup(ctx context.Context, productID int64) (*domain.Product, error) {
	endpoint := fmt.Sprintf("%s/api/products/%d", c.baseURL, productID)

	var product domain.Product
	if err := c.get(ctx, endpoint, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// HasStock asks the product service whether quantity units are available.
func (c *Client) HasStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	query := url.Values{"quantity": []string{strconv.Itoa(quantity)}}
	endpoint := fmt.Sprintf("%s/api/products/%d/stock?%s", c.baseURL, productID, query.Encode())

	var response stockResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return false, err
	}
	return response.Available, nil
}

func (c *Client) get(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build product request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("product service request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("product service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode product service response: %w", err)
	}
	return nil
}
