// Package source fetches the product catalog from the remote catalog API.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clam-browse/internal/browse"
)

// NetworkError means the request never produced an HTTP response
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError means the API answered with a non-2xx status
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("catalog api returned %d: %s", e.StatusCode, e.Body)
}

// Fetcher is what the browsing session needs from a product source
type Fetcher interface {
	FetchProducts(ctx context.Context, searchQuery string) ([]browse.Product, error)
}

// Client talks to GET {baseURL}/api/products
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client with a 10s timeout unless httpClient is given
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type listEnvelope struct {
	Products []browse.Product `json:"products"`
}

// FetchProducts returns every product whose name matches searchQuery on the server side
func (c *Client) FetchProducts(ctx context.Context, searchQuery string) ([]browse.Product, error) {
	endpoint := c.baseURL + "/api/products"
	if searchQuery != "" {
		endpoint += "?" + url.Values{"q": {searchQuery}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build products request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	return decodeProducts(raw)
}

// decodeProducts accepts a bare JSON array or the catalog service's {"products": [...]} envelope
func decodeProducts(raw []byte) ([]browse.Product, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var products []browse.Product
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
		return products, nil
	}
	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return env.Products, nil
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer reports whether err is a non-2xx answer
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
