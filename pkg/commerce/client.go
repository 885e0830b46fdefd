package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned by GetProduct when the backend has no entry with
// the requested id.
var ErrNotFound = errors.New("catalog entry not found")

// Backend is the persistence adapter contract consumed by the dialogue
// controller. Implemented by Client against a WooCommerce-style REST API.
type Backend interface {
	CreateProduct(ctx context.Context, payload *ProductPayload) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, payload *ProductPayload) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// Client talks to a WooCommerce-style commerce REST API using consumer
// key/secret query authentication.
type Client struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	HTTPClient     *http.Client
}

var _ Backend = &Client{}

// NewClient creates a commerce client. baseURL points at the API root, e.g.
// "https://shop.example.com/wp-json/wc/v3".
func NewClient(baseURL, consumerKey, consumerSecret string) *Client {
	return &Client{
		BaseURL:        baseURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) endpoint(path string) string {
	u := c.BaseURL + path
	sep := "?"
	if parsed, err := url.Parse(u); err == nil && parsed.RawQuery != "" {
		sep = "&"
	}
	return u + sep + "consumer_key=" + url.QueryEscape(c.ConsumerKey) +
		"&consumer_secret=" + url.QueryEscape(c.ConsumerSecret)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf(
			"commerce backend error, got status %d with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	if out != nil {
		return json.Unmarshal(resBody, out)
	}
	return nil
}

// CreateProduct creates a new catalog entry from the merged payload.
func (c *Client) CreateProduct(ctx context.Context, payload *ProductPayload) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPost, "/products", payload, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct updates an existing catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload *ProductPayload) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/products/%d", id)
	if err := c.do(ctx, http.MethodPut, path, payload, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProduct fetches one catalog entry by id. Returns ErrNotFound when the
// backend has no such entry.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/products/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListCategories fetches the known categories used for name resolution
// during merge.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/products/categories?per_page=100", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
