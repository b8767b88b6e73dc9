// Package remote provides the storefront API client: product catalog, cart
// and auth calls over HTTP/JSON. Every failure, whether transport, non-2xx
// status or undecodable body, is reported as *Error. Calls are never retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/R3E-Network/tiny-trolley/internal/httputil"
	"github.com/R3E-Network/tiny-trolley/internal/logging"
	"github.com/R3E-Network/tiny-trolley/internal/metrics"
	"github.com/R3E-Network/tiny-trolley/internal/model"
)

// Operation names, used in errors, logs and metrics.
const (
	OpListProducts   = "list_products"
	OpGetProduct     = "get_product"
	OpListCart       = "list_cart"
	OpAddToCart      = "add_to_cart"
	OpRemoveFromCart = "remove_from_cart"
	OpSubmitAuth     = "submit_auth"
)

// DefaultTimeout applies when Config.Timeout and Config.HTTPClient are unset.
const DefaultTimeout = 30 * time.Second

// Client is a storefront REST API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logging.Logger
}

// Config holds client configuration.
type Config struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// New creates a new storefront API client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logging.NewDiscard("storefront-remote")
	}

	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(cfg.URL), "/"),
		httpClient: httpClient,
		log:        log,
	}, nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// Catalog
// =============================================================================

// ListProducts fetches the full catalog. A body that is not a JSON array is
// an error.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	resp, err := c.call(ctx, OpListProducts, http.MethodGet, "/products/", nil)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	if err := resp.decodeArray(&products); err != nil {
		return nil, &Error{Op: OpListProducts, Err: err}
	}
	return products, nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	resp, err := c.call(ctx, OpGetProduct, http.MethodGet, "/products/"+strconv.FormatInt(id, 10)+"/", nil)
	if err != nil {
		return model.Product{}, err
	}

	var product model.Product
	if err := resp.decodeObject(&product); err != nil {
		return model.Product{}, &Error{Op: OpGetProduct, Err: err}
	}
	return product, nil
}

// =============================================================================
// Cart
// =============================================================================

// ListCart fetches the cart lines. A line with a quantity below 1 makes
// the whole listing undecodable.
func (c *Client) ListCart(ctx context.Context) ([]model.CartLine, error) {
	resp, err := c.call(ctx, OpListCart, http.MethodGet, "/cart/", nil)
	if err != nil {
		return nil, err
	}

	var lines []model.CartLine
	if err := resp.decodeArray(&lines); err != nil {
		return nil, &Error{Op: OpListCart, Err: err}
	}
	for i, l := range lines {
		if l.Quantity < 1 {
			return nil, &Error{Op: OpListCart, Err: fmt.Errorf("cart line %d: quantity %d is not positive", i, l.Quantity)}
		}
	}
	return lines, nil
}

type addToCartRequest struct {
	Product  int64 `json:"product"`
	Quantity int   `json:"quantity"`
}

// AddToCart adds quantity units of a product. A quantity below 1 is sent
// as 1. The response body is ignored; callers re-list the cart.
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	_, err := c.call(ctx, OpAddToCart, http.MethodPost, "/cart/", addToCartRequest{
		Product:  productID,
		Quantity: quantity,
	})
	return err
}

// RemoveFromCart deletes a cart line.
func (c *Client) RemoveFromCart(ctx context.Context, lineID int64) error {
	_, err := c.call(ctx, OpRemoveFromCart, http.MethodDelete, "/cart/"+strconv.FormatInt(lineID, 10)+"/", nil)
	return err
}

// =============================================================================
// Auth
// =============================================================================

// SubmitAuth posts credentials to the login or signup endpoint and returns
// the decoded response.
func (c *Client) SubmitAuth(ctx context.Context, kind model.AuthKind, credentials model.Credentials) (model.AuthResult, error) {
	if _, err := model.ParseAuthKind(string(kind)); err != nil {
		return model.AuthResult{}, &Error{Op: OpSubmitAuth, Err: err}
	}
	if credentials == nil {
		credentials = model.Credentials{}
	}

	resp, err := c.call(ctx, OpSubmitAuth, http.MethodPost, "/auth/"+string(kind)+"/", credentials)
	if err != nil {
		return model.AuthResult{}, err
	}

	if !gjson.ValidBytes(resp.Body) {
		return model.AuthResult{}, &Error{Op: OpSubmitAuth, Err: fmt.Errorf("response is not valid JSON")}
	}
	result := model.AuthResult{Raw: json.RawMessage(bytes.TrimSpace(resp.Body))}
	if gjson.ParseBytes(resp.Body).IsObject() {
		if err := json.Unmarshal(resp.Body, &result.Fields); err != nil {
			return model.AuthResult{}, &Error{Op: OpSubmitAuth, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return result, nil
}

// =============================================================================
// Response Types
// =============================================================================

// Response is a raw API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// decodeArray unmarshals a body whose top-level value must be an array.
func (r *Response) decodeArray(v any) error {
	return r.decodeShape(gjson.Result.IsArray, "array", v)
}

// decodeObject unmarshals a body whose top-level value must be an object.
func (r *Response) decodeObject(v any) error {
	return r.decodeShape(gjson.Result.IsObject, "object", v)
}

func (r *Response) decodeShape(match func(gjson.Result) bool, want string, v any) error {
	if !gjson.ValidBytes(r.Body) {
		return fmt.Errorf("response is not valid JSON")
	}
	if parsed := gjson.ParseBytes(r.Body); !match(parsed) {
		return fmt.Errorf("expected JSON %s, got %s", want, describe(parsed))
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func describe(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.IsObject():
		return "object"
	default:
		return strings.ToLower(r.Type.String())
	}
}

// =============================================================================
// Internal Methods
// =============================================================================

func (c *Client) call(ctx context.Context, op, method, path string, body any) (*Response, error) {
	start := time.Now()
	resp, err := c.do(ctx, method, path, body)
	if err == nil {
		err = httputil.CheckStatus(resp.StatusCode, resp.Body)
	}
	metrics.RecordRemoteCall(op, time.Since(start), err)

	entry := c.log.WithContext(ctx).WithFields(logrus.Fields{
		"operation":   op,
		"method":      method,
		"path":        path,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Debug("storefront api call failed")
		return nil, &Error{Op: op, Err: err}
	}
	entry.WithField("status", resp.StatusCode).Debug("storefront api call succeeded")
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.setHeaders(ctx, req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := httputil.ReadAllStrict(resp.Body, httputil.MaxBodySize)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Headers:    resp.Header,
	}, nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if traceID := logging.GetTraceID(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
}
