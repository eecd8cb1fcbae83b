package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the catalog service. ValidateBasketItems is named after
// its contract with the ledger: it reserves every satisfiable line as a
// side effect, it is not an idempotent read.
type Client interface {
	ValidateProduct(ctx context.Context, productID int64) (bool, error)
	ValidateBasketItems(ctx context.Context, lines []LineRequest) (ValidationResult, error)
	ReleaseReservation(ctx context.Context, lines []LineRequest) error
}

type HTTPClient struct {
	BaseURL string
	HC      *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		HC:      &http.Client{Timeout: timeout},
	}
}

type validateProductRequest struct {
	ProductID int64 `json:"product_id"`
}

type validateProductResponse struct {
	Exists bool `json:"exists"`
}

func (c *HTTPClient) ValidateProduct(ctx context.Context, productID int64) (bool, error) {
	var resp validateProductResponse
	err := c.post(ctx, "/rpc/validate-product", validateProductRequest{ProductID: productID}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (c *HTTPClient) ValidateBasketItems(ctx context.Context, lines []LineRequest) (ValidationResult, error) {
	var results []LineResult
	if err := c.post(ctx, "/rpc/validate-basket", lines, &results); err != nil {
		return nil, err
	}
	return NewValidationResult(results), nil
}

type releasedLine struct {
	ProductID int64 `json:"product_id"`
}

func (c *HTTPClient) ReleaseReservation(ctx context.Context, lines []LineRequest) error {
	var released []releasedLine
	return c.post(ctx, "/rpc/release-reservation", lines, &released)
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HC.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return nil
}
