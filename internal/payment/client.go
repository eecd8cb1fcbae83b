package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client initiates payment for a persisted order. The saga treats every
// failure the same way, so the client does not distinguish declines from
// transport errors.
type Client interface {
	CreatePayment(ctx context.Context, orderID, userID int64, amount int) (string, error)
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

type createPaymentRequest struct {
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
	Amount  int   `json:"amount"`
}

type createPaymentResponse struct {
	PaymentID string `json:"payment_id"`
}

func (c *HTTPClient) CreatePayment(ctx context.Context, orderID, userID int64, amount int) (string, error) {
	body, err := json.Marshal(createPaymentRequest{OrderID: orderID, UserID: userID, Amount: amount})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/rpc/create-payment", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HC.Do(req)
	if err != nil {
		return "", fmt.Errorf("create payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create payment: service returned %d", resp.StatusCode)
	}
	var out createPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("create payment: decode: %w", err)
	}
	if out.PaymentID == "" {
		return "", fmt.Errorf("create payment: empty payment id")
	}
	return out.PaymentID, nil
}
