package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
)

// HTTPGatewayClient talks to the payment-processor facade over JSON/HTTP.
// Every mutating call carries an idempotency key so that retries after a
// timeout never duplicate a capture or payout.
type HTTPGatewayClient struct {
	Address string
	client  *http.Client
}

func NewHTTPGatewayClient(address string) (*HTTPGatewayClient, error) {
	if address == "" {
		return nil, fmt.Errorf("gateway address is empty")
	}
	return &HTTPGatewayClient{
		Address: address,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type captureRequest struct {
	Amount           string `json:"amount"`
	PaymentMethodRef string `json:"payment_method_ref"`
	IdempotencyKey   string `json:"idempotency_key"`
}

type payoutRequest struct {
	Amount          string `json:"amount"`
	PayeeAccountRef string `json:"payee_account_ref"`
	IdempotencyKey  string `json:"idempotency_key"`
}

type refundRequest struct {
	GatewayTxID string `json:"gateway_tx_id"`
	Amount      string `json:"amount"`
}

type txResponse struct {
	GatewayTxID string `json:"gateway_tx_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPGatewayClient) Capture(ctx context.Context, amount decimal.Decimal, paymentMethodRef, idempotencyKey string) (string, error) {
	return c.post(ctx, "/payments/capture", captureRequest{
		Amount:           amount.StringFixed(2),
		PaymentMethodRef: paymentMethodRef,
		IdempotencyKey:   idempotencyKey,
	})
}

func (c *HTTPGatewayClient) Payout(ctx context.Context, amount decimal.Decimal, payeeAccountRef, idempotencyKey string) (string, error) {
	return c.post(ctx, "/payments/payout", payoutRequest{
		Amount:          amount.StringFixed(2),
		PayeeAccountRef: payeeAccountRef,
		IdempotencyKey:  idempotencyKey,
	})
}

func (c *HTTPGatewayClient) Refund(ctx context.Context, gatewayTxID string, amount decimal.Decimal) (string, error) {
	return c.post(ctx, "/payments/refund", refundRequest{
		GatewayTxID: gatewayTxID,
		Amount:      amount.StringFixed(2),
	})
}

func (c *HTTPGatewayClient) post(ctx context.Context, path string, body any) (string, error) {
	requestBodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Address+path, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(req)
	if err != nil {
		return "", &domain.GatewayError{Msg: "gateway unreachable", Err: err}
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return "", &domain.GatewayError{Msg: "failed to read gateway response", Err: err}
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var tx txResponse
		if err := json.Unmarshal(responseBodyBytes, &tx); err != nil {
			return "", &domain.GatewayError{Msg: "malformed gateway response", Err: err}
		}
		return tx.GatewayTxID, nil
	}

	var errResp errorResponse
	if err := json.Unmarshal(responseBodyBytes, &errResp); err != nil {
		return "", &domain.GatewayError{Msg: fmt.Sprintf("gateway returned status %d", response.StatusCode)}
	}
	return "", &domain.GatewayError{Msg: errResp.Error}
}
