package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentGateway wraps the third-party processor. Every call is a fallible
// network operation; retrying with the same idempotency key never duplicates
// a capture or payout.
type PaymentGateway interface {
	Capture(ctx context.Context, amount decimal.Decimal, paymentMethodRef, idempotencyKey string) (gatewayTxID string, err error)
	Payout(ctx context.Context, amount decimal.Decimal, payeeAccountRef, idempotencyKey string) (gatewayTxID string, err error)
	Refund(ctx context.Context, gatewayTxID string, amount decimal.Decimal) (refundTxID string, err error)
}
