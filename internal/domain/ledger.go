package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxFunding           TransactionType = "funding"
	TxMilestoneRelease  TransactionType = "milestone_release"
	TxBiweeklyPayment   TransactionType = "biweekly_payment"
	TxRefund            TransactionType = "refund"
	TxFee               TransactionType = "fee"
	TxDisputeSettlement TransactionType = "dispute_settlement"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
)

// Transaction is one immutable ledger entry. Amount is signed: positive for
// money entering escrow (funding), negative for money leaving it (releases,
// refunds, payouts). Completed entries are never edited; corrections are new
// compensating entries.
type Transaction struct {
	ID             string
	EscrowID       string
	ContractID     string
	MilestoneID    string
	PeriodID       string
	Type           TransactionType
	Amount         decimal.Decimal
	NetAmount      decimal.Decimal
	FeeAmount      decimal.Decimal
	TaxAmount      decimal.Decimal
	IdempotencyKey string
	GatewayTxID    string
	Status         TransactionStatus
	CreatedAt      time.Time
}

type LedgerRepository interface {
	AppendTransaction(tx *Transaction) error
	GetTransactionByID(txID string) (*Transaction, error)
	GetTransactionByIdempotencyKey(key string) (*Transaction, error)
	GetEscrowTransactions(escrowID string, page, limit int) ([]*Transaction, int64, error)
	FindPendingTransactions(olderThan time.Time) ([]*Transaction, error)
	FinalizeTransaction(txID string, status TransactionStatus, gatewayTxID string) error
}
