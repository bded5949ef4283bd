package escrow

import (
	"errors"
	"log/slog"
	"time"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
)

func idempotencyKey(scopeID, operation, nonce string) string {
	return scopeID + ":" + operation + ":" + nonce
}

// timeGatewayCall runs a gateway call and records its duration.
func (uc *DefaultEscrowUsecase) timeGatewayCall(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	if uc.Metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		uc.Metrics.RecordGatewayCall(operation, outcome, time.Since(start).Seconds())
	}
	return err
}

// recordPendingOnAmbiguity appends a pending ledger entry when a gateway call
// timed out with an unknown outcome. The reconciliation monitor picks the
// entry up later; the ledger never shows completed until the gateway
// confirms.
func (uc *DefaultEscrowUsecase) recordPendingOnAmbiguity(entry *domain.Transaction, err error) {
	var gwErr *domain.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Err == nil {
		// Clean rejection: nothing dispatched, nothing to reconcile.
		return
	}

	// A repeated timeout already left a pending row under this key.
	if _, lookupErr := uc.ledgerRepo.GetTransactionByIdempotencyKey(entry.IdempotencyKey); lookupErr == nil {
		return
	}

	pending := *entry
	pending.Status = domain.TxPending
	pending.GatewayTxID = ""
	if appendErr := uc.ledgerRepo.AppendTransaction(&pending); appendErr != nil {
		slog.Error("failed to record pending transaction after gateway timeout",
			"idempotency_key", pending.IdempotencyKey, "error", appendErr.Error())
	}
}

func (uc *DefaultEscrowUsecase) publishEscrowEvent(account *domain.EscrowAccount, stage string) {
	if uc.publisher == nil {
		return
	}
	go func(event kafka.EscrowEvent) {
		if err := uc.publisher.PublishEscrow(event); err != nil {
			slog.Error("failed to publish kafka EscrowEvent", "stage", stage, "error", err.Error())
		}
	}(kafka.EscrowEvent{
		EscrowID:   account.ID,
		ContractID: account.ContractID,
		BusinessID: account.BusinessID,
		TalentID:   account.TalentID,
		Status:     string(account.Status),
		Amount:     account.TotalAmount.StringFixed(2),
	})
}
