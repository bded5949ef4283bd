package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

// ProcessPayment pays the referenced approved time entries as one biweekly
// payout. The period row, the settled entries, and the ledger entry commit
// atomically with the gateway call, so a repeat call against an already paid
// window fails instead of paying twice.
func (uc *DefaultPayrollUsecase) ProcessPayment(ctx context.Context, input *domain.ProcessPaymentInput, actor domain.Actor) (*domain.PaymentPeriod, error) {
	if actor.Role != domain.RoleBusiness && actor.Role != domain.RoleAdmin {
		return nil, domain.Unauthorizedf("only the business or an admin may process a payment period")
	}
	if input.ContractID == "" {
		return nil, domain.Validationf("contract id is required")
	}
	if len(input.TimeEntryIDs) == 0 {
		return nil, domain.Validationf("at least one time entry is required")
	}
	if !input.PeriodEnd.After(input.PeriodStart) {
		return nil, domain.Validationf("period end %s must be after period start %s", input.PeriodEnd, input.PeriodStart)
	}

	var period *domain.PaymentPeriod
	err := uc.locks.WithLock(lockKey(input.ContractID), func() error {
		existing, err := uc.payrollRepo.FindOverlappingPeriod(input.ContractID, input.PeriodStart, input.PeriodEnd)
		if err != nil && !domain.IsNotFound(err) {
			return err
		}
		if existing != nil {
			if existing.PeriodStart.Equal(input.PeriodStart) && existing.PeriodEnd.Equal(input.PeriodEnd) {
				return domain.InvalidStatef("period %s for contract %s is already %s",
					existing.ID, input.ContractID, existing.Status)
			}
			return domain.Validationf("period overlaps existing period %s (%s to %s)",
				existing.ID, existing.PeriodStart.Format(time.DateOnly), existing.PeriodEnd.Format(time.DateOnly))
		}

		var talentID string
		gross := decimal.Zero
		totalHours := decimal.Zero
		seen := make(map[string]bool, len(input.TimeEntryIDs))
		for _, entryID := range input.TimeEntryIDs {
			if seen[entryID] {
				return domain.Validationf("time entry %s is referenced twice", entryID)
			}
			seen[entryID] = true

			entry, err := uc.payrollRepo.GetTimeEntryByID(entryID)
			if err != nil {
				return err
			}
			if entry.ContractID != input.ContractID {
				return domain.Validationf("time entry %s belongs to contract %s", entryID, entry.ContractID)
			}
			if entry.Status != domain.TimeEntryApproved {
				return domain.Validationf("time entry %s is %s; only approved entries can be paid", entryID, entry.Status)
			}
			if entry.PeriodID != "" {
				return domain.Validationf("time entry %s is already attached to period %s", entryID, entry.PeriodID)
			}
			if entry.WorkDate.Before(input.PeriodStart) || !entry.WorkDate.Before(input.PeriodEnd) {
				return domain.Validationf("time entry %s dated %s falls outside the period window",
					entryID, entry.WorkDate.Format(time.DateOnly))
			}
			talentID = entry.TalentID
			totalHours = totalHours.Add(entry.Hours)
			gross = gross.Add(entry.Hours.Mul(entry.HourlyRate).Round(2))
		}

		breakdown, err := fees.Compute(gross, uc.feeSchedule, input.WithholdTax)
		if err != nil {
			return err
		}

		// The nonce is derived from the window, not minted per attempt, so a
		// retry after a gateway timeout reaches the processor under the same
		// idempotency key and cannot pay the period twice.
		nonce := payoutNonce(input.PeriodStart, input.PeriodEnd)

		now := time.Now()
		period = &domain.PaymentPeriod{
			ID:           uuid.New().String(),
			ContractID:   input.ContractID,
			TalentID:     talentID,
			PeriodStart:  input.PeriodStart,
			PeriodEnd:    input.PeriodEnd,
			TimeEntryIDs: input.TimeEntryIDs,
			TotalHours:   totalHours,
			TotalAmount:  gross,
			FeeAmount:    breakdown.PlatformFee.Add(breakdown.ProcessingFee),
			TaxAmount:    breakdown.TaxWithholding,
			NetAmount:    breakdown.NetAmount,
			Status:       domain.PeriodPaid,
			PayoutNonce:  nonce,
			Notes:        input.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		entry := &domain.Transaction{
			ID:             uuid.New().String(),
			ContractID:     input.ContractID,
			PeriodID:       period.ID,
			Type:           domain.TxBiweeklyPayment,
			Amount:         gross.Neg(),
			NetAmount:      breakdown.NetAmount,
			FeeAmount:      period.FeeAmount,
			TaxAmount:      breakdown.TaxWithholding,
			IdempotencyKey: input.ContractID + ":biweekly:" + nonce,
			Status:         domain.TxPending,
			CreatedAt:      now,
		}

		op := &domain.PayrollOperation{
			Period:    period,
			EntryIDs:  input.TimeEntryIDs,
			Entry:     entry,
			CreatedAt: now,
		}
		gatewayFn := func() error {
			gatewayTxID, err := uc.gateway.Payout(ctx, breakdown.NetAmount, talentID, entry.IdempotencyKey)
			if err != nil {
				return err
			}
			entry.GatewayTxID = gatewayTxID
			entry.Status = domain.TxCompleted
			return nil
		}

		if err := uc.payrollRepo.ProcessPayrollOperation(op, gatewayFn); err != nil {
			uc.recordPendingOnAmbiguity(entry, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordPeriodPaid(period.ContractID, period.TotalAmount.InexactFloat64(), period.FeeAmount.InexactFloat64())
	}
	go func(event kafka.PayoutEvent) {
		if uc.publisher == nil {
			return
		}
		if err := uc.publisher.PublishPayout(event); err != nil {
			slog.Error("failed to publish kafka PayoutEvent", "error", err.Error())
		}
	}(kafka.PayoutEvent{
		PeriodID:    period.ID,
		ContractID:  period.ContractID,
		TalentID:    period.TalentID,
		PeriodStart: period.PeriodStart.Format(time.DateOnly),
		PeriodEnd:   period.PeriodEnd.Format(time.DateOnly),
		TotalHours:  period.TotalHours.String(),
		NetAmount:   period.NetAmount.String(),
	})
	return period, nil
}

// recordPendingOnAmbiguity keeps a pending ledger row when a payout timed
// out with an unknown outcome, so reconciliation can settle it later. Clean
// gateway rejections leave nothing behind.
func (uc *DefaultPayrollUsecase) recordPendingOnAmbiguity(entry *domain.Transaction, err error) {
	var gatewayErr *domain.GatewayError
	if !errors.As(err, &gatewayErr) || gatewayErr.Err == nil {
		return
	}
	if _, lookupErr := uc.ledgerRepo.GetTransactionByIdempotencyKey(entry.IdempotencyKey); lookupErr == nil {
		return
	}
	pending := *entry
	pending.Status = domain.TxPending
	pending.GatewayTxID = ""
	if appendErr := uc.ledgerRepo.AppendTransaction(&pending); appendErr != nil {
		slog.Error("failed to record pending payout for reconciliation",
			"period_id", pending.PeriodID, "error", appendErr.Error())
	}
}

func payoutNonce(start, end time.Time) string {
	return start.UTC().Format("20060102") + end.UTC().Format("20060102")
}
