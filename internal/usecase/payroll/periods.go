package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

// Biweekly windows are anchored to a fixed Monday so that every contract
// shares the same cycle boundaries.
var periodEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const periodLength = 14 * 24 * time.Hour

// CurrentWindow returns the biweekly window containing now.
func CurrentWindow(now time.Time) (start, end time.Time) {
	elapsed := now.UTC().Sub(periodEpoch)
	if elapsed < 0 {
		return periodEpoch, periodEpoch.Add(periodLength)
	}
	periods := elapsed / periodLength
	start = periodEpoch.Add(periods * periodLength)
	return start, start.Add(periodLength)
}

// GetCurrentPeriod aggregates the approved, unsettled entries of the window
// containing now into a preview of what ProcessPayment would pay. No period
// row is created.
func (uc *DefaultPayrollUsecase) GetCurrentPeriod(ctx context.Context, contractID string, now time.Time) (*domain.PaymentPeriod, error) {
	if contractID == "" {
		return nil, domain.Validationf("contract id is required")
	}

	start, end := CurrentWindow(now)
	entries, err := uc.payrollRepo.GetTimeEntries(contractID, []domain.TimeEntryStatus{domain.TimeEntryApproved}, start, end)
	if err != nil {
		return nil, err
	}

	period := &domain.PaymentPeriod{
		ContractID:  contractID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      domain.PeriodOpen,
	}
	for _, entry := range entries {
		if entry.PeriodID != "" {
			continue
		}
		period.TimeEntryIDs = append(period.TimeEntryIDs, entry.ID)
		period.TotalHours = period.TotalHours.Add(entry.Hours)
		period.TotalAmount = period.TotalAmount.Add(entry.Hours.Mul(entry.HourlyRate).Round(2))
		if period.TalentID == "" {
			period.TalentID = entry.TalentID
		}
	}
	if period.TotalAmount.Sign() > 0 {
		breakdown, err := fees.Compute(period.TotalAmount, uc.feeSchedule, false)
		if err != nil {
			return nil, err
		}
		period.FeeAmount = breakdown.PlatformFee.Add(breakdown.ProcessingFee)
		period.TaxAmount = breakdown.TaxWithholding
		period.NetAmount = breakdown.NetAmount
	} else {
		period.NetAmount = decimal.Zero
	}
	return period, nil
}

// GetPeriod returns a paid period with its settled time entries.
func (uc *DefaultPayrollUsecase) GetPeriod(ctx context.Context, periodID string) (*domain.PaymentPeriod, error) {
	return uc.payrollRepo.GetPeriodByID(periodID)
}
