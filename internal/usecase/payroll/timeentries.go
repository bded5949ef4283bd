package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
)

const maxHoursPerEntry = 24

// LogTime records hourly work against a contract. Entries start pending and
// settle only through a paid period.
func (uc *DefaultPayrollUsecase) LogTime(ctx context.Context, input *domain.LogTimeInput, actor domain.Actor) (*domain.TimeEntry, error) {
	if actor.Role != domain.RoleTalent {
		return nil, domain.Unauthorizedf("only the talent may log time")
	}
	if input.ContractID == "" {
		return nil, domain.Validationf("contract id is required")
	}
	if input.Hours.Sign() <= 0 {
		return nil, domain.Validationf("hours must be positive, got %s", input.Hours)
	}
	if input.Hours.GreaterThan(decimal.NewFromInt(maxHoursPerEntry)) {
		return nil, domain.Validationf("a single entry cannot exceed %d hours", maxHoursPerEntry)
	}
	if input.HourlyRate.Sign() <= 0 {
		return nil, domain.Validationf("hourly rate must be positive, got %s", input.HourlyRate)
	}
	if input.WorkDate.IsZero() {
		return nil, domain.Validationf("work date is required")
	}

	now := time.Now()
	entry := &domain.TimeEntry{
		ID:          uuid.New().String(),
		ContractID:  input.ContractID,
		TalentID:    actor.ID,
		WorkDate:    input.WorkDate,
		Hours:       input.Hours,
		HourlyRate:  input.HourlyRate,
		Description: input.Description,
		Status:      domain.TimeEntryPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.payrollRepo.CreateTimeEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ReviewTimeEntry approves or rejects a pending entry. Settled and already
// reviewed entries are immutable.
func (uc *DefaultPayrollUsecase) ReviewTimeEntry(ctx context.Context, entryID string, approve bool, actor domain.Actor) error {
	if actor.Role != domain.RoleBusiness {
		return domain.Unauthorizedf("only the business may review time entries")
	}

	entry, err := uc.payrollRepo.GetTimeEntryByID(entryID)
	if err != nil {
		return err
	}
	if entry.Status != domain.TimeEntryPending {
		return domain.InvalidStatef("time entry is %s; only pending entries may be reviewed", entry.Status)
	}

	status := domain.TimeEntryApproved
	if !approve {
		status = domain.TimeEntryRejected
	}
	return uc.payrollRepo.UpdateTimeEntryStatus(entryID, status)
}
