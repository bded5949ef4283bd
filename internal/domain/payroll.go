package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PeriodStatus string

const (
	PeriodOpen       PeriodStatus = "open"
	PeriodProcessing PeriodStatus = "processing"
	PeriodPaid       PeriodStatus = "paid"
)

// PaymentPeriod is a biweekly batch of approved hourly work paid as one
// payout. Periods for one contract never overlap, and a period is paid at
// most once.
type PaymentPeriod struct {
	ID           string
	ContractID   string
	TalentID     string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	TimeEntryIDs []string
	TotalHours   decimal.Decimal
	TotalAmount  decimal.Decimal
	FeeAmount    decimal.Decimal
	TaxAmount    decimal.Decimal
	NetAmount    decimal.Decimal
	Status       PeriodStatus
	PayoutNonce  string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TimeEntryStatus string

const (
	TimeEntryPending  TimeEntryStatus = "pending"
	TimeEntryApproved TimeEntryStatus = "approved"
	TimeEntryRejected TimeEntryStatus = "rejected"
	TimeEntrySettled  TimeEntryStatus = "settled"
)

type TimeEntry struct {
	ID          string
	ContractID  string
	TalentID    string
	WorkDate    time.Time
	Hours       decimal.Decimal
	HourlyRate  decimal.Decimal
	Description string
	Status      TimeEntryStatus
	PeriodID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PayrollOperation is the atomic payout of one period: the period flips to
// paid, every included entry flips to settled, and the ledger entry is
// appended, all in one transaction with the gateway call inside.
type PayrollOperation struct {
	Period    *PaymentPeriod
	EntryIDs  []string
	Entry     *Transaction
	CreatedAt time.Time
}

type PayrollRepository interface {
	CreateTimeEntry(entry *TimeEntry) error
	GetTimeEntryByID(entryID string) (*TimeEntry, error)
	UpdateTimeEntryStatus(entryID string, status TimeEntryStatus) error
	GetTimeEntries(contractID string, statuses []TimeEntryStatus, from, to time.Time) ([]*TimeEntry, error)
	GetPeriodByID(periodID string) (*PaymentPeriod, error)
	FindOverlappingPeriod(contractID string, start, end time.Time) (*PaymentPeriod, error)
	ProcessPayrollOperation(op *PayrollOperation, gatewayFn func() error) error
}

type PayrollUsecase interface {
	LogTime(ctx context.Context, input *LogTimeInput, actor Actor) (*TimeEntry, error)
	ReviewTimeEntry(ctx context.Context, entryID string, approve bool, actor Actor) error
	GetCurrentPeriod(ctx context.Context, contractID string, now time.Time) (*PaymentPeriod, error)
	GetPeriod(ctx context.Context, periodID string) (*PaymentPeriod, error)
	ProcessPayment(ctx context.Context, input *ProcessPaymentInput, actor Actor) (*PaymentPeriod, error)
}

type LogTimeInput struct {
	ContractID  string
	WorkDate    time.Time
	Hours       decimal.Decimal
	HourlyRate  decimal.Decimal
	Description string
}

type ProcessPaymentInput struct {
	ContractID   string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	TimeEntryIDs []string
	// WithholdTax is set when the payee has declared a tax-reporting
	// status that requires withholding.
	WithholdTax bool
	Notes       string
}
