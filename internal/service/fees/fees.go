package fees

import (
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/domain"
)

// Schedule carries the fee percentages applied to a gross payout. Both the
// milestone flow and the biweekly hourly flow share one schedule.
type Schedule struct {
	PlatformPercent    decimal.Decimal
	ProcessingPercent  decimal.Decimal
	ProcessingFixed    decimal.Decimal
	WithholdingPercent decimal.Decimal
}

// DefaultSchedule is 8% platform, 2.9% + $0.30 processing, no withholding.
func DefaultSchedule() Schedule {
	return Schedule{
		PlatformPercent:    decimal.NewFromFloat(0.08),
		ProcessingPercent:  decimal.NewFromFloat(0.029),
		ProcessingFixed:    decimal.NewFromFloat(0.30),
		WithholdingPercent: decimal.NewFromFloat(0.24),
	}
}

type Breakdown struct {
	GrossAmount    decimal.Decimal
	PlatformFee    decimal.Decimal
	ProcessingFee  decimal.Decimal
	TaxWithholding decimal.Decimal
	NetAmount      decimal.Decimal
}

func (b Breakdown) TotalFees() decimal.Decimal {
	return b.PlatformFee.Add(b.ProcessingFee).Add(b.TaxWithholding)
}

// Compute breaks a gross amount into fees and net payout. Withholding applies
// only when the payee declared a tax-reporting status requiring it. Fees
// exceeding gross fail the call; net is never negative.
func Compute(gross decimal.Decimal, schedule Schedule, withholdTax bool) (Breakdown, error) {
	if gross.Sign() <= 0 {
		return Breakdown{}, domain.Validationf("gross amount must be positive, got %s", gross)
	}

	platformFee := gross.Mul(schedule.PlatformPercent).Round(2)
	processingFee := gross.Mul(schedule.ProcessingPercent).Add(schedule.ProcessingFixed).Round(2)

	taxWithholding := decimal.Zero
	if withholdTax {
		taxWithholding = gross.Mul(schedule.WithholdingPercent).Round(2)
	}

	net := gross.Sub(platformFee).Sub(processingFee).Sub(taxWithholding)
	if net.Sign() < 0 {
		return Breakdown{}, &domain.FeeCalculationError{
			Msg: "fees exceed gross amount " + gross.StringFixed(2),
		}
	}

	return Breakdown{
		GrossAmount:    gross,
		PlatformFee:    platformFee,
		ProcessingFee:  processingFee,
		TaxWithholding: taxWithholding,
		NetAmount:      net,
	}, nil
}
