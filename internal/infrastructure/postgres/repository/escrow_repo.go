package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/mappers"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

type DefaultEscrowRepository struct {
	db *gorm.DB
}

func NewDefaultEscrowRepository(db *gorm.DB) *DefaultEscrowRepository {
	return &DefaultEscrowRepository{db: db}
}

func (r *DefaultEscrowRepository) CreateEscrow(account *domain.EscrowAccount) error {
	escrowModel := mappers.ToGORMEscrow(account)
	if err := r.db.Create(escrowModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultEscrowRepository) GetEscrowByID(escrowID string) (*domain.EscrowAccount, error) {
	var escrowModel models.EscrowAccountModel
	if err := r.db.
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("milestone_models.position ASC")
		}).
		Preload("Milestones.Deliverables").
		First(&escrowModel, "id = ?", escrowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("escrow account", escrowID)
		}
		return nil, err
	}

	return mappers.ToDomainEscrow(&escrowModel), nil
}

func (r *DefaultEscrowRepository) GetEscrowByContractID(contractID string) (*domain.EscrowAccount, error) {
	var escrowModel models.EscrowAccountModel
	if err := r.db.
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("milestone_models.position ASC")
		}).
		Preload("Milestones.Deliverables").
		First(&escrowModel, "contract_id = ?", contractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("escrow account for contract", contractID)
		}
		return nil, err
	}

	return mappers.ToDomainEscrow(&escrowModel), nil
}

func (r *DefaultEscrowRepository) SetFundingNonce(escrowID, nonce string) error {
	return r.db.Model(&models.EscrowAccountModel{}).
		Where("id = ?", escrowID).
		Update("funding_nonce", nonce).Error
}

// ProcessEscrowOperation applies one escrow state change atomically: account
// balances and status, the touched milestone, and the ledger rows commit
// together or not at all. The gateway call runs inside the transaction so a
// processor rejection rolls every local write back.
func (r *DefaultEscrowRepository) ProcessEscrowOperation(op *domain.EscrowOperation, gatewayFn func() error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if gatewayFn != nil {
			if err := gatewayFn(); err != nil {
				return err
			}
		}

		// The closure filled in gateway tx ids and final entry statuses; the
		// writes below only commit together with its success.
		updates := map[string]interface{}{
			"status":          string(op.AccountStatus),
			"released_amount": op.ReleasedAmount,
			"pending_amount":  op.PendingAmount,
			"disputed_flag":   op.DisputedFlag,
			"updated_at":      time.Now(),
		}
		if op.FundingTxID != "" {
			updates["funding_tx_id"] = op.FundingTxID
		}
		if err := tx.Model(&models.EscrowAccountModel{}).
			Where("id = ?", op.EscrowID).
			Updates(updates).Error; err != nil {
			return err
		}

		if op.MilestoneID != "" {
			if err := tx.Model(&models.MilestoneModel{}).
				Where("id = ?", op.MilestoneID).
				Updates(map[string]interface{}{
					"status":     string(op.MilestoneStatus),
					"terminal":   op.Terminal,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		for _, entry := range op.Entries {
			if err := upsertTransaction(tx, entry); err != nil {
				return err
			}
		}

		return nil
	})
}

// upsertTransaction writes a ledger row for the entry's idempotency key. A
// pending row left behind by an earlier ambiguous gateway outcome is
// finalized in place; inserting a second row under the same key would trip
// the unique index and fail the whole retry.
func upsertTransaction(tx *gorm.DB, entry *domain.Transaction) error {
	var existing models.TransactionModel
	err := tx.Where("idempotency_key = ?", entry.IdempotencyKey).First(&existing).Error
	if err == nil {
		return tx.Model(&models.TransactionModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"status":        string(entry.Status),
				"gateway_tx_id": entry.GatewayTxID,
			}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(mappers.ToGORMTransaction(entry)).Error
}

func (r *DefaultEscrowRepository) CountOpenDisputes(escrowID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.DisputeModel{}).
		Where("escrow_id = ?", escrowID).
		Where("status <> ?", string(domain.DisputeResolved)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
