package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/mappers"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

type DefaultLedgerRepository struct {
	db *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{db: db}
}

func (r *DefaultLedgerRepository) AppendTransaction(transaction *domain.Transaction) error {
	transactionModel := mappers.ToGORMTransaction(transaction)
	if err := r.db.Create(transactionModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultLedgerRepository) GetTransactionByID(txID string) (*domain.Transaction, error) {
	var transactionModel models.TransactionModel
	if err := r.db.First(&transactionModel, "id = ?", txID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("transaction", txID)
		}
		return nil, err
	}

	return mappers.ToDomainTransaction(&transactionModel), nil
}

func (r *DefaultLedgerRepository) GetTransactionByIdempotencyKey(key string) (*domain.Transaction, error) {
	var transactionModel models.TransactionModel
	if err := r.db.First(&transactionModel, "idempotency_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("transaction for key", key)
		}
		return nil, err
	}

	return mappers.ToDomainTransaction(&transactionModel), nil
}

func (r *DefaultLedgerRepository) GetEscrowTransactions(escrowID string, page, limit int) ([]*domain.Transaction, int64, error) {
	query := r.db.Model(&models.TransactionModel{}).Where("escrow_id = ?", escrowID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit

	var transactionModels []models.TransactionModel
	if err := query.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&transactionModels).Error; err != nil {
		return nil, 0, err
	}

	transactions := make([]*domain.Transaction, len(transactionModels))
	for i, transactionModel := range transactionModels {
		transactions[i] = mappers.ToDomainTransaction(&transactionModel)
	}

	return transactions, total, nil
}

func (r *DefaultLedgerRepository) FindPendingTransactions(olderThan time.Time) ([]*domain.Transaction, error) {
	var transactionModels []models.TransactionModel
	if err := r.db.Model(&models.TransactionModel{}).
		Where("status = ?", string(domain.TxPending)).
		Where("created_at < ?", olderThan).
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, len(transactionModels))
	for i, transactionModel := range transactionModels {
		transactions[i] = mappers.ToDomainTransaction(&transactionModel)
	}

	return transactions, nil
}

// FinalizeTransaction resolves a pending entry to completed or failed once
// the gateway outcome is observed. Completed entries are never touched.
func (r *DefaultLedgerRepository) FinalizeTransaction(txID string, status domain.TransactionStatus, gatewayTxID string) error {
	result := r.db.Model(&models.TransactionModel{}).
		Where("id = ? AND status = ?", txID, string(domain.TxPending)).
		Updates(map[string]interface{}{
			"status":        string(status),
			"gateway_tx_id": gatewayTxID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.InvalidStatef("transaction %s is not pending", txID)
	}
	return nil
}
