package postgres

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/talentbridge/escrow-service/internal/config"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/models"
)

func MustInitDB(cfg *config.EscrowConfig) *gorm.DB {
	dsn := cfg.EscrowDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.EscrowAccountModel{},
		&models.MilestoneModel{},
		&models.DeliverableModel{},
		&models.TransactionModel{},
		&models.DisputeModel{},
		&models.PaymentPeriodModel{},
		&models.TimeEntryModel{},
	)

	return db
}
