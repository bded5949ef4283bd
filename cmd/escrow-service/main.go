package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/talentbridge/escrow-service/internal/client/gateway"
	"github.com/talentbridge/escrow-service/internal/config"
	"github.com/talentbridge/escrow-service/internal/delivery/httpapi"
	"github.com/talentbridge/escrow-service/internal/domain"
	"github.com/talentbridge/escrow-service/internal/infrastructure/kafka"
	"github.com/talentbridge/escrow-service/internal/infrastructure/locker"
	"github.com/talentbridge/escrow-service/internal/infrastructure/metrics"
	"github.com/talentbridge/escrow-service/internal/infrastructure/migrate"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres"
	"github.com/talentbridge/escrow-service/internal/infrastructure/postgres/repository"
	disputeuc "github.com/talentbridge/escrow-service/internal/usecase/dispute"
	escrowuc "github.com/talentbridge/escrow-service/internal/usecase/escrow"
	milestoneuc "github.com/talentbridge/escrow-service/internal/usecase/milestone"
	payrolluc "github.com/talentbridge/escrow-service/internal/usecase/payroll"
	"github.com/talentbridge/escrow-service/internal/service/fees"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	setupLogger(cfg)

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.EscrowDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.EscrowDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init payment gateway client
	gatewayClient, err := gateway.NewHTTPGatewayClient(cfg.GatewayService.Address)
	if err != nil {
		log.Fatalf("failed to init gateway client: %v", err)
	}

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	publisher := kafka.NewKafkaPublisher(brokers, "escrow-events")

	// Init repositories
	escrowRepo := repository.NewDefaultEscrowRepository(db)
	milestoneRepo := repository.NewDefaultMilestoneRepository(db)
	ledgerRepo := repository.NewDefaultLedgerRepository(db)
	disputeRepo := repository.NewDefaultDisputeRepository(db)
	payrollRepo := repository.NewDefaultPayrollRepository(db)

	feeSchedule := fees.Schedule{
		PlatformPercent:    decimal.NewFromFloat(cfg.FeeSchedule.PlatformPercent),
		ProcessingPercent:  decimal.NewFromFloat(cfg.FeeSchedule.ProcessingPercent),
		ProcessingFixed:    decimal.NewFromFloat(cfg.FeeSchedule.ProcessingFixed),
		WithholdingPercent: decimal.NewFromFloat(cfg.FeeSchedule.WithholdingPercent),
	}
	locks := locker.NewKeyedLocker()
	escrowMetrics := metrics.NewEscrowMetrics()

	// Init usecases
	escrowUsecase := escrowuc.NewDefaultEscrowUsecase(escrowRepo, ledgerRepo, gatewayClient, feeSchedule, locks, publisher)
	escrowUsecase.Metrics = escrowMetrics
	milestoneUsecase := milestoneuc.NewDefaultMilestoneUsecase(escrowRepo, milestoneRepo, locks)
	disputeUsecase := disputeuc.NewDefaultDisputeUsecase(disputeRepo, escrowRepo, ledgerRepo, gatewayClient, feeSchedule, locks, publisher)
	disputeUsecase.Metrics = escrowMetrics
	payrollUsecase := payrolluc.NewDefaultPayrollUsecase(payrollRepo, ledgerRepo, gatewayClient, feeSchedule, locks, publisher)
	payrollUsecase.Metrics = escrowMetrics

	// Reconciliation monitor for gateway calls with unknown outcomes
	go watchPendingTransactions(ledgerRepo)

	// Biweekly close reminder job
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.PayrollCron.CloseSpec, func() {
		start, end := payrolluc.CurrentWindow(time.Now())
		slog.Info("biweekly close window check", "window_start", start.Format(time.DateOnly), "window_end", end.Format(time.DateOnly))
	}); err != nil {
		log.Fatalf("failed to schedule payroll close job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := httpapi.NewHandler(escrowUsecase, milestoneUsecase, disputeUsecase, payrollUsecase)
	router := httpapi.NewRouter(handler)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	slog.Info("escrow service listening", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("failed to serve http: %v", err)
	}
}

// watchPendingTransactions periodically surfaces ledger entries stuck in
// pending after an ambiguous gateway outcome. Resolution against the gateway
// happens out of band; this loop makes sure nothing goes unnoticed.
func watchPendingTransactions(ledgerRepo domain.LedgerRepository) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		stale, err := ledgerRepo.FindPendingTransactions(time.Now().Add(-10 * time.Minute))
		if err != nil {
			slog.Error("failed to scan pending transactions", "error", err.Error())
			continue
		}
		for _, tx := range stale {
			slog.Warn("transaction awaiting gateway reconciliation",
				"tx_id", tx.ID, "type", string(tx.Type),
				"idempotency_key", tx.IdempotencyKey, "age", time.Since(tx.CreatedAt).String())
		}
	}
}

func setupLogger(cfg *config.EscrowConfig) {
	var level slog.Level
	switch cfg.LogConfig.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.LogConfig.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
