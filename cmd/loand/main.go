package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uhicoop/loan-service/internal/application/dto"
	"github.com/uhicoop/loan-service/internal/application/usecase"
	"github.com/uhicoop/loan-service/internal/domain/service"
	"github.com/uhicoop/loan-service/internal/infrastructure/adapter"
	"github.com/uhicoop/loan-service/internal/infrastructure/config"
	"github.com/uhicoop/loan-service/internal/infrastructure/messaging"
	pgRepo "github.com/uhicoop/loan-service/internal/infrastructure/postgres"
	"github.com/uhicoop/loan-service/internal/infrastructure/scheduler"
	"github.com/uhicoop/loan-service/internal/presentation/rest"
	pkgkafka "github.com/uhicoop/loan-service/pkg/kafka"
	"github.com/uhicoop/loan-service/pkg/observability"
	pkgpostgres "github.com/uhicoop/loan-service/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()
	cfg.Validate()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Service: cfg.ServiceName,
		Level:   getEnv("LOG_LEVEL", "info"),
		Format:  getEnv("LOG_FORMAT", "json"),
	})

	logger.Info("starting loan-service", "http_port", cfg.HTTPPort)

	interestRate, err := decimal.NewFromString(cfg.Lending.AnnualInterestRate)
	if err != nil {
		logger.Error("invalid LOAN_ANNUAL_INTEREST_RATE", "value", cfg.Lending.AnnualInterestRate, "error", err)
		os.Exit(1)
	}

	// Metrics.
	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	if migErr := pkgpostgres.RunMigrations(dbCfg.DSN(), cfg.MigrationsDir); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Wire infrastructure adapters.
	repos := pgRepo.NewRepositories(pool)
	uow := pgRepo.NewUnitOfWork(pool)

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	defer kafkaProducer.Close()
	publisher := messaging.NewKafkaEventPublisher(kafkaProducer, logger)

	staffDir := adapter.NewHTTPStaffDirectory(adapter.StaffDirectoryConfig{
		BaseURL: cfg.StaffDir.BaseURL,
		APIKey:  cfg.StaffDir.APIKey,
		Timeout: cfg.StaffDir.Timeout,
	}, nil)
	dispatcher := adapter.NewSMTPNotifier(adapter.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)
	gateway := adapter.NewMidtransGateway(adapter.MidtransConfig{
		ServerKey: cfg.Gateway.ServerKey,
		Sandbox:   cfg.Gateway.Sandbox,
	})
	exporter := adapter.NewCSVStatementExporter()

	notifier := usecase.NewNotifier(staffDir, dispatcher, logger)
	pricing := service.DefaultPricingPolicy()
	bankTransfer := dto.BankTransferDetails{
		BankName:      cfg.BankTransfer.BankName,
		AccountName:   cfg.BankTransfer.AccountName,
		AccountNumber: cfg.BankTransfer.AccountNumber,
	}

	// Wire use cases.
	applyUC := usecase.NewApplyLoanUseCase(repos.Loans, staffDir, publisher, notifier, logger, interestRate, cfg.Lending.Currency)
	approveUC := usecase.NewApproveLoanUseCase(uow, publisher, notifier, logger)
	rejectUC := usecase.NewRejectLoanUseCase(uow, publisher, notifier, logger)
	activateUC := usecase.NewActivateLoanUseCase(uow, publisher, logger)
	cancelUC := usecase.NewCancelApplicationUseCase(uow, logger)
	generateUC := usecase.NewGenerateInvoiceUseCase(uow, staffDir, pricing, publisher, logger, bankTransfer)
	processUC := usecase.NewProcessPaymentUseCase(uow, publisher, notifier, logger)
	intentUC := usecase.NewCreateRepaymentIntentUseCase(repos.Loans, gateway, cfg.Gateway.Timeout)
	exportUC := usecase.NewExportLoanHistoryUseCase(repos.Loans, repos.Payments, exporter)
	getLoanUC := usecase.NewGetLoanUseCase(repos.Loans)
	listUC := usecase.NewListLoansUseCase(repos.Loans)
	statsUC := usecase.NewLoanStatsUseCase(repos.Loans)
	remindUC := usecase.NewRemindPaymentsUseCase(repos.Invoices, notifier, logger, cfg.Lending.ReminderHorizon)

	// Reminder sweep schedule.
	reminders := scheduler.NewReminderScheduler(remindUC, logger)
	if err := reminders.Start(cfg.Lending.ReminderSchedule); err != nil {
		logger.Error("failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}
	defer reminders.Stop()

	// HTTP server.
	mux := http.NewServeMux()
	loanHandler := rest.NewLoanHandler(
		applyUC, approveUC, rejectUC, activateUC, cancelUC,
		generateUC, processUC, intentUC, exportUC,
		getLoanUC, listUC, statsUC,
		logger,
	)
	loanHandler.RegisterRoutes(mux)
	healthHandler := rest.NewHealthHandler(logger, func(ctx context.Context) error {
		return pkgpostgres.HealthCheck(ctx, pool)
	})
	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("loan-service stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
