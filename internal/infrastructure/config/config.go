package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type GatewayConfig struct {
	ServerKey string
	Sandbox   bool
	Timeout   time.Duration
}

type StaffDirectoryConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type BankTransferConfig struct {
	BankName      string
	AccountName   string
	AccountNumber string
}

type LendingConfig struct {
	// AnnualInterestRate is a flat yearly rate in percent, e.g. "5" for 5%.
	AnnualInterestRate string
	Currency           string
	// ReminderSchedule is a cron expression for the payment reminder sweep.
	ReminderSchedule string
	// ReminderHorizon is how far ahead of the due date reminders fire.
	ReminderHorizon time.Duration
}

type Config struct {
	HTTPPort      int
	DB            DatabaseConfig
	Kafka         KafkaConfig
	SMTP          SMTPConfig
	Gateway       GatewayConfig
	StaffDir      StaffDirectoryConfig
	BankTransfer  BankTransferConfig
	Lending       LendingConfig
	MigrationsDir string
	ServiceName   string
}

func (c Config) Validate() {
	if c.DB.Password == "" {
		panic("DB_PASSWORD environment variable is required")
	}
}

func Load() Config {
	return Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8094),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "uhi"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "uhi_loans"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "loan-events"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@uhicoop.id"),
		},
		Gateway: GatewayConfig{
			ServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
			Sandbox:   getEnvBool("MIDTRANS_SANDBOX", true),
			Timeout:   getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),
		},
		StaffDir: StaffDirectoryConfig{
			BaseURL: getEnv("STAFF_DIRECTORY_URL", ""),
			APIKey:  getEnv("STAFF_DIRECTORY_API_KEY", ""),
			Timeout: getEnvDuration("STAFF_DIRECTORY_TIMEOUT", 5*time.Second),
		},
		BankTransfer: BankTransferConfig{
			BankName:      getEnv("BANK_TRANSFER_BANK", "Bank Mandiri"),
			AccountName:   getEnv("BANK_TRANSFER_ACCOUNT_NAME", "UHI Cooperative"),
			AccountNumber: getEnv("BANK_TRANSFER_ACCOUNT_NUMBER", ""),
		},
		Lending: LendingConfig{
			AnnualInterestRate: getEnv("LOAN_ANNUAL_INTEREST_RATE", "5"),
			Currency:           getEnv("LOAN_CURRENCY", "USD"),
			ReminderSchedule:   getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
			ReminderHorizon:    getEnvDuration("REMINDER_HORIZON", 72*time.Hour),
		},
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		ServiceName:   "loan-service",
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
