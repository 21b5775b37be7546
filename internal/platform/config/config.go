package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "kycgate/pkg/platform/strings"
)

// Config is the root configuration. main builds it once through FromEnv and
// hands the relevant section to each constructor; nothing below cmd reads the
// environment directly.
type Config struct {
	Server    Server
	Log       Log
	Postgres  Postgres
	Redis     RedisConfig
	Kafka     Kafka
	Provider  Provider
	Lifecycle Lifecycle
	Whitelist Whitelist
	Chain     Chain
	Email     Email
	Schedule  Schedule
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
}

// Log selects handler format, level and optional rotated file output.
type Log struct {
	Level      string
	Format     string // json | text
	Output     string // stdout | file | both
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Postgres configures the record store. An empty DSN selects in-memory stores.
type Postgres struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the shared provider call budget. An empty URL keeps
// the budget process-local.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the lifecycle event stream. No brokers disables publishing.
type Kafka struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Provider holds 4Stop credentials, endpoints and decision thresholds.
type Provider struct {
	RegistrationURL     string
	DocVerificationURL  string
	MerchantID          string
	MerchantPassword    string
	ConfidenceThreshold float64
	RequestsPerSecond   int
	HTTPTimeout         time.Duration
}

// Lifecycle tunes the KYC job functions.
type Lifecycle struct {
	RetryLimit     int
	StaleThreshold time.Duration
	Concurrency    int
	JobTimeout     time.Duration
}

// Whitelist tunes the whitelist buffer.
type Whitelist struct {
	RetryLimit     int
	StaleThreshold time.Duration
	MaxBatch       int // entries per chain transaction
}

// Chain configures the whitelisting contract call. An empty RPC URL selects
// the logging stub.
type Chain struct {
	RPCURL             string
	WhitelisterAddress string
	ContractAddress    string
	GasLimit           uint64
}

// Email configures SMTP delivery. An empty host selects the log notifier.
type Email struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Schedule holds cron specs for every job (robfig/cron, seconds field first).
type Schedule struct {
	FlushWhitelist      string
	ResetWhitelist      string
	ProcessApplicants   string
	ProcessResults      string
	ResetStalled        string
	RejectFailedRecords string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []string
	r := envReader{errs: &errs}

	cfg := Config{
		Server: Server{
			Addr:          r.str("KYC_ADDR", ":8080"),
			JWTSigningKey: r.str("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     r.str("JWT_ISSUER", "kycgate"),
		},
		Log: Log{
			Level:      r.str("LOG_LEVEL", "info"),
			Format:     r.str("LOG_FORMAT", "json"),
			Output:     r.str("LOG_OUTPUT", "stdout"),
			FilePath:   r.str("LOG_FILE_PATH", "logs/kycgate.log"),
			MaxSizeMB:  r.integer("LOG_MAX_SIZE_MB", 100),
			MaxBackups: r.integer("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: r.integer("LOG_MAX_AGE_DAYS", 30),
		},
		Postgres: Postgres{
			DSN:             r.str("DATABASE_URL", ""),
			MaxOpenConns:    r.integer("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    r.integer("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: r.duration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          r.str("REDIS_URL", ""),
			PoolSize:     r.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: r.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  r.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  r.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: r.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:  r.list("KAFKA_BROKERS"),
			Topic:    r.str("KAFKA_LIFECYCLE_TOPIC", "kyc.lifecycle"),
			ClientID: r.str("KAFKA_CLIENT_ID", "kycgate"),
		},
		Provider: Provider{
			RegistrationURL:     r.str("CUSTOMER_REGISTRATION_4STOP", "https://api.4stop.com/api/v2/customerregistration"),
			DocVerificationURL:  r.str("DOCID_VERIFICATION_4STOP", "https://api.4stop.com/api/v2/docsverification"),
			MerchantID:          r.str("MERCHANT_ID_4STOP", ""),
			MerchantPassword:    r.str("MERCHANT_PASS_4STOP", ""),
			ConfidenceThreshold: r.float("KYC_CONFIDENCE_THRESHOLD", 80),
			RequestsPerSecond:   r.integer("KYC_API_REQ_PER_SEC", 2),
			HTTPTimeout:         r.duration("KYC_PROVIDER_HTTP_TIMEOUT", 30*time.Second),
		},
		Lifecycle: Lifecycle{
			RetryLimit:     r.integer("KYC_RETRY_COUNT", 5),
			StaleThreshold: r.duration("KYC_RESET_RECORD_THRESHOLD", 24*time.Hour),
			Concurrency:    r.integer("KYC_PROCESS_CONCURRENCY", 16),
			JobTimeout:     r.duration("KYC_JOB_TIMEOUT", 5*time.Minute),
		},
		Whitelist: Whitelist{
			RetryLimit:     r.integer("WHITELIST_BUFFER_RETRY_COUNT", 5),
			StaleThreshold: r.duration("WHITELIST_RESET_RECORD_THRESHOLD", 24*time.Hour),
			MaxBatch:       r.integer("WHITELIST_MAX_BATCH", 100),
		},
		Chain: Chain{
			RPCURL:             r.str("CHAIN_RPC_URL", ""),
			WhitelisterAddress: r.str("WHITELISTER_ADDRESS", ""),
			ContractAddress:    r.str("WHITELIST_CONTRACT_ADDRESS", ""),
			GasLimit:           uint64(r.integer("WHITELIST_GAS_LIMIT", 4_000_000)),
		},
		Email: Email{
			Host:     r.str("EMAIL_SERVICE_HOST", ""),
			Port:     r.integer("EMAIL_SERVICE_PORT", 587),
			Username: r.str("EMAIL_SERVICE_LOGIN", ""),
			Password: r.str("EMAIL_SERVICE_PASSW", ""),
			From:     r.str("EMAIL_SERVICE_FROM", "kyc@localhost"),
		},
		Schedule: Schedule{
			FlushWhitelist:      r.str("FLUSH_WHITELIST_BUFFER_INTERVAL", "@every 5m"),
			ResetWhitelist:      r.str("RESET_OLD_WHITELIST_RECORDS_INTERVAL", "0 0 0 * * *"),
			ProcessApplicants:   r.str("KYC_PROCESS_APPLICANTS_INTERVAL", "@every 2s"),
			ProcessResults:      r.str("KYC_PROCESS_RESULTS_INTERVAL", "@every 1m"),
			ResetStalled:        r.str("KYC_RESET_STALLED_RECORDS_INTERVAL", "0 0 */6 * * *"),
			RejectFailedRecords: r.str("KYC_RESET_FAILED_RECORDS_INTERVAL", "@every 1h"),
		},
	}

	if cfg.Provider.RequestsPerSecond <= 0 {
		errs = append(errs, "KYC_API_REQ_PER_SEC must be positive")
	}
	if cfg.Lifecycle.RetryLimit <= 0 {
		errs = append(errs, "KYC_RETRY_COUNT must be positive")
	}
	if cfg.Whitelist.RetryLimit <= 0 {
		errs = append(errs, "WHITELIST_BUFFER_RETRY_COUNT must be positive")
	}
	if cfg.Whitelist.MaxBatch <= 0 {
		errs = append(errs, "WHITELIST_MAX_BATCH must be positive")
	}
	if cfg.Lifecycle.Concurrency <= 0 {
		errs = append(errs, "KYC_PROCESS_CONCURRENCY must be positive")
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

type envReader struct {
	errs *[]string
}

func (r envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r envReader) integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return n
}

func (r envReader) float(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return f
}

func (r envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*r.errs = append(*r.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return d
}

func (r envReader) list(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}
