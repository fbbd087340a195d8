package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	// PublicURL is embedded in issued credentials; changing it breaks printed QR codes.
	PublicURL       string
	VerifyPortalURL string

	JWTSigningKey string
	JWTIssuer     string

	// EnforceAgencyAssignment limits QA actors to batches assigned to their agency.
	EnforceAgencyAssignment bool

	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Authority AuthorityConfig
}

// DatabaseConfig configures the Postgres pool. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the verification activity log backend. An empty URL keeps it in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event sink. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers         string
	AuditTopic      string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// AuthorityConfig configures the external signing, verification and wallet services.
// Each base URL is optional; an empty one disables that delegated path.
type AuthorityConfig struct {
	IssuerDID        string
	CertifyBaseURL   string
	CertifyAPIKey    string
	VerifyBaseURL    string
	VerifyAPIKey     string
	WalletBaseURL    string
	WalletAPIKey     string
	Timeout          time.Duration
	BreakerThreshold int
	BreakerCoolDown  time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:                    getEnv("AGRIQCERT_ADDR", ":4000"),
		Environment:             getEnv("ENVIRONMENT", "local"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		PublicURL:               strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:4000"), "/"),
		VerifyPortalURL:         getEnv("VERIFY_PORTAL_URL", "http://localhost:5173/verify"),
		JWTSigningKey:           getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:               getEnv("JWT_ISSUER", "agriqcert"),
		EnforceAgencyAssignment: getBool("ENFORCE_AGENCY_ASSIGNMENT", false),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			AuditTopic:      getEnv("AUDIT_TOPIC", "agriqcert.audit"),
			Acks:            getEnv("KAFKA_ACKS", "all"),
			Retries:         getInt("KAFKA_RETRIES", 3),
			DeliveryTimeout: getDuration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
		},
		Authority: AuthorityConfig{
			IssuerDID:        os.Getenv("AUTHORITY_ISSUER_DID"),
			CertifyBaseURL:   strings.TrimRight(os.Getenv("CERTIFY_BASE_URL"), "/"),
			CertifyAPIKey:    os.Getenv("CERTIFY_API_KEY"),
			VerifyBaseURL:    strings.TrimRight(os.Getenv("VERIFY_AUTHORITY_BASE_URL"), "/"),
			VerifyAPIKey:     os.Getenv("VERIFY_AUTHORITY_API_KEY"),
			WalletBaseURL:    strings.TrimRight(os.Getenv("WALLET_BASE_URL"), "/"),
			WalletAPIKey:     os.Getenv("WALLET_API_KEY"),
			Timeout:          getDuration("AUTHORITY_TIMEOUT", 5*time.Second),
			BreakerThreshold: getInt("AUTHORITY_BREAKER_THRESHOLD", 5),
			BreakerCoolDown:  getDuration("AUTHORITY_BREAKER_COOLDOWN", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
