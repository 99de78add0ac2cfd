package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INKBOUND_APP_ENV" required:"true"`
	Port         string `envconfig:"INKBOUND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INKBOUND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INKBOUND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"INKBOUND_DB_DSN"`
	Driver string `envconfig:"INKBOUND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INKBOUND_DB_HOST"`
	LegacyPort     int    `envconfig:"INKBOUND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INKBOUND_DB_USER"`
	LegacyPassword string `envconfig:"INKBOUND_DB_PASSWORD"`
	LegacyName     string `envconfig:"INKBOUND_DB_NAME"`
	LegacySSLMode  string `envconfig:"INKBOUND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INKBOUND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INKBOUND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INKBOUND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INKBOUND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INKBOUND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"INKBOUND_REDIS_ADDR"`
	Password     string        `envconfig:"INKBOUND_REDIS_PASSWORD"`
	DB           int           `envconfig:"INKBOUND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INKBOUND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INKBOUND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INKBOUND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INKBOUND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INKBOUND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"INKBOUND_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"INKBOUND_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"INKBOUND_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"INKBOUND_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"INKBOUND_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"INKBOUND_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"INKBOUND_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"INKBOUND_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"INKBOUND_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"INKBOUND_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentLimit    int           `envconfig:"INKBOUND_AUTH_RATE_LIMIT_LOGIN_IDENT_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"INKBOUND_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"INKBOUND_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIdentLimit int           `envconfig:"INKBOUND_AUTH_RATE_LIMIT_REGISTER_IDENT_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"INKBOUND_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"INKBOUND_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"INKBOUND_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"INKBOUND_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"INKBOUND_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"INKBOUND_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"INKBOUND_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"INKBOUND_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
	PublicBaseURL     string        `envconfig:"INKBOUND_GCS_PUBLIC_BASE_URL"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"INKBOUND_MAX_UPLOAD_MB" default:"20"`
}

type PubSubConfig struct {
	DomainTopic           string `envconfig:"INKBOUND_PUBSUB_DOMAIN_TOPIC" default:"ink-domain-events"`
	DomainSubscription    string `envconfig:"INKBOUND_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
	AnalyticsSubscription string `envconfig:"INKBOUND_PUBSUB_ANALYTICS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset         string `envconfig:"INKBOUND_BIGQUERY_DATASET" default:"inkbound"`
	PostEventsTable string `envconfig:"INKBOUND_BIGQUERY_POST_EVENTS_TABLE" default:"post_events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"INKBOUND_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"INKBOUND_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"INKBOUND_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"INKBOUND_OUTBOX_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
