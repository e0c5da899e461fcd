package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

// DSN renders the connection string used by pgx and golang-migrate.
func (c PostgresConfig) DSN(scheme string) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	Timeout    time.Duration
	// Retention is how long an idle session record is kept in Redis. It
	// outlives Timeout so that a stale cookie is reported as expired.
	Retention  time.Duration
	CookieName string
	Secure     bool
}

type SecurityConfig struct {
	BcryptCost  int
	CSRFSecret  string
	FlashSecret string
	FlashTTL    time.Duration
}

// LimitsConfig holds the maximum accepted length of every form field.
type LimitsConfig struct {
	Username    int
	Password    int
	StudentCode int
	FullName    int
	Email       int
	Course      int
	Description int
}

type LoggingConfig struct {
	Level    string
	ErrorLog string
}

type BackupConfig struct {
	Dir        string
	DumpBinary string
	Schedule   string
	Retention  time.Duration
	Offsite    bool
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type QueueConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Session     SessionConfig
	Security    SecurityConfig
	Limits      LimitsConfig
	Logging     LoggingConfig
	Backup      BackupConfig
	Storage     StorageConfig
	Queue       QueueConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Session.Timeout <= 0 {
		return fmt.Errorf("session.timeout must be positive")
	}
	if c.Session.Retention <= c.Session.Timeout {
		return fmt.Errorf("session.retention (%s) must exceed session.timeout (%s)", c.Session.Retention, c.Session.Timeout)
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcryptcost must be between 4 and 31, got %d", c.Security.BcryptCost)
	}
	if c.Security.CSRFSecret == "" || c.Security.FlashSecret == "" {
		if c.Environment == "production" {
			return fmt.Errorf("security.csrfsecret and security.flashsecret are required in production")
		}
		// Per-process secrets: tokens do not survive a restart outside production.
		if c.Security.CSRFSecret == "" {
			c.Security.CSRFSecret = randomSecret()
		}
		if c.Security.FlashSecret == "" {
			c.Security.FlashSecret = randomSecret()
		}
	}
	return nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("generate secret: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "60s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "roster")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "infosec_lab")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.timeout", "30m")
	v.SetDefault("session.retention", "24h")
	v.SetDefault("session.cookiename", "ROSTER_SESSION")
	v.SetDefault("session.secure", false)

	v.SetDefault("security.bcryptcost", 10)
	v.SetDefault("security.csrfsecret", "")
	v.SetDefault("security.flashsecret", "")
	v.SetDefault("security.flashttl", "5m")

	v.SetDefault("limits.username", 100)
	v.SetDefault("limits.password", 255)
	v.SetDefault("limits.studentcode", 50)
	v.SetDefault("limits.fullname", 100)
	v.SetDefault("limits.email", 100)
	v.SetDefault("limits.course", 100)
	v.SetDefault("limits.description", 255)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.errorlog", "logs/error.log")

	v.SetDefault("backup.dir", "backups")
	v.SetDefault("backup.dumpbinary", "pg_dump")
	v.SetDefault("backup.schedule", "0 0 2 * * *")
	v.SetDefault("backup.retention", "720h") // 30 days
	v.SetDefault("backup.offsite", false)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "roster-backups")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("queue.stream", "roster:backups")
	v.SetDefault("queue.group", "backup-workers")
	v.SetDefault("queue.consumer", "worker-1")
	v.SetDefault("queue.claiminterval", "30s")
}
