package config

import (
	"fmt"
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
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

// StorageConfig selects the photo backend: "s3" for an S3-compatible
// object store, "local" for a directory on disk.
type StorageConfig struct {
	Backend   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	LocalDir  string
	PublicURL string
	MaxUpload int64
}

type SecurityConfig struct {
	JWTAccessSecret  string
	JWTRefreshTTL    time.Duration
	JWTAccessTTL     time.Duration
	MaxSessions      int
	CSRFTokenTTL     time.Duration
	IdleTimeout      time.Duration
	ReauthWindow     time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration
}

type RateLimitRule struct {
	Window time.Duration
	Max    int
}

type RateLimitConfig struct {
	General    RateLimitRule
	Auth       RateLimitRule
	Upload     RateLimitRule
	Payment    RateLimitRule
	Invitation RateLimitRule
	Sensitive  RateLimitRule
	CSRF       RateLimitRule
}

type BillingConfig struct {
	WebhookSecret string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type InvitationConfig struct {
	TTL       time.Duration
	AcceptURL string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	RateLimit        RateLimitConfig
	Billing          BillingConfig
	SMTP             SMTPConfig
	Invitation       InvitationConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("PHOTOSELECT")
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

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "photoselect:mail")
	v.SetDefault("redis.group", "mail-senders")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.bucket", "photoselect-photos")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.localdir", "./uploads")
	v.SetDefault("storage.maxupload", 25<<20) // 25 MiB

	v.SetDefault("security.jwtaccessttl", "15m")
	v.SetDefault("security.jwtrefreshttl", "720h") // 30 days
	v.SetDefault("security.maxsessions", 10)
	v.SetDefault("security.csrftokenttl", "1h")
	v.SetDefault("security.idletimeout", "30m")
	v.SetDefault("security.reauthwindow", "5m")
	v.SetDefault("security.lockoutthreshold", 5)
	v.SetDefault("security.lockoutduration", "15m")

	v.SetDefault("ratelimit.general.window", "1m")
	v.SetDefault("ratelimit.general.max", 120)
	v.SetDefault("ratelimit.auth.window", "1m")
	v.SetDefault("ratelimit.auth.max", 10)
	v.SetDefault("ratelimit.upload.window", "1m")
	v.SetDefault("ratelimit.upload.max", 30)
	v.SetDefault("ratelimit.payment.window", "1m")
	v.SetDefault("ratelimit.payment.max", 60)
	v.SetDefault("ratelimit.invitation.window", "1h")
	v.SetDefault("ratelimit.invitation.max", 20)
	v.SetDefault("ratelimit.sensitive.window", "1m")
	v.SetDefault("ratelimit.sensitive.max", 5)
	v.SetDefault("ratelimit.csrf.window", "1m")
	v.SetDefault("ratelimit.csrf.max", 60)

	v.SetDefault("invitation.ttl", "168h") // 7 days
	v.SetDefault("invitation.accepturl", "http://localhost:3000/invite")

	v.SetDefault("smtp.port", 587)
}
