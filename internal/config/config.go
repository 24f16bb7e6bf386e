package config

import (
	"fmt"
	"strings"

	"github.com/aquaponto/aquaponto/internal/logger"

	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Upload       UploadConfig       `mapstructure:"upload"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Security     SecurityConfig     `mapstructure:"security"`
	Stripe       StripeConfig       `mapstructure:"stripe"`
	WhatsApp     WhatsAppConfig     `mapstructure:"whatsapp"`
	ViaCEP       ViaCEPConfig       `mapstructure:"viacep"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Order        OrderConfig        `mapstructure:"order"`
	Loyalty      LoyaltyConfig      `mapstructure:"loyalty"`
}

// ServerConfig HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig log output configuration
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions converts to logger options
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig connection pool configuration
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT configuration
type JWTConfig struct {
	SecretKey             string `mapstructure:"secret"`
	ExpireHours           int    `mapstructure:"expire_hours"`
	RememberMeExpireHours int    `mapstructure:"remember_me_expire_hours"`
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig async queue configuration
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// StripeConfig Stripe billing configuration
type StripeConfig struct {
	SecretKey           string `mapstructure:"secret_key"`
	WebhookSecret       string `mapstructure:"webhook_secret"`
	MonthlyPriceID      string `mapstructure:"monthly_price_id"`
	AnnualPriceID       string `mapstructure:"annual_price_id"`
	SuccessURL          string `mapstructure:"success_url"`
	CancelURL           string `mapstructure:"cancel_url"`
	PortalReturnURL     string `mapstructure:"portal_return_url"`
	ToleranceSeconds    int64  `mapstructure:"tolerance_seconds"`
	RequestTimeoutMS    int    `mapstructure:"request_timeout_ms"`
	TrialPeriodDays     int    `mapstructure:"trial_period_days"`
	AllowPromotionCodes bool   `mapstructure:"allow_promotion_codes"`
}

// WhatsAppConfig WhatsApp gateway configuration
type WhatsAppConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	APIBaseURL   string `mapstructure:"api_base_url"`
	APIToken     string `mapstructure:"api_token"`
	SenderNumber string `mapstructure:"sender_number"`
	TimeoutMS    int    `mapstructure:"timeout_ms"`
	MaxRetries   int    `mapstructure:"max_retries"`
}

// ViaCEPConfig ViaCEP lookup configuration
type ViaCEPConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	TimeoutMS     int    `mapstructure:"timeout_ms"`
	CacheTTLHours int    `mapstructure:"cache_ttl_hours"`
}

// SubscriptionConfig subscription gate configuration
type SubscriptionConfig struct {
	Enforced           bool `mapstructure:"enforced"`
	GraceDays          int  `mapstructure:"grace_days"`
	RefreshIntervalMin int  `mapstructure:"refresh_interval_minutes"`
	PromptTTLHours     int  `mapstructure:"prompt_ttl_hours"`
}

// OrderConfig order configuration
type OrderConfig struct {
	SchedulingSlotMinutes   int `mapstructure:"scheduling_slot_minutes"`
	SchedulingLeadMinutes   int `mapstructure:"scheduling_lead_minutes"`
	SchedulingHorizonDays   int `mapstructure:"scheduling_horizon_days"`
	HousekeepingIntervalMin int `mapstructure:"housekeeping_interval_min"`
}

// LoyaltyConfig loyalty program configuration
type LoyaltyConfig struct {
	RedemptionExpireHours int `mapstructure:"redemption_expire_hours"`
}

// UploadConfig file upload configuration
type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"`
	AllowedTypes      []string `mapstructure:"allowed_types"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxWidth          int      `mapstructure:"max_width"`
	MaxHeight         int      `mapstructure:"max_height"`
}

// CORSConfig cross-origin configuration
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig security configuration
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
	PasswordPolicy PasswordPolicyConfig `mapstructure:"password_policy"`
}

// LoginRateLimitConfig login throttling configuration
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// PasswordPolicyConfig password policy configuration
type PasswordPolicyConfig struct {
	MinLength      int  `mapstructure:"min_length"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireNumber  bool `mapstructure:"require_number"`
	RequireSpecial bool `mapstructure:"require_special"`
}

// Load loads configuration from config.yml
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./")
	viper.AddConfigPath("../")   // when running from cmd/server
	viper.AddConfigPath("./etc")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "app.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/aquaponto.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expire_hours", 24)
	viper.SetDefault("jwt.remember_me_expire_hours", 168)
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "aqp")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	viper.SetDefault("stripe.secret_key", "")
	viper.SetDefault("stripe.webhook_secret", "")
	viper.SetDefault("stripe.monthly_price_id", "")
	viper.SetDefault("stripe.annual_price_id", "")
	viper.SetDefault("stripe.success_url", "")
	viper.SetDefault("stripe.cancel_url", "")
	viper.SetDefault("stripe.portal_return_url", "")
	viper.SetDefault("stripe.tolerance_seconds", 300)
	viper.SetDefault("stripe.request_timeout_ms", 10000)
	viper.SetDefault("stripe.trial_period_days", 0)
	viper.SetDefault("stripe.allow_promotion_codes", false)
	viper.SetDefault("whatsapp.enabled", false)
	viper.SetDefault("whatsapp.api_base_url", "")
	viper.SetDefault("whatsapp.api_token", "")
	viper.SetDefault("whatsapp.sender_number", "")
	viper.SetDefault("whatsapp.timeout_ms", 5000)
	viper.SetDefault("whatsapp.max_retries", 2)
	viper.SetDefault("viacep.base_url", "https://viacep.com.br/ws")
	viper.SetDefault("viacep.timeout_ms", 3000)
	viper.SetDefault("viacep.cache_ttl_hours", 720)
	viper.SetDefault("subscription.enforced", true)
	viper.SetDefault("subscription.grace_days", 0)
	viper.SetDefault("subscription.refresh_interval_minutes", 60)
	viper.SetDefault("subscription.prompt_ttl_hours", 24)
	viper.SetDefault("order.scheduling_slot_minutes", 30)
	viper.SetDefault("order.scheduling_lead_minutes", 60)
	viper.SetDefault("order.scheduling_horizon_days", 7)
	viper.SetDefault("order.housekeeping_interval_min", 60)
	viper.SetDefault("loyalty.redemption_expire_hours", 72)
	viper.SetDefault("upload.max_size", 2097152)
	viper.SetDefault("upload.allowed_types", []string{
		"image/jpeg",
		"image/png",
		"image/webp",
	})
	viper.SetDefault("upload.allowed_extensions", []string{
		".jpg",
		".jpeg",
		".png",
		".webp",
	})
	viper.SetDefault("upload.max_width", 4096)
	viper.SetDefault("upload.max_height", 4096)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-CSRF-Token",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("security.login_rate_limit.window_seconds", 300)
	viper.SetDefault("security.login_rate_limit.max_attempts", 5)
	viper.SetDefault("security.login_rate_limit.block_seconds", 900)
	viper.SetDefault("security.password_policy.min_length", 8)
	viper.SetDefault("security.password_policy.require_upper", true)
	viper.SetDefault("security.password_policy.require_lower", true)
	viper.SetDefault("security.password_policy.require_number", true)
	viper.SetDefault("security.password_policy.require_special", false)

	// environment variable support (server.port -> SERVER_PORT)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config parse failed: %w", err))
	}

	return &cfg
}
