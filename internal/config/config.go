package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	Environment string
	LoggerLevel string
	Port        string

	DBDSN     string
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Timezone         string
	DepositPercent   float64
	AutoCancelTick   time.Duration
	LegacyOrderIDMax int64

	FrontendURL   string
	PublicBaseURL string

	MoMo     MoMoConfig
	PayOS    PayOSConfig
	Midtrans MidtransConfig

	FCMCredentials string

	LegacyAPIURL       string
	LegacySyncInterval time.Duration
	LegacyStatusScheme string // "full" or "compact"
	SeedFile           string

	RateLimitRPS   float64
	RateLimitBurst int
}

type MoMoConfig struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
}

type PayOSConfig struct {
	Endpoint    string
	ClientID    string
	APIKey      string
	ChecksumKey string
}

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

func (m MoMoConfig) Enabled() bool     { return m.PartnerCode != "" && m.SecretKey != "" }
func (p PayOSConfig) Enabled() bool    { return p.ClientID != "" && p.ChecksumKey != "" }
func (m MidtransConfig) Enabled() bool { return m.ServerKey != "" }

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "carrental"))
	cfg.Environment = cast.ToString(getOrReturnDefault("APP_ENV", "development"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "debug"))
	cfg.Port = cast.ToString(getOrReturnDefault("PORT", "8080"))

	cfg.DBDSN = cast.ToString(getOrReturnDefault("DB_DSN", "root:root@tcp(127.0.0.1:3306)/carrental?charset=utf8mb4&parseTime=True&loc=Local"))
	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", "carrental_dev_secret"))

	cfg.RedisAddr = cast.ToString(getOrReturnDefault("REDIS_ADDR", ""))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))
	cfg.RedisDB = cast.ToInt(getOrReturnDefault("REDIS_DB", 0))

	cfg.Timezone = cast.ToString(getOrReturnDefault("APP_TIMEZONE", "Asia/Ho_Chi_Minh"))
	cfg.DepositPercent = cast.ToFloat64(getOrReturnDefault("DEPOSIT_PERCENT", 30))
	cfg.AutoCancelTick = cast.ToDuration(getOrReturnDefault("AUTO_CANCEL_TICK", "1s"))
	cfg.LegacyOrderIDMax = cast.ToInt64(getOrReturnDefault("LEGACY_ORDER_ID_MAX", 100000))

	cfg.FrontendURL = cast.ToString(getOrReturnDefault("FRONTEND_URL", "http://localhost:5173"))
	cfg.PublicBaseURL = cast.ToString(getOrReturnDefault("PUBLIC_BASE_URL", "http://localhost:8080"))

	cfg.MoMo = MoMoConfig{
		Endpoint:    cast.ToString(getOrReturnDefault("MOMO_ENDPOINT", "https://test-payment.momo.vn")),
		PartnerCode: cast.ToString(getOrReturnDefault("MOMO_PARTNER_CODE", "")),
		AccessKey:   cast.ToString(getOrReturnDefault("MOMO_ACCESS_KEY", "")),
		SecretKey:   cast.ToString(getOrReturnDefault("MOMO_SECRET_KEY", "")),
	}
	cfg.PayOS = PayOSConfig{
		Endpoint:    cast.ToString(getOrReturnDefault("PAYOS_ENDPOINT", "https://api-merchant.payos.vn")),
		ClientID:    cast.ToString(getOrReturnDefault("PAYOS_CLIENT_ID", "")),
		APIKey:      cast.ToString(getOrReturnDefault("PAYOS_API_KEY", "")),
		ChecksumKey: cast.ToString(getOrReturnDefault("PAYOS_CHECKSUM_KEY", "")),
	}
	cfg.Midtrans = MidtransConfig{
		ServerKey:  cast.ToString(getOrReturnDefault("MIDTRANS_SERVER_KEY", "")),
		Production: cast.ToBool(getOrReturnDefault("MIDTRANS_PRODUCTION", false)),
	}

	cfg.FCMCredentials = cast.ToString(getOrReturnDefault("FCM_CREDENTIALS", ""))

	cfg.LegacyAPIURL = cast.ToString(getOrReturnDefault("LEGACY_API_URL", ""))
	cfg.LegacySyncInterval = cast.ToDuration(getOrReturnDefault("LEGACY_SYNC_INTERVAL", "0s"))
	cfg.LegacyStatusScheme = cast.ToString(getOrReturnDefault("LEGACY_STATUS_SCHEME", "full"))
	cfg.SeedFile = cast.ToString(getOrReturnDefault("SEED_FILE", ""))

	cfg.RateLimitRPS = cast.ToFloat64(getOrReturnDefault("RATE_LIMIT_RPS", 5))
	cfg.RateLimitBurst = cast.ToInt(getOrReturnDefault("RATE_LIMIT_BURST", 10))

	return cfg
}

// Location resolves the configured time zone, falling back to UTC+7.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
