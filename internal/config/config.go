package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Ranks     RanksConfig
	Staff     StaffConfig
	Scheduler SchedulerConfig
	Players   PlayersConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	AcquireTimeout time.Duration
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin API authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminPasswordHash     string
}

// RanksConfig locates the rank table and names the special groups.
type RanksConfig struct {
	File         string
	DefaultGroup string
	StaffGroup   string
	Track        string
}

// StaffConfig controls the staff roster cache and point policy.
type StaffConfig struct {
	CacheTTLSeconds int
	GivePoints      bool
}

// SchedulerConfig drives the periodic tasks.
type SchedulerConfig struct {
	PointIntervalSeconds     int
	PointAmount              int
	PromotionIntervalSeconds int
	AutosaveIntervalSeconds  int
}

// PlayersConfig locates the offline player store.
type PlayersConfig struct {
	StoreFile string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "rank-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			AcquireTimeout: time.Duration(getEnvAsInt("POSTGRES_ACQUIRE_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			AdminPasswordHash:     os.Getenv("AUTH_ADMIN_PASSWORD_HASH"),
		},
		Ranks: RanksConfig{
			File:         getEnv("RANKS_FILE", "ranks.yaml"),
			DefaultGroup: getEnv("RANKS_DEFAULT_GROUP", "default"),
			StaffGroup:   getEnv("RANKS_STAFF_GROUP", "staff"),
			Track:        getEnv("RANKS_TRACK", "ranks"),
		},
		Staff: StaffConfig{
			CacheTTLSeconds: getEnvAsInt("STAFF_CACHE_TTL_SECONDS", 60),
			GivePoints:      getEnvAsBool("STAFF_GIVE_POINTS", false),
		},
		Scheduler: SchedulerConfig{
			PointIntervalSeconds:     getEnvAsInt("POINTS_INTERVAL_SECONDS", 60),
			PointAmount:              getEnvAsInt("POINTS_AMOUNT", 1),
			PromotionIntervalSeconds: getEnvAsInt("PROMOTION_INTERVAL_SECONDS", 60),
			AutosaveIntervalSeconds:  getEnvAsInt("STORAGE_AUTOSAVE_INTERVAL_SECONDS", 300),
		},
		Players: PlayersConfig{
			StoreFile: getEnv("PLAYERS_STORE_FILE", "offline_players.json"),
		},
	}

	// A TTL below one second would make every isStaff call a reload.
	if cfg.Staff.CacheTTLSeconds < 1 {
		cfg.Staff.CacheTTLSeconds = 1
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the staff cache time-to-live.
func (s StaffConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// PointInterval returns the accrual tick period.
func (s SchedulerConfig) PointInterval() time.Duration {
	return time.Duration(s.PointIntervalSeconds) * time.Second
}

// PromotionInterval returns the sweep tick period.
func (s SchedulerConfig) PromotionInterval() time.Duration {
	return time.Duration(s.PromotionIntervalSeconds) * time.Second
}

// AutosaveInterval returns the offline store flush period.
func (s SchedulerConfig) AutosaveInterval() time.Duration {
	return time.Duration(s.AutosaveIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
