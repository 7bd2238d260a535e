package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/yourusername/debate-tab/internal/service/tabulation"
)

// Config хранит все настройки приложения
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Scoring    ScoringConfig
	Tournament tabulation.Plan
	Cache      CacheConfig
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	CORS       CORSConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит настройки подключения к Redis
// Поддерживает режимы: single, sentinel
type RedisConfig struct {
	// Mode: "single" или "sentinel". По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов (хост:порт). Для 'single' используется первый.
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для 'single', если Addrs пустой
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: только для "sentinel"
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// AuthConfig содержит настройки проверки токенов внешнего провайдера
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// ScoringConfig задаёт допустимые диапазоны оценок
type ScoringConfig struct {
	TeamMin       float64 `mapstructure:"team_min"`
	TeamMax       float64 `mapstructure:"team_max"`
	IndividualMin float64 `mapstructure:"individual_min"`
	IndividualMax float64 `mapstructure:"individual_max"`
}

// CacheConfig содержит TTL кеша и блокировок
type CacheConfig struct {
	TabulationTTL time.Duration `mapstructure:"tabulation_ttl"`
	StageLockTTL  time.Duration `mapstructure:"stage_lock_ttl"`
}

// RateLimitConfig ограничивает частоту отправки оценок
type RateLimitConfig struct {
	ScoreSubmissions int           `mapstructure:"score_submissions"`
	Window           time.Duration `mapstructure:"window"`
}

// CORSConfig содержит разрешённые источники
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func setDefaults(vip *viper.Viper) {
	plan := tabulation.DefaultPlan()

	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("scoring.team_min", 0)
	vip.SetDefault("scoring.team_max", 100)
	vip.SetDefault("scoring.individual_min", 50)
	vip.SetDefault("scoring.individual_max", 100)
	vip.SetDefault("tournament.preliminary_rounds", plan.PreliminaryRounds)
	vip.SetDefault("tournament.preliminary_scoring", string(plan.PreliminaryScoring))
	vip.SetDefault("cache.tabulation_ttl", 30*time.Second)
	vip.SetDefault("cache.stage_lock_ttl", 30*time.Second)
	vip.SetDefault("rate_limit.score_submissions", 30)
	vip.SetDefault("rate_limit.window", time.Minute)
}

// newViper собирает источники конфигурации: умолчания, файл и переменные окружения
func newViper(configPath string) *viper.Viper {
	vip := viper.New()
	setDefaults(vip)

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET")
	vip.BindEnv("auth.issuer", "AUTH_ISSUER")

	vip.BindEnv("scoring.team_max", "SCORING_TEAM_MAX")
	vip.BindEnv("scoring.individual_max", "SCORING_INDIVIDUAL_MAX")
	vip.BindEnv("tournament.preliminary_rounds", "TOURNAMENT_PRELIMINARY_ROUNDS")
	vip.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть: остаются переменные окружения и умолчания
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}
	return vip
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := newViper(configPath)

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Tournament.Stages) == 0 {
		cfg.Tournament.Stages = tabulation.DefaultPlan().Stages
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s (mode %s)", cfg.Redis.Addr, cfg.Redis.Mode)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Preliminary rounds: %d, stages: %d", cfg.Tournament.PreliminaryRounds, len(cfg.Tournament.Stages))
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt secret is required in config (check AUTH_JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if os.Getenv("GIN_MODE") == "release" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	if c.Scoring.TeamMin >= c.Scoring.TeamMax {
		return fmt.Errorf("scoring: team_min %.1f must be below team_max %.1f", c.Scoring.TeamMin, c.Scoring.TeamMax)
	}
	if c.Scoring.IndividualMin >= c.Scoring.IndividualMax {
		return fmt.Errorf("scoring: individual_min %.1f must be below individual_max %.1f", c.Scoring.IndividualMin, c.Scoring.IndividualMax)
	}
	if err := c.Tournament.Validate(); err != nil {
		return fmt.Errorf("tournament: %w", err)
	}
	return nil
}

// LoadDatabase загружает только настройки БД (для утилиты миграций)
func LoadDatabase(configPath string) (*DatabaseConfig, error) {
	var cfg Config
	if err := newViper(configPath).Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	db := cfg.Database
	if db.Host == "" || db.DBName == "" || db.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	return &db, nil
}
