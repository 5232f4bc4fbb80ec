package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseName is fixed; only connection coordinates are configurable.
const DatabaseName = "foreign_exchange"

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, DatabaseName,
	)
}

type Cache struct {
	// SocketPath selects a unix-socket redis connection; URL a networked
	// one. Both empty disables caching entirely.
	SocketPath string `mapstructure:"socket_path"`
	URL        string `mapstructure:"url"`
}

type Feed struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type Ingest struct {
	MaxAttempts       int `mapstructure:"max_attempts"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds"`
	IntervalMinutes   int `mapstructure:"interval_minutes"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	DbServer   DbServer   `mapstructure:"db_server"`
	Cache      Cache      `mapstructure:"cache"`
	Feed       Feed       `mapstructure:"feed"`
	Ingest     Ingest     `mapstructure:"ingest"`
	Logging    Logging    `mapstructure:"logging"`
	Production bool       `mapstructure:"production"`
}

func Init() (*AppConfig, error) {
	var cfg AppConfig

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	viper.SetDefault("http_server.port", "8080")
	viper.SetDefault("db_server.host", "localhost")
	viper.SetDefault("db_server.port", "5432")
	viper.SetDefault("db_server.user", "postgres")
	viper.SetDefault("db_server.max_conns", 10)
	viper.SetDefault("feed.url", "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist-90d.xml")
	viper.SetDefault("feed.timeout_seconds", 10)
	viper.SetDefault("ingest.max_attempts", 5)
	viper.SetDefault("ingest.retry_delay_seconds", 30)
	viper.SetDefault("ingest.interval_minutes", 15)
	viper.SetDefault("logging.level", "info")

	_ = viper.BindEnv("http_server.port", "HTTP_PORT")

	// db server env vars
	_ = viper.BindEnv("db_server.host", "DB_HOST")
	_ = viper.BindEnv("db_server.port", "DB_PORT")
	_ = viper.BindEnv("db_server.user", "DB_USER")
	_ = viper.BindEnv("db_server.pass", "DB_PASS")
	_ = viper.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	// cache env vars
	_ = viper.BindEnv("cache.socket_path", "REDIS_PATH")
	_ = viper.BindEnv("cache.url", "REDIS_URL")

	// feed and ingestion env vars
	_ = viper.BindEnv("feed.url", "FEED_URL")
	_ = viper.BindEnv("feed.timeout_seconds", "FEED_TIMEOUT_SECONDS")
	_ = viper.BindEnv("ingest.max_attempts", "INGEST_MAX_ATTEMPTS")
	_ = viper.BindEnv("ingest.retry_delay_seconds", "INGEST_RETRY_DELAY_SECONDS")
	_ = viper.BindEnv("ingest.interval_minutes", "INGEST_INTERVAL_MINUTES")

	_ = viper.BindEnv("logging.level", "LOG_LEVEL")
	_ = viper.BindEnv("production", "IS_PRODUCTION")

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
