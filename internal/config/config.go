package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const configFileName = "headline"

// Config holds the server settings. Every key can be set from the
// environment, a .env file or headline.yml.
type Config struct {
	Env                string `mapstructure:"env"`
	GrpcPort           string `mapstructure:"grpc_port"`
	HttpPort           string `mapstructure:"http_port"`
	HttpPrefix         string `mapstructure:"http_prefix"`
	DbDriver           string `mapstructure:"db_driver"`
	DbDsn              string `mapstructure:"db_dsn"`
	LogLevel           string `mapstructure:"log_level"`
	LogFormat          string `mapstructure:"log_format"`
	QueueDriver        string `mapstructure:"queue_driver"`
	QueueTopic         string `mapstructure:"queue_topic"`
	QueueCompression   string `mapstructure:"queue_compression"`
	RedisAddr          string `mapstructure:"redis_addr"`
	KafkaBrokers       string `mapstructure:"kafka_brokers"`
	RefSweeperSchedule string `mapstructure:"ref_sweeper_schedule"`
}

var defaults = map[string]string{
	"env":                  "development",
	"grpc_port":            "4020",
	"http_port":            "4021",
	"http_prefix":          "",
	"db_driver":            "sqlite",
	"db_dsn":               ".tmp/headline.db",
	"log_level":            "info",
	"log_format":           "text",
	"queue_driver":         "none",
	"queue_topic":          "headline.changes",
	"queue_compression":    "none",
	"redis_addr":           "localhost:6379",
	"kafka_brokers":        "localhost:9092",
	"ref_sweeper_schedule": "@every 10m",
}

// LoadConfig reads the configuration, environment first.
func LoadConfig() *Config {
	cfg, err := Load(viper.New())
	if err != nil {
		logrus.Fatalf("error loading config: %v", err)
	}

	return cfg
}

// Load fills a Config from v. A missing headline.yml is not an error.
func Load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	// an empty REF_SWEEPER_SCHEDULE turns the sweeper off
	v.AllowEmptyEnv(true)

	v.SetConfigName(configFileName)
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "" || c.Env == "development"
}

// SetupLogger applies the log level and format.
func SetupLogger(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// GetDb opens the database named by DbDriver.
func GetDb(cfg *Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	if cfg.IsDev() && strings.EqualFold(cfg.LogLevel, "debug") {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	switch cfg.DbDriver {
	case "", "sqlite":
		if dir := filepath.Dir(cfg.DbDsn); dir != "." && !strings.HasPrefix(cfg.DbDsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		logrus.Infof("using sqlite database %s", cfg.DbDsn)
		return gorm.Open(sqlite.Open(cfg.DbDsn), gormConfig)
	case "postgres":
		logrus.Info("using postgres database")
		return gorm.Open(postgres.Open(cfg.DbDsn), gormConfig)
	default:
		return nil, fmt.Errorf("unknown database driver: %q", cfg.DbDriver)
	}
}
