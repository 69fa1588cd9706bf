package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config is the explicit startup configuration. Nothing here has a
// baked-in default inside business logic; in particular the privileged
// admin id only ever comes from this file.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// StorageConfig selects the store backend. Driver is "mysql" in
// production and "memory" for local runs; services see the same
// interfaces either way.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers       []string         `mapstructure:"brokers"`
	ConsumerGroup string           `mapstructure:"consumer_group"`
	Topic         KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	ShopEvents  string `mapstructure:"shop_events"`
	AssetDrafts string `mapstructure:"asset_drafts"`
}

type AuthConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	MaxCredAge  int    `mapstructure:"max_cred_age_seconds"`
	AdminUserID string `mapstructure:"admin_user_id"`
}

type BusinessConfig struct {
	DefaultAssetPrice string `mapstructure:"default_asset_price"`
	MaxRetryCount     int    `mapstructure:"max_retry_count"`
	ReadRetryCount    int    `mapstructure:"read_retry_count"`
	CatalogCacheTTL   int    `mapstructure:"catalog_cache_ttl_seconds"`
}

// LoadConfig reads the yaml config file or dies.
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}

	return config
}
