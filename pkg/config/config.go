package config

import (
	"os"
	"strconv"
)

// DBConfig PostgreSQL connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	// SlowQueryMS is the threshold above which queries are logged as slow.
	SlowQueryMS int `yaml:"slow_query_ms"`
}

// DatastoreConfig selects where routines and the profile are persisted.
// URL and Key are the two credentials of a hosted REST datastore.
type DatastoreConfig struct {
	Driver     string `yaml:"driver"` // memory, postgres, sqlite, rest
	URL        string `yaml:"url"`
	Key        string `yaml:"key"`
	SQLitePath string `yaml:"sqlite_path"`
}

// MQConfig activity event publishing.
type MQConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// RedisConfig idempotency key storage. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ServerConfig HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LogConfig logger settings.
type LogConfig struct {
	Development bool `yaml:"development"`
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideDatastoreFromEnv reads DATASTORE_DRIVER, DATASTORE_URL, DATASTORE_KEY and SQLITE_PATH.
func OverrideDatastoreFromEnv(cfg *DatastoreConfig) {
	if driver := os.Getenv("DATASTORE_DRIVER"); driver != "" {
		cfg.Driver = driver
	}
	if url := os.Getenv("DATASTORE_URL"); url != "" {
		cfg.URL = url
	}
	if key := os.Getenv("DATASTORE_KEY"); key != "" {
		cfg.Key = key
	}
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		cfg.SQLitePath = path
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
		cfg.Enabled = true
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}
