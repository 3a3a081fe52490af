package config

import (
	"fmt"
	"os"

	"routinetracker/internal/routine"
	"routinetracker/pkg/config"
)

type TrackerConfig struct {
	Mode      string `yaml:"mode"`
	ProfileID string `yaml:"profile_id"`
}

type Config struct {
	Server    config.ServerConfig    `yaml:"server"`
	Log       config.LogConfig       `yaml:"log"`
	Tracker   TrackerConfig          `yaml:"tracker"`
	Datastore config.DatastoreConfig `yaml:"datastore"`
	DB        config.DBConfig        `yaml:"db"`
	Redis     config.RedisConfig     `yaml:"redis"`
	MQ        config.MQConfig        `yaml:"mq"`
}

// Load reads CONFIG_DIR (default "config") for CONFIG_ENV (default "local")
// and applies environment overrides.
func Load() (*Config, error) {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")
	return LoadFrom(env, configDir)
}

func LoadFrom(env, configDir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := config.Decode(cfgMap, cfg); err != nil {
		return nil, err
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideDatastoreFromEnv(&cfg.Datastore)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideServerFromEnv(&cfg.Server)
	if mode := os.Getenv("TRACKER_MODE"); mode != "" {
		cfg.Tracker.Mode = mode
	}
	if id := os.Getenv("PROFILE_ID"); id != "" {
		cfg.Tracker.ProfileID = id
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default is the configuration used before files and environment are applied.
func Default() *Config {
	return &Config{
		Server:    config.ServerConfig{Port: ":8080"},
		Tracker:   TrackerConfig{Mode: string(routine.ModePerDay), ProfileID: "default"},
		Datastore: config.DatastoreConfig{Driver: DriverMemory, SQLitePath: "routines.db"},
		DB:        config.DBConfig{Host: "localhost", Port: 5432, SlowQueryMS: 100},
	}
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverREST     = "rest"
)

func (c *Config) Validate() error {
	if _, err := routine.ParseMode(c.Tracker.Mode); err != nil {
		return err
	}
	if c.Tracker.ProfileID == "" {
		return fmt.Errorf("tracker.profile_id is required")
	}
	switch c.Datastore.Driver {
	case DriverMemory, DriverPostgres:
	case DriverSQLite:
		if c.Datastore.SQLitePath == "" {
			return fmt.Errorf("datastore.sqlite_path is required for the sqlite driver")
		}
	case DriverREST:
		if c.Datastore.URL == "" || c.Datastore.Key == "" {
			return fmt.Errorf("datastore.url and datastore.key are required for the rest driver")
		}
	default:
		return fmt.Errorf("unknown datastore driver %q", c.Datastore.Driver)
	}
	return nil
}
