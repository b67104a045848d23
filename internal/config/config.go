package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL     string `yaml:"server_url"`
	APIAddr       string `yaml:"api_addr"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	Headless      bool   `yaml:"headless"`
	SessionID     string `yaml:"session_id"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// FromEnv reads the configuration from the environment, falling back to
// defaults.
func FromEnv() Config {
	return Config{
		ServerURL:     getenv("GRID_SERVER_URL", "ws://127.0.0.1:8080/ws"),
		APIAddr:       getenv("GRID_API_ADDR", "127.0.0.1:8081"),
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),
		LogLevel:      getenv("GRID_LOG_LEVEL", "info"),
		LogFile:       getenv("GRID_LOG_FILE", "client.log"),
		Headless:      getenvBool("GRID_HEADLESS", false),
		SessionID:     getenv("GRID_SESSION_ID", ""),
	}
}

// Load starts from FromEnv and, when path is set, overlays the non-zero
// fields of the YAML file there.
func Load(path string) (Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(b, &file); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.overlay(file)
	return cfg, nil
}

func (c *Config) overlay(o Config) {
	if o.ServerURL != "" {
		c.ServerURL = o.ServerURL
	}
	if o.APIAddr != "" {
		c.APIAddr = o.APIAddr
	}
	if o.RedisAddr != "" {
		c.RedisAddr = o.RedisAddr
	}
	if o.RedisPassword != "" {
		c.RedisPassword = o.RedisPassword
	}
	if o.RedisDB != 0 {
		c.RedisDB = o.RedisDB
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	if o.Headless {
		c.Headless = true
	}
	if o.SessionID != "" {
		c.SessionID = o.SessionID
	}
}
