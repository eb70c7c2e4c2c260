// Package config loads server configuration from YAML with environment
// overrides for deployment-specific values.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Data   DataConfig   `yaml:"data" json:"data"`
	Auth   AuthConfig   `yaml:"auth" json:"auth"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type DataConfig struct {
	Dir string `yaml:"dir" json:"dir"`
	// DBPath defaults to <dir>/daybook.db.
	DBPath string `yaml:"db_path" json:"db_path"`
}

type AuthConfig struct {
	CookieName      string `yaml:"cookie_name" json:"cookie_name"`
	OTPTTLMinutes   int    `yaml:"otp_ttl_minutes" json:"otp_ttl_minutes"`
	SessionTTLHours int    `yaml:"session_ttl_hours" json:"session_ttl_hours"`
	MaxOTPAttempts  int    `yaml:"max_otp_attempts" json:"max_otp_attempts"`
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.DBPath == "" {
		c.Data.DBPath = c.Data.Dir + "/daybook.db"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "daybook_session"
	}
	if c.Auth.OTPTTLMinutes <= 0 {
		c.Auth.OTPTTLMinutes = 10
	}
	if c.Auth.SessionTTLHours <= 0 {
		c.Auth.SessionTTLHours = 30 * 24
	}
	if c.Auth.MaxOTPAttempts <= 0 {
		c.Auth.MaxOTPAttempts = 5
	}
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.Auth.OTPTTLMinutes) * time.Minute
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

// applyEnv overlays DAYBOOK_* environment variables on top of whatever
// the file provided.
func (c *Config) applyEnv() {
	if v := os.Getenv("DAYBOOK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DAYBOOK_DATA_DIR"); v != "" {
		c.Data.Dir = v
		c.Data.DBPath = ""
	}
	if v := os.Getenv("DAYBOOK_DB_PATH"); v != "" {
		c.Data.DBPath = v
	}
	if v := getEnvInt("DAYBOOK_OTP_TTL_MINUTES"); v > 0 {
		c.Auth.OTPTTLMinutes = v
	}
	if v := getEnvInt("DAYBOOK_SESSION_TTL_HOURS"); v > 0 {
		c.Auth.SessionTTLHours = v
	}
	if v := getEnvInt("DAYBOOK_OTP_MAX_ATTEMPTS"); v > 0 {
		c.Auth.MaxOTPAttempts = v
	}
}

// Load reads the YAML file at path. A missing file is not an error; the
// defaults plus environment overrides stand alone.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}
	c.applyEnv()
	c.ApplyDefaults()
	return &c, nil
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
