/**
 * @description
 * This file handles configuration management for the registration service.
 * Settings come from environment variables, with defaults for everything except
 * the external connection URLs and the session secret.
 */
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the registration service.
type Config struct {
	ServerPort                string `mapstructure:"SERVER_PORT"`
	DatabaseURL               string `mapstructure:"DATABASE_URL"`
	RabbitMQURL               string `mapstructure:"RABBITMQ_URL"`
	RedisURL                  string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix      string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	SubmitRateLimitPerMinute  int    `mapstructure:"SUBMIT_RATE_LIMIT_PER_MINUTE"`
	SessionSecret             string `mapstructure:"SESSION_SECRET"`
	SessionIdleTimeoutMinutes int    `mapstructure:"SESSION_IDLE_TIMEOUT_MINUTES"`
	SessionSweepSchedule      string `mapstructure:"SESSION_SWEEP_SCHEDULE"`
	ToastDismissSeconds       int    `mapstructure:"TOAST_DISMISS_SECONDS"`
	SimulatedSubmitDelayMs    int    `mapstructure:"SIMULATED_SUBMIT_DELAY_MS"`
	SubmitTimeoutSeconds      int    `mapstructure:"SUBMIT_TIMEOUT_SECONDS"`
	AllowedOrigins            string `mapstructure:"ALLOWED_ORIGINS"`
	RegistrationExchange      string `mapstructure:"REGISTRATION_EXCHANGE"`
	RegistrationRoutingKey    string `mapstructure:"REGISTRATION_ROUTING_KEY"`
	BcryptCost                int    `mapstructure:"BCRYPT_COST"`
	SecureCookies             bool   `mapstructure:"SECURE_COOKIES"`
}

var keys = []string{
	"SERVER_PORT",
	"DATABASE_URL",
	"RABBITMQ_URL",
	"REDIS_URL",
	"REDIS_RATE_LIMIT_PREFIX",
	"SUBMIT_RATE_LIMIT_PER_MINUTE",
	"SESSION_SECRET",
	"SESSION_IDLE_TIMEOUT_MINUTES",
	"SESSION_SWEEP_SCHEDULE",
	"TOAST_DISMISS_SECONDS",
	"SIMULATED_SUBMIT_DELAY_MS",
	"SUBMIT_TIMEOUT_SECONDS",
	"ALLOWED_ORIGINS",
	"REGISTRATION_EXCHANGE",
	"REGISTRATION_ROUTING_KEY",
	"BCRYPT_COST",
	"SECURE_COOKIES",
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "poly:submit_limit")
	viper.SetDefault("SUBMIT_RATE_LIMIT_PER_MINUTE", 5)
	viper.SetDefault("SESSION_IDLE_TIMEOUT_MINUTES", 30)
	viper.SetDefault("SESSION_SWEEP_SCHEDULE", "@every 1m")
	viper.SetDefault("TOAST_DISMISS_SECONDS", 5)
	viper.SetDefault("SIMULATED_SUBMIT_DELAY_MS", 1000)
	viper.SetDefault("SUBMIT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("ALLOWED_ORIGINS", "")
	viper.SetDefault("REGISTRATION_EXCHANGE", "user_events")
	viper.SetDefault("REGISTRATION_ROUTING_KEY", "user.registered")
	viper.SetDefault("BCRYPT_COST", 0)
	viper.SetDefault("SECURE_COOKIES", false)

	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range keys {
		_ = viper.BindEnv(key)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// A platform-provided PORT wins over SERVER_PORT.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch {
	case c.ServerPort == "":
		return fmt.Errorf("SERVER_PORT must not be empty")
	case c.SubmitRateLimitPerMinute < 0:
		return fmt.Errorf("SUBMIT_RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.SubmitRateLimitPerMinute)
	case c.SessionIdleTimeoutMinutes < 0:
		return fmt.Errorf("SESSION_IDLE_TIMEOUT_MINUTES must not be negative, got %d", c.SessionIdleTimeoutMinutes)
	case c.ToastDismissSeconds <= 0:
		return fmt.Errorf("TOAST_DISMISS_SECONDS must be positive, got %d", c.ToastDismissSeconds)
	case c.SimulatedSubmitDelayMs < 0:
		return fmt.Errorf("SIMULATED_SUBMIT_DELAY_MS must not be negative, got %d", c.SimulatedSubmitDelayMs)
	case c.SubmitTimeoutSeconds <= 0:
		return fmt.Errorf("SUBMIT_TIMEOUT_SECONDS must be positive, got %d", c.SubmitTimeoutSeconds)
	case c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31):
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

// SessionIdleTimeout is the idle period after which a wizard session is ended.
func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.SessionIdleTimeoutMinutes) * time.Minute
}

// ToastDismissAfter is how long a toast stays visible.
func (c *Config) ToastDismissAfter() time.Duration {
	return time.Duration(c.ToastDismissSeconds) * time.Second
}

// SimulatedSubmitDelay is the latency of the simulated registration backend.
func (c *Config) SimulatedSubmitDelay() time.Duration {
	return time.Duration(c.SimulatedSubmitDelayMs) * time.Millisecond
}

// SubmitTimeout bounds a single registration attempt.
func (c *Config) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
