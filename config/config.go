package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

func LoadEnv() (err error) {
	godotenv.Load()
	return loadConfig()
}

var (
	HTTPAddr                 = ":8080"
	PostgresConnectionString = ""
	CountriesAPIURL          = "https://restcountries.com/v3.1"
	APITimeoutSeconds        = 10
	APIRetryAttempts         = 3
	CacheTTLSeconds          = 3600
	AllowedOrigins           []string
	DefaultLanguage          = "en"
	AdminUser                = ""
	AdminPassword            = ""
	RetentionDays            = 30
	ChatRateLimit            = 20
	ConsoleOutput            = false
	LogLevel                 = "debug"
)

func loadConfig() error {
	HTTPAddr = stringEnv("COUNTRYBOT_HTTP_ADDR", ":8080")
	PostgresConnectionString = os.Getenv("COUNTRYBOT_POSTGRES_CONNECTION_STRING")
	CountriesAPIURL = strings.TrimRight(stringEnv("COUNTRYBOT_COUNTRIES_API_URL", "https://restcountries.com/v3.1"), "/")
	DefaultLanguage = stringEnv("COUNTRYBOT_DEFAULT_LANGUAGE", "en")
	AdminUser = os.Getenv("COUNTRYBOT_ADMIN_USER")
	AdminPassword = os.Getenv("COUNTRYBOT_ADMIN_PASSWORD")
	LogLevel = stringEnv("COUNTRYBOT_LOG_LEVEL", "debug")
	ConsoleOutput = os.Getenv("COUNTRYBOT_CONSOLE_OUTPUT") == "true"
	AllowedOrigins = splitList(os.Getenv("COUNTRYBOT_ALLOWED_ORIGINS"))

	var err error
	if APITimeoutSeconds, err = intEnv("COUNTRYBOT_API_TIMEOUT_SECONDS", 10); err != nil {
		return err
	}
	if APIRetryAttempts, err = intEnv("COUNTRYBOT_API_RETRY_ATTEMPTS", 3); err != nil {
		return err
	}
	if CacheTTLSeconds, err = intEnv("COUNTRYBOT_CACHE_TTL_SECONDS", 3600); err != nil {
		return err
	}
	if RetentionDays, err = intEnv("COUNTRYBOT_RETENTION_DAYS", 30); err != nil {
		return err
	}
	if ChatRateLimit, err = intEnv("COUNTRYBOT_CHAT_RATE_LIMIT", 20); err != nil {
		return err
	}

	if APIRetryAttempts < 1 {
		return fmt.Errorf("COUNTRYBOT_API_RETRY_ATTEMPTS must be at least 1")
	}
	if (AdminUser == "") != (AdminPassword == "") {
		return fmt.Errorf("COUNTRYBOT_ADMIN_USER and COUNTRYBOT_ADMIN_PASSWORD must be set together")
	}
	return nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid integer: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
