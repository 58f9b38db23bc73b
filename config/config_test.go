package config

import (
	"reflect"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"COUNTRYBOT_HTTP_ADDR", "COUNTRYBOT_API_TIMEOUT_SECONDS", "COUNTRYBOT_API_RETRY_ATTEMPTS",
		"COUNTRYBOT_ADMIN_USER", "COUNTRYBOT_ADMIN_PASSWORD", "COUNTRYBOT_ALLOWED_ORIGINS",
		"COUNTRYBOT_COUNTRIES_API_URL", "COUNTRYBOT_RETENTION_DAYS",
	} {
		t.Setenv(key, "")
	}

	if err := loadConfig(); err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", HTTPAddr, ":8080")
	}
	if APITimeoutSeconds != 10 {
		t.Errorf("APITimeoutSeconds = %d, want 10", APITimeoutSeconds)
	}
	if APIRetryAttempts != 3 {
		t.Errorf("APIRetryAttempts = %d, want 3", APIRetryAttempts)
	}
	if RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", RetentionDays)
	}
	if CountriesAPIURL != "https://restcountries.com/v3.1" {
		t.Errorf("CountriesAPIURL = %q", CountriesAPIURL)
	}
	if AllowedOrigins != nil {
		t.Errorf("AllowedOrigins = %v, want nil", AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("COUNTRYBOT_HTTP_ADDR", ":9090")
	t.Setenv("COUNTRYBOT_COUNTRIES_API_URL", "http://localhost:1234/v3.1/")
	t.Setenv("COUNTRYBOT_API_RETRY_ATTEMPTS", "5")
	t.Setenv("COUNTRYBOT_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("COUNTRYBOT_ADMIN_USER", "admin")
	t.Setenv("COUNTRYBOT_ADMIN_PASSWORD", "secret")

	if err := loadConfig(); err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", HTTPAddr)
	}
	if CountriesAPIURL != "http://localhost:1234/v3.1" {
		t.Errorf("CountriesAPIURL = %q, want trailing slash trimmed", CountriesAPIURL)
	}
	if APIRetryAttempts != 5 {
		t.Errorf("APIRetryAttempts = %d, want 5", APIRetryAttempts)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", AllowedOrigins, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "invalid integer",
			env:  map[string]string{"COUNTRYBOT_API_TIMEOUT_SECONDS": "ten"},
		},
		{
			name: "negative integer",
			env:  map[string]string{"COUNTRYBOT_RETENTION_DAYS": "-1"},
		},
		{
			name: "zero retry attempts",
			env:  map[string]string{"COUNTRYBOT_API_RETRY_ATTEMPTS": "0"},
		},
		{
			name: "admin user without password",
			env:  map[string]string{"COUNTRYBOT_ADMIN_USER": "admin", "COUNTRYBOT_ADMIN_PASSWORD": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COUNTRYBOT_API_TIMEOUT_SECONDS", "")
			t.Setenv("COUNTRYBOT_RETENTION_DAYS", "")
			t.Setenv("COUNTRYBOT_API_RETRY_ATTEMPTS", "")
			t.Setenv("COUNTRYBOT_ADMIN_USER", "")
			t.Setenv("COUNTRYBOT_ADMIN_PASSWORD", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if err := loadConfig(); err == nil {
				t.Error("loadConfig() error = nil, want error")
			}
		})
	}
}
