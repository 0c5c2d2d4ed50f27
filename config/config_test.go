package config

import (
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.PatientsURL != DefaultPatientsURL {
		t.Errorf("Expected default patients URL, got %s", cfg.PatientsURL)
	}
	if cfg.PatientsCredential != DefaultCredential {
		t.Errorf("Expected default credential, got %s", cfg.PatientsCredential)
	}
	if cfg.TargetPatient != "Jessica Taylor" {
		t.Errorf("Expected default target Jessica Taylor, got %s", cfg.TargetPatient)
	}
	if cfg.ProbeIntervalMinutes != 15 {
		t.Errorf("Expected default probe interval 15, got %d", cfg.ProbeIntervalMinutes)
	}
	if !cfg.IsDev() {
		t.Error("Expected IsDev to be true by default")
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PATIENTS_API_URL", "http://127.0.0.1:9999/patients")
	t.Setenv("PATIENTS_API_CREDENTIAL", "user:secret")
	t.Setenv("TARGET_PATIENT", "Emily Williams")
	t.Setenv("PROBE_INTERVAL_MINUTES", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Expected env prod, got %s", cfg.Env)
	}
	if cfg.TargetPatient != "Emily Williams" {
		t.Errorf("Expected target Emily Williams, got %s", cfg.TargetPatient)
	}
	if cfg.ProbeIntervalMinutes != 0 {
		t.Errorf("Expected probe interval 0, got %d", cfg.ProbeIntervalMinutes)
	}
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		key      string
		value    string
		expected string
	}{
		{"PORT", "abc", "PORT must be a valid number"},
		{"PORT", "65536", "PORT must be between 1 and 65535"},
		{"PORT", "80", "PORT 80 is privileged"},
		{"ADDRESS", "not-an-ip", "ADDRESS must be a valid IP address"},
		{"ENV", "qa", "ENV must be one of"},
		{"LOG_LEVEL", "verbose", "LOG_LEVEL must be one of"},
		{"MAX_REQUEST_BODY", "-1", "MAX_REQUEST_BODY must be positive"},
		{"LOG_RETENTION_WEEKS", "60", "LOG_RETENTION_WEEKS"},
		{"MAX_LOG_FILE_SIZE", "1024", "MAX_LOG_FILE_SIZE"},
		{"PATIENTS_API_URL", "ftp://example.com", "scheme must be http or https"},
		{"PATIENTS_API_CREDENTIAL", "nocolon", "expected user:password"},
		{"TARGET_PATIENT", "   ", "TARGET_PATIENT"},
		{"PROBE_INTERVAL_MINUTES", "-5", "PROBE_INTERVAL_MINUTES"},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Expected error for %s=%q", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestGetEnvVars(t *testing.T) {
	vars := GetEnvVars()
	for _, want := range []string{"PORT", "PATIENTS_API_URL", "TARGET_PATIENT"} {
		found := false
		for _, v := range vars {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s in GetEnvVars()", want)
		}
	}
}
