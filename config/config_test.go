package config

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Enabled {
		t.Error("history db enabled by default")
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("db defaults = %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != 6379 {
		t.Errorf("redis defaults = %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	}
	if cfg.CORS.AllowedOrigins != "*" {
		t.Errorf("cors default = %q", cfg.CORS.AllowedOrigins)
	}
	if cfg.Model.Dir != "models" || cfg.Model.DataDir != "data" {
		t.Errorf("model dirs = %q/%q", cfg.Model.Dir, cfg.Model.DataDir)
	}
	if cfg.Model.CacheTTL != 600 {
		t.Errorf("forecast cache ttl = %d, want 600", cfg.Model.CacheTTL)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("HISTORY_DB_ENABLED", "true")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("MODEL_DIR", "/srv/models")
	t.Setenv("FORECAST_CACHE_TTL_SEC", "120")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Database.Enabled {
		t.Error("history db not enabled")
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Errorf("db config = %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Redis.Host != "cache.internal" {
		t.Errorf("redis host = %q", cfg.Redis.Host)
	}
	if cfg.Model.Dir != "/srv/models" {
		t.Errorf("model dir = %q", cfg.Model.Dir)
	}
	if cfg.Model.CacheTTL != 120 {
		t.Errorf("forecast cache ttl = %d, want 120", cfg.Model.CacheTTL)
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for non-numeric SERVER_PORT")
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "subway",
		Password: "secret",
		Name:     "subway_delays",
		SSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=subway password=secret dbname=subway_delays sslmode=disable"
	if got := db.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

func TestModelPaths(t *testing.T) {
	m := ModelConfig{Dir: "models"}

	tests := []struct {
		got  string
		want string
	}{
		{m.ModelPath(), filepath.Join("models", "trained", "trained_model.json")},
		{m.DelayRatesPath(), filepath.Join("models", "delay_rates.json")},
		{m.ConfigPath(), filepath.Join("models", "model_config.json")},
		{m.MetricsPath(), filepath.Join("models", "metrics", "test_metrics.json")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("path = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SOME_STRING", "value")
	if got := getEnv("SOME_STRING", "fallback"); got != "value" {
		t.Errorf("getEnv set = %q", got)
	}
	if got := getEnv("UNSET_STRING_KEY", "fallback"); got != "fallback" {
		t.Errorf("getEnv unset = %q", got)
	}

	t.Setenv("SOME_INT", "17")
	if got, err := getIntEnv("SOME_INT", 3); err != nil || got != 17 {
		t.Errorf("getIntEnv set = %d, %v", got, err)
	}
	if got, err := getIntEnv("UNSET_INT_KEY", 3); err != nil || got != 3 {
		t.Errorf("getIntEnv unset = %d, %v", got, err)
	}
	t.Setenv("BAD_INT", "seventeen")
	if _, err := getIntEnv("BAD_INT", 3); err == nil {
		t.Error("getIntEnv accepted a non-numeric value")
	}
}
