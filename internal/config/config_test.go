package config

import "testing"

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error when DATABASE_URL is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tasklog")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.FrontendURL != "http://localhost:3000" {
		t.Errorf("Expected default frontend URL, got %s", cfg.FrontendURL)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Expected default Redis URL, got %s", cfg.RedisURL)
	}
	if cfg.OIDCProvider != "firebase" {
		t.Errorf("Expected default OIDC provider firebase, got %s", cfg.OIDCProvider)
	}
	if cfg.EnableHSTS || cfg.ServerDebugMode || cfg.OTELEnabled {
		t.Error("Expected boolean settings to default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/tasklog")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OIDC_PROVIDER", "cognito")
	t.Setenv("ENABLE_HSTS", "true")
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.ServerPort)
	}
	if cfg.OIDCProvider != "cognito" {
		t.Errorf("Expected provider cognito, got %s", cfg.OIDCProvider)
	}
	if !cfg.EnableHSTS {
		t.Error("Expected HSTS enabled")
	}
	if !cfg.OTELEnabled || cfg.OTELEndpoint != "collector:4318" {
		t.Errorf("Expected OTEL enabled with endpoint, got %v %s", cfg.OTELEnabled, cfg.OTELEndpoint)
	}
}
