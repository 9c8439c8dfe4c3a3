package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "HTTP_PORT", "YAKSOK_HTTP_PORT", "GRPC_PORT", "YAKSOK_GRPC_PORT", "YAKSOK_REQUEST_TIMEOUT", "YAKSOK_JOIN_BURST", "YAKSOK_HTTP_TRUSTED_PROXIES", "TRUSTED_PROXIES"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.GRPCPort != 50051 {
		t.Fatalf("ports = %d/%d, want 8080/50051", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.JoinBurst != 5 {
		t.Fatalf("JoinBurst = %d, want 5", cfg.JoinBurst)
	}
	if cfg.TrustedProxies != nil {
		t.Fatalf("TrustedProxies = %v, want none", cfg.TrustedProxies)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("YAKSOK_HTTP_PORT", "9090")
	t.Setenv("GRPC_HOST", "127.0.0.1")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")
	t.Setenv("YAKSOK_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("YAKSOK_JOIN_RATE_PER_SECOND", "0.5")
	t.Setenv("YAKSOK_HTTP_TRUSTED_PROXIES", " 10.0.0.1, ,10.0.1.0/24 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr() != "0.0.0.0:9090" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr())
	}
	if cfg.GRPCAddr() != "127.0.0.1:50051" {
		t.Fatalf("GRPCAddr = %q", cfg.GRPCAddr())
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/app" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.JWTSecret != "s3cret" || cfg.JoinRatePerSecond != 0.5 {
		t.Fatalf("auth/join = %q/%v", cfg.JWTSecret, cfg.JoinRatePerSecond)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.1" || cfg.TrustedProxies[1] != "10.0.1.0/24" {
		t.Fatalf("TrustedProxies = %q", cfg.TrustedProxies)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("YAKSOK_REQUEST_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
