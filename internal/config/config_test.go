package config

import (
	"testing"

	"github.com/ilyakaznacheev/cleanenv"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Submission.CooldownSeconds != 20 {
		t.Fatalf("Expected a 20 second cooldown default, got %d", cfg.Submission.CooldownSeconds)
	}
	if cfg.Media.MaxFileSize != 4<<20 {
		t.Fatalf("Expected a 4 MiB photo cap default, got %d", cfg.Media.MaxFileSize)
	}
	if len(cfg.Media.AllowedMimeTypes) != 3 {
		t.Fatalf("Expected 3 allowed photo types, got %v", cfg.Media.AllowedMimeTypes)
	}
	if cfg.MinIO.BucketName != "farewell-photos" {
		t.Fatalf("Expected the default bucket name, got %q", cfg.MinIO.BucketName)
	}
}

func TestConfiguredPredicates(t *testing.T) {
	if (PGSQL{}).Configured() {
		t.Fatal("Expected an empty PGSQL config to be unconfigured")
	}
	if !(PGSQL{Host: "db.local", Password: "secret"}).Configured() {
		t.Fatal("Expected host+password to count as configured")
	}
	if (PGSQL{Host: "db.local"}).Configured() {
		t.Fatal("Expected a missing credential to count as unconfigured")
	}

	if (MinIO{}).Configured() {
		t.Fatal("Expected an empty MinIO config to be unconfigured")
	}
	if !(MinIO{Endpoint: "minio.local:9000", AccessKeyID: "k", SecretAccessKey: "s"}).Configured() {
		t.Fatal("Expected endpoint+credentials to count as configured")
	}

	if (Redis{}).Configured() {
		t.Fatal("Expected an empty Redis config to be unconfigured")
	}
	if !(Redis{Addr: "localhost:6379"}).Configured() {
		t.Fatal("Expected an addr to count as configured")
	}
}
