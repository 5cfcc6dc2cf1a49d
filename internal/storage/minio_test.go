package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestNewMinIOStorage_InvalidEndpoint(t *testing.T) {
	cfg := MinIOConfig{
		Endpoint:  "invalid-endpoint:port:scheme", // Invalid format
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "test-bucket",
		UseSSL:    false,
	}

	_, err := NewMinIOStorage(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error with invalid endpoint, got nil")
	}
}

func TestNewMinIOStorage_ConnectionRefused(t *testing.T) {
	// Test connection failure (assuming no MinIO at localhost:12345)
	cfg := MinIOConfig{
		Endpoint:  "localhost:12345",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "test-bucket",
		UseSSL:    false,
	}

	// Note: minio.New() doesn't connect immediately, but BucketExists does.
	_, err := NewMinIOStorage(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error connecting to non-existent minio, got nil")
	}
}

func loadMinIOConfigFromEnv(t *testing.T) MinIOConfig {
	t.Helper()
	godotenv.Load("../../.env.test")

	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	if endpoint == "" || accessKey == "" || secretKey == "" {
		t.Fatalf("MINIO_ENDPOINT, MINIO_ACCESS_KEY, and MINIO_SECRET_KEY must be set for integration tests")
	}

	return MinIOConfig{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    useSSL,
	}
}

func TestMinIOStorage_RoundTrip_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := loadMinIOConfigFromEnv(t)
	cfg.Bucket = "test-bucket-" + time.Now().Format("20060102-150405")
	cfg.TmpDir = t.TempDir()

	ctx := context.Background()
	s, err := NewMinIOStorage(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to initialize minio storage: %v", err)
	}

	key := "ds/2024/01.grib"
	staging := filepath.Join(t.TempDir(), "01.grib")
	if err := os.WriteFile(staging, []byte("hello minio"), 0o644); err != nil {
		t.Fatalf("failed to stage file: %v", err)
	}

	exists, err := s.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Fatal("key should not exist yet")
	}

	if err := s.Save(ctx, staging, key); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	exists, err = s.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Fatal("key should exist after Save")
	}

	keys, err := s.List(ctx, "ds/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Fatalf("List() = %v, want [%s]", keys, key)
	}

	local, err := s.GetLocalPath(ctx, key)
	if err != nil {
		t.Fatalf("GetLocalPath() error = %v", err)
	}
	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("failed to read %s: %v", local, err)
	}
	if string(data) != "hello minio" {
		t.Fatalf("unexpected content: got %q", string(data))
	}
}
