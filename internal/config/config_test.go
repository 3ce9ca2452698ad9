package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_PROVIDER", "")
	t.Setenv("UPLOAD_CONCURRENCY", "")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ProviderCloudinary, cfg.StorageProvider)
	assert.Equal(t, int64(4), cfg.UploadConcurrency)
	assert.False(t, cfg.CloudinaryConfigured())
	assert.False(t, cfg.JournalEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_PROVIDER", ProviderMinio)
	t.Setenv("UPLOAD_CONCURRENCY", "9")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/mediabox")

	cfg := Load()
	assert.Equal(t, "8081", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ProviderMinio, cfg.StorageProvider)
	assert.Equal(t, int64(9), cfg.UploadConcurrency)
	assert.True(t, cfg.CloudinaryConfigured())
	assert.True(t, cfg.JournalEnabled())
}

func TestLoadInvalidConcurrencyFallsBack(t *testing.T) {
	t.Setenv("UPLOAD_CONCURRENCY", "zero")
	assert.Equal(t, int64(4), Load().UploadConcurrency)

	t.Setenv("UPLOAD_CONCURRENCY", "-2")
	assert.Equal(t, int64(4), Load().UploadConcurrency)
}

func TestCloudinaryConfiguredNeedsAllCredentials(t *testing.T) {
	cfg := &Config{CloudinaryCloudName: "demo", CloudinaryAPIKey: "key"}
	assert.False(t, cfg.CloudinaryConfigured())

	cfg.CloudinaryAPISecret = "secret"
	assert.True(t, cfg.CloudinaryConfigured())
}
