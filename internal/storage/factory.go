package storage

import (
	"context"
	"fmt"

	"github.com/mediabox/service/internal/config"
)

// Unconfigured fails every call with ErrNotConfigured. The server still starts
// without credentials and reports the problem per request.
type Unconfigured struct {
	Provider string
}

// Name implements Provider.
func (u Unconfigured) Name() string { return u.Provider }

// Upload implements Provider.
func (u Unconfigured) Upload(context.Context, UploadInput) (*UploadResult, error) {
	return nil, &Error{Provider: u.Provider, Op: "upload", Message: ErrNotConfigured.Error(), Err: ErrNotConfigured}
}

// Delete implements Provider.
func (u Unconfigured) Delete(context.Context, string, ResourceType) error {
	return &Error{Provider: u.Provider, Op: "destroy", Message: ErrNotConfigured.Error(), Err: ErrNotConfigured}
}

// New builds the provider selected by cfg.StorageProvider. A provider missing
// credentials comes back as Unconfigured rather than an error.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.StorageProvider {
	case config.ProviderCloudinary:
		if !cfg.CloudinaryConfigured() {
			return Unconfigured{Provider: config.ProviderCloudinary}, nil
		}
		return NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, Folder)
	case config.ProviderMinio:
		if !cfg.MinioConfigured() {
			return Unconfigured{Provider: config.ProviderMinio}, nil
		}
		return NewMinioStorage(ctx,
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			Folder,
			cfg.StoragePublicBase,
			cfg.StorageUseSSL,
		)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}
