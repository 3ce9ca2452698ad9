package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const thumbnailTransformation = "c_fill,h_200,w_200"

// CloudinaryStorage implements Provider on the Cloudinary upload API.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStorage creates a Cloudinary client that issues https URLs.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStorage{cld: cld, folder: folder}, nil
}

// Name implements Provider.
func (s *CloudinaryStorage) Name() string { return "cloudinary" }

// Upload sends the file into the configured folder. Cloudinary appends a
// random suffix to the original filename so public IDs never collide.
func (s *CloudinaryStorage) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	res, err := s.cld.Upload.Upload(ctx, in.Reader, uploader.UploadParams{
		Folder:         s.folder,
		ResourceType:   string(in.ResourceType),
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return nil, &Error{Provider: s.Name(), Op: "upload", Message: err.Error(), Err: err}
	}
	if res.Error.Message != "" {
		return nil, &Error{Provider: s.Name(), Op: "upload", Message: res.Error.Message}
	}

	out := &UploadResult{
		PublicID:     res.PublicID,
		URL:          res.SecureURL,
		Format:       res.Format,
		ResourceType: ResourceType(res.ResourceType),
		Bytes:        int64(res.Bytes),
	}
	if out.ResourceType == ResourceImage {
		out.ThumbnailURL = s.thumbnailURL(res.PublicID)
	}
	return out, nil
}

// Delete destroys the asset. Cloudinary needs the resource type the asset was
// stored under; anything other than an "ok" result is a failure.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string, resourceType ResourceType) error {
	if resourceType == "" || resourceType == ResourceAuto {
		resourceType = ResourceImage
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(resourceType),
	})
	if err != nil {
		return &Error{Provider: s.Name(), Op: "destroy", Message: err.Error(), Err: err}
	}
	if res.Error.Message != "" {
		return &Error{Provider: s.Name(), Op: "destroy", Message: res.Error.Message}
	}
	if res.Result != "ok" {
		return &Error{Provider: s.Name(), Op: "destroy", Message: fmt.Sprintf("destroy %q returned %q", publicID, res.Result)}
	}
	return nil
}

// thumbnailURL builds a square delivery URL for an image. An empty string
// means the caller should fall back to the full-size URL.
func (s *CloudinaryStorage) thumbnailURL(publicID string) string {
	img, err := s.cld.Image(publicID)
	if err != nil {
		return ""
	}
	img.Transformation = thumbnailTransformation
	u, err := img.String()
	if err != nil {
		return ""
	}
	return u
}
