package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediabox/service/internal/config"
)

func TestResourceTypeFor(t *testing.T) {
	cases := map[string]ResourceType{
		"image/png":       ResourceImage,
		"image/svg+xml":   ResourceImage,
		"video/mp4":       ResourceVideo,
		"application/pdf": ResourceRaw,
		"audio/mpeg":      ResourceRaw,
		"":                ResourceRaw,
		"IMAGE/PNG":       ResourceRaw,
	}
	for mime, want := range cases {
		assert.Equal(t, want, ResourceTypeFor(mime), mime)
	}
}

func TestErrorMatchesErrProvider(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("upload: %w", &Error{Provider: "cloudinary", Op: "upload", Message: "timeout", Err: cause})

	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, cause)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "timeout", perr.Message)
	assert.Equal(t, "cloudinary upload: timeout", perr.Error())
}

func TestUnconfigured(t *testing.T) {
	p := Unconfigured{Provider: "cloudinary"}
	assert.Equal(t, "cloudinary", p.Name())

	_, err := p.Upload(context.Background(), UploadInput{})
	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, ErrNotConfigured)

	err = p.Delete(context.Background(), "file-uploads/a", ResourceImage)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewWithoutCredentialsIsUnconfigured(t *testing.T) {
	for _, name := range []string{config.ProviderCloudinary, config.ProviderMinio} {
		p, err := New(context.Background(), &config.Config{StorageProvider: name})
		require.NoError(t, err)
		assert.Equal(t, Unconfigured{Provider: name}, p)
	}
}

func TestNewCloudinary(t *testing.T) {
	p, err := New(context.Background(), &config.Config{
		StorageProvider:     config.ProviderCloudinary,
		CloudinaryCloudName: "demo",
		CloudinaryAPIKey:    "key",
		CloudinaryAPISecret: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "cloudinary", p.Name())
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), &config.Config{StorageProvider: "ftp"})
	assert.Error(t, err)
}

func TestCloudinaryThumbnailURL(t *testing.T) {
	s, err := NewCloudinaryStorage("demo", "key", "secret", Folder)
	require.NoError(t, err)

	u := s.thumbnailURL("file-uploads/cat_x1y2")
	assert.True(t, strings.HasPrefix(u, "https://"), u)
	assert.Contains(t, u, thumbnailTransformation)
	assert.Contains(t, u, "file-uploads/cat_x1y2")
}

func TestObjectKey(t *testing.T) {
	a := objectKey(Folder, "Holiday.JPG")
	b := objectKey(Folder, "Holiday.JPG")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, Folder+"/"))
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.Equal(t, Folder+"/", objectKey(Folder, "README")[:len(Folder)+1])
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "png", formatOf("a.PNG"))
	assert.Equal(t, "gz", formatOf("backup.tar.gz"))
	assert.Equal(t, "", formatOf("Makefile"))
}

func TestPublicReadPolicy(t *testing.T) {
	var policy map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(publicReadPolicy("media")), &policy))

	stmts := policy["Statement"].([]interface{})
	require.Len(t, stmts, 1)
	assert.Equal(t, "arn:aws:s3:::media/*", stmts[0].(map[string]interface{})["Resource"])
}
