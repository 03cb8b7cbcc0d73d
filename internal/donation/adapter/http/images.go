package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStore backs the bridge's image routes.
type ImageStore interface {
	// Upload stores file under folder and returns its public URL.
	Upload(ctx context.Context, file model.File, folder string) (string, error)
	// Destroy removes the image behind url. Foreign URLs report false.
	Destroy(ctx context.Context, url string) (bool, error)
}

// CloudinaryImages stores images in a Cloudinary account.
type CloudinaryImages struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewCloudinaryImages creates the Cloudinary client from cfg.
func NewCloudinaryImages(cfg config.CloudinaryConfig) (*CloudinaryImages, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryImages{cld: cld, cloudName: cfg.CloudName}, nil
}

func (c *CloudinaryImages) Upload(ctx context.Context, file model.File, folder string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, bytes.NewReader(file.Data), uploader.UploadParams{
		Folder: model.FolderOrDefault(folder),
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", errors.New(resp.Error.Message)
	}
	return resp.SecureURL, nil
}

func (c *CloudinaryImages) Destroy(ctx context.Context, imageURL string) (bool, error) {
	publicID, ok := publicIDFromURL(c.cloudName, imageURL)
	if !ok {
		return false, nil
	}
	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return false, fmt.Errorf("delete error: %w", err)
	}
	return resp.Result == "ok", nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// publicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v1234567890/donations/abc123.jpg.
func publicIDFromURL(cloudName, imageURL string) (string, bool) {
	u, err := url.Parse(imageURL)
	if err != nil || u.Host != "res.cloudinary.com" {
		return "", false
	}

	parts := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	// <cloud>/<resource type>/upload/...
	if len(parts) < 4 || parts[0] != cloudName || parts[2] != "upload" {
		return "", false
	}

	rest := parts[3:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}
	joined := path.Join(rest...)
	publicID := strings.TrimSuffix(joined, path.Ext(joined))
	return publicID, publicID != ""
}
