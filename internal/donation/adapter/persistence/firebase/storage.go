package firebase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"vitamend-data/internal/donation/domain/model"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const downloadHost = "https://firebasestorage.googleapis.com"

// ObjectStore writes and removes objects in one bucket.
type ObjectStore interface {
	Write(ctx context.Context, name, contentType string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// gcsObjects is the Cloud Storage implementation of ObjectStore.
type gcsObjects struct {
	bucket *storage.BucketHandle
}

func newGCSObjects(client *storage.Client, bucket string) *gcsObjects {
	return &gcsObjects{bucket: client.Bucket(bucket)}
}

func (g *gcsObjects) Write(ctx context.Context, name, contentType string, data []byte) error {
	w := g.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object %s: %w", name, err)
	}
	return w.Close()
}

func (g *gcsObjects) Delete(ctx context.Context, name string) error {
	return g.bucket.Object(name).Delete(ctx)
}

// objectName returns folder/<unix-ms>_<suffix>_<file name>. The suffix keeps
// same-named files of one batch apart.
func objectName(file model.File, folder string, now time.Time, suffix string) string {
	name := strings.ReplaceAll(file.Name, "/", "_")
	if name == "" {
		name = "upload." + file.Ext()
	}
	return fmt.Sprintf("%s/%d_%s_%s", model.FolderOrDefault(folder), now.UnixMilli(), suffix, name)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// downloadURL returns the public download URL of an object.
func downloadURL(bucket, name string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media", downloadHost, bucket, url.PathEscape(name))
}

// objectFromURL recovers the object name from a download URL, a gs:// URL or
// a storage.googleapis.com URL of bucket.
func objectFromURL(bucket, raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	var name string
	switch {
	case u.Scheme == "gs" && u.Host == bucket:
		name = strings.TrimPrefix(u.Path, "/")
	case "https://"+u.Host == downloadHost:
		prefix := "/v0/b/" + bucket + "/o/"
		if !strings.HasPrefix(u.Path, prefix) {
			return "", false
		}
		name = strings.TrimPrefix(u.Path, prefix)
	case u.Host == "storage.googleapis.com":
		prefix := "/" + bucket + "/"
		if !strings.HasPrefix(u.Path, prefix) {
			return "", false
		}
		name = strings.TrimPrefix(u.Path, prefix)
	default:
		return "", false
	}
	return name, name != ""
}
