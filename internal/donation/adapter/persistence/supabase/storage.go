package supabase

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of the S3 client used by the storage bucket.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewObjectClient builds an S3 client against the project's S3-compatible
// storage endpoint.
func NewObjectClient(ctx context.Context, cfg config.SupabaseConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load storage client config: %w", err)
	}

	return s3.New(s3.Options{
		Region:       awsCfg.Region,
		Credentials:  awsCfg.Credentials,
		HTTPClient:   awsCfg.HTTPClient,
		BaseEndpoint: aws.String(cfg.S3Endpoint),
		UsePathStyle: true,
	}), nil
}

// bucket stores images in the project's storage bucket and maps object keys
// to public URLs.
type bucket struct {
	api    ObjectAPI
	cfg    config.SupabaseConfig
	now    func() time.Time
	random func() string
}

func newBucket(api ObjectAPI, cfg config.SupabaseConfig) *bucket {
	return &bucket{
		api:    api,
		cfg:    cfg,
		now:    time.Now,
		random: randomSuffix,
	}
}

func randomSuffix() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 7)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// objectKey returns folder/<unix-ms>-<random>.<ext>.
func (b *bucket) objectKey(file model.File, folder string) string {
	return fmt.Sprintf("%s/%d-%s.%s", model.FolderOrDefault(folder), b.now().UnixMilli(), b.random(), file.Ext())
}

func (b *bucket) upload(ctx context.Context, file model.File, folder string) (string, error) {
	key := b.objectKey(file, folder)
	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.cfg.StorageBucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(file.Data),
		ContentType:  aws.String(file.MimeType()),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return "", err
	}
	return b.cfg.PublicObjectURL(key), nil
}

// keyFromURL extracts the object key from a public URL of this bucket.
func (b *bucket) keyFromURL(url string) (string, bool) {
	marker := b.cfg.StorageBucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	key := url[idx+len(marker):]
	if q := strings.IndexAny(key, "?#"); q >= 0 {
		key = key[:q]
	}
	return key, key != ""
}

func (b *bucket) remove(ctx context.Context, url string) (bool, error) {
	key, ok := b.keyFromURL(url)
	if !ok {
		return false, nil
	}
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.cfg.StorageBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
