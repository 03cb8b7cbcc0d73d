package uploads

import (
	"context"

	"vitamend-data/internal/donation/domain/model"

	"golang.org/x/sync/errgroup"
)

// MaxConcurrent bounds simultaneous uploads of one batch.
const MaxConcurrent = 4

// UploadFunc stores one file and returns its URL, or nil on failure.
type UploadFunc func(ctx context.Context, file model.File) *string

// Fanout runs upload for every file concurrently and returns the URLs that
// succeeded in input order. Failed uploads are dropped.
func Fanout(ctx context.Context, files []model.File, upload UploadFunc) []string {
	results := make([]*string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrent)
	for i, f := range files {
		g.Go(func() error {
			results[i] = upload(gctx, f)
			return nil
		})
	}
	_ = g.Wait()

	urls := make([]string, 0, len(files))
	for _, u := range results {
		if u != nil && *u != "" {
			urls = append(urls, *u)
		}
	}
	return urls
}
