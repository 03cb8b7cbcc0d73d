package uploads

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"vitamend-data/internal/donation/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestFanout_PreservesOrderAndDropsFailures(t *testing.T) {
	files := []model.File{{Name: "a.png"}, {Name: "fail.png"}, {Name: "c.png"}, {Name: "d.png"}}

	urls := Fanout(context.Background(), files, func(ctx context.Context, f model.File) *string {
		if f.Name == "fail.png" {
			return nil
		}
		// Later files finish first.
		if f.Name == "a.png" {
			time.Sleep(20 * time.Millisecond)
		}
		u := "https://cdn/" + f.Name
		return &u
	})

	assert.Equal(t, []string{"https://cdn/a.png", "https://cdn/c.png", "https://cdn/d.png"}, urls)
}

func TestFanout_Empty(t *testing.T) {
	urls := Fanout(context.Background(), nil, func(ctx context.Context, f model.File) *string {
		t.Fatal("should not be called")
		return nil
	})
	assert.Empty(t, urls)
	assert.NotNil(t, urls)
}

func TestFanout_BoundsConcurrency(t *testing.T) {
	files := make([]model.File, 12)
	var inFlight, peak int32

	Fanout(context.Background(), files, func(ctx context.Context, f model.File) *string {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(MaxConcurrent))
}
