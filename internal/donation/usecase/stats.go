package usecase

import (
	"context"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/logger"

	"golang.org/x/sync/errgroup"
)

// StatsUsecase derives the transparency counters from the active adapter.
type StatsUsecase struct {
	source AdapterSource
	log    logger.Logger
}

func NewStatsUsecase(source AdapterSource, log logger.Logger) *StatsUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &StatsUsecase{source: source, log: log.WithComponent("stats-usecase")}
}

// Stats reads donations and volunteers in parallel and counts them.
func (u *StatsUsecase) Stats(ctx context.Context) (model.DonationStats, error) {
	adapter, err := u.source.Get(ctx)
	if err != nil {
		return model.DonationStats{}, err
	}

	var (
		donations  []model.Donation
		volunteers []model.Volunteer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		donations = adapter.GetDonations(gctx)
		return nil
	})
	g.Go(func() error {
		volunteers = adapter.GetVolunteers(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.DonationStats{}, err
	}

	stats := model.ComputeStats(donations, volunteers)
	u.log.WithContext(ctx).Debugf("Stats over %d donations and %d volunteers", len(donations), len(volunteers))
	return stats, nil
}
