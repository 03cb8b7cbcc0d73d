package usecase

import (
	"context"
	"fmt"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/logger"
)

// DonationFolder is where donation photos are uploaded.
const DonationFolder = "donations"

// DonationUsecase runs the donation workflows that span several adapter calls.
type DonationUsecase struct {
	source AdapterSource
	policy *StatusPolicy
	log    logger.Logger
}

// NewDonationUsecase creates the use case. policy may be nil.
func NewDonationUsecase(source AdapterSource, policy *StatusPolicy, log logger.Logger) *DonationUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &DonationUsecase{
		source: source,
		policy: policy,
		log:    log.WithComponent("donation-usecase"),
	}
}

// SubmitWithFiles uploads the photos and submits the donation with the URLs
// that made it. Lost uploads do not fail the submission.
func (u *DonationUsecase) SubmitWithFiles(ctx context.Context, input model.DonationInput, files []model.File) model.DbResult[model.CreatedID] {
	adapter, err := u.source.Get(ctx)
	if err != nil {
		return model.Fail[model.CreatedID](err.Error())
	}

	urls := []string{}
	if len(files) > 0 {
		urls = adapter.UploadMultipleImages(ctx, files, DonationFolder)
		if dropped := len(files) - len(urls); dropped > 0 {
			u.log.WithContext(ctx).WithFields(map[string]interface{}{
				"dropped":  dropped,
				"uploaded": len(urls),
			}).Warnf("%d of %d donation images failed to upload", dropped, len(files))
		}
	}

	return adapter.SubmitDonation(ctx, input, urls)
}

// UpdateStatus changes a donation's status after checking the transition
// policy. Without a policy every valid status is accepted.
func (u *DonationUsecase) UpdateStatus(ctx context.Context, id string, status model.DonationStatus) model.DbResult[model.Empty] {
	if !status.Valid() {
		return model.Fail[model.Empty](model.MsgInvalidStatus)
	}

	adapter, err := u.source.Get(ctx)
	if err != nil {
		return model.Fail[model.Empty](err.Error())
	}

	if u.policy != nil {
		current := adapter.GetDonationByID(ctx, id)
		if current == nil {
			return model.Fail[model.Empty](model.MsgDonationNotFound)
		}

		allowed, err := u.policy.Allows(current.Status, status)
		if err != nil {
			u.log.WithContext(ctx).Errorf("Status policy failed for donation %s: %v", id, err)
			return model.Fail[model.Empty](err.Error())
		}
		if !allowed {
			return model.Fail[model.Empty](fmt.Sprintf("status transition from %s to %s is not allowed", current.Status, status))
		}
	}

	return adapter.UpdateDonationStatus(ctx, id, status)
}
