package mysql

import (
	"context"
	"fmt"

	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/logger"
)

// NotConfiguredMessage is returned by every write of the placeholder adapter.
const NotConfiguredMessage = "MySQL adapter is not configured"

// Adapter is a placeholder for a future relational backend. It satisfies the
// contract deterministically and never opens a connection.
type Adapter struct {
	target string
	log    logger.Logger
}

// New returns the placeholder adapter.
func New(cfg config.MySQLConfig, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Adapter{
		target: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
		log:    log.WithComponent("mysql-adapter"),
	}
}

func (a *Adapter) Provider() model.Provider {
	return model.ProviderMySQL
}

func (a *Adapter) InitDatabase(ctx context.Context) model.InitResult {
	a.log.Warnf("InitDatabase called on placeholder adapter (%s)", a.target)
	return model.InitResult{
		Success: false,
		Message: NotConfiguredMessage + ". Choose supabase, firebase, mongodb or mock as DB_PROVIDER.",
	}
}

func (a *Adapter) SubmitDonation(ctx context.Context, input model.DonationInput, imageURLs []string) model.DbResult[model.CreatedID] {
	return model.Fail[model.CreatedID](NotConfiguredMessage)
}

func (a *Adapter) GetDonations(ctx context.Context) []model.Donation {
	return []model.Donation{}
}

func (a *Adapter) GetDonationByID(ctx context.Context, id string) *model.Donation {
	return nil
}

func (a *Adapter) UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus) model.DbResult[model.Empty] {
	return model.Fail[model.Empty](NotConfiguredMessage)
}

func (a *Adapter) GetMedicines(ctx context.Context) []model.Medicine {
	return []model.Medicine{}
}

func (a *Adapter) GetMedicineByID(ctx context.Context, id string) *model.Medicine {
	return nil
}

func (a *Adapter) SubmitVolunteer(ctx context.Context, input model.VolunteerInput) model.DbResult[model.CreatedID] {
	return model.Fail[model.CreatedID](NotConfiguredMessage)
}

func (a *Adapter) GetVolunteers(ctx context.Context) []model.Volunteer {
	return []model.Volunteer{}
}

func (a *Adapter) GetProfile(ctx context.Context, userID string) *model.Profile {
	return nil
}

func (a *Adapter) UpsertProfile(ctx context.Context, update model.ProfileUpdate) model.DbResult[model.Empty] {
	return model.Fail[model.Empty](NotConfiguredMessage)
}

func (a *Adapter) UploadImage(ctx context.Context, file model.File, folder string) *string {
	return nil
}

func (a *Adapter) UploadMultipleImages(ctx context.Context, files []model.File, folder string) []string {
	return []string{}
}

func (a *Adapter) DeleteImage(ctx context.Context, url string) bool {
	return false
}
