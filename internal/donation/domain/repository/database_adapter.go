package repository

import (
	"context"

	"vitamend-data/internal/donation/domain/model"
)

// DatabaseAdapter is the single contract every backing store satisfies.
//
// Reads never fail: an absent schema or a backend fault yields an empty slice
// or nil. Writes report failure through DbResult. None of the methods panic.
type DatabaseAdapter interface {
	Provider() model.Provider

	// InitDatabase provisions schema and seed data. It is idempotent; the
	// second call reports AlreadyInitialized.
	InitDatabase(ctx context.Context) model.InitResult

	SubmitDonation(ctx context.Context, input model.DonationInput, imageURLs []string) model.DbResult[model.CreatedID]
	// GetDonations returns every donation, newest first.
	GetDonations(ctx context.Context) []model.Donation
	GetDonationByID(ctx context.Context, id string) *model.Donation
	UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus) model.DbResult[model.Empty]

	// GetMedicines returns available medicines, newest first.
	GetMedicines(ctx context.Context) []model.Medicine
	GetMedicineByID(ctx context.Context, id string) *model.Medicine

	SubmitVolunteer(ctx context.Context, input model.VolunteerInput) model.DbResult[model.CreatedID]
	// GetVolunteers returns every volunteer application, newest first.
	GetVolunteers(ctx context.Context) []model.Volunteer

	GetProfile(ctx context.Context, userID string) *model.Profile
	// UpsertProfile merges present fields onto the stored profile, creating it if needed.
	UpsertProfile(ctx context.Context, update model.ProfileUpdate) model.DbResult[model.Empty]

	// UploadImage stores file under folder and returns its public URL, or nil.
	UploadImage(ctx context.Context, file model.File, folder string) *string
	// UploadMultipleImages uploads concurrently and returns the URLs that
	// succeeded, in input order. Failures are dropped.
	UploadMultipleImages(ctx context.Context, files []model.File, folder string) []string
	// DeleteImage removes an object by its public URL. Foreign URLs return false.
	DeleteImage(ctx context.Context, url string) bool
}

// Closer is implemented by adapters that hold backend connections.
type Closer interface {
	Close() error
}
