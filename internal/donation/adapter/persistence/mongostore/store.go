// Package mongostore is the document store behind the bridge routes.
package mongostore

import (
	"context"

	"vitamend-data/internal/donation/domain/model"
)

// Store is the persistence surface of the bridge routes. Lookups that match
// nothing return one of the not-found sentinels of the shared errors package;
// malformed identifiers return ErrInvalidIdentifier.
type Store interface {
	Ping(ctx context.Context) error
	// Initialize creates collections and indexes, then inserts seed when the
	// medicines collection is empty. It reports whether medicines already existed.
	Initialize(ctx context.Context, seed []model.Medicine) (alreadyInitialized bool, err error)

	// CreateDonation stores d, assigning a business reference when
	// d.DonationID is empty, and returns the native id.
	CreateDonation(ctx context.Context, d model.Donation) (string, error)
	ListDonations(ctx context.Context) ([]model.Donation, error)
	// FindDonation looks the id up as a native id first, then as a business reference.
	FindDonation(ctx context.Context, id string) (*model.Donation, error)
	SetDonationStatus(ctx context.Context, id string, status model.DonationStatus) error

	CreateMedicine(ctx context.Context, m model.Medicine) (string, error)
	ListAvailableMedicines(ctx context.Context) ([]model.Medicine, error)
	FindMedicine(ctx context.Context, id string) (*model.Medicine, error)

	CreateVolunteer(ctx context.Context, v model.Volunteer) (string, error)
	ListVolunteers(ctx context.Context) ([]model.Volunteer, error)

	FindProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, update model.ProfileUpdate) error

	Close(ctx context.Context) error
}
