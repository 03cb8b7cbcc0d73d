// Package adaptertest holds the behavioural suite every DatabaseAdapter
// implementation is expected to pass.
package adaptertest

import (
	"context"
	"testing"
	"time"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Harness describes how to build and poke an adapter under test.
type Harness struct {
	// New returns a fresh adapter backed by an empty, unprovisioned store.
	New func(t *testing.T) repository.DatabaseAdapter
	// Prepare provisions the schema of a fresh adapter without seed data.
	// Optional; stores without a schema need nothing.
	Prepare func(t *testing.T, a repository.DatabaseAdapter)
	// AddMedicine inserts a catalog entry bypassing the contract. Optional;
	// the availability filter case is skipped without it.
	AddMedicine func(t *testing.T, a repository.DatabaseAdapter, m model.Medicine)
	// Storage enables the upload and delete cases.
	Storage bool
	// Pause is slept between writes so creation timestamps differ.
	Pause time.Duration
}

// SampleDonation returns a fully populated donation input.
func SampleDonation(name string) model.DonationInput {
	return model.DonationInput{
		MedicineName: name,
		Brand:        "Generic Co",
		GenericName:  "Acetaminophen",
		Dosage:       "500mg",
		Quantity:     20,
		ExpiryDate:   "2027-01-31",
		Condition:    "New",
		Category:     "Pain Relief",
		DonorName:    "Jane Donor",
		DonorEmail:   "jane@example.com",
		DonorPhone:   "+1 555 0100",
		DonorAddress: "1 Main St",
		Notes:        "unopened",
	}
}

// Run executes the suite.
func Run(t *testing.T, h Harness) {
	ctx := context.Background()
	ready := func(t *testing.T) repository.DatabaseAdapter {
		a := h.New(t)
		if h.Prepare != nil {
			h.Prepare(t, a)
		}
		return a
	}

	t.Run("InitIsIdempotent", func(t *testing.T) {
		a := h.New(t)
		first := a.InitDatabase(ctx)
		require.True(t, first.Success, first.Message)
		assert.False(t, first.AlreadyInitialized)
		seeded := len(a.GetMedicines(ctx))

		second := a.InitDatabase(ctx)
		require.True(t, second.Success, second.Message)
		assert.True(t, second.AlreadyInitialized)
		assert.Equal(t, seeded, len(a.GetMedicines(ctx)))
	})

	t.Run("SubmitDonationRoundTrip", func(t *testing.T) {
		a := ready(t)
		in := SampleDonation("Paracetamol")
		urls := []string{"https://img/1.png", "https://img/2.png"}

		res := a.SubmitDonation(ctx, in, urls)
		require.True(t, res.Success, res.Error)
		require.NotNil(t, res.Data)
		assert.Equal(t, model.MsgDonationSubmitted, res.Message)

		got := a.GetDonationByID(ctx, res.Data.ID)
		require.NotNil(t, got)
		assert.Equal(t, res.Data.ID, got.ID)
		assert.Equal(t, in.MedicineName, got.MedicineName)
		assert.Equal(t, in.Brand, got.Brand)
		assert.Equal(t, in.GenericName, got.GenericName)
		assert.Equal(t, in.Dosage, got.Dosage)
		assert.Equal(t, in.Quantity, got.Quantity)
		assert.Equal(t, in.ExpiryDate, got.ExpiryDate)
		assert.Equal(t, in.DonorName, got.DonorName)
		assert.Equal(t, in.DonorEmail, got.DonorEmail)
		assert.Equal(t, in.DonorPhone, got.DonorPhone)
		assert.Equal(t, in.DonorAddress, got.DonorAddress)
		assert.Equal(t, urls, got.ImageURLs)
		assert.Equal(t, model.DonationStatusPending, got.Status)
		assert.False(t, got.Verified)
	})

	t.Run("GetDonationByUnknownID", func(t *testing.T) {
		a := ready(t)
		assert.Nil(t, a.GetDonationByID(ctx, "does-not-exist"))
	})

	t.Run("UpdateDonationStatus", func(t *testing.T) {
		a := ready(t)
		res := a.SubmitDonation(ctx, SampleDonation("Ibuprofen"), nil)
		require.True(t, res.Success)
		id := res.Data.ID

		upd := a.UpdateDonationStatus(ctx, id, model.DonationStatusDistributed)
		require.True(t, upd.Success, upd.Error)

		matches := 0
		for _, d := range a.GetDonations(ctx) {
			if d.ID == id {
				matches++
				assert.Equal(t, model.DonationStatusDistributed, d.Status)
			}
		}
		assert.Equal(t, 1, matches)

		missing := a.UpdateDonationStatus(ctx, "000000000000000000000000", model.DonationStatusVerified)
		assert.False(t, missing.Success)
		assert.Equal(t, model.MsgDonationNotFound, missing.Error)

		bad := a.UpdateDonationStatus(ctx, id, model.DonationStatus("lost"))
		assert.False(t, bad.Success)
	})

	t.Run("NewestFirst", func(t *testing.T) {
		a := ready(t)
		for _, name := range []string{"A", "B", "C"} {
			require.True(t, a.SubmitDonation(ctx, SampleDonation(name), nil).Success)
			require.True(t, a.SubmitVolunteer(ctx, model.VolunteerInput{FullName: name, Email: name + "@x.io"}).Success)
			time.Sleep(h.Pause)
		}

		donations := a.GetDonations(ctx)
		require.Len(t, donations, 3)
		assert.Equal(t, "C", donations[0].MedicineName)
		for i := 0; i+1 < len(donations); i++ {
			assert.False(t, donations[i].CreatedAt.Before(donations[i+1].CreatedAt))
		}

		volunteers := a.GetVolunteers(ctx)
		require.Len(t, volunteers, 3)
		assert.Equal(t, "C", volunteers[0].FullName)
		for _, v := range volunteers {
			assert.Equal(t, model.VolunteerStatusPending, v.Status)
		}
		for i := 0; i+1 < len(volunteers); i++ {
			assert.False(t, volunteers[i].CreatedAt.Before(volunteers[i+1].CreatedAt))
		}
	})

	t.Run("AvailabilityFilter", func(t *testing.T) {
		if h.AddMedicine == nil {
			t.Skip("harness cannot insert catalog entries directly")
		}
		a := ready(t)
		h.AddMedicine(t, a, model.Medicine{Name: "Shown", Available: true, CreatedAt: time.Now().Add(-time.Minute)})
		h.AddMedicine(t, a, model.Medicine{Name: "Hidden", Available: false, CreatedAt: time.Now()})
		h.AddMedicine(t, a, model.Medicine{Name: "Newest", Available: true, CreatedAt: time.Now().Add(time.Minute)})

		meds := a.GetMedicines(ctx)
		require.Len(t, meds, 2)
		assert.Equal(t, "Newest", meds[0].Name)
		assert.Equal(t, "Shown", meds[1].Name)
		for _, m := range meds {
			assert.True(t, m.Available)
		}

		byID := a.GetMedicineByID(ctx, meds[0].ID)
		require.NotNil(t, byID)
		assert.Equal(t, "Newest", byID.Name)
	})

	t.Run("ProfileUpsertMerges", func(t *testing.T) {
		a := ready(t)
		assert.Nil(t, a.GetProfile(ctx, "u1"))

		require.True(t, a.UpsertProfile(ctx, model.ProfileUpdate{ID: "u1", Name: model.StringPtr("A")}).Success)
		first := a.GetProfile(ctx, "u1")
		require.NotNil(t, first)
		assert.Equal(t, model.DefaultProfileRole, first.Role)

		require.True(t, a.UpsertProfile(ctx, model.ProfileUpdate{ID: "u1", Role: model.StringPtr("volunteer")}).Success)
		got := a.GetProfile(ctx, "u1")
		require.NotNil(t, got)
		assert.Equal(t, "u1", got.ID)
		assert.Equal(t, "A", got.Name)
		assert.Equal(t, "volunteer", got.Role)
		assert.True(t, got.CreatedAt.Equal(first.CreatedAt))
	})

	t.Run("Storage", func(t *testing.T) {
		a := ready(t)
		if !h.Storage {
			assert.Nil(t, a.UploadImage(ctx, model.File{Name: "x.png"}, ""))
			assert.Empty(t, a.UploadMultipleImages(ctx, []model.File{{Name: "x.png"}}, ""))
			return
		}

		url := a.UploadImage(ctx, model.File{Name: "box.png", ContentType: "image/png", Data: []byte{1, 2}}, "")
		require.NotNil(t, url)
		assert.Contains(t, *url, "/donations/")

		urls := a.UploadMultipleImages(ctx, []model.File{{Name: "a.png"}, {Name: "b.png"}}, "medicines")
		require.Len(t, urls, 2)
		assert.Contains(t, urls[0], "a.png")
		assert.Contains(t, urls[1], "b.png")

		assert.True(t, a.DeleteImage(ctx, *url))
		assert.False(t, a.DeleteImage(ctx, *url))
		assert.False(t, a.DeleteImage(ctx, "https://elsewhere.example/x.png"))
	})
}
