package mysql

import (
	"context"
	"testing"

	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholder_IsDeterministic(t *testing.T) {
	var a repository.DatabaseAdapter = New(config.MySQLConfig{Host: "db", Port: 3306}, nil)
	ctx := context.Background()

	assert.Equal(t, model.ProviderMySQL, a.Provider())

	init1 := a.InitDatabase(ctx)
	init2 := a.InitDatabase(ctx)
	assert.False(t, init1.Success)
	assert.Equal(t, init1, init2)

	sub := a.SubmitDonation(ctx, model.DonationInput{MedicineName: "x"}, nil)
	assert.False(t, sub.Success)
	assert.Equal(t, NotConfiguredMessage, sub.Error)

	assert.NotNil(t, a.GetDonations(ctx))
	assert.Empty(t, a.GetDonations(ctx))
	assert.Empty(t, a.GetMedicines(ctx))
	assert.Empty(t, a.GetVolunteers(ctx))
	assert.Nil(t, a.GetDonationByID(ctx, "1"))
	assert.Nil(t, a.GetMedicineByID(ctx, "1"))
	assert.Nil(t, a.GetProfile(ctx, "u1"))

	assert.False(t, a.UpdateDonationStatus(ctx, "1", model.DonationStatusVerified).Success)
	assert.False(t, a.SubmitVolunteer(ctx, model.VolunteerInput{}).Success)
	assert.False(t, a.UpsertProfile(ctx, model.ProfileUpdate{ID: "u1"}).Success)

	assert.Nil(t, a.UploadImage(ctx, model.File{Name: "a.png"}, ""))
	assert.Empty(t, a.UploadMultipleImages(ctx, []model.File{{Name: "a.png"}}, ""))
	assert.False(t, a.DeleteImage(ctx, "https://x/y.png"))
}
