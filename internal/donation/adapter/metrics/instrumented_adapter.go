package metrics

import (
	"context"
	"time"

	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
)

// InstrumentedAdapter records one observation per contract call. Writes
// succeed when their result does; lookups fail when they return nil. List
// reads always count as successes.
type InstrumentedAdapter struct {
	inner    repository.DatabaseAdapter
	recorder Recorder
	now      func() time.Time
}

// Wrap returns inner instrumented with recorder.
func Wrap(inner repository.DatabaseAdapter, recorder Recorder) *InstrumentedAdapter {
	return &InstrumentedAdapter{inner: inner, recorder: recorder, now: time.Now}
}

// Unwrap returns the decorated adapter.
func (m *InstrumentedAdapter) Unwrap() repository.DatabaseAdapter {
	return m.inner
}

// Close closes the decorated adapter when it holds connections.
func (m *InstrumentedAdapter) Close() error {
	if closer, ok := m.inner.(repository.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (m *InstrumentedAdapter) observe(op string, start time.Time, success bool) {
	m.recorder.RecordOperation(string(m.inner.Provider()), op, success, m.now().Sub(start))
}

func (m *InstrumentedAdapter) Provider() model.Provider {
	return m.inner.Provider()
}

func (m *InstrumentedAdapter) InitDatabase(ctx context.Context) model.InitResult {
	start := m.now()
	res := m.inner.InitDatabase(ctx)
	m.observe("InitDatabase", start, res.Success)
	return res
}

func (m *InstrumentedAdapter) SubmitDonation(ctx context.Context, input model.DonationInput, imageURLs []string) model.DbResult[model.CreatedID] {
	start := m.now()
	res := m.inner.SubmitDonation(ctx, input, imageURLs)
	m.observe("SubmitDonation", start, res.Success)
	return res
}

func (m *InstrumentedAdapter) GetDonations(ctx context.Context) []model.Donation {
	start := m.now()
	res := m.inner.GetDonations(ctx)
	m.observe("GetDonations", start, true)
	return res
}

func (m *InstrumentedAdapter) GetDonationByID(ctx context.Context, id string) *model.Donation {
	start := m.now()
	res := m.inner.GetDonationByID(ctx, id)
	m.observe("GetDonationByID", start, res != nil)
	return res
}

func (m *InstrumentedAdapter) UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus) model.DbResult[model.Empty] {
	start := m.now()
	res := m.inner.UpdateDonationStatus(ctx, id, status)
	m.observe("UpdateDonationStatus", start, res.Success)
	return res
}

func (m *InstrumentedAdapter) GetMedicines(ctx context.Context) []model.Medicine {
	start := m.now()
	res := m.inner.GetMedicines(ctx)
	m.observe("GetMedicines", start, true)
	return res
}

func (m *InstrumentedAdapter) GetMedicineByID(ctx context.Context, id string) *model.Medicine {
	start := m.now()
	res := m.inner.GetMedicineByID(ctx, id)
	m.observe("GetMedicineByID", start, res != nil)
	return res
}

func (m *InstrumentedAdapter) SubmitVolunteer(ctx context.Context, input model.VolunteerInput) model.DbResult[model.CreatedID] {
	start := m.now()
	res := m.inner.SubmitVolunteer(ctx, input)
	m.observe("SubmitVolunteer", start, res.Success)
	return res
}

func (m *InstrumentedAdapter) GetVolunteers(ctx context.Context) []model.Volunteer {
	start := m.now()
	res := m.inner.GetVolunteers(ctx)
	m.observe("GetVolunteers", start, true)
	return res
}

func (m *InstrumentedAdapter) GetProfile(ctx context.Context, userID string) *model.Profile {
	start := m.now()
	res := m.inner.GetProfile(ctx, userID)
	m.observe("GetProfile", start, res != nil)
	return res
}

func (m *InstrumentedAdapter) UpsertProfile(ctx context.Context, update model.ProfileUpdate) model.DbResult[model.Empty] {
	start := m.now()
	res := m.inner.UpsertProfile(ctx, update)
	m.observe("UpsertProfile", start, res.Success)
	return res
}

func (m *InstrumentedAdapter) UploadImage(ctx context.Context, file model.File, folder string) *string {
	start := m.now()
	res := m.inner.UploadImage(ctx, file, folder)
	m.observe("UploadImage", start, res != nil)
	return res
}

func (m *InstrumentedAdapter) UploadMultipleImages(ctx context.Context, files []model.File, folder string) []string {
	start := m.now()
	res := m.inner.UploadMultipleImages(ctx, files, folder)
	m.observe("UploadMultipleImages", start, len(res) == len(files))
	return res
}

func (m *InstrumentedAdapter) DeleteImage(ctx context.Context, url string) bool {
	start := m.now()
	res := m.inner.DeleteImage(ctx, url)
	m.observe("DeleteImage", start, res)
	return res
}
