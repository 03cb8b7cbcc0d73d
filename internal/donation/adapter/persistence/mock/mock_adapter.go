package mock

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/uploads"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/logger"

	"github.com/google/uuid"
)

const storageHost = "https://mock-storage.local"

// Adapter keeps every entity in process memory. Collections are kept sorted by
// created_at, newest first, so reads need no sorting.
type Adapter struct {
	mu          sync.RWMutex
	donations   []model.Donation
	medicines   []model.Medicine
	volunteers  []model.Volunteer
	profiles    map[string]model.Profile
	images      map[string]string
	initialized bool

	now func() time.Time
	log logger.Logger
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// New returns an empty, uninitialised in-memory adapter.
func New(log logger.Logger, opts ...Option) *Adapter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	a := &Adapter{
		profiles: make(map[string]model.Profile),
		images:   make(map[string]string),
		now:      time.Now,
		log:      log.WithComponent("mock-adapter"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func donationCreated(d model.Donation) time.Time { return d.CreatedAt }
func medicineCreated(m model.Medicine) time.Time { return m.CreatedAt }
func volunteerCreated(v model.Volunteer) time.Time { return v.CreatedAt }

// insertNewestFirst places item before every entry created at or before it.
func insertNewestFirst[T any](list []T, item T, created func(T) time.Time) []T {
	at := created(item)
	i := sort.Search(len(list), func(i int) bool {
		return !created(list[i]).After(at)
	})
	return slices.Insert(list, i, item)
}

func (a *Adapter) newID() string {
	return fmt.Sprintf("mock-%d-%s", a.now().UnixMilli(), strings.Split(uuid.NewString(), "-")[0])
}

func (a *Adapter) Provider() model.Provider {
	return model.ProviderMock
}

func (a *Adapter) InitDatabase(ctx context.Context) model.InitResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return model.InitResult{
			Success:            true,
			Message:            "Mock database is already initialized.",
			AlreadyInitialized: true,
		}
	}

	seed := model.SeedMedicines(a.now())
	for _, m := range seed {
		m.ID = a.newID()
		a.medicines = insertNewestFirst(a.medicines, m, medicineCreated)
	}
	a.initialized = true
	a.log.Infof("Seeded %d medicines", len(seed))

	return model.InitResult{
		Success: true,
		Message: "Mock database initialized with sample data!",
	}
}

func (a *Adapter) SubmitDonation(ctx context.Context, input model.DonationInput, imageURLs []string) model.DbResult[model.CreatedID] {
	d := model.NewDonation(input, append([]string(nil), imageURLs...), a.now())

	a.mu.Lock()
	d.ID = a.newID()
	a.donations = insertNewestFirst(a.donations, d, donationCreated)
	a.mu.Unlock()

	return model.Ok(model.CreatedID{ID: d.ID}, model.MsgDonationSubmitted)
}

func (a *Adapter) GetDonations(ctx context.Context) []model.Donation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneDonations(a.donations)
}

func (a *Adapter) GetDonationByID(ctx context.Context, id string) *model.Donation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, d := range a.donations {
		if d.ID == id {
			cp := d
			cp.ImageURLs = append([]string{}, d.ImageURLs...)
			return &cp
		}
	}
	return nil
}

func (a *Adapter) UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus) model.DbResult[model.Empty] {
	if !status.Valid() {
		return model.Fail[model.Empty](model.MsgInvalidStatus)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.donations {
		if a.donations[i].ID == id {
			a.donations[i].Status = status
			return model.OkEmpty()
		}
	}
	return model.Fail[model.Empty](model.MsgDonationNotFound)
}

func (a *Adapter) GetMedicines(ctx context.Context) []model.Medicine {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]model.Medicine, 0, len(a.medicines))
	for _, m := range a.medicines {
		if m.Available {
			out = append(out, m)
		}
	}
	return out
}

func (a *Adapter) GetMedicineByID(ctx context.Context, id string) *model.Medicine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, m := range a.medicines {
		if m.ID == id {
			cp := m
			return &cp
		}
	}
	return nil
}

// AddMedicine inserts a catalog entry directly and returns its id. The entry
// keeps its Available flag as given.
func (a *Adapter) AddMedicine(m model.Medicine) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	m.ID = a.newID()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = a.now().UTC()
	}
	if m.ImageURLs == nil {
		m.ImageURLs = []string{}
	}
	a.medicines = insertNewestFirst(a.medicines, m, medicineCreated)
	return m.ID
}

func (a *Adapter) SubmitVolunteer(ctx context.Context, input model.VolunteerInput) model.DbResult[model.CreatedID] {
	v := model.NewVolunteer(input, a.now())

	a.mu.Lock()
	v.ID = a.newID()
	a.volunteers = insertNewestFirst(a.volunteers, v, volunteerCreated)
	a.mu.Unlock()

	return model.Ok(model.CreatedID{ID: v.ID}, model.MsgVolunteerSubmitted)
}

func (a *Adapter) GetVolunteers(ctx context.Context) []model.Volunteer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]model.Volunteer{}, a.volunteers...)
}

func (a *Adapter) GetProfile(ctx context.Context, userID string) *model.Profile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if p, ok := a.profiles[userID]; ok {
		return &p
	}
	return nil
}

func (a *Adapter) UpsertProfile(ctx context.Context, update model.ProfileUpdate) model.DbResult[model.Empty] {
	if update.ID == "" {
		return model.Fail[model.Empty]("profile id is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var existing *model.Profile
	if p, ok := a.profiles[update.ID]; ok {
		existing = &p
	}
	a.profiles[update.ID] = update.Apply(existing, a.now())
	return model.OkEmpty()
}

func (a *Adapter) UploadImage(ctx context.Context, file model.File, folder string) *string {
	if err := ctx.Err(); err != nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	url := fmt.Sprintf("%s/%s/%s-%s", storageHost, model.FolderOrDefault(folder), a.newID(), file.Name)
	a.images[url] = file.Name
	return &url
}

func (a *Adapter) UploadMultipleImages(ctx context.Context, files []model.File, folder string) []string {
	return uploads.Fanout(ctx, files, func(ctx context.Context, f model.File) *string {
		return a.UploadImage(ctx, f, folder)
	})
}

func (a *Adapter) DeleteImage(ctx context.Context, url string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.images[url]; !ok {
		return false
	}
	delete(a.images, url)
	return true
}

func cloneDonations(in []model.Donation) []model.Donation {
	out := make([]model.Donation, len(in))
	for i, d := range in {
		d.ImageURLs = append([]string{}, d.ImageURLs...)
		out[i] = d
	}
	return out
}
