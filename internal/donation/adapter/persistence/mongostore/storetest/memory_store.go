// Package storetest provides an in-memory mongostore.Store for tests.
package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/mongostore"
	"vitamend-data/internal/donation/domain/model"
	apperrors "vitamend-data/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ mongostore.Store = (*MemoryStore)(nil)

// ErrUnavailable is returned by every method while the store is marked down.
var ErrUnavailable = errors.New("store unavailable")

// MemoryStore mirrors the MongoStore semantics: ObjectID hex ids, business
// references on donations, newest-first listings.
type MemoryStore struct {
	mu         sync.RWMutex
	donations  []model.Donation
	medicines  []model.Medicine
	volunteers []model.Volunteer
	profiles   map[string]model.Profile
	down       bool
	now        func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: map[string]model.Profile{}, now: time.Now}
}

// SetDown makes every call fail with ErrUnavailable until reset.
func (s *MemoryStore) SetDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

func (s *MemoryStore) check() error {
	if s.down {
		return ErrUnavailable
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check()
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Initialize(ctx context.Context, seed []model.Medicine) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return false, err
	}
	if len(s.medicines) > 0 {
		return true, nil
	}
	for _, m := range seed {
		m.ID = primitive.NewObjectID().Hex()
		s.medicines = append(s.medicines, m)
	}
	return false, nil
}

func (s *MemoryStore) CreateDonation(ctx context.Context, d model.Donation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return "", err
	}
	d.ID = primitive.NewObjectID().Hex()
	if d.DonationID == "" {
		d.DonationID = model.NewDonationReference(s.now())
	}
	if d.ImageURLs == nil {
		d.ImageURLs = []string{}
	}
	s.donations = append(s.donations, d)
	return d.ID, nil
}

func (s *MemoryStore) ListDonations(ctx context.Context) ([]model.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	out := append([]model.Donation{}, s.donations...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) donationIndex(id string) int {
	if _, err := primitive.ObjectIDFromHex(id); err == nil {
		for i, d := range s.donations {
			if d.ID == id {
				return i
			}
		}
	}
	for i, d := range s.donations {
		if d.DonationID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) FindDonation(ctx context.Context, id string) (*model.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	i := s.donationIndex(id)
	if i < 0 {
		return nil, apperrors.ErrDonationNotFound
	}
	d := s.donations[i]
	return &d, nil
}

func (s *MemoryStore) SetDonationStatus(ctx context.Context, id string, status model.DonationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	i := s.donationIndex(id)
	if i < 0 {
		return apperrors.ErrDonationNotFound
	}
	s.donations[i].Status = status
	return nil
}

func (s *MemoryStore) CreateMedicine(ctx context.Context, m model.Medicine) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return "", err
	}
	m.ID = primitive.NewObjectID().Hex()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now().UTC()
	}
	if m.ImageURLs == nil {
		m.ImageURLs = []string{}
	}
	s.medicines = append(s.medicines, m)
	return m.ID, nil
}

func (s *MemoryStore) ListAvailableMedicines(ctx context.Context) ([]model.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	out := make([]model.Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		if m.Available {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) FindMedicine(ctx context.Context, id string) (*model.Medicine, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, apperrors.ErrInvalidIdentifier
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	for _, m := range s.medicines {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, apperrors.ErrMedicineNotFound
}

func (s *MemoryStore) CreateVolunteer(ctx context.Context, v model.Volunteer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return "", err
	}
	v.ID = primitive.NewObjectID().Hex()
	s.volunteers = append(s.volunteers, v)
	return v.ID, nil
}

func (s *MemoryStore) ListVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	out := append([]model.Volunteer{}, s.volunteers...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) FindProfile(ctx context.Context, userID string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpsertProfile(ctx context.Context, update model.ProfileUpdate) error {
	if update.ID == "" {
		return apperrors.ErrInvalidIdentifier
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	var existing *model.Profile
	if p, ok := s.profiles[update.ID]; ok {
		existing = &p
	}
	s.profiles[update.ID] = update.Apply(existing, s.now())
	return nil
}
