package firebase

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/adaptertest"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string]string
	fail    bool
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string]string{}}
}

func (m *memoryObjects) Write(ctx context.Context, name, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("quota exceeded")
	}
	m.objects[name] = contentType
	return nil
}

func (m *memoryObjects) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[name]; !ok {
		return errors.New("storage: object doesn't exist")
	}
	delete(m.objects, name)
	return nil
}

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	assert.Equal(t, "donations/1700000000000_k1_box.png", objectName(model.File{Name: "box.png"}, "", now, "k1"))
	assert.Equal(t, "medicines/1700000000000_k1_a_b.png", objectName(model.File{Name: "a/b.png"}, "/medicines/", now, "k1"))
	assert.Equal(t, "donations/1700000000000_k1_upload.bin", objectName(model.File{}, "", now, "k1"))
	assert.Len(t, shortID(), 12)
	assert.NotEqual(t, shortID(), shortID())
}

func TestAdapter_SameNameSameInstant(t *testing.T) {
	objects := newMemoryObjects()
	a := NewWithClient(nil, "proj.appspot.com", objects, nil)
	fixed := time.UnixMilli(1700000000000)
	a.now = func() time.Time { return fixed }

	files := []model.File{
		{Name: "IMG_0001.jpg", ContentType: "image/jpeg"},
		{Name: "IMG_0001.jpg", ContentType: "image/jpeg"},
	}
	urls := a.UploadMultipleImages(context.Background(), files, "donations")

	require.Len(t, urls, 2)
	assert.NotEqual(t, urls[0], urls[1])
	assert.Len(t, objects.objects, 2)
}

func TestObjectFromURL(t *testing.T) {
	name := "donations/1700000000000_box.png"
	url := downloadURL("proj.appspot.com", name)
	assert.Equal(t, "https://firebasestorage.googleapis.com/v0/b/proj.appspot.com/o/donations%2F1700000000000_box.png?alt=media", url)

	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{url, name, true},
		{"gs://proj.appspot.com/donations/x.png", "donations/x.png", true},
		{"https://storage.googleapis.com/proj.appspot.com/donations/x.png", "donations/x.png", true},
		{"https://firebasestorage.googleapis.com/v0/b/other/o/x.png", "", false},
		{"https://storage.googleapis.com/other/x.png", "", false},
		{"https://elsewhere.example/x.png", "", false},
		{"::not a url", "", false},
	}
	for _, tt := range tests {
		got, ok := objectFromURL("proj.appspot.com", tt.url)
		assert.Equal(t, tt.ok, ok, tt.url)
		assert.Equal(t, tt.want, got, tt.url)
	}
}

func TestAdapter_Storage(t *testing.T) {
	objects := newMemoryObjects()
	a := NewWithClient(nil, "proj.appspot.com", objects, nil)
	ctx := context.Background()

	url := a.UploadImage(ctx, model.File{Name: "box.png", ContentType: "image/png"}, "")
	require.NotNil(t, url)
	assert.Contains(t, *url, "/o/donations%2F")
	assert.Len(t, objects.objects, 1)

	urls := a.UploadMultipleImages(ctx, []model.File{{Name: "a.png"}, {Name: "b.png"}}, "medicines")
	require.Len(t, urls, 2)
	assert.True(t, strings.HasSuffix(urls[0], "_a.png?alt=media"))
	assert.True(t, strings.HasSuffix(urls[1], "_b.png?alt=media"))

	assert.True(t, a.DeleteImage(ctx, *url))
	assert.False(t, a.DeleteImage(ctx, *url))
	assert.False(t, a.DeleteImage(ctx, "https://elsewhere.example/x.png"))

	objects.fail = true
	assert.Nil(t, a.UploadImage(ctx, model.File{Name: "c.png"}, ""))
	assert.Empty(t, a.UploadMultipleImages(ctx, []model.File{{Name: "d.png"}}, ""))
}

func TestAdapter_StorageDisabled(t *testing.T) {
	a := NewWithClient(nil, "", nil, nil)
	assert.Nil(t, a.UploadImage(context.Background(), model.File{Name: "x.png"}, ""))
	assert.False(t, a.DeleteImage(context.Background(), "gs://b/x.png"))
}

func TestAdapter_InvalidIdentifiers(t *testing.T) {
	a := NewWithClient(nil, "", nil, nil)
	ctx := context.Background()

	assert.Nil(t, a.GetDonationByID(ctx, ""))
	assert.Nil(t, a.GetMedicineByID(ctx, "a/b"))
	assert.Nil(t, a.GetProfile(ctx, ""))

	res := a.UpdateDonationStatus(ctx, "a/b", model.DonationStatusVerified)
	assert.Equal(t, model.MsgDonationNotFound, res.Error)
	res = a.UpdateDonationStatus(ctx, "abc", "lost")
	assert.Equal(t, model.MsgInvalidStatus, res.Error)
	assert.False(t, a.UpsertProfile(ctx, model.ProfileUpdate{}).Success)
}

func TestNew_MissingProjectID(t *testing.T) {
	_, err := New(context.Background(), config.FirebaseConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_PROJECT_ID")
}

// The contract suite runs against the Firestore emulator when
// FIRESTORE_EMULATOR_HOST is set.
func TestAdapter_Integration_Contract(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "vitamend-test")
	require.NoError(t, err)
	defer client.Close()

	adaptertest.Run(t, adaptertest.Harness{
		New: func(t *testing.T) repository.DatabaseAdapter {
			clearCollections(t, client)
			return NewWithClient(client, "", nil, nil)
		},
		AddMedicine: func(t *testing.T, a repository.DatabaseAdapter, m model.Medicine) {
			_, err := a.(*Adapter).InsertMedicine(context.Background(), m)
			require.NoError(t, err)
		},
		Pause: 5 * time.Millisecond,
	})
}

func clearCollections(t *testing.T, client *firestore.Client) {
	ctx := context.Background()
	for _, name := range []string{donationsCollection, medicinesCollection, volunteersCollection, profilesCollection, metaCollection} {
		snaps, err := client.Collection(name).Documents(ctx).GetAll()
		require.NoError(t, err)
		for _, snap := range snaps {
			_, err := snap.Ref.Delete(ctx)
			require.NoError(t, err)
		}
	}
}
