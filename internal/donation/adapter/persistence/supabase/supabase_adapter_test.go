package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/adaptertest"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang-migrate/migrate/v4"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTableNotFoundError(t *testing.T) {
	assert.True(t, isTableNotFoundError(&pq.Error{Code: "42P01", Message: "relation \"donations\" does not exist"}))
	assert.True(t, isTableNotFoundError(fmt.Errorf("query: %w", &pq.Error{Code: "42P01"})))
	assert.True(t, isTableNotFoundError(errors.New("Could not find the table in the schema cache")))
	assert.True(t, isTableNotFoundError(errors.New("PGRST116: no rows")))
	assert.True(t, isTableNotFoundError(errors.New(`relation "profiles" does not exist`)))

	assert.False(t, isTableNotFoundError(nil))
	assert.False(t, isTableNotFoundError(&pq.Error{Code: "23505", Message: "duplicate key"}))
	assert.False(t, isTableNotFoundError(errors.New("connection refused")))
}

func TestBuildProfileUpsert(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	query, args := buildProfileUpsert(model.ProfileUpdate{
		ID:   "u1",
		Name: model.StringPtr("A"),
		Role: model.StringPtr("volunteer"),
	}, now)

	assert.Equal(t,
		"INSERT INTO profiles (id, created_at, updated_at, name, role) VALUES ($1, $2, $3, $4, $5) "+
			"ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at, name = EXCLUDED.name, role = EXCLUDED.role",
		query)
	assert.Equal(t, []interface{}{"u1", now, now, "A", "volunteer"}, args)
	assert.NotContains(t, query, "created_at = EXCLUDED")
}

func TestBuildProfileUpsert_OnlyID(t *testing.T) {
	query, args := buildProfileUpsert(model.ProfileUpdate{ID: "u2", Role: model.StringPtr("")}, time.Now())
	assert.True(t, strings.HasSuffix(query, "DO UPDATE SET updated_at = EXCLUDED.updated_at"))
	assert.Len(t, args, 3)
}

type fakeObjects struct {
	puts    []string
	deletes []string
	failPut bool
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut || strings.Contains(*in.Key, "fail") {
		return nil, errors.New("denied")
	}
	f.puts = append(f.puts, *in.Bucket+"/"+*in.Key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testStorageConfig() config.SupabaseConfig {
	return config.SupabaseConfig{URL: "https://proj.supabase.co", StorageBucket: "medicine-images"}
}

func TestBucket_UploadAndDelete(t *testing.T) {
	objects := &fakeObjects{}
	b := newBucket(objects, testStorageConfig())
	b.now = func() time.Time { return time.UnixMilli(1700000000000) }
	b.random = func() string { return "abc1234" }

	url, err := b.upload(context.Background(), model.File{Name: "Box.JPG", Data: []byte("x")}, "")
	require.NoError(t, err)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/medicine-images/donations/1700000000000-abc1234.jpg", url)
	assert.Equal(t, []string{"medicine-images/donations/1700000000000-abc1234.jpg"}, objects.puts)

	ok, err := b.remove(context.Background(), url)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"medicine-images/donations/1700000000000-abc1234.jpg"}, objects.deletes)

	ok, err = b.remove(context.Background(), "https://elsewhere.example/a.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdapter_StorageWithoutDB(t *testing.T) {
	objects := &fakeObjects{}
	a := NewWithDB(nil, testStorageConfig(), objects, nil)
	ctx := context.Background()

	urls := a.UploadMultipleImages(ctx, []model.File{{Name: "a.png"}, {Name: "b.png"}}, "medicines")
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "/medicine-images/medicines/")
	assert.True(t, strings.HasSuffix(urls[0], ".png"))

	objects.failPut = true
	assert.Nil(t, a.UploadImage(ctx, model.File{Name: "c.png"}, ""))
	assert.False(t, a.DeleteImage(ctx, "https://elsewhere.example/a.png"))
	assert.True(t, a.DeleteImage(ctx, urls[0]))
}

func TestAdapter_NoStorageConfigured(t *testing.T) {
	a := NewWithDB(nil, testStorageConfig(), nil, nil)
	assert.Nil(t, a.UploadImage(context.Background(), model.File{Name: "a.png"}, ""))
	assert.False(t, a.DeleteImage(context.Background(), "https://proj.supabase.co/storage/v1/object/public/medicine-images/x.png"))
}

func TestAdapter_InvalidIdentifiersSkipQueries(t *testing.T) {
	a := NewWithDB(nil, testStorageConfig(), nil, nil)
	ctx := context.Background()
	assert.Nil(t, a.GetDonationByID(ctx, "DON-123"))
	assert.Nil(t, a.GetMedicineByID(ctx, "not-a-uuid"))

	res := a.UpdateDonationStatus(ctx, "not-a-uuid", model.DonationStatusVerified)
	assert.False(t, res.Success)
	assert.Equal(t, model.MsgDonationNotFound, res.Error)

	res = a.UpdateDonationStatus(ctx, "not-a-uuid", "bogus")
	assert.Equal(t, model.MsgInvalidStatus, res.Error)
}

func TestNew_MissingURL(t *testing.T) {
	_, err := New(context.Background(), config.SupabaseConfig{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_DB_URL")
}

type recordingMigrator struct {
	calls []string
	upErr error
}

func (r *recordingMigrator) Up() error {
	r.calls = append(r.calls, "up")
	return r.upErr
}

func (r *recordingMigrator) Force(version int) error {
	r.calls = append(r.calls, fmt.Sprintf("force %d", version))
	return nil
}

func TestApplyMigrations(t *testing.T) {
	m := &recordingMigrator{upErr: migrate.ErrNoChange}
	require.NoError(t, applyMigrations(m, false))
	assert.Equal(t, []string{"up"}, m.calls)

	m = &recordingMigrator{}
	require.NoError(t, applyMigrations(m, true))
	assert.Equal(t, []string{"force -1", "up"}, m.calls)

	m = &recordingMigrator{upErr: errors.New("syntax error")}
	err := applyMigrations(m, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run migrations")
}

// Integration tests run against a disposable Postgres database named by
// SUPABASE_TEST_DB_URL. Every table is dropped between cases.

func openTestDB(t *testing.T) (*sql.DB, string) {
	url := os.Getenv("SUPABASE_TEST_DB_URL")
	if url == "" {
		t.Skip("SUPABASE_TEST_DB_URL not set")
	}
	db, err := sql.Open("postgres", url)
	require.NoError(t, err)
	if err := db.Ping(); err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	return db, url
}

func resetSchema(t *testing.T, db *sql.DB) {
	_, err := db.Exec(`DROP TABLE IF EXISTS volunteers, medicines, donations, profiles, schema_migrations`)
	require.NoError(t, err)
}

func TestAdapter_Integration_Contract(t *testing.T) {
	db, url := openTestDB(t)
	defer db.Close()

	adaptertest.Run(t, adaptertest.Harness{
		New: func(t *testing.T) repository.DatabaseAdapter {
			resetSchema(t, db)
			return NewWithDB(db, config.SupabaseConfig{DBURL: url, StorageBucket: "medicine-images"}, nil, nil)
		},
		Prepare: func(t *testing.T, a repository.DatabaseAdapter) {
			require.NoError(t, RunMigrations(url))
			_, err := db.Exec(`DELETE FROM medicines`)
			require.NoError(t, err)
		},
		AddMedicine: func(t *testing.T, a repository.DatabaseAdapter, m model.Medicine) {
			_, err := a.(*Adapter).InsertMedicine(context.Background(), m)
			require.NoError(t, err)
		},
		Pause: 5 * time.Millisecond,
	})
}

func TestAdapter_Integration_AbsentSchema(t *testing.T) {
	db, url := openTestDB(t)
	defer db.Close()
	resetSchema(t, db)

	a := NewWithDB(db, config.SupabaseConfig{DBURL: url}, nil, nil)
	ctx := context.Background()

	assert.Empty(t, a.GetDonations(ctx))
	assert.Empty(t, a.GetMedicines(ctx))
	assert.Empty(t, a.GetVolunteers(ctx))
	assert.Nil(t, a.GetProfile(ctx, "u1"))

	res := a.SubmitDonation(ctx, adaptertest.SampleDonation("X"), nil)
	assert.False(t, res.Success)
	assert.Equal(t, model.MsgSchemaMissing, res.Error)
}

func TestAdapter_Integration_TablesDroppedByHand(t *testing.T) {
	db, url := openTestDB(t)
	defer db.Close()
	resetSchema(t, db)
	require.NoError(t, RunMigrations(url))

	_, err := db.Exec(`DROP TABLE volunteers, medicines, donations, profiles`)
	require.NoError(t, err)

	a := NewWithDB(db, config.SupabaseConfig{DBURL: url}, nil, nil)
	ctx := context.Background()

	res := a.InitDatabase(ctx)
	require.True(t, res.Success, res.Message)
	assert.False(t, res.AlreadyInitialized)
	assert.Len(t, a.GetMedicines(ctx), 2)

	again := a.InitDatabase(ctx)
	assert.True(t, again.AlreadyInitialized)
}
