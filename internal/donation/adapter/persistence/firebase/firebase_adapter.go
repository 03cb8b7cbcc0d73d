package firebase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/uploads"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/logger"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	donationsCollection  = "donations"
	medicinesCollection  = "medicines"
	volunteersCollection = "volunteers"
	profilesCollection   = "profiles"
	metaCollection       = "_meta"
	initializedMarker    = "initialized"
)

// Adapter stores entities in Cloud Firestore and images in the project's
// Cloud Storage bucket.
type Adapter struct {
	client  *firestore.Client
	gcs     *storage.Client
	objects ObjectStore
	bucket  string
	now     func() time.Time
	newID   func() string
	log     logger.Logger
}

// New validates cfg and connects the Firestore and Storage clients.
// Credentials come from FIREBASE_CREDENTIALS_FILE when set, otherwise from
// the application default credentials. FIRESTORE_EMULATOR_HOST is honoured
// by the client library.
func New(ctx context.Context, cfg config.FirebaseConfig, log logger.Logger) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	a := NewWithClient(client, cfg.StorageBucket, nil, log)
	if cfg.StorageBucket != "" {
		gcs, err := storage.NewClient(ctx, opts...)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.gcs = gcs
		a.objects = newGCSObjects(gcs, cfg.StorageBucket)
	} else {
		a.log.Warn("FIREBASE_STORAGE_BUCKET not set, image uploads are disabled")
	}
	return a, nil
}

// NewWithClient wires an adapter around existing clients. objects may be nil.
func NewWithClient(client *firestore.Client, bucket string, objects ObjectStore, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Adapter{
		client:  client,
		objects: objects,
		bucket:  bucket,
		now:     time.Now,
		newID:   shortID,
		log:     log.WithComponent("firebase-adapter"),
	}
}

// Close releases both clients.
func (a *Adapter) Close() error {
	if a.gcs != nil {
		a.gcs.Close()
	}
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (a *Adapter) Provider() model.Provider {
	return model.ProviderFirebase
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// validDocID rejects ids that would address a different path.
func validDocID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func (a *Adapter) InitDatabase(ctx context.Context) model.InitResult {
	marker := a.client.Collection(metaCollection).Doc(initializedMarker)
	already := false

	err := a.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(marker)
		if err != nil && !isNotFound(err) {
			return err
		}
		if snap != nil && snap.Exists() {
			already = true
			return nil
		}

		now := a.now()
		for _, m := range model.SeedMedicines(now) {
			if err := tx.Create(a.client.Collection(medicinesCollection).NewDoc(), newMedicineDoc(m)); err != nil {
				return err
			}
		}
		return tx.Create(marker, map[string]interface{}{
			"initialized":    true,
			"initialized_at": now.UTC(),
			"collections":    []string{donationsCollection, medicinesCollection, volunteersCollection, profilesCollection},
		})
	})
	if err != nil {
		a.log.Errorf("Initialization failed: %v", err)
		return model.InitResult{Success: false, Message: "Failed to initialize Firebase: " + err.Error()}
	}

	if already {
		return model.InitResult{
			Success:            true,
			Message:            "Database is already initialized.",
			AlreadyInitialized: true,
		}
	}
	a.log.Info("Firebase collections initialized")
	return model.InitResult{Success: true, Message: "Firebase collections initialized successfully!"}
}

func (a *Adapter) SubmitDonation(ctx context.Context, input model.DonationInput, imageURLs []string) model.DbResult[model.CreatedID] {
	d := model.NewDonation(input, imageURLs, a.now())
	ref, _, err := a.client.Collection(donationsCollection).Add(ctx, newDonationDoc(d))
	if err != nil {
		a.log.WithFields(map[string]interface{}{"operation": "submitDonation"}).Errorf("write failed: %v", err)
		return model.Fail[model.CreatedID](err.Error())
	}
	return model.Ok(model.CreatedID{ID: ref.ID}, model.MsgDonationSubmitted)
}

func (a *Adapter) GetDonations(ctx context.Context) []model.Donation {
	snaps, err := a.client.Collection(donationsCollection).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		a.log.Errorf("Error fetching donations: %v", err)
		return []model.Donation{}
	}

	out := make([]model.Donation, 0, len(snaps))
	for _, snap := range snaps {
		var doc donationDoc
		if err := snap.DataTo(&doc); err != nil {
			a.log.Warnf("Skipping malformed donation %s: %v", snap.Ref.ID, err)
			continue
		}
		out = append(out, doc.toModel(snap.Ref.ID))
	}
	return out
}

func (a *Adapter) GetDonationByID(ctx context.Context, id string) *model.Donation {
	if !validDocID(id) {
		return nil
	}
	snap, err := a.client.Collection(donationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if !isNotFound(err) {
			a.log.Errorf("Error fetching donation %s: %v", id, err)
		}
		return nil
	}
	var doc donationDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil
	}
	d := doc.toModel(snap.Ref.ID)
	return &d
}

func (a *Adapter) UpdateDonationStatus(ctx context.Context, id string, s model.DonationStatus) model.DbResult[model.Empty] {
	if !s.Valid() {
		return model.Fail[model.Empty](model.MsgInvalidStatus)
	}
	if !validDocID(id) {
		return model.Fail[model.Empty](model.MsgDonationNotFound)
	}

	_, err := a.client.Collection(donationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(s)},
	})
	if err != nil {
		if isNotFound(err) {
			return model.Fail[model.Empty](model.MsgDonationNotFound)
		}
		a.log.Errorf("Error updating donation %s: %v", id, err)
		return model.Fail[model.Empty](err.Error())
	}
	return model.OkEmpty()
}

func (a *Adapter) GetMedicines(ctx context.Context) []model.Medicine {
	snaps, err := a.client.Collection(medicinesCollection).
		Where("available", "==", true).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		a.log.Errorf("Error fetching medicines: %v", err)
		return []model.Medicine{}
	}

	out := make([]model.Medicine, 0, len(snaps))
	for _, snap := range snaps {
		var doc medicineDoc
		if err := snap.DataTo(&doc); err != nil {
			a.log.Warnf("Skipping malformed medicine %s: %v", snap.Ref.ID, err)
			continue
		}
		out = append(out, doc.toModel(snap.Ref.ID))
	}
	return out
}

func (a *Adapter) GetMedicineByID(ctx context.Context, id string) *model.Medicine {
	if !validDocID(id) {
		return nil
	}
	snap, err := a.client.Collection(medicinesCollection).Doc(id).Get(ctx)
	if err != nil {
		if !isNotFound(err) {
			a.log.Errorf("Error fetching medicine %s: %v", id, err)
		}
		return nil
	}
	var doc medicineDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil
	}
	m := doc.toModel(snap.Ref.ID)
	return &m
}

// InsertMedicine adds a catalog entry outside the adapter contract.
func (a *Adapter) InsertMedicine(ctx context.Context, m model.Medicine) (string, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = a.now().UTC()
	}
	ref, _, err := a.client.Collection(medicinesCollection).Add(ctx, newMedicineDoc(m))
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (a *Adapter) SubmitVolunteer(ctx context.Context, input model.VolunteerInput) model.DbResult[model.CreatedID] {
	v := model.NewVolunteer(input, a.now())
	ref, _, err := a.client.Collection(volunteersCollection).Add(ctx, newVolunteerDoc(v))
	if err != nil {
		a.log.WithFields(map[string]interface{}{"operation": "submitVolunteer"}).Errorf("write failed: %v", err)
		return model.Fail[model.CreatedID](err.Error())
	}
	return model.Ok(model.CreatedID{ID: ref.ID}, model.MsgVolunteerSubmitted)
}

func (a *Adapter) GetVolunteers(ctx context.Context) []model.Volunteer {
	snaps, err := a.client.Collection(volunteersCollection).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		a.log.Errorf("Error fetching volunteers: %v", err)
		return []model.Volunteer{}
	}

	out := make([]model.Volunteer, 0, len(snaps))
	for _, snap := range snaps {
		var doc volunteerDoc
		if err := snap.DataTo(&doc); err != nil {
			a.log.Warnf("Skipping malformed volunteer %s: %v", snap.Ref.ID, err)
			continue
		}
		out = append(out, doc.toModel(snap.Ref.ID))
	}
	return out
}

func (a *Adapter) GetProfile(ctx context.Context, userID string) *model.Profile {
	if !validDocID(userID) {
		return nil
	}
	snap, err := a.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if !isNotFound(err) {
			a.log.Errorf("Error fetching profile %s: %v", userID, err)
		}
		return nil
	}
	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil
	}
	p := doc.toModel(snap.Ref.ID)
	return &p
}

// UpsertProfile reads and merges inside a transaction so created_at is only
// written by the call that creates the document.
func (a *Adapter) UpsertProfile(ctx context.Context, update model.ProfileUpdate) model.DbResult[model.Empty] {
	if !validDocID(update.ID) {
		return model.Fail[model.Empty]("profile id is required")
	}
	ref := a.client.Collection(profilesCollection).Doc(update.ID)

	err := a.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var existing *model.Profile
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var doc profileDoc
			if err := snap.DataTo(&doc); err != nil {
				return err
			}
			p := doc.toModel(update.ID)
			existing = &p
		case !isNotFound(err):
			return err
		}
		return tx.Set(ref, newProfileDoc(update.Apply(existing, a.now())))
	})
	if err != nil {
		a.log.Errorf("Error upserting profile %s: %v", update.ID, err)
		return model.Fail[model.Empty](err.Error())
	}
	return model.OkEmpty()
}

func (a *Adapter) UploadImage(ctx context.Context, file model.File, folder string) *string {
	if a.objects == nil {
		return nil
	}
	name := objectName(file, folder, a.now(), a.newID())
	if err := a.objects.Write(ctx, name, file.MimeType(), file.Data); err != nil {
		a.log.WithFields(map[string]interface{}{"file": file.Name}).Errorf("Error uploading image: %v", err)
		return nil
	}
	url := downloadURL(a.bucket, name)
	return &url
}

func (a *Adapter) UploadMultipleImages(ctx context.Context, files []model.File, folder string) []string {
	return uploads.Fanout(ctx, files, func(ctx context.Context, f model.File) *string {
		return a.UploadImage(ctx, f, folder)
	})
}

func (a *Adapter) DeleteImage(ctx context.Context, url string) bool {
	if a.objects == nil {
		return false
	}
	name, ok := objectFromURL(a.bucket, url)
	if !ok {
		return false
	}
	if err := a.objects.Delete(ctx, name); err != nil {
		a.log.Errorf("Error deleting image %s: %v", name, err)
		return false
	}
	return true
}
