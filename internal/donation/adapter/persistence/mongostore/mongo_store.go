package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	apperrors "vitamend-data/internal/shared/errors"
	"vitamend-data/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/singleflight"
)

const (
	donationsCollection  = "donations"
	medicinesCollection  = "medicines"
	volunteersCollection = "volunteers"
	profilesCollection   = "profiles"

	// NamespaceExists
	codeNamespaceExists = 48

	connectTimeout = 15 * time.Second
)

// DialFunc opens and verifies a client connection.
type DialFunc func(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error)

// Dial connects with the driver and pings the primary.
func Dial(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// MongoStore is the MongoDB implementation of Store. The connection is opened
// on first use; concurrent cold callers share one attempt and a failed
// attempt is retried by the next caller.
type MongoStore struct {
	cfg   config.MongoConfig
	dial  DialFunc
	group singleflight.Group

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database

	now func() time.Time
	log logger.Logger
}

// Option customises a MongoStore.
type Option func(*MongoStore)

// WithDialer replaces the connection function.
func WithDialer(dial DialFunc) Option {
	return func(s *MongoStore) { s.dial = dial }
}

// NewMongoStore returns a store that connects lazily.
func NewMongoStore(cfg config.MongoConfig, log logger.Logger, opts ...Option) *MongoStore {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &MongoStore{
		cfg:  cfg,
		dial: Dial,
		now:  time.Now,
		log:  log.WithComponent("bridge-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// database returns the connected database handle, connecting once.
func (s *MongoStore) database(ctx context.Context) (*mongo.Database, error) {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()
	if db != nil {
		return db, nil
	}

	// The attempt is shared, so it must not die with whichever caller started it.
	dialCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("connect", func() (interface{}, error) {
		s.mu.RLock()
		db := s.db
		s.mu.RUnlock()
		if db != nil {
			return db, nil
		}

		if err := s.cfg.Validate(); err != nil {
			return nil, err
		}

		s.log.Info("Connecting to MongoDB")
		connectCtx, cancel := context.WithTimeout(dialCtx, connectTimeout)
		defer cancel()
		client, err := s.dial(connectCtx, s.cfg)
		if err != nil {
			s.log.Errorf("MongoDB connection failed: %v", err)
			return nil, apperrors.NewInfrastructureError("failed to connect to document store").WithCause(err)
		}

		db = client.Database(s.cfg.DatabaseName)
		s.mu.Lock()
		s.client = client
		s.db = db
		s.mu.Unlock()
		s.log.Infof("Connected to MongoDB database %s", s.cfg.DatabaseName)
		return db, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Database), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *MongoStore) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := s.database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	db, err := s.database(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

// Close disconnects the client if one was opened.
func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.db = nil
	s.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (s *MongoStore) Initialize(ctx context.Context, seed []model.Medicine) (bool, error) {
	db, err := s.database(ctx)
	if err != nil {
		return false, err
	}

	for _, name := range []string{donationsCollection, medicinesCollection, volunteersCollection, profilesCollection} {
		if err := db.CreateCollection(ctx, name); err != nil && !isNamespaceExists(err) {
			return false, fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}

	indexes := map[string][]mongo.IndexModel{
		donationsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "donation_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		medicinesCollection: {
			{Keys: bson.D{{Key: "available", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		volunteersCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return false, fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}

	medicines := db.Collection(medicinesCollection)
	count, err := medicines.CountDocuments(ctx, bson.D{})
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	docs := make([]interface{}, 0, len(seed))
	for _, m := range seed {
		docs = append(docs, toMedicineDocument(m))
	}
	if len(docs) > 0 {
		if _, err := medicines.InsertMany(ctx, docs); err != nil {
			return false, fmt.Errorf("failed to insert seed medicines: %w", err)
		}
	}
	s.log.Infof("Seeded %d medicines", len(docs))
	return false, nil
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == codeNamespaceExists
	}
	return false
}

func (s *MongoStore) CreateDonation(ctx context.Context, d model.Donation) (string, error) {
	coll, err := s.collection(ctx, donationsCollection)
	if err != nil {
		return "", err
	}
	doc := toDonationDocument(d)
	if doc.DonationID == "" {
		doc.DonationID = model.NewDonationReference(s.now())
	}
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return insertedHex(res.InsertedID), nil
}

func insertedHex(id interface{}) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}

func (s *MongoStore) ListDonations(ctx context.Context) ([]model.Donation, error) {
	coll, err := s.collection(ctx, donationsCollection)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.D{}, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []donationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Donation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel())
	}
	return out, nil
}

// donationFilters returns the lookups tried in order for id.
func donationFilters(id string) []bson.M {
	filters := make([]bson.M, 0, 2)
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		filters = append(filters, bson.M{"_id": oid})
	}
	return append(filters, bson.M{"donation_id": id})
}

func (s *MongoStore) FindDonation(ctx context.Context, id string) (*model.Donation, error) {
	coll, err := s.collection(ctx, donationsCollection)
	if err != nil {
		return nil, err
	}
	for _, filter := range donationFilters(id) {
		var doc donationDocument
		err := coll.FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, err
		}
		d := doc.toModel()
		return &d, nil
	}
	return nil, apperrors.ErrDonationNotFound
}

func (s *MongoStore) SetDonationStatus(ctx context.Context, id string, status model.DonationStatus) error {
	coll, err := s.collection(ctx, donationsCollection)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"status": string(status), "updated_at": s.now().UTC()}}
	for _, filter := range donationFilters(id) {
		res, err := coll.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}
	return apperrors.ErrDonationNotFound
}

func (s *MongoStore) CreateMedicine(ctx context.Context, m model.Medicine) (string, error) {
	coll, err := s.collection(ctx, medicinesCollection)
	if err != nil {
		return "", err
	}
	res, err := coll.InsertOne(ctx, toMedicineDocument(m))
	if err != nil {
		return "", err
	}
	return insertedHex(res.InsertedID), nil
}

func (s *MongoStore) ListAvailableMedicines(ctx context.Context) ([]model.Medicine, error) {
	coll, err := s.collection(ctx, medicinesCollection)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{"available": true}, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []medicineDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Medicine, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (s *MongoStore) FindMedicine(ctx context.Context, id string) (*model.Medicine, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrInvalidIdentifier
	}
	coll, err := s.collection(ctx, medicinesCollection)
	if err != nil {
		return nil, err
	}
	var doc medicineDocument
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrMedicineNotFound
		}
		return nil, err
	}
	m := doc.toModel()
	return &m, nil
}

func (s *MongoStore) CreateVolunteer(ctx context.Context, v model.Volunteer) (string, error) {
	coll, err := s.collection(ctx, volunteersCollection)
	if err != nil {
		return "", err
	}
	res, err := coll.InsertOne(ctx, toVolunteerDocument(v))
	if err != nil {
		return "", err
	}
	return insertedHex(res.InsertedID), nil
}

func (s *MongoStore) ListVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	coll, err := s.collection(ctx, volunteersCollection)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.D{}, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []volunteerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Volunteer, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel())
	}
	return out, nil
}

func (s *MongoStore) FindProfile(ctx context.Context, userID string) (*model.Profile, error) {
	coll, err := s.collection(ctx, profilesCollection)
	if err != nil {
		return nil, err
	}
	var doc profileDocument
	if err := coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

func (s *MongoStore) UpsertProfile(ctx context.Context, update model.ProfileUpdate) error {
	if update.ID == "" {
		return apperrors.ErrInvalidIdentifier
	}
	coll, err := s.collection(ctx, profilesCollection)
	if err != nil {
		return err
	}
	_, err = coll.UpdateOne(ctx, bson.M{"_id": update.ID}, profileUpsert(update, s.now().UTC()), options.Update().SetUpsert(true))
	return err
}

// profileUpsert sets the present fields and updated_at; created_at, and the
// default role when none is given, are only written on insert.
func profileUpsert(update model.ProfileUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	for name, value := range update.Fields() {
		set[name] = value
	}
	onInsert := bson.M{"created_at": now}
	if role, ok := set["role"]; !ok || role == "" {
		delete(set, "role")
		onInsert["role"] = model.DefaultProfileRole
	}
	if _, ok := set["email"]; !ok {
		onInsert["email"] = ""
	}
	return bson.M{"$set": set, "$setOnInsert": onInsert}
}
