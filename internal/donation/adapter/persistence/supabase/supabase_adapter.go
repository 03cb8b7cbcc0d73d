package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/uploads"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/shared/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	donationColumns = `id::text, medicine_name, brand, generic_name, dosage, quantity, expiry_date, condition,
		category, donor_name, donor_email, donor_phone, donor_address, notes, image_urls, status, verified, created_at`
	medicineColumns = `id::text, name, brand, generic_name, dosage, quantity, expiry_date, category, condition,
		available, verified, image_urls, created_at`
	volunteerColumns = `id::text, full_name, email, phone, address, date_of_birth, occupation, experience, availability,
		role, motivation, emergency_contact, emergency_phone, has_transport, can_lift, medical_conditions,
		"references", status, created_at`
	profileColumns = `id, email, name, avatar_url, role, created_at, updated_at`
)

// Adapter talks to the Supabase Postgres database directly and to Supabase
// Storage through its S3-compatible endpoint.
type Adapter struct {
	db      *sql.DB
	cfg     config.SupabaseConfig
	storage *bucket
	migrate func(databaseURL string) error
	log     logger.Logger
}

// New validates cfg and opens the connection pool and storage client.
func New(ctx context.Context, cfg config.SupabaseConfig, log logger.Logger) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open supabase database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		db.SetConnMaxLifetime(lifetime)
	}

	var objects ObjectAPI
	if cfg.StorageEnabled() {
		client, err := NewObjectClient(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		objects = client
	}

	return NewWithDB(db, cfg, objects, log), nil
}

// NewWithDB wires an adapter around an existing pool. objects may be nil, in
// which case uploads return nil and deletes false.
func NewWithDB(db *sql.DB, cfg config.SupabaseConfig, objects ObjectAPI, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	a := &Adapter{
		db:      db,
		cfg:     cfg,
		migrate: ReapplyMigrations,
		log:     log.WithComponent("supabase-adapter"),
	}
	if objects != nil {
		a.storage = newBucket(objects, cfg)
	} else {
		a.log.Warn("Storage endpoint not configured, image uploads are disabled")
	}
	return a
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) Provider() model.Provider {
	return model.ProviderSupabase
}

// logReadError logs at debug for an absent table and at error otherwise.
func (a *Adapter) logReadError(op string, err error) {
	if isTableNotFoundError(err) {
		a.log.Debugf("%s: table not found, returning empty result", op)
		return
	}
	a.log.WithFields(map[string]interface{}{"operation": op}).Errorf("query failed: %v", err)
}

// writeError converts a write failure into the message returned to callers.
func (a *Adapter) writeError(op string, err error) string {
	if isTableNotFoundError(err) {
		a.log.Warnf("%s: table not found", op)
		return model.MsgSchemaMissing
	}
	a.log.WithFields(map[string]interface{}{"operation": op}).Errorf("write failed: %v", err)
	return err.Error()
}

// checkSchema reports nil when the profiles table answers.
func (a *Adapter) checkSchema(ctx context.Context) error {
	rows, err := a.db.QueryContext(ctx, `SELECT id FROM profiles LIMIT 1`)
	if err != nil {
		return err
	}
	return rows.Close()
}

func (a *Adapter) InitDatabase(ctx context.Context) model.InitResult {
	err := a.checkSchema(ctx)
	if err == nil {
		return model.InitResult{
			Success:            true,
			Message:            "Database is already initialized.",
			AlreadyInitialized: true,
		}
	}
	if !isTableNotFoundError(err) {
		a.log.Errorf("Schema check failed: %v", err)
		return model.InitResult{Success: false, Message: "Failed to check database: " + err.Error()}
	}

	a.log.Info("Tables not found, applying migrations")
	if err := a.migrate(a.cfg.DBURL); err != nil {
		a.log.Errorf("Migration failed: %v", err)
		return model.InitResult{
			Success: false,
			Message: "Supabase requires manual table creation. Please run the SQL setup scripts. (" + err.Error() + ")",
		}
	}
	if err := a.checkSchema(ctx); err != nil {
		a.log.Errorf("Schema still missing after migrations: %v", err)
		return model.InitResult{
			Success: false,
			Message: "Supabase requires manual table creation. Please run the SQL setup scripts. (" + err.Error() + ")",
		}
	}

	return model.InitResult{Success: true, Message: "Database initialized successfully!"}
}

func (a *Adapter) SubmitDonation(ctx context.Context, input model.DonationInput, imageURLs []string) model.DbResult[model.CreatedID] {
	d := model.NewDonation(input, imageURLs, time.Now())

	var id string
	err := a.db.QueryRowContext(ctx, `
		INSERT INTO donations (medicine_name, brand, generic_name, dosage, quantity, expiry_date, condition, category,
			donor_name, donor_email, donor_phone, donor_address, notes, image_urls, status, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id::text`,
		d.MedicineName, d.Brand, nullString(d.GenericName), d.Dosage, d.Quantity, d.ExpiryDate, d.Condition, d.Category,
		d.DonorName, d.DonorEmail, d.DonorPhone, d.DonorAddress, nullString(d.Notes), pq.Array(d.ImageURLs),
		string(d.Status), d.Verified, d.CreatedAt,
	).Scan(&id)
	if err != nil {
		return model.Fail[model.CreatedID](a.writeError("submitDonation", err))
	}
	return model.Ok(model.CreatedID{ID: id}, model.MsgDonationSubmitted)
}

func (a *Adapter) GetDonations(ctx context.Context) []model.Donation {
	rows, err := a.db.QueryContext(ctx, `SELECT `+donationColumns+` FROM donations ORDER BY created_at DESC`)
	if err != nil {
		a.logReadError("getDonations", err)
		return []model.Donation{}
	}
	defer rows.Close()

	out := []model.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			a.logReadError("getDonations", err)
			return []model.Donation{}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		a.logReadError("getDonations", err)
		return []model.Donation{}
	}
	return out
}

func (a *Adapter) GetDonationByID(ctx context.Context, id string) *model.Donation {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	d, err := scanDonation(a.db.QueryRowContext(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			a.logReadError("getDonationById", err)
		}
		return nil
	}
	return &d
}

func (a *Adapter) UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus) model.DbResult[model.Empty] {
	if !status.Valid() {
		return model.Fail[model.Empty](model.MsgInvalidStatus)
	}
	if _, err := uuid.Parse(id); err != nil {
		return model.Fail[model.Empty](model.MsgDonationNotFound)
	}

	res, err := a.db.ExecContext(ctx, `UPDATE donations SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return model.Fail[model.Empty](a.writeError("updateDonationStatus", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Fail[model.Empty](model.MsgDonationNotFound)
	}
	return model.OkEmpty()
}

func (a *Adapter) GetMedicines(ctx context.Context) []model.Medicine {
	rows, err := a.db.QueryContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE available = true ORDER BY created_at DESC`)
	if err != nil {
		a.logReadError("getMedicines", err)
		return []model.Medicine{}
	}
	defer rows.Close()

	out := []model.Medicine{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			a.logReadError("getMedicines", err)
			return []model.Medicine{}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		a.logReadError("getMedicines", err)
		return []model.Medicine{}
	}
	return out
}

func (a *Adapter) GetMedicineByID(ctx context.Context, id string) *model.Medicine {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	m, err := scanMedicine(a.db.QueryRowContext(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			a.logReadError("getMedicineById", err)
		}
		return nil
	}
	return &m
}

// InsertMedicine adds a catalog entry. It is not part of the adapter contract
// and is used by provisioning tools and tests.
func (a *Adapter) InsertMedicine(ctx context.Context, m model.Medicine) (string, error) {
	if m.ImageURLs == nil {
		m.ImageURLs = []string{}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	var id string
	err := a.db.QueryRowContext(ctx, `
		INSERT INTO medicines (name, brand, generic_name, dosage, quantity, expiry_date, category, condition,
			available, verified, image_urls, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id::text`,
		m.Name, m.Brand, nullString(m.GenericName), m.Dosage, m.Quantity, m.ExpiryDate, m.Category, m.Condition,
		m.Available, m.Verified, pq.Array(m.ImageURLs), m.CreatedAt,
	).Scan(&id)
	return id, err
}

func (a *Adapter) SubmitVolunteer(ctx context.Context, input model.VolunteerInput) model.DbResult[model.CreatedID] {
	v := model.NewVolunteer(input, time.Now())

	var id string
	err := a.db.QueryRowContext(ctx, `
		INSERT INTO volunteers (full_name, email, phone, address, date_of_birth, occupation, experience, availability,
			role, motivation, emergency_contact, emergency_phone, has_transport, can_lift, medical_conditions,
			"references", status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id::text`,
		v.FullName, v.Email, v.Phone, v.Address, nullString(v.DateOfBirth), nullString(v.Occupation),
		nullString(v.Experience), nullString(v.Availability), nullString(v.Role), nullString(v.Motivation),
		nullString(v.EmergencyContact), nullString(v.EmergencyPhone), v.HasTransport, v.CanLift,
		nullString(v.MedicalConditions), nullString(v.References), string(v.Status), v.CreatedAt,
	).Scan(&id)
	if err != nil {
		return model.Fail[model.CreatedID](a.writeError("submitVolunteer", err))
	}
	return model.Ok(model.CreatedID{ID: id}, model.MsgVolunteerSubmitted)
}

func (a *Adapter) GetVolunteers(ctx context.Context) []model.Volunteer {
	rows, err := a.db.QueryContext(ctx, `SELECT `+volunteerColumns+` FROM volunteers ORDER BY created_at DESC`)
	if err != nil {
		a.logReadError("getVolunteers", err)
		return []model.Volunteer{}
	}
	defer rows.Close()

	out := []model.Volunteer{}
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			a.logReadError("getVolunteers", err)
			return []model.Volunteer{}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		a.logReadError("getVolunteers", err)
		return []model.Volunteer{}
	}
	return out
}

func (a *Adapter) GetProfile(ctx context.Context, userID string) *model.Profile {
	var (
		p               model.Profile
		name, avatarURL sql.NullString
	)
	err := a.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID).
		Scan(&p.ID, &p.Email, &name, &avatarURL, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			a.logReadError("getProfile", err)
		}
		return nil
	}
	p.Name = name.String
	p.AvatarURL = avatarURL.String
	return &p
}

func (a *Adapter) UpsertProfile(ctx context.Context, update model.ProfileUpdate) model.DbResult[model.Empty] {
	if update.ID == "" {
		return model.Fail[model.Empty]("profile id is required")
	}
	query, args := buildProfileUpsert(update, time.Now().UTC())
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return model.Fail[model.Empty](a.writeError("upsertProfile", err))
	}
	return model.OkEmpty()
}

// buildProfileUpsert inserts the present fields and, on conflict, overwrites
// only those fields plus updated_at. Column defaults supply email and role on
// first insert; created_at is never touched by the update branch.
func buildProfileUpsert(update model.ProfileUpdate, now time.Time) (string, []interface{}) {
	fields := update.Fields()
	if role, ok := fields["role"]; ok && role == "" {
		delete(fields, "role")
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := []string{"id", "created_at", "updated_at"}
	args := []interface{}{update.ID, now, now}
	sets := []string{"updated_at = EXCLUDED.updated_at"}
	for _, name := range names {
		cols = append(cols, name)
		args = append(args, fields[name])
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", name, name))
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO profiles (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "))
	return query, args
}

func (a *Adapter) UploadImage(ctx context.Context, file model.File, folder string) *string {
	if a.storage == nil {
		return nil
	}
	url, err := a.storage.upload(ctx, file, folder)
	if err != nil {
		a.log.WithFields(map[string]interface{}{"file": file.Name}).Errorf("upload failed: %v", err)
		return nil
	}
	return &url
}

func (a *Adapter) UploadMultipleImages(ctx context.Context, files []model.File, folder string) []string {
	return uploads.Fanout(ctx, files, func(ctx context.Context, f model.File) *string {
		return a.UploadImage(ctx, f, folder)
	})
}

func (a *Adapter) DeleteImage(ctx context.Context, url string) bool {
	if a.storage == nil {
		return false
	}
	ok, err := a.storage.remove(ctx, url)
	if err != nil {
		a.log.Errorf("delete failed for %s: %v", url, err)
		return false
	}
	return ok
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDonation(row rowScanner) (model.Donation, error) {
	var (
		d                  model.Donation
		genericName, notes sql.NullString
		status             string
	)
	err := row.Scan(&d.ID, &d.MedicineName, &d.Brand, &genericName, &d.Dosage, &d.Quantity, &d.ExpiryDate,
		&d.Condition, &d.Category, &d.DonorName, &d.DonorEmail, &d.DonorPhone, &d.DonorAddress, &notes,
		pq.Array(&d.ImageURLs), &status, &d.Verified, &d.CreatedAt)
	if err != nil {
		return d, err
	}
	d.GenericName = genericName.String
	d.Notes = notes.String
	d.Status = model.DonationStatus(status)
	if d.ImageURLs == nil {
		d.ImageURLs = []string{}
	}
	return d, nil
}

func scanMedicine(row rowScanner) (model.Medicine, error) {
	var (
		m           model.Medicine
		genericName sql.NullString
	)
	err := row.Scan(&m.ID, &m.Name, &m.Brand, &genericName, &m.Dosage, &m.Quantity, &m.ExpiryDate, &m.Category,
		&m.Condition, &m.Available, &m.Verified, pq.Array(&m.ImageURLs), &m.CreatedAt)
	if err != nil {
		return m, err
	}
	m.GenericName = genericName.String
	if m.ImageURLs == nil {
		m.ImageURLs = []string{}
	}
	return m, nil
}

func scanVolunteer(row rowScanner) (model.Volunteer, error) {
	var (
		v                                                     model.Volunteer
		dob, occupation, experience, availability, role       sql.NullString
		motivation, emergencyContact, emergencyPhone, medical sql.NullString
		references                                            sql.NullString
		status                                                string
	)
	err := row.Scan(&v.ID, &v.FullName, &v.Email, &v.Phone, &v.Address, &dob, &occupation, &experience,
		&availability, &role, &motivation, &emergencyContact, &emergencyPhone, &v.HasTransport, &v.CanLift,
		&medical, &references, &status, &v.CreatedAt)
	if err != nil {
		return v, err
	}
	v.DateOfBirth = dob.String
	v.Occupation = occupation.String
	v.Experience = experience.String
	v.Availability = availability.String
	v.Role = role.String
	v.Motivation = motivation.String
	v.EmergencyContact = emergencyContact.String
	v.EmergencyPhone = emergencyPhone.String
	v.MedicalConditions = medical.String
	v.References = references.String
	v.Status = model.VolunteerStatus(status)
	return v, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
