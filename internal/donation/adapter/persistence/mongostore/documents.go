package mongostore

import (
	"time"

	"vitamend-data/internal/donation/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type donationDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	DonationID   string             `bson:"donation_id"`
	MedicineName string             `bson:"medicine_name"`
	Brand        string             `bson:"brand"`
	GenericName  string             `bson:"generic_name,omitempty"`
	Dosage       string             `bson:"dosage"`
	Quantity     int                `bson:"quantity"`
	ExpiryDate   string             `bson:"expiry_date"`
	Condition    string             `bson:"condition"`
	Category     string             `bson:"category"`
	DonorName    string             `bson:"donor_name"`
	DonorEmail   string             `bson:"donor_email"`
	DonorPhone   string             `bson:"donor_phone"`
	DonorAddress string             `bson:"donor_address"`
	Notes        string             `bson:"notes,omitempty"`
	ImageURLs    []string           `bson:"image_urls"`
	Status       string             `bson:"status"`
	Verified     bool               `bson:"verified"`
	IsReserved   bool               `bson:"is_reserved"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toDonationDocument(d model.Donation) donationDocument {
	urls := d.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return donationDocument{
		DonationID:   d.DonationID,
		MedicineName: d.MedicineName,
		Brand:        d.Brand,
		GenericName:  d.GenericName,
		Dosage:       d.Dosage,
		Quantity:     d.Quantity,
		ExpiryDate:   d.ExpiryDate,
		Condition:    d.Condition,
		Category:     d.Category,
		DonorName:    d.DonorName,
		DonorEmail:   d.DonorEmail,
		DonorPhone:   d.DonorPhone,
		DonorAddress: d.DonorAddress,
		Notes:        d.Notes,
		ImageURLs:    urls,
		Status:       string(d.Status),
		Verified:     d.Verified,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.CreatedAt,
	}
}

func (doc donationDocument) toModel() model.Donation {
	urls := doc.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return model.Donation{
		ID:           doc.ID.Hex(),
		DonationID:   doc.DonationID,
		MedicineName: doc.MedicineName,
		Brand:        doc.Brand,
		GenericName:  doc.GenericName,
		Dosage:       doc.Dosage,
		Quantity:     doc.Quantity,
		ExpiryDate:   doc.ExpiryDate,
		Condition:    doc.Condition,
		Category:     doc.Category,
		DonorName:    doc.DonorName,
		DonorEmail:   doc.DonorEmail,
		DonorPhone:   doc.DonorPhone,
		DonorAddress: doc.DonorAddress,
		Notes:        doc.Notes,
		ImageURLs:    urls,
		Status:       model.DonationStatus(doc.Status),
		Verified:     doc.Verified,
		CreatedAt:    doc.CreatedAt,
	}
}

type medicineDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Brand       string             `bson:"brand"`
	GenericName string             `bson:"generic_name,omitempty"`
	Dosage      string             `bson:"dosage"`
	Quantity    int                `bson:"quantity"`
	ExpiryDate  string             `bson:"expiry_date"`
	Category    string             `bson:"category"`
	Condition   string             `bson:"condition"`
	Available   bool               `bson:"available"`
	Verified    bool               `bson:"verified"`
	ImageURLs   []string           `bson:"image_urls"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func toMedicineDocument(m model.Medicine) medicineDocument {
	urls := m.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return medicineDocument{
		Name:        m.Name,
		Brand:       m.Brand,
		GenericName: m.GenericName,
		Dosage:      m.Dosage,
		Quantity:    m.Quantity,
		ExpiryDate:  m.ExpiryDate,
		Category:    m.Category,
		Condition:   m.Condition,
		Available:   m.Available,
		Verified:    m.Verified,
		ImageURLs:   urls,
		CreatedAt:   m.CreatedAt,
	}
}

func (doc medicineDocument) toModel() model.Medicine {
	urls := doc.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return model.Medicine{
		ID:          doc.ID.Hex(),
		Name:        doc.Name,
		Brand:       doc.Brand,
		GenericName: doc.GenericName,
		Dosage:      doc.Dosage,
		Quantity:    doc.Quantity,
		ExpiryDate:  doc.ExpiryDate,
		Category:    doc.Category,
		Condition:   doc.Condition,
		Available:   doc.Available,
		Verified:    doc.Verified,
		ImageURLs:   urls,
		CreatedAt:   doc.CreatedAt,
	}
}

type volunteerDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	FullName          string             `bson:"full_name"`
	Email             string             `bson:"email"`
	Phone             string             `bson:"phone"`
	Address           string             `bson:"address"`
	DateOfBirth       string             `bson:"date_of_birth,omitempty"`
	Occupation        string             `bson:"occupation,omitempty"`
	Experience        string             `bson:"experience,omitempty"`
	Availability      string             `bson:"availability,omitempty"`
	Role              string             `bson:"role,omitempty"`
	Motivation        string             `bson:"motivation,omitempty"`
	EmergencyContact  string             `bson:"emergency_contact,omitempty"`
	EmergencyPhone    string             `bson:"emergency_phone,omitempty"`
	HasTransport      bool               `bson:"has_transport"`
	CanLift           bool               `bson:"can_lift"`
	MedicalConditions string             `bson:"medical_conditions,omitempty"`
	References        string             `bson:"references,omitempty"`
	Status            string             `bson:"status"`
	CreatedAt         time.Time          `bson:"created_at"`
}

func toVolunteerDocument(v model.Volunteer) volunteerDocument {
	return volunteerDocument{
		FullName:          v.FullName,
		Email:             v.Email,
		Phone:             v.Phone,
		Address:           v.Address,
		DateOfBirth:       v.DateOfBirth,
		Occupation:        v.Occupation,
		Experience:        v.Experience,
		Availability:      v.Availability,
		Role:              v.Role,
		Motivation:        v.Motivation,
		EmergencyContact:  v.EmergencyContact,
		EmergencyPhone:    v.EmergencyPhone,
		HasTransport:      v.HasTransport,
		CanLift:           v.CanLift,
		MedicalConditions: v.MedicalConditions,
		References:        v.References,
		Status:            string(v.Status),
		CreatedAt:         v.CreatedAt,
	}
}

func (doc volunteerDocument) toModel() model.Volunteer {
	return model.Volunteer{
		ID:                doc.ID.Hex(),
		FullName:          doc.FullName,
		Email:             doc.Email,
		Phone:             doc.Phone,
		Address:           doc.Address,
		DateOfBirth:       doc.DateOfBirth,
		Occupation:        doc.Occupation,
		Experience:        doc.Experience,
		Availability:      doc.Availability,
		Role:              doc.Role,
		Motivation:        doc.Motivation,
		EmergencyContact:  doc.EmergencyContact,
		EmergencyPhone:    doc.EmergencyPhone,
		HasTransport:      doc.HasTransport,
		CanLift:           doc.CanLift,
		MedicalConditions: doc.MedicalConditions,
		References:        doc.References,
		Status:            model.VolunteerStatus(doc.Status),
		CreatedAt:         doc.CreatedAt,
	}
}

// profileDocument is keyed by the identity provider's user id.
type profileDocument struct {
	UserID    string    `bson:"_id"`
	Email     string    `bson:"email"`
	Name      string    `bson:"name,omitempty"`
	AvatarURL string    `bson:"avatar_url,omitempty"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (doc profileDocument) toModel() model.Profile {
	return model.Profile{
		ID:        doc.UserID,
		Email:     doc.Email,
		Name:      doc.Name,
		AvatarURL: doc.AvatarURL,
		Role:      doc.Role,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
