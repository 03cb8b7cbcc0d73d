package firebase

import (
	"time"

	"vitamend-data/internal/donation/domain/model"
)

// Firestore document shapes. Field names match the stored snake_case keys.

type donationDoc struct {
	MedicineName string    `firestore:"medicine_name"`
	Brand        string    `firestore:"brand"`
	GenericName  string    `firestore:"generic_name,omitempty"`
	Dosage       string    `firestore:"dosage"`
	Quantity     int       `firestore:"quantity"`
	ExpiryDate   string    `firestore:"expiry_date"`
	Condition    string    `firestore:"condition"`
	Category     string    `firestore:"category"`
	DonorName    string    `firestore:"donor_name"`
	DonorEmail   string    `firestore:"donor_email"`
	DonorPhone   string    `firestore:"donor_phone"`
	DonorAddress string    `firestore:"donor_address"`
	Notes        string    `firestore:"notes,omitempty"`
	ImageURLs    []string  `firestore:"image_urls"`
	Status       string    `firestore:"status"`
	Verified     bool      `firestore:"verified"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func newDonationDoc(d model.Donation) donationDoc {
	return donationDoc{
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
		ImageURLs:    d.ImageURLs,
		Status:       string(d.Status),
		Verified:     d.Verified,
		CreatedAt:    d.CreatedAt,
	}
}

func (doc donationDoc) toModel(id string) model.Donation {
	urls := doc.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return model.Donation{
		ID:           id,
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

type medicineDoc struct {
	Name        string    `firestore:"name"`
	Brand       string    `firestore:"brand"`
	GenericName string    `firestore:"generic_name,omitempty"`
	Dosage      string    `firestore:"dosage"`
	Quantity    int       `firestore:"quantity"`
	ExpiryDate  string    `firestore:"expiry_date"`
	Category    string    `firestore:"category"`
	Condition   string    `firestore:"condition"`
	Available   bool      `firestore:"available"`
	Verified    bool      `firestore:"verified"`
	ImageURLs   []string  `firestore:"image_urls"`
	CreatedAt   time.Time `firestore:"created_at"`
}

func newMedicineDoc(m model.Medicine) medicineDoc {
	urls := m.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return medicineDoc{
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

func (doc medicineDoc) toModel(id string) model.Medicine {
	urls := doc.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return model.Medicine{
		ID:          id,
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

type volunteerDoc struct {
	FullName          string    `firestore:"full_name"`
	Email             string    `firestore:"email"`
	Phone             string    `firestore:"phone"`
	Address           string    `firestore:"address"`
	DateOfBirth       string    `firestore:"date_of_birth,omitempty"`
	Occupation        string    `firestore:"occupation,omitempty"`
	Experience        string    `firestore:"experience,omitempty"`
	Availability      string    `firestore:"availability,omitempty"`
	Role              string    `firestore:"role,omitempty"`
	Motivation        string    `firestore:"motivation,omitempty"`
	EmergencyContact  string    `firestore:"emergency_contact,omitempty"`
	EmergencyPhone    string    `firestore:"emergency_phone,omitempty"`
	HasTransport      bool      `firestore:"has_transport"`
	CanLift           bool      `firestore:"can_lift"`
	MedicalConditions string    `firestore:"medical_conditions,omitempty"`
	References        string    `firestore:"references,omitempty"`
	Status            string    `firestore:"status"`
	CreatedAt         time.Time `firestore:"created_at"`
}

func newVolunteerDoc(v model.Volunteer) volunteerDoc {
	return volunteerDoc{
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

func (doc volunteerDoc) toModel(id string) model.Volunteer {
	return model.Volunteer{
		ID:                id,
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

type profileDoc struct {
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name,omitempty"`
	AvatarURL string    `firestore:"avatar_url,omitempty"`
	Role      string    `firestore:"role"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func newProfileDoc(p model.Profile) profileDoc {
	return profileDoc{
		Email:     p.Email,
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (doc profileDoc) toModel(id string) model.Profile {
	return model.Profile{
		ID:        id,
		Email:     doc.Email,
		Name:      doc.Name,
		AvatarURL: doc.AvatarURL,
		Role:      doc.Role,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
