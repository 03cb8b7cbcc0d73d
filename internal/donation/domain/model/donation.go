package model

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DonationStatus is the lifecycle state of a donation.
type DonationStatus string

const (
	DonationStatusPending     DonationStatus = "pending"
	DonationStatusVerified    DonationStatus = "verified"
	DonationStatusApproved    DonationStatus = "approved"
	DonationStatusDistributed DonationStatus = "distributed"
	DonationStatusRejected    DonationStatus = "rejected"
)

// Valid reports whether s is a known donation status. "approved" is accepted as
// a synonym of "verified" and persisted as given.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusPending, DonationStatusVerified, DonationStatusApproved,
		DonationStatusDistributed, DonationStatusRejected:
		return true
	}
	return false
}

// Donation is a donor's offer of a medicine, as stored.
type Donation struct {
	ID           string         `json:"id"`
	DonationID   string         `json:"donation_id,omitempty"`
	MedicineName string         `json:"medicine_name"`
	Brand        string         `json:"brand"`
	GenericName  string         `json:"generic_name,omitempty"`
	Dosage       string         `json:"dosage"`
	Quantity     int            `json:"quantity"`
	ExpiryDate   string         `json:"expiry_date"`
	Condition    string         `json:"condition"`
	Category     string         `json:"category"`
	DonorName    string         `json:"donor_name"`
	DonorEmail   string         `json:"donor_email"`
	DonorPhone   string         `json:"donor_phone"`
	DonorAddress string         `json:"donor_address"`
	Notes        string         `json:"notes,omitempty"`
	ImageURLs    []string       `json:"image_urls"`
	Status       DonationStatus `json:"status"`
	Verified     bool           `json:"verified"`
	CreatedAt    time.Time      `json:"created_at"`
}

// DonationInput is the caller-facing submission shape.
type DonationInput struct {
	MedicineName string `json:"medicineName"`
	Brand        string `json:"brand"`
	GenericName  string `json:"genericName,omitempty"`
	Dosage       string `json:"dosage"`
	Quantity     int    `json:"quantity"`
	ExpiryDate   string `json:"expiryDate"`
	Condition    string `json:"condition"`
	Category     string `json:"category"`
	DonorName    string `json:"donorName"`
	DonorEmail   string `json:"donorEmail"`
	DonorPhone   string `json:"donorPhone"`
	DonorAddress string `json:"donorAddress"`
	Notes        string `json:"notes,omitempty"`
}

// NewDonation maps an input to the stored shape with the forced initial
// lifecycle values: pending, unverified, created now.
func NewDonation(in DonationInput, imageURLs []string, now time.Time) Donation {
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return Donation{
		MedicineName: strings.TrimSpace(in.MedicineName),
		Brand:        strings.TrimSpace(in.Brand),
		GenericName:  strings.TrimSpace(in.GenericName),
		Dosage:       strings.TrimSpace(in.Dosage),
		Quantity:     in.Quantity,
		ExpiryDate:   strings.TrimSpace(in.ExpiryDate),
		Condition:    strings.TrimSpace(in.Condition),
		Category:     strings.TrimSpace(in.Category),
		DonorName:    strings.TrimSpace(in.DonorName),
		DonorEmail:   strings.TrimSpace(in.DonorEmail),
		DonorPhone:   strings.TrimSpace(in.DonorPhone),
		DonorAddress: strings.TrimSpace(in.DonorAddress),
		Notes:        SanitizeText(in.Notes),
		ImageURLs:    imageURLs,
		Status:       DonationStatusPending,
		Verified:     false,
		CreatedAt:    now.UTC(),
	}
}

const referenceAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewDonationReference returns an opaque human-facing reference such as
// DON-1718000000000-k3j9x0a2b.
func NewDonationReference(now time.Time) string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = referenceAlphabet[rand.Intn(len(referenceAlphabet))]
	}
	return fmt.Sprintf("DON-%d-%s", now.UnixMilli(), strings.ToUpper(string(b)))
}
