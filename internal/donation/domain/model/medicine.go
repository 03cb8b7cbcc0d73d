package model

import (
	"strings"
	"time"
)

// Medicine is the catalog projection of a distribution-ready donation.
type Medicine struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	GenericName string    `json:"generic_name,omitempty"`
	Dosage      string    `json:"dosage"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  string    `json:"expiry_date"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Available   bool      `json:"available"`
	Verified    bool      `json:"verified"`
	ImageURLs   []string  `json:"image_urls"`
	CreatedAt   time.Time `json:"created_at"`
}

// MedicineInput is accepted by the bridge's catalog creation route.
type MedicineInput struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	GenericName string   `json:"genericName,omitempty"`
	Dosage      string   `json:"dosage"`
	Quantity    int      `json:"quantity"`
	ExpiryDate  string   `json:"expiryDate"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Verified    bool     `json:"verified"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}

// NewMedicine maps an input to the stored shape; new catalog entries are always available.
func NewMedicine(in MedicineInput, now time.Time) Medicine {
	urls := in.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return Medicine{
		Name:        strings.TrimSpace(in.Name),
		Brand:       strings.TrimSpace(in.Brand),
		GenericName: strings.TrimSpace(in.GenericName),
		Dosage:      strings.TrimSpace(in.Dosage),
		Quantity:    in.Quantity,
		ExpiryDate:  strings.TrimSpace(in.ExpiryDate),
		Category:    strings.TrimSpace(in.Category),
		Condition:   strings.TrimSpace(in.Condition),
		Available:   true,
		Verified:    in.Verified,
		ImageURLs:   urls,
		CreatedAt:   now.UTC(),
	}
}
