package model

import "time"

// SeedMedicines returns the demonstration catalog inserted by a first-time init.
// Expiry dates are relative to now.
func SeedMedicines(now time.Time) []Medicine {
	now = now.UTC()
	return []Medicine{
		{
			Name:        "Paracetamol 500mg",
			Brand:       "Calpol",
			GenericName: "Paracetamol",
			Dosage:      "500mg",
			Quantity:    100,
			ExpiryDate:  now.AddDate(0, 0, 365).Format("2006-01-02"),
			Category:    "Pain Relief",
			Condition:   "New",
			Available:   true,
			Verified:    true,
			ImageURLs:   []string{},
			CreatedAt:   now,
		},
		{
			Name:        "Amoxicillin 250mg",
			Brand:       "Amoxil",
			GenericName: "Amoxicillin",
			Dosage:      "250mg",
			Quantity:    50,
			ExpiryDate:  now.AddDate(0, 0, 180).Format("2006-01-02"),
			Category:    "Antibiotics",
			Condition:   "New",
			Available:   true,
			Verified:    true,
			ImageURLs:   []string{},
			CreatedAt:   now.Add(-time.Second),
		},
	}
}
