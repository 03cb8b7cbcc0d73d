package model

// LivesPerDistribution is how many people one distributed donation is
// counted as helping.
const LivesPerDistribution = 3

// DonationStats are the public transparency counters.
type DonationStats struct {
	TotalDonations    int `json:"totalDonations"`
	MedicinesVerified int `json:"medicinesVerified"`
	LivesHelped       int `json:"livesHelped"`
	ActiveVolunteers  int `json:"activeVolunteers"`
}

// ComputeStats counts verified and distributed donations as verified, and
// approved volunteers as active.
func ComputeStats(donations []Donation, volunteers []Volunteer) DonationStats {
	stats := DonationStats{TotalDonations: len(donations)}
	distributed := 0
	for _, d := range donations {
		switch d.Status {
		case DonationStatusDistributed:
			distributed++
			stats.MedicinesVerified++
		case DonationStatusVerified:
			stats.MedicinesVerified++
		}
	}
	stats.LivesHelped = distributed * LivesPerDistribution
	for _, v := range volunteers {
		if v.Status == VolunteerStatusApproved {
			stats.ActiveVolunteers++
		}
	}
	return stats
}
