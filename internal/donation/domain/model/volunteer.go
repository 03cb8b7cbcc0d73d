package model

import (
	"strings"
	"time"
)

// VolunteerStatus is the lifecycle state of a volunteer application.
type VolunteerStatus string

const (
	VolunteerStatusPending  VolunteerStatus = "pending"
	VolunteerStatusApproved VolunteerStatus = "approved"
	VolunteerStatusRejected VolunteerStatus = "rejected"
)

// Volunteer is a stored volunteer application.
type Volunteer struct {
	ID                string          `json:"id"`
	FullName          string          `json:"full_name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Address           string          `json:"address"`
	DateOfBirth       string          `json:"date_of_birth,omitempty"`
	Occupation        string          `json:"occupation,omitempty"`
	Experience        string          `json:"experience,omitempty"`
	Availability      string          `json:"availability,omitempty"`
	Role              string          `json:"role,omitempty"`
	Motivation        string          `json:"motivation,omitempty"`
	EmergencyContact  string          `json:"emergency_contact,omitempty"`
	EmergencyPhone    string          `json:"emergency_phone,omitempty"`
	HasTransport      bool            `json:"has_transport"`
	CanLift           bool            `json:"can_lift"`
	MedicalConditions string          `json:"medical_conditions,omitempty"`
	References        string          `json:"references,omitempty"`
	Status            VolunteerStatus `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
}

// VolunteerInput is the caller-facing application shape.
type VolunteerInput struct {
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	DateOfBirth       string `json:"dateOfBirth,omitempty"`
	Occupation        string `json:"occupation,omitempty"`
	Experience        string `json:"experience,omitempty"`
	Availability      string `json:"availability,omitempty"`
	Role              string `json:"role,omitempty"`
	Motivation        string `json:"motivation,omitempty"`
	EmergencyContact  string `json:"emergencyContact,omitempty"`
	EmergencyPhone    string `json:"emergencyPhone,omitempty"`
	HasTransport      bool   `json:"hasTransport,omitempty"`
	CanLift           bool   `json:"canLift,omitempty"`
	MedicalConditions string `json:"medicalConditions,omitempty"`
	References        string `json:"references,omitempty"`
}

// NewVolunteer maps an input to the stored shape with status pending.
func NewVolunteer(in VolunteerInput, now time.Time) Volunteer {
	return Volunteer{
		FullName:          strings.TrimSpace(in.FullName),
		Email:             strings.TrimSpace(in.Email),
		Phone:             strings.TrimSpace(in.Phone),
		Address:           strings.TrimSpace(in.Address),
		DateOfBirth:       strings.TrimSpace(in.DateOfBirth),
		Occupation:        strings.TrimSpace(in.Occupation),
		Experience:        SanitizeText(in.Experience),
		Availability:      strings.TrimSpace(in.Availability),
		Role:              strings.TrimSpace(in.Role),
		Motivation:        SanitizeText(in.Motivation),
		EmergencyContact:  strings.TrimSpace(in.EmergencyContact),
		EmergencyPhone:    strings.TrimSpace(in.EmergencyPhone),
		HasTransport:      in.HasTransport,
		CanLift:           in.CanLift,
		MedicalConditions: SanitizeText(in.MedicalConditions),
		References:        SanitizeText(in.References),
		Status:            VolunteerStatusPending,
		CreatedAt:         now.UTC(),
	}
}
