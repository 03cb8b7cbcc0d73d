package model

import "time"

// DefaultProfileRole is assigned when a profile is first created without a role.
const DefaultProfileRole = "donor"

// Profile is keyed by the external identity provider's user id.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate is a partial profile. Nil fields are absent and preserved on merge.
type ProfileUpdate struct {
	ID        string  `json:"id"`
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Role      *string `json:"role,omitempty"`
}

// Fields returns the present fields keyed by their stored names.
func (u ProfileUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Email != nil {
		fields["email"] = *u.Email
	}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.AvatarURL != nil {
		fields["avatar_url"] = *u.AvatarURL
	}
	if u.Role != nil {
		fields["role"] = *u.Role
	}
	return fields
}

// Apply merges u onto existing. A nil existing creates a new profile with the
// default role and created_at set to now; updated_at is always now.
func (u ProfileUpdate) Apply(existing *Profile, now time.Time) Profile {
	var p Profile
	if existing != nil {
		p = *existing
	} else {
		p = Profile{ID: u.ID, Role: DefaultProfileRole, CreatedAt: now.UTC()}
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.Role != nil && *u.Role != "" {
		p.Role = *u.Role
	}
	p.UpdatedAt = now.UTC()
	return p
}

// StringPtr is a convenience for building ProfileUpdate values.
func StringPtr(s string) *string {
	return &s
}
