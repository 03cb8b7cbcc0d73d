package model

import "strings"

// Provider names a backing store implementation.
type Provider string

const (
	ProviderSupabase Provider = "supabase"
	ProviderFirebase Provider = "firebase"
	ProviderMongoDB  Provider = "mongodb"
	ProviderMySQL    Provider = "mysql"
	ProviderMock     Provider = "mock"

	// DefaultProvider is used when the configured value is unset or unrecognised.
	DefaultProvider = ProviderSupabase
)

// Providers lists every known provider.
func Providers() []Provider {
	return []Provider{ProviderSupabase, ProviderFirebase, ProviderMongoDB, ProviderMySQL, ProviderMock}
}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	for _, known := range Providers() {
		if p == known {
			return true
		}
	}
	return false
}

// ParseProvider maps a configuration string to a provider, falling back to
// DefaultProvider for empty or unknown values.
func ParseProvider(s string) Provider {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return DefaultProvider
	}
	return p
}
