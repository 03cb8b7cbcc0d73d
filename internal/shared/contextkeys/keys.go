package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "vitamend context key " + string(c)
}

const (
	// RequestIDKey carries the bridge request id.
	RequestIDKey = contextKey("requestID")
	// ProviderKey carries the active database provider name.
	ProviderKey = contextKey("provider")
	// OperationKey carries the adapter operation being executed.
	OperationKey = contextKey("operation")
	// ComponentKey carries the component name for log correlation.
	ComponentKey = contextKey("component")
	// SubjectKey carries the subject of a verified bridge admin token.
	SubjectKey = contextKey("subject")
)
