package model

// DbResult is the uniform outcome envelope of mutating operations.
type DbResult[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreatedID is the payload returned by create operations.
type CreatedID struct {
	ID string `json:"id"`
}

// Empty is the payload of operations that return no data.
type Empty struct{}

// InitResult reports the outcome of provisioning a backend.
type InitResult struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	AlreadyInitialized bool   `json:"alreadyInitialized,omitempty"`
}

// Ok builds a successful result carrying data.
func Ok[T any](data T, message string) DbResult[T] {
	return DbResult[T]{Success: true, Data: &data, Message: message}
}

// OkEmpty builds a successful result without data.
func OkEmpty() DbResult[Empty] {
	return DbResult[Empty]{Success: true}
}

// Fail builds a failed result with an error description.
func Fail[T any](err string) DbResult[T] {
	return DbResult[T]{Success: false, Error: err}
}

// Messages shared by every adapter.
const (
	MsgDonationSubmitted  = "Donation submitted successfully!"
	MsgVolunteerSubmitted = "Application submitted successfully!"
	MsgDonationNotFound   = "Donation not found"
	MsgInvalidStatus      = "invalid donation status"
	MsgSchemaMissing      = "Database tables not set up. Please run the setup scripts first."
)
