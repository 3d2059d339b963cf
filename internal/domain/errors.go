package domain

import "errors"

// ValidationError blocks an action locally; no network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

var (
	ErrPasswordMismatch = NewValidationError("Passwords do not match")
	ErrPasswordTooWeak  = NewValidationError("Password must be at least 6 characters")
	ErrMissingImage     = NewValidationError("Please provide an image URL or upload an image file.")
	ErrImageTooLarge    = NewValidationError("File size must be less than 5MB")
	ErrInvalidImageURL  = NewValidationError("Image URL is not valid")
	ErrEmptyCart        = NewValidationError("Your cart is empty!")
	ErrInvalidQuantity  = NewValidationError("Quantity must be at least 1")
)

var (
	ErrUnauthorized  = errors.New("Please login as a user to add items to cart.")
	ErrAdminRequired = errors.New("Admin access required. Please login as admin.")
)

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
