package service

import "github.com/fjod/go_cart/storefront/internal/backend"

// Fallback messages shown when the backend gives no message of its own.
const (
	MsgLoginFailed    = "Invalid email or password"
	MsgRegisterFailed = "Registration failed. Email may already be in use."
	MsgFetchFailed    = "Failed to load products. Please check if the backend server is running."
	MsgCreateFailed   = "Failed to create product"
	MsgUpdateFailed   = "Failed to update product"
	MsgDeleteFailed   = "Request failed"
)

// ActionError is a failed backend-backed action. Error() is the text to show the user.
type ActionError struct {
	Action  string
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func actionError(action, fallback string, err error) error {
	return &ActionError{
		Action:  action,
		Message: backend.UserMessage(err, fallback),
		Err:     err,
	}
}
