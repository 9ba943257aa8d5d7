package bank

import "errors"

// Error kinds. Every operation failure wraps exactly one of them.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrAuthorization     = errors.New("authorization error")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Error is a user-facing operation failure. Message is the notice shown to
// the user; Kind classifies it.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Authorization failures callers may want to tell apart.
var (
	ErrNoSession     = &Error{Kind: ErrAuthorization, Message: "Login first"}
	ErrAdminOnly     = &Error{Kind: ErrAuthorization, Message: "Admin only"}
	ErrBadCredential = &Error{Kind: ErrAuthorization, Message: "Incorrect password"}
)

func invalid(msg string) error      { return &Error{Kind: ErrValidation, Message: msg} }
func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func insufficient(msg string) error { return &Error{Kind: ErrInsufficientFunds, Message: msg} }
