package domain

import (
	"errors"
	"fmt"
)

// Error classes. The HTTP layer maps them to status codes with errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error is a classified error whose message is safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalidf builds an ErrInvalidInput with a formatted message.
func Invalidf(format string, args ...interface{}) *Error {
	return NewError(ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Artwork errors
var (
	ErrArtworkNotFound  = NewError(ErrNotFound, "Artwork not found")
	ErrNotArtworkOwner  = NewError(ErrForbidden, "Only the owner can delete this artwork")
	ErrMissingFile      = NewError(ErrInvalidInput, "No file uploaded")
	ErrNotAnImage       = NewError(ErrInvalidInput, "Only image files are allowed")
	ErrFileTooLarge     = NewError(ErrInvalidInput, "File exceeds the upload size limit")
	ErrTitleRequired    = NewError(ErrInvalidInput, "Title is required")
	ErrEmptySearchQuery = NewError(ErrInvalidInput, "Search query is required")
)

// Game errors
var (
	ErrNegativeScore = NewError(ErrInvalidInput, "score, maxScore and timeSpent must be non-negative")
)

// User errors
var (
	ErrUserNotFound           = NewError(ErrNotFound, "User not found")
	ErrInvalidCredentials     = NewError(ErrUnauthenticated, "Invalid credentials")
	ErrInvalidMarketplaceRole = NewError(ErrInvalidInput, "marketplaceRole must be one of viewer, artist, collector")
	ErrUsernameTaken          = NewError(ErrConflict, "Username already exists")
	ErrEmailTaken             = NewError(ErrConflict, "Email already registered")
)
