package service

import "errors"

// Error kinds. Handlers map them to HTTP statuses.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// Error is a user-facing error of a given kind.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// validationError builds an ErrValidation with msg.
func validationError(msg string) error {
	return newError(ErrValidation, msg)
}

var (
	ErrUserExists         = newError(ErrConflict, "User already exists")
	ErrMissingCredentials = newError(ErrValidation, "Please provide email and password")
	ErrInvalidCredentials = newError(ErrUnauthorized, "Invalid credentials")
	ErrUserNotFound       = newError(ErrNotFound, "User not found")
	ErrEmailInUse         = newError(ErrConflict, "Email already in use")
	ErrMissingPasswords   = newError(ErrValidation, "Please provide current and new password")
	ErrWrongPassword      = newError(ErrUnauthorized, "Current password is incorrect")
	ErrMissingEmail       = newError(ErrValidation, "Please provide an email to search")

	ErrPropertyNotFound = newError(ErrNotFound, "Property not found")
	ErrNotPropertyOwner = newError(ErrForbidden, "Not authorized to perform this action on this property")
	ErrListingIDTaken   = newError(ErrConflict, "Listing ID already exists")
	ErrMissingQuery     = newError(ErrValidation, "Please provide a search query")

	ErrFavoriteNotFound     = newError(ErrNotFound, "Favorite not found")
	ErrAlreadyFavorite      = newError(ErrConflict, "Property already in favorites")
	ErrFavoriteRemoveDenied = newError(ErrForbidden, "Not authorized to remove this favorite")
	ErrFavoriteUpdateDenied = newError(ErrForbidden, "Not authorized to update this favorite")

	ErrMissingRecipient           = newError(ErrValidation, "Please provide a recipient")
	ErrRecipientNotFound          = newError(ErrNotFound, "Recipient user not found")
	ErrSelfRecommendation         = newError(ErrValidation, "Cannot recommend a property to yourself")
	ErrRecommendationNotFound     = newError(ErrNotFound, "Recommendation not found")
	ErrRecommendationUpdateDenied = newError(ErrForbidden, "Not authorized to update this recommendation")
	ErrRecommendationDeleteDenied = newError(ErrForbidden, "Not authorized to delete this recommendation")
)
