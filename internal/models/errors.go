package models

import "errors"

// Error taxonomy for catalog mutations. Handlers map each of these to a
// distinct user-visible outcome, so the sentinels must stay separate:
// a denied owner check must never read as "not found" and vice versa.
var (
	// ErrValidation signals a required form field was missing or empty.
	ErrValidation = errors.New("required field missing")

	// ErrConflict signals a slug collision: the category slug, or the
	// (category, item slug) pair, is already taken.
	ErrConflict = errors.New("slug already in use")

	// ErrNotFound signals an unknown category or item.
	ErrNotFound = errors.New("resource not found")

	// ErrNotOwner signals an authenticated user acting on a resource
	// they do not own.
	ErrNotOwner = errors.New("not the resource owner")

	// ErrNotAuthenticated signals a mutating operation attempted from an
	// anonymous session.
	ErrNotAuthenticated = errors.New("authentication required")

	// ErrWrongIssuer signals an identity token from an issuer outside
	// the accepted allow-list.
	ErrWrongIssuer = errors.New("identity token issuer not accepted")
)
