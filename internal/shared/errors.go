package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already in use")
	// ErrWeakCredential indicates the password does not meet the minimum strength.
	ErrWeakCredential = errors.New("password too weak")
	// ErrNoIdentity indicates an operation requiring authentication ran without one.
	ErrNoIdentity = errors.New("no authenticated identity")
)
