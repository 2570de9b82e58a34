package impl

import "errors"

var (
	ErrEmptyPassword   = errors.New("empty password")
	ErrEmptyEmail      = errors.New("empty email")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrPasswordLength  = errors.New("password too short")
	ErrPasswordWeak    = errors.New("password needs at least one letter and one digit")
	ErrEmptyField      = errors.New("missing required field")
	ErrEmptySubject    = errors.New("empty subject")
	ErrEmptyBody       = errors.New("empty body")
	ErrAlreadySent     = errors.New("alert already sent")
	ErrUnknownStatus   = errors.New("unknown subscription status")
	ErrMalformedDigest = errors.New("malformed password digest")
)
