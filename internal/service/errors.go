package service

import "errors"

// User-facing failures. The transport layer maps these onto the messages the
// app has always shown; anything else is an infrastructure error and surfaces
// as a generic 500.
var (
	ErrUserNotFound    = errors.New("user does not exist")
	ErrUserDeleted     = errors.New("account was deleted")
	ErrInvalidPassword = errors.New("the password is incorrect")
	ErrWeakPassword    = errors.New("password does not meet the policy")
	ErrLoginTaken      = errors.New("username is already taken")
	ErrEmailTaken      = errors.New("email is already taken")
	ErrNotFound        = errors.New("user not found")
	ErrNoChanges       = errors.New("no changes")
)
