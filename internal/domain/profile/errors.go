package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrOwnProfile      = errors.New("cannot unlock own profile")
)
