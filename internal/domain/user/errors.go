package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("username already taken")
	ErrInvalidUserRole   = errors.New("invalid user role")
	ErrUserInUse         = errors.New("user is referenced by shipments")
)
