package project

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNotMember       = errors.New("user is not a member of this project")
	ErrAlreadyMember   = errors.New("user is already a member of this project")
	ErrForbidden       = errors.New("not allowed to access this project")
)
