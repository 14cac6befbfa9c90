package workspace

import "errors"

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrSlugExists        = errors.New("workspace slug already taken")
)
