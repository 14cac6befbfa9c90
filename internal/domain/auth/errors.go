package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrWorkspaceNotFound   = errors.New("workspace not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidOAuthState   = errors.New("invalid oauth state")
)
