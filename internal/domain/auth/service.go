package auth

import "context"

// AuthService defines authentication business logic.
type AuthService interface {
	// Register creates a workspace and its owner user.
	Register(ctx context.Context, req RegisterRequest, session SessionTrackingRequest) (RegisterResponse, error)

	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)

	RefreshToken(ctx context.Context, req RefreshTokenRequest, session SessionTrackingRequest) (TokenResponse, error)

	Logout(ctx context.Context, refreshToken string) error

	// LoginWithGoogle returns the OAuth2 redirect URL for the consent screen.
	LoginWithGoogle(ctx context.Context, userAgent string) (redirectURL string, err error)

	// OAuthCallbackGoogle exchanges the code and logs the matched user in.
	OAuthCallbackGoogle(ctx context.Context, code string, session SessionTrackingRequest) (TokenResponse, error)
}
