// Package auth issues and validates session tokens and verifies credentials.
package auth

import (
	"context"

	"github.com/mmynk/lifeareas/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// Swapping password auth for another method does not touch the service layer.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error

	// Lookup returns the user with the given ID, or nil if none exists.
	Lookup(ctx context.Context, userID string) (*models.User, error)
}
