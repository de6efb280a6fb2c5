// Package auth handles user credentials and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/groupledger/internal/models"
)

// Authenticator verifies user credentials. The credential format depends on
// the implementation.
type Authenticator interface {
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
	ValidateCredential(credential string) error
}
