package queries

import (
	"context"

	"github.com/google/uuid"
)

type UserReadStore interface {
	FindCredentialsByEmail(ctx context.Context, email string) (*CredentialsView, error)
	FindByID(ctx context.Context, id uuid.UUID) (*AuthorizedUserView, error)
}
