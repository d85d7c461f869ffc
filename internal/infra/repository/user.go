package repository

import (
	"context"

	"fleetrent/internal/infra"
	"fleetrent/internal/usecase/shared"

	"github.com/google/uuid"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const updateLastLoginSQL = `
UPDATE users
SET last_login_at = now()
WHERE id = $1 AND is_active = true`

func (r *UserRepository) UpdateLastLogin(ctx context.Context, db shared.DBTX, userID uuid.UUID) error {
	if _, err := db.Exec(ctx, updateLastLoginSQL, userID); err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}
