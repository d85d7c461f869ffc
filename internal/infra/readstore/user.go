package readstore

import (
	"context"

	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/pgconv"
	"fleetrent/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserReadStore struct {
	db *pgxpool.Pool
}

func NewUserReadStore(db *pgxpool.Pool) *UserReadStore {
	return &UserReadStore{db: db}
}

const findCredentialsSQL = `
SELECT id, tenant_id, email, password_hash, role, is_active
FROM users
WHERE email = $1 AND is_active = true`

func (s *UserReadStore) FindCredentialsByEmail(ctx context.Context, email string) (*queries.CredentialsView, error) {
	var view queries.CredentialsView
	err := s.db.QueryRow(ctx, findCredentialsSQL, email).Scan(
		&view.ID, &view.TenantID, &view.Email, &view.PasswordHash, &view.Role, &view.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user credentials", err)
	}
	return &view, nil
}

const findUserByIDSQL = `
SELECT id, tenant_id, email, role, is_active
FROM users
WHERE id = $1`

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var view queries.AuthorizedUserView
	err := s.db.QueryRow(ctx, findUserByIDSQL, id).Scan(
		&view.ID, &view.TenantID, &view.Email, &view.Role, &view.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return &view, nil
}
