package commands

import (
	"context"
	"log/slog"

	"fleetrent/internal/domain/user"
	"fleetrent/internal/infra"
	"fleetrent/internal/pkg/errs"
	"fleetrent/internal/pkg/jwt"
	"fleetrent/internal/pkg/password"
	"fleetrent/internal/usecase/queries"
	"fleetrent/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errs.New("invalid credentials")
	ErrUserInactive       = errs.New("user inactive")
	ErrTokenGeneration    = errs.New("token generation failed")
	ErrTokenValidation    = errs.New("token validation failed")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Tokens   TokenPair
}

type AuthCommands interface {
	Login(ctx context.Context, email, plainPassword string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// TokenValidator is what the auth middleware needs: nothing more than
// claims extraction.
type TokenValidator interface {
	ValidateAccessToken(token string) (userID, tenantID uuid.UUID, role user.Role, err error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	readStore  queries.UserReadStore
	jwtService *jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, readStore queries.UserReadStore, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		readStore:  readStore,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, email, plainPassword string) (*LoginResult, error) {
	creds, err := a.readStore.FindCredentialsByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// Same error as a bad password; never reveal which.
			return nil, ErrInvalidCredentials
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if !creds.IsActive {
		return nil, ErrUserInactive
	}

	if verifyErr := password.Verify(creds.PasswordHash, plainPassword); verifyErr != nil {
		return nil, ErrInvalidCredentials
	}

	role, err := user.NewRole(creds.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidCredentials)
	}

	tokens, err := a.generatePair(creds.ID, creds.TenantID, role)
	if err != nil {
		return nil, err
	}

	// last_login is informational; a failure here must not fail the login.
	if updateErr := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, tx.DB(), creds.ID)
	}); updateErr != nil {
		slog.Warn("failed to update last login", "user_id", creds.ID, "error", updateErr.Error())
	}

	return &LoginResult{
		UserID:   creds.ID,
		TenantID: creds.TenantID,
		Tokens:   *tokens,
	}, nil
}

func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrTokenValidation
	}

	role, err := user.NewRole(claims.Role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}

	// Re-check the user still exists and is active before reissuing.
	view, err := a.readStore.FindByID(ctx, claims.UserID)
	if err != nil || !view.IsActive {
		return nil, ErrTokenValidation
	}

	return a.generatePair(claims.UserID, claims.TenantID, role)
}

func (a *authCommandsImpl) generatePair(userID, tenantID uuid.UUID, role user.Role) (*TokenPair, error) {
	accessToken, err := a.jwtService.GenerateAccessToken(userID, tenantID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	refreshToken, err := a.jwtService.GenerateRefreshToken(userID, tenantID, role)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{jwtService: jwtService}
}

func (v *tokenValidatorImpl) ValidateAccessToken(token string) (uuid.UUID, uuid.UUID, user.Role, error) {
	claims, err := v.jwtService.ValidateToken(token)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return uuid.Nil, uuid.Nil, "", jwt.ErrInvalidToken
	}
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", jwt.ErrInvalidToken
	}
	return claims.UserID, claims.TenantID, role, nil
}
