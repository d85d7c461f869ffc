//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"
	"time"

	"fleetrent/internal/domain/user"
	"fleetrent/internal/handler/dto/request"
	"fleetrent/internal/handler/dto/response"
	"fleetrent/internal/pkg/clock"
	"fleetrent/internal/pkg/config"
	"fleetrent/internal/pkg/jwt"
	"fleetrent/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// LoginUser authenticates through the login endpoint and returns the access
// token from the response body.
func LoginUser(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	w := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login",
		request.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res response.LoginResponse
	err := httptest.DecodeResponseBody(t, w.Body, &res)
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	return res.AccessToken
}

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID, tenantID uuid.UUID, role user.Role) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, h.cfg.AccessDuration, h.cfg.RefreshDuration, clock.NewRealClock())
	token, err := service.GenerateAccessToken(userID, tenantID, role)
	require.NoError(t, err)
	return token
}

// CreateExpiredToken signs a token whose validity window is already in the
// past, using a clock wound back beyond the access duration.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID, tenantID uuid.UUID, role user.Role) string {
	t.Helper()
	past := clock.NewMockClock(time.Now().Add(-h.cfg.AccessDuration - time.Hour))
	service := jwt.NewService(h.cfg.Secret, h.cfg.AccessDuration, h.cfg.RefreshDuration, past)
	token, err := service.GenerateAccessToken(userID, tenantID, role)
	require.NoError(t, err)
	return token
}
