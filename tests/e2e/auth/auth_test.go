//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"studio-backend/internal/domain/user"
	reqdto "studio-backend/internal/handler/dto/request"
	resdto "studio-backend/internal/handler/dto/response"
	"studio-backend/tests/common/authtest"
	"studio-backend/tests/common/dbtest"
	"studio-backend/tests/common/httptest"
	"studio-backend/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthSuite struct {
	e2e.SharedSuite
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) TestRegisterAndLogin() {
	s.Run("register creates an account and issues tokens", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/auth/register", reqdto.RegisterRequest{
			Name:     "Maria Souza",
			Email:    "maria@example.com",
			Password: "password123",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var body resdto.LoginResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
		require.NotEqual(t, uuid.Nil, body.UserID)
		require.NotEmpty(t, body.AccessToken)
		require.NotNil(t, httptest.ExtractCookie(w, "access_token"))
		require.NotNil(t, httptest.ExtractCookie(w, "refresh_token"))

		token := authtest.LoginUser(t, s.Router, "maria@example.com", "password123")
		require.NotEmpty(t, token)
	})

	s.Run("duplicate email is rejected", func() {
		t := s.T()

		dbtest.CreateTestUser(t, s.DB, "taken@example.com", string(user.RoleCustomer))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/auth/register", reqdto.RegisterRequest{
			Name:     "Outro Usuario",
			Email:    "taken@example.com",
			Password: "password123",
		}, "")
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	s.Run("wrong password is rejected", func() {
		t := s.T()

		dbtest.CreateTestUser(t, s.DB, "maria@example.com", string(user.RoleCustomer))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/auth/login", reqdto.LoginRequest{
			Email:    "maria@example.com",
			Password: "wrong-password",
		}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	})
}

func (s *AuthSuite) TestMe() {
	s.Run("authenticated user sees their profile", func() {
		t := s.T()

		token := authtest.CreateAndLogin(t, s.DB, s.Router, "me@example.com", string(user.RoleCustomer))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/auth/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body resdto.MeResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &body))
		require.NotNil(t, body.User)
		require.Equal(t, "me@example.com", body.User.Email)
	})

	s.Run("missing token is rejected", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/auth/me", nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("customer cannot reach admin routes", func() {
		t := s.T()

		token := authtest.CreateAndLogin(t, s.DB, s.Router, "plain@example.com", string(user.RoleCustomer))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/admin/chat/threads", nil, token)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}
