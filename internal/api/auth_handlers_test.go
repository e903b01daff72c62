package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicware/ambulatorio-scheduling/internal/auth"
)

var _ auth.Repository = (*stubUserRepository)(nil)

type stubUserRepository struct {
	GetUserByUsernameFunc func(ctx context.Context, username string) (*auth.User, error)
}

func (s *stubUserRepository) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.GetUserByUsernameFunc == nil {
		return nil, errors.New("GetUserByUsernameFunc not stubbed")
	}
	return s.GetUserByUsernameFunc(ctx, username)
}

func meRequest(username string) *http.Request {
	claims := &auth.Claims{}
	claims.Subject = username
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	return req.WithContext(context.WithValue(req.Context(), claimsKey, claims))
}

func TestMeHandler(t *testing.T) {
	newService := func(repo auth.Repository) *auth.Service {
		return auth.NewService(repo, auth.NewTokenManager("test-secret", time.Hour), zap.NewNop())
	}

	t.Run("returns the session user", func(t *testing.T) {
		repo := &stubUserRepository{
			GetUserByUsernameFunc: func(ctx context.Context, username string) (*auth.User, error) {
				return &auth.User{
					ID:         uuid.New(),
					Username:   username,
					Ambulatori: []string{"pta_centro"},
				}, nil
			},
		}
		rec := httptest.NewRecorder()
		meHandler(newService(repo))(rec, meRequest("admin"))

		require.Equal(t, http.StatusOK, rec.Code)

		var res UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "admin", res.Username)
		assert.Equal(t, []string{"pta_centro"}, res.Ambulatori)
	})

	t.Run("deleted user invalidates the session", func(t *testing.T) {
		repo := &stubUserRepository{
			GetUserByUsernameFunc: func(ctx context.Context, username string) (*auth.User, error) {
				return nil, auth.ErrUserNotFound
			},
		}
		rec := httptest.NewRecorder()
		meHandler(newService(repo))(rec, meRequest("ghost"))

		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var res ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "invalid_token", res.Error)
	})

	t.Run("storage failure is not an auth failure", func(t *testing.T) {
		repo := &stubUserRepository{
			GetUserByUsernameFunc: func(ctx context.Context, username string) (*auth.User, error) {
				return nil, errors.New("connection refused")
			},
		}
		rec := httptest.NewRecorder()
		meHandler(newService(repo))(rec, meRequest("admin"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("no claims means no session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		rec := httptest.NewRecorder()
		meHandler(newService(&stubUserRepository{}))(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
