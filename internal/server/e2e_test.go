package server

import (
	"fmt"
	"net/http"
	"testing"

	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, env *testEnv, username, password string) service.LoginResult {
	t.Helper()
	status, body := env.call(http.MethodPost, "/api/login", "", map[string]any{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status, body.Message)
	var result service.LoginResult
	decode(t, body, &result)
	require.NotEmpty(t, result.Token)
	return result
}

func TestE2E_AdminConsoleFlow(t *testing.T) {
	env := newTestEnv(t)
	env.user("root", models.RoleSuperAdmin)
	reviewer := env.user("reviewer", models.RoleReviewer)
	gone := env.user("gone", models.RoleReviewer)
	env.user("member", models.RoleUser)
	require.NoError(t, env.db.Delete(gone).Error)

	session := login(t, env, "root", testPassword)
	assert.Equal(t, models.RoleSuperAdmin, session.User.Role)

	var stored models.User
	require.NoError(t, env.db.Where("username = ?", "root").First(&stored).Error)
	require.NotNil(t, stored.LastLoginAt)

	status, body := env.call(http.MethodGet, "/api/admins", session.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.CodeSuccess, body.Code)
	var page models.Page[models.User]
	decode(t, body, &page)
	assert.Equal(t, int64(2), page.Total)
	for _, u := range page.Items {
		assert.NotEqual(t, gone.ID, u.ID)
	}

	reviewerSession := login(t, env, "reviewer", testPassword)
	status, body = env.call(http.MethodPut, fmt.Sprintf("/api/admins/%d", reviewer.ID), reviewerSession.Token,
		map[string]any{"role": "SUPER_ADMIN"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, http.StatusForbidden, body.Code)

	require.NoError(t, env.db.First(&stored, reviewer.ID).Error)
	assert.Equal(t, models.RoleReviewer, stored.Role)

	t.Run("login failures", func(t *testing.T) {
		tests := []struct {
			name     string
			username string
			password string
			want     int
		}{
			{name: "wrong password", username: "root", password: "nope-nope", want: http.StatusUnauthorized},
			{name: "unknown user", username: "ghost", password: testPassword, want: http.StatusUnauthorized},
			{name: "soft deleted", username: "gone", password: testPassword, want: http.StatusUnauthorized},
			{name: "normal user", username: "member", password: testPassword, want: http.StatusForbidden},
			{name: "blank", username: "", password: "", want: http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				status, body := env.call(http.MethodPost, "/api/login", "",
					map[string]any{"username": tt.username, "password": tt.password})
				assert.Equal(t, tt.want, status)
				assert.Equal(t, "null", string(body.Data))
			})
		}
	})
}
