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

func createConfig(t *testing.T, env *testEnv, token string, body map[string]any) service.ConfigView {
	t.Helper()
	status, resp := env.call(http.MethodPost, "/api/configs", token, body)
	require.Equal(t, http.StatusCreated, status, resp.Message)
	var view service.ConfigView
	decode(t, resp, &view)
	return view
}

func TestConfigRoutes_ValueRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(env.user("admin", models.RoleReviewer))

	tests := []struct {
		name  string
		typ   models.ConfigType
		value any
		want  string
	}{
		{name: "text", typ: models.ConfigTypeText, value: "hello", want: "hello"},
		{name: "image", typ: models.ConfigTypeImage, value: "/a.png", want: "/a.png"},
		{
			name:  "multi text",
			typ:   models.ConfigTypeMultiText,
			value: `[{"title":"T","content":"C","link":"/l"}]`,
			want:  `[{"title":"T","content":"C","link":"/l"}]`,
		},
		{name: "empty multi image", typ: models.ConfigTypeMultiImage, value: "[]", want: "[]"},
		{name: "multi image as array", typ: models.ConfigTypeMultiImage, value: []string{"/x.png"}, want: `["/x.png"]`},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := createConfig(t, env, token, map[string]any{
				"title": fmt.Sprintf("Config %d", i),
				"key":   fmt.Sprintf("config.%d", i),
				"type":  tt.typ,
				"value": tt.value,
			})
			assert.Equal(t, tt.want, created.Value)

			status, body := env.call(http.MethodGet, fmt.Sprintf("/api/configs/%d", created.ID), token, nil)
			require.Equal(t, http.StatusOK, status)
			var got service.ConfigView
			decode(t, body, &got)
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

func TestConfigRoutes_UpdateReplacesMultiValue(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(env.user("admin", models.RoleReviewer))

	created := createConfig(t, env, token, map[string]any{
		"title": "Banner", "key": "home.banner", "type": "MULTI_IMAGE", "value": `["x.png","y.png"]`,
	})
	var rows int64
	require.NoError(t, env.db.Model(&models.ConfigMultiImageValue{}).Where("config_id = ?", created.ID).Count(&rows).Error)
	require.Equal(t, int64(2), rows)

	path := fmt.Sprintf("/api/configs/%d", created.ID)
	status, body := env.call(http.MethodPatch, path, token, map[string]any{"value": `["z.png"]`})
	require.Equal(t, http.StatusOK, status)
	var got service.ConfigView
	decode(t, body, &got)
	assert.Equal(t, `["z.png"]`, got.Value)

	var stored []models.ConfigMultiImageValue
	require.NoError(t, env.db.Where("config_id = ?", created.ID).Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "z.png", stored[0].URL)

	t.Run("key and type are immutable", func(t *testing.T) {
		status, _ := env.call(http.MethodPut, path, token, map[string]any{"key": "other.key"})
		assert.Equal(t, http.StatusBadRequest, status)
		status, _ = env.call(http.MethodPut, path, token, map[string]any{"type": "TEXT"})
		assert.Equal(t, http.StatusBadRequest, status)

		// Echoing the current values is allowed.
		status, _ = env.call(http.MethodPut, path, token, map[string]any{"key": "home.banner", "type": "MULTI_IMAGE"})
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("status toggle", func(t *testing.T) {
		status, _ := env.call(http.MethodPatch, path+"/status", token, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, status)

		status, body := env.call(http.MethodPatch, path+"/status", token, map[string]any{"isEnabled": false})
		require.Equal(t, http.StatusOK, status)
		var view service.ConfigView
		decode(t, body, &view)
		assert.False(t, view.IsEnabled)
	})

	t.Run("delete removes satellite rows", func(t *testing.T) {
		status, _ := env.call(http.MethodDelete, path, token, nil)
		require.Equal(t, http.StatusOK, status)

		var left int64
		require.NoError(t, env.db.Model(&models.ConfigMultiImageValue{}).Where("config_id = ?", created.ID).Count(&left).Error)
		assert.Zero(t, left)

		status, _ = env.call(http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestConfigRoutes_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(env.user("admin", models.RoleReviewer))
	createConfig(t, env, token, map[string]any{"title": "Site", "key": "site.name", "type": "TEXT", "value": "Wiki"})

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "duplicate key", body: map[string]any{"title": "Other", "key": "site.name", "type": "TEXT"}, want: http.StatusConflict},
		{name: "duplicate title", body: map[string]any{"title": "Site", "key": "site.other", "type": "TEXT"}, want: http.StatusConflict},
		{name: "unknown type", body: map[string]any{"title": "X", "key": "x", "type": "VIDEO"}, want: http.StatusBadRequest},
		{name: "bad multi value", body: map[string]any{"title": "Y", "key": "y", "type": "MULTI_TEXT", "value": "not json"}, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.call(http.MethodPost, "/api/configs", token, tt.body)
			assert.Equal(t, tt.want, status)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Config{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
