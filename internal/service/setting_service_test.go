package service

import (
	"context"
	"testing"

	"wikiadmin/internal/cache"
	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedSettings_Defaults(t *testing.T) {
	t.Parallel()
	got := typedSettings(map[string]string{})
	assert.Equal(t, SystemSettings{DefaultUserRole: "user", MaxUploadSize: 10}, got)

	got = typedSettings(map[string]string{
		"siteName":             "Wiki",
		"allowRegistration":    "true",
		"articleReviewEnabled": "yes",
		"maxUploadSize":        "25",
		"defaultUserRole":      "editor",
	})
	assert.Equal(t, "Wiki", got.SiteName)
	assert.True(t, got.AllowRegistration)
	assert.False(t, got.ArticleReviewEnabled)
	assert.Equal(t, 25, got.MaxUploadSize)
	assert.Equal(t, "editor", got.DefaultUserRole)

	got = typedSettings(map[string]string{"maxUploadSize": "lots"})
	assert.Equal(t, 10, got.MaxUploadSize)
}

func TestSettingService_UpdateInvalidatesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer cache.SetClient(nil)

	db := testutil.OpenDB(t)
	ctx := context.Background()
	svc := NewSettingService(repository.NewSettingRepository(db))

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, first.SiteName)
	assert.True(t, mr.Exists(cache.SettingsKey))

	require.NoError(t, svc.Update(ctx, map[string]any{
		"siteName":          "Docs",
		"allowRegistration": true,
		"maxUploadSize":     float64(20),
		"icp":               nil,
	}))
	assert.False(t, mr.Exists(cache.SettingsKey))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Docs", got.SiteName)
	assert.True(t, got.AllowRegistration)
	assert.Equal(t, 20, got.MaxUploadSize)

	raw, err := repository.NewSettingRepository(db).All(ctx)
	require.NoError(t, err)
	assert.NotContains(t, raw, "icp")
	assert.Equal(t, "true", raw["allowRegistration"])
}

func TestSettingService_UpdateRejectsBadKeys(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db))
	err := svc.Update(context.Background(), map[string]any{"  ": "x"})
	requireCode(t, err, models.CodeValidation)
}

func TestSettingService_UpdateKeepsLargeNumbersPlain(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	svc := NewSettingService(repository.NewSettingRepository(db))

	require.NoError(t, svc.Update(ctx, map[string]any{
		"maxUploadSize": float64(1000000),
		"ratio":         0.25,
	}))

	raw, err := repository.NewSettingRepository(db).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1000000", raw["maxUploadSize"])
	assert.Equal(t, "0.25", raw["ratio"])

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000000, got.MaxUploadSize)
}
