package service

import (
	"context"
	"encoding/json"
	"testing"

	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newConfigService(t *testing.T) (*ConfigService, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	return NewConfigService(repository.NewConfigRepository(db)), db
}

func TestConfigService_CreateAndGet(t *testing.T) {
	svc, _ := newConfigService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, ConfigInput{
		Title: "Footer links",
		Key:   "footer.links",
		Type:  models.ConfigTypeMultiText,
		Value: json.RawMessage(`[{"title":"a","content":"b","link":"c"},{"title":"d","content":"e","link":"f"}]`),
	})
	require.NoError(t, err)
	assert.True(t, view.IsEnabled)
	assert.Equal(t, `[{"title":"a","content":"b","link":"c"},{"title":"d","content":"e","link":"f"}]`, view.Value)

	got, err := svc.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.Value, got.Value)

	_, err = svc.Create(ctx, ConfigInput{Title: "Other", Key: "footer.links", Type: models.ConfigTypeText})
	requireCode(t, err, models.CodeConflict)
	_, err = svc.Create(ctx, ConfigInput{Title: "Footer links", Key: "other", Type: models.ConfigTypeText})
	requireCode(t, err, models.CodeConflict)

	_, err = svc.Create(ctx, ConfigInput{Title: "Bad", Key: "1bad", Type: models.ConfigTypeText})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.Create(ctx, ConfigInput{Title: "Bad", Key: "bad", Type: "COLOR"})
	requireCode(t, err, models.CodeValidation)

	_, err = svc.Get(ctx, 9999)
	requireCode(t, err, models.CodeNotFound)
}

func TestConfigService_UpdateReplacesValue(t *testing.T) {
	svc, db := newConfigService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, ConfigInput{
		Title: "Banners",
		Key:   "home.banners",
		Type:  models.ConfigTypeMultiImage,
		Value: json.RawMessage(`["/a.png","/b.png","/c.png"]`),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, view.ID, ConfigUpdateInput{Value: json.RawMessage(`["/z.png"]`)})
	require.NoError(t, err)
	assert.Equal(t, `["/z.png"]`, updated.Value)

	var rows int64
	require.NoError(t, db.Model(&models.ConfigMultiImageValue{}).Where("config_id = ?", view.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	// No value keeps the stored one.
	updated, err = svc.Update(ctx, view.ID, ConfigUpdateInput{Description: ptr("hero images")})
	require.NoError(t, err)
	assert.Equal(t, `["/z.png"]`, updated.Value)
	assert.Equal(t, "hero images", updated.Description)

	updated, err = svc.Update(ctx, view.ID, ConfigUpdateInput{Value: json.RawMessage(`null`)})
	require.NoError(t, err)
	assert.Equal(t, `[]`, updated.Value)
}

func TestConfigService_UpdateRejectsKeyAndTypeChange(t *testing.T) {
	svc, _ := newConfigService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, ConfigInput{Title: "Site name", Key: "site.name", Type: models.ConfigTypeText, Value: json.RawMessage(`"Wiki"`)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ConfigInput{Title: "Slogan", Key: "site.slogan", Type: models.ConfigTypeText})
	require.NoError(t, err)

	typ := models.ConfigTypeRichText
	_, err = svc.Update(ctx, view.ID, ConfigUpdateInput{Type: &typ})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.Update(ctx, view.ID, ConfigUpdateInput{Key: ptr("site.title")})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.Update(ctx, view.ID, ConfigUpdateInput{Title: ptr("Slogan")})
	requireCode(t, err, models.CodeConflict)

	same := models.ConfigTypeText
	updated, err := svc.Update(ctx, view.ID, ConfigUpdateInput{Key: ptr("site.name"), Type: &same, Value: json.RawMessage(`"Docs"`)})
	require.NoError(t, err)
	assert.Equal(t, "Docs", updated.Value)
}

func TestConfigService_SetEnabledAndDelete(t *testing.T) {
	svc, _ := newConfigService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, ConfigInput{Title: "Logo", Key: "site.logo", Type: models.ConfigTypeImage, Value: json.RawMessage(`"/logo.png"`)})
	require.NoError(t, err)

	toggled, err := svc.SetEnabled(ctx, view.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.IsEnabled)
	assert.Equal(t, "/logo.png", toggled.Value)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, view.ID))
	requireCode(t, svc.Delete(ctx, view.ID), models.CodeNotFound)
}
