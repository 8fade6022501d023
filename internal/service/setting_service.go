package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"wikiadmin/internal/cache"
	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
)

// SystemSettings is the typed view over the free-form settings table.
type SystemSettings struct {
	SiteName                 string `json:"siteName"`
	SiteDescription          string `json:"siteDescription"`
	SiteKeywords             string `json:"siteKeywords"`
	ICP                      string `json:"icp"`
	AllowRegistration        bool   `json:"allowRegistration"`
	DefaultUserRole          string `json:"defaultUserRole"`
	ArticleReviewEnabled     bool   `json:"articleReviewEnabled"`
	MaxUploadSize            int    `json:"maxUploadSize"`
	EmailNotificationEnabled bool   `json:"emailNotificationEnabled"`
}

const defaultMaxUploadSizeMB = 10

type SettingService struct {
	settings repository.SettingRepository
}

func NewSettingService(settings repository.SettingRepository) *SettingService {
	return &SettingService{settings: settings}
}

func (s *SettingService) Get(ctx context.Context) (*SystemSettings, error) {
	var out SystemSettings
	err := cache.CacheAside(ctx, cache.SettingsKey, &out, cache.SettingsTTL, func() error {
		raw, err := s.settings.All(ctx)
		if err != nil {
			return err
		}
		out = typedSettings(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update stores every provided key, stringifying non-string values.
func (s *SettingService) Update(ctx context.Context, in map[string]any) error {
	values := make(map[string]string, len(in))
	for k, v := range in {
		k = strings.TrimSpace(k)
		if k == "" || len(k) > 100 {
			return models.NewValidationError("setting keys must be 1 to 100 characters")
		}
		if v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			values[k] = val
		case float64:
			// JSON numbers decode as float64; keep them in plain notation.
			values[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			values[k] = fmt.Sprint(val)
		}
	}
	if err := s.settings.Upsert(ctx, values); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.SettingsKey)
	return nil
}

func typedSettings(raw map[string]string) SystemSettings {
	out := SystemSettings{
		SiteName:                 raw["siteName"],
		SiteDescription:          raw["siteDescription"],
		SiteKeywords:             raw["siteKeywords"],
		ICP:                      raw["icp"],
		AllowRegistration:        raw["allowRegistration"] == "true",
		DefaultUserRole:          raw["defaultUserRole"],
		ArticleReviewEnabled:     raw["articleReviewEnabled"] == "true",
		MaxUploadSize:            defaultMaxUploadSizeMB,
		EmailNotificationEnabled: raw["emailNotificationEnabled"] == "true",
	}
	if out.DefaultUserRole == "" {
		out.DefaultUserRole = "user"
	}
	if v, ok := raw["maxUploadSize"]; ok && v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			out.MaxUploadSize = n
		}
	}
	return out
}
