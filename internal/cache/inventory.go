package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	SettingsKey        = "settings:system"
	DashboardStatsKey  = "dashboard:stats"
	ConfigKeyPrefix    = "config:%d"
	RevokedTokenPrefix = "auth:revoked:%s"
)

const (
	UserTTL      = 5 * time.Minute
	SettingsTTL  = 10 * time.Minute
	DashboardTTL = 30 * time.Second
	ConfigTTL    = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ConfigKey(configID uint) string {
	return fmt.Sprintf(ConfigKeyPrefix, configID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenPrefix, jti)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID), DashboardStatsKey)
}

func InvalidateConfig(ctx context.Context, configID uint) {
	Invalidate(ctx, ConfigKey(configID))
}
