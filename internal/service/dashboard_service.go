package service

import (
	"context"
	"fmt"
	"time"

	"wikiadmin/internal/cache"
	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
)

// trendWindowDays is the length of the trend window, today included.
const trendWindowDays = 7

type StatItem struct {
	Name   string `json:"name"`
	Value  int64  `json:"value"`
	Change string `json:"change"`
	Trend  string `json:"trend"`
}

type DashboardTrends struct {
	DailyViews []repository.DailyPoint `json:"dailyViews"`
	DailyWikis []repository.DailyPoint `json:"dailyWikis"`
}

type DashboardStats struct {
	Stats  []StatItem      `json:"stats"`
	Trends DashboardTrends `json:"trends"`
}

type DashboardService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

func NewDashboardService(stats repository.StatsRepository) *DashboardService {
	return &DashboardService{stats: stats, now: time.Now}
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	err := cache.CacheAside(ctx, cache.DashboardStatsKey, &out, cache.DashboardTTL, func() error {
		computed, err := s.compute(ctx)
		if err != nil {
			return err
		}
		out = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	today := startOfDay(now)
	windowStart := today.AddDate(0, 0, -(trendWindowDays - 1))

	users, err := s.stats.CountUsers(ctx, nil)
	if err != nil {
		return nil, err
	}
	usersBefore, err := s.stats.CountUsers(ctx, &windowStart)
	if err != nil {
		return nil, err
	}
	wikis, err := s.stats.CountWikis(ctx, nil)
	if err != nil {
		return nil, err
	}
	wikisBefore, err := s.stats.CountWikis(ctx, &windowStart)
	if err != nil {
		return nil, err
	}
	unpublished, err := s.stats.CountArticlesByStatus(ctx, models.ArticleStatusDraft)
	if err != nil {
		return nil, err
	}
	todayViews, err := s.stats.SumViewsUpdatedSince(ctx, today)
	if err != nil {
		return nil, err
	}
	dailyViews, err := s.stats.DailyViews(ctx, windowStart)
	if err != nil {
		return nil, err
	}
	dailyWikis, err := s.stats.DailyWikis(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Stats: []StatItem{
			growthItem("Total users", users, usersBefore),
			growthItem("Wikis", wikis, wikisBefore),
			{Name: "Unpublished articles", Value: unpublished, Change: "0.0", Trend: "up"},
			{Name: "Today's views", Value: todayViews, Change: "0.0", Trend: "up"},
		},
		Trends: DashboardTrends{DailyViews: dailyViews, DailyWikis: dailyWikis},
	}, nil
}

// growthItem reports the growth of current over previous in percent. With no
// previous rows the growth is zero.
func growthItem(name string, current, previous int64) StatItem {
	var growth float64
	if previous > 0 {
		growth = float64(current-previous) / float64(previous) * 100
	}
	trend := "up"
	if growth < 0 {
		trend = "down"
	}
	return StatItem{Name: name, Value: current, Change: fmt.Sprintf("%.1f", growth), Trend: trend}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
