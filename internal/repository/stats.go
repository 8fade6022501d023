package repository

import (
	"context"
	"time"

	"wikiadmin/internal/models"

	"gorm.io/gorm"
)

// DailyPoint is one bucket of a day-grouped series.
type DailyPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// StatsRepository answers aggregate queries for the dashboard.
type StatsRepository interface {
	CountUsers(ctx context.Context, before *time.Time) (int64, error)
	CountWikis(ctx context.Context, before *time.Time) (int64, error)
	CountArticlesByStatus(ctx context.Context, status models.ArticleStatus) (int64, error)
	SumViewsUpdatedSince(ctx context.Context, since time.Time) (int64, error)
	DailyViews(ctx context.Context, since time.Time) ([]DailyPoint, error)
	DailyWikis(ctx context.Context, since time.Time) ([]DailyPoint, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository returns a new StatsRepository implementation.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) count(ctx context.Context, model any, before *time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(model)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *statsRepository) CountUsers(ctx context.Context, before *time.Time) (int64, error) {
	return r.count(ctx, &models.User{}, before)
}

func (r *statsRepository) CountWikis(ctx context.Context, before *time.Time) (int64, error) {
	return r.count(ctx, &models.Wiki{}, before)
}

func (r *statsRepository) CountArticlesByStatus(ctx context.Context, status models.ArticleStatus) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Article{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *statsRepository) SumViewsUpdatedSince(ctx context.Context, since time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("updated_at >= ?", since).
		Select("COALESCE(SUM(view_count), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return sum, nil
}

// DailyViews groups in Go so the query stays portable across drivers.
func (r *statsRepository) DailyViews(ctx context.Context, since time.Time) ([]DailyPoint, error) {
	var rows []struct {
		UpdatedAt time.Time
		ViewCount int64
	}
	err := r.db.WithContext(ctx).Model(&models.Article{}).
		Select("updated_at", "view_count").
		Where("updated_at >= ?", since).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	buckets := map[string]int64{}
	for _, row := range rows {
		buckets[row.UpdatedAt.In(since.Location()).Format(time.DateOnly)] += row.ViewCount
	}
	return series(since, buckets), nil
}

func (r *statsRepository) DailyWikis(ctx context.Context, since time.Time) ([]DailyPoint, error) {
	var created []time.Time
	err := r.db.WithContext(ctx).Model(&models.Wiki{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &created).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	buckets := map[string]int64{}
	for _, at := range created {
		buckets[at.In(since.Location()).Format(time.DateOnly)]++
	}
	return series(since, buckets), nil
}

// series emits one point per day from since through today, zero-filled.
func series(since time.Time, buckets map[string]int64) []DailyPoint {
	var out []DailyPoint
	today := time.Now().In(since.Location())
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		out = append(out, DailyPoint{Date: key, Value: buckets[key]})
	}
	return out
}
