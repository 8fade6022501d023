package repository

import (
	"context"
	"fmt"

	"wikiadmin/internal/cache"
	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"

	"gorm.io/gorm"
)

// WikiFilter narrows wiki listings.
type WikiFilter struct {
	Keyword  string
	Status   models.WikiStatus
	Page     int
	PageSize int
}

// WikiRepository defines persistence operations for wikis.
type WikiRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Wiki, error)
	// Taken reports whether column already holds value on a row other than
	// excludeID, counting soft-deleted rows.
	Taken(ctx context.Context, column, value string, excludeID uint) (bool, error)
	Create(ctx context.Context, wiki *models.Wiki) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	// Transition applies fields only while the wiki is still in from.
	// It returns false when the status had already moved on.
	Transition(ctx context.Context, id uint, from models.WikiStatus, fields map[string]any) (bool, error)
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, filter WikiFilter) ([]models.Wiki, int64, error)
}

type wikiRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewWikiRepository returns a new WikiRepository implementation.
func NewWikiRepository(db *gorm.DB) WikiRepository {
	return &wikiRepository{db: db, log: observability.NewRepoLogger("wikis")}
}

var wikiUniqueColumns = map[string]bool{"name": true, "subdomain": true, "custom_domain": true}

func (r *wikiRepository) GetByID(ctx context.Context, id uint) (*models.Wiki, error) {
	var wiki models.Wiki
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("ApprovedBy").
		First(&wiki, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Wiki", id)
	}
	return &wiki, nil
}

func (r *wikiRepository) Taken(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	if !wikiUniqueColumns[column] {
		return false, models.NewInternalError(fmt.Errorf("column %q is not unique on wikis", column))
	}
	q := r.db.WithContext(ctx).Unscoped().Model(&models.Wiki{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *wikiRepository) Create(ctx context.Context, wiki *models.Wiki) error {
	if err := r.db.WithContext(ctx).Create(wiki).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return writeError(err, "subdomain", "Wiki name, subdomain or custom domain already exists")
	}
	r.log.LogWrite(ctx, "create", "id", wiki.ID)
	cache.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

func (r *wikiRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Wiki{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return writeError(res.Error, "subdomain", "Wiki name, subdomain or custom domain already exists")
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Wiki", id)
	}
	r.log.LogWrite(ctx, "update", "id", id)
	return nil
}

func (r *wikiRepository) Transition(ctx context.Context, id uint, from models.WikiStatus, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Wiki{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "transition")
		return false, models.NewInternalError(res.Error)
	}
	r.log.LogWrite(ctx, "transition", "id", id, "from", string(from))
	return res.RowsAffected > 0, nil
}

func (r *wikiRepository) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Wiki{}, id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Wiki", id)
	}
	r.log.LogWrite(ctx, "delete", "id", id)
	cache.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

func (r *wikiRepository) List(ctx context.Context, filter WikiFilter) ([]models.Wiki, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Wiki{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		p := likePattern(filter.Keyword)
		q = q.Where(
			`(LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(subdomain) LIKE LOWER(?) ESCAPE '\')`,
			p, p, p,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	if filter.PageSize > 0 {
		q = q.Limit(filter.PageSize).Offset(offset(filter.Page, filter.PageSize))
	}
	var wikis []models.Wiki
	if err := q.Preload("Creator").Order("created_at DESC").Order("id DESC").Find(&wikis).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return wikis, total, nil
}
