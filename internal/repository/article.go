package repository

import (
	"context"

	"wikiadmin/internal/cache"
	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"

	"gorm.io/gorm"
)

// ArticleFilter narrows article listings. Title is a substring match.
type ArticleFilter struct {
	Title      string
	Status     models.ArticleStatus
	CategoryID uint
	Page       int
	PageSize   int
}

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error)
	IncrementViewCount(ctx context.Context, id uint) error
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
	ListPublishedByCategories(ctx context.Context, categoryIDs []uint) ([]models.Article, error)
}

type articleRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db, log: observability.NewRepoLogger("articles")}
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		First(&article, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Article", id)
	}
	return &article, nil
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", "id", article.ID)
	cache.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

func (r *articleRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Article", id)
	}
	r.log.LogWrite(ctx, "update", "id", id)
	cache.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Comments outlive their article; detach them before the row goes.
		if err := tx.Model(&models.Comment{}).Where("article_id = ?", id).Update("article_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Article{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Article", id)
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return writeError(err, "", "")
	}
	r.log.LogWrite(ctx, "delete", "id", id)
	cache.Invalidate(ctx, cache.DashboardStatsKey)
	return nil
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error) {
	defer observability.TrackQuery("list", "articles")()

	q := r.db.WithContext(ctx).Model(&models.Article{})
	if filter.Title != "" {
		q = q.Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\'`, likePattern(filter.Title))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	if filter.PageSize > 0 {
		q = q.Limit(filter.PageSize).Offset(offset(filter.Page, filter.PageSize))
	}
	var articles []models.Article
	if err := q.Preload("Category").Order("created_at DESC").Order("id DESC").Find(&articles).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return articles, total, nil
}

// IncrementViewCount is a single atomic UPDATE; concurrent readers never
// lose an increment.
func (r *articleRepository) IncrementViewCount(ctx context.Context, id uint) error {
	defer observability.TrackQuery("increment_views", "articles")()

	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Article", id)
	}
	observability.ArticleViews.Inc()
	return nil
}

func (r *articleRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Article{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *articleRepository) ListPublishedByCategories(ctx context.Context, categoryIDs []uint) ([]models.Article, error) {
	if len(categoryIDs) == 0 {
		return []models.Article{}, nil
	}
	var articles []models.Article
	err := r.db.WithContext(ctx).
		Select("id", "title", "summary", "category_id", "view_count", "created_at", "updated_at").
		Where("category_id IN ? AND status = ?", categoryIDs, models.ArticleStatusPublished).
		Order("created_at DESC").Order("id DESC").
		Find(&articles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}
