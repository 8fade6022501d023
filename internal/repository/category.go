package repository

import (
	"context"

	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for article categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.ArticleCategory, error)
	List(ctx context.Context) ([]models.ArticleCategory, error)
	ListEnabledChildren(ctx context.Context, parentID uint) ([]models.ArticleCategory, error)
	Create(ctx context.Context, category *models.ArticleCategory) error
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
	CountChildren(ctx context.Context, id uint) (int64, error)
}

type categoryRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db, log: observability.NewRepoLogger("article_categories")}
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.ArticleCategory, error) {
	var category models.ArticleCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFoundOr(err, "Category", id)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]models.ArticleCategory, error) {
	var categories []models.ArticleCategory
	if err := r.db.WithContext(ctx).Order("sort ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) ListEnabledChildren(ctx context.Context, parentID uint) ([]models.ArticleCategory, error) {
	var categories []models.ArticleCategory
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND is_enabled = ?", parentID, true).
		Order("sort ASC").Order("id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.ArticleCategory) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", "id", category.ID)
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.ArticleCategory{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", id)
	}
	r.log.LogWrite(ctx, "update", "id", id)
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.ArticleCategory{}, id)
	if res.Error != nil {
		// An article can land between the service's counts and this delete.
		if isForeignKeyError(res.Error) {
			return models.NewDependencyError("Category still has articles")
		}
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", id)
	}
	r.log.LogWrite(ctx, "delete", "id", id)
	return nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ArticleCategory{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
