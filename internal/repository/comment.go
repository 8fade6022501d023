package repository

import (
	"context"

	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"

	"gorm.io/gorm"
)

// CommentFilter narrows comment listings. Nil fields are not filtered on.
type CommentFilter struct {
	IsActive  *bool
	IsDeleted *bool
	UserID    *uint
	ArticleID *uint
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Count(ctx context.Context, filter CommentFilter) (int64, error)
	List(ctx context.Context, filter CommentFilter, offset, limit int) ([]models.Comment, error)
	BatchUpdate(ctx context.Context, ids []uint, fields map[string]any) (int64, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) scoped(ctx context.Context, filter CommentFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Comment{})
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsDeleted != nil {
		q = q.Where("is_deleted = ?", *filter.IsDeleted)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.ArticleID != nil {
		q = q.Where("article_id = ?", *filter.ArticleID)
	}
	return q
}

func (r *commentRepository) Count(ctx context.Context, filter CommentFilter) (int64, error) {
	var total int64
	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// List preloads the author, the article and the parent comment with its author.
// Soft-deleted authors are still shown.
func (r *commentRepository) List(ctx context.Context, filter CommentFilter, offset, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.scoped(ctx, filter).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Article").
		Preload("Parent").
		Preload("Parent.User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// BatchUpdate is a single UPDATE ... WHERE id IN statement. Unknown ids are
// ignored; the result is the number of rows matched.
func (r *commentRepository) BatchUpdate(ctx context.Context, ids []uint, fields map[string]any) (int64, error) {
	if len(ids) == 0 || len(fields) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id IN ?", ids).Updates(fields)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "batch_update")
		return 0, models.NewInternalError(res.Error)
	}
	r.log.LogWrite(ctx, "batch_update", "ids", ids, "rows", res.RowsAffected)
	return res.RowsAffected, nil
}
