package service

import (
	"context"
	"time"

	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
}

// CommentListInput filters the moderation list. Nil filters are ignored.
type CommentListInput struct {
	IsActive  *bool `json:"isActive"`
	IsDeleted *bool `json:"isDeleted"`
	UserID    *uint `json:"userId"`
	ArticleID *uint `json:"articleId"`
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
}

// BatchCommentInput toggles flags on many comments at once.
type BatchCommentInput struct {
	IDs       []uint `json:"ids"`
	IsActive  *bool  `json:"isActive"`
	IsDeleted *bool  `json:"isDeleted"`
}

type CommentUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type CommentArticle struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type ParentComment struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
	User    struct {
		Username string `json:"username"`
	} `json:"user"`
}

// CommentItem is one row of the moderation list.
type CommentItem struct {
	ID            uint            `json:"id"`
	Content       string          `json:"content"`
	IsActive      bool            `json:"isActive"`
	IsDeleted     bool            `json:"isDeleted"`
	Likes         int             `json:"likes"`
	DetailPageID  *uint           `json:"detailPageId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	User          *CommentUser    `json:"user"`
	Article       *CommentArticle `json:"article"`
	ParentComment *ParentComment  `json:"parentComment"`
}

func NewCommentService(comments repository.CommentRepository) *CommentService {
	return &CommentService{comments: comments}
}

// List pages through comments newest first. A page past the end is clamped
// to the last page.
func (s *CommentService) List(ctx context.Context, in CommentListInput) (models.Page[CommentItem], error) {
	filter := repository.CommentFilter{
		IsActive:  in.IsActive,
		IsDeleted: in.IsDeleted,
		UserID:    in.UserID,
		ArticleID: in.ArticleID,
	}
	page, pageSize := normalizePage(in.Page, in.PageSize)

	total, err := s.comments.Count(ctx, filter)
	if err != nil {
		return models.Page[CommentItem]{}, err
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if page > max(1, totalPages) {
		page = max(1, totalPages)
	}

	rows, err := s.comments.List(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return models.Page[CommentItem]{}, err
	}
	items := make([]CommentItem, 0, len(rows))
	for i := range rows {
		items = append(items, toCommentItem(&rows[i]))
	}
	return models.NewPage(items, total, page, pageSize), nil
}

// Batch applies the flags to every existing id in one statement; unknown ids
// are ignored. It returns the number of rows changed.
func (s *CommentService) Batch(ctx context.Context, in BatchCommentInput) (int64, error) {
	if len(in.IDs) == 0 {
		return 0, models.NewValidationError("ids: cannot be blank")
	}
	fields := map[string]any{}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if in.IsDeleted != nil {
		fields["is_deleted"] = *in.IsDeleted
	}
	if len(fields) == 0 {
		return 0, models.NewValidationError("isActive or isDeleted is required")
	}
	return s.comments.BatchUpdate(ctx, in.IDs, fields)
}

func toCommentItem(c *models.Comment) CommentItem {
	item := CommentItem{
		ID:           c.ID,
		Content:      c.Content,
		IsActive:     c.IsActive,
		IsDeleted:    c.IsDeleted,
		Likes:        c.Likes,
		DetailPageID: c.DetailPageID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.User != nil {
		item.User = &CommentUser{ID: c.User.ID, Username: c.User.Username, Avatar: c.User.Avatar}
	}
	if c.Article != nil {
		item.Article = &CommentArticle{ID: c.Article.ID, Title: c.Article.Title}
	}
	if c.Parent != nil {
		parent := &ParentComment{ID: c.Parent.ID, Content: c.Parent.Content}
		if c.Parent.User != nil {
			parent.User.Username = c.Parent.User.Username
		}
		item.ParentComment = parent
	}
	return item
}
