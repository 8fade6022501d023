package service

import (
	"context"
	"strings"

	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

// summaryLength bounds the summary derived from article content.
const summaryLength = 200

type ArticleService struct {
	articles   repository.ArticleRepository
	categories repository.CategoryRepository
}

type ArticleInput struct {
	Title      string               `json:"title"`
	Content    string               `json:"content"`
	Summary    string               `json:"summary"`
	Status     models.ArticleStatus `json:"status"`
	Tags       []string             `json:"tags"`
	CategoryID uint                 `json:"categoryId"`
}

type ArticleUpdateInput struct {
	Title      *string               `json:"title"`
	Content    *string               `json:"content"`
	Summary    *string               `json:"summary"`
	Status     *models.ArticleStatus `json:"status"`
	Tags       *[]string             `json:"tags"`
	CategoryID *uint                 `json:"categoryId"`
}

type ArticleListInput struct {
	Title      string
	Status     models.ArticleStatus
	CategoryID uint
	Page       int
	PageSize   int
}

func NewArticleService(articles repository.ArticleRepository, categories repository.CategoryRepository) *ArticleService {
	return &ArticleService{articles: articles, categories: categories}
}

func (s *ArticleService) List(ctx context.Context, in ArticleListInput) (models.Page[models.Article], error) {
	if in.Status != "" && !in.Status.Valid() {
		return models.Page[models.Article]{}, models.NewValidationError("status must be DRAFT or PUBLISHED")
	}
	page, pageSize := normalizePage(in.Page, in.PageSize)
	items, total, err := s.articles.List(ctx, repository.ArticleFilter{
		Title:      strings.TrimSpace(in.Title),
		Status:     in.Status,
		CategoryID: in.CategoryID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return models.Page[models.Article]{}, err
	}
	return models.NewPage(items, total, page, pageSize), nil
}

// Get counts the read before loading, so the returned article includes it.
func (s *ArticleService) Get(ctx context.Context, id uint) (_ *models.Article, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "Get")
	defer func() { observability.EndSpan(span, err) }()

	if err = s.articles.IncrementViewCount(ctx, id); err != nil {
		return nil, err
	}
	return s.articles.GetByID(ctx, id)
}

func (s *ArticleService) Create(ctx context.Context, authorID uint, in ArticleInput) (*models.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = models.ArticleStatusDraft
	}
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Title, ozzo.Required, ozzo.RuneLength(1, 200)),
		ozzo.Field(&in.Content, ozzo.Required),
		ozzo.Field(&in.CategoryID, ozzo.Required),
		ozzo.Field(&in.Status, ozzo.In(models.ArticleStatusDraft, models.ArticleStatusPublished)),
	)
	if err != nil {
		return nil, validation.AsAppError(err)
	}
	if err := s.ensureCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	content := validation.SanitizeRichText(in.Content)
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	article := &models.Article{
		Title:      in.Title,
		Content:    content,
		Summary:    summarize(in.Summary, content),
		Status:     in.Status,
		Tags:       tags,
		CategoryID: in.CategoryID,
	}
	if authorID != 0 {
		article.AuthorID = &authorID
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	return s.articles.GetByID(ctx, article.ID)
}

func (s *ArticleService) Update(ctx context.Context, id uint, in ArticleUpdateInput) (*models.Article, error) {
	current, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if err := ozzo.Validate(title, ozzo.Required, ozzo.RuneLength(1, 200)); err != nil {
			return nil, models.NewValidationError("title: " + err.Error())
		}
		fields["title"] = title
	}
	content := current.Content
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("content: cannot be blank")
		}
		content = validation.SanitizeRichText(*in.Content)
		fields["content"] = content
	}
	if in.Summary != nil {
		fields["summary"] = summarize(*in.Summary, content)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("status must be DRAFT or PUBLISHED")
		}
		fields["status"] = *in.Status
	}
	if in.Tags != nil {
		raw, err := jsonTags(*in.Tags)
		if err != nil {
			return nil, err
		}
		fields["tags"] = raw
	}
	if in.CategoryID != nil && *in.CategoryID != current.CategoryID {
		if err := s.ensureCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *in.CategoryID
	}

	if len(fields) > 0 {
		if err := s.articles.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.articles.GetByID(ctx, id)
}

func (s *ArticleService) Delete(ctx context.Context, id uint) error {
	return s.articles.Delete(ctx, id)
}

func (s *ArticleService) ensureCategory(ctx context.Context, id uint) error {
	if id == 0 {
		return models.NewValidationError("categoryId: cannot be blank")
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return models.NewValidationError("categoryId: category does not exist")
		}
		return err
	}
	return nil
}

// summarize keeps an explicit summary as plain text, or derives one from
// the content.
func summarize(summary, content string) string {
	if text := validation.PlainText(summary); text != "" {
		return text
	}
	return validation.Excerpt(content, summaryLength)
}
