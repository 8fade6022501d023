package service

import (
	"context"
	"time"

	"wikiadmin/internal/repository"
)

// DefaultTutorialRoot is the category whose children form the tutorial index.
const DefaultTutorialRoot uint = 1

type TutorialArticle struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ViewCount int64     `json:"viewCount"`
}

type TutorialSection struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Sort        int               `json:"sort"`
	Articles    []TutorialArticle `json:"articles"`
}

type TutorialService struct {
	categories repository.CategoryRepository
	articles   repository.ArticleRepository
}

func NewTutorialService(categories repository.CategoryRepository, articles repository.ArticleRepository) *TutorialService {
	return &TutorialService{categories: categories, articles: articles}
}

// Sections lists the enabled children of parentID, each with its published
// articles newest first. A zero parentID means the default root.
func (s *TutorialService) Sections(ctx context.Context, parentID uint) ([]TutorialSection, error) {
	if parentID == 0 {
		parentID = DefaultTutorialRoot
	}
	children, err := s.categories.ListEnabledChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	published, err := s.articles.ListPublishedByCategories(ctx, ids)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[uint][]TutorialArticle, len(children))
	for _, a := range published {
		byCategory[a.CategoryID] = append(byCategory[a.CategoryID], TutorialArticle{
			ID:        a.ID,
			Title:     a.Title,
			Summary:   a.Summary,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
			ViewCount: a.ViewCount,
		})
	}

	sections := make([]TutorialSection, 0, len(children))
	for _, c := range children {
		articles := byCategory[c.ID]
		if articles == nil {
			articles = []TutorialArticle{}
		}
		sections = append(sections, TutorialSection{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Sort:        c.Sort,
			Articles:    articles,
		})
	}
	return sections, nil
}
