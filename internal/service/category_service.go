package service

import (
	"context"
	"sort"
	"strings"

	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/validation"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

type CategoryService struct {
	categories repository.CategoryRepository
	articles   repository.ArticleRepository
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Sort        int    `json:"sort"`
	IsEnabled   *bool  `json:"isEnabled"`
	ParentID    *uint  `json:"parentId"`
}

// CategoryUpdateInput has no parent: categories are never re-parented.
type CategoryUpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Sort        *int    `json:"sort"`
	IsEnabled   *bool   `json:"isEnabled"`
}

func NewCategoryService(categories repository.CategoryRepository, articles repository.ArticleRepository) *CategoryService {
	return &CategoryService{categories: categories, articles: articles}
}

func (s *CategoryService) List(ctx context.Context) ([]models.ArticleCategory, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Tree(ctx context.Context) ([]*models.ArticleCategory, error) {
	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(all), nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.ArticleCategory, error) {
	in.Name = strings.TrimSpace(in.Name)
	err := ozzo.ValidateStruct(&in,
		ozzo.Field(&in.Name, ozzo.Required, ozzo.RuneLength(1, 100)),
	)
	if err != nil {
		return nil, validation.AsAppError(err)
	}
	if in.ParentID != nil {
		if _, err := s.categories.GetByID(ctx, *in.ParentID); err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return nil, models.NewValidationError("parentId: parent category does not exist")
			}
			return nil, err
		}
	}
	enabled := true
	if in.IsEnabled != nil {
		enabled = *in.IsEnabled
	}
	category := &models.ArticleCategory{
		Name:        in.Name,
		Description: in.Description,
		Sort:        in.Sort,
		IsEnabled:   enabled,
		ParentID:    in.ParentID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryUpdateInput) (*models.ArticleCategory, error) {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := ozzo.Validate(name, ozzo.Required, ozzo.RuneLength(1, 100)); err != nil {
			return nil, models.NewValidationError("name: " + err.Error())
		}
		fields["name"] = name
	}
	setString(fields, "description", in.Description)
	if in.Sort != nil {
		fields["sort"] = *in.Sort
	}
	if in.IsEnabled != nil {
		fields["is_enabled"] = *in.IsEnabled
	}
	if len(fields) > 0 {
		if err := s.categories.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.categories.GetByID(ctx, id)
}

// Delete refuses while child categories or articles still reference id.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	children, err := s.categories.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return models.NewDependencyError("Category has child categories")
	}
	articles, err := s.articles.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if articles > 0 {
		return models.NewDependencyError("Category still has articles")
	}
	return s.categories.Delete(ctx, id)
}

// BuildTree groups categories by parent and nests them, siblings ordered by
// name. A node whose parent is missing from the set is treated as a root.
// Nodes caught in a parent cycle are attached at most once.
func BuildTree(all []models.ArticleCategory) []*models.ArticleCategory {
	nodes := make(map[uint]*models.ArticleCategory, len(all))
	for i := range all {
		n := all[i]
		n.Children = nil
		nodes[n.ID] = &n
	}

	byParent := make(map[uint][]*models.ArticleCategory)
	var roots []*models.ArticleCategory
	for i := range all {
		n := nodes[all[i].ID]
		if n.ParentID == nil || nodes[*n.ParentID] == nil || *n.ParentID == n.ID {
			roots = append(roots, n)
			continue
		}
		byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
	}

	visited := make(map[uint]bool, len(all))
	var attach func(n *models.ArticleCategory)
	attach = func(n *models.ArticleCategory) {
		visited[n.ID] = true
		for _, child := range byParent[n.ID] {
			if visited[child.ID] {
				continue
			}
			attach(child)
			n.Children = append(n.Children, child)
		}
		sortByName(n.Children)
	}

	sortByName(roots)
	out := make([]*models.ArticleCategory, 0, len(roots))
	for _, r := range roots {
		if visited[r.ID] {
			continue
		}
		attach(r)
		out = append(out, r)
	}
	return out
}

func sortByName(nodes []*models.ArticleCategory) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Name == nodes[j].Name {
			return nodes[i].ID < nodes[j].ID
		}
		return nodes[i].Name < nodes[j].Name
	})
}
