package service

import (
	"context"
	"testing"

	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id uint, name string, parent uint) models.ArticleCategory {
	c := models.ArticleCategory{ID: id, Name: name}
	if parent != 0 {
		c.ParentID = &parent
	}
	return c
}

func names(nodes []*models.ArticleCategory) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildTree(t *testing.T) {
	t.Parallel()

	t.Run("nests and orders by name", func(t *testing.T) {
		t.Parallel()
		tree := BuildTree([]models.ArticleCategory{
			node(1, "Zoo", 0),
			node(2, "Apple", 0),
			node(3, "pear", 2),
			node(4, "banana", 2),
			node(5, "kiwi", 4),
		})
		require.Equal(t, []string{"Apple", "Zoo"}, names(tree))
		assert.Equal(t, []string{"banana", "pear"}, names(tree[0].Children))
		assert.Equal(t, []string{"kiwi"}, names(tree[0].Children[0].Children))
		assert.Empty(t, tree[1].Children)
	})

	t.Run("missing parent becomes a root", func(t *testing.T) {
		t.Parallel()
		tree := BuildTree([]models.ArticleCategory{node(1, "orphan", 99), node(2, "root", 0)})
		assert.Equal(t, []string{"orphan", "root"}, names(tree))
	})

	t.Run("self parent becomes a root", func(t *testing.T) {
		t.Parallel()
		tree := BuildTree([]models.ArticleCategory{node(1, "loop", 1)})
		require.Len(t, tree, 1)
		assert.Empty(t, tree[0].Children)
	})

	t.Run("cycles terminate", func(t *testing.T) {
		t.Parallel()
		tree := BuildTree([]models.ArticleCategory{
			node(1, "root", 0),
			node(2, "a", 3),
			node(3, "b", 2),
			node(4, "c", 1),
		})
		require.Equal(t, []string{"root"}, names(tree))
		assert.Equal(t, []string{"c"}, names(tree[0].Children))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		t.Parallel()
		in := []models.ArticleCategory{node(1, "root", 0), node(2, "child", 1)}
		BuildTree(in)
		assert.Nil(t, in[0].Children)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, BuildTree(nil))
	})
}

func TestCategoryService_CreateAndDeleteGuards(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	svc := NewCategoryService(repository.NewCategoryRepository(db), repository.NewArticleRepository(db))

	missing := uint(4242)
	_, err := svc.Create(ctx, CategoryInput{Name: "x", ParentID: &missing})
	requireCode(t, err, models.CodeValidation)
	_, err = svc.Create(ctx, CategoryInput{Name: "   "})
	requireCode(t, err, models.CodeValidation)

	root, err := svc.Create(ctx, CategoryInput{Name: "Root"})
	require.NoError(t, err)
	assert.True(t, root.IsEnabled)
	child, err := svc.Create(ctx, CategoryInput{Name: "Child", ParentID: &root.ID, IsEnabled: ptr(false)})
	require.NoError(t, err)
	assert.False(t, child.IsEnabled)

	err = svc.Delete(ctx, root.ID)
	requireCode(t, err, models.CodeDependency)

	article := &models.Article{Title: "A", Content: "x", Status: models.ArticleStatusDraft, CategoryID: child.ID}
	require.NoError(t, db.Create(article).Error)
	err = svc.Delete(ctx, child.ID)
	requireCode(t, err, models.CodeDependency)

	require.NoError(t, db.Delete(article).Error)
	require.NoError(t, svc.Delete(ctx, child.ID))
	require.NoError(t, svc.Delete(ctx, root.ID))
	requireCode(t, svc.Delete(ctx, root.ID), models.CodeNotFound)
}

func TestCategoryService_TreeAndUpdate(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	svc := NewCategoryService(repository.NewCategoryRepository(db), repository.NewArticleRepository(db))

	root, err := svc.Create(ctx, CategoryInput{Name: "Root"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CategoryInput{Name: "b", ParentID: &root.ID})
	require.NoError(t, err)
	a, err := svc.Create(ctx, CategoryInput{Name: "a", ParentID: &root.ID})
	require.NoError(t, err)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, []string{"a", "b"}, names(tree[0].Children))

	updated, err := svc.Update(ctx, a.ID, CategoryUpdateInput{Name: ptr("c"), Sort: ptr(3), IsEnabled: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "c", updated.Name)
	assert.Equal(t, 3, updated.Sort)
	assert.False(t, updated.IsEnabled)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, root.ID, *updated.ParentID)

	_, err = svc.Update(ctx, a.ID, CategoryUpdateInput{Name: ptr("")})
	requireCode(t, err, models.CodeValidation)
}
