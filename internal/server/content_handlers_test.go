package server

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"wikiadmin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWikiRoutes_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	superUser := env.user("super", models.RoleSuperAdmin)
	super := env.token(superUser)
	reviewer := env.token(env.user("reviewer", models.RoleReviewer))

	payload := map[string]any{"name": "Alpha", "subdomain": "Alpha", "title": "Alpha Wiki", "tags": []string{"b", "a"}}
	status, body := env.call(http.MethodPost, "/api/wikis", super, payload)
	require.Equal(t, http.StatusCreated, status)
	var wiki models.Wiki
	decode(t, body, &wiki)
	assert.Equal(t, models.WikiStatusPending, wiki.Status)
	assert.Equal(t, "alpha", wiki.Subdomain)
	assert.Equal(t, superUser.ID, wiki.CreatorID)
	assert.Equal(t, []string{"b", "a"}, wiki.Tags)

	t.Run("reviewer cannot mutate", func(t *testing.T) {
		for _, tc := range []struct{ method, path string }{
			{http.MethodPost, "/api/wikis"},
			{http.MethodPut, fmt.Sprintf("/api/wikis/%d", wiki.ID)},
			{http.MethodDelete, fmt.Sprintf("/api/wikis/%d", wiki.ID)},
			{http.MethodPost, fmt.Sprintf("/api/wikis/%d/approve", wiki.ID)},
			{http.MethodPost, fmt.Sprintf("/api/wikis/%d/reject", wiki.ID)},
		} {
			status, _ := env.call(tc.method, tc.path, reviewer, map[string]any{"title": "x", "reason": "x"})
			assert.Equal(t, http.StatusForbidden, status, "%s %s", tc.method, tc.path)
		}
		var stored models.Wiki
		require.NoError(t, env.db.First(&stored, wiki.ID).Error)
		assert.Equal(t, "Alpha Wiki", stored.Title)
		assert.Equal(t, models.WikiStatusPending, stored.Status)
	})

	t.Run("duplicate subdomain conflicts", func(t *testing.T) {
		status, _ := env.call(http.MethodPost, "/api/wikis", super,
			map[string]any{"name": "Beta", "subdomain": "alpha", "title": "Beta"})
		assert.Equal(t, http.StatusConflict, status)

		var count int64
		require.NoError(t, env.db.Model(&models.Wiki{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("update cannot set status", func(t *testing.T) {
		status, _ := env.call(http.MethodPut, fmt.Sprintf("/api/wikis/%d", wiki.ID), super,
			map[string]any{"status": "PUBLISHED"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("reject needs a reason", func(t *testing.T) {
		status, _ := env.call(http.MethodPost, fmt.Sprintf("/api/wikis/%d/reject", wiki.ID), super,
			map[string]any{"reason": "  "})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("approve stamps reviewer", func(t *testing.T) {
		status, body := env.call(http.MethodPost, fmt.Sprintf("/api/wikis/%d/approve", wiki.ID), super, nil)
		require.Equal(t, http.StatusOK, status)
		var approved models.Wiki
		decode(t, body, &approved)
		assert.Equal(t, models.WikiStatusDraft, approved.Status)
		require.NotNil(t, approved.ApprovedByID)
		assert.Equal(t, superUser.ID, *approved.ApprovedByID)
		assert.NotNil(t, approved.ApprovedAt)

		status, _ = env.call(http.MethodPost, fmt.Sprintf("/api/wikis/%d/approve", wiki.ID), super, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("soft delete hides from list", func(t *testing.T) {
		status, _ := env.call(http.MethodDelete, fmt.Sprintf("/api/wikis/%d", wiki.ID), super, nil)
		require.Equal(t, http.StatusOK, status)

		_, body := env.call(http.MethodGet, "/api/wikis", super, nil)
		var page models.Page[models.Wiki]
		decode(t, body, &page)
		assert.Zero(t, page.Total)
		assert.Empty(t, page.Items)

		var stored models.Wiki
		require.NoError(t, env.db.Unscoped().First(&stored, wiki.ID).Error)
		assert.True(t, stored.DeletedAt.Valid)
	})
}

func TestGetArticle_ConcurrentViewsAreCounted(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(env.user("admin", models.RoleReviewer))

	category := &models.ArticleCategory{Name: "Docs", IsEnabled: true}
	require.NoError(t, env.db.Create(category).Error)
	article := &models.Article{Title: "Hello", Content: "<p>hi</p>", CategoryID: category.ID, Status: models.ArticleStatusPublished}
	require.NoError(t, env.db.Create(article).Error)

	const n = 20
	path := fmt.Sprintf("/api/articles/%d", article.ID)
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := env.app.Test(env.request(http.MethodGet, path, token, nil), -1)
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			_ = resp.Body.Close()
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	var stored models.Article
	require.NoError(t, env.db.First(&stored, article.ID).Error)
	assert.Equal(t, int64(n), stored.ViewCount)
}

func TestArticleRoutes(t *testing.T) {
	env := newTestEnv(t)
	author := env.user("author", models.RoleReviewer)
	token := env.token(author)

	category := &models.ArticleCategory{Name: "Docs", IsEnabled: true}
	require.NoError(t, env.db.Create(category).Error)

	status, _ := env.call(http.MethodPost, "/api/articles", token,
		map[string]any{"title": "Orphan", "content": "x", "categoryId": 9999})
	assert.NotEqual(t, http.StatusCreated, status)

	status, body := env.call(http.MethodPost, "/api/articles", token, map[string]any{
		"title":      "Intro",
		"content":    `<p>Welcome</p><script>alert(1)</script>`,
		"categoryId": category.ID,
		"status":     "PUBLISHED",
	})
	require.Equal(t, http.StatusCreated, status)
	var created models.Article
	decode(t, body, &created)
	require.NotNil(t, created.AuthorID)
	assert.Equal(t, author.ID, *created.AuthorID)
	assert.NotContains(t, created.Content, "<script>")
	assert.Equal(t, "Welcome", created.Summary)

	_, body = env.call(http.MethodGet, fmt.Sprintf("/api/articles?title=ntr&categoryId=%d&status=published", category.ID), token, nil)
	var page models.Page[models.Article]
	decode(t, body, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)

	status, body = env.call(http.MethodPut, fmt.Sprintf("/api/articles/%d", created.ID), token,
		map[string]any{"title": "Intro v2"})
	require.Equal(t, http.StatusOK, status)
	var updated models.Article
	decode(t, body, &updated)
	assert.Equal(t, "Intro v2", updated.Title)

	// Public tutorial index shows the published article under its section.
	root := &models.ArticleCategory{Name: "Tutorials", IsEnabled: true}
	require.NoError(t, env.db.Create(root).Error)
	require.NoError(t, env.db.Model(category).Update("parent_id", root.ID).Error)
	status, body = env.call(http.MethodGet, fmt.Sprintf("/api/tutorials?parentId=%d", root.ID), "", nil)
	require.Equal(t, http.StatusOK, status)
	var sections []struct {
		ID       uint `json:"id"`
		Articles []struct {
			Title string `json:"title"`
		} `json:"articles"`
	}
	decode(t, body, &sections)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].Articles, 1)
	assert.Equal(t, "Intro v2", sections[0].Articles[0].Title)

	status, _ = env.call(http.MethodDelete, fmt.Sprintf("/api/articles/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.call(http.MethodGet, fmt.Sprintf("/api/articles/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCategoryRoutes_DeletionGuard(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(env.user("admin", models.RoleReviewer))

	create := func(body map[string]any) models.ArticleCategory {
		t.Helper()
		status, env2 := env.call(http.MethodPost, "/api/article-categories", token, body)
		require.Equal(t, http.StatusCreated, status)
		var c models.ArticleCategory
		decode(t, env2, &c)
		return c
	}
	parent := create(map[string]any{"name": "Parent"})
	child := create(map[string]any{"name": "Child", "parentId": parent.ID})
	leaf := create(map[string]any{"name": "Leaf"})
	article := &models.Article{Title: "A", Content: "x", CategoryID: child.ID}
	require.NoError(t, env.db.Create(article).Error)

	status, body := env.call(http.MethodDelete, fmt.Sprintf("/api/article-categories/%d", parent.ID), token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Category has child categories", body.Message)

	status, _ = env.call(http.MethodDelete, fmt.Sprintf("/api/article-categories/%d", child.ID), token, nil)
	assert.Equal(t, http.StatusConflict, status)

	var count int64
	require.NoError(t, env.db.Model(&models.ArticleCategory{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
	require.NoError(t, env.db.Model(&models.Article{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	status, _ = env.call(http.MethodDelete, fmt.Sprintf("/api/article-categories/%d", leaf.ID), token, nil)
	assert.Equal(t, http.StatusOK, status)

	_, body = env.call(http.MethodGet, "/api/article-categories/tree", token, nil)
	var tree []*models.ArticleCategory
	decode(t, body, &tree)
	require.Len(t, tree, 1)
	assert.Equal(t, "Parent", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Child", tree[0].Children[0].Name)

	status, _ = env.call(http.MethodPost, "/api/article-categories", token,
		map[string]any{"name": "Lost", "parentId": 9999})
	assert.Equal(t, http.StatusBadRequest, status)
}
