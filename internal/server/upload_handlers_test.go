package server

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wikiadmin/internal/models"
	"wikiadmin/internal/service"
	"wikiadmin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, path, token, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user("admin", models.RoleReviewer)
	token := env.token(admin)

	status, body := env.do(multipartRequest(t, "/api/upload/avatar", token, "avatar", "me.png", testutil.TinyPNG(t, 8, 8)))
	require.Equal(t, http.StatusOK, status, body.Message)
	var result struct {
		URL string `json:"url"`
	}
	decode(t, body, &result)
	require.True(t, strings.HasPrefix(result.URL, "/uploads/avatars/"), result.URL)
	assert.True(t, strings.HasSuffix(result.URL, ".png"))

	_, err := os.Stat(filepath.Join(env.srv.config.UploadDir, filepath.FromSlash(strings.TrimPrefix(result.URL, "/"))))
	assert.NoError(t, err)

	var stored models.User
	require.NoError(t, env.db.First(&stored, admin.ID).Error)
	assert.Equal(t, result.URL, stored.Avatar)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user("admin", models.RoleReviewer)
	token := env.token(admin)

	tests := []struct {
		name     string
		field    string
		filename string
		content  []byte
		want     int
	}{
		{name: "missing part", want: http.StatusBadRequest},
		{name: "not an image", field: "avatar", filename: "a.png", content: []byte("plain text pretending"), want: http.StatusBadRequest},
		{name: "pdf as avatar", field: "avatar", filename: "a.pdf", content: []byte("%PDF-1.4\n"), want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(multipartRequest(t, "/api/upload/avatar", token, tt.field, tt.filename, tt.content))
			assert.Equal(t, tt.want, status)
			assert.Equal(t, tt.want, body.Code)
		})
	}

	var stored models.User
	require.NoError(t, env.db.First(&stored, admin.ID).Error)
	assert.Empty(t, stored.Avatar)
}

func TestUploadMedia(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(env.user("admin", models.RoleReviewer))

	status, body := env.do(multipartRequest(t, "/api/upload/media", token, "file", "notes.pdf", []byte("%PDF-1.4\nbody")))
	require.Equal(t, http.StatusOK, status, body.Message)
	var result service.UploadResult
	decode(t, body, &result)
	assert.Equal(t, "application/pdf", result.Type)
	assert.Equal(t, "document", result.FileType)
	assert.Equal(t, "notes.pdf", result.OriginalName)
	assert.Contains(t, result.URL, "/uploads/documents/")
}

func TestUploadMedia_StorageFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(env.user("admin", models.RoleReviewer))

	store := &testutil.StorageMock{}
	store.On("Save", mock.Anything, mock.Anything).Return("", errors.New("disk full"))
	env.srv.uploads = service.NewUploadService(store)

	status, body := env.do(multipartRequest(t, "/api/upload/media", token, "file", "a.png", testutil.TinyPNG(t, 2, 2)))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body.Message, "disk full")
	store.AssertExpectations(t)
}
