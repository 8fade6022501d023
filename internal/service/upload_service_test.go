package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wikiadmin/internal/models"
	"wikiadmin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUploadService(storage Storage) *UploadService {
	svc := NewUploadService(storage)
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC) }
	svc.newID = func() string { return "fixed-id" }
	return svc
}

func TestUploadService_Avatar(t *testing.T) {
	t.Parallel()

	store := &testutil.StorageMock{}
	store.On("Save", mock.Anything, "uploads/avatars/2026/04/02/fixed-id.png").
		Return("/uploads/avatars/2026/04/02/fixed-id.png", nil).Once()
	svc := newUploadService(store)

	png := testutil.TinyPNG(t, 4, 4)
	res, err := svc.UploadAvatar(context.Background(), UploadInput{Filename: "me.PNG", Size: int64(len(png)), Content: png})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/2026/04/02/fixed-id.png", res.URL)
	assert.Equal(t, "image/png", res.Type)
	assert.Equal(t, "image", res.FileType)
	assert.Equal(t, "me.PNG", res.OriginalName)
	assert.Equal(t, png, store.Saved["uploads/avatars/2026/04/02/fixed-id.png"])
	store.AssertExpectations(t)
}

func TestUploadService_AvatarRejections(t *testing.T) {
	t.Parallel()

	png := testutil.TinyPNG(t, 2, 2)
	tests := []struct {
		name string
		in   UploadInput
		code string
	}{
		{"empty", UploadInput{Filename: "a.png"}, models.CodeUpload},
		{"too large", UploadInput{Filename: "a.png", Size: 3 * MB, Content: png}, models.CodeTooLarge},
		{"not an image", UploadInput{Filename: "a.pdf", Content: []byte("%PDF-1.4 hello")}, models.CodeUpload},
		{"disguised text", UploadInput{Filename: "a.png", Content: []byte("just some text")}, models.CodeUpload},
		{"truncated png", UploadInput{Filename: "a.png", Content: png[:12]}, models.CodeUpload},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &testutil.StorageMock{}
			_, err := newUploadService(store).UploadAvatar(context.Background(), tt.in)
			requireCode(t, err, tt.code)
			store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			assert.Empty(t, store.Saved)
		})
	}
}

func TestUploadService_TooLargeMapsTo413(t *testing.T) {
	t.Parallel()
	png := testutil.TinyPNG(t, 2, 2)
	_, err := newUploadService(&testutil.StorageMock{}).UploadAvatar(context.Background(), UploadInput{Size: 5 * MB, Content: png})
	assert.Equal(t, 413, models.StatusFor(err))
}

func TestUploadService_Media(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       UploadInput
		key      string
		fileType string
	}{
		{"image", UploadInput{Filename: "x.png", Content: testutil.TinyPNG(t, 3, 3)}, "uploads/images/2026/04/02/fixed-id.png", "image"},
		{"pdf", UploadInput{Filename: "manual.pdf", Content: []byte("%PDF-1.7\n%binary")}, "uploads/documents/2026/04/02/fixed-id.pdf", "document"},
		{"docx", UploadInput{Filename: "notes.docx", Content: []byte("PK\x03\x04rest-of-zip")}, "uploads/documents/2026/04/02/fixed-id.docx", "document"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &testutil.StorageMock{}
			store.On("Save", mock.Anything, tt.key).Return("/"+tt.key, nil).Once()
			res, err := newUploadService(store).UploadMedia(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, "/"+tt.key, res.URL)
			assert.Equal(t, tt.fileType, res.FileType)
			store.AssertExpectations(t)
		})
	}
}

func TestUploadService_MediaRejections(t *testing.T) {
	t.Parallel()

	store := &testutil.StorageMock{}
	svc := newUploadService(store)
	ctx := context.Background()

	_, err := svc.UploadMedia(ctx, UploadInput{Filename: "run.sh", Content: []byte("#!/bin/sh\necho hi")})
	requireCode(t, err, models.CodeUpload)

	// A plain zip is not a document even with a friendly name.
	_, err = svc.UploadMedia(ctx, UploadInput{Filename: "notes.zip", Content: []byte("PK\x03\x04rest")})
	requireCode(t, err, models.CodeUpload)

	_, err = svc.UploadMedia(ctx, UploadInput{Filename: "big.pdf", Size: MaxDocSize + 1, Content: []byte("%PDF-1.7")})
	requireCode(t, err, models.CodeTooLarge)

	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUploadService_StorageFailure(t *testing.T) {
	t.Parallel()

	store := &testutil.StorageMock{}
	store.On("Save", mock.Anything, mock.Anything).Return("", errors.New("disk full"))
	_, err := newUploadService(store).UploadMedia(context.Background(), UploadInput{Filename: "x.pdf", Content: []byte("%PDF-1.7")})
	requireCode(t, err, models.CodeInternal)
}

func TestSniffMIME(t *testing.T) {
	t.Parallel()
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 32)...)
	assert.Equal(t, mimeDoc, sniffMIME(ole, "old.DOC"))
	assert.Equal(t, "application/octet-stream", sniffMIME(ole, "old.bin"))
	assert.Equal(t, mimeDocx, sniffMIME([]byte("PK\x03\x04"), "new.docx"))
	assert.Equal(t, "video/ogg", sniffMIME([]byte("OggS\x00"), "clip.ogv"))
}

func TestLocalStorage_Save(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewLocalStorage(root, "https://cdn.example.com/")
	url, err := store.Save(context.Background(), "uploads/images/2026/04/02/a.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/images/2026/04/02/a.png", url)

	data, err := os.ReadFile(filepath.Join(root, "uploads", "images", "2026", "04", "02", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "uploads", "images", "2026", "04", "02"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	for _, key := range []string{"../escape.png", "uploads/../../x", "/abs.png", ""} {
		_, err := store.Save(context.Background(), key, strings.NewReader("x"))
		assert.Error(t, err, key)
	}

	local := NewLocalStorage(root, "")
	url, err = local.Save(context.Background(), "b.txt", strings.NewReader("b"))
	require.NoError(t, err)
	assert.Equal(t, "/b.txt", url)
}
