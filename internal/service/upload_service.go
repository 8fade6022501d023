package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"wikiadmin/internal/middleware"
	"wikiadmin/internal/models"
	"wikiadmin/internal/observability"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	MB            = 1 << 20
	MaxAvatarSize = 2 * MB
	MaxImageSize  = 10 * MB
	MaxVideoSize  = 50 * MB
	MaxDocSize    = 20 * MB
)

const (
	mimeDoc  = "application/msword"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	fileTypeImage = "image"
	fileTypeVideo = "video"
	fileTypeDoc   = "document"
)

type mediaKind struct {
	fileType string
	dir      string
	maxSize  int64
	ext      string
}

var mediaKinds = map[string]mediaKind{
	"image/jpeg":      {fileTypeImage, "images", MaxImageSize, "jpg"},
	"image/png":       {fileTypeImage, "images", MaxImageSize, "png"},
	"image/gif":       {fileTypeImage, "images", MaxImageSize, "gif"},
	"image/webp":      {fileTypeImage, "images", MaxImageSize, "webp"},
	"video/mp4":       {fileTypeVideo, "videos", MaxVideoSize, "mp4"},
	"video/webm":      {fileTypeVideo, "videos", MaxVideoSize, "webm"},
	"video/ogg":       {fileTypeVideo, "videos", MaxVideoSize, "ogv"},
	"application/pdf": {fileTypeDoc, "documents", MaxDocSize, "pdf"},
	mimeDoc:           {fileTypeDoc, "documents", MaxDocSize, "doc"},
	mimeDocx:          {fileTypeDoc, "documents", MaxDocSize, "docx"},
}

// UploadInput is one multipart file part, read into memory by the handler.
type UploadInput struct {
	Filename string
	Size     int64
	Content  []byte
}

type UploadResult struct {
	URL          string `json:"url"`
	Location     string `json:"location,omitempty"`
	Filename     string `json:"filename,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
	Size         int64  `json:"size,omitempty"`
	Type         string `json:"type,omitempty"`
	FileType     string `json:"fileType,omitempty"`
}

// UploadService validates uploads and hands them to Storage. Every check
// runs before the first byte is written.
type UploadService struct {
	storage Storage
	now     func() time.Time
	newID   func() string
}

func NewUploadService(storage Storage) *UploadService {
	return &UploadService{
		storage: storage,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// UploadAvatar accepts a still image of at most MaxAvatarSize.
func (s *UploadService) UploadAvatar(ctx context.Context, in UploadInput) (*UploadResult, error) {
	mime, kind, err := s.check(in)
	if err != nil {
		return nil, s.reject(err)
	}
	if kind.fileType != fileTypeImage {
		return nil, s.reject(models.NewUploadError("Avatar must be a JPEG, PNG, GIF or WebP image"))
	}
	if uploadSize(in) > MaxAvatarSize {
		return nil, s.reject(models.NewTooLargeError(fmt.Sprintf("Avatar must not exceed %dMB", MaxAvatarSize/MB)))
	}
	return s.store(ctx, "avatars", mime, kind, in)
}

// UploadMedia accepts images, videos and documents with per-kind limits.
func (s *UploadService) UploadMedia(ctx context.Context, in UploadInput) (*UploadResult, error) {
	mime, kind, err := s.check(in)
	if err != nil {
		return nil, s.reject(err)
	}
	if uploadSize(in) > kind.maxSize {
		return nil, s.reject(models.NewTooLargeError(fmt.Sprintf("%s files must not exceed %dMB", kind.fileType, kind.maxSize/MB)))
	}
	return s.store(ctx, kind.dir, mime, kind, in)
}

func (s *UploadService) check(in UploadInput) (string, mediaKind, error) {
	if len(in.Content) == 0 {
		return "", mediaKind{}, models.NewUploadError("No file uploaded")
	}
	mime := sniffMIME(in.Content, in.Filename)
	kind, ok := mediaKinds[mime]
	if !ok {
		return "", mediaKind{}, models.NewUploadError(fmt.Sprintf("Unsupported file type %s", mime))
	}
	if kind.fileType == fileTypeImage {
		if _, _, err := image.DecodeConfig(bytes.NewReader(in.Content)); err != nil {
			return "", mediaKind{}, models.NewUploadError("File is not a valid image")
		}
	}
	return mime, kind, nil
}

func (s *UploadService) store(ctx context.Context, dir, mime string, kind mediaKind, in UploadInput) (*UploadResult, error) {
	filename := s.newID() + "." + kind.ext
	key := fmt.Sprintf("uploads/%s/%s/%s", dir, s.now().Format("2006/01/02"), filename)

	url, err := s.storage.Save(ctx, key, bytes.NewReader(in.Content))
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "upload storage failed", "key", key, "error", err)
		observability.UploadsTotal.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}
	observability.UploadsTotal.WithLabelValues("stored").Inc()
	observability.UploadBytes.Observe(float64(len(in.Content)))

	return &UploadResult{
		URL:          url,
		Location:     url,
		Filename:     filename,
		OriginalName: filepath.Base(in.Filename),
		Size:         int64(len(in.Content)),
		Type:         mime,
		FileType:     kind.fileType,
	}, nil
}

func (s *UploadService) reject(err error) error {
	observability.UploadsTotal.WithLabelValues("rejected").Inc()
	return err
}

func uploadSize(in UploadInput) int64 {
	return max(in.Size, int64(len(in.Content)))
}

// sniffMIME trusts content over the client's declared type. Office formats
// sniff as generic containers, so the extension breaks the tie for them.
func sniffMIME(content []byte, filename string) string {
	mime, _, _ := strings.Cut(http.DetectContentType(content), ";")
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case mime == "application/ogg":
		return "video/ogg"
	case mime == "application/zip" && ext == ".docx":
		return mimeDocx
	case mime == "application/octet-stream" && ext == ".doc" && bytes.HasPrefix(content, []byte{0xD0, 0xCF, 0x11, 0xE0}):
		return mimeDoc
	}
	return mime
}
