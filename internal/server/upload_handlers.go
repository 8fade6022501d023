package server

import (
	"io"

	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"github.com/gofiber/fiber/v2"
)

// readUpload loads one multipart file part into memory. A missing part
// yields an empty input, which the upload service rejects.
func readUpload(c *fiber.Ctx, field string) (service.UploadInput, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return service.UploadInput{}, nil
	}

	src, err := file.Open()
	if err != nil {
		return service.UploadInput{}, models.NewUploadError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return service.UploadInput{}, models.NewUploadError("Unable to read uploaded file")
	}

	return service.UploadInput{
		Filename: file.Filename,
		Size:     file.Size,
		Content:  content,
	}, nil
}

// UploadAvatar handles POST /api/upload/avatar and sets the caller's avatar.
// @Summary Upload an avatar
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "JPEG, PNG, GIF or WebP image up to 2MB"
// @Success 200 {object} models.Envelope{data=object{url=string}}
// @Failure 400 {object} models.Envelope
// @Failure 413 {object} models.Envelope
// @Router /upload/avatar [post]
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	in, err := readUpload(c, "avatar")
	if err != nil {
		return respondError(c, err)
	}
	result, err := s.uploads.UploadAvatar(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.accounts.SetAvatar(c.UserContext(), currentUser(c).ID, result.URL); err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, fiber.Map{"url": result.URL}, "avatar uploaded")
}

// UploadMedia handles POST /api/upload/media
// @Summary Upload a media file
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image, video or document"
// @Success 200 {object} models.Envelope{data=service.UploadResult}
// @Failure 400 {object} models.Envelope
// @Failure 413 {object} models.Envelope
// @Router /upload/media [post]
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	in, err := readUpload(c, "file")
	if err != nil {
		return respondError(c, err)
	}
	result, err := s.uploads.UploadMedia(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return models.RespondOK(c, result, "file uploaded")
}
