package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rewear-service/internal/api/dto"
	"github.com/spec-kit/rewear-service/internal/service"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// UploadHandler relays listing photos to media storage.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs handler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload POST /upload with multipart field "file".
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", map[string]any{"file": "required"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	// One byte past the limit is enough for the size guard to trip.
	data, err := io.ReadAll(io.LimitReader(file, h.uploads.MaxBytes()+1))
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	image, err := h.uploads.UploadImage(c.UserContext(), data, header.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{
		Success:  true,
		ImageURL: image.ImageURL,
		PublicID: image.PublicID,
		Width:    image.Width,
		Height:   image.Height,
	})
}
