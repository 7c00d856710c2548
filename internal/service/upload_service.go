package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/config"
	"github.com/spec-kit/rewear-service/internal/imaging"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// MediaStore persists processed images.
type MediaStore interface {
	Save(ctx context.Context, publicID string, data []byte) (string, error)
}

// UploadRecorder counts upload outcomes.
type UploadRecorder interface {
	RecordUpload(outcome string)
}

// UploadedImage is the public handle of a stored image.
type UploadedImage struct {
	ImageURL string
	PublicID string
	Width    int
	Height   int
}

// UploadService validates, shrinks and stores listing photos.
type UploadService struct {
	store    MediaStore
	cfg      config.UploadConfig
	recorder UploadRecorder
	logger   *zap.Logger
}

// NewUploadService constructs the service.
func NewUploadService(store MediaStore, cfg config.UploadConfig, recorder UploadRecorder, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{store: store, cfg: cfg, recorder: recorder, logger: logger}
}

// MaxBytes is the largest accepted upload.
func (s *UploadService) MaxBytes() int64 {
	return s.cfg.MaxBytes
}

// UploadImage checks the declared and sniffed type plus the size, then stores
// a JPEG that fits the configured bounding box.
func (s *UploadService) UploadImage(ctx context.Context, data []byte, declaredMIME string) (*UploadedImage, error) {
	result, err := s.upload(ctx, data, declaredMIME)
	outcome := "ok"
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
	}
	if s.recorder != nil {
		s.recorder.RecordUpload(outcome)
	}
	return result, err
}

func (s *UploadService) upload(ctx context.Context, data []byte, declaredMIME string) (*UploadedImage, error) {
	mimeType := normalizeMIME(declaredMIME)
	if !allowedImageTypes[mimeType] {
		return nil, apperrors.NewUnsupportedMediaType(declaredMIME)
	}
	if size := int64(len(data)); size > s.cfg.MaxBytes {
		return nil, apperrors.NewPayloadTooLarge(size, s.cfg.MaxBytes)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("file is empty", map[string]any{"file": "required"})
	}

	kind, err := filetype.Match(data)
	if err != nil || !allowedImageTypes[kind.MIME.Value] {
		return nil, apperrors.NewUnsupportedMediaType(kind.MIME.Value)
	}

	processed, err := imaging.Process(data, imaging.Options{
		MaxWidth:  s.cfg.MaxWidth,
		MaxHeight: s.cfg.MaxHeight,
		Quality:   s.cfg.JPEGQuality,
	})
	if err != nil {
		return nil, apperrors.NewValidationError("image could not be decoded", map[string]any{"file": err.Error()})
	}

	publicID := strings.ReplaceAll(uuid.NewString(), "-", "")
	url, err := s.store.Save(ctx, publicID, processed.Data)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("image stored",
		zap.String("public_id", publicID),
		zap.String("declared_mime", mimeType),
		zap.String("sniffed_mime", kind.MIME.Value),
		zap.Int("bytes_in", len(data)),
		zap.Int("bytes_out", len(processed.Data)))
	return &UploadedImage{
		ImageURL: url,
		PublicID: publicID,
		Width:    processed.Width,
		Height:   processed.Height,
	}, nil
}

func normalizeMIME(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	if value == "image/jpg" {
		return "image/jpeg"
	}
	return value
}
