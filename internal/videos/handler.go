package videos

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vidforge/gateway/internal/middleware"
	"github.com/vidforge/gateway/internal/models"
	"github.com/vidforge/gateway/pkg/response"
	"github.com/vidforge/gateway/pkg/storage"
)

// Handler handles video HTTP endpoints.
type Handler struct {
	upload    *UploadService
	status    *StatusService
	presigner storage.Presigner // nil on the local backend
	bucket    string
	logger    *zap.Logger
}

// NewHandler creates a videos handler.
func NewHandler(upload *UploadService, status *StatusService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{upload: upload, status: status, logger: logger}
}

// SetPresigner enables presigned download links for the object-store backend.
func (h *Handler) SetPresigner(p storage.Presigner, bucket string) {
	h.presigner = p
	h.bucket = bucket
}

// Upload handles POST /upload. The multipart field "video" is streamed into
// storage without buffering the whole payload.
func (h *Handler) Upload(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(int64)

	fileHeader, err := c.FormFile("video")
	if err != nil {
		response.BadRequest(c, "missing video file: "+err.Error())
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to open uploaded file")
		return
	}
	defer f.Close()

	video, err := h.upload.Execute(c.Request.Context(), f, fileHeader.Filename, userID)
	if err != nil {
		if errors.Is(err, ErrMissingUser) {
			response.Unauthorized(c, "missing user identity")
			return
		}
		h.logger.Error("upload failed", zap.Int64("user_id", userID), zap.String("original_name", fileHeader.Filename), zap.Error(err))
		response.Internal(c, "failed to process upload")
		return
	}

	response.Created(c, gin.H{
		"id":            video.ID,
		"filename":      video.Filename,
		"original_name": video.OriginalName,
		"status":        video.Status,
	})
}

// StatusItem is one row of the GET /status response. ZipURL is null until the
// worker has produced output (and, on S3, until presigning succeeds).
type StatusItem struct {
	ID           int64              `json:"id"`
	OriginalName string             `json:"original_name"`
	Status       models.VideoStatus `json:"status"`
	CreatedAt    string             `json:"created_at"`
	ZipURL       *string            `json:"zip_url"`
}

// Status handles GET /status.
func (h *Handler) Status(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(int64)

	videos, err := h.status.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("status query failed", zap.Int64("user_id", userID), zap.Error(err))
		response.Internal(c, "failed to list videos")
		return
	}

	items := make([]StatusItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, h.statusItem(c.Request.Context(), v))
	}
	response.OK(c, items)
}

// statusItem formats one video for the status response, resolving the
// download link. A failed presign degrades that one item to a null link.
func (h *Handler) statusItem(ctx context.Context, v models.Video) StatusItem {
	item := StatusItem{
		ID:           v.ID,
		OriginalName: v.OriginalName,
		Status:       v.Status,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
	if v.ZipPath == "" {
		return item
	}
	if h.presigner == nil {
		url := "/download/" + v.ZipPath
		item.ZipURL = &url
		return item
	}
	key, ok := storage.ObjectKeyFromLocator(v.ZipPath, h.bucket)
	if !ok {
		h.logger.Warn("unrecognized zip locator", zap.Int64("video_id", v.ID), zap.String("zip_path", v.ZipPath))
		return item
	}
	url, _, err := h.presigner.PresignDownload(ctx, key)
	if err != nil {
		h.logger.Warn("presign download failed", zap.Int64("video_id", v.ID), zap.String("key", key), zap.Error(err))
		return item
	}
	item.ZipURL = &url
	return item
}
