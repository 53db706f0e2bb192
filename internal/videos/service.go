package videos

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/vidforge/gateway/internal/models"
	"github.com/vidforge/gateway/pkg/storage"
)

var (
	// ErrMissingUser is returned when the caller has no authenticated user id.
	ErrMissingUser = errors.New("authenticated user id is required")
	// ErrNoVideoID is returned when the repository fails to assign an id on
	// create. The handoff aborts before any message is published.
	ErrNoVideoID = errors.New("repository did not assign a video id")
)

// VideoRepository creates and reads video job rows. *Repository implements it.
type VideoRepository interface {
	Create(ctx context.Context, v *models.Video) error
	ListByUser(ctx context.Context, userID int64) ([]models.Video, error)
}

// JobPublisher hands a stored video off to the processing queue.
type JobPublisher interface {
	PublishVideoJob(ctx context.Context, videoID int64, storageKey string) error
}

// ListCache is the cache-aside store for per-user video lists. A lookup
// failure is indistinguishable from a miss.
type ListCache interface {
	GetUserVideos(ctx context.Context, userID int64) ([]models.Video, bool)
	SetUserVideos(ctx context.Context, userID int64, videos []models.Video)
}

// UploadService orchestrates the upload-to-enqueue handoff: store the bytes,
// create the job record, publish the queue message — strictly in that order,
// so no message ever references bytes that were not durably stored.
type UploadService struct {
	repo      VideoRepository
	storage   storage.BlobStorage
	publisher JobPublisher
	logger    *zap.Logger
}

// NewUploadService creates the upload handoff service.
func NewUploadService(repo VideoRepository, blobs storage.BlobStorage, publisher JobPublisher, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{repo: repo, storage: blobs, publisher: publisher, logger: logger}
}

// Execute runs the handoff for one upload. On storage failure nothing else
// happens; on repository failure nothing is published. A publish failure after
// a successful create is reported but the UPLOADED record stays behind with no
// queue message.
func (s *UploadService) Execute(ctx context.Context, r io.Reader, originalName string, userID int64) (*models.Video, error) {
	if userID <= 0 {
		return nil, ErrMissingUser
	}

	key := storage.NewObjectKey(originalName)
	locator, err := s.storage.Save(ctx, key, r)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	video := &models.Video{
		UserID:       userID,
		Filename:     key,
		OriginalName: originalName,
		Status:       models.VideoStatusUploaded,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("create video record: %w", err)
	}
	if video.ID == 0 {
		return nil, ErrNoVideoID
	}

	if err := s.publisher.PublishVideoJob(ctx, video.ID, key); err != nil {
		s.logger.Error("publish video job failed, record left in UPLOADED",
			zap.Int64("video_id", video.ID), zap.String("filename", key), zap.Error(err))
		return nil, fmt.Errorf("queue video job: %w", err)
	}

	s.logger.Info("video stored and queued",
		zap.Int64("video_id", video.ID),
		zap.Int64("user_id", userID),
		zap.String("filename", key),
		zap.String("locator", locator),
	)
	return video, nil
}

// StatusService serves a user's video list, cache-aside: the cache is checked
// first, a miss reads the repository and repopulates the cache.
type StatusService struct {
	repo   VideoRepository
	cache  ListCache
	logger *zap.Logger
}

// NewStatusService creates the status aggregation service.
func NewStatusService(repo VideoRepository, cache ListCache, logger *zap.Logger) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{repo: repo, cache: cache, logger: logger}
}

// Execute returns the user's videos. A user with no videos gets an empty list,
// not an error.
func (s *StatusService) Execute(ctx context.Context, userID int64) ([]models.Video, error) {
	if userID <= 0 {
		return nil, ErrMissingUser
	}
	if videos, ok := s.cache.GetUserVideos(ctx, userID); ok {
		return videos, nil
	}
	videos, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	s.cache.SetUserVideos(ctx, userID, videos)
	return videos, nil
}
