package videos

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidforge/gateway/internal/models"
)

type repoSpy struct {
	assignID    int64
	createErr   error
	listErr     error
	videos      []models.Video
	createCalls int
	listCalls   int
}

func (r *repoSpy) Create(ctx context.Context, v *models.Video) error {
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	v.ID = r.assignID
	v.CreatedAt = time.Now()
	r.videos = append(r.videos, *v)
	return nil
}

func (r *repoSpy) ListByUser(ctx context.Context, userID int64) ([]models.Video, error) {
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Video
	for _, v := range r.videos {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

type storageSpy struct {
	saveErr error
	keys    []string
}

func (s *storageSpy) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	s.keys = append(s.keys, key)
	return "/data/uploads/" + key, nil
}

type publishedJob struct {
	videoID int64
	key     string
}

type publisherSpy struct {
	publishErr error
	jobs       []publishedJob
}

func (p *publisherSpy) PublishVideoJob(ctx context.Context, videoID int64, storageKey string) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.jobs = append(p.jobs, publishedJob{videoID: videoID, key: storageKey})
	return nil
}

type cacheSpy struct {
	entries  map[int64][]models.Video
	gets     int
	sets     int
	disabled bool // simulates an unreachable cache: every read misses, writes vanish
}

func (c *cacheSpy) GetUserVideos(ctx context.Context, userID int64) ([]models.Video, bool) {
	c.gets++
	if c.disabled {
		return nil, false
	}
	v, ok := c.entries[userID]
	return v, ok
}

func (c *cacheSpy) SetUserVideos(ctx context.Context, userID int64, videos []models.Video) {
	c.sets++
	if c.disabled {
		return
	}
	if c.entries == nil {
		c.entries = make(map[int64][]models.Video)
	}
	c.entries[userID] = videos
}

func TestUploadHandoff(t *testing.T) {
	repo := &repoSpy{assignID: 42}
	blobs := &storageSpy{}
	pub := &publisherSpy{}
	svc := NewUploadService(repo, blobs, pub, nil)

	video, err := svc.Execute(context.Background(), strings.NewReader("movie bytes"), "vacation.mp4", 7)
	require.NoError(t, err)

	assert.Equal(t, int64(42), video.ID)
	assert.Equal(t, int64(7), video.UserID)
	assert.Equal(t, models.VideoStatusUploaded, video.Status)
	assert.Equal(t, "vacation.mp4", video.OriginalName)
	assert.NotEqual(t, video.OriginalName, video.Filename)
	assert.True(t, strings.HasSuffix(video.Filename, ".mp4"))

	require.Len(t, blobs.keys, 1)
	assert.Equal(t, video.Filename, blobs.keys[0])
	assert.Equal(t, 1, repo.createCalls)
	require.Len(t, pub.jobs, 1)
	assert.Equal(t, publishedJob{videoID: 42, key: video.Filename}, pub.jobs[0])
}

func TestUploadGeneratesDistinctKeys(t *testing.T) {
	repo := &repoSpy{assignID: 1}
	blobs := &storageSpy{}
	svc := NewUploadService(repo, blobs, &publisherSpy{}, nil)

	first, err := svc.Execute(context.Background(), strings.NewReader("a"), "vacation.mp4", 7)
	require.NoError(t, err)
	second, err := svc.Execute(context.Background(), strings.NewReader("b"), "vacation.mp4", 7)
	require.NoError(t, err)

	assert.NotEqual(t, first.Filename, second.Filename)
}

func TestUploadRejectsMissingUser(t *testing.T) {
	repo := &repoSpy{assignID: 1}
	blobs := &storageSpy{}
	pub := &publisherSpy{}
	svc := NewUploadService(repo, blobs, pub, nil)

	_, err := svc.Execute(context.Background(), strings.NewReader("a"), "vacation.mp4", 0)
	require.ErrorIs(t, err, ErrMissingUser)
	assert.Empty(t, blobs.keys)
	assert.Zero(t, repo.createCalls)
	assert.Empty(t, pub.jobs)
}

func TestUploadStorageFailureAborts(t *testing.T) {
	repo := &repoSpy{assignID: 1}
	pub := &publisherSpy{}
	svc := NewUploadService(repo, &storageSpy{saveErr: errors.New("disk full")}, pub, nil)

	_, err := svc.Execute(context.Background(), strings.NewReader("a"), "vacation.mp4", 7)
	require.Error(t, err)
	assert.Zero(t, repo.createCalls, "no record should be created for bytes that were never stored")
	assert.Empty(t, pub.jobs, "no message should be published for bytes that were never stored")
}

func TestUploadRepositoryFailureSkipsPublish(t *testing.T) {
	repo := &repoSpy{createErr: errors.New("connection reset")}
	pub := &publisherSpy{}
	svc := NewUploadService(repo, &storageSpy{}, pub, nil)

	_, err := svc.Execute(context.Background(), strings.NewReader("a"), "vacation.mp4", 7)
	require.Error(t, err)
	assert.Empty(t, pub.jobs)
}

func TestUploadMissingIDAbortsPublish(t *testing.T) {
	repo := &repoSpy{assignID: 0}
	pub := &publisherSpy{}
	svc := NewUploadService(repo, &storageSpy{}, pub, nil)

	_, err := svc.Execute(context.Background(), strings.NewReader("a"), "vacation.mp4", 7)
	require.ErrorIs(t, err, ErrNoVideoID)
	assert.Empty(t, pub.jobs)
}

func TestUploadPublishFailureKeepsRecord(t *testing.T) {
	repo := &repoSpy{assignID: 9}
	svc := NewUploadService(repo, &storageSpy{}, &publisherSpy{publishErr: errors.New("connection refused")}, nil)

	_, err := svc.Execute(context.Background(), strings.NewReader("a"), "vacation.mp4", 7)
	require.Error(t, err)

	// The created record is not rolled back; the job is stuck in UPLOADED
	// with no queue message.
	require.Len(t, repo.videos, 1)
	assert.Equal(t, models.VideoStatusUploaded, repo.videos[0].Status)
}

func TestStatusEmptyList(t *testing.T) {
	svc := NewStatusService(&repoSpy{}, &cacheSpy{}, nil)

	videos, err := svc.Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)
}

func TestStatusCacheAside(t *testing.T) {
	repo := &repoSpy{
		videos: []models.Video{
			{ID: 42, UserID: 7, Filename: "a1b2c3d4.mp4", OriginalName: "vacation.mp4", Status: models.VideoStatusUploaded},
		},
	}
	c := &cacheSpy{}
	svc := NewStatusService(repo, c, nil)

	first, err := svc.Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, c.sets)

	second, err := svc.Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second read should be served from cache")
	assert.Equal(t, first, second)
}

func TestStatusCacheFailureFallsThrough(t *testing.T) {
	repo := &repoSpy{
		videos: []models.Video{
			{ID: 1, UserID: 7, Filename: "x.mp4", OriginalName: "x.mp4", Status: models.VideoStatusDone},
		},
	}
	svc := NewStatusService(repo, &cacheSpy{disabled: true}, nil)

	_, err := svc.Execute(context.Background(), 7)
	require.NoError(t, err)
	_, err = svc.Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestStatusDoesNotLeakOtherUsersVideos(t *testing.T) {
	repo := &repoSpy{
		videos: []models.Video{
			{ID: 1, UserID: 7, Filename: "a.mp4", Status: models.VideoStatusDone},
			{ID: 2, UserID: 8, Filename: "b.mp4", Status: models.VideoStatusDone},
		},
	}
	svc := NewStatusService(repo, &cacheSpy{disabled: true}, nil)

	videos, err := svc.Execute(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, int64(1), videos[0].ID)
}
