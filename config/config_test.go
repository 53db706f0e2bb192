package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "secret",
		DBName: "videogateway", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://app:secret@db:5432/videogateway?sslmode=disable", c.DSN())

	c.URL = "postgres://elsewhere:5432/other"
	assert.Equal(t, "postgres://elsewhere:5432/other", c.DSN())
}

func TestBrokerURL(t *testing.T) {
	c := BrokerConfig{Host: "mq", Port: "5671", User: "guest", Password: "guest", VHost: "/", TLS: true}
	assert.Equal(t, "amqps://guest:guest@mq:5671/", c.URL())

	c.VHost = "video"
	assert.Equal(t, "amqps://guest:guest@mq:5671/video", c.URL())

	c.TLS = false
	assert.Equal(t, "amqp://guest:guest@mq:5671/video", c.URL())
}

func TestLoadBrokerTLSByDefault(t *testing.T) {
	t.Setenv("MQ_TLS", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Broker.TLS)
	assert.True(t, strings.HasPrefix(cfg.Broker.URL(), "amqps://"))

	t.Setenv("MQ_TLS", "false")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.Broker.TLS)
}

func TestDurationDefaults(t *testing.T) {
	assert.Equal(t, time.Minute, RedisConfig{}.VideoListTTL())
	assert.Equal(t, 120*time.Second, RedisConfig{VideoListTTLSec: 120}.VideoListTTL())
	assert.Equal(t, 15*time.Minute, StorageConfig{}.PresignExpire())
	assert.Equal(t, 5*time.Minute, StorageConfig{PresignExpireMinutes: 5}.PresignExpire())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "ftp")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresBucketForS3(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("AWS_S3_UPLOADS_BUCKET", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadS3Backend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("AWS_S3_UPLOADS_BUCKET", "video-uploads")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageBackendS3, cfg.Storage.Backend)
	assert.Equal(t, "video-uploads", cfg.Storage.Bucket)
	assert.Equal(t, "video_processing", cfg.Broker.Queue)
}
