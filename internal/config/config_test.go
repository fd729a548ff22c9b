package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
storage:
  assets_path: /srv/assets
  previews_path: /srv/previews
upload:
  max_file_size_mb: 5
auth:
  jwt_secret: s3cret
websocket:
  ping_interval: 15s
pubsub:
  driver: redis
  redis:
    address: redis:6379
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "/srv/assets", cfg.Storage.AssetsPath)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, 15*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 60*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, "redis", cfg.PubSub.Driver)
	assert.Equal(t, "redis:6379", cfg.PubSub.Redis.Address)
	assert.Equal(t, "none", cfg.Database.Driver)
	assert.Equal(t, "uuid", cfg.Asset.IDStrategy)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverride(t *testing.T) {
	dir := writeConfig(t, "auth:\n  jwt_secret: s3cret\n")
	t.Setenv("IMGFLOAT_ASSETS_PATH", "/env/assets")
	t.Setenv("IMGFLOAT_PREVIEWS_PATH", "/env/previews")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/env/assets", cfg.Storage.AssetsPath)
	assert.Equal(t, "/env/previews", cfg.Storage.PreviewsPath)
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{AssetsPath: "changeme", PreviewsPath: ""},
		Upload:  UploadConfig{MaxFileSizeMB: 0},
		Preview: PreviewConfig{MaxWidth: 10, MaxHeight: 10},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "storage.assets_path")
	assert.Contains(t, msg, "storage.previews_path")
	assert.Contains(t, msg, "auth.jwt_secret")
	assert.Contains(t, msg, "max_file_size_mb")
}

func TestPreviewBackendDefaultsToPrefix(t *testing.T) {
	s := StorageConfig{Driver: "s3"}
	s.S3.Bucket = "overlay"

	assert.Equal(t, "overlay", s.ContentBackend().S3.Bucket)
	assert.Equal(t, "", s.ContentBackend().S3.Prefix)
	assert.Equal(t, "overlay", s.PreviewBackend().S3.Bucket)
	assert.Equal(t, "previews", s.PreviewBackend().S3.Prefix)

	s.S3.PreviewBucket = "overlay-previews"
	assert.Equal(t, "overlay-previews", s.PreviewBackend().S3.Bucket)
	assert.Equal(t, "", s.PreviewBackend().S3.Prefix)
}

func TestValidateRejectsNonPositiveDurations(t *testing.T) {
	dir := writeConfig(t, `
storage:
  assets_path: /srv/assets
  previews_path: /srv/previews
auth:
  jwt_secret: s3cret
websocket:
  ping_interval: 0s
  write_wait: -1s
relay:
  retry_delay: 0
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "websocket.ping_interval")
	assert.Contains(t, msg, "websocket.write_wait")
	assert.Contains(t, msg, "relay.retry_delay")
	assert.NotContains(t, msg, "websocket.pong_wait")
}

func TestValidateRequiresPingShorterThanPongWait(t *testing.T) {
	dir := writeConfig(t, `
storage:
  assets_path: /srv/assets
  previews_path: /srv/previews
auth:
  jwt_secret: s3cret
websocket:
  ping_interval: 90
  pong_wait: 60s
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.WebSocket.PingInterval)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shorter than websocket.pong_wait")
}
