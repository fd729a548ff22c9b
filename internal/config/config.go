package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/weiawesome/wes-io-live/overlay-service/pkg/config"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/database"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/pubsub"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/storage"
)

// placeholder marks a value copied from a sample file and never filled in.
const placeholder = "changeme"

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Preview   PreviewConfig
	Asset     AssetConfig
	PubSub    pubsub.Config `mapstructure:"pubsub"`
	Relay     RelayConfig
	Database  database.Config `mapstructure:"database"`
	Auth      AuthConfig
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Log       LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"-"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	Driver       string `mapstructure:"driver"` // local, s3
	AssetsPath   string `mapstructure:"assets_path"`
	PreviewsPath string `mapstructure:"previews_path"`
	S3           S3Config
}

type S3Config struct {
	storage.S3Config `mapstructure:",squash"`
	PreviewBucket    string `mapstructure:"preview_bucket"`
	PreviewPrefix    string `mapstructure:"preview_prefix"`
}

// ContentBackend returns the backend settings for asset content.
func (s StorageConfig) ContentBackend() storage.Config {
	return storage.Config{
		Driver: s.Driver,
		Local:  storage.LocalConfig{BasePath: s.AssetsPath},
		S3:     s.S3.S3Config,
	}
}

// PreviewBackend returns the backend settings for previews. With S3 the
// preview bucket defaults to the content bucket under a "previews" prefix.
func (s StorageConfig) PreviewBackend() storage.Config {
	s3cfg := s.S3.S3Config
	if s.S3.PreviewBucket != "" {
		s3cfg.Bucket = s.S3.PreviewBucket
	}
	s3cfg.Prefix = s.S3.PreviewPrefix
	if s3cfg.Prefix == "" && s3cfg.Bucket == s.S3.Bucket {
		s3cfg.Prefix = strings.Trim(s.S3.Prefix+"/previews", "/")
	}
	return storage.Config{
		Driver: s.Driver,
		Local:  storage.LocalConfig{BasePath: s.PreviewsPath},
		S3:     s3cfg,
	}
}

type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

type PreviewConfig struct {
	MaxWidth  int `mapstructure:"max_width"`
	MaxHeight int `mapstructure:"max_height"`
}

type AssetConfig struct {
	IDStrategy string `mapstructure:"id_strategy"` // uuid, ulid, ksuid, nanoid, cuid2
}

type RelayConfig struct {
	PublishTimeout time.Duration `mapstructure:"-"`
	RetryDelay     time.Duration `mapstructure:"-"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessDuration time.Duration `mapstructure:"-"`
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"-"`
	PongWait       time.Duration `mapstructure:"-"`
	WriteWait      time.Duration `mapstructure:"-"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads config.yaml from dir (if present) and the environment.
func Load(dir string) (*Config, error) {
	v, err := pkgconfig.Load(dir, "config")
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.assets_path", "./data/assets")
	v.SetDefault("storage.previews_path", "./data/previews")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("preview.max_width", 320)
	v.SetDefault("preview.max_height", 320)
	v.SetDefault("asset.id_strategy", "uuid")
	bus := pubsub.DefaultConfig()
	v.SetDefault("pubsub.driver", bus.Driver)
	v.SetDefault("pubsub.redis.address", bus.Redis.Address)
	v.SetDefault("pubsub.redis.pool_size", bus.Redis.PoolSize)
	v.SetDefault("pubsub.redis.read_timeout", bus.Redis.ReadTimeout)
	v.SetDefault("pubsub.redis.write_timeout", bus.Redis.WriteTimeout)
	v.SetDefault("pubsub.kafka.brokers", bus.Kafka.Brokers)
	v.SetDefault("pubsub.kafka.group_id", bus.Kafka.GroupID)
	v.SetDefault("pubsub.kafka.partitions", bus.Kafka.Partitions)
	v.SetDefault("database.driver", "none")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/overlay.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("auth.issuer", "overlay-service")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer", 64)
	v.SetDefault("log.level", "info")

	v.BindEnv("server.port", "PORT")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.assets_path", "IMGFLOAT_ASSETS_PATH")
	v.BindEnv("storage.previews_path", "IMGFLOAT_PREVIEWS_PATH")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.preview_bucket", "S3_PREVIEW_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("upload.max_file_size_mb", "MAX_FILE_SIZE_MB")
	v.BindEnv("pubsub.driver", "PUBSUB_DRIVER")
	v.BindEnv("pubsub.redis.address", "REDIS_ADDRESS")
	v.BindEnv("pubsub.redis.password", "REDIS_PASSWORD")
	v.BindEnv("pubsub.kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Server.ShutdownTimeout = pkgconfig.Duration(v, "server.shutdown_timeout", 10*time.Second)
	cfg.Relay.PublishTimeout = pkgconfig.Duration(v, "relay.publish_timeout", 3*time.Second)
	cfg.Relay.RetryDelay = pkgconfig.Duration(v, "relay.retry_delay", 2*time.Second)
	cfg.Auth.AccessDuration = pkgconfig.Duration(v, "auth.access_duration", time.Hour)
	cfg.WebSocket.PingInterval = pkgconfig.Duration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = pkgconfig.Duration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = pkgconfig.Duration(v, "websocket.write_wait", 10*time.Second)

	return &cfg, nil
}

// Validate reports every missing or placeholder setting at once.
func (c *Config) Validate() error {
	var problems []error

	check := func(value, name string) {
		v := strings.TrimSpace(value)
		if v == "" || strings.EqualFold(v, placeholder) {
			problems = append(problems, fmt.Errorf("%s must be set", name))
		}
	}

	if c.Storage.Driver == "s3" {
		check(c.Storage.S3.Bucket, "storage.s3.bucket")
	} else {
		check(c.Storage.AssetsPath, "storage.assets_path (IMGFLOAT_ASSETS_PATH)")
		check(c.Storage.PreviewsPath, "storage.previews_path (IMGFLOAT_PREVIEWS_PATH)")
	}
	check(c.Auth.JWTSecret, "auth.jwt_secret (JWT_SECRET)")

	if c.Upload.MaxFileSizeMB <= 0 {
		problems = append(problems, errors.New("upload.max_file_size_mb must be positive"))
	}
	if c.Preview.MaxWidth <= 0 || c.Preview.MaxHeight <= 0 {
		problems = append(problems, errors.New("preview.max_width and preview.max_height must be positive"))
	}

	positive := func(d time.Duration, name string) {
		if d <= 0 {
			problems = append(problems, fmt.Errorf("%s must be a positive duration, got %s", name, d))
		}
	}
	positive(c.Server.ShutdownTimeout, "server.shutdown_timeout")
	positive(c.Relay.PublishTimeout, "relay.publish_timeout")
	positive(c.Relay.RetryDelay, "relay.retry_delay")
	positive(c.Auth.AccessDuration, "auth.access_duration")
	positive(c.WebSocket.PingInterval, "websocket.ping_interval")
	positive(c.WebSocket.PongWait, "websocket.pong_wait")
	positive(c.WebSocket.WriteWait, "websocket.write_wait")
	if c.WebSocket.PingInterval > 0 && c.WebSocket.PongWait > 0 && c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		problems = append(problems, errors.New("websocket.ping_interval must be shorter than websocket.pong_wait"))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
}
