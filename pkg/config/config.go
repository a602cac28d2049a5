// Package config loads the studio configuration from a TOML file.
//
// Every field has a default, so an empty or missing file yields a working
// single-node setup: in-memory storage and sessions, assets on local disk.
//
//	[server]
//	addr = ":8080"
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[assets]
//	backend = "s3"
//	bucket = "studio-assets"
//
// Unknown keys are rejected so typos surface at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	serrors "github.com/matzehuels/studio/pkg/errors"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendFS     = "fs"
	BackendS3     = "s3"
	BackendGridFS = "gridfs"
)

// Config is the full configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Redis   RedisConfig   `toml:"redis"`
	Assets  AssetsConfig  `toml:"assets"`
	Session SessionConfig `toml:"session"`
	Editor  EditorConfig  `toml:"editor"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// StorageConfig selects where builds are persisted.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// RedisConfig is optional; an empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// AssetsConfig selects where uploaded files go.
type AssetsConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	MaxUploadSize   int64  `toml:"max_upload_size"`
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	ACL             string `toml:"acl"`
}

// SessionConfig selects where editing sessions live.
type SessionConfig struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
}

// EditorConfig tunes the per-project stores.
type EditorConfig struct {
	HistoryLimit int `toml:"history_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Storage: StorageConfig{
			Backend:  BackendMemory,
			MongoURI: "mongodb://localhost:27017",
			Database: "studio",
		},
		Assets: AssetsConfig{
			Backend:       BackendFS,
			Dir:           "assets",
			MaxUploadSize: 10 << 20,
			Region:        "auto",
		},
		Session: SessionConfig{
			Backend: BackendMemory,
			TTL:     24 * time.Hour,
		},
		Editor: EditorConfig{
			HistoryLimit: 100,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// path is empty; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, serrors.Wrap(serrors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return cfg, serrors.Wrap(serrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := Parse(string(data), &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML into cfg, keeping values the document does not set.
func Parse(doc string, cfg *Config) error {
	md, err := toml.Decode(doc, cfg)
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return serrors.New(serrors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks backend names and the settings each backend needs.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return serrors.New(serrors.ErrCodeInvalidConfig, format, args...)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendMongo:
		if c.Storage.MongoURI == "" || c.Storage.Database == "" {
			return invalid("storage.mongo_uri and storage.database are required for the mongo backend")
		}
	default:
		return invalid("unknown storage.backend %q (want memory or mongo)", c.Storage.Backend)
	}

	switch c.Assets.Backend {
	case BackendFS:
		if c.Assets.Dir == "" {
			return invalid("assets.dir is required for the fs backend")
		}
	case BackendS3:
		if c.Assets.Bucket == "" {
			return invalid("assets.bucket is required for the s3 backend")
		}
		if c.Assets.Endpoint != "" {
			if err := serrors.ValidateURL(c.Assets.Endpoint); err != nil {
				return serrors.Wrap(serrors.ErrCodeInvalidConfig, err, "assets.endpoint")
			}
		}
	case BackendGridFS:
		if c.Storage.Backend != BackendMongo {
			return invalid("assets.backend gridfs needs storage.backend mongo")
		}
	default:
		return invalid("unknown assets.backend %q (want fs, s3 or gridfs)", c.Assets.Backend)
	}
	if c.Assets.MaxUploadSize <= 0 {
		return invalid("assets.max_upload_size must be positive")
	}

	switch c.Session.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if !c.Redis.Enabled() {
			return invalid("session.backend redis needs redis.addr")
		}
	default:
		return invalid("unknown session.backend %q (want memory, file or redis)", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return invalid("session.ttl must be positive")
	}

	if c.Editor.HistoryLimit < 0 {
		return invalid("editor.history_limit cannot be negative")
	}
	return nil
}

// String renders the configuration as TOML with secrets masked.
func (c Config) String() string {
	masked := c
	if masked.Assets.SecretAccessKey != "" {
		masked.Assets.SecretAccessKey = "***"
	}
	if masked.Redis.Password != "" {
		masked.Redis.Password = "***"
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
