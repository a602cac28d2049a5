package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/matzehuels/studio/internal/api"
	"github.com/matzehuels/studio/pkg/asset"
	"github.com/matzehuels/studio/pkg/cache"
	"github.com/matzehuels/studio/pkg/config"
	"github.com/matzehuels/studio/pkg/session"
	"github.com/matzehuels/studio/pkg/storage"
	"github.com/matzehuels/studio/pkg/storage/mongo"
)

const redisPrefix = "studio:"

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor HTTP API",
		Long: `Run the HTTP API that edits builds through sessions.

Backends come from the config file: builds in memory or MongoDB, sessions in
memory, files or Redis, assets on disk, S3 or GridFS. With Redis configured,
rendered trees are cached there and commits are published on
studio:commits:<project>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides [server] addr)")

	return cmd
}

// backends holds everything the API server needs from the config, with a
// single close for all of it.
type backends struct {
	opts    api.Options
	closers []func(context.Context) error
}

func (b *backends) onClose(fn func(context.Context) error) {
	b.closers = append(b.closers, fn)
}

// close runs the closers in reverse order and reports every failure.
func (b *backends) close(ctx context.Context) error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i](ctx))
	}
	return err
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	be, err := c.openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := be.close(closeCtx); err != nil {
			c.Logger.Warn("close backends", "err", err)
		}
	}()

	srv := api.New(be.opts)
	printSuccess("Listening on %s", cfg.Server.Addr)
	printKeyValue("storage", cfg.Storage.Backend)
	printKeyValue("sessions", cfg.Session.Backend)
	printKeyValue("assets", cfg.Assets.Backend)
	if cfg.Redis.Enabled() {
		printKeyValue("redis", cfg.Redis.Addr)
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}

// openBackends connects the configured storage, sessions, assets and cache.
// On error everything opened so far is closed.
func (c *CLI) openBackends(ctx context.Context, cfg config.Config) (_ *backends, err error) {
	be := &backends{opts: api.Options{
		SessionTTL:   cfg.Session.TTL,
		HistoryLimit: cfg.Editor.HistoryLimit,
		Logger:       c.Logger,
	}}
	defer func() {
		if err != nil {
			be.close(context.Background())
		}
	}()

	var mongoStore *mongo.Store
	switch cfg.Storage.Backend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mongoStore, err = mongo.Connect(connectCtx, cfg.Storage.MongoURI, cfg.Storage.Database)
		cancel()
		if err != nil {
			return nil, err
		}
		be.opts.Storage = mongoStore
	default:
		be.opts.Storage = storage.NewMemoryStore()
	}
	be.onClose(be.opts.Storage.Close)

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err = rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		be.onClose(func(context.Context) error { return rdb.Close() })
		be.opts.Publisher = api.NewRedisPublisher(rdb)
		be.opts.Cache = cache.NewRedisCache(rdb, redisPrefix+"cache:")
	} else if fc, ferr := newCache(false); ferr == nil {
		be.opts.Cache = fc
		be.onClose(func(context.Context) error { return fc.Close() })
	}

	switch cfg.Session.Backend {
	case config.BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("session backend redis requires [redis] addr")
		}
		// The client is closed once above.
		be.opts.Sessions = session.NewRedisStore(rdb, redisPrefix+"session:")
	case config.BackendFile:
		fs, ferr := session.NewFileStore(cfg.Session.Dir)
		if ferr != nil {
			return nil, ferr
		}
		be.opts.Sessions = fs
	default:
		be.opts.Sessions = session.NewMemoryStore()
	}

	backend, err := c.assetBackend(ctx, cfg.Assets, mongoStore)
	if err != nil {
		return nil, err
	}
	be.opts.Uploader = asset.NewUploader(backend,
		asset.WithMaxSize(cfg.Assets.MaxUploadSize),
		asset.WithLogger(c.Logger),
	)
	return be, nil
}

func (c *CLI) assetBackend(ctx context.Context, cfg config.AssetsConfig, mongoStore *mongo.Store) (asset.Backend, error) {
	switch cfg.Backend {
	case config.BackendS3:
		return asset.NewS3Backend(ctx, asset.S3Config{
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Bucket:          cfg.Bucket,
			ACL:             cfg.ACL,
		})
	case config.BackendGridFS:
		if mongoStore == nil {
			return nil, fmt.Errorf("asset backend gridfs requires storage backend mongo")
		}
		return asset.NewGridFSBackend(mongoStore.Database(), cfg.Bucket)
	default:
		return asset.NewFSBackend(cfg.Dir)
	}
}
