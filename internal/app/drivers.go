package app

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"

	"github.com/robbertpopa/itec-web-2025/internal/config"
	fb "github.com/robbertpopa/itec-web-2025/internal/firebase"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/service/auth"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
	"github.com/robbertpopa/itec-web-2025/internal/storage/blob"
	"github.com/robbertpopa/itec-web-2025/internal/storage/elastic"
	"github.com/robbertpopa/itec-web-2025/internal/storage/gcs"
	"github.com/robbertpopa/itec-web-2025/internal/storage/memory"
	"github.com/robbertpopa/itec-web-2025/internal/storage/minio_storage"
	"github.com/robbertpopa/itec-web-2025/internal/storage/postgres"
	"github.com/robbertpopa/itec-web-2025/internal/storage/repository"
	"github.com/robbertpopa/itec-web-2025/internal/storage/rtdb"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

// courseIndex is the full-text search side of the course catalog.
type courseIndex interface {
	Index(ctx context.Context, course models.Course) error
	Search(ctx context.Context, query string, from, size int) ([]string, error)
	Count(ctx context.Context, query string) (int, error)
}

// Drivers holds the backends selected by the configuration. Index is nil
// when no Elasticsearch hosts are configured.
type Drivers struct {
	Store storage.Store
	Blobs blob.Store
	Index courseIndex

	fbApp   *firebase.App
	closers []func()
}

func (d *Drivers) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func (d *Drivers) firebaseApp(ctx context.Context, cfg config.Firebase) (*firebase.App, error) {
	if d.fbApp != nil {
		return d.fbApp, nil
	}
	a, err := fb.NewApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.fbApp = a
	return a, nil
}

// OpenDrivers connects every backend named by cfg. On error the drivers
// opened so far are closed.
func OpenDrivers(ctx context.Context, log logger.Log, cfg *config.Config) (_ *Drivers, err error) {
	d := &Drivers{}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	if d.Store, err = d.openStore(ctx, log, cfg); err != nil {
		return nil, err
	}
	if d.Blobs, err = d.openBlobs(ctx, log, cfg); err != nil {
		return nil, err
	}
	if len(cfg.ES.Hosts) > 0 {
		client, err := elastic.NewElasticClient(cfg.ES.Username, cfg.ES.Password, cfg.ES.Hosts)
		if err != nil {
			return nil, err
		}
		repo := elastic.NewCourseSearchRepository(client, cfg.ES.Index)
		if err := repo.CreateIndexIfNotExist(ctx); err != nil {
			return nil, err
		}
		d.Index = repo
		log.Info("full-text search enabled", "index", cfg.ES.Index)
	}
	return d, nil
}

func (d *Drivers) openStore(ctx context.Context, log logger.Log, cfg *config.Config) (storage.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverFirebase:
		a, err := d.firebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		client, err := a.Database(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase database client: %w", err)
		}
		log.Info("store: firebase realtime database", "url", cfg.Firebase.DatabaseURL)
		return rtdb.New(client), nil

	case config.DriverPostgres:
		pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, pg.Close)
		nodes := postgres.NewNodesPostgres(pg.Pool)
		if err := nodes.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate nodes table: %w", err)
		}
		log.Info("store: postgres", "host", cfg.Postgres.Host, "db", cfg.Postgres.DBName)
		return nodes, nil
	}

	log.Warn("store: in-memory, data is lost on restart")
	return memory.New(), nil
}

func (d *Drivers) openBlobs(ctx context.Context, log logger.Log, cfg *config.Config) (blob.Store, error) {
	var store blob.Store
	switch cfg.Blob.Driver {
	case config.DriverFirebase:
		a, err := d.firebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		client, err := a.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase storage client: %w", err)
		}
		bucket, err := client.DefaultBucket()
		if err != nil {
			return nil, fmt.Errorf("firebase storage bucket: %w", err)
		}
		store = gcs.NewBucketStorage(bucket, cfg.Blob.URLTTL)

	case config.DriverMinio:
		m, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket, cfg.Blob.URLTTL)
		if err != nil {
			return nil, err
		}
		store = m

	default:
		log.Warn("blob: in-memory, uploads are lost on restart")
		store = blob.NewMemory()
	}

	if cfg.Redis.Addr == "" {
		return store, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	d.closers = append(d.closers, func() { _ = rdb.Close() })
	log.Info("blob: caching download urls in redis", "addr", cfg.Redis.Addr, "ttl", cfg.Blob.CacheTTL)
	return blob.NewURLCache(log, store, rdb, cfg.Blob.CacheTTL), nil
}

// AuthProvider returns the configured identity provider.
func (d *Drivers) AuthProvider(ctx context.Context, log logger.Log, cfg *config.Config) (auth.Provider, error) {
	if cfg.Auth.Driver == config.DriverFirebase {
		a, err := d.firebaseApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		client, err := a.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase auth client: %w", err)
		}
		return auth.NewFirebaseAuth(log, client, cfg.Firebase.APIKey), nil
	}

	manager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	return auth.NewAuthService(log, manager, repository.NewAccountRepo(d.Store), repository.NewTokensRepo(d.Store)), nil
}
