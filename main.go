package main

import (
	"context"
	"fmt"
	"os"

	"fabtrack/config"
	"fabtrack/database"
	"fabtrack/internal/cache"
	"fabtrack/internal/filestore"
	"fabtrack/internal/logging"
	"fabtrack/internal/service"
	"fabtrack/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "fabtrack",
		Short:         "Fabrication parts tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newIngestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	services *service.Services
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogPretty)

	a := &app{cfg: cfg}

	db, err := database.Open(ctx, cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	files, err := openFileStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var trees cache.TreeCache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(cfg.RedisURL, cfg.TreeCacheTTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis not reachable, project tree cache disabled")
			rc.Close()
		} else {
			trees = rc
			a.closers = append(a.closers, func() { rc.Close() })
		}
	}

	a.services = service.NewServices(store.New(db), files, trees, cfg.IngestConcurrency)

	ws, err := a.services.Workspaces.EnsureDefault(ctx, cfg.DefaultWorkspace)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info().Str("workspace_id", ws.ID).Str("name", ws.Name).Msg("default workspace ready")
	return a, nil
}

func openFileStore(ctx context.Context, cfg *config.Config) (filestore.FileStore, error) {
	switch cfg.StorageDriver {
	case config.StorageMinIO:
		return filestore.NewMinIO(ctx, filestore.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
	case config.StorageLocal, "":
		return filestore.NewLocal(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
