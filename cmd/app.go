package cmd

import (
	"context"
	"fmt"
	"strconv"

	"k2age/cache"
	"k2age/config"
	"k2age/core/estimate"
	"k2age/core/grid"
	"k2age/core/track"
	"k2age/db"
	"k2age/logger"
	"k2age/model"
	"k2age/repository"
	"k2age/storage"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	catalog grid.Catalog
	source  track.Source
	interp  *track.Interpolator
	rdb     *redis.Client
	cache   *cache.TrackCache
	db      *gorm.DB

	closers []func() error
}

// newApp loads configuration and builds the logger. Components are added
// on demand by the with* methods.
func newApp(g *globalFlags) (*app, error) {
	cfg := config.Load()
	if g.trackDir != "" {
		cfg.TrackDir = g.trackDir
	}
	if g.source != "" {
		if g.source != config.SourceFile && g.source != config.SourceMinio {
			return nil, fmt.Errorf("unknown track source %q", g.source)
		}
		cfg.TrackSource = g.source
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.logFile != "" {
		cfg.LogFile = g.logFile
	}

	log, err := logger.New(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, catalog: grid.NewDSEP()}
	a.closers = append(a.closers, func() error { _ = log.Sync(); return nil })
	return a, nil
}

// withInterpolator builds the track source, optional cache and interpolator.
func (a *app) withInterpolator(ctx context.Context) error {
	switch a.cfg.TrackSource {
	case config.SourceMinio:
		store, err := storage.NewModelStore(a.cfg, a.log)
		if err != nil {
			return err
		}
		a.source = store
	default:
		a.source = track.NewDirSource(a.cfg.TrackDir)
	}

	opts := []track.Option{track.WithLogger(a.log)}
	if a.cfg.CacheEnabled {
		if err := a.withCache(ctx); err != nil {
			// A cold cache only costs time.
			a.log.Warn("track cache disabled", zap.Error(err))
		} else {
			opts = append(opts, track.WithCache(a.cache))
		}
	}
	a.interp = track.NewInterpolator(a.catalog, track.NewLoader(a.source, a.log), opts...)
	a.log.Debug("interpolator ready",
		zap.String("source", a.cfg.TrackSource),
		zap.String("trackDir", a.cfg.TrackDir),
		zap.Bool("cache", a.cache != nil))
	return nil
}

func (a *app) withCache(ctx context.Context) error {
	if a.cache != nil {
		return nil
	}
	rdb, err := cache.NewRedisClient(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.rdb = rdb
	a.cache = cache.NewTrackCache(rdb, a.cfg.CacheTTL, a.log)
	a.closers = append(a.closers, rdb.Close)
	return nil
}

// withDB connects to MySQL and migrates the result tables.
func (a *app) withDB() (repository.RunRepository, error) {
	gdb, err := db.ConnectGormDB(a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.db = gdb
	a.closers = append(a.closers, func() error { return db.Close(gdb) })
	if err := db.AutoMigrateModels(gdb, model.Models()...); err != nil {
		return nil, err
	}
	return repository.NewGormRunRepository(gdb), nil
}

func (a *app) estimator() *estimate.Estimator {
	return estimate.New(a.interp, a.log)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close", zap.Error(err))
		}
	}
}

// parseFloats parses positional arguments, naming the first bad one.
func parseFloats(args, names []string) ([]float64, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("expected %d arguments (%v), got %d", len(names), names, len(args))
	}
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %q is not a number", names[i], s)
		}
		out[i] = v
	}
	return out, nil
}

// optionalFloat returns nil unless the flag was set.
func optionalFloat(changed bool, v float64) *float64 {
	if !changed {
		return nil
	}
	return &v
}
