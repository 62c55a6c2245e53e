// Package app holds the startup sequence shared by the core and auth binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/config"
	"github.com/losalerces/backend/internal/db"
	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/model"
	"github.com/losalerces/backend/internal/observability"
)

const shutdownTimeout = 10 * time.Second

// Deps is what every binary needs before it registers its services.
type Deps struct {
	Config   *config.Config
	Log      *logger.Logger
	DB       *gorm.DB
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
}

// Bootstrap loads configuration, opens the database and migrates the schema.
func Bootstrap(profile, component string) (*Deps, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var file *logger.FileOptions
	if cfg.Log.File.Enabled {
		file = &logger.FileOptions{
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		}
	}
	log, err := logger.NewWithFile(cfg.Log.Mode, file)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.With("app", cfg.App.Name, "component", component, "env", cfg.App.Environment)

	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	reg := prometheus.NewRegistry()
	return &Deps{
		Config:   cfg,
		Log:      log,
		DB:       gormDB,
		Registry: reg,
		Metrics:  observability.NewMetrics(cfg.App.Name+"_"+component, reg),
	}, nil
}

// Close releases the database pool and flushes the logger.
func (d *Deps) Close() {
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	d.Log.Sync()
}

// Serve runs the gRPC server on addr, and the ops HTTP server when metrics
// are enabled, until ctx is cancelled or either server fails.
func (d *Deps) Serve(ctx context.Context, srv *grpc.Server, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Log.Info("grpc server listening", "addr", addr)
		return srv.Serve(lis)
	})

	var ops *http.Server
	if d.Config.Metrics.Enabled {
		ops = &http.Server{
			Addr:              d.Config.Metrics.Addr,
			Handler:           observability.NewOpsHandler(d.Registry, d.databaseCheck()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			d.Log.Info("ops server listening", "addr", ops.Addr)
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		d.Log.Info("shutting down")

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(shutdownTimeout):
			srv.Stop()
		}

		if ops != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return ops.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

func (d *Deps) databaseCheck() observability.ReadinessCheck {
	return observability.ReadinessCheck{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}
