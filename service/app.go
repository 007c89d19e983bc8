package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"postboard/app/repositories"
	"postboard/app/repositories/sqlstore"
	"postboard/app/routes"
	"postboard/app/services"
	"postboard/app/views"
	"postboard/internal/config"
	"postboard/internal/database"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// App is the configured store with the services built on it.
type App struct {
	Posts    *services.PostService
	Comments *services.CommentService

	log        logrus.FieldLogger
	ready      func(ctx context.Context) error
	collectors []prometheus.Collector
	closers    []func() error
}

// OpenApp opens the store selected by cfg.Store.
func OpenApp(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*App, error) {
	app := &App{log: log}

	var (
		posts    repositories.PostRepository
		comments repositories.CommentRepository
	)
	switch cfg.Store {
	case config.StorePostgres:
		if cfg.MigrateOnStart {
			if err := migrateUp(cfg, log); err != nil {
				return nil, err
			}
		}
		db, err := database.Open(ctx, dbConfig(cfg))
		if err != nil {
			return nil, err
		}
		store := sqlstore.New(db, log)
		posts, comments = store.Posts(), store.Comments()
		app.ready = db.PingContext
		app.collectors = append(app.collectors, collectors.NewDBStatsCollector(db.DB, "postboard"))
		app.closers = append(app.closers, db.Close)

	case config.StoreBadger:
		store, err := repositories.OpenBadger(cfg.Badger.Path, log.WithField("component", "badger"))
		if err != nil {
			return nil, err
		}
		posts, comments = store.Posts(), store.Comments()
		app.ready = func(context.Context) error {
			if store.DB().IsClosed() {
				return repositories.ErrUnavailable
			}
			return nil
		}
		app.closers = append(app.closers, store.Close)

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	app.Posts = services.NewPostService(posts, log)
	app.Comments = services.NewCommentService(comments, posts, log)
	log.WithField("store", cfg.Store).Info("store opened")
	return app, nil
}

// Handler builds the HTTP router. Metrics are registered with reg.
func (a *App) Handler(reg *prometheus.Registry) (http.Handler, error) {
	tmpl, err := views.Load()
	if err != nil {
		return nil, err
	}
	for _, c := range a.collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return routes.SetupRoutes(routes.Dependencies{
		Posts:    a.Posts,
		Comments: a.Comments,
		Views:    tmpl,
		Log:      a.log,
		Registry: reg,
		Ready:    a.ready,
	}), nil
}

// Close releases the store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func dbConfig(cfg config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}
}

func migrateUp(cfg config.Config, log logrus.FieldLogger) error {
	m, err := database.NewMigrator(cfg.DB.URL, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
