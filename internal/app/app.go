// Package app assembles the planner from configuration: store backend and
// feed, repositories, services and the tab hub.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/internal/store"
	"github.com/noah-isme/study-planner-api/internal/tab"
	"github.com/noah-isme/study-planner-api/pkg/cache"
	"github.com/noah-isme/study-planner-api/pkg/config"
	"github.com/noah-isme/study-planner-api/pkg/database"
	"github.com/noah-isme/study-planner-api/pkg/storage"
)

const memoryFeedBuffer = 64

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// App holds every long-lived component.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Store   *store.Store
	Repo    *repository.PlannerRepository
	Clock   service.Clock

	Tasks         *service.TaskService
	Exams         *service.ExamService
	ImportantDays *service.ImportantDayService
	Auth          *service.AuthService
	Settings      *service.SettingsService
	Data          *service.DataService
	Dashboard     *service.DashboardService
	Timetable     *service.TimetableService
	Notifications *service.NotificationService
	Hub           *tab.Hub

	Checks map[string]Check

	notifier service.Notifier
	redis    *redis.Client
	db       *sqlx.DB
}

// Option customises New.
type Option func(*App)

// WithNotifier delivers reminders through n instead of the open tabs.
func WithNotifier(n service.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// New connects the configured backends and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: service.NewMetricsService(),
		Clock:   service.Clock{Now: time.Now, Location: cfg.Location()},
		Checks:  map[string]Check{},
	}
	for _, opt := range opts {
		opt(a)
	}

	backend, feed, err := a.connect(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store.New(backend, feed, logger.Named("store"), store.WithObserver(a.Metrics))
	a.Repo = repository.NewPlannerRepository(a.Store, logger.Named("repository"), a.Metrics)

	if err := a.buildServices(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) (store.Backend, store.Feed, error) {
	sc := a.Config.Store
	if sc.Backend == config.BackendRedis || sc.Feed == config.BackendRedis {
		client, err := cache.NewRedis(ctx, a.Config.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.redis = client
		a.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	var backend store.Backend
	switch sc.Backend {
	case "", config.BackendMemory:
		backend = store.NewMemoryBackend()
	case config.BackendRedis:
		backend = store.NewRedisBackend(a.redis, sc.KeyPrefix)
	case config.BackendPostgres:
		db, err := database.NewPostgres(a.Config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.db = db
		if err := database.EnsureSchema(ctx, db); err != nil {
			return nil, nil, err
		}
		backend = store.NewPostgresBackend(db)
		a.Checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}

	var feed store.Feed
	switch sc.Feed {
	case "", config.BackendMemory:
		feed = store.NewMemoryFeed(memoryFeedBuffer, a.Logger.Named("feed"))
	case config.BackendRedis:
		feed = store.NewRedisFeed(a.redis, sc.KeyPrefix, a.Logger.Named("feed"))
	default:
		return nil, nil, fmt.Errorf("unknown store feed %q", sc.Feed)
	}
	a.Logger.Info("store ready", zap.String("backend", sc.Backend), zap.String("feed", sc.Feed))
	return backend, feed, nil
}

func (a *App) buildServices() error {
	cfg := a.Config
	repo := a.Repo
	validate := service.NewValidator()
	ids := models.NewIDGenerator(a.Clock.Now)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	a.Tasks = service.NewTaskService(repo.Tasks, ids, validate, a.Clock, a.Logger.Named("tasks"))
	a.Exams = service.NewExamService(repo.Exams, ids, validate, a.Clock, a.Logger.Named("exams"))
	a.ImportantDays = service.NewImportantDayService(repo.ImportantDays, repo.Tasks, repo.Exams, a.Logger.Named("calendar"))
	a.Auth = service.NewAuthService(repo.Users, repo.CurrentUser, []service.Clearable{repo.Tasks, repo.Exams, repo.Settings},
		validate, a.Clock, service.AuthConfig{UniqueEmail: cfg.Accounts.UniqueEmail}, a.Logger.Named("auth"))
	a.Settings = service.NewSettingsService(repo.Settings)
	a.Data = service.NewDataService(repo.Tasks, repo.Exams, repo.Settings, []service.Clearable{repo.Tasks, repo.Exams, repo.Settings},
		files, signer, a.Clock, service.DataConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL}, a.Logger.Named("data"))
	a.Dashboard = service.NewDashboardService(repo.Tasks, repo.Exams, a.Clock)
	a.Timetable = service.NewTimetableService(repo.Tasks, repo.Exams, a.Clock)

	a.Hub = tab.NewHub(a.Store, a.Metrics, tab.Config{BufferSize: cfg.Tabs.BufferSize, IdleTimeout: cfg.Tabs.IdleTimeout}, a.Logger.Named("tabs"))

	var notifier service.Notifier = a.Hub
	if a.notifier != nil {
		notifier = a.notifier
	}
	a.Notifications = service.NewNotificationService(repo.Tasks, repo.Settings, repo.Notifications, notifier, a.Metrics, a.Clock,
		service.NotificationConfig{
			Interval: cfg.Notifications.Interval,
			LogCap:   cfg.Notifications.LogCap,
			Workers:  cfg.Notifications.Workers,
			Retries:  cfg.Notifications.Retries,
		}, a.Logger.Named("notifications"))

	a.Hub.Mount(tab.DefaultViews(tab.Sources{
		Tasks:         a.Tasks,
		Dashboard:     a.Dashboard,
		Calendar:      a.ImportantDays,
		Timetable:     a.Timetable,
		Notifications: a.Notifications,
		Now:           func() time.Time { return time.Now().In(a.Clock.Location) },
	})...)
	return nil
}

// Close releases backend connections and closes every tab.
func (a *App) Close() {
	if a.Hub != nil {
		a.Hub.Shutdown()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
