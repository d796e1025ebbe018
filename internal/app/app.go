package app

import (
	"context"
	"faang_prep_backend/internal/config"
	"faang_prep_backend/internal/controller"
	"faang_prep_backend/internal/repository"
	"faang_prep_backend/internal/service"
	"faang_prep_backend/pkg/configwatcher"
	"faang_prep_backend/pkg/database"
	"faang_prep_backend/pkg/logger"
	"faang_prep_backend/pkg/monitoring"
	"faang_prep_backend/pkg/security"
	"faang_prep_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	catalog  *repository.CatalogRepository
	progress *repository.ProgressRepository
	activity *repository.ActivityRepository
	badge    *repository.BadgeRepository
	cache    *repository.StatsCache
}

type services struct {
	auth         *service.AuthService
	progress     *service.ProgressService
	stats        *service.StatsService
	gamification *service.GamificationService
}

type controllers struct {
	auth     *controller.AuthController
	catalog  *controller.CatalogController
	progress *controller.ProgressController
	stats    *controller.StatsController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		catalog:  repository.NewCatalogRepository(db),
		progress: repository.NewProgressRepository(db),
		activity: repository.NewActivityRepository(db),
		badge:    repository.NewBadgeRepository(db),
		cache:    repository.NewStatsCache(rdb, time.Duration(cfg.Redis.StatsTTLSeconds)*time.Second),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}
	rules := service.NewRules(cfg.Gamification)

	s.auth = service.NewAuthService(repos.user, cfg)
	s.progress = service.NewProgressService(repos.catalog, repos.progress, rules)
	s.stats = service.NewStatsService(repos.user, repos.badge, repos.activity, s.progress, repos.cache, rules)
	s.gamification = service.NewGamificationService(
		db,
		repos.user,
		repos.catalog,
		repos.progress,
		repos.activity,
		repos.badge,
		s.stats,
		repos.cache,
		rules,
	)
	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		catalog:  controller.NewCatalogController(s.progress),
		progress: controller.NewProgressController(s.gamification),
		stats:    controller.NewStatsController(s.stats),
		health:   controller.NewHealthController(db, repos.cache),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiterFromConfig(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 使用已建立的连接组装路由，rdb 可以为 nil
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services, repos, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.Reload(newCfg)
		logger.Log.Info("Config reloaded", zap.String("mode", newCfg.Server.Mode))
	})

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)
	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("faang-prep", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

func (a *App) watchConfig(ctx context.Context) {
	if !a.Config.Server.WatchConfig || a.Config.Path == "" {
		return
	}
	go func() {
		err := configwatcher.Watch(ctx, a.Config.Path, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	a.watchConfig(watchCtx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
