package app

import (
	"cactus_village_backend/internal/config"
	"cactus_village_backend/internal/controller"
	"cactus_village_backend/internal/repository"
	"cactus_village_backend/internal/service"
	"cactus_village_backend/pkg/database"
	"cactus_village_backend/pkg/email"
	"cactus_village_backend/pkg/logger"
	"cactus_village_backend/pkg/monitoring"
	"cactus_village_backend/pkg/security"
	"cactus_village_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Hot
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

// ReloadConfig publishes a new configuration snapshot to live readers.
// Pointers handed out by earlier Loads stay valid and are never mutated.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config.Store(cfg)
}

type repositories struct {
	member       *repository.MemberRepository
	challenge    *repository.ChallengeRepository
	history      *repository.HistoryRepository
	refreshToken *repository.RefreshTokenRepository
}

type services struct {
	member    *service.MemberService
	challenge *service.ChallengeService
}

type controllers struct {
	auth      *controller.AuthController
	challenge *controller.ChallengeController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		member:       repository.NewMemberRepository(db),
		challenge:    repository.NewChallengeRepository(db),
		history:      repository.NewHistoryRepository(db),
		refreshToken: repository.NewRefreshTokenRepository(rdb, cfg.JWT.RefreshExpire),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	mailer := email.NewSender(cfg.SMTP)

	return &services{
		member: service.NewMemberService(
			repos.member,
			repos.challenge,
			repos.history,
			repos.refreshToken,
			mailer,
			a.Config,
		),
		challenge: service.NewChallengeService(
			repos.challenge,
			repos.history,
			repos.member,
			cfg.Challenge.MessageFile,
		),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.member, a.Config),
		challenge: controller.NewChallengeController(s.challenge),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: config.NewHot(cfg),
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("cactus-village", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	return app
}

func (a *App) Run() {
	port := a.Config.Load().Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
