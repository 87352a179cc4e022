package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/plataform/plataform-api/api/swagger"
	"github.com/plataform/plataform-api/internal/handler"
	"github.com/plataform/plataform-api/internal/middleware"
	"github.com/plataform/plataform-api/internal/models"
	"github.com/plataform/plataform-api/internal/repository"
	"github.com/plataform/plataform-api/internal/service"
	"github.com/plataform/plataform-api/pkg/cache"
	"github.com/plataform/plataform-api/pkg/config"
	"github.com/plataform/plataform-api/pkg/database"
	"github.com/plataform/plataform-api/pkg/export"
	"github.com/plataform/plataform-api/pkg/logger"
	corsmiddleware "github.com/plataform/plataform-api/pkg/middleware/cors"
	reqidmiddleware "github.com/plataform/plataform-api/pkg/middleware/requestid"
	"github.com/plataform/plataform-api/pkg/storage"
)

// @title Plataform API
// @version 1.0.0
// @description Course progression and aura ranking engine
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The leaderboard cache is an optimization; the API serves
		// without it.
		logr.Sugar().Warnw("redis unavailable, leaderboard caching disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "plataform-api",
	})
	courseSvc := service.NewCourseService(courseRepo, userRepo, enrollmentRepo, store, signer, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, courseSvc, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, enrollmentRepo, validate, logr)
	rankingSvc := service.NewRankingService(userRepo, cacheRepo, cfg.Ranking.CacheTTL, metricsSvc, logr)
	userSvc := service.NewUserService(userRepo, rankingSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	rankingHandler := handler.NewRankingHandler(rankingSvc, export.NewCSVExporter(), export.NewPDFExporter())
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/courses", courseHandler.Create)
	}

	teacher := api.Group("/teacher", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher))
	{
		teacher.GET("/courses", courseHandler.ListForTeacher)
		teacher.GET("/courses/:id", courseHandler.DetailForTeacher)
		teacher.POST("/courses/:id/blocks/:week/resources", courseHandler.AddResource)
		teacher.POST("/courses/:id/students/:studentID/progress", enrollmentHandler.AdvanceProgress)
	}

	student := api.Group("/student", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/courses", enrollmentHandler.ListForStudent)
		student.GET("/courses/:id", enrollmentHandler.DetailForStudent)
	}

	grades := api.Group("/grades", middleware.JWT(authSvc))
	{
		grades.GET("", gradeHandler.StudentGrades)
		grades.POST("", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), gradeHandler.SetGrade)
	}

	ranking := api.Group("/ranking", middleware.JWT(authSvc))
	{
		ranking.GET("", rankingHandler.Leaderboard)
		ranking.GET("/export", middleware.RequireRoles(models.RoleAdmin), rankingHandler.Export)
	}

	api.GET("/users/:id/profile", middleware.OptionalJWT(authSvc), userHandler.Profile)
	api.GET("/resources/:id/download", courseHandler.DownloadResource)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
