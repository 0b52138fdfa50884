package main

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	_ "inkwell/docs" // swagger docs

	"inkwell/internal/auth"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/handler"
	"inkwell/internal/mailer"
	"inkwell/internal/model"
	"inkwell/internal/repository"
	"inkwell/internal/router"
	"inkwell/internal/service"
	"inkwell/internal/web"
)

// @title Inkwell Blog API
// @version 1.0
// @description Blog service with articles, comments, and a comment moderation workflow that emails commenters on approval.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("template init")
	}
	e.Renderer = renderer

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Article{},
		&model.Comment{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	articleRepo := repository.NewArticleRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	sessionStore := auth.NewSessionStore(cacheClient)

	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, log)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, sessionStore)
	userService := service.NewUserService(userRepo, cacheClient)
	articleService := service.NewArticleService(articleRepo, cacheClient)
	commentService := service.NewCommentService(commentRepo, articleRepo, userRepo, mail, service.RequireBodyAlways, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	articleHandler := handler.NewArticleHandler(articleService, userService)
	commentHandler := handler.NewCommentHandler(commentService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		articleHandler,
		commentHandler,
	)

	if cfg.SwaggerHost != "" {
		log.Info().Str("host", cfg.SwaggerHost).Msg("swagger host override")
	}
	log.Info().Str("port", cfg.ServerPort).Msg("starting server")

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server start")
	}
}
