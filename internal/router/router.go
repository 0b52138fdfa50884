package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"inkwell/internal/config"
	"inkwell/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	articleHandler *handler.ArticleHandler,
	commentHandler *handler.CommentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Article creation is restricted to authenticated users. The gate
	// validates the token signature, then checks the session is still live;
	// either failure sends the visitor back to the listing, the same place
	// the old always-closed gate pointed.
	gate := []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  []byte(cfg.JWTSecret),
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + handler.SessionCookieName,
			ErrorHandler: func(c echo.Context, err error) error {
				return c.Redirect(http.StatusFound, "/articles")
			},
		}),
		sessionGate(authHandler),
	}

	e.GET("/articles", articleHandler.Index)
	e.GET("/articles/new", articleHandler.New, gate...)
	e.POST("/articles", articleHandler.Create, gate...)

	api := e.Group("/api")

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	api.GET("/users", userHandler.ListUsers)
	api.GET("/users/:id", userHandler.GetUser)
	api.POST("/users", userHandler.CreateUser)

	api.POST("/articles/:id/comments", commentHandler.Create)
	api.GET("/articles/:id/commenters", commentHandler.Commenters)
	api.PATCH("/comments/:id", commentHandler.Update)
}

// sessionGate redirects to the listing unless the request carries a live
// session.
func sessionGate(authHandler *handler.AuthHandler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !authHandler.Authenticated(c) {
				return c.Redirect(http.StatusFound, "/articles")
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
