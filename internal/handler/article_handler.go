package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"inkwell/internal/errors"
	"inkwell/internal/service"
)

// ArticleHandler handles the article listing and creation surface.
type ArticleHandler struct {
	articleService service.ArticleService
	userService    service.UserService
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(articleService service.ArticleService, userService service.UserService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService, userService: userService}
}

// CreateArticleRequest represents the create payload. Only these three
// fields are bound; any other submitted field is dropped, not an error.
type CreateArticleRequest struct {
	Title  string `json:"title" form:"article[title]"`
	Body   string `json:"body" form:"article[body]"`
	UserID string `json:"user_id" form:"article[user_id]"`
}

type newArticlePage struct {
	Title  string
	Body   string
	Users  []service.UserOption
	Errors []string
}

// Index godoc
// @Summary List all articles
// @Description Returns every article as a rendered page, or as JSON when requested via Accept header or ?format=json.
// @Tags articles
// @Produce json,html
// @Success 200 {array} model.Article
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles [get]
func (h *ArticleHandler) Index(c echo.Context) error {
	articles, err := h.articleService.ListArticles(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, articles)
	}
	return c.Render(http.StatusOK, "articles_index", map[string]interface{}{
		"Articles": articles,
	})
}

// New godoc
// @Summary New article form
// @Description Renders the new-article form with an owner select of (email, id) pairs. Requires a live session.
// @Tags articles
// @Produce html
// @Success 200 {string} string "rendered form"
// @Failure 302 {string} string "redirected to /articles when unauthenticated"
// @Router /articles/new [get]
func (h *ArticleHandler) New(c echo.Context) error {
	users, err := h.userService.ListUserOptions(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.Render(http.StatusOK, "articles_new", newArticlePage{Users: users})
}

// Create godoc
// @Summary Create an article
// @Description Accepts article[title], article[body], article[user_id]; extra fields are ignored. Redirects to the listing on success. Requires a live session.
// @Tags articles
// @Accept json,x-www-form-urlencoded
// @Param title formData string false "title"
// @Param body formData string false "body"
// @Param user_id formData string false "owning user id"
// @Success 303 {string} string "redirected to /articles"
// @Failure 422 {string} string "form re-rendered with errors"
// @Router /articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	var req CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return h.renderNewWithErrors(c, req, []string{"invalid request body"})
	}

	var userID *uuid.UUID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			return h.renderNewWithErrors(c, req, []string{"user_id is invalid"})
		}
		userID = &parsed
	}

	_, err := h.articleService.CreateArticle(c.Request().Context(), service.ArticleInput{
		Title:  req.Title,
		Body:   req.Body,
		UserID: userID,
	})
	if err != nil {
		return h.renderNewWithErrors(c, req, []string{"could not save article"})
	}

	return c.Redirect(http.StatusSeeOther, "/articles")
}

// renderNewWithErrors re-displays the form without persisting anything.
func (h *ArticleHandler) renderNewWithErrors(c echo.Context, req CreateArticleRequest, errs []string) error {
	users, err := h.userService.ListUserOptions(c.Request().Context())
	if err != nil {
		users = nil
	}
	return c.Render(http.StatusUnprocessableEntity, "articles_new", newArticlePage{
		Title:  req.Title,
		Body:   req.Body,
		Users:  users,
		Errors: errs,
	})
}

func wantsJSON(c echo.Context) bool {
	if c.QueryParam("format") == "json" {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
