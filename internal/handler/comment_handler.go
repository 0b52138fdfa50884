package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"inkwell/internal/errors"
	"inkwell/internal/model"
	"inkwell/internal/service"
)

// CommentHandler handles comment creation and moderation endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateCommentRequest represents a comment creation request.
type CreateCommentRequest struct {
	Body   string `json:"body"`
	Status string `json:"status"`
	UserID string `json:"user_id" validate:"required,uuid"`
}

// UpdateCommentRequest represents a moderation write. Omitted fields leave
// the stored values untouched.
type UpdateCommentRequest struct {
	Body   *string `json:"body"`
	Status *string `json:"status"`
}

// CommentResponse wraps a moderated comment with the notification outcome.
type CommentResponse struct {
	Comment  *model.Comment `json:"comment"`
	Notified bool           `json:"notified"`
}

// Create godoc
// @Summary Comment on an article
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param request body CreateCommentRequest true "Comment payload"
// @Success 201 {object} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /articles/{id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid article id",
			Code:  "INVALID_UUID",
		})
	}

	var req CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user_id",
			Code:  "INVALID_UUID",
		})
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), service.CommentInput{
		Body:      req.Body,
		Status:    model.CommentStatus(req.Status),
		ArticleID: articleID,
		UserID:    userID,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, comment)
}

// Update godoc
// @Summary Moderate a comment
// @Description Updates body and/or status. A transition into approved emails the commenter exactly once.
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param request body UpdateCommentRequest true "Fields to change"
// @Success 200 {object} CommentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /comments/{id} [patch]
func (h *CommentHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid comment id",
			Code:  "INVALID_UUID",
		})
	}

	var req UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	update := service.CommentUpdate{Body: req.Body}
	if req.Status != nil {
		status := model.CommentStatus(*req.Status)
		update.Status = &status
	}

	comment, notified, err := h.commentService.UpdateComment(c.Request().Context(), id, update)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, CommentResponse{Comment: comment, Notified: notified})
}

// Commenters godoc
// @Summary List an article's commenters
// @Description Distinct users who have commented on the article.
// @Tags comments
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {array} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Router /articles/{id}/commenters [get]
func (h *CommentHandler) Commenters(c echo.Context) error {
	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid article id",
			Code:  "INVALID_UUID",
		})
	}

	users, err := h.commentService.ListCommenters(c.Request().Context(), articleID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, users)
}
