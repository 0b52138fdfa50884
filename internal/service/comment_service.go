package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"inkwell/internal/errors"
	"inkwell/internal/mailer"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

// BodyPolicy decides whether a comment must carry a non-empty body. The
// original system declared this guard without documenting it; it is modeled
// here as an explicit, swappable predicate.
type BodyPolicy func(c *model.Comment) bool

// RequireBodyAlways is the default policy: every comment needs a body.
func RequireBodyAlways(*model.Comment) bool { return true }

// CommentInput carries the fields accepted when creating a comment.
type CommentInput struct {
	Body      string
	Status    model.CommentStatus
	ArticleID uuid.UUID
	UserID    uuid.UUID
}

// CommentUpdate carries the fields a moderation write may change. Nil
// pointers leave the stored value untouched.
type CommentUpdate struct {
	Body   *string
	Status *model.CommentStatus
}

// CommentService exposes comment creation and the moderation workflow.
type CommentService interface {
	CreateComment(ctx context.Context, in CommentInput) (*model.Comment, error)
	GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.Comment, error)
	ListCommenters(ctx context.Context, articleID uuid.UUID) ([]model.User, error)
	// UpdateComment applies a moderation write. The returned flag reports
	// whether the approval notification was delivered as part of the write.
	UpdateComment(ctx context.Context, id uuid.UUID, in CommentUpdate) (*model.Comment, bool, error)
}

type commentService struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	users    repository.UserRepository
	mailer   mailer.Mailer
	policy   BodyPolicy
	log      zerolog.Logger
}

// NewCommentService builds a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	articles repository.ArticleRepository,
	users repository.UserRepository,
	mail mailer.Mailer,
	policy BodyPolicy,
	log zerolog.Logger,
) CommentService {
	if policy == nil {
		policy = RequireBodyAlways
	}
	return &commentService{
		comments: comments,
		articles: articles,
		users:    users,
		mailer:   mail,
		policy:   policy,
		log:      log.With().Str("component", "comments").Logger(),
	}
}

func (s *commentService) CreateComment(ctx context.Context, in CommentInput) (*model.Comment, error) {
	comment := &model.Comment{
		Body:      in.Body,
		Status:    in.Status,
		ArticleID: in.ArticleID,
		UserID:    in.UserID,
	}
	if comment.Status == "" {
		comment.Status = model.CommentStatusPending
	}

	if !comment.Status.Valid() {
		return nil, errors.NewValidationError("status", "is not included in the list")
	}
	if s.policy(comment) && comment.Body == "" {
		return nil, errors.NewValidationError("body", "can't be blank")
	}

	if _, err := s.articles.FindByID(ctx, in.ArticleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrArticleNotFound
		}
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *commentService) GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *commentService) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.Comment, error) {
	return s.comments.ListByArticle(ctx, articleID)
}

func (s *commentService) ListCommenters(ctx context.Context, articleID uuid.UUID) ([]model.User, error) {
	return s.comments.ListCommenters(ctx, articleID)
}

// UpdateComment validates and persists a moderation write. The approval
// notification fires only when the stored status actually changes and the
// new value is approved; a write that leaves an approved comment approved
// sends nothing. The send happens after the write and its failure is
// logged, never rolled back into the status change.
func (s *commentService) UpdateComment(ctx context.Context, id uuid.UUID, in CommentUpdate) (*model.Comment, bool, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, errors.ErrCommentNotFound
		}
		return nil, false, err
	}

	if in.Status != nil && !in.Status.Valid() {
		return nil, false, errors.NewValidationError("status", "is not included in the list")
	}

	prevStatus := comment.Status
	if in.Body != nil {
		comment.Body = *in.Body
	}
	if in.Status != nil {
		comment.Status = *in.Status
	}

	if s.policy(comment) && comment.Body == "" {
		return nil, false, errors.NewValidationError("body", "can't be blank")
	}

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, false, fmt.Errorf("update comment: %w", err)
	}

	if comment.Status != prevStatus && comment.Status == model.CommentStatusApproved {
		return comment, s.notifyApproval(ctx, comment), nil
	}
	return comment, false, nil
}

func (s *commentService) notifyApproval(ctx context.Context, comment *model.Comment) bool {
	commenter, err := s.users.FindByID(ctx, comment.UserID)
	if err != nil {
		s.log.Error().Err(err).Str("comment_id", comment.ID.String()).Msg("approval notice: commenter lookup failed")
		return false
	}
	article, err := s.articles.FindByID(ctx, comment.ArticleID)
	if err != nil {
		s.log.Error().Err(err).Str("comment_id", comment.ID.String()).Msg("approval notice: article lookup failed")
		return false
	}
	if err := s.mailer.SendApprovalNotice(ctx, commenter, comment, article); err != nil {
		s.log.Error().Err(err).Str("comment_id", comment.ID.String()).Msg("approval notice: send failed")
		return false
	}
	return true
}
