package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inkwell/internal/cache"
	"inkwell/internal/errors"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

const (
	articleListCacheKey = "articles:all"
	articleListCacheTTL = 1 * time.Minute
)

// ArticleInput carries the only fields the create action accepts. Anything
// else in the request payload is dropped before it reaches this layer.
type ArticleInput struct {
	Title  string
	Body   string
	UserID *uuid.UUID
}

// ArticleService exposes article operations.
type ArticleService interface {
	CreateArticle(ctx context.Context, in ArticleInput) (*model.Article, error)
	GetArticle(ctx context.Context, id uuid.UUID) (*model.Article, error)
	ListArticles(ctx context.Context) ([]model.Article, error)
}

type articleService struct {
	repo  repository.ArticleRepository
	cache *cache.Client
}

// NewArticleService builds an ArticleService with repository and cache.
func NewArticleService(repo repository.ArticleRepository, cache *cache.Client) ArticleService {
	return &articleService{repo: repo, cache: cache}
}

func (s *articleService) CreateArticle(ctx context.Context, in ArticleInput) (*model.Article, error) {
	article := &model.Article{
		Title:  in.Title,
		Body:   in.Body,
		UserID: in.UserID,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, articleListCacheKey)
	return article, nil
}

func (s *articleService) GetArticle(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrArticleNotFound
		}
		return nil, err
	}
	return article, nil
}

func (s *articleService) ListArticles(ctx context.Context) ([]model.Article, error) {
	if data, _ := s.cache.Get(ctx, articleListCacheKey); data != nil {
		var cached []model.Article
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	articles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(articles); err == nil {
		_ = s.cache.Set(ctx, articleListCacheKey, payload, articleListCacheTTL)
	}
	return articles, nil
}
