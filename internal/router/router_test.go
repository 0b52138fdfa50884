package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/handler"
	"inkwell/internal/model"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/web"
)

// memorySessionStore is an in-memory stand-in for the redis session store.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]string)}
}

func (s *memorySessionStore) StoreSession(ctx context.Context, tokenID, userID, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenID] = userID
	return nil
}

func (s *memorySessionStore) GetSession(ctx context.Context, tokenID string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[tokenID]
	if !ok {
		return "", "", fmt.Errorf("session not found")
	}
	return userID, "", nil
}

func (s *memorySessionStore) DeleteSession(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenID)
	return nil
}

// recordingMailer captures approval notices instead of dialing SMTP.
type recordingMailer struct {
	mu   sync.Mutex
	sent []string // recipient emails
}

func (m *recordingMailer) SendApprovalNotice(ctx context.Context, commenter *model.User, comment *model.Comment, article *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, commenter.Email)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testApp struct {
	e      *echo.Echo
	db     *gorm.DB
	auth   service.AuthService
	users  service.UserService
	mailer *recordingMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Article{}, &model.Comment{}))

	cfg := &config.Config{JWTSecret: "test-secret"}

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	sessions := newMemorySessionStore()
	mail := &recordingMailer{}

	authService := service.NewAuthService(userRepo, jwtService, sessions)
	userService := service.NewUserService(userRepo, nil)
	articleService := service.NewArticleService(articleRepo, nil)
	commentService := service.NewCommentService(commentRepo, articleRepo, userRepo, mail, service.RequireBodyAlways, zerolog.Nop())

	e := echo.New()
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	e.Renderer = renderer

	Register(
		e,
		cfg,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewArticleHandler(articleService, userService),
		handler.NewCommentHandler(commentService),
	)

	return &testApp{e: e, db: db, auth: authService, users: userService, mailer: mail}
}

func (a *testApp) createUser(t *testing.T, email, firstName, password string) *model.User {
	t.Helper()
	user, err := a.users.CreateUser(context.Background(), email, firstName, "Test", password)
	require.NoError(t, err)
	return user
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	token, _, err := a.auth.Login(context.Background(), email, password)
	require.NoError(t, err)
	return token
}

func (a *testApp) request(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestArticleListing(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.db.Create(&model.Article{Title: "Hello", Body: "World"}).Error)

	t.Run("html page", func(t *testing.T) {
		rec := app.request(httptest.NewRequest(http.MethodGet, "/articles", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h2>Hello</h2>")
	})

	t.Run("json serialization carries the pretty date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/articles", nil)
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
		rec := app.request(req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var listing []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
		require.Len(t, listing, 1)
		assert.Equal(t, "Hello", listing[0]["title"])
		assert.Equal(t, time.Now().Format("01/02/2006"), listing[0]["pretty_created_at"])
	})

	t.Run("format query param", func(t *testing.T) {
		rec := app.request(httptest.NewRequest(http.MethodGet, "/articles?format=json", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	})
}

func TestArticleCreationGate(t *testing.T) {
	app := newTestApp(t)

	t.Run("unauthenticated form request is sent back to the listing", func(t *testing.T) {
		rec := app.request(httptest.NewRequest(http.MethodGet, "/articles/new", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/articles", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("unauthenticated create persists nothing", func(t *testing.T) {
		form := url.Values{}
		form.Set("article[title]", "Sneaky")
		req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := app.request(req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/articles", rec.Header().Get(echo.HeaderLocation))

		var count int64
		require.NoError(t, app.db.Model(&model.Article{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("revoked session is treated as logged out", func(t *testing.T) {
		app.createUser(t, "anybody@fear.com", "Random", "password")
		token := app.login(t, "anybody@fear.com", "password")
		require.NoError(t, app.auth.Logout(context.Background(), token))

		req := httptest.NewRequest(http.MethodGet, "/articles/new", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := app.request(req)
		assert.Equal(t, http.StatusFound, rec.Code)
	})
}

func TestArticleCreation(t *testing.T) {
	app := newTestApp(t)
	owner := app.createUser(t, "anybody@fear.com", "Random", "password")
	token := app.login(t, "anybody@fear.com", "password")

	t.Run("form shows owner options", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/articles/new", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := app.request(req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "anybody@fear.com")
		assert.Contains(t, rec.Body.String(), owner.ID.String())
	})

	t.Run("create redirects and drops unknown fields", func(t *testing.T) {
		form := url.Values{}
		form.Set("article[title]", "Hello")
		form.Set("article[body]", "World")
		form.Set("article[user_id]", owner.ID.String())
		form.Set("article[admin]", "true")
		form.Set("role", "superuser")
		req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := app.request(req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/articles", rec.Header().Get(echo.HeaderLocation))

		var articles []model.Article
		require.NoError(t, app.db.Find(&articles).Error)
		require.Len(t, articles, 1)
		assert.Equal(t, "Hello", articles[0].Title)
		assert.Equal(t, "World", articles[0].Body)
		assert.Equal(t, owner.ID, *articles[0].UserID)
	})

	t.Run("bad owner id re-renders the form without persisting", func(t *testing.T) {
		form := url.Values{}
		form.Set("article[title]", "Broken")
		form.Set("article[user_id]", "not-a-uuid")
		req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := app.request(req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "user_id is invalid")

		var count int64
		require.NoError(t, app.db.Model(&model.Article{}).Where("title = ?", "Broken").Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestCommentModerationFlow(t *testing.T) {
	app := newTestApp(t)
	commenter := app.createUser(t, "dory@tidydogs.us", "Dory", "password")

	article := &model.Article{Title: "This is a post about how cute dogs are", Body: "spoiler: really darn cute"}
	require.NoError(t, app.db.Create(article).Error)

	// leave a comment
	rec := app.request(jsonRequest(http.MethodPost, "/api/articles/"+article.ID.String()+"/comments", map[string]string{
		"body":    "nice post",
		"status":  "pending",
		"user_id": commenter.ID.String(),
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.CommentStatusPending, created.Status)

	t.Run("approval emails the commenter once", func(t *testing.T) {
		rec := app.request(jsonRequest(http.MethodPatch, "/api/comments/"+created.ID.String(), map[string]string{
			"status": "approved",
		}))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Notified bool `json:"notified"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Notified)
		assert.Equal(t, 1, app.mailer.count())
		assert.Equal(t, "dory@tidydogs.us", app.mailer.sent[0])
	})

	t.Run("re-approving sends nothing", func(t *testing.T) {
		rec := app.request(jsonRequest(http.MethodPatch, "/api/comments/"+created.ID.String(), map[string]string{
			"status": "approved",
		}))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Notified bool `json:"notified"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Notified)
		assert.Equal(t, 1, app.mailer.count())
	})

	t.Run("status outside the enum is rejected and the record unchanged", func(t *testing.T) {
		rec := app.request(jsonRequest(http.MethodPatch, "/api/comments/"+created.ID.String(), map[string]string{
			"status": "archived",
		}))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var stored model.Comment
		require.NoError(t, app.db.First(&stored, "id = ?", created.ID).Error)
		assert.Equal(t, model.CommentStatusApproved, stored.Status)
		assert.Equal(t, 1, app.mailer.count())
	})

	t.Run("commenters are listed distinct", func(t *testing.T) {
		rec := app.request(httptest.NewRequest(http.MethodGet, "/api/articles/"+article.ID.String()+"/commenters", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		var users []model.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		require.Len(t, users, 1)
		assert.Equal(t, "dory@tidydogs.us", users[0].Email)
	})
}

func TestUserEndpointValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(jsonRequest(http.MethodPost, "/api/users", map[string]string{
		"email":      "naterpotater@spud.co",
		"first_name": "Nathan2",
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "only allows letters")

	rec = app.request(jsonRequest(http.MethodPost, "/api/users", map[string]string{
		"email":      "naterpotater@spud.co",
		"first_name": "Nathan",
	}))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
