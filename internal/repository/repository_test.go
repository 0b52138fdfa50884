package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inkwell/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Article{}, &model.Comment{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, firstName string) *model.User {
	t.Helper()
	user := &model.User{Email: email, FirstName: firstName, LastName: "Test"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createArticle(t *testing.T, db *gorm.DB, title string, owner *uuid.UUID) *model.Article {
	t.Helper()
	article := &model.Article{Title: title, Body: "body", UserID: owner}
	require.NoError(t, NewArticleRepository(db).Create(context.Background(), article))
	return article
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, db, "bloop@shoop.com", "Melissa")
	assert.NotEqual(t, uuid.Nil, user.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "bloop@shoop.com", byID.Email)

	byEmail, err := repo.FindByEmail(ctx, "bloop@shoop.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	users, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 1)

	// email is unique
	err = repo.Create(ctx, &model.User{Email: "bloop@shoop.com", FirstName: "Other"})
	assert.Error(t, err)
}

func TestArticleRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, "anybody@fear.com", "Random")
	withOwner := createArticle(t, db, "Hello", &owner.ID)
	orphan := createArticle(t, db, "World", nil)

	found, err := repo.FindByID(ctx, withOwner.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Hello", found.Title)
	assert.Equal(t, owner.ID, *found.UserID)

	found, err = repo.FindByID(ctx, orphan.ID)
	assert.NoError(t, err)
	assert.Nil(t, found.UserID)

	articles, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestCommentRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	user := createUser(t, db, "dory@tidydogs.us", "Dory")
	article := createArticle(t, db, "Dogs", &user.ID)

	comment := &model.Comment{Body: "really very cute", ArticleID: article.ID, UserID: user.ID}
	require.NoError(t, repo.Create(ctx, comment))
	// default status applied on create
	assert.Equal(t, model.CommentStatusPending, comment.Status)

	comment.Status = model.CommentStatusApproved
	require.NoError(t, repo.Update(ctx, comment))

	found, err := repo.FindByID(ctx, comment.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.CommentStatusApproved, found.Status)

	comments, err := repo.ListByArticle(ctx, article.ID)
	assert.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestCommentRepository_ListCommenters(t *testing.T) {
	db := newTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alli := createUser(t, db, "alli@palli.com", "Alli")
	dory := createUser(t, db, "dory@tidydogs.us", "Dory")
	bystander := createUser(t, db, "nobody@example.com", "Nobody")
	article := createArticle(t, db, "Dogs", nil)
	other := createArticle(t, db, "Cats", nil)

	for _, c := range []*model.Comment{
		{Body: "first", ArticleID: article.ID, UserID: alli.ID},
		{Body: "second", ArticleID: article.ID, UserID: alli.ID},
		{Body: "third", ArticleID: article.ID, UserID: dory.ID},
		{Body: "elsewhere", ArticleID: other.ID, UserID: bystander.ID},
	} {
		require.NoError(t, repo.Create(ctx, c))
	}

	commenters, err := repo.ListCommenters(ctx, article.ID)
	assert.NoError(t, err)
	// two commenters, the double commenter collapsed
	assert.Len(t, commenters, 2)
	emails := []string{commenters[0].Email, commenters[1].Email}
	assert.Contains(t, emails, "alli@palli.com")
	assert.Contains(t, emails, "dory@tidydogs.us")
}
