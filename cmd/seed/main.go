package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

// seedPassword is shared by every fixture user; the fixtures are demo data,
// not part of the runtime contract.
const seedPassword = "password"

type seedUser struct {
	email     string
	firstName string
	lastName  string
}

type seedComment struct {
	body         string
	userEmail    string
	articleTitle string
}

var (
	users = []seedUser{
		{"bloop@shoop.com", "Melissa", "Gore"},
		{"naterpotater@spud.co", "Nathan", "Goodman"},
		{"alli@palli.com", "Alli", "Berry"},
		{"indoorgal@tidydogs.us", "Dory", "Matatall"},
		{"anybody@fear.com", "Random", "Bloop"},
	}

	articles = map[string]struct {
		body       string
		ownerEmail string
	}{
		"This is an anxietycore news headline, get scared": {"nihilist despair", "anybody@fear.com"},
		"This is a post about how cute dogs are":           {"spoiler: really darn cute", "anybody@fear.com"},
	}

	comments = []seedComment{
		{"yeah, I am pretty nervous, thanks for your help with that", "bloop@shoop.com", "This is an anxietycore news headline, get scared"},
		{"YOLO!!!", "naterpotater@spud.co", "This is an anxietycore news headline, get scared"},
		{"wow this is aggressive, thanks i hate it", "alli@palli.com", "This is an anxietycore news headline, get scared"},
		{"really very cute", "indoorgal@tidydogs.us", "This is a post about how cute dogs are"},
	}
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := context.Background()

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Article{}, &model.Comment{}); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	userRepo := repository.NewUserRepository(gormDB)

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash seed password")
	}

	userByEmail := make(map[string]*model.User, len(users))
	for _, u := range users {
		existing, err := userRepo.FindByEmail(ctx, u.email)
		if err == nil {
			userByEmail[u.email] = existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatal().Err(err).Str("email", u.email).Msg("look up user")
		}
		user := &model.User{
			Email:        u.email,
			FirstName:    u.firstName,
			LastName:     u.lastName,
			PasswordHash: string(hashed),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatal().Err(err).Str("email", u.email).Msg("create user")
		}
		userByEmail[u.email] = user
		log.Info().Str("email", u.email).Msg("seeded user")
	}

	articleByTitle := make(map[string]*model.Article, len(articles))
	for title, a := range articles {
		var existing model.Article
		err := gormDB.WithContext(ctx).Where("title = ?", title).First(&existing).Error
		if err == nil {
			articleByTitle[title] = &existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatal().Err(err).Str("title", title).Msg("look up article")
		}
		owner := userByEmail[a.ownerEmail]
		article := &model.Article{
			Title:  title,
			Body:   a.body,
			UserID: &owner.ID,
		}
		if err := gormDB.WithContext(ctx).Create(article).Error; err != nil {
			log.Fatal().Err(err).Str("title", title).Msg("create article")
		}
		articleByTitle[title] = article
		log.Info().Str("title", title).Msg("seeded article")
	}

	for _, c := range comments {
		user := userByEmail[c.userEmail]
		article := articleByTitle[c.articleTitle]
		var count int64
		if err := gormDB.WithContext(ctx).Model(&model.Comment{}).
			Where("user_id = ? AND article_id = ?", user.ID, article.ID).
			Count(&count).Error; err != nil {
			log.Fatal().Err(err).Msg("look up comment")
		}
		if count > 0 {
			continue
		}
		comment := &model.Comment{
			Body:      c.body,
			Status:    model.CommentStatusPending,
			ArticleID: article.ID,
			UserID:    user.ID,
		}
		if err := gormDB.WithContext(ctx).Create(comment).Error; err != nil {
			log.Fatal().Err(err).Msg("create comment")
		}
		log.Info().Str("user", c.userEmail).Msg("seeded comment")
	}

	log.Info().Msg("seed complete")
}
