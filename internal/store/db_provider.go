package store

import (
	"context"
	"errors"

	"github.com/shaibs3/newsboard/internal/db_model"
	"github.com/shaibs3/newsboard/internal/listing"
)

// DbProvider is the persistence gateway used by the HTTP controllers.
// Lookups of a missing row return shared.ErrNotFound; constraint failures
// return the matching shared sentinel.
type DbProvider interface {
	Exists(ctx context.Context, table, column string, value interface{}) (bool, error)

	ListTopics(ctx context.Context) ([]db_model.Topic, error)
	CreateTopic(ctx context.Context, topic db_model.Topic) (db_model.Topic, error)

	ListArticles(ctx context.Context, filter db_model.ArticleFilter, params listing.Params) ([]db_model.ArticleSummary, int, error)
	GetArticle(ctx context.Context, id int64) (db_model.Article, error)
	CreateArticle(ctx context.Context, article db_model.NewArticle) (db_model.Article, error)
	UpdateArticle(ctx context.Context, id int64, update db_model.ArticleUpdate) (db_model.Article, error)
	DeleteArticle(ctx context.Context, id int64) error

	// ListComments lists every comment when articleID is nil.
	ListComments(ctx context.Context, articleID *int64, params listing.Params) ([]db_model.CommentSummary, int, error)
	GetComment(ctx context.Context, id int64) (db_model.Comment, error)
	CreateComment(ctx context.Context, comment db_model.NewComment) (db_model.Comment, error)
	UpdateComment(ctx context.Context, id int64, update db_model.CommentUpdate) (db_model.Comment, error)
	DeleteComment(ctx context.Context, id int64) error

	ListUsers(ctx context.Context) ([]db_model.User, error)
	GetUser(ctx context.Context, username string) (db_model.User, error)
	CreateUser(ctx context.Context, user db_model.User) (db_model.User, error)
	UpdateUser(ctx context.Context, username string, update db_model.UserUpdate) (db_model.User, error)

	Close() error
}

// ErrSeedUnsupported is returned when a provider cannot load a dataset in place.
var ErrSeedUnsupported = errors.New("provider does not support seeding")

// Seeder is implemented by providers whose content can be replaced at startup.
type Seeder interface {
	Seed(ctx context.Context, data db_model.Dataset) error
}
