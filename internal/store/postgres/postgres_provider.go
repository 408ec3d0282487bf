package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shaibs3/newsboard/internal/db_model"
	"github.com/shaibs3/newsboard/internal/listing"
	"github.com/shaibs3/newsboard/internal/store/shared"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

type PostgresProvider struct {
	db     *sqlx.DB
	logger *zap.Logger
	cb     *gobreaker.CircuitBreaker
}

func NewPostgresProvider(config shared.DbProviderConfig, logger *zap.Logger) (*PostgresProvider, error) {
	pgLogger := logger.Named("postgres")

	connStr := config.String("conn_str")
	if connStr == "" {
		return nil, fmt.Errorf("conn_str is required for Postgres provider")
	}
	pgLogger.Info("initializing Postgres provider")

	if autoMigrate, _ := config.ExtraDetails["auto_migrate"].(bool); autoMigrate {
		migrator, err := NewMigrator(connStr, pgLogger)
		if err != nil {
			return nil, err
		}
		err = migrator.Migrate(context.Background())
		migrator.Close()
		if err != nil {
			return nil, err
		}
	}

	dbConn, err := sqlx.Open("postgres", connStr)
	if err != nil {
		pgLogger.Error("failed to open Postgres connection", zap.Error(err))
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}
	dbConn.SetMaxOpenConns(config.Int("max_open_conns", 10))
	dbConn.SetMaxIdleConns(config.Int("max_idle_conns", 5))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		pgLogger.Error("failed to ping Postgres", zap.Error(err))
		dbConn.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "PostgresDB",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || shared.IsDomainError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			pgLogger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	pgLogger.Info("Postgres provider initialized successfully")
	return &PostgresProvider{
		db:     dbConn,
		logger: pgLogger,
		cb:     cb,
	}, nil
}

// guarded runs fn through the circuit breaker after translating its error
// into the shared sentinels.
func guarded[T any](p *PostgresProvider, fn func() (T, error)) (T, error) {
	res, err := p.cb.Execute(func() (interface{}, error) {
		v, err := fn()
		return v, classify(err)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// classify maps driver errors onto the shared sentinels, keeping the
// driver message for logs.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return shared.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			return fmt.Errorf("%w: %s", shared.ErrForeignKey, pqErr.Message)
		case "23502":
			return fmt.Errorf("%w: %s", shared.ErrNotNull, pqErr.Message)
		case "23505":
			return fmt.Errorf("%w: %s", shared.ErrUniqueViolation, pqErr.Message)
		case "22P02", "22003":
			return fmt.Errorf("%w: %s", shared.ErrInvalidInput, pqErr.Message)
		}
	}
	return err
}

func (p *PostgresProvider) Exists(ctx context.Context, table, column string, value interface{}) (bool, error) {
	if err := shared.CheckColumn(table, column); err != nil {
		return false, err
	}
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)",
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(column))
	return guarded(p, func() (bool, error) {
		var found bool
		err := p.db.GetContext(ctx, &found, query, value)
		return found, err
	})
}

func (p *PostgresProvider) ListTopics(ctx context.Context) ([]db_model.Topic, error) {
	return guarded(p, func() ([]db_model.Topic, error) {
		topics := []db_model.Topic{}
		err := p.db.SelectContext(ctx, &topics, `SELECT slug, description FROM topics`)
		return topics, err
	})
}

func (p *PostgresProvider) CreateTopic(ctx context.Context, topic db_model.Topic) (db_model.Topic, error) {
	return guarded(p, func() (db_model.Topic, error) {
		var created db_model.Topic
		err := p.db.GetContext(ctx, &created, `
			INSERT INTO topics (slug, description) VALUES ($1, $2)
			RETURNING slug, description`, topic.Slug, topic.Description)
		return created, err
	})
}

// articleOrderColumns maps sortable listing fields to SQL expressions.
var articleOrderColumns = map[string]string{
	"article_id":    "a.article_id",
	"title":         "a.title",
	"topic":         "a.topic",
	"author":        "a.author",
	"votes":         "a.votes",
	"created_at":    "a.created_at",
	"comment_count": "comment_count",
}

var commentOrderColumns = map[string]string{
	"comment_id": "comment_id",
	"article_id": "article_id",
	"author":     "author",
	"votes":      "votes",
	"created_at": "created_at",
}

// orderClause builds ORDER BY from whitelisted columns only. Unknown fields
// fall back to the default sort.
func orderClause(columns map[string]string, params listing.Params, tieBreak string) string {
	col, ok := columns[params.SortBy]
	if !ok {
		col = columns[listing.DefaultSortBy]
	}
	dir := "DESC"
	if params.Ascending() {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, %s ASC", col, dir, tieBreak)
}

// likePattern escapes LIKE wildcards so search terms match literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func articleWhere(filter db_model.ArticleFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if filter.Topic != "" {
		args = append(args, filter.Topic)
		conds = append(conds, fmt.Sprintf("a.topic = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		conds = append(conds, fmt.Sprintf("a.title LIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

type articlePage struct {
	rows  []db_model.ArticleSummary
	total int
}

func (p *PostgresProvider) ListArticles(ctx context.Context, filter db_model.ArticleFilter, params listing.Params) ([]db_model.ArticleSummary, int, error) {
	where, args := articleWhere(filter)
	countQuery := "SELECT COUNT(*) FROM articles a " + where
	selectQuery := fmt.Sprintf(`
		SELECT a.article_id, a.author, a.title, a.topic, a.votes, a.created_at,
		       COUNT(c.comment_id)::int AS comment_count
		FROM articles a
		LEFT JOIN comments c ON c.article_id = a.article_id
		%s
		GROUP BY a.article_id
		%s
		LIMIT $%d OFFSET $%d`,
		where, orderClause(articleOrderColumns, params, "a.article_id"), len(args)+1, len(args)+2)

	page, err := guarded(p, func() (articlePage, error) {
		var page articlePage
		if err := p.db.GetContext(ctx, &page.total, countQuery, args...); err != nil {
			return page, err
		}
		page.rows = []db_model.ArticleSummary{}
		err := p.db.SelectContext(ctx, &page.rows, selectQuery, append(args, params.Limit, params.Offset())...)
		return page, err
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range page.rows {
		page.rows[i].TotalCount = page.total
	}
	return page.rows, page.total, nil
}

const articleColumns = `article_id, author, title, body, topic, votes, created_at`

func (p *PostgresProvider) GetArticle(ctx context.Context, id int64) (db_model.Article, error) {
	return guarded(p, func() (db_model.Article, error) {
		var article db_model.Article
		err := p.db.GetContext(ctx, &article, `
			SELECT a.article_id, a.author, a.title, a.body, a.topic, a.votes, a.created_at,
			       COUNT(c.comment_id)::int AS comment_count
			FROM articles a
			LEFT JOIN comments c ON c.article_id = a.article_id
			WHERE a.article_id = $1
			GROUP BY a.article_id`, id)
		return article, err
	})
}

func (p *PostgresProvider) CreateArticle(ctx context.Context, article db_model.NewArticle) (db_model.Article, error) {
	return guarded(p, func() (db_model.Article, error) {
		var created db_model.Article
		err := p.db.GetContext(ctx, &created, `
			INSERT INTO articles (author, title, body, topic) VALUES ($1, $2, $3, $4)
			RETURNING `+articleColumns,
			article.Author, article.Title, article.Body, article.Topic)
		return created, err
	})
}

func (p *PostgresProvider) UpdateArticle(ctx context.Context, id int64, update db_model.ArticleUpdate) (db_model.Article, error) {
	return guarded(p, func() (db_model.Article, error) {
		var updated db_model.Article
		err := p.db.GetContext(ctx, &updated, `
			UPDATE articles
			SET votes = votes + COALESCE($2::int, 0), body = COALESCE($3::text, body)
			WHERE article_id = $1
			RETURNING `+articleColumns,
			id, update.IncVotes, update.Body)
		return updated, err
	})
}

func (p *PostgresProvider) DeleteArticle(ctx context.Context, id int64) error {
	return p.deleteRow(ctx, `DELETE FROM articles WHERE article_id = $1`, id)
}

func (p *PostgresProvider) deleteRow(ctx context.Context, query string, id int64) error {
	_, err := guarded(p, func() (struct{}, error) {
		res, err := p.db.ExecContext(ctx, query, id)
		if err != nil {
			return struct{}{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return struct{}{}, err
		}
		if n == 0 {
			return struct{}{}, sql.ErrNoRows
		}
		return struct{}{}, nil
	})
	return err
}

type commentPage struct {
	rows  []db_model.CommentSummary
	total int
}

const commentColumns = `comment_id, author, article_id, votes, created_at, body`

func (p *PostgresProvider) ListComments(ctx context.Context, articleID *int64, params listing.Params) ([]db_model.CommentSummary, int, error) {
	var where string
	var args []interface{}
	if articleID != nil {
		where = "WHERE article_id = $1"
		args = append(args, *articleID)
	}
	countQuery := "SELECT COUNT(*) FROM comments " + where
	selectQuery := fmt.Sprintf(`SELECT %s FROM comments %s %s LIMIT $%d OFFSET $%d`,
		commentColumns, where, orderClause(commentOrderColumns, params, "comment_id"), len(args)+1, len(args)+2)

	page, err := guarded(p, func() (commentPage, error) {
		var page commentPage
		if err := p.db.GetContext(ctx, &page.total, countQuery, args...); err != nil {
			return page, err
		}
		page.rows = []db_model.CommentSummary{}
		err := p.db.SelectContext(ctx, &page.rows, selectQuery, append(args, params.Limit, params.Offset())...)
		return page, err
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range page.rows {
		page.rows[i].TotalCount = page.total
	}
	return page.rows, page.total, nil
}

func (p *PostgresProvider) GetComment(ctx context.Context, id int64) (db_model.Comment, error) {
	return guarded(p, func() (db_model.Comment, error) {
		var comment db_model.Comment
		err := p.db.GetContext(ctx, &comment, `SELECT `+commentColumns+` FROM comments WHERE comment_id = $1`, id)
		return comment, err
	})
}

func (p *PostgresProvider) CreateComment(ctx context.Context, comment db_model.NewComment) (db_model.Comment, error) {
	return guarded(p, func() (db_model.Comment, error) {
		var created db_model.Comment
		err := p.db.GetContext(ctx, &created, `
			INSERT INTO comments (article_id, author, body) VALUES ($1, $2, $3)
			RETURNING `+commentColumns,
			comment.ArticleID, comment.Author, comment.Body)
		return created, err
	})
}

func (p *PostgresProvider) UpdateComment(ctx context.Context, id int64, update db_model.CommentUpdate) (db_model.Comment, error) {
	return guarded(p, func() (db_model.Comment, error) {
		var updated db_model.Comment
		err := p.db.GetContext(ctx, &updated, `
			UPDATE comments
			SET votes = votes + COALESCE($2::int, 0), body = COALESCE($3::text, body)
			WHERE comment_id = $1
			RETURNING `+commentColumns,
			id, update.IncVotes, update.Body)
		return updated, err
	})
}

func (p *PostgresProvider) DeleteComment(ctx context.Context, id int64) error {
	return p.deleteRow(ctx, `DELETE FROM comments WHERE comment_id = $1`, id)
}

const userColumns = `username, name, avatar_url, password`

func (p *PostgresProvider) ListUsers(ctx context.Context) ([]db_model.User, error) {
	return guarded(p, func() ([]db_model.User, error) {
		users := []db_model.User{}
		err := p.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY username`)
		return users, err
	})
}

func (p *PostgresProvider) GetUser(ctx context.Context, username string) (db_model.User, error) {
	return guarded(p, func() (db_model.User, error) {
		var user db_model.User
		err := p.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
		return user, err
	})
}

func (p *PostgresProvider) CreateUser(ctx context.Context, user db_model.User) (db_model.User, error) {
	return guarded(p, func() (db_model.User, error) {
		var created db_model.User
		err := p.db.GetContext(ctx, &created, `
			INSERT INTO users (username, name, avatar_url, password) VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns,
			user.Username, user.Name, user.AvatarURL, user.Password)
		return created, err
	})
}

func (p *PostgresProvider) UpdateUser(ctx context.Context, username string, update db_model.UserUpdate) (db_model.User, error) {
	return guarded(p, func() (db_model.User, error) {
		var updated db_model.User
		err := p.db.GetContext(ctx, &updated, `
			UPDATE users
			SET name = COALESCE($2::text, name), avatar_url = COALESCE($3::text, avatar_url)
			WHERE username = $1
			RETURNING `+userColumns,
			username, update.Name, update.AvatarURL)
		return updated, err
	})
}

func (p *PostgresProvider) Close() error {
	p.logger.Info("closing Postgres provider")
	return p.db.Close()
}
