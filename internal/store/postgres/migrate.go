package postgres

import (
	"context"
	"fmt"

	"github.com/shaibs3/newsboard/internal/db_model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Migrator owns the schema: table creation and fixture loading.
type Migrator struct {
	gormDB *gorm.DB
	logger *zap.Logger
}

func NewMigrator(connStr string, logger *zap.Logger) (*Migrator, error) {
	gormDB, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}
	return &Migrator{
		gormDB: gormDB,
		logger: logger.Named("migrator"),
	}, nil
}

// Migrate creates or updates the four tables. Deleting a topic, user or
// article cascades to the rows that reference it.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.gormDB.WithContext(ctx).AutoMigrate(&topicRow{}, &userRow{}, &articleRow{}, &commentRow{}); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	m.logger.Info("schema migrated")
	return nil
}

// Seed truncates every table and loads data in a single transaction.
func (m *Migrator) Seed(ctx context.Context, data db_model.Dataset) error {
	err := m.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("TRUNCATE comments, articles, users, topics RESTART IDENTITY CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate tables: %w", err)
		}

		topics := make([]topicRow, len(data.Topics))
		for i, t := range data.Topics {
			topics[i] = topicRow{Slug: t.Slug, Description: t.Description}
		}
		users := make([]userRow, len(data.Users))
		for i, u := range data.Users {
			users[i] = userRow{Username: u.Username, Name: u.Name, AvatarURL: u.AvatarURL, Password: u.Password}
		}
		articles := make([]articleRow, len(data.Articles))
		for i, a := range data.Articles {
			articles[i] = articleRow{
				ArticleID: a.ArticleID,
				Title:     a.Title,
				Topic:     a.Topic,
				Author:    a.Author,
				Body:      a.Body,
				CreatedAt: a.CreatedAt,
				Votes:     a.Votes,
			}
		}
		comments := make([]commentRow, len(data.Comments))
		for i, c := range data.Comments {
			comments[i] = commentRow{
				CommentID: c.CommentID,
				Body:      c.Body,
				ArticleID: c.ArticleID,
				Author:    c.Author,
				Votes:     c.Votes,
				CreatedAt: c.CreatedAt,
			}
		}

		if err := insertAll(tx, topics); err != nil {
			return fmt.Errorf("failed to insert topics: %w", err)
		}
		if err := insertAll(tx, users); err != nil {
			return fmt.Errorf("failed to insert users: %w", err)
		}
		if err := insertAll(tx, articles); err != nil {
			return fmt.Errorf("failed to insert articles: %w", err)
		}
		if err := insertAll(tx, comments); err != nil {
			return fmt.Errorf("failed to insert comments: %w", err)
		}

		// Rows were inserted with explicit ids, so move the sequences past them.
		for _, seq := range [][2]string{{"articles", "article_id"}, {"comments", "comment_id"}} {
			query := fmt.Sprintf(
				"SELECT setval(pg_get_serial_sequence('%[1]s', '%[2]s'), COALESCE((SELECT MAX(%[2]s) FROM %[1]s), 0) + 1, false)",
				seq[0], seq[1])
			if err := tx.Exec(query).Error; err != nil {
				return fmt.Errorf("failed to reset %s sequence: %w", seq[0], err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info("database seeded",
		zap.Int("topics", len(data.Topics)),
		zap.Int("users", len(data.Users)),
		zap.Int("articles", len(data.Articles)),
		zap.Int("comments", len(data.Comments)))
	return nil
}

func insertAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func (m *Migrator) Close() error {
	sqlDB, err := m.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
