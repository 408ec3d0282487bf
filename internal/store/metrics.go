package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shaibs3/newsboard/internal/db_model"
	"github.com/shaibs3/newsboard/internal/listing"
	"github.com/shaibs3/newsboard/internal/store/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentedProvider records operation counts, failures and latency for a wrapped provider
type InstrumentedProvider struct {
	next     DbProvider
	backend  attribute.KeyValue
	ops      metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
}

func NewInstrumentedProvider(next DbProvider, meter metric.Meter, dbType DbType) (*InstrumentedProvider, error) {
	ops, err := meter.Int64Counter("store.operations",
		metric.WithDescription("Number of persistence operations"))
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}
	failures, err := meter.Int64Counter("store.failures",
		metric.WithDescription("Number of persistence operations that failed for infrastructure reasons"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}
	latency, err := meter.Float64Histogram("store.duration",
		metric.WithDescription("Persistence operation latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}
	return &InstrumentedProvider{
		next:     next,
		backend:  attribute.String("backend", dbType.String()),
		ops:      ops,
		failures: failures,
		latency:  latency,
	}, nil
}

func (p *InstrumentedProvider) observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(p.backend, attribute.String("operation", op))
	p.ops.Add(ctx, 1, attrs)
	p.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	if err != nil && !shared.IsDomainError(err) {
		p.failures.Add(ctx, 1, attrs)
	}
}

func (p *InstrumentedProvider) Exists(ctx context.Context, table, column string, value interface{}) (ok bool, err error) {
	defer func(start time.Time) { p.observe(ctx, "exists", start, err) }(time.Now())
	return p.next.Exists(ctx, table, column, value)
}

func (p *InstrumentedProvider) ListTopics(ctx context.Context) (topics []db_model.Topic, err error) {
	defer func(start time.Time) { p.observe(ctx, "list_topics", start, err) }(time.Now())
	return p.next.ListTopics(ctx)
}

func (p *InstrumentedProvider) CreateTopic(ctx context.Context, topic db_model.Topic) (created db_model.Topic, err error) {
	defer func(start time.Time) { p.observe(ctx, "create_topic", start, err) }(time.Now())
	return p.next.CreateTopic(ctx, topic)
}

func (p *InstrumentedProvider) ListArticles(ctx context.Context, filter db_model.ArticleFilter, params listing.Params) (articles []db_model.ArticleSummary, total int, err error) {
	defer func(start time.Time) { p.observe(ctx, "list_articles", start, err) }(time.Now())
	return p.next.ListArticles(ctx, filter, params)
}

func (p *InstrumentedProvider) GetArticle(ctx context.Context, id int64) (article db_model.Article, err error) {
	defer func(start time.Time) { p.observe(ctx, "get_article", start, err) }(time.Now())
	return p.next.GetArticle(ctx, id)
}

func (p *InstrumentedProvider) CreateArticle(ctx context.Context, article db_model.NewArticle) (created db_model.Article, err error) {
	defer func(start time.Time) { p.observe(ctx, "create_article", start, err) }(time.Now())
	return p.next.CreateArticle(ctx, article)
}

func (p *InstrumentedProvider) UpdateArticle(ctx context.Context, id int64, update db_model.ArticleUpdate) (article db_model.Article, err error) {
	defer func(start time.Time) { p.observe(ctx, "update_article", start, err) }(time.Now())
	return p.next.UpdateArticle(ctx, id, update)
}

func (p *InstrumentedProvider) DeleteArticle(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { p.observe(ctx, "delete_article", start, err) }(time.Now())
	return p.next.DeleteArticle(ctx, id)
}

func (p *InstrumentedProvider) ListComments(ctx context.Context, articleID *int64, params listing.Params) (comments []db_model.CommentSummary, total int, err error) {
	defer func(start time.Time) { p.observe(ctx, "list_comments", start, err) }(time.Now())
	return p.next.ListComments(ctx, articleID, params)
}

func (p *InstrumentedProvider) GetComment(ctx context.Context, id int64) (comment db_model.Comment, err error) {
	defer func(start time.Time) { p.observe(ctx, "get_comment", start, err) }(time.Now())
	return p.next.GetComment(ctx, id)
}

func (p *InstrumentedProvider) CreateComment(ctx context.Context, comment db_model.NewComment) (created db_model.Comment, err error) {
	defer func(start time.Time) { p.observe(ctx, "create_comment", start, err) }(time.Now())
	return p.next.CreateComment(ctx, comment)
}

func (p *InstrumentedProvider) UpdateComment(ctx context.Context, id int64, update db_model.CommentUpdate) (comment db_model.Comment, err error) {
	defer func(start time.Time) { p.observe(ctx, "update_comment", start, err) }(time.Now())
	return p.next.UpdateComment(ctx, id, update)
}

func (p *InstrumentedProvider) DeleteComment(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { p.observe(ctx, "delete_comment", start, err) }(time.Now())
	return p.next.DeleteComment(ctx, id)
}

func (p *InstrumentedProvider) ListUsers(ctx context.Context) (users []db_model.User, err error) {
	defer func(start time.Time) { p.observe(ctx, "list_users", start, err) }(time.Now())
	return p.next.ListUsers(ctx)
}

func (p *InstrumentedProvider) GetUser(ctx context.Context, username string) (user db_model.User, err error) {
	defer func(start time.Time) { p.observe(ctx, "get_user", start, err) }(time.Now())
	return p.next.GetUser(ctx, username)
}

func (p *InstrumentedProvider) CreateUser(ctx context.Context, user db_model.User) (created db_model.User, err error) {
	defer func(start time.Time) { p.observe(ctx, "create_user", start, err) }(time.Now())
	return p.next.CreateUser(ctx, user)
}

func (p *InstrumentedProvider) UpdateUser(ctx context.Context, username string, update db_model.UserUpdate) (user db_model.User, err error) {
	defer func(start time.Time) { p.observe(ctx, "update_user", start, err) }(time.Now())
	return p.next.UpdateUser(ctx, username, update)
}

func (p *InstrumentedProvider) Close() error {
	return p.next.Close()
}

// Seed forwards to the wrapped provider when it is a Seeder.
func (p *InstrumentedProvider) Seed(ctx context.Context, data db_model.Dataset) (err error) {
	defer func(start time.Time) { p.observe(ctx, "seed", start, err) }(time.Now())
	seeder, ok := p.next.(Seeder)
	if !ok {
		return ErrSeedUnsupported
	}
	return seeder.Seed(ctx, data)
}
