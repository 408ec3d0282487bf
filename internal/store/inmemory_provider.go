package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shaibs3/newsboard/internal/db_model"
	"github.com/shaibs3/newsboard/internal/listing"
	"github.com/shaibs3/newsboard/internal/store/shared"
)

// InMemoryProvider keeps every table in maps guarded by a single RWMutex.
// It enforces the same references and cascades as the SQL schema.
type InMemoryProvider struct {
	mu            sync.RWMutex
	topics        []db_model.Topic
	users         map[string]db_model.User
	articles      map[int64]db_model.Article
	comments      map[int64]db_model.Comment
	nextArticleID int64
	nextCommentID int64
	now           func() time.Time
}

func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{
		users:         make(map[string]db_model.User),
		articles:      make(map[int64]db_model.Article),
		comments:      make(map[int64]db_model.Comment),
		nextArticleID: 1,
		nextCommentID: 1,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Seed replaces the whole content of the store with data.
func (m *InMemoryProvider) Seed(ctx context.Context, data db_model.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.topics = append([]db_model.Topic{}, data.Topics...)
	m.users = make(map[string]db_model.User, len(data.Users))
	m.articles = make(map[int64]db_model.Article, len(data.Articles))
	m.comments = make(map[int64]db_model.Comment, len(data.Comments))
	m.nextArticleID, m.nextCommentID = 1, 1

	for _, u := range data.Users {
		m.users[u.Username] = u
	}
	for _, a := range data.Articles {
		a.CommentCount = nil
		m.articles[a.ArticleID] = a
		if a.ArticleID >= m.nextArticleID {
			m.nextArticleID = a.ArticleID + 1
		}
	}
	for _, c := range data.Comments {
		m.comments[c.CommentID] = c
		if c.CommentID >= m.nextCommentID {
			m.nextCommentID = c.CommentID + 1
		}
	}
	return nil
}

func (m *InMemoryProvider) Exists(ctx context.Context, table, column string, value interface{}) (bool, error) {
	if err := shared.CheckColumn(table, column); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch table {
	case "topics":
		slug, ok := value.(string)
		return ok && m.topicExists(slug), nil
	case "users":
		username, ok := value.(string)
		if !ok {
			return false, nil
		}
		_, found := m.users[username]
		return found, nil
	case "articles":
		for _, a := range m.articles {
			if matches(column, value, map[string]interface{}{
				"article_id": a.ArticleID, "author": a.Author, "topic": a.Topic,
			}) {
				return true, nil
			}
		}
	case "comments":
		for _, c := range m.comments {
			if matches(column, value, map[string]interface{}{
				"comment_id": c.CommentID, "article_id": c.ArticleID, "author": c.Author,
			}) {
				return true, nil
			}
		}
	}
	return false, nil
}

// matches compares value with row[column], treating all integer kinds alike.
func matches(column string, value interface{}, row map[string]interface{}) bool {
	want := row[column]
	if id, ok := want.(int64); ok {
		switch v := value.(type) {
		case int64:
			return v == id
		case int:
			return int64(v) == id
		}
		return false
	}
	return want == value
}

func (m *InMemoryProvider) topicExists(slug string) bool {
	for _, t := range m.topics {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

func (m *InMemoryProvider) ListTopics(ctx context.Context) ([]db_model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]db_model.Topic{}, m.topics...), nil
}

func (m *InMemoryProvider) CreateTopic(ctx context.Context, topic db_model.Topic) (db_model.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.topicExists(topic.Slug) {
		return db_model.Topic{}, shared.ErrUniqueViolation
	}
	m.topics = append(m.topics, topic)
	return topic, nil
}

func (m *InMemoryProvider) commentCount(articleID int64) int {
	n := 0
	for _, c := range m.comments {
		if c.ArticleID == articleID {
			n++
		}
	}
	return n
}

func (m *InMemoryProvider) ListArticles(ctx context.Context, filter db_model.ArticleFilter, params listing.Params) ([]db_model.ArticleSummary, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]db_model.ArticleSummary, 0, len(m.articles))
	for _, a := range m.articles {
		if filter.Topic != "" && a.Topic != filter.Topic {
			continue
		}
		if filter.Search != "" && !strings.Contains(a.Title, filter.Search) {
			continue
		}
		rows = append(rows, db_model.ArticleSummary{
			ArticleID:    a.ArticleID,
			Author:       a.Author,
			Title:        a.Title,
			Topic:        a.Topic,
			Votes:        a.Votes,
			CreatedAt:    a.CreatedAt,
			CommentCount: m.commentCount(a.ArticleID),
		})
	}

	total := len(rows)
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareArticles(rows[i], rows[j], params.SortBy)
		if c == 0 {
			return rows[i].ArticleID < rows[j].ArticleID
		}
		if params.Ascending() {
			return c < 0
		}
		return c > 0
	})

	rows = paginate(rows, params)
	for i := range rows {
		rows[i].TotalCount = total
	}
	return rows, total, nil
}

func compareArticles(a, b db_model.ArticleSummary, column string) int {
	switch column {
	case "article_id":
		return compareInt(a.ArticleID, b.ArticleID)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "topic":
		return strings.Compare(a.Topic, b.Topic)
	case "author":
		return strings.Compare(a.Author, b.Author)
	case "votes":
		return compareInt(int64(a.Votes), int64(b.Votes))
	case "comment_count":
		return compareInt(int64(a.CommentCount), int64(b.CommentCount))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareComments(a, b db_model.Comment, column string) int {
	switch column {
	case "comment_id":
		return compareInt(a.CommentID, b.CommentID)
	case "article_id":
		return compareInt(a.ArticleID, b.ArticleID)
	case "author":
		return strings.Compare(a.Author, b.Author)
	case "votes":
		return compareInt(int64(a.Votes), int64(b.Votes))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func paginate[T any](rows []T, params listing.Params) []T {
	total := int64(len(rows))
	start := params.Offset()
	if start < 0 || start >= total {
		return []T{}
	}
	end := start + int64(params.Limit)
	if end > total {
		end = total
	}
	return rows[start:end]
}

func (m *InMemoryProvider) GetArticle(ctx context.Context, id int64) (db_model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	if !ok {
		return db_model.Article{}, shared.ErrNotFound
	}
	count := m.commentCount(id)
	a.CommentCount = &count
	return a, nil
}

func (m *InMemoryProvider) CreateArticle(ctx context.Context, article db_model.NewArticle) (db_model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[article.Author]; !ok || !m.topicExists(article.Topic) {
		return db_model.Article{}, shared.ErrForeignKey
	}
	a := db_model.Article{
		ArticleID: m.nextArticleID,
		Author:    article.Author,
		Title:     article.Title,
		Body:      article.Body,
		Topic:     article.Topic,
		CreatedAt: m.now(),
	}
	m.articles[a.ArticleID] = a
	m.nextArticleID++
	return a, nil
}

func (m *InMemoryProvider) UpdateArticle(ctx context.Context, id int64, update db_model.ArticleUpdate) (db_model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return db_model.Article{}, shared.ErrNotFound
	}
	if update.IncVotes != nil {
		a.Votes += *update.IncVotes
	}
	if update.Body != nil {
		a.Body = *update.Body
	}
	m.articles[id] = a
	return a, nil
}

func (m *InMemoryProvider) DeleteArticle(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return shared.ErrNotFound
	}
	for cid, c := range m.comments {
		if c.ArticleID == id {
			delete(m.comments, cid)
		}
	}
	delete(m.articles, id)
	return nil
}

func (m *InMemoryProvider) ListComments(ctx context.Context, articleID *int64, params listing.Params) ([]db_model.CommentSummary, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]db_model.CommentSummary, 0)
	for _, c := range m.comments {
		if articleID != nil && c.ArticleID != *articleID {
			continue
		}
		rows = append(rows, db_model.CommentSummary{Comment: c})
	}

	total := len(rows)
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareComments(rows[i].Comment, rows[j].Comment, params.SortBy)
		if c == 0 {
			return rows[i].CommentID < rows[j].CommentID
		}
		if params.Ascending() {
			return c < 0
		}
		return c > 0
	})

	rows = paginate(rows, params)
	for i := range rows {
		rows[i].TotalCount = total
	}
	return rows, total, nil
}

func (m *InMemoryProvider) GetComment(ctx context.Context, id int64) (db_model.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comments[id]
	if !ok {
		return db_model.Comment{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *InMemoryProvider) CreateComment(ctx context.Context, comment db_model.NewComment) (db_model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, articleOK := m.articles[comment.ArticleID]
	_, authorOK := m.users[comment.Author]
	if !articleOK || !authorOK {
		return db_model.Comment{}, shared.ErrForeignKey
	}
	c := db_model.Comment{
		CommentID: m.nextCommentID,
		Author:    comment.Author,
		ArticleID: comment.ArticleID,
		Body:      comment.Body,
		CreatedAt: m.now(),
	}
	m.comments[c.CommentID] = c
	m.nextCommentID++
	return c, nil
}

func (m *InMemoryProvider) UpdateComment(ctx context.Context, id int64, update db_model.CommentUpdate) (db_model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return db_model.Comment{}, shared.ErrNotFound
	}
	if update.IncVotes != nil {
		c.Votes += *update.IncVotes
	}
	if update.Body != nil {
		c.Body = *update.Body
	}
	m.comments[id] = c
	return c, nil
}

func (m *InMemoryProvider) DeleteComment(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *InMemoryProvider) ListUsers(ctx context.Context) ([]db_model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]db_model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (m *InMemoryProvider) GetUser(ctx context.Context, username string) (db_model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return db_model.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *InMemoryProvider) CreateUser(ctx context.Context, user db_model.User) (db_model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return db_model.User{}, shared.ErrUniqueViolation
	}
	m.users[user.Username] = user
	return user, nil
}

func (m *InMemoryProvider) UpdateUser(ctx context.Context, username string, update db_model.UserUpdate) (db_model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return db_model.User{}, shared.ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	m.users[username] = u
	return u, nil
}

func (m *InMemoryProvider) Close() error {
	return nil
}
