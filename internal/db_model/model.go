package db_model

import "time"

// Topic is a discussion category identified by its slug
type Topic struct {
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description"`
}

// Article is a single article row. CommentCount is only populated on reads
// that join the comments table.
type Article struct {
	ArticleID    int64     `db:"article_id" json:"article_id"`
	Author       string    `db:"author" json:"author"`
	Title        string    `db:"title" json:"title"`
	Body         string    `db:"body" json:"body"`
	Topic        string    `db:"topic" json:"topic"`
	Votes        int       `db:"votes" json:"votes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	CommentCount *int      `db:"comment_count" json:"comment_count,omitempty"`
}

// ArticleSummary is an article as it appears in a listing
type ArticleSummary struct {
	ArticleID    int64     `db:"article_id" json:"article_id"`
	Author       string    `db:"author" json:"author"`
	Title        string    `db:"title" json:"title"`
	Topic        string    `db:"topic" json:"topic"`
	Votes        int       `db:"votes" json:"votes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	TotalCount   int       `db:"total_count" json:"total_count"`
}

// Comment is a single comment row
type Comment struct {
	CommentID int64     `db:"comment_id" json:"comment_id"`
	Author    string    `db:"author" json:"author"`
	ArticleID int64     `db:"article_id" json:"article_id"`
	Votes     int       `db:"votes" json:"votes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Body      string    `db:"body" json:"body"`
}

// CommentSummary is a comment as it appears in a listing
type CommentSummary struct {
	Comment
	TotalCount int `db:"total_count" json:"total_count"`
}

// User is a registered account. Password holds the bcrypt hash and is never serialized.
type User struct {
	Username  string `db:"username" json:"username"`
	Name      string `db:"name" json:"name"`
	AvatarURL string `db:"avatar_url" json:"avatar_url"`
	Password  string `db:"password" json:"-"`
}

// NewArticle carries the fields accepted on article creation
type NewArticle struct {
	Author string
	Title  string
	Body   string
	Topic  string
}

// ArticleUpdate carries the optional PATCH changes. Nil fields are left untouched.
type ArticleUpdate struct {
	IncVotes *int
	Body     *string
}

// NewComment carries the fields accepted on comment creation
type NewComment struct {
	ArticleID int64
	Author    string
	Body      string
}

// CommentUpdate carries the optional PATCH changes. Nil fields are left untouched.
type CommentUpdate struct {
	IncVotes *int
	Body     *string
}

// UserUpdate carries the editable user fields. Nil fields are left untouched.
type UserUpdate struct {
	Name      *string
	AvatarURL *string
}

// ArticleFilter narrows an article listing. Empty values disable a filter.
type ArticleFilter struct {
	Topic  string
	Search string
}

// IsEmpty reports whether the update would change nothing.
func (u ArticleUpdate) IsEmpty() bool { return u.IncVotes == nil && u.Body == nil }

// IsEmpty reports whether the update would change nothing.
func (u CommentUpdate) IsEmpty() bool { return u.IncVotes == nil && u.Body == nil }

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool { return u.Name == nil && u.AvatarURL == nil }

// Dataset is a complete set of rows used to (re)populate a store.
// Users carry already-hashed passwords.
type Dataset struct {
	Topics   []Topic
	Users    []User
	Articles []Article
	Comments []Comment
}
