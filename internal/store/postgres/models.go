package postgres

import "time"

// Schema models used by AutoMigrate and the seeder. Runtime queries go through sqlx.

type topicRow struct {
	Slug        string `gorm:"primaryKey"`
	Description string `gorm:"not null"`
}

func (topicRow) TableName() string {
	return "topics"
}

type userRow struct {
	Username  string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	AvatarURL string `gorm:"column:avatar_url"`
	Password  string `gorm:"not null"`
}

func (userRow) TableName() string {
	return "users"
}

type articleRow struct {
	ArticleID int64     `gorm:"column:article_id;primaryKey;autoIncrement"`
	Title     string    `gorm:"not null"`
	Topic     string    `gorm:"not null;index"`
	TopicRef  topicRow  `gorm:"foreignKey:Topic;references:Slug;constraint:OnDelete:CASCADE"`
	Author    string    `gorm:"not null;index"`
	AuthorRef userRow   `gorm:"foreignKey:Author;references:Username;constraint:OnDelete:CASCADE"`
	Body      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	Votes     int       `gorm:"not null;default:0"`
}

func (articleRow) TableName() string {
	return "articles"
}

type commentRow struct {
	CommentID  int64      `gorm:"column:comment_id;primaryKey;autoIncrement"`
	Body       string     `gorm:"not null"`
	ArticleID  int64      `gorm:"column:article_id;not null;index"`
	ArticleRef articleRow `gorm:"foreignKey:ArticleID;references:ArticleID;constraint:OnDelete:CASCADE"`
	Author     string     `gorm:"not null;index"`
	AuthorRef  userRow    `gorm:"foreignKey:Author;references:Username;constraint:OnDelete:CASCADE"`
	Votes      int        `gorm:"not null;default:0"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (commentRow) TableName() string {
	return "comments"
}
