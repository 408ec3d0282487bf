// Package fixtures loads seed data from YAML documents.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/shaibs3/newsboard/internal/db_model"
	"gopkg.in/yaml.v3"
)

//go:embed data/sample.yaml
var sample []byte

type Topic struct {
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// User carries a plain-text password that is hashed on conversion.
type User struct {
	Username  string `yaml:"username"`
	Name      string `yaml:"name"`
	AvatarURL string `yaml:"avatar_url"`
	Password  string `yaml:"password"`
}

type Article struct {
	Title     string    `yaml:"title"`
	Topic     string    `yaml:"topic"`
	Author    string    `yaml:"author"`
	Body      string    `yaml:"body"`
	CreatedAt time.Time `yaml:"created_at"`
	Votes     int       `yaml:"votes"`
}

// Comment refers to its article by 1-based position in the articles list.
type Comment struct {
	Body      string    `yaml:"body"`
	Votes     int       `yaml:"votes"`
	Author    string    `yaml:"author"`
	ArticleID int64     `yaml:"article_id"`
	CreatedAt time.Time `yaml:"created_at"`
}

type Fixtures struct {
	Topics   []Topic   `yaml:"topics"`
	Users    []User    `yaml:"users"`
	Articles []Article `yaml:"articles"`
	Comments []Comment `yaml:"comments"`
}

// Sample returns the built-in data set.
func Sample() (Fixtures, error) {
	return Parse(sample)
}

func LoadFile(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("failed to read fixtures file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return f, nil
}

// Dataset assigns ids, hashes passwords and checks every reference.
func (f Fixtures) Dataset(hash func(string) (string, error)) (db_model.Dataset, error) {
	now := time.Now().UTC()
	topics := make(map[string]bool, len(f.Topics))
	users := make(map[string]bool, len(f.Users))

	var data db_model.Dataset
	for _, t := range f.Topics {
		topics[t.Slug] = true
		data.Topics = append(data.Topics, db_model.Topic{Slug: t.Slug, Description: t.Description})
	}
	for _, u := range f.Users {
		hashed, err := hash(u.Password)
		if err != nil {
			return db_model.Dataset{}, fmt.Errorf("failed to hash password of %s: %w", u.Username, err)
		}
		users[u.Username] = true
		data.Users = append(data.Users, db_model.User{
			Username:  u.Username,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			Password:  hashed,
		})
	}
	for i, a := range f.Articles {
		if !topics[a.Topic] {
			return db_model.Dataset{}, fmt.Errorf("article %d: unknown topic %q", i+1, a.Topic)
		}
		if !users[a.Author] {
			return db_model.Dataset{}, fmt.Errorf("article %d: unknown author %q", i+1, a.Author)
		}
		data.Articles = append(data.Articles, db_model.Article{
			ArticleID: int64(i + 1),
			Author:    a.Author,
			Title:     a.Title,
			Body:      a.Body,
			Topic:     a.Topic,
			Votes:     a.Votes,
			CreatedAt: orNow(a.CreatedAt, now),
		})
	}
	for i, c := range f.Comments {
		if c.ArticleID < 1 || c.ArticleID > int64(len(f.Articles)) {
			return db_model.Dataset{}, fmt.Errorf("comment %d: unknown article %d", i+1, c.ArticleID)
		}
		if !users[c.Author] {
			return db_model.Dataset{}, fmt.Errorf("comment %d: unknown author %q", i+1, c.Author)
		}
		data.Comments = append(data.Comments, db_model.Comment{
			CommentID: int64(i + 1),
			Author:    c.Author,
			ArticleID: c.ArticleID,
			Votes:     c.Votes,
			CreatedAt: orNow(c.CreatedAt, now),
			Body:      c.Body,
		})
	}
	return data, nil
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.UTC()
}
