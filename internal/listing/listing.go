package listing

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultSortBy = "created_at"
	DefaultOrder  = "desc"
	DefaultLimit  = 10
	DefaultPage   = 1

	// MaxValue caps limit and p at the range of a Postgres integer.
	MaxValue = math.MaxInt32
)

var (
	ErrInvalidSort  = errors.New("invalid sort field")
	ErrInvalidOrder = errors.New("invalid order field")
)

// Collection declares which columns a collection may be sorted by
type Collection struct {
	Resource string
	Sortable []string
}

// Articles describes the articles collection
var Articles = Collection{
	Resource: "articles",
	Sortable: []string{"article_id", "title", "topic", "author", "votes", "created_at", "comment_count"},
}

// Comments describes the comment collections
var Comments = Collection{
	Resource: "comments",
	Sortable: []string{"comment_id", "article_id", "author", "votes", "created_at"},
}

// Params is a validated sort/order/page request
type Params struct {
	SortBy string
	Order  string
	Limit  int
	Page   int
}

// Offset returns the number of rows to skip for the requested page.
func (p Params) Offset() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// Ascending reports whether rows are sorted in ascending order.
func (p Params) Ascending() bool {
	return p.Order == "asc"
}

// Allows reports whether column is in the collection's sort whitelist.
func (c Collection) Allows(column string) bool {
	for _, name := range c.Sortable {
		if name == column {
			return true
		}
	}
	return false
}

// Parse reads sort_by, order, limit and p from the query string. Sort and
// order must be valid; limit and p silently fall back to their defaults and
// are capped at MaxValue.
func Parse(query url.Values, coll Collection) (Params, error) {
	params := Params{
		SortBy: DefaultSortBy,
		Order:  DefaultOrder,
		Limit:  DefaultLimit,
		Page:   DefaultPage,
	}

	if query.Has("sort_by") {
		sortBy := query.Get("sort_by")
		if !coll.Allows(sortBy) {
			return Params{}, ErrInvalidSort
		}
		params.SortBy = sortBy
	}

	if query.Has("order") {
		order := strings.ToLower(query.Get("order"))
		if order != "asc" && order != "desc" {
			return Params{}, ErrInvalidOrder
		}
		params.Order = order
	}

	params.Limit = positiveOr(query.Get("limit"), DefaultLimit)
	params.Page = positiveOr(query.Get("p"), DefaultPage)
	return params, nil
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	if n > MaxValue {
		return MaxValue
	}
	return n
}
