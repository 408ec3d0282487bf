package shared

import (
	"errors"
	"fmt"
)

// Sentinel errors every provider maps its backend failures onto.
var (
	ErrNotFound        = errors.New("row not found")
	ErrForeignKey      = errors.New("foreign key violation")
	ErrNotNull         = errors.New("not-null violation")
	ErrUniqueViolation = errors.New("unique violation")
	ErrInvalidInput    = errors.New("invalid input syntax")
	ErrUnknownColumn   = errors.New("unknown table or column")
)

// existsColumns is the set of table/column pairs Exists may query. Table and
// column names are interpolated into SQL, so nothing outside it is accepted.
var existsColumns = map[string]map[string]bool{
	"topics":   {"slug": true},
	"users":    {"username": true},
	"articles": {"article_id": true, "author": true, "topic": true},
	"comments": {"comment_id": true, "article_id": true, "author": true},
}

// CheckColumn validates a table/column pair for an existence query.
func CheckColumn(table, column string) error {
	if cols, ok := existsColumns[table]; ok && cols[column] {
		return nil
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, column)
}

// IsDomainError reports whether err is a data-level failure rather than an
// infrastructure one. Circuit breakers must not count these.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForeignKey) ||
		errors.Is(err, ErrNotNull) ||
		errors.Is(err, ErrUniqueViolation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownColumn)
}
