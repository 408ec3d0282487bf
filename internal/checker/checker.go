// Package checker confirms rows exist before they are mutated or referenced.
package checker

import (
	"context"
	"fmt"

	"github.com/shaibs3/newsboard/internal/apperr"
)

// Finder is the slice of the store the checker needs.
type Finder interface {
	Exists(ctx context.Context, table, column string, value interface{}) (bool, error)
}

type Checker struct {
	finder Finder
}

func New(finder Finder) *Checker {
	return &Checker{finder: finder}
}

// Exists reports presence and leaves the mapping of absence to the caller.
func (c *Checker) Exists(ctx context.Context, table, column string, value interface{}) (bool, error) {
	found, err := c.finder.Exists(ctx, table, column, value)
	if err != nil {
		return false, fmt.Errorf("failed to check %s.%s: %w", table, column, err)
	}
	return found, nil
}

// MustExist fails with a 404 when the target row is absent.
func (c *Checker) MustExist(ctx context.Context, table, column string, value interface{}) error {
	return c.MustReference(ctx, table, column, value, apperr.NotFound(apperr.MsgNotFound))
}

// MustReference fails with onMissing when the referenced row is absent.
func (c *Checker) MustReference(ctx context.Context, table, column string, value interface{}, onMissing error) error {
	found, err := c.Exists(ctx, table, column, value)
	if err != nil {
		return err
	}
	if !found {
		return onMissing
	}
	return nil
}
