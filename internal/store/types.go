package store

import "github.com/shaibs3/newsboard/internal/store/shared"

// Re-export shared types for convenience
type DbType = shared.DbType
type DbProviderConfig = shared.DbProviderConfig

// Re-export constants
const (
	DbTypePostgres = shared.DbTypePostgres
	DbTypeMemory   = shared.DbTypeMemory
)

// Re-export sentinel errors
var (
	ErrNotFound        = shared.ErrNotFound
	ErrForeignKey      = shared.ErrForeignKey
	ErrNotNull         = shared.ErrNotNull
	ErrUniqueViolation = shared.ErrUniqueViolation
	ErrInvalidInput    = shared.ErrInvalidInput
)
