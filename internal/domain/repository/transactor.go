package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands repositories a request-scoped connection, optionally inside
// a database transaction.
type Transactor interface {
	Conn(ctx context.Context) *gorm.DB
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
