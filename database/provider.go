package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// TxFunc is a function executed inside a transaction.
type TxFunc func(tx *gorm.DB) error

// Provider abstracts database access; all database implementations must
// satisfy this interface.
type Provider interface {
	// DB returns the underlying *gorm.DB instance.
	DB() *gorm.DB

	// WithContext returns a *gorm.DB bound to ctx.
	WithContext(ctx context.Context) *gorm.DB

	// Transaction executes fn inside a transaction.
	Transaction(fn TxFunc) error

	// TransactionWithContext executes fn inside a transaction bound to ctx.
	TransactionWithContext(ctx context.Context, fn TxFunc) error

	// BeginTransaction starts a manually controlled transaction.
	BeginTransaction() *gorm.DB

	// AutoMigrate migrates the schema for the given models.
	AutoMigrate(models ...interface{}) error

	// SQLDB returns the underlying sql.DB.
	SQLDB() (*sql.DB, error)

	// Ping checks the database connection.
	Ping() error

	// Close closes the database connection.
	Close() error

	// Name returns the database type name.
	Name() string
}
