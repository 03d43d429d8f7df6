// Package store implements persistence for every domain package on gorm.
// A transaction started by WithinTx travels in the context; every method
// called with that context joins it.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/crockshine/backend-erp/internal/apperr"
)

type txKey struct{}

// Store is the gorm backed repository
type Store struct {
	db *gorm.DB
}

// New wraps db
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithinTx runs fn in a transaction. Nested calls join the outer
// transaction; a returned error rolls the whole unit back.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(context.WithValue(ctx, txKey{}, tx))
		return fnErr
	})
	if err == nil || err == fnErr {
		return err
	}
	// begin or commit failed
	return classify("transaction", err)
}

// conn returns the transaction carried by ctx or the base handle
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

// classify translates a driver error into an apperr kind
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperr.Error{Kind: apperr.ErrNotFound, Message: op + ": record not found"}
	}
	if isUniqueViolation(err) {
		return &apperr.Error{Kind: apperr.ErrConflict, Message: op + ": duplicate value"}
	}
	return apperr.Persistence(op, pkgerrors.WithStack(err), isTransient(err))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	// sqlite reports constraint failures only as text
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01": // deadlock_detected
			return true
		}
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205, // ER_LOCK_WAIT_TIMEOUT
			1213: // ER_LOCK_DEADLOCK
			return true
		}
	}
	return false
}

// notFound translates gorm's missing record error for a known entity
func notFound(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, id)
	}
	return classify("get "+entity, err)
}

// conflict translates a unique violation into a Conflict naming the entity
func conflict(err error, entity, format string, args ...any) error {
	if err != nil && isUniqueViolation(err) {
		return apperr.Conflict(entity, format, args...)
	}
	return classify("create "+entity, err)
}

// requireAffected turns a zero-row delete into NotFound
func requireAffected(res *gorm.DB, entity, id string) error {
	if res.Error != nil {
		return classify("delete "+entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}

func pageBounds(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return offset, limit
}
