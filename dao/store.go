package dao

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the DAOs over one gorm handle. A Store obtained inside
// Transaction is bound to that transaction, so every DAO call made through it
// commits or rolls back together.
type Store struct {
	db *gorm.DB

	Users        *UserDAO
	Contents     *ContentDAO
	Transactions *TransactionDAO
	PocEvents    *PocEventDAO
	PlayEvents   *PlayEventDAO
	Disputes     *DisputeDAO
	Idempotency  *IdempotencyDAO
	AuthRequests *AuthRequestDAO
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserDAO(db),
		Contents:     NewContentDAO(db),
		Transactions: NewTransactionDAO(db),
		PocEvents:    NewPocEventDAO(db),
		PlayEvents:   NewPlayEventDAO(db),
		Disputes:     NewDisputeDAO(db),
		Idempotency:  NewIdempotencyDAO(db),
		AuthRequests: NewAuthRequestDAO(db),
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

// WithContext returns a Store whose queries observe ctx.
func (s *Store) WithContext(ctx context.Context) *Store {
	return NewStore(s.db.WithContext(ctx))
}

// Transaction runs fn in a database transaction. The transaction commits
// only if fn returns nil; an error or a panic rolls everything back. When s
// is already transactional, gorm nests the call as a savepoint.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
