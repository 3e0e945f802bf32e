// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OpenDB returns a migrated SQLite database living in t's temp dir.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := dao.Open(config.Database{
		Driver:   "sqlite",
		Path:     filepath.Join(t.TempDir(), "timelink.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dao.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Store wraps OpenDB in a dao.Store.
func Store(t testing.TB) *dao.Store {
	return dao.NewStore(OpenDB(t))
}

// Config returns a valid configuration with the default economy.
func Config() *config.Config {
	cfg := &config.Config{}
	cfg.Auth = config.Auth{Secret: "test-secret", ExpHour: 1, BcryptCost: 4}
	cfg.Economy = config.DefaultEconomy()
	cfg.Nostr.BatchSize = 100
	return cfg
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SeedUser inserts a user holding balance, with the matching ledger row so
// the account reconciles.
func SeedUser(t testing.TB, st *dao.Store, name string, balance int64) *models.User {
	t.Helper()
	user := &models.User{
		Email:            name + "@example.com",
		Username:         name,
		PasswordHash:     "x",
		Role:             models.RoleUser,
		AvailableBalance: decimal.NewFromInt(balance),
		PocIndex:         1,
		Active:           true,
	}
	if err := st.Users.CreateUser(user); err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	if balance > 0 {
		row := &models.Transaction{
			UserID:       user.ID,
			Type:         models.TxInitial,
			Amount:       decimal.NewFromInt(balance),
			BalanceAfter: decimal.NewFromInt(balance),
			Note:         "seed",
		}
		if err := st.Transactions.SaveTransaction(row); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}
	return user
}

// SeedContent inserts a verified, shared item with the given pool.
func SeedContent(t testing.TB, st *dao.Store, ownerID uint64, pool int64) *models.ContentItem {
	t.Helper()
	item := &models.ContentItem{
		OwnerID:        ownerID,
		Title:          "track",
		MediaType:      "audio",
		MediaURL:       "https://media.example.com/track.mp3",
		ItemBalance:    decimal.NewFromInt(pool),
		MaxItemBalance: decimal.NewFromInt(pool),
		AuthStatus:     models.AuthVerified,
		Shared:         true,
	}
	if err := st.Contents.CreateContent(item); err != nil {
		t.Fatalf("seed content: %v", err)
	}
	return item
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t testing.TB, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

// AssertDec compares got to want at ledger precision.
func AssertDec(t testing.TB, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Round(6).Equal(Dec(t, want)) {
		t.Fatalf("%s = %s, want %s", what, got.String(), want)
	}
}

// AssertReconciles checks that a user's ledger rows add up to their
// available plus locked balance.
func AssertReconciles(t testing.TB, st *dao.Store, userID uint64) {
	t.Helper()
	user, err := st.Users.GetUserByID(userID)
	if err != nil {
		t.Fatalf("load user %d: %v", userID, err)
	}
	sum, err := st.Transactions.SumAmountByUser(userID)
	if err != nil {
		t.Fatalf("sum transactions: %v", err)
	}
	held := user.AvailableBalance.Add(user.LockedBalance)
	if !sum.Round(6).Equal(held.Round(6)) {
		t.Fatalf("user %d: ledger sum %s != available+locked %s", userID, sum, held)
	}
}
