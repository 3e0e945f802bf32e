package logic

import (
	"context"
	"errors"

	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Entry describes one balance movement.
type Entry struct {
	UserID        uint64
	Amount        decimal.Decimal
	Type          models.TxType
	Note          string
	ContentID     *uint64
	CounterpartID *uint64
}

// Ledger applies balance mutations. Each mutation and its Transaction row
// are written in the same database transaction; when the Store passed in is
// already transactional the work joins it as a savepoint.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

func creditCounter(t models.TxType) dao.Counter {
	if t == models.TxEarn {
		return dao.CounterEarned
	}
	return dao.CounterNone
}

// debitCounter picks the lifetime counter a debit bumps. Funding a content
// pool is not spend; total_spent only grows on playback.
func debitCounter(t models.TxType) dao.Counter {
	if t == models.TxExchange {
		return dao.CounterExchanged
	}
	return dao.CounterNone
}

// Credit increases a user's available balance by e.Amount.
func (l *Ledger) Credit(ctx context.Context, st *dao.Store, e Entry) (*models.Transaction, error) {
	if !e.Amount.IsPositive() {
		return nil, validationf("credit amount must be positive")
	}
	var row *models.Transaction
	err := st.Transaction(ctx, func(tx *dao.Store) error {
		ok, err := tx.Users.AddAvailable(e.UserID, e.Amount, creditCounter(e.Type))
		if err != nil {
			return internal("credit", err)
		}
		if !ok {
			if err := diagnose(tx, e.UserID); err != nil {
				return err
			}
			return internal("credit", errors.New("no row updated"))
		}
		row, err = l.append(tx, e, e.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Debit decreases a user's available balance by e.Amount. The balance check
// and the decrement are one conditional update.
func (l *Ledger) Debit(ctx context.Context, st *dao.Store, e Entry) (*models.Transaction, error) {
	if !e.Amount.IsPositive() {
		return nil, validationf("debit amount must be positive")
	}
	var row *models.Transaction
	err := st.Transaction(ctx, func(tx *dao.Store) error {
		ok, err := tx.Users.SubtractAvailable(e.UserID, e.Amount, debitCounter(e.Type))
		if err != nil {
			return internal("debit", err)
		}
		if !ok {
			if err := diagnose(tx, e.UserID); err != nil {
				return err
			}
			return ErrInsufficientBalance
		}
		row, err = l.append(tx, e, e.Amount.Neg())
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Lock moves the whole available balance into locked_balance and suspends
// spending. It returns a nil row when the user is already suspended or
// forfeited.
func (l *Ledger) Lock(ctx context.Context, st *dao.Store, userID uint64, note string) (*models.Transaction, error) {
	return l.move(ctx, st, userID, note, (*dao.UserDAO).LockBalance)
}

// Unlock releases locked_balance back to the available balance. It returns a
// nil row when there is nothing locked.
func (l *Ledger) Unlock(ctx context.Context, st *dao.Store, userID uint64, note string) (*models.Transaction, error) {
	return l.move(ctx, st, userID, note, (*dao.UserDAO).UnlockBalance)
}

func (l *Ledger) move(ctx context.Context, st *dao.Store, userID uint64, note string, op func(*dao.UserDAO, uint64) (bool, error)) (*models.Transaction, error) {
	var row *models.Transaction
	err := st.Transaction(ctx, func(tx *dao.Store) error {
		ok, err := op(tx.Users, userID)
		if err != nil {
			return internal("move balance", err)
		}
		if !ok {
			if _, err := tx.Users.GetUserByID(userID); err != nil {
				return lookupErr("user", err)
			}
			return nil
		}
		// available+locked is unchanged, so the row carries zero.
		row, err = l.append(tx, Entry{UserID: userID, Type: models.TxAdjustment, Note: note}, decimal.Zero)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Forfeit zeroes every balance and marks the user forfeited. Repeat calls
// return a nil row.
func (l *Ledger) Forfeit(ctx context.Context, st *dao.Store, userID uint64, note string) (*models.Transaction, error) {
	var row *models.Transaction
	err := st.Transaction(ctx, func(tx *dao.Store) error {
		user, err := tx.Users.GetUserForUpdate(userID)
		if err != nil {
			return lookupErr("user", err)
		}
		if user.Forfeited {
			return nil
		}
		ok, err := tx.Users.Forfeit(userID)
		if err != nil {
			return internal("forfeit", err)
		}
		if !ok {
			return nil
		}
		amount := user.AvailableBalance.Add(user.LockedBalance).Neg()
		row, err = l.append(tx, Entry{UserID: userID, Type: models.TxAdjustment, Note: note}, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (l *Ledger) append(tx *dao.Store, e Entry, amount decimal.Decimal) (*models.Transaction, error) {
	user, err := tx.Users.GetUserByID(e.UserID)
	if err != nil {
		return nil, internal("reload user", err)
	}
	row := &models.Transaction{
		UserID:        e.UserID,
		ContentID:     e.ContentID,
		Type:          e.Type,
		Amount:        amount,
		BalanceAfter:  user.AvailableBalance,
		CounterpartID: e.CounterpartID,
		Note:          e.Note,
	}
	if err := tx.Transactions.SaveTransaction(row); err != nil {
		return nil, internal("save transaction", err)
	}
	return row, nil
}

// diagnose explains why a guarded balance update touched no row.
func diagnose(tx *dao.Store, userID uint64) error {
	user, err := tx.Users.GetUserByID(userID)
	if err != nil {
		return lookupErr("user", err)
	}
	switch {
	case user.Forfeited:
		return ErrAccountForfeited
	case user.Suspended:
		return ErrBalanceSuspended
	}
	return nil
}

func lookupErr(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return internal("load "+what, err)
}
