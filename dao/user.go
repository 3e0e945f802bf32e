package dao

import (
	"fmt"

	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter names a lifetime statistic bumped alongside a balance change.
type Counter string

const (
	CounterNone      Counter = ""
	CounterEarned    Counter = "total_earned"
	CounterSpent     Counter = "total_spent"
	CounterExchanged Counter = "total_exchanged"
)

func (c Counter) valid() bool {
	switch c {
	case CounterNone, CounterEarned, CounterSpent, CounterExchanged:
		return true
	}
	return false
}

// UserDAO handles user-related database operations
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// CreateUser creates a new user
func (d *UserDAO) CreateUser(user *models.User) error {
	return d.db.Create(user).Error
}

// GetUserByID retrieves a user by id
func (d *UserDAO) GetUserByID(id uint64) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserForUpdate retrieves a user and holds a row lock until the
// surrounding transaction ends. SQLite ignores the locking clause; its single
// writer already serializes the transaction.
func (d *UserDAO) GetUserForUpdate(id uint64) (*models.User, error) {
	var user models.User
	if err := d.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (d *UserDAO) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmailOrUsername reports whether either identifier is taken.
func (d *UserDAO) ExistsByEmailOrUsername(email, username string) (bool, error) {
	var n int64
	err := d.db.Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&n).Error
	return n > 0, err
}

// AddAvailable increases the available balance of a non-forfeited user and
// bumps counter by the same amount. It reports whether a row was updated.
func (d *UserDAO) AddAvailable(id uint64, amount decimal.Decimal, counter Counter) (bool, error) {
	if !counter.valid() {
		return false, fmt.Errorf("unknown counter %q", counter)
	}
	updates := map[string]interface{}{
		"available_balance": gorm.Expr("available_balance + ?", amount),
	}
	if counter != CounterNone {
		updates[string(counter)] = gorm.Expr(string(counter)+" + ?", amount)
	}
	res := d.db.Model(&models.User{}).
		Where("id = ? AND forfeited = ?", id, false).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

// SubtractAvailable decreases the available balance only if it covers
// amount and the account is neither forfeited nor suspended. The check and
// the decrement are one statement.
func (d *UserDAO) SubtractAvailable(id uint64, amount decimal.Decimal, counter Counter) (bool, error) {
	if !counter.valid() {
		return false, fmt.Errorf("unknown counter %q", counter)
	}
	updates := map[string]interface{}{
		"available_balance": gorm.Expr("available_balance - ?", amount),
	}
	if counter != CounterNone {
		updates[string(counter)] = gorm.Expr(string(counter)+" + ?", amount)
	}
	res := d.db.Model(&models.User{}).
		Where("id = ? AND forfeited = ? AND suspended = ? AND available_balance >= ?", id, false, false, amount).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

// AddCounter bumps a lifetime counter without touching any balance. A
// missing user is not an error; it reports false.
func (d *UserDAO) AddCounter(id uint64, counter Counter, amount decimal.Decimal) (bool, error) {
	if !counter.valid() || counter == CounterNone {
		return false, fmt.Errorf("unknown counter %q", counter)
	}
	res := d.db.Model(&models.User{}).
		Where("id = ?", id).
		Update(string(counter), gorm.Expr(string(counter)+" + ?", amount))
	return res.RowsAffected == 1, res.Error
}

// LockBalance moves the whole available balance into locked_balance and
// marks the account suspended. Already suspended or forfeited accounts are
// left untouched.
func (d *UserDAO) LockBalance(id uint64) (bool, error) {
	res := d.db.Model(&models.User{}).
		Where("id = ? AND suspended = ? AND forfeited = ?", id, false, false).
		Updates(map[string]interface{}{
			"locked_balance":    gorm.Expr("locked_balance + available_balance"),
			"available_balance": gorm.Expr("0"),
			"suspended":         true,
		})
	return res.RowsAffected == 1, res.Error
}

// UnlockBalance moves locked_balance back into the available balance.
func (d *UserDAO) UnlockBalance(id uint64) (bool, error) {
	res := d.db.Model(&models.User{}).
		Where("id = ? AND suspended = ? AND forfeited = ?", id, true, false).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance + locked_balance"),
			"locked_balance":    gorm.Expr("0"),
			"suspended":         false,
		})
	return res.RowsAffected == 1, res.Error
}

// Forfeit zeroes every balance and marks the account forfeited for good.
func (d *UserDAO) Forfeit(id uint64) (bool, error) {
	res := d.db.Model(&models.User{}).
		Where("id = ? AND forfeited = ?", id, false).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("0"),
			"locked_balance":    gorm.Expr("0"),
			"mined_balance":     gorm.Expr("0"),
			"forfeited":         true,
			"suspended":         true,
		})
	return res.RowsAffected == 1, res.Error
}

// ApplyPoc adds delta to poc_index, saturating at [min, max], in a single
// statement.
func (d *UserDAO) ApplyPoc(id uint64, delta, min, max float64) (bool, error) {
	expr := gorm.Expr(
		"CASE WHEN poc_index + ? > ? THEN ? WHEN poc_index + ? < ? THEN ? ELSE poc_index + ? END",
		delta, max, max, delta, min, min, delta,
	)
	res := d.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("poc_index", expr)
	return res.RowsAffected == 1, res.Error
}

// AddStrike increments false_dispute_strikes.
func (d *UserDAO) AddStrike(id uint64) (bool, error) {
	res := d.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("false_dispute_strikes", gorm.Expr("false_dispute_strikes + 1"))
	return res.RowsAffected == 1, res.Error
}

// SetActive toggles the account's active flag.
func (d *UserDAO) SetActive(id uint64, active bool) (bool, error) {
	res := d.db.Model(&models.User{}).Where("id = ?", id).Update("active", active)
	return res.RowsAffected == 1, res.Error
}

// SetRole changes the account's role.
func (d *UserDAO) SetRole(id uint64, role string) (bool, error) {
	res := d.db.Model(&models.User{}).Where("id = ?", id).Update("role", role)
	return res.RowsAffected == 1, res.Error
}
