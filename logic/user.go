package logic

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the credential issued by Register and Login.
type Session struct {
	User     *models.User `json:"user"`
	Token    string       `json:"token"`
	ExpireAt time.Time    `json:"expire_at"`
}

// Claims carried by access tokens.
type Claims struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// Wallet is a snapshot of a user's balances and derived amounts.
type Wallet struct {
	AvailableBalance decimal.Decimal `json:"available_balance"`
	LockedBalance    decimal.Decimal `json:"locked_balance"`
	MinedBalance     decimal.Decimal `json:"mined_balance"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalExchanged   decimal.Decimal `json:"total_exchanged"`
	Exchangeable     decimal.Decimal `json:"exchangeable"`
	Mineable         decimal.Decimal `json:"mineable"`
	PocIndex         float64         `json:"poc_index"`
	Suspended        bool            `json:"suspended"`
	Forfeited        bool            `json:"forfeited"`
}

// UserLogic handles user-related business logic
type UserLogic struct {
	store  *dao.Store
	ledger *Ledger
	auth   config.Auth
	econ   config.Economy
}

func NewUserLogic(store *dao.Store, ledger *Ledger, auth config.Auth, econ config.Economy) *UserLogic {
	return &UserLogic{store: store, ledger: ledger, auth: auth, econ: econ}
}

// Register creates an account funded with the initial grant.
func (l *UserLogic) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, validationf("a valid email is required")
	}
	if username == "" {
		return nil, validationf("username is required")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		return nil, validationf("password must be at least %d characters", minPasswordLen)
	}

	cost := l.auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return nil, internal("hash password", err)
	}

	var user *models.User
	err = l.store.Transaction(ctx, func(tx *dao.Store) error {
		taken, err := tx.Users.ExistsByEmailOrUsername(email, username)
		if err != nil {
			return internal("check user", err)
		}
		if taken {
			return ErrAlreadyExists
		}
		role := models.RoleUser
		if l.auth.IsAdminEmail(email) {
			role = models.RoleAdmin
		}
		user = &models.User{
			Email:        email,
			Username:     username,
			PasswordHash: string(hash),
			Role:         role,
			PocIndex:     l.econ.PocDefault,
			Active:       true,
		}
		if err := tx.Users.CreateUser(user); err != nil {
			// A concurrent registration won the unique index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyExists
			}
			return internal("create user", err)
		}
		grant := decimal.NewFromFloat(l.econ.InitialGrant)
		if grant.IsPositive() {
			if _, err := l.ledger.Credit(ctx, tx, Entry{
				UserID: user.ID,
				Amount: grant,
				Type:   models.TxInitial,
				Note:   "initial grant",
			}); err != nil {
				return err
			}
		}
		user, err = tx.Users.GetUserByID(user.ID)
		if err != nil {
			return internal("reload user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.issue(user)
}

// Login checks a password and issues a token.
func (l *UserLogic) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationf("email and password are required")
	}
	user, err := l.store.WithContext(ctx).Users.GetUserByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, internal("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active || user.Forfeited {
		return nil, newError(ErrAuth, "account_disabled", "account is disabled")
	}
	return l.issue(user)
}

func (l *UserLogic) issue(user *models.User) (*Session, error) {
	token, expireAt, err := l.generateJWT(user)
	if err != nil {
		return nil, internal("sign token", err)
	}
	return &Session{User: user, Token: token, ExpireAt: expireAt}, nil
}

func (l *UserLogic) generateJWT(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expireAt := now.Add(time.Duration(l.auth.ExpHour) * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  now.Unix(),
			ExpiresAt: expireAt.Unix(),
		},
	})
	tokenString, err := token.SignedString([]byte(l.auth.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expireAt, nil
}

// Authenticate verifies a bearer token and returns the live account behind
// it. Inactive and forfeited accounts are refused.
func (l *UserLogic) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(l.auth.Secret), nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, newError(ErrAuth, "invalid_token", "invalid or expired token")
	}
	user, err := l.store.WithContext(ctx).Users.GetUserByID(claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrAuth, "invalid_token", "invalid or expired token")
	}
	if err != nil {
		return nil, internal("load user", err)
	}
	if !user.Active || user.Forfeited {
		return nil, newError(ErrAuth, "account_disabled", "account is disabled")
	}
	return user, nil
}

// GetUser retrieves user info
func (l *UserLogic) GetUser(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := l.store.WithContext(ctx).Users.GetUserByID(userID)
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return user, nil
}

// Wallet reports balances together with the exchangeable and mineable
// estimates derived from lifetime spend. Spend already exchanged is not
// exchangeable again.
func (l *UserLogic) Wallet(ctx context.Context, userID uint64) (*Wallet, error) {
	user, err := l.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rate := decimal.NewFromFloat(l.econ.ExchangeRate)
	exchangeable := decimal.Max(decimal.Zero, user.TotalSpent.Sub(user.TotalExchanged).Mul(rate))
	mineable := decimal.Zero
	if user.PocIndex > 0 {
		mineable = user.TotalSpent.Mul(rate).Mul(decimal.NewFromFloat(user.PocIndex))
	}
	return &Wallet{
		AvailableBalance: user.AvailableBalance,
		LockedBalance:    user.LockedBalance,
		MinedBalance:     user.MinedBalance,
		TotalSpent:       user.TotalSpent,
		TotalEarned:      user.TotalEarned,
		TotalExchanged:   user.TotalExchanged,
		Exchangeable:     exchangeable,
		Mineable:         mineable,
		PocIndex:         user.PocIndex,
		Suspended:        user.Suspended,
		Forfeited:        user.Forfeited,
	}, nil
}

func (l *UserLogic) Transactions(ctx context.Context, userID uint64, page Page) ([]models.Transaction, error) {
	txs, err := l.store.WithContext(ctx).Transactions.ListTransactionsByUser(userID, page.Limit, page.Offset)
	if err != nil {
		return nil, internal("list transactions", err)
	}
	return txs, nil
}

func (l *UserLogic) PocHistory(ctx context.Context, userID uint64, page Page) ([]models.PocEvent, error) {
	events, err := l.store.WithContext(ctx).PocEvents.ListPocEventsByUser(userID, page.Limit, page.Offset)
	if err != nil {
		return nil, internal("list poc events", err)
	}
	return events, nil
}

// GrantAdmin gives the account registered under email the admin role.
func (l *UserLogic) GrantAdmin(ctx context.Context, email string) (*models.User, error) {
	st := l.store.WithContext(ctx)
	user, err := st.Users.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, lookupErr("user", err)
	}
	if _, err := st.Users.SetRole(user.ID, models.RoleAdmin); err != nil {
		return nil, internal("set role", err)
	}
	user.Role = models.RoleAdmin
	return user, nil
}

// SetActive enables or disables an account. Disabled accounts can neither
// log in nor use tokens issued earlier.
func (l *UserLogic) SetActive(ctx context.Context, userID uint64, active bool) (*models.User, error) {
	st := l.store.WithContext(ctx)
	ok, err := st.Users.SetActive(userID, active)
	if err != nil {
		return nil, internal("set active", err)
	}
	if !ok {
		return nil, notFound("user")
	}
	return l.GetUser(ctx, userID)
}

// SetActiveByEmail is SetActive for operators who only know the email.
func (l *UserLogic) SetActiveByEmail(ctx context.Context, email string, active bool) (*models.User, error) {
	user, err := l.store.WithContext(ctx).Users.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, lookupErr("user", err)
	}
	return l.SetActive(ctx, user.ID, active)
}
