package logic

import (
	"log/slog"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/dao"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a plain limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps a requested window to sane bounds.
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// Services bundles the business logic built over one store.
type Services struct {
	Users    *UserLogic
	Contents *ContentLogic
	Playback *PlaybackLogic
	Disputes *DisputeLogic
	Ledger   *Ledger
	Poc      *PocTracker
}

func NewServices(store *dao.Store, cfg *config.Config, media MediaResolver, logger *slog.Logger) *Services {
	ledger := NewLedger()
	poc := NewPocTracker(cfg.Economy)
	return &Services{
		Users:    NewUserLogic(store, ledger, cfg.Auth, cfg.Economy),
		Contents: NewContentLogic(store, ledger, poc, media, cfg.Economy, logger),
		Playback: NewPlaybackLogic(store, ledger, cfg.Economy, logger),
		Disputes: NewDisputeLogic(store, ledger, poc, cfg.Economy, logger),
		Ledger:   ledger,
		Poc:      poc,
	}
}
