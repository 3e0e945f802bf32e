package logic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/shopspring/decimal"
)

// ErrConcurrentUpdate is returned when the pool kept changing under a play
// after one retry.
var ErrConcurrentUpdate = newError(ErrBusinessRule, "concurrent_update", "content pool changed concurrently")

type PlayRequest struct {
	Duration       int    `json:"duration"`
	Boosted        bool   `json:"boosted"`
	IdempotencyKey string `json:"-"`
}

type PlayResult struct {
	ContentID   uint64          `json:"content_id"`
	Consumed    decimal.Decimal `json:"consumed"`
	Revenue     decimal.Decimal `json:"revenue"`
	ItemBalance decimal.Decimal `json:"item_balance"`
	Pulse       decimal.Decimal `json:"pulse"`
	PlayCount   int64           `json:"play_count"`
	Boosted     bool            `json:"boosted"`
	Replayed    bool            `json:"replayed,omitempty"`
}

// PlaybackLogic settles plays: it drains the content pool and credits the
// owner's share.
type PlaybackLogic struct {
	store  *dao.Store
	ledger *Ledger
	econ   config.Economy
	logger *slog.Logger
}

func NewPlaybackLogic(store *dao.Store, ledger *Ledger, econ config.Economy, logger *slog.Logger) *PlaybackLogic {
	return &PlaybackLogic{store: store, ledger: ledger, econ: econ, logger: logger}
}

// checkPlayable returns the business error for an item that cannot be played.
func checkPlayable(item *models.ContentItem) error {
	switch {
	case item.AuthStatus != models.AuthVerified || !item.Shared:
		return ErrContentUnavailable
	case item.RevenueHeld:
		return ErrContentDisputed
	case !item.ItemBalance.IsPositive():
		return ErrContentExhausted
	}
	return nil
}

// Play settles one playback of contentID by playerID.
func (l *PlaybackLogic) Play(ctx context.Context, contentID, playerID uint64, req PlayRequest) (*PlayResult, error) {
	duration := req.Duration
	if duration <= 0 {
		duration = 1
	}
	if err := checkIdempotencyKey(req.IdempotencyKey); err != nil {
		return nil, err
	}

	var key, fp string
	if req.IdempotencyKey != "" {
		var err error
		key = scopedKey(scopePlay, playerID, req.IdempotencyKey)
		fp, err = fingerprint(contentID, duration, req.Boosted)
		if err != nil {
			return nil, internal("fingerprint", err)
		}
	}

	var result *PlayResult
	err := l.store.Transaction(ctx, func(tx *dao.Store) error {
		if key != "" {
			var prev PlayResult
			hit, err := replay(tx, key, fp, &prev)
			if err != nil {
				return err
			}
			if hit {
				prev.Replayed = true
				result = &prev
				return nil
			}
		}

		item, err := tx.Contents.GetContentByID(contentID)
		if err != nil {
			return lookupErr("content", err)
		}
		if err := checkPlayable(item); err != nil {
			return err
		}
		owner, err := tx.Users.GetUserByID(item.OwnerID)
		if err != nil {
			return lookupErr("owner", err)
		}
		if owner.Forfeited {
			return ErrContentUnavailable
		}

		multiplier := decimal.NewFromInt(1)
		if req.Boosted {
			multiplier = decimal.NewFromFloat(l.econ.BoostedMultiplier)
		}
		var consumed, revenue, pulse decimal.Decimal
		// A pool drained by a concurrent play is re-read and consumed once
		// more at its new size.
		for attempt := 0; ; attempt++ {
			consumed = decimal.Min(decimal.NewFromInt(int64(duration)), item.ItemBalance)
			revenue = consumed.Mul(decimal.NewFromFloat(l.econ.RevenueShare)).Mul(multiplier)
			pulse = consumed.Mul(multiplier)

			ok, err := tx.Contents.Consume(contentID, consumed, pulse, revenue)
			if err != nil {
				return internal("consume", err)
			}
			if ok {
				break
			}
			fresh, err := tx.Contents.GetContentByID(contentID)
			if err != nil {
				return lookupErr("content", err)
			}
			if err := checkPlayable(fresh); err != nil {
				return err
			}
			if attempt > 0 {
				return ErrConcurrentUpdate
			}
			item = fresh
		}

		// Anonymous or unknown players have no counter to bump.
		if _, err := tx.Users.AddCounter(playerID, dao.CounterSpent, consumed); err != nil {
			return internal("count spend", err)
		}

		if revenue.IsPositive() {
			cid, pid := contentID, playerID
			_, err = l.ledger.Credit(ctx, tx, Entry{
				UserID:        item.OwnerID,
				Amount:        revenue,
				Type:          models.TxEarn,
				Note:          fmt.Sprintf("playback of content %d", contentID),
				ContentID:     &cid,
				CounterpartID: &pid,
			})
			if err != nil {
				return err
			}
		}

		after, err := tx.Contents.GetContentByID(contentID)
		if err != nil {
			return internal("reload content", err)
		}
		ev := &models.PlayEvent{
			ContentID:         contentID,
			PlayerID:          playerID,
			Consumed:          consumed,
			RevenueCredited:   revenue,
			ItemBalanceAfter:  after.ItemBalance,
			RequestedDuration: duration,
			Boosted:           req.Boosted,
		}
		if err := tx.PlayEvents.SavePlayEvent(ev); err != nil {
			return internal("save play event", err)
		}

		result = &PlayResult{
			ContentID:   contentID,
			Consumed:    consumed,
			Revenue:     revenue,
			ItemBalance: after.ItemBalance,
			Pulse:       after.Pulse,
			PlayCount:   after.PlayCount,
			Boosted:     req.Boosted,
		}
		if key != "" {
			return remember(tx, key, scopePlay, playerID, fp, result)
		}
		return nil
	})
	if err != nil {
		// A request with the same key may have committed while this one ran.
		if key != "" && !errors.Is(err, ErrIdempotencyMismatch) {
			var prev PlayResult
			if hit, rerr := replay(l.store.WithContext(ctx), key, fp, &prev); rerr == nil && hit {
				prev.Replayed = true
				return &prev, nil
			}
		}
		return nil, err
	}
	if !result.Replayed {
		l.logger.Debug("play settled", "content_id", contentID, "player_id", playerID,
			"consumed", result.Consumed.String(), "revenue", result.Revenue.String())
	}
	return result, nil
}
