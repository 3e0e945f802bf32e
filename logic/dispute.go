package logic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"
)

type FileDisputeRequest struct {
	ContentID uint64                 `json:"content_id"`
	Category  models.DisputeCategory `json:"category"`
	Reason    string                 `json:"reason"`
}

type ResolveRequest struct {
	Upheld         bool   `json:"upheld"`
	Note           string `json:"note"`
	IdempotencyKey string `json:"-"`
}

type ResolveResult struct {
	Dispute         models.Dispute `json:"dispute"`
	OwnerUnlocked   bool           `json:"owner_unlocked"`
	DisputerStrikes int            `json:"disputer_strikes,omitempty"`
	Forfeited       bool           `json:"disputer_forfeited,omitempty"`
	Replayed        bool           `json:"replayed,omitempty"`
}

// DisputeLogic drives the pending → resolved_upheld | resolved_rejected
// state machine.
type DisputeLogic struct {
	store  *dao.Store
	ledger *Ledger
	poc    *PocTracker
	econ   config.Economy
	logger *slog.Logger
}

func NewDisputeLogic(store *dao.Store, ledger *Ledger, poc *PocTracker, econ config.Economy, logger *slog.Logger) *DisputeLogic {
	return &DisputeLogic{store: store, ledger: ledger, poc: poc, econ: econ, logger: logger}
}

// File opens a dispute against a content item, freezing the item's revenue
// and the owner's whole available balance.
func (l *DisputeLogic) File(ctx context.Context, disputerID uint64, req FileDisputeRequest) (*models.Dispute, error) {
	reason := strings.TrimSpace(req.Reason)
	if req.ContentID == 0 {
		return nil, validationf("content_id is required")
	}
	if !req.Category.Valid() {
		return nil, validationf("category must be one of copyright, fake, abuse, other")
	}
	if utf8.RuneCountInString(reason) < l.econ.MinReasonLength {
		return nil, validationf("reason must be at least %d characters", l.econ.MinReasonLength)
	}

	var dispute *models.Dispute
	err := l.store.Transaction(ctx, func(tx *dao.Store) error {
		// Filings against one item serialize on its row lock.
		item, err := tx.Contents.GetContentForUpdate(req.ContentID)
		if err != nil {
			return lookupErr("content", err)
		}
		if item.OwnerID == disputerID {
			return ErrSelfDispute
		}
		open, err := tx.Disputes.CountPendingByContent(item.ID)
		if err != nil {
			return internal("count disputes", err)
		}
		if open > 0 {
			return ErrDisputeAlreadyOpen
		}

		dispute = &models.Dispute{
			ContentID:  item.ID,
			DisputerID: disputerID,
			Category:   req.Category,
			Reason:     reason,
			Status:     models.DisputePending,
		}
		if err := tx.Disputes.CreateDispute(dispute); err != nil {
			return internal("create dispute", err)
		}
		if err := tx.Contents.SetRevenueHeld(item.ID, true); err != nil {
			return internal("hold revenue", err)
		}
		_, err = l.ledger.Lock(ctx, tx, item.OwnerID, fmt.Sprintf("locked by dispute %d", dispute.ID))
		return err
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("dispute filed", "dispute_id", dispute.ID, "content_id", dispute.ContentID, "disputer_id", disputerID)
	return dispute, nil
}

// Resolve finalizes a pending dispute. A second attempt fails with
// ErrAlreadyResolved.
func (l *DisputeLogic) Resolve(ctx context.Context, adminID, disputeID uint64, req ResolveRequest) (*ResolveResult, error) {
	if err := checkIdempotencyKey(req.IdempotencyKey); err != nil {
		return nil, err
	}
	note := strings.TrimSpace(req.Note)

	var key, fp string
	if req.IdempotencyKey != "" {
		var err error
		key = scopedKey(scopeResolve, adminID, req.IdempotencyKey)
		fp, err = fingerprint(disputeID, req.Upheld, note)
		if err != nil {
			return nil, internal("fingerprint", err)
		}
	}

	var result *ResolveResult
	err := l.store.Transaction(ctx, func(tx *dao.Store) error {
		if key != "" {
			var prev ResolveResult
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

		dispute, err := tx.Disputes.GetDisputeByID(disputeID)
		if err != nil {
			return lookupErr("dispute", err)
		}
		if dispute.Status.Terminal() {
			return ErrAlreadyResolved
		}
		item, err := tx.Contents.GetContentByID(dispute.ContentID)
		if err != nil {
			return lookupErr("content", err)
		}

		status := models.DisputeRejected
		if req.Upheld {
			status = models.DisputeUpheld
		}
		ok, err := tx.Disputes.Finalize(dispute.ID, status, note, time.Now().UTC())
		if err != nil {
			return internal("finalize dispute", err)
		}
		if !ok {
			return ErrAlreadyResolved
		}

		result = &ResolveResult{}
		if req.Upheld {
			if err := tx.Contents.Reject(item.ID); err != nil {
				return internal("reject content", err)
			}
			if _, err := l.poc.Apply(ctx, tx, item.OwnerID, l.econ.PocDisputeUpheld, ReasonDisputeUpheld); err != nil {
				return err
			}
		} else {
			if _, err := tx.Users.AddStrike(dispute.DisputerID); err != nil {
				return internal("add strike", err)
			}
			if _, err := l.poc.Apply(ctx, tx, dispute.DisputerID, l.econ.PocFalseDispute, ReasonFalseDispute); err != nil {
				return err
			}
			disputer, err := tx.Users.GetUserByID(dispute.DisputerID)
			if err != nil {
				return lookupErr("disputer", err)
			}
			result.DisputerStrikes = disputer.FalseDisputeStrikes
			if disputer.FalseDisputeStrikes >= l.econ.StrikeThreshold && !disputer.Forfeited {
				if _, err := l.ledger.Forfeit(ctx, tx, disputer.ID, fmt.Sprintf("forfeited after %d false disputes", disputer.FalseDisputeStrikes)); err != nil {
					return err
				}
				result.Forfeited = true
			}
			if err := tx.Contents.SetRevenueHeld(item.ID, false); err != nil {
				return internal("release revenue", err)
			}
		}

		// Funds stay frozen while any other dispute against the owner is open.
		pending, err := tx.Disputes.CountPendingByOwner(item.OwnerID)
		if err != nil {
			return internal("count owner disputes", err)
		}
		if pending == 0 {
			row, err := l.ledger.Unlock(ctx, tx, item.OwnerID, fmt.Sprintf("released by dispute %d", dispute.ID))
			if err != nil {
				return err
			}
			result.OwnerUnlocked = row != nil
		}

		final, err := tx.Disputes.GetDisputeByID(dispute.ID)
		if err != nil {
			return internal("reload dispute", err)
		}
		result.Dispute = *final
		if key != "" {
			return remember(tx, key, scopeResolve, adminID, fp, result)
		}
		return nil
	})
	if err != nil {
		if key != "" && !errors.Is(err, ErrIdempotencyMismatch) {
			var prev ResolveResult
			if hit, rerr := replay(l.store.WithContext(ctx), key, fp, &prev); rerr == nil && hit {
				prev.Replayed = true
				return &prev, nil
			}
		}
		return nil, err
	}
	if !result.Replayed {
		l.logger.Info("dispute resolved", "dispute_id", disputeID, "status", result.Dispute.Status,
			"owner_unlocked", result.OwnerUnlocked, "disputer_forfeited", result.Forfeited)
	}
	return result, nil
}

// Get returns a dispute to its filer or to an admin. Other callers see
// NotFound.
func (l *DisputeLogic) Get(ctx context.Context, viewer *models.User, disputeID uint64) (*models.Dispute, error) {
	dispute, err := l.store.WithContext(ctx).Disputes.GetDisputeByID(disputeID)
	if err != nil {
		return nil, lookupErr("dispute", err)
	}
	if viewer.Role != models.RoleAdmin && dispute.DisputerID != viewer.ID {
		return nil, notFound("dispute")
	}
	return dispute, nil
}

// ListMine lists disputes filed by userID.
func (l *DisputeLogic) ListMine(ctx context.Context, userID uint64, page Page) ([]models.Dispute, error) {
	disputes, err := l.store.WithContext(ctx).Disputes.ListDisputesByDisputer(userID, page.Limit, page.Offset)
	if err != nil {
		return nil, internal("list disputes", err)
	}
	return disputes, nil
}
