package logic

import (
	"context"

	"github.com/Taolee-crypto/timelink-backend/config"
	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"
)

const (
	ReasonAuthRequested   = "verification requested"
	ReasonContentApproved = "content approved"
	ReasonContentRejected = "content rejected"
	ReasonDisputeUpheld   = "dispute upheld"
	ReasonFalseDispute    = "false dispute"
)

// PocTracker maintains the bounded proof-of-contribution index.
type PocTracker struct {
	econ config.Economy
}

func NewPocTracker(econ config.Economy) *PocTracker {
	return &PocTracker{econ: econ}
}

// Apply adds delta to the user's index, saturating at the configured bounds,
// and records the event. Out-of-range results are clamped, never rejected.
func (p *PocTracker) Apply(ctx context.Context, st *dao.Store, userID uint64, delta float64, reason string) (*models.PocEvent, error) {
	var ev *models.PocEvent
	err := st.Transaction(ctx, func(tx *dao.Store) error {
		ok, err := tx.Users.ApplyPoc(userID, delta, p.econ.PocMin, p.econ.PocMax)
		if err != nil {
			return internal("apply poc", err)
		}
		if !ok {
			return notFound("user")
		}
		user, err := tx.Users.GetUserByID(userID)
		if err != nil {
			return internal("reload user", err)
		}
		ev = &models.PocEvent{
			UserID:   userID,
			Delta:    delta,
			PocAfter: user.PocIndex,
			Reason:   reason,
		}
		if err := tx.PocEvents.SavePocEvent(ev); err != nil {
			return internal("save poc event", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}
