package logic

import (
	"context"
	"log/slog"
	"time"

	"github.com/Taolee-crypto/timelink-backend/dao"
	"github.com/Taolee-crypto/timelink-backend/models"
	"github.com/Taolee-crypto/timelink-backend/pkg"
)

// Publisher relays ledger messages to an external log.
type Publisher interface {
	Publish(ctx context.Context, msg pkg.LedgerMessage) (string, error)
}

// TxEventLogic relays committed Transaction rows, oldest first. Rows are
// marked published only after the relay accepted them, so a crash between
// the two replays the row instead of losing it.
type TxEventLogic struct {
	store     *dao.Store
	publisher Publisher
	batchSize int
	logger    *slog.Logger
}

func NewTxEventLogic(store *dao.Store, publisher Publisher, batchSize int, logger *slog.Logger) *TxEventLogic {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &TxEventLogic{store: store, publisher: publisher, batchSize: batchSize, logger: logger}
}

func transactionMessage(tx *models.Transaction) pkg.LedgerMessage {
	return pkg.LedgerMessage{Transaction: &pkg.TransactionPayload{
		ID:            tx.ID,
		User:          tx.UserID,
		ContentID:     tx.ContentID,
		Type:          string(tx.Type),
		Amount:        tx.Amount.String(),
		BalanceAfter:  tx.BalanceAfter.String(),
		CounterpartID: tx.CounterpartID,
		Note:          tx.Note,
		CreatedAt:     tx.CreatedAt.Unix(),
	}}
}

// PublishPending relays one batch of unpublished rows and returns how many
// were accepted. It stops at the first relay failure to keep ordering.
func (l *TxEventLogic) PublishPending(ctx context.Context) (int, error) {
	st := l.store.WithContext(ctx)
	rows, err := st.Transactions.ListUnpublished(l.batchSize)
	if err != nil {
		return 0, internal("list unpublished", err)
	}
	var done []uint64
	var pubErr error
	for i := range rows {
		eventID, err := l.publisher.Publish(ctx, transactionMessage(&rows[i]))
		if err != nil {
			pubErr = err
			break
		}
		l.logger.Debug("transaction relayed", "tx_id", rows[i].ID, "event_id", eventID)
		done = append(done, rows[i].ID)
	}
	if err := st.Transactions.MarkPublished(done); err != nil {
		return 0, internal("mark published", err)
	}
	return len(done), pubErr
}

// Run relays pending rows every interval until ctx is cancelled.
func (l *TxEventLogic) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := l.PublishPending(ctx)
		if err != nil && ctx.Err() == nil {
			l.logger.Warn("ledger relay failed", "published", n, "error", err)
		}
		// Drain backlog without waiting when a full batch went out.
		if err == nil && n == l.batchSize {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
