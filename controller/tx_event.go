package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/Taolee-crypto/timelink-backend/logic"
)

// TxEventController runs the ledger relay
type TxEventController struct {
	txEventLogic *logic.TxEventLogic
	logger       *slog.Logger
}

func NewTxEventController(logic *logic.TxEventLogic, logger *slog.Logger) *TxEventController {
	return &TxEventController{txEventLogic: logic, logger: logger}
}

// StartNostrServices relays committed transactions until ctx is done.
func (c *TxEventController) StartNostrServices(ctx context.Context, interval time.Duration) {
	c.logger.Info("ledger relay started", "interval", interval)
	c.txEventLogic.Run(ctx, interval)
	c.logger.Info("ledger relay stopped")
}
