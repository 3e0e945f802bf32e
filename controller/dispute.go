package controller

import (
	"log/slog"
	"net/http"

	"github.com/Taolee-crypto/timelink-backend/logic"

	"github.com/gin-gonic/gin"
)

// DisputeController handles HTTP requests
type DisputeController struct {
	disputeLogic *logic.DisputeLogic
	logger       *slog.Logger
}

func NewDisputeController(logic *logic.DisputeLogic, logger *slog.Logger) *DisputeController {
	return &DisputeController{disputeLogic: logic, logger: logger}
}

// File handles POST /disputes
func (c *DisputeController) File(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	var req logic.FileDisputeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	dispute, err := c.disputeLogic.File(ctx.Request.Context(), user.ID, req)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, dispute)
}

// Resolve handles POST /disputes/:id/resolve (admin)
func (c *DisputeController) Resolve(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	type Request struct {
		Upheld *bool  `json:"upheld" binding:"required"`
		Note   string `json:"note"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	result, err := c.disputeLogic.Resolve(ctx.Request.Context(), user.ID, id, logic.ResolveRequest{
		Upheld:         *req.Upheld,
		Note:           req.Note,
		IdempotencyKey: ctx.GetHeader(IdempotencyHeader),
	})
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Get handles GET /disputes/:id
func (c *DisputeController) Get(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	dispute, err := c.disputeLogic.Get(ctx.Request.Context(), user, id)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, dispute)
}

// ListMine handles GET /disputes/my
func (c *DisputeController) ListMine(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	disputes, err := c.disputeLogic.ListMine(ctx.Request.Context(), user.ID, page(ctx))
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"disputes": disputes})
}
