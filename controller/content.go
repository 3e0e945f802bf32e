package controller

import (
	"log/slog"
	"net/http"

	"github.com/Taolee-crypto/timelink-backend/logic"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const IdempotencyHeader = "Idempotency-Key"

// ContentController handles HTTP requests
type ContentController struct {
	contentLogic  *logic.ContentLogic
	playbackLogic *logic.PlaybackLogic
	logger        *slog.Logger
}

func NewContentController(contentLogic *logic.ContentLogic, playbackLogic *logic.PlaybackLogic, logger *slog.Logger) *ContentController {
	return &ContentController{contentLogic: contentLogic, playbackLogic: playbackLogic, logger: logger}
}

// Upload handles POST /contents
func (c *ContentController) Upload(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	var req logic.UploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	item, err := c.contentLogic.Upload(ctx.Request.Context(), user.ID, req)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, item)
}

// Charge handles POST /contents/:id/charge
func (c *ContentController) Charge(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	type Request struct {
		Amount decimal.Decimal `json:"amount"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	item, err := c.contentLogic.Charge(ctx.Request.Context(), user.ID, id, req.Amount)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// SetShared handles PATCH /contents/:id/share
func (c *ContentController) SetShared(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	type Request struct {
		Shared *bool `json:"shared" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	item, err := c.contentLogic.SetShared(ctx.Request.Context(), user.ID, id, *req.Shared)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// RequestAuth handles POST /contents/:id/auth-request
func (c *ContentController) RequestAuth(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req logic.AuthRequestInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	authReq, err := c.contentLogic.RequestAuth(ctx.Request.Context(), user.ID, id, req)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, authReq)
}

// AuthRequests handles GET /contents/:id/auth-requests
func (c *ContentController) AuthRequests(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	reqs, err := c.contentLogic.AuthRequests(ctx.Request.Context(), user, id)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"auth_requests": reqs})
}

// Approve handles POST /contents/:id/approve (admin)
func (c *ContentController) Approve(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	type Request struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	item, err := c.contentLogic.Approve(ctx.Request.Context(), id, *req.Approved)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// Play handles POST /contents/:id/play
func (c *ContentController) Play(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req logic.PlayRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, err.Error())
			return
		}
	}
	req.IdempotencyKey = ctx.GetHeader(IdempotencyHeader)
	result, err := c.playbackLogic.Play(ctx.Request.Context(), id, user.ID, req)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// Get handles GET /contents/:id
func (c *ContentController) Get(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	item, err := c.contentLogic.Get(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// Status handles GET /contents/:id/status
func (c *ContentController) Status(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	status, err := c.contentLogic.Status(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, status)
}

// ListMine handles GET /contents/my
func (c *ContentController) ListMine(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	items, err := c.contentLogic.ListMine(ctx.Request.Context(), user.ID, page(ctx))
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"contents": items})
}
