package controller

import (
	"log/slog"
	"net/http"

	"github.com/Taolee-crypto/timelink-backend/logic"

	"github.com/gin-gonic/gin"
)

// UserController handles HTTP requests
type UserController struct {
	userLogic *logic.UserLogic
	logger    *slog.Logger
}

func NewUserController(logic *logic.UserLogic, logger *slog.Logger) *UserController {
	return &UserController{userLogic: logic, logger: logger}
}

// Register handles POST /auth/register
func (c *UserController) Register(ctx *gin.Context) {
	var req logic.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	session, err := c.userLogic.Register(ctx.Request.Context(), req)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, session)
}

// Login handles POST /auth/login
func (c *UserController) Login(ctx *gin.Context) {
	type Request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	session, err := c.userLogic.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// GetUser handles GET /users/me
func (c *UserController) GetUser(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	fresh, err := c.userLogic.GetUser(ctx.Request.Context(), user.ID)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, fresh)
}

// Wallet handles GET /users/me/wallet
func (c *UserController) Wallet(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	wallet, err := c.userLogic.Wallet(ctx.Request.Context(), user.ID)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, wallet)
}

// Transactions handles GET /users/me/transactions
func (c *UserController) Transactions(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	txs, err := c.userLogic.Transactions(ctx.Request.Context(), user.ID, page(ctx))
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// PocHistory handles GET /users/me/poc-history
func (c *UserController) PocHistory(ctx *gin.Context) {
	user, ok := extractUser(ctx)
	if !ok {
		return
	}
	events, err := c.userLogic.PocHistory(ctx.Request.Context(), user.ID, page(ctx))
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"events": events})
}

// SetActive handles PATCH /admin/users/:id/active (admin)
func (c *UserController) SetActive(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	type Request struct {
		Active *bool `json:"active" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	user, err := c.userLogic.SetActive(ctx.Request.Context(), id, *req.Active)
	if err != nil {
		fail(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}
