package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Taolee-crypto/timelink-backend/logic"

	"github.com/gin-gonic/gin"
)

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, logic.ErrAlreadyResolved),
		errors.Is(err, logic.ErrDisputeAlreadyOpen),
		errors.Is(err, logic.ErrAlreadyExists),
		errors.Is(err, logic.ErrAuthRequestPending),
		errors.Is(err, logic.ErrConcurrentUpdate):
		return http.StatusConflict
	}
	switch logic.KindOf(err) {
	case logic.ErrValidation:
		return http.StatusBadRequest
	case logic.ErrAuth:
		return http.StatusUnauthorized
	case logic.ErrForbidden:
		return http.StatusForbidden
	case logic.ErrNotFound:
		return http.StatusNotFound
	case logic.ErrBusinessRule:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fail writes err to the client. Internal errors are logged and replaced by
// a generic message.
func fail(ctx *gin.Context, logger *slog.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = ctx.Error(err)
		logger.Error("request failed", "path", ctx.FullPath(), "error", err)
		ctx.JSON(status, gin.H{"error": "internal error", "code": "internal"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error(), "code": logic.Code(err)})
}

func badRequest(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "validation"})
}

func paramID(ctx *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}

func page(ctx *gin.Context) logic.Page {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	offset, _ := strconv.Atoi(ctx.Query("offset"))
	return logic.NewPage(limit, offset)
}

// Healthz handles GET /healthz
func Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
