package controller

import (
	"log/slog"

	"github.com/Taolee-crypto/timelink-backend/logic"
	"github.com/Taolee-crypto/timelink-backend/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every HTTP route over svc.
func NewRouter(svc *logic.Services, logger *slog.Logger) *gin.Engine {
	userCtrl := NewUserController(svc.Users, logger)
	contentCtrl := NewContentController(svc.Contents, svc.Playback, logger)
	disputeCtrl := NewDisputeController(svc.Disputes, logger)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.GET("/healthz", Healthz)

	r.POST("/auth/register", userCtrl.Register)
	r.POST("/auth/login", userCtrl.Login)

	auth := middleware.Auth(svc.Users)
	admin := middleware.Admin()

	users := r.Group("/users/me", auth)
	users.GET("", userCtrl.GetUser)
	users.GET("/wallet", userCtrl.Wallet)
	users.GET("/transactions", userCtrl.Transactions)
	users.GET("/poc-history", userCtrl.PocHistory)

	contents := r.Group("/contents")
	contents.GET("/my", auth, contentCtrl.ListMine)
	contents.GET("/:id", contentCtrl.Get)
	contents.GET("/:id/status", contentCtrl.Status)
	contents.POST("", auth, contentCtrl.Upload)
	contents.POST("/:id/charge", auth, contentCtrl.Charge)
	contents.PATCH("/:id/share", auth, contentCtrl.SetShared)
	contents.POST("/:id/auth-request", auth, contentCtrl.RequestAuth)
	contents.GET("/:id/auth-requests", auth, contentCtrl.AuthRequests)
	contents.POST("/:id/approve", auth, admin, contentCtrl.Approve)
	contents.POST("/:id/play", auth, contentCtrl.Play)

	disputes := r.Group("/disputes", auth)
	disputes.POST("", disputeCtrl.File)
	disputes.GET("/my", disputeCtrl.ListMine)
	disputes.GET("/:id", disputeCtrl.Get)
	disputes.POST("/:id/resolve", admin, disputeCtrl.Resolve)

	admins := r.Group("/admin", auth, admin)
	admins.PATCH("/users/:id/active", userCtrl.SetActive)

	return r
}
