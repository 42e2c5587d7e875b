package leaverequest

import (
	"leaveflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb *redis.Client,
) {
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	if rdb != nil {
		requests.Use(middleware.Idempotency(rdb))
	}
	{
		requests.GET("", handler.GetAll)
		requests.GET("/:id", handler.GetById)
		requests.GET("/:id/history", handler.GetHistory)
		requests.POST("", handler.Submit)
		requests.POST("/:id/review", handler.CSPReview)
		requests.POST("/:id/client-response", handler.MarkClientResponse)
		requests.POST("/:id/send-to-payroll", handler.SendToPayroll)
		requests.POST("/:id/payroll-ack", handler.PayrollAck)
	}
}
