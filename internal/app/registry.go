package app

import (
	"database/sql"

	"leaveflow/internal/assignment"
	"leaveflow/internal/audit"
	"leaveflow/internal/balance"
	"leaveflow/internal/leaverequest"
	"leaveflow/internal/messaging/kafka"
	"leaveflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	assignmentRepo := assignment.NewRepository(gormDB, rdb)
	auditRepo := audit.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	requestRepo := leaverequest.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Resolver & Services ---
	resolver := assignment.NewResolver(assignmentRepo)
	requestService := leaverequest.NewService(db, requestRepo, auditRepo, balanceRepo, resolver, outboxRepo)

	// --- Handlers ---
	assignmentHandler := assignment.NewHandler(assignmentRepo)
	balanceHandler := balance.NewHandler(balanceRepo)
	requestHandler := leaverequest.NewHandlerWithRedis(requestService, rdb)

	// --- Routes ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	api := router.Group("/api/v1")
	{
		leaverequest.RegisterRoutes(api, requestHandler, rdb)
		assignment.RegisterRoutes(api, assignmentHandler)
		balance.RegisterRoutes(api, balanceHandler)
	}

	return nil
}
