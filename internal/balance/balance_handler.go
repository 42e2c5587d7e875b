package balance

import (
	"errors"
	"net/http"

	balanceerrors "leaveflow/internal/balance/errors"
	"leaveflow/internal/shared/apperror"
	"leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	repo   Repository
	logger *zap.Logger
}

func NewHandler(repo Repository, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{repo: repo, logger: l}
}

func (h *Handler) GetByMember(c *gin.Context) {
	email := c.Param("email")

	b, err := h.repo.FindByMember(c.Request.Context(), c.Query("name"), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = balanceerrors.ErrBalanceNotFound
		}
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("balance lookup failed",
			zap.String("member_email", email),
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, b.Snapshot(), nil)
}
