package handler

import (
	"net/http"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/middleware"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/model"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/pkg/apperrors"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/service"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc *service.WalletService
}

func NewAdminHandler(svc *service.WalletService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Credit applies a signed DGT adjustment to a user. Negative amounts debit.
func (h *AdminHandler) Credit(c *gin.Context) {
	admin := middleware.UserFromContext(c)
	var req model.AdminCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}
	result, appErr := h.svc.AdminCredit(c.Request.Context(), admin, req)
	if appErr != nil {
		c.Error(appErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}
