package handler

import (
	"net/http"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/middleware"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/service"
	"github.com/gin-gonic/gin"
)

type EconomyHandler struct {
	xp *service.XPService
}

func NewEconomyHandler(xp *service.XPService) *EconomyHandler {
	return &EconomyHandler{xp: xp}
}

// Progress reports the caller's level and position within it.
func (h *EconomyHandler) Progress(c *gin.Context) {
	user := middleware.UserFromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"progress": h.xp.Progress(user),
	})
}

// Levels lists the cumulative XP threshold for each level up to 20, table
// and curve alike, for the client's level-up UI.
func (h *EconomyHandler) Levels(c *gin.Context) {
	levels := h.xp.Levels()
	out := make([]gin.H, 0, 20)
	for lvl := 1; lvl <= 20; lvl++ {
		out = append(out, gin.H{"level": lvl, "xp": levels.XPForLevel(lvl)})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "levels": out})
}
