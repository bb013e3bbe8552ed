package permission

import (
	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/pkg/response"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes wires the permission endpoints on the cookie surface.
// The invalidate seam is itself permission-guarded.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireSession gin.HandlerFunc, requireManage gin.HandlerFunc) {
	rg.GET("/permissions", requireSession, h.list)
	rg.POST("/permissions/reload", requireSession, h.reload)
	rg.POST("/permissions/invalidate/:userId", requireSession, requireManage, h.invalidate)
}

func (h *Handler) list(c *gin.Context) {
	st := sessionstate.From(c)
	if !st.PermissionsLoaded {
		h.svc.Load(st, st.UserID, st.RoleID)
	}
	response.OK(c, gin.H{"data": st.Permissions})
}

func (h *Handler) reload(c *gin.Context) {
	st := sessionstate.From(c)
	actions := h.svc.Load(st, st.UserID, st.RoleID)
	response.OK(c, gin.H{"data": actions})
}

func (h *Handler) invalidate(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		response.BadRequest(c, "userId is required")
		return
	}
	if !h.svc.InvalidateLoaded(userID) {
		response.Fail(c, "No active sessions updated")
		return
	}
	response.OKMessage(c, "Permission cache invalidated")
}
