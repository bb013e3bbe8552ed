package dataset

import (
	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/pkg/response"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

type setActiveDTO struct {
	DatasetID string `json:"dataset_id" binding:"required"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireSession gin.HandlerFunc) {
	g := rg.Group("/datasets", requireSession)
	g.GET("", h.list)
	g.GET("/active", h.active)
	g.POST("/active", h.setActive)
}

func (h *Handler) list(c *gin.Context) {
	st := sessionstate.From(c)
	views, ok := h.svc.ListForUser(st.UserID)
	if !ok {
		response.Fail(c, "Could not load datasets")
		return
	}
	response.OK(c, gin.H{"data": views})
}

func (h *Handler) active(c *gin.Context) {
	st := sessionstate.From(c)
	v := h.svc.Active(st)
	if v == nil {
		response.Fail(c, "No dataset assigned")
		return
	}
	response.OK(c, gin.H{"dataset": v})
}

func (h *Handler) setActive(c *gin.Context) {
	var dto setActiveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	st := sessionstate.From(c)
	if !h.svc.SetActive(st, dto.DatasetID) {
		response.Fail(c, response.MsgPermissionDenied)
		return
	}
	response.OK(c, gin.H{"dataset": gin.H{"id": st.DatasetID, "name": st.DatasetName}})
}
