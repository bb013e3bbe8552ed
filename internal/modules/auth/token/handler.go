// Package token exposes the bearer credential surface: minting from an
// authenticated cookie session, and the stateless API endpoints that accept
// only bearer credentials. Bearer validity is wall-clock only: revoking the
// session that minted a credential does not revoke the credential.
package token

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/middleware"
	"github.com/stafflink/core/internal/models"
	sessionmod "github.com/stafflink/core/internal/modules/auth/session"
	"github.com/stafflink/core/internal/modules/dataset"
	jwtpkg "github.com/stafflink/core/internal/pkg/jwt"
	"github.com/stafflink/core/internal/pkg/response"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

// JWTCookieName is the fallback credential cookie for clients that cannot
// set an Authorization header.
const JWTCookieName = "jwt_token"

var errLoadDatasets = errors.New("could not load datasets")

type Handler struct {
	sessions     *sessionmod.Service
	datasets     *dataset.Service
	secureCookie bool
}

func NewHandler(sessions *sessionmod.Service, datasets *dataset.Service, secureCookie bool) *Handler {
	return &Handler{sessions: sessions, datasets: datasets, secureCookie: secureCookie}
}

// RegisterMint wires the session-authenticated mint endpoint on the cookie
// surface.
func (h *Handler) RegisterMint(rg *gin.RouterGroup, requireSession gin.HandlerFunc) {
	rg.POST("/auth/token", requireSession, h.mint)
}

// RegisterAPI wires the pure bearer surface.
func (h *Handler) RegisterAPI(rg *gin.RouterGroup) {
	rg.GET("/me", middleware.RequireAuth(), h.me)
	rg.GET("/datasets", middleware.RequireAuth(), h.listDatasets)
	rg.GET("/admin/sessions", middleware.RequireRole(models.AdminRoleID), h.adminSessions)
}

func (h *Handler) mint(c *gin.Context) {
	st := sessionstate.From(c)
	signed, err := jwtpkg.Sign(jwtpkg.Identity{
		UserID:    st.UserID,
		Email:     st.Email,
		RoleID:    st.RoleID,
		DatasetID: st.DatasetID,
	})
	if err != nil {
		response.Fail(c, "Could not issue token")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(JWTCookieName, signed, int(jwtpkg.DefaultTTL.Seconds()), "/", "", h.secureCookie, true)
	response.OK(c, gin.H{"token": signed, "expires_in": int(jwtpkg.DefaultTTL.Seconds())})
}

func (h *Handler) me(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Unauthorized(c)
		return
	}
	response.OK(c, gin.H{
		"user_id":    id.UserID,
		"email":      id.Email,
		"role_id":    id.RoleID,
		"dataset_id": id.DatasetID,
	})
}

func (h *Handler) listDatasets(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.Unauthorized(c)
		return
	}
	views, ok := h.datasets.ListForUser(id.UserID)
	if !ok {
		response.InternalError(c, errLoadDatasets)
		return
	}
	response.OK(c, gin.H{"data": views})
}

// adminSessions lets an administrator inspect a user's live sessions over
// the bearer surface.
func (h *Handler) adminSessions(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		response.BadRequest(c, "user_id is required")
		return
	}
	sessions, ok := h.sessions.ListActive(userID)
	if !ok {
		response.InternalError(c, errors.New("could not list sessions"))
		return
	}
	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, gin.H{
			"id":            s.ID,
			"user_id":       s.UserID,
			"public_ip":     s.PublicIP,
			"browser_info":  s.BrowserInfo,
			"last_activity": s.LastActivity,
			"expires_at":    s.ExpiresAt,
		})
	}
	response.OK(c, gin.H{"data": items})
}
