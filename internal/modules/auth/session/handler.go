package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stafflink/core/internal/pkg/flash"
	"github.com/stafflink/core/internal/pkg/response"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

type Handler struct {
	svc          *Service
	flash        *flash.Store
	secureCookie bool
	// onLogin runs after a successful login with the fresh state; the app
	// wires the permission cache preload here.
	onLogin func(c *gin.Context, st *sessionstate.State)
}

func NewHandler(svc *Service, fl *flash.Store, secureCookie bool, onLogin func(*gin.Context, *sessionstate.State)) *Handler {
	return &Handler{svc: svc, flash: fl, secureCookie: secureCookie, onLogin: onLogin}
}

// RegisterRoutes wires the cookie-surface session endpoints. requireSession
// guards the endpoints that only make sense with a validated session;
// rateLimit applies to login only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireSession, rateLimit gin.HandlerFunc) {
	rg.POST("/login", rateLimit, h.login)
	rg.POST("/logout", h.logout)
	rg.POST("/logout-all", requireSession, h.logoutAll)
	rg.GET("/session", requireSession, h.current)
	rg.GET("/sessions", requireSession, h.list)
	rg.GET("/flash", h.takeFlash)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	st := sessionstate.From(c)
	meta := ClientMeta{
		PublicIP:    c.ClientIP(),
		LocalIP:     c.Request.RemoteAddr,
		BrowserInfo: c.Request.UserAgent(),
	}
	token, u, err := h.svc.Login(dto.Username, dto.Password, meta, dto.Extra, st)
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound), errors.Is(err, errWrongPassword):
			response.Fail(c, "Invalid credentials")
		case errors.Is(err, errUserInactive):
			response.Fail(c, "Account disabled")
		default:
			response.Fail(c, response.MsgNotAuthenticated)
		}
		return
	}

	if h.onLogin != nil {
		h.onLogin(c, st)
	}
	h.setCookie(c, token)
	response.OK(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":       u.ID,
			"username": u.Username,
			"name":     u.Name,
			"email":    u.Email,
			"role_id":  u.RoleID,
			"role":     u.Role.Name,
		},
	})
}

func (h *Handler) logout(c *gin.Context) {
	var dto LogoutDTO
	_ = c.ShouldBindJSON(&dto) // empty body is fine

	cookieToken, _ := c.Cookie(CookieName)
	st := sessionstate.From(c)
	token := ResolveToken(dto.Token, cookieToken, st)

	ok := h.svc.Invalidate(token, st)
	h.clearCookie(c)
	if !ok {
		response.Fail(c, response.MsgNotAuthenticated)
		return
	}
	response.OKMessage(c, "Logged out")
}

func (h *Handler) logoutAll(c *gin.Context) {
	st := sessionstate.From(c)
	if !h.svc.InvalidateAllForUser(st.UserID) {
		response.Fail(c, response.MsgNotAuthenticated)
		return
	}
	st.Reset()
	h.clearCookie(c)
	response.OKMessage(c, "Logged out everywhere")
}

func (h *Handler) current(c *gin.Context) {
	st := sessionstate.From(c)
	response.OK(c, gin.H{
		"user": gin.H{
			"id":       st.UserID,
			"username": st.Username,
			"name":     st.Name,
			"email":    st.Email,
			"role_id":  st.RoleID,
			"role":     st.RoleName,
		},
		"dataset_id":   st.DatasetID,
		"dataset_name": st.DatasetName,
	})
}

func (h *Handler) list(c *gin.Context) {
	st := sessionstate.From(c)
	sessions, ok := h.svc.ListActive(st.UserID)
	if !ok {
		response.Fail(c, response.MsgNotAuthenticated)
		return
	}

	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, gin.H{
			"id":            s.ID,
			"public_ip":     s.PublicIP,
			"browser_info":  s.BrowserInfo,
			"created":       s.CreatedAt,
			"last_activity": s.LastActivity,
			"expires_at":    s.ExpiresAt,
			"current":       s.Token == st.Token,
		})
	}
	response.OK(c, gin.H{"data": items})
}

func (h *Handler) takeFlash(c *gin.Context) {
	token, _ := c.Cookie(CookieName)
	msg := h.flash.Take(c.Request.Context(), token)
	response.OK(c, gin.H{"message": msg})
}

func (h *Handler) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(AbsoluteTTL.Seconds()), "/", "", h.secureCookie, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.secureCookie, true)
}
