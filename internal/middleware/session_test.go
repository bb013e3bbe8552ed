package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stafflink/core/internal/database"
	"github.com/stafflink/core/internal/models"
	sessionmod "github.com/stafflink/core/internal/modules/auth/session"
	"github.com/stafflink/core/internal/pkg/sessionstate"
)

func newSessionService(t *testing.T) (*gorm.DB, *sessionmod.Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db, sessionmod.NewService(db, nil)
}

func sessionRouter(svc *sessionmod.Service) *gin.Engine {
	r := gin.New()
	r.Use(WithSession())
	r.GET("/guarded", RequireSession(svc), func(c *gin.Context) {
		st := sessionstate.From(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "user_id": st.UserID})
	})
	return r
}

func TestRequireSessionWithoutCookie(t *testing.T) {
	_, svc := newSessionService(t)
	r := sessionRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	// The AJAX surface reports auth failures with HTTP 200.
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not authenticated", body["message"])
}

func TestRequireSessionWithValidCookie(t *testing.T) {
	db, svc := newSessionService(t)
	u := &models.UserModel{Username: "sam", Password: "x", RoleID: models.AdminRoleID, IsActive: true}
	require.NoError(t, db.Create(u).Error)

	token, ok := svc.Create(u.ID, nil, sessionmod.ClientMeta{}, &sessionstate.State{})
	require.True(t, ok)

	r := sessionRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: sessionmod.CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, u.ID, body["user_id"])
}

func TestRequireSessionWithInvalidatedCookie(t *testing.T) {
	db, svc := newSessionService(t)
	u := &models.UserModel{Username: "tess", Password: "x", RoleID: models.AdminRoleID, IsActive: true}
	require.NoError(t, db.Create(u).Error)

	token, ok := svc.Create(u.ID, nil, sessionmod.ClientMeta{}, &sessionstate.State{})
	require.True(t, ok)
	require.True(t, svc.Invalidate(token, nil))

	r := sessionRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: sessionmod.CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}
