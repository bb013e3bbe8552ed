package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/stafflink/core/internal/models"
	"github.com/stafflink/core/internal/pkg/sessionstate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service is the durable session store. Storage failures never escape its
// methods: every operation degrades to false after logging, so a storage
// outage reads as "not authenticated" rather than a 500.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger}
}

// DB exposes the underlying handle for sibling auth modules.
func (s *Service) DB() *gorm.DB { return s.db }

// Login verifies credentials and opens a session. The returned error is one
// of the package sentinels for credential problems; storage errors during
// session creation come back as errUserNotFound-shaped failures already
// folded into the bool contract of Create.
func (s *Service) Login(username, password string, meta ClientMeta, extra map[string]string, st *sessionstate.State) (string, *models.UserModel, error) {
	var u models.UserModel
	err := s.db.Preload("Role").Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			time.Sleep(3 * time.Second)
			return "", nil, errUserNotFound
		}
		s.logger.Warn("login user lookup failed", zap.Error(err))
		return "", nil, errUserNotFound
	}
	if !u.IsActive {
		return "", nil, errUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		time.Sleep(3 * time.Second)
		return "", nil, errWrongPassword
	}

	token, ok := s.Create(u.ID, extra, meta, st)
	if !ok {
		return "", nil, errUserNotFound
	}

	now := time.Now()
	if err := s.db.Model(&models.UserModel{}).Where("id = ?", u.ID).
		Updates(map[string]interface{}{"last_login_time": &now, "last_login_ip": meta.PublicIP}).Error; err != nil {
		s.logger.Warn("login audit update failed", zap.String("user_id", u.ID), zap.Error(err))
	}

	st.UserID = u.ID
	st.Username = u.Username
	st.Name = u.Name
	st.Email = u.Email
	st.RoleID = u.RoleID
	st.RoleName = u.Role.Name
	return token, &u, nil
}

// Create opens a durable session for the user and mirrors extra into the
// request state. Returns ("", false) on persistence failure.
func (s *Service) Create(userID string, extra map[string]string, meta ClientMeta, st *sessionstate.State) (string, bool) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		s.logger.Warn("session token generation failed", zap.Error(err))
		return "", false
	}
	token := hex.EncodeToString(buf)

	now := time.Now()
	row := &models.UserSession{
		UserID:       userID,
		Token:        token,
		PublicIP:     meta.PublicIP,
		LocalIP:      meta.LocalIP,
		BrowserInfo:  meta.BrowserInfo,
		Payload:      models.SessionPayload{Extra: extra},
		ExpiresAt:    now.Add(AbsoluteTTL),
		LastActivity: now,
		IsActive:     true,
	}
	if err := s.db.Create(row).Error; err != nil {
		s.logger.Warn("session create failed", zap.String("user_id", userID), zap.Error(err))
		return "", false
	}

	st.Token = token
	st.Extra = extra
	return token, true
}

// Validate checks the state's token against the durable store, enforcing the
// inactivity ceiling and the absolute expiry, refreshes last_activity, and
// copies identity and payload back into the state. An expired session is
// soft-invalidated as a side effect.
func (s *Service) Validate(st *sessionstate.State) bool {
	if st == nil || st.Token == "" {
		return false
	}

	var row models.UserSession
	err := s.db.Where("token = ? AND is_active = ?", st.Token, true).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("session lookup failed", zap.Error(err))
		}
		return false
	}

	now := time.Now()
	if now.After(row.ExpiresAt) || now.Sub(row.LastActivity) > InactivityCeiling {
		s.deactivate(row.Token)
		return false
	}

	// last_activity races between concurrent requests are last-writer-wins.
	if err := s.db.Model(&models.UserSession{}).Where("token = ?", row.Token).
		Update("last_activity", now).Error; err != nil {
		s.logger.Warn("session touch failed", zap.Error(err))
		return false
	}

	var u models.UserModel
	if err := s.db.Preload("Role").Where("id = ?", row.UserID).First(&u).Error; err != nil {
		s.logger.Warn("session user lookup failed", zap.String("user_id", row.UserID), zap.Error(err))
		return false
	}
	if !u.IsActive {
		return false
	}

	st.UserID = u.ID
	st.Username = u.Username
	st.Name = u.Name
	st.Email = u.Email
	st.RoleID = u.RoleID
	st.RoleName = u.Role.Name
	st.DatasetID = row.Payload.DatasetID
	st.DatasetName = row.Payload.DatasetName
	st.Extra = row.Payload.Extra
	if row.Payload.Permissions != nil {
		st.Permissions = row.Payload.Permissions
		st.PermissionsLoaded = true
	}
	return true
}

// Invalidate marks the session for token inactive and clears the request
// state. Reports false when no token resolves or nothing was active.
// Invalidation is terminal; a second call on the same token is a safe no-op
// that also reports false.
func (s *Service) Invalidate(token string, st *sessionstate.State) bool {
	if token == "" {
		return false
	}
	res := s.db.Model(&models.UserSession{}).
		Where("token = ? AND is_active = ?", token, true).
		Update("is_active", false)
	if res.Error != nil {
		s.logger.Warn("session invalidate failed", zap.Error(res.Error))
		return false
	}
	if st != nil {
		st.Reset()
	}
	return res.RowsAffected > 0
}

// InvalidateAllForUser marks every session of the user inactive ("log out
// everywhere").
func (s *Service) InvalidateAllForUser(userID string) bool {
	if userID == "" {
		return false
	}
	err := s.db.Model(&models.UserSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
	if err != nil {
		s.logger.Warn("session invalidate-all failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return true
}

// Destroy invalidates the current session and clears all request state
// unconditionally, including non-session keys.
func (s *Service) Destroy(st *sessionstate.State) bool {
	if st == nil {
		return false
	}
	ok := s.Invalidate(st.Token, nil)
	st.Reset()
	return ok
}

// ListActive returns the user's live sessions, most recently active first.
func (s *Service) ListActive(userID string) ([]models.UserSession, bool) {
	var sessions []models.UserSession
	err := s.db.Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, time.Now()).
		Order("last_activity DESC").
		Find(&sessions).Error
	if err != nil {
		s.logger.Warn("session list failed", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return sessions, true
}

// UpdatePayload applies mutate to the payload of the active session for
// token and persists it.
func (s *Service) UpdatePayload(token string, mutate func(*models.SessionPayload)) bool {
	if token == "" || mutate == nil {
		return false
	}
	var row models.UserSession
	err := s.db.Where("token = ? AND is_active = ?", token, true).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("session payload lookup failed", zap.Error(err))
		}
		return false
	}
	mutate(&row.Payload)
	if err := s.db.Model(&models.UserSession{}).Where("token = ?", token).
		Update("payload", row.Payload).Error; err != nil {
		s.logger.Warn("session payload update failed", zap.Error(err))
		return false
	}
	return true
}

// UpdatePayloadForUser applies mutate to every active session of the user.
func (s *Service) UpdatePayloadForUser(userID string, mutate func(*models.SessionPayload)) bool {
	if userID == "" || mutate == nil {
		return false
	}
	var rows []models.UserSession
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&rows).Error; err != nil {
		s.logger.Warn("session payload scan failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	ok := true
	for i := range rows {
		mutate(&rows[i].Payload)
		if err := s.db.Model(&models.UserSession{}).Where("token = ?", rows[i].Token).
			Update("payload", rows[i].Payload).Error; err != nil {
			s.logger.Warn("session payload update failed", zap.Error(err))
			ok = false
		}
	}
	return ok
}

func (s *Service) deactivate(token string) {
	if err := s.db.Model(&models.UserSession{}).
		Where("token = ?", token).
		Update("is_active", false).Error; err != nil {
		s.logger.Warn("session deactivate failed", zap.Error(err))
	}
}

// ResolveToken picks the session token to operate on: explicit argument
// first, then the client cookie, then the in-memory state.
func ResolveToken(explicit, cookie string, st *sessionstate.State) string {
	if explicit != "" {
		return explicit
	}
	if cookie != "" {
		return cookie
	}
	if st != nil {
		return st.Token
	}
	return ""
}
