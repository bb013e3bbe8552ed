// Package permission answers "does this principal hold this capability".
// Checks prefer the permission list cached on the session; the cache is not
// auto-invalidated on role or grant changes; administration flows must call
// InvalidateLoaded to close the staleness window.
package permission

import (
	"github.com/stafflink/core/internal/models"
	sessionmod "github.com/stafflink/core/internal/modules/auth/session"
	"github.com/stafflink/core/internal/pkg/sessionstate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	sessions *sessionmod.Service
	logger   *zap.Logger
}

func NewService(db *gorm.DB, sessions *sessionmod.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, sessions: sessions, logger: logger}
}

// Has reports whether the current principal holds the action. The
// Administrator bypass is checked before anything else; after that a loaded
// cache is authoritative and no storage lookup occurs. Fails closed when no
// identity is resolvable.
func (s *Service) Has(st *sessionstate.State, action string) bool {
	if st == nil || !st.Authenticated() {
		return false
	}
	if st.IsAdmin() {
		return true
	}
	if st.PermissionsLoaded {
		return st.HasCachedPermission(action)
	}
	return s.HasForUser(st.UserID, action)
}

// HasForUser runs the live relational check, bypassing any cache: the user
// must be active and their role must carry a grant for the action. The
// Administrator role short-circuits without consulting the grant table.
func (s *Service) HasForUser(userID, action string) bool {
	if userID == "" || action == "" {
		return false
	}

	var u models.UserModel
	if err := s.db.Preload("Role").Where("id = ?", userID).First(&u).Error; err != nil {
		s.logger.Warn("permission user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	if !u.IsActive {
		return false
	}
	if u.IsAdmin() {
		return true
	}

	var count int64
	err := s.db.Model(&models.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ? AND permissions.action = ?", u.RoleID, action).
		Count(&count).Error
	if err != nil {
		s.logger.Warn("permission grant lookup failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return count > 0
}

// Load queries every grant of the role, caches the ordered list on the
// request state and the durable session payload, and returns it. Call once
// per login (or role change); subsequent Has calls are cache hits.
func (s *Service) Load(st *sessionstate.State, userID string, roleID uint) []string {
	var actions []string
	err := s.db.Model(&models.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.action").
		Pluck("permissions.action", &actions).Error
	if err != nil {
		s.logger.Warn("permission load failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if actions == nil {
		actions = []string{}
	}

	if st != nil {
		st.Permissions = actions
		st.PermissionsLoaded = true
		if st.Token != "" {
			s.sessions.UpdatePayload(st.Token, func(p *models.SessionPayload) {
				p.Permissions = actions
			})
		}
	}
	return actions
}

// InvalidateLoaded drops the cached permission list from every active
// session of the user. Role-administration flows call this after mutating
// grants so the next check falls back to the live query.
func (s *Service) InvalidateLoaded(userID string) bool {
	return s.sessions.UpdatePayloadForUser(userID, func(p *models.SessionPayload) {
		p.Permissions = nil
	})
}
