// Package dataset resolves which logical data partition a user is working
// against. The selection lives in session state for as long as the session
// does; the assignment table itself is never mutated here.
package dataset

import (
	"errors"

	"github.com/stafflink/core/internal/models"
	sessionmod "github.com/stafflink/core/internal/modules/auth/session"
	"github.com/stafflink/core/internal/pkg/sessionstate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// View is the dataset projection returned to callers.
type View struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

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

// ListForUser returns every dataset assigned to the user, default first,
// then by name.
func (s *Service) ListForUser(userID string) ([]View, bool) {
	var views []View
	err := s.db.Model(&models.UserDataset{}).
		Select("datasets.id, datasets.name, user_datasets.is_default").
		Joins("JOIN datasets ON datasets.id = user_datasets.dataset_id").
		Where("user_datasets.user_id = ?", userID).
		Order("user_datasets.is_default DESC, datasets.name").
		Scan(&views).Error
	if err != nil {
		s.logger.Warn("dataset list failed", zap.String("user_id", userID), zap.Error(err))
		return nil, false
	}
	return views, true
}

// Active resolves the user's current dataset. A cached selection is
// revalidated against the assignment table; otherwise the default-flagged
// assignment wins, then the first assignment by name. Every fallback
// resolution is persisted into the session. Returns nil when the user has
// no assignments at all.
func (s *Service) Active(st *sessionstate.State) *View {
	if st == nil || !st.Authenticated() {
		return nil
	}

	if st.DatasetID != "" {
		if v, ok := s.assignment(st.UserID, st.DatasetID); ok {
			return v
		}
		// Stale selection (assignment revoked); fall through to defaults.
	}

	views, ok := s.ListForUser(st.UserID)
	if !ok || len(views) == 0 {
		return nil
	}
	resolved := views[0] // default-first ordering makes this the right pick
	s.persist(st, resolved)
	return &resolved
}

// SetActive selects a dataset for the session. Returns false without
// touching session state when the dataset is not assigned to the user, so a
// caller can never select across tenants.
func (s *Service) SetActive(st *sessionstate.State, datasetID string) bool {
	if st == nil || !st.Authenticated() || datasetID == "" {
		return false
	}
	v, ok := s.assignment(st.UserID, datasetID)
	if !ok {
		return false
	}
	s.persist(st, *v)
	return true
}

// assignment fetches the dataset view iff it is assigned to the user.
func (s *Service) assignment(userID, datasetID string) (*View, bool) {
	var v View
	err := s.db.Model(&models.UserDataset{}).
		Select("datasets.id, datasets.name, user_datasets.is_default").
		Joins("JOIN datasets ON datasets.id = user_datasets.dataset_id").
		Where("user_datasets.user_id = ? AND user_datasets.dataset_id = ?", userID, datasetID).
		First(&v).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("dataset assignment lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, false
	}
	return &v, true
}

func (s *Service) persist(st *sessionstate.State, v View) {
	st.DatasetID = v.ID
	st.DatasetName = v.Name
	if st.Token != "" {
		s.sessions.UpdatePayload(st.Token, func(p *models.SessionPayload) {
			p.DatasetID = v.ID
			p.DatasetName = v.Name
		})
	}
}
