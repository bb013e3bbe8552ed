package permission

import (
	"testing"

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

const clerkRoleID = 5

func newTestEnv(t *testing.T) (*gorm.DB, *Service, *sessionmod.Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	sessions := sessionmod.NewService(db, nil)
	return db, NewService(db, sessions, nil), sessions
}

func seedClerk(t *testing.T, db *gorm.DB, username string, grants ...string) *models.UserModel {
	t.Helper()
	require.NoError(t, db.Where("id = ?", clerkRoleID).
		FirstOrCreate(&models.RoleModel{ID: clerkRoleID, Name: "Clerk"}).Error)

	u := &models.UserModel{
		Username: username,
		Password: "x",
		RoleID:   clerkRoleID,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)

	for _, action := range grants {
		perm := &models.PermissionModel{Action: action}
		require.NoError(t, db.Where("action = ?", action).FirstOrCreate(perm).Error)
		require.NoError(t, db.Create(&models.RolePermission{RoleID: clerkRoleID, PermissionID: perm.ID}).Error)
	}
	return u
}

func seedAdmin(t *testing.T, db *gorm.DB, username string) *models.UserModel {
	t.Helper()
	u := &models.UserModel{
		Username: username,
		Password: "x",
		RoleID:   models.AdminRoleID,
		IsActive: true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestAdministratorBypassesGrantTable(t *testing.T) {
	db, svc, _ := newTestEnv(t)
	u := seedAdmin(t, db, "root")

	// No grant rows exist at all, including for made-up actions.
	for _, action := range []string{"employee.edit", "debt.write-off", "no.such.grant"} {
		assert.True(t, svc.HasForUser(u.ID, action), action)
	}

	st := &sessionstate.State{UserID: u.ID, RoleID: models.AdminRoleID}
	assert.True(t, svc.Has(st, "anything.at.all"))
}

func TestHasFailsClosedWithoutIdentity(t *testing.T) {
	_, svc, _ := newTestEnv(t)

	assert.False(t, svc.Has(nil, "employee.view"))
	assert.False(t, svc.Has(&sessionstate.State{}, "employee.view"))
	assert.False(t, svc.HasForUser("", "employee.view"))
	assert.False(t, svc.HasForUser("ghost", "employee.view"))
}

func TestCachedListIsAuthoritative(t *testing.T) {
	db, svc, _ := newTestEnv(t)
	u := seedClerk(t, db, "clerk1", "shop.view")

	st := &sessionstate.State{
		UserID:            u.ID,
		RoleID:            clerkRoleID,
		Permissions:       []string{"evaluation.view"},
		PermissionsLoaded: true,
	}
	// The live grant table says shop.view; the cache wins anyway.
	assert.False(t, svc.Has(st, "shop.view"))
	assert.True(t, svc.Has(st, "evaluation.view"))
}

func TestLiveQueryFallback(t *testing.T) {
	db, svc, _ := newTestEnv(t)
	u := seedClerk(t, db, "clerk2", "shop.view", "sales.view")

	st := &sessionstate.State{UserID: u.ID, RoleID: clerkRoleID}
	assert.True(t, svc.Has(st, "shop.view"))
	assert.False(t, svc.Has(st, "debt.write-off"))
}

func TestLiveQueryRequiresActiveUser(t *testing.T) {
	db, svc, _ := newTestEnv(t)
	u := seedClerk(t, db, "clerk3", "shop.view")
	require.NoError(t, db.Model(&models.UserModel{}).Where("id = ?", u.ID).Update("is_active", false).Error)

	assert.False(t, svc.HasForUser(u.ID, "shop.view"))
}

func TestLoadPopulatesStateAndSessionCache(t *testing.T) {
	db, svc, sessions := newTestEnv(t)
	u := seedClerk(t, db, "clerk4", "shop.view", "employee.view")

	token, ok := sessions.Create(u.ID, nil, sessionmod.ClientMeta{}, &sessionstate.State{})
	require.True(t, ok)

	st := &sessionstate.State{Token: token, UserID: u.ID, RoleID: clerkRoleID}
	actions := svc.Load(st, u.ID, clerkRoleID)
	assert.Equal(t, []string{"employee.view", "shop.view"}, actions) // ordered by action
	assert.True(t, st.PermissionsLoaded)

	// The durable payload now carries the cache; a fresh validation sees it.
	fresh := &sessionstate.State{Token: token}
	require.True(t, sessions.Validate(fresh))
	assert.True(t, fresh.PermissionsLoaded)
	assert.Equal(t, actions, fresh.Permissions)
}

func TestLoadEmptyGrantSetStillCaches(t *testing.T) {
	db, svc, _ := newTestEnv(t)
	u := seedClerk(t, db, "clerk5")

	st := &sessionstate.State{UserID: u.ID, RoleID: clerkRoleID}
	actions := svc.Load(st, u.ID, clerkRoleID)
	assert.NotNil(t, actions)
	assert.Empty(t, actions)
	assert.True(t, st.PermissionsLoaded)
	assert.False(t, svc.Has(st, "shop.view"))
}

func TestInvalidateLoadedClearsDurableCache(t *testing.T) {
	db, svc, sessions := newTestEnv(t)
	u := seedClerk(t, db, "clerk6", "shop.view")

	token, ok := sessions.Create(u.ID, nil, sessionmod.ClientMeta{}, &sessionstate.State{})
	require.True(t, ok)
	svc.Load(&sessionstate.State{Token: token, UserID: u.ID, RoleID: clerkRoleID}, u.ID, clerkRoleID)

	require.True(t, svc.InvalidateLoaded(u.ID))

	fresh := &sessionstate.State{Token: token}
	require.True(t, sessions.Validate(fresh))
	assert.False(t, fresh.PermissionsLoaded, "cache must fall back to the live query")
}
