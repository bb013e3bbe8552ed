package database

import (
	"fmt"

	"github.com/stafflink/core/internal/config"
	"github.com/stafflink/core/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDev() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.DSN,
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}
	return db, nil
}

// Migrate runs GORM auto-migration for all models and seeds the
// Administrator sentinel role.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.RoleModel{},
		&models.UserModel{},
		&models.UserSession{},
		&models.PermissionModel{},
		&models.RolePermission{},
		&models.DatasetModel{},
		&models.UserDataset{},
	); err != nil {
		return err
	}
	return seedRoles(db)
}

func seedRoles(db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.RoleModel{
		ID:   models.AdminRoleID,
		Name: models.AdminRoleName,
	}).Error
}
