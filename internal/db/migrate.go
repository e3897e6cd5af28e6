package db

import (
	"fmt"

	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Publication{},
		&model.Stock{},
		&model.Customer{},
		&model.Order{},
		&model.OrderItem{},
		&model.Subscription{},
		&model.SubscriptionItem{},
		&model.SubscriptionRun{},
		&model.Advertisement{},
		&model.Bill{},
	}
}

// Migrate runs database migrations and seeds the bootstrap admin.
func Migrate(conn *gorm.DB, admin config.AdminConfig) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedAdmin(conn, admin); err != nil {
		logger.Error("Failed to seed admin user during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedAdmin creates the first admin when the users table is empty.
func seedAdmin(conn *gorm.DB, admin config.AdminConfig) error {
	var count int64
	if err := conn.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Debug("Users already exist, skipping admin seed", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	if admin.Password == "" {
		logger.Warn("No users and ADMIN_PASSWORD is empty; nobody can log in until one is set")
		return nil
	}

	hash, err := util.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := model.User{
		Username:     admin.Username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := conn.Create(&user).Error; err != nil {
		return err
	}

	logger.Info("Bootstrap admin created", map[string]interface{}{
		"username": user.Username,
	})
	return nil
}
