package db

import (
	"testing"

	"github.com/ikkim/bookcity-backend/config"
	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SeedsAdminOnce(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	admin := config.AdminConfig{Username: "admin", Password: "s3cret-pass"}
	require.NoError(t, Migrate(conn, admin))
	require.NoError(t, Migrate(conn, admin))

	var users []model.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, model.RoleAdmin, users[0].Role)
	assert.True(t, util.VerifyPassword(users[0].PasswordHash, "s3cret-pass"))
}

func TestMigrate_NoAdminWithoutPassword(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	require.NoError(t, Migrate(conn, config.AdminConfig{Username: "admin"}))

	var count int64
	conn.Model(&model.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestMigrate_ReseedsAdminAfterTruncate(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	admin := config.AdminConfig{Username: "admin", Password: "s3cret-pass"}
	require.NoError(t, Migrate(conn, admin))

	pub := model.Publication{Category: model.CategoryNewspaper, Title: "Daily Mirror", Price: 60}
	require.NoError(t, conn.Create(&pub).Error)
	require.NoError(t, conn.Create(&model.Stock{PublicationID: pub.ID, Quantity: 5}).Error)
	require.NoError(t, conn.Create(&model.Customer{Name: "Perera Stores", CustomerType: model.CustomerPrepaid}).Error)

	require.NoError(t, TruncateAllTables(conn))

	for _, m := range []interface{}{&model.User{}, &model.Publication{}, &model.Stock{}, &model.Customer{}} {
		var count int64
		require.NoError(t, conn.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}

	require.NoError(t, Migrate(conn, admin))
	var users []model.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
}
