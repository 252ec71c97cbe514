package database_test

import (
	"context"
	"testing"

	"sprift/internal/database"
	"sprift/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMigratesModels(t *testing.T) {
	db, err := database.Open(context.Background(), "sqlite", "file:database_open?mode=memory&cache=shared")
	require.NoError(t, err)

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "table for %T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Notification{}, "idx_notification_unique"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), "oracle", "x")
	assert.Error(t, err)
}
