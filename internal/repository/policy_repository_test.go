package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker/internal/models"
	"gorm.io/datatypes"
)

func TestPolicySave_PersistsDisabled(t *testing.T) {
	db := openTestDB(t)
	repo := NewPolicyRepository(db)
	user := seedUser(t, db, "owner")

	// Inserting a disabled policy must store false, not a column default.
	require.NoError(t, repo.Save(&models.ReminderPolicy{
		UserID:     user.ID,
		Enabled:    false,
		Thresholds: datatypes.NewJSONSlice([]int{24, 6, 1}),
	}))

	stored, err := repo.Find(user.ID)
	require.NoError(t, err)
	require.False(t, stored.Enabled)

	// Flipping through the upsert path round-trips both directions.
	stored.Enabled = true
	require.NoError(t, repo.Save(stored))
	stored, err = repo.Find(user.ID)
	require.NoError(t, err)
	require.True(t, stored.Enabled)

	stored.Enabled = false
	require.NoError(t, repo.Save(stored))
	stored, err = repo.Find(user.ID)
	require.NoError(t, err)
	require.False(t, stored.Enabled)
}

func TestPolicySave_UpsertReplacesThresholds(t *testing.T) {
	db := openTestDB(t)
	repo := NewPolicyRepository(db)
	user := seedUser(t, db, "owner")

	require.NoError(t, repo.Save(&models.ReminderPolicy{
		UserID:     user.ID,
		Enabled:    true,
		Thresholds: datatypes.NewJSONSlice([]int{24, 6, 1}),
	}))
	require.NoError(t, repo.Save(&models.ReminderPolicy{
		UserID:     user.ID,
		Enabled:    true,
		Thresholds: datatypes.NewJSONSlice([]int{48}),
	}))

	stored, err := repo.Find(user.ID)
	require.NoError(t, err)
	require.Equal(t, []int{48}, []int(stored.Thresholds))

	var count int64
	require.NoError(t, db.Model(&models.ReminderPolicy{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
