package repository

import (
	"github.com/yukikurage/project-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPolicyRepository is a GORM implementation of PolicyRepository
type GormPolicyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository creates a new PolicyRepository
func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &GormPolicyRepository{db: db}
}

// Find finds a user's reminder policy
func (r *GormPolicyRepository) Find(userID uint64) (*models.ReminderPolicy, error) {
	var policy models.ReminderPolicy
	if err := r.db.Where("user_id = ?", userID).First(&policy).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

// Save upserts a reminder policy keyed by user ID
func (r *GormPolicyRepository) Save(policy *models.ReminderPolicy) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "thresholds", "updated_at"}),
		}).
		Create(policy).Error
}
