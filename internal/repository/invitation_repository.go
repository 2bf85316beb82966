package repository

import (
	"time"

	"github.com/yukikurage/project-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// IssuePending inserts a pending invitation. On a key conflict the existing
// row is only refreshed while it is still active: the DO UPDATE is filtered
// by invitations.active, so an answered invitation is never re-armed. The
// caller inspects the returned row to detect that case.
func (r *GormInvitationRepository) IssuePending(inv *models.Invitation) (*models.Invitation, error) {
	inv.Active = true
	inv.Answer = false

	err := r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"updated_at": time.Now(),
			}),
			Where: clause.Where{
				Exprs: []clause.Expression{
					clause.Eq{Column: clause.Column{Table: "invitations", Name: "active"}, Value: true},
				},
			},
		}).
		Create(inv).Error
	if err != nil {
		return nil, err
	}

	return r.FindByKey(inv.Key)
}

// FindByKey finds an invitation by key with optional preloading
func (r *GormInvitationRepository) FindByKey(key string, preload ...string) (*models.Invitation, error) {
	var inv models.Invitation
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("key = ?", key).First(&inv).Error; err != nil {
		return nil, err
	}

	return &inv, nil
}

// Consume atomically transitions a pending invitation to its terminal state.
// The update is guarded by active = true, so of two concurrent answers
// exactly one observes RowsAffected == 1.
func (r *GormInvitationRepository) Consume(key string, accepted bool) (bool, error) {
	res := r.db.Model(&models.Invitation{}).
		Where("key = ? AND active = ?", key, true).
		Updates(map[string]interface{}{
			"active": false,
			"answer": accepted,
		})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}

// ListForProject lists invitations issued for a project
func (r *GormInvitationRepository) ListForProject(projectID uint64) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.Preload("Invitee").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}
