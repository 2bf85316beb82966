package repository

import (
	"time"

	"github.com/yukikurage/project-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// ListForUser lists projects the user created or is a member of
func (r *GormProjectRepository) ListForUser(userID uint64, offset, limit int) ([]models.Project, int64, error) {
	memberSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ?", userID)

	query := r.db.Model(&models.Project{}).
		Where("creator_id = ? OR id IN (?)", userID, memberSubQuery)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	listQuery := query.Order("created_at DESC")
	if limit > 0 {
		listQuery = listQuery.Offset(offset).Limit(limit)
	}
	if err := listQuery.Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// ReminderCandidates returns projects whose deadline falls in [now, now+window]
// and whose owner has reminders enabled, ordered by deadline ascending. Owners
// without a stored policy have never opted in and are skipped.
func (r *GormProjectRepository) ReminderCandidates(now time.Time, window time.Duration) ([]ReminderCandidate, error) {
	var projects []models.Project
	if err := r.db.
		Where("deadline >= ? AND deadline <= ?", now, now.Add(window)).
		Order("deadline ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}

	if len(projects) == 0 {
		return nil, nil
	}

	creatorIDs := make([]uint64, 0, len(projects))
	for _, p := range projects {
		creatorIDs = append(creatorIDs, p.CreatorID)
	}

	var policies []models.ReminderPolicy
	if err := r.db.
		Where("user_id IN ? AND enabled = ?", creatorIDs, true).
		Find(&policies).Error; err != nil {
		return nil, err
	}

	policyByUser := make(map[uint64]models.ReminderPolicy, len(policies))
	for _, p := range policies {
		policyByUser[p.UserID] = p
	}

	candidates := make([]ReminderCandidate, 0, len(projects))
	for _, project := range projects {
		policy, ok := policyByUser[project.CreatorID]
		if !ok {
			continue
		}
		candidates = append(candidates, ReminderCandidate{Project: project, Policy: policy})
	}

	return candidates, nil
}

// AdvanceWatermark conditionally sets last_notification_sent to ts, guarded
// by the previously observed watermark. A concurrent writer that moved the
// watermark first makes the guard fail and the write is skipped.
func (r *GormProjectRepository) AdvanceWatermark(projectID uint64, prev *time.Time, ts time.Time) (bool, error) {
	query := r.db.Model(&models.Project{}).Where("id = ?", projectID)
	if prev == nil {
		query = query.Where("last_notification_sent IS NULL")
	} else {
		query = query.Where("last_notification_sent = ?", *prev)
	}

	res := query.Update("last_notification_sent", ts)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}

// AddMember adds a member to a project. Inserting an existing pair is a no-op.
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(member).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
