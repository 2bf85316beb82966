package repository

import (
	"time"

	"github.com/yukikurage/project-tracker/internal/models"
)

// ReminderCandidate pairs a project inside the reminder window with its
// owner's enabled reminder policy.
type ReminderCandidate struct {
	Project models.Project
	Policy  models.ReminderPolicy
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// ListForUser lists projects the user created or is a member of
	ListForUser(userID uint64, offset, limit int) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and all related data
	Delete(id uint64) error

	// ReminderCandidates returns projects whose deadline falls in
	// [now, now+window] and whose owner has reminders enabled, ordered by
	// deadline ascending
	ReminderCandidates(now time.Time, window time.Duration) ([]ReminderCandidate, error)

	// AdvanceWatermark conditionally sets last_notification_sent to ts,
	// guarded by the previously observed watermark. Reports whether the
	// write was applied.
	AdvanceWatermark(projectID uint64, prev *time.Time, ts time.Time) (bool, error)

	// AddMember adds a member to a project, idempotently
	AddMember(member *models.ProjectMember) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembers lists all members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
}

// PolicyRepository defines the interface for reminder policy data access
type PolicyRepository interface {
	// Find finds a user's reminder policy
	Find(userID uint64) (*models.ReminderPolicy, error)

	// Save upserts a reminder policy
	Save(policy *models.ReminderPolicy) error
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// IssuePending inserts a pending invitation, or refreshes an existing
	// row only while it is still pending. The returned row reflects the
	// stored state: a terminal row comes back unchanged.
	IssuePending(inv *models.Invitation) (*models.Invitation, error)

	// FindByKey finds an invitation by key with optional preloading
	FindByKey(key string, preload ...string) (*models.Invitation, error)

	// Consume atomically transitions a pending invitation to its terminal
	// state. Reports whether this call won the transition.
	Consume(key string, accepted bool) (bool, error)

	// ListForProject lists invitations issued for a project
	ListForProject(projectID uint64) ([]models.Invitation, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Exists reports whether a user with the given ID exists
	Exists(id uint64) (bool, error)
}
