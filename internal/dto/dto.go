package dto

import (
	"time"

	"github.com/yukikurage/project-tracker/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	CreatorID uint64     `json:"creator_id"`
	Deadline  *time.Time `json:"deadline"`
	CreatedAt time.Time  `json:"created_at"`
	Creator   *UserDTO   `json:"creator,omitempty"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO `json:"projects"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
}

// MemberDTO represents a project member in API responses
type MemberDTO struct {
	UserID   uint64    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	User     *UserDTO  `json:"user,omitempty"`
}

// PolicyDTO represents reminder settings in API responses
type PolicyDTO struct {
	Enabled    bool  `json:"enabled"`
	Thresholds []int `json:"thresholds"`
}

// InvitationDTO represents an invitation in API responses
type InvitationDTO struct {
	Key       string                  `json:"key"`
	ProjectID uint64                  `json:"project_id"`
	InviterID uint64                  `json:"inviter_id"`
	InviteeID uint64                  `json:"invitee_id"`
	Status    models.InvitationStatus `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
	Invitee   *UserDTO                `json:"invitee,omitempty"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:        project.ID,
		Title:     project.Title,
		CreatorID: project.CreatorID,
		Deadline:  project.Deadline,
		CreatedAt: project.CreatedAt,
	}

	if project.Creator.ID != 0 {
		creator := ToUserDTO(project.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToMemberDTO converts a ProjectMember model to MemberDTO
func ToMemberDTO(member models.ProjectMember) MemberDTO {
	dto := MemberDTO{
		UserID:   member.UserID,
		JoinedAt: member.JoinedAt,
	}

	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}

	return dto
}

// ToPolicyDTO converts a ReminderPolicy model to PolicyDTO
func ToPolicyDTO(policy models.ReminderPolicy) PolicyDTO {
	return PolicyDTO{
		Enabled:    policy.Enabled,
		Thresholds: []int(policy.Thresholds),
	}
}

// ToInvitationDTO converts an Invitation model to InvitationDTO
func ToInvitationDTO(inv models.Invitation) InvitationDTO {
	dto := InvitationDTO{
		Key:       inv.Key,
		ProjectID: inv.ProjectID,
		InviterID: inv.InviterID,
		InviteeID: inv.InviteeID,
		Status:    inv.Status(),
		CreatedAt: inv.CreatedAt,
	}

	if inv.Invitee.ID != 0 {
		invitee := ToUserDTO(inv.Invitee)
		dto.Invitee = &invitee
	}

	return dto
}
