package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker/internal/constants"
	"github.com/yukikurage/project-tracker/internal/models"
	"github.com/yukikurage/project-tracker/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectTitleEmpty   = errors.New("project title cannot be empty")
	ErrProjectTitleTooLong = errors.New("project title is too long")
	ErrNotProjectCreator   = errors.New("only the project creator can perform this action")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Title     string
	CreatorID uint64
}

// CreateProject creates a new project owned by its creator.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrProjectTitleEmpty
	}
	if len([]rune(title)) > constants.MaxProjectTitleLength {
		return nil, ErrProjectTitleTooLong
	}

	project := &models.Project{
		Title:     title,
		CreatorID: input.CreatorID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjectsForUser returns projects the user created or joined.
func (s *ProjectService) ListProjectsForUser(userID uint64, offset, limit int) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.ListForUser(userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project visible to the given user. Non-participants
// get a not-found result so project existence is not leaked.
func (s *ProjectService) GetProject(projectID, userID uint64) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if project.CreatorID != userID {
		if _, err := s.projectRepo.FindMember(projectID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to verify membership: %w", err)
		}
	}

	return project, nil
}

// SetDeadline sets or clears a project's deadline. Creator only.
func (s *ProjectService) SetDeadline(projectID, actorID uint64, deadline *time.Time) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if project.CreatorID != actorID {
		return nil, ErrNotProjectCreator
	}

	project.Deadline = deadline
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update deadline: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project along with its memberships and
// invitations. Creator only.
func (s *ProjectService) DeleteProject(projectID, actorID uint64) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}

	if project.CreatorID != actorID {
		return ErrNotProjectCreator
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// ListMembers returns the members of a project visible to the given user.
func (s *ProjectService) ListMembers(projectID, userID uint64) ([]models.ProjectMember, error) {
	if _, err := s.GetProject(projectID, userID); err != nil {
		return nil, err
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return members, nil
}

func (s *ProjectService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
