package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker/internal/models"
	"github.com/yukikurage/project-tracker/internal/repository"
	"gorm.io/gorm"
)

type projectTestEnv struct {
	db      *gorm.DB
	service *ProjectService
	repo    repository.ProjectRepository
}

func setupProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()

	db := openTestDB(t)
	repo := repository.NewProjectRepository(db)

	return projectTestEnv{
		db:      db,
		service: NewProjectService(repo),
		repo:    repo,
	}
}

func TestProjectService_CreateProject(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "creator")

	project, err := env.service.CreateProject(CreateProjectInput{
		Title:     "  Website Relaunch  ",
		CreatorID: user.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Website Relaunch", project.Title)
	require.Equal(t, user.ID, project.CreatorID)
	require.Nil(t, project.Deadline)
}

func TestProjectService_CreateProjectValidation(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createTestUser(t, env.db, "creator")

	_, err := env.service.CreateProject(CreateProjectInput{Title: "   ", CreatorID: user.ID})
	require.ErrorIs(t, err, ErrProjectTitleEmpty)

	_, err = env.service.CreateProject(CreateProjectInput{
		Title:     strings.Repeat("x", 201),
		CreatorID: user.ID,
	})
	require.ErrorIs(t, err, ErrProjectTitleTooLong)
}

func TestProjectService_GetProjectVisibility(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "creator")
	member := createTestUser(t, env.db, "member")
	outsider := createTestUser(t, env.db, "outsider")

	project, err := env.service.CreateProject(CreateProjectInput{
		Title:     "Launch",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.repo.AddMember(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    member.ID,
		JoinedAt:  time.Now(),
	}))

	_, err = env.service.GetProject(project.ID, creator.ID)
	require.NoError(t, err)
	_, err = env.service.GetProject(project.ID, member.ID)
	require.NoError(t, err)

	// Outsiders see not-found, not forbidden.
	_, err = env.service.GetProject(project.ID, outsider.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_ListProjectsForUser(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "creator")
	member := createTestUser(t, env.db, "member")

	owned, err := env.service.CreateProject(CreateProjectInput{Title: "Owned", CreatorID: creator.ID})
	require.NoError(t, err)
	joined, err := env.service.CreateProject(CreateProjectInput{Title: "Joined", CreatorID: member.ID})
	require.NoError(t, err)

	require.NoError(t, env.repo.AddMember(&models.ProjectMember{
		ProjectID: joined.ID,
		UserID:    creator.ID,
		JoinedAt:  time.Now(),
	}))

	projects, total, err := env.service.ListProjectsForUser(creator.ID, 0, 20)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, projects, 2)

	ids := []uint64{projects[0].ID, projects[1].ID}
	require.Contains(t, ids, owned.ID)
	require.Contains(t, ids, joined.ID)
}

func TestProjectService_SetDeadline(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "creator")
	other := createTestUser(t, env.db, "other")

	project, err := env.service.CreateProject(CreateProjectInput{Title: "Launch", CreatorID: creator.ID})
	require.NoError(t, err)

	deadline := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	updated, err := env.service.SetDeadline(project.ID, creator.ID, &deadline)
	require.NoError(t, err)
	require.NotNil(t, updated.Deadline)
	require.True(t, updated.Deadline.Equal(deadline))

	_, err = env.service.SetDeadline(project.ID, other.ID, nil)
	require.ErrorIs(t, err, ErrNotProjectCreator)

	// Clearing the deadline is allowed for the creator.
	updated, err = env.service.SetDeadline(project.ID, creator.ID, nil)
	require.NoError(t, err)
	require.Nil(t, updated.Deadline)
}

func TestProjectService_DeleteProject(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "creator")
	member := createTestUser(t, env.db, "member")

	project, err := env.service.CreateProject(CreateProjectInput{Title: "Launch", CreatorID: creator.ID})
	require.NoError(t, err)

	require.NoError(t, env.repo.AddMember(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    member.ID,
		JoinedAt:  time.Now(),
	}))

	require.ErrorIs(t, env.service.DeleteProject(project.ID, member.ID), ErrNotProjectCreator)
	require.NoError(t, env.service.DeleteProject(project.ID, creator.ID))

	_, err = env.service.GetProject(project.ID, creator.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)

	// Memberships go with the project.
	var count int64
	require.NoError(t, env.db.Model(&models.ProjectMember{}).
		Where("project_id = ?", project.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestProjectService_ListMembers(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createTestUser(t, env.db, "creator")
	member := createTestUser(t, env.db, "member")
	outsider := createTestUser(t, env.db, "outsider")

	project, err := env.service.CreateProject(CreateProjectInput{Title: "Launch", CreatorID: creator.ID})
	require.NoError(t, err)

	require.NoError(t, env.repo.AddMember(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    member.ID,
		JoinedAt:  time.Now(),
	}))

	members, err := env.service.ListMembers(project.ID, creator.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, member.ID, members[0].UserID)

	_, err = env.service.ListMembers(project.ID, outsider.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
}
