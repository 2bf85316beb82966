package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker/internal/constants"
	"github.com/yukikurage/project-tracker/internal/database"
	"github.com/yukikurage/project-tracker/internal/dto"
	"github.com/yukikurage/project-tracker/internal/models"
	"github.com/yukikurage/project-tracker/internal/repository"
	"github.com/yukikurage/project-tracker/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type projectTestEnv struct {
	db             *gorm.DB
	handler        *ProjectHandler
	projectService *services.ProjectService
}

func setupProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()

	db := openHandlerTestDB(t)

	projectRepo := repository.NewProjectRepository(db)
	projectService := services.NewProjectService(projectRepo)
	handler := NewProjectHandler(projectService)

	return projectTestEnv{
		db:             db,
		handler:        handler,
		projectService: projectService,
	}
}

func openHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Invitation{},
		&models.ReminderPolicy{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func handlerTestContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func createHandlerTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestProjectHandler_CreateProject(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createHandlerTestUser(t, env.db, "creator")

	body, err := json.Marshal(map[string]string{"title": "Website Relaunch"})
	require.NoError(t, err)

	c, w := handlerTestContext(http.MethodPost, "/api/projects", body, user.ID)

	env.handler.CreateProject(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Website Relaunch", response.Title)
	require.Equal(t, user.ID, response.CreatorID)
}

func TestProjectHandler_CreateProject_EmptyTitle(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createHandlerTestUser(t, env.db, "creator")

	body, err := json.Marshal(map[string]string{"title": "   "})
	require.NoError(t, err)

	c, w := handlerTestContext(http.MethodPost, "/api/projects", body, user.ID)

	env.handler.CreateProject(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_ListProjects(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createHandlerTestUser(t, env.db, "creator")

	_, err := env.projectService.CreateProject(services.CreateProjectInput{
		Title:     "Launch",
		CreatorID: user.ID,
	})
	require.NoError(t, err)

	c, w := handlerTestContext(http.MethodGet, "/api/projects", nil, user.ID)

	env.handler.ListProjects(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProjectListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Projects, 1)
	require.Equal(t, int64(1), response.TotalCount)
	require.Equal(t, "Launch", response.Projects[0].Title)
}

func TestProjectHandler_GetProject_NotParticipant(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createHandlerTestUser(t, env.db, "creator")
	outsider := createHandlerTestUser(t, env.db, "outsider")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Title:     "Launch",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	url := fmt.Sprintf("/api/projects/%d", project.ID)
	c, w := handlerTestContext(http.MethodGet, url, nil, outsider.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(project.ID)}}

	env.handler.GetProject(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_SetDeadline(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createHandlerTestUser(t, env.db, "creator")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Title:     "Launch",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	deadline := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	body, err := json.Marshal(map[string]time.Time{"deadline": deadline})
	require.NoError(t, err)

	url := fmt.Sprintf("/api/projects/%d/deadline", project.ID)
	c, w := handlerTestContext(http.MethodPut, url, body, creator.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(project.ID)}}

	env.handler.SetDeadline(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Deadline)
	require.True(t, response.Deadline.Equal(deadline))
}

func TestProjectHandler_SetDeadline_NotCreator(t *testing.T) {
	env := setupProjectTestEnv(t)
	creator := createHandlerTestUser(t, env.db, "creator")
	other := createHandlerTestUser(t, env.db, "other")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Title:     "Launch",
		CreatorID: creator.ID,
	})
	require.NoError(t, err)

	body, err := json.Marshal(map[string]interface{}{"deadline": nil})
	require.NoError(t, err)

	url := fmt.Sprintf("/api/projects/%d/deadline", project.ID)
	c, w := handlerTestContext(http.MethodPut, url, body, other.ID)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(project.ID)}}

	env.handler.SetDeadline(c)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectHandler_ParseIDParam_Invalid(t *testing.T) {
	env := setupProjectTestEnv(t)
	user := createHandlerTestUser(t, env.db, "creator")

	c, w := handlerTestContext(http.MethodGet, "/api/projects/abc", nil, user.ID)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	env.handler.GetProject(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
