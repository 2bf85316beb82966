package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker/internal/dto"
	apierrors "github.com/yukikurage/project-tracker/internal/errors"
	"github.com/yukikurage/project-tracker/internal/middleware"
	"github.com/yukikurage/project-tracker/internal/reminder"
	"github.com/yukikurage/project-tracker/internal/services"
)

// PolicyHandler coordinates reminder settings HTTP handlers.
type PolicyHandler struct {
	policyService *services.PolicyService
	watcher       *reminder.Watcher
}

// NewPolicyHandler creates a new PolicyHandler.
func NewPolicyHandler(policyService *services.PolicyService, watcher *reminder.Watcher) *PolicyHandler {
	return &PolicyHandler{
		policyService: policyService,
		watcher:       watcher,
	}
}

// GetSettings returns the caller's reminder settings, creating defaults on
// first access.
func (h *PolicyHandler) GetSettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	policy, err := h.policyService.GetPolicy(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch reminder settings")
		return
	}

	c.JSON(http.StatusOK, dto.ToPolicyDTO(*policy))
}

// UpdateSettings updates the enabled flag and/or the threshold set. When
// both are present the thresholds are written first; a failure on the
// enabled write leaves an already applied thresholds update in place.
func (h *PolicyHandler) UpdateSettings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateSettingsRequest struct {
		Enabled    *bool  `json:"enabled"`
		Thresholds *[]int `json:"thresholds"`
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Enabled == nil && req.Thresholds == nil {
		apierrors.BadRequest(c, "Nothing to update")
		return
	}

	var policy *dto.PolicyDTO

	if req.Thresholds != nil {
		p, err := h.policyService.SetThresholds(userID, *req.Thresholds)
		if err != nil {
			respondPolicyError(c, err)
			return
		}
		d := dto.ToPolicyDTO(*p)
		policy = &d
	}

	if req.Enabled != nil {
		p, err := h.policyService.SetEnabled(userID, *req.Enabled)
		if err != nil {
			respondPolicyError(c, err)
			return
		}
		d := dto.ToPolicyDTO(*p)
		policy = &d
	}

	c.JSON(http.StatusOK, policy)
}

// ToggleThreshold flips a single threshold hour in the caller's set.
func (h *PolicyHandler) ToggleThreshold(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	hour, err := strconv.Atoi(c.Param("hour"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid threshold hour")
		return
	}

	policy, err := h.policyService.ToggleThreshold(userID, hour)
	if err != nil {
		respondPolicyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPolicyDTO(*policy))
}

// CheckReminders runs an immediate reminder evaluation for the caller's
// projects.
func (h *PolicyHandler) CheckReminders(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	sent, err := h.watcher.CheckUser(c.Request.Context(), userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to check reminders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sent": sent,
	})
}

func respondPolicyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrThresholdsEmpty),
		errors.Is(err, services.ErrThresholdNotPositive):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
