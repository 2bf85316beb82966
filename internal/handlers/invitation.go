package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker/internal/dto"
	apierrors "github.com/yukikurage/project-tracker/internal/errors"
	"github.com/yukikurage/project-tracker/internal/middleware"
	"github.com/yukikurage/project-tracker/internal/services"
)

// InvitationHandler coordinates the invitation handshake HTTP handlers.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
	}
}

// CreateInvitation issues an invitation for a project. Inviter is the
// caller; only the project creator can invite.
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateInvitationRequest struct {
		InviteeID uint64 `json:"invitee_id" binding:"required"`
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	inv, err := h.invitationService.Issue(c.Request.Context(), projectID, userID, req.InviteeID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationDTO(*inv))
}

// ListInvitations returns the invitations issued for a project.
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invitations, err := h.invitationService.GetForProject(projectID, userID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	items := make([]dto.InvitationDTO, len(invitations))
	for i, inv := range invitations {
		items[i] = dto.ToInvitationDTO(inv)
	}

	c.JSON(http.StatusOK, gin.H{
		"invitations": items,
	})
}

// Accept answers an invitation positively.
func (h *InvitationHandler) Accept(c *gin.Context) {
	h.respond(c, true)
}

// Decline answers an invitation negatively.
func (h *InvitationHandler) Decline(c *gin.Context) {
	h.respond(c, false)
}

func (h *InvitationHandler) respond(c *gin.Context, accept bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	key := c.Param("key")
	if key == "" {
		apierrors.BadRequest(c, "Invitation key is required")
		return
	}

	result, err := h.invitationService.Respond(c.Request.Context(), key, userID, accept)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	if !result.Applied {
		// Late or concurrent second answer: nothing changed.
		c.JSON(http.StatusConflict, gin.H{
			"message":    "Invitation was already answered",
			"invitation": dto.ToInvitationDTO(*result.Invitation),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*result.Invitation))
}

func respondInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCannotInviteSelf):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotProjectCreator),
		errors.Is(err, services.ErrNotInvitee):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrInviteeNotFound),
		errors.Is(err, services.ErrInvitationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvitationAnswered),
		errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
