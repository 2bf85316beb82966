package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/project-tracker/internal/channel"
	"github.com/yukikurage/project-tracker/internal/models"
	"github.com/yukikurage/project-tracker/internal/repository"
	"github.com/yukikurage/project-tracker/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationAnswered = errors.New("invitation has already been answered")
	ErrNotInvitee         = errors.New("only the invited user can answer this invitation")
	ErrInviteeNotFound    = errors.New("invited user does not exist")
	ErrCannotInviteSelf   = errors.New("cannot invite yourself")
	ErrAlreadyMember      = errors.New("user is already a member of this project")
)

// InvitationService implements the two-party consent handshake: the issuer
// side creates a pending token and prompts the invitee; the correlator side
// consumes the token on accept/decline and finalizes the outcome.
//
// The persisted invitation row is the only state shared between the two
// parties. Everything needed to finalize an answer is re-derived from the
// token record, never from the responding session.
type InvitationService struct {
	invRepo     repository.InvitationRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	channel     channel.Channel
	secret      string
	baseURL     string
	sendTimeout time.Duration
	logger      zerolog.Logger
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invRepo repository.InvitationRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	ch channel.Channel,
	secret, baseURL string,
	sendTimeout time.Duration,
	logger zerolog.Logger,
) *InvitationService {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &InvitationService{
		invRepo:     invRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		channel:     ch,
		secret:      secret,
		baseURL:     baseURL,
		sendTimeout: sendTimeout,
		logger:      logger.With().Str("component", "invitation_service").Logger(),
	}
}

// Issue creates (or idempotently refreshes) a pending invitation for the
// triple and prompts the invitee. Re-issuing a triple whose invitation has
// already been answered is rejected; a terminal record is never re-armed.
func (s *InvitationService) Issue(ctx context.Context, projectID, inviterID, inviteeID uint64) (*models.Invitation, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if project.CreatorID != inviterID {
		return nil, ErrNotProjectCreator
	}
	if inviteeID == inviterID {
		return nil, ErrCannotInviteSelf
	}

	exists, err := s.userRepo.Exists(inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check invitee: %w", err)
	}
	if !exists {
		return nil, ErrInviteeNotFound
	}

	if _, err := s.projectRepo.FindMember(projectID, inviteeID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	inv := &models.Invitation{
		Key:       utils.DeriveInvitationKey(s.secret, projectID, inviterID, inviteeID),
		ProjectID: projectID,
		InviterID: inviterID,
		InviteeID: inviteeID,
	}

	stored, err := s.invRepo.IssuePending(inv)
	if err != nil {
		return nil, fmt.Errorf("failed to store invitation: %w", err)
	}
	if !stored.Active {
		return nil, ErrInvitationAnswered
	}

	s.promptInvitee(ctx, stored, project)

	return stored, nil
}

// RespondResult reports the outcome of answering an invitation.
type RespondResult struct {
	Invitation *models.Invitation
	// Applied is false when this answer lost the race: the invitation was
	// already terminal and no transition happened.
	Applied bool
}

// Respond consumes the invitation token with the given decision. Exactly one
// answer ever applies; a second answer, concurrent or late, is a no-op.
func (s *InvitationService) Respond(ctx context.Context, key string, responderID uint64, accept bool) (*RespondResult, error) {
	inv, err := s.invRepo.FindByKey(key, "Project", "Inviter", "Invitee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if inv.InviteeID != responderID {
		return nil, ErrNotInvitee
	}

	won, err := s.invRepo.Consume(key, accept)
	if err != nil {
		return nil, fmt.Errorf("failed to consume invitation: %w", err)
	}

	if !won {
		// Already terminal: report the stored outcome without a second
		// transition.
		current, err := s.invRepo.FindByKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to reload invitation: %w", err)
		}
		inv.Active = current.Active
		inv.Answer = current.Answer
		return &RespondResult{Invitation: inv, Applied: false}, nil
	}

	inv.Active = false
	inv.Answer = accept

	if accept {
		member := &models.ProjectMember{
			ProjectID: inv.ProjectID,
			UserID:    inv.InviteeID,
			JoinedAt:  time.Now(),
		}
		if err := s.projectRepo.AddMember(member); err != nil {
			return nil, fmt.Errorf("failed to add member: %w", err)
		}
	}

	s.notifyOutcome(ctx, inv)

	return &RespondResult{Invitation: inv, Applied: true}, nil
}

// GetForProject lists a project's invitations for its creator.
func (s *InvitationService) GetForProject(projectID, actorID uint64) ([]models.Invitation, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.CreatorID != actorID {
		return nil, ErrNotProjectCreator
	}

	invitations, err := s.invRepo.ListForProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// promptInvitee presents the accept/decline choice bound to the token.
// Delivery failure does not fail the issue call: the pending record stands
// and re-issuing the same triple resends the prompt.
func (s *InvitationService) promptInvitee(ctx context.Context, inv *models.Invitation, project *models.Project) {
	msg := channel.Message{
		Subject: fmt.Sprintf("Invitation to join %q", project.Title),
		Body:    fmt.Sprintf("You have been invited to join project %q.", project.Title),
		Actions: []channel.Action{
			{Label: "Accept", URL: fmt.Sprintf("%s/api/invitations/%s/accept", s.baseURL, inv.Key)},
			{Label: "Decline", URL: fmt.Sprintf("%s/api/invitations/%s/decline", s.baseURL, inv.Key)},
		},
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.channel.Send(sendCtx, inv.InviteeID, msg); err != nil {
		s.logger.Warn().Err(err).
			Str("key", inv.Key).
			Uint64("invitee_id", inv.InviteeID).
			Msg("invitation prompt delivery failed")
	}
}

// notifyOutcome informs both parties of the final decision. Failures are
// per-recipient and logged only.
func (s *InvitationService) notifyOutcome(ctx context.Context, inv *models.Invitation) {
	outcome := "declined"
	if inv.Answer {
		outcome = "accepted"
	}

	title := inv.Project.Title
	inviteeName := inv.Invitee.Username

	recipients := []struct {
		userID uint64
		msg    channel.Message
	}{
		{
			userID: inv.InviterID,
			msg: channel.Message{
				Subject: fmt.Sprintf("Invitation %s: %s", outcome, title),
				Body:    fmt.Sprintf("%s %s your invitation to project %q.", inviteeName, outcome, title),
			},
		},
		{
			userID: inv.InviteeID,
			msg: channel.Message{
				Subject: fmt.Sprintf("Invitation %s: %s", outcome, title),
				Body:    fmt.Sprintf("You %s the invitation to project %q.", outcome, title),
			},
		},
	}

	for _, r := range recipients {
		sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		err := s.channel.Send(sendCtx, r.userID, r.msg)
		cancel()
		if err != nil {
			s.logger.Warn().Err(err).
				Str("key", inv.Key).
				Uint64("user_id", r.userID).
				Msg("outcome notification delivery failed")
		}
	}
}
