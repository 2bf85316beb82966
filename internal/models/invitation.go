package models

import "time"

// Invitation is the persisted handshake record between an inviter and an
// invitee. The key is derived deterministically from the
// (project, inviter, invitee) triple, so re-issuing for the same triple maps
// to the same row.
//
// Lifecycle: pending (Active=true, Answer=false) is the only mutable state.
// It transitions exactly once, to accepted (false/true) or declined
// (false/false); a terminal row is a historical fact and is never re-armed.
type Invitation struct {
	Key       string    `gorm:"type:varchar(64);primarykey" json:"key"`
	ProjectID uint64    `gorm:"not null;index" json:"project_id"`
	InviterID uint64    `gorm:"not null" json:"inviter_id"`
	InviteeID uint64    `gorm:"not null;index" json:"invitee_id"`
	Active    bool      `gorm:"not null" json:"active"`
	Answer    bool      `gorm:"not null" json:"answer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Inviter User    `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
	Invitee User    `gorm:"foreignKey:InviteeID" json:"invitee,omitempty"`
}

// InvitationStatus is the externally visible state of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// Status maps the (Active, Answer) pair to an InvitationStatus.
func (i *Invitation) Status() InvitationStatus {
	switch {
	case i.Active:
		return InvitationStatusPending
	case i.Answer:
		return InvitationStatusAccepted
	default:
		return InvitationStatusDeclined
	}
}
