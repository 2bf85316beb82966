// Package channel abstracts out-of-band message delivery to users. The
// scheduler and the invitation flow talk only to the Channel interface;
// delivery failures are per-recipient and never fatal to the caller.
package channel

import "context"

// Action is a choice presented with a message, rendered as a link.
type Action struct {
	Label string
	URL   string
}

// Message is a single notification addressed to one user.
type Message struct {
	Subject string
	Body    string
	Actions []Action
}

// MessageRef identifies a previously sent message for edit-in-place
// channels. Channels that cannot edit fall back to resending.
type MessageRef string

// Channel delivers messages to users by ID.
type Channel interface {
	// Send delivers a message to the user. The context bounds the attempt.
	Send(ctx context.Context, userID uint64, msg Message) error

	// EditOrResend updates a previously sent message, or delivers the new
	// content as a fresh message when editing is not supported.
	EditOrResend(ctx context.Context, userID uint64, ref MessageRef, msg Message) error
}
