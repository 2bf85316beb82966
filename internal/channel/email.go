package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yukikurage/project-tracker/internal/repository"
	"gopkg.in/gomail.v2"
)

// EmailChannel delivers messages over SMTP. Recipient addresses are
// resolved through the user repository at send time.
type EmailChannel struct {
	dialer *gomail.Dialer
	from   string
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewEmailChannel creates a new EmailChannel.
func NewEmailChannel(host string, port int, username, password, from string, users repository.UserRepository, logger zerolog.Logger) *EmailChannel {
	return &EmailChannel{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		users:  users,
		logger: logger.With().Str("component", "email_channel").Logger(),
	}
}

// Send delivers a message to the user's email address.
func (c *EmailChannel) Send(ctx context.Context, userID uint64, msg Message) error {
	user, err := c.users.FindByID(userID)
	if err != nil {
		return fmt.Errorf("resolve recipient %d: %w", userID, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", renderBody(msg))

	// gomail has no context support, so the dial-and-send runs in its own
	// goroutine and the context bounds how long we wait for it.
	errc := make(chan error, 1)
	go func() {
		errc <- c.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send to %s: %w", user.Email, ctx.Err())
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("send to %s: %w", user.Email, err)
		}
	}

	c.logger.Debug().Uint64("user_id", userID).Str("subject", msg.Subject).Msg("message delivered")
	return nil
}

// EditOrResend delivers the updated content as a fresh message; email has no
// edit-in-place.
func (c *EmailChannel) EditOrResend(ctx context.Context, userID uint64, _ MessageRef, msg Message) error {
	return c.Send(ctx, userID, msg)
}

func renderBody(msg Message) string {
	if len(msg.Actions) == 0 {
		return msg.Body
	}

	var b strings.Builder
	b.WriteString(msg.Body)
	b.WriteString("\n")
	for _, a := range msg.Actions {
		fmt.Fprintf(&b, "\n%s: %s", a.Label, a.URL)
	}
	return b.String()
}
