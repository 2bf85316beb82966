package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/project-tracker/internal/channel"
	"github.com/yukikurage/project-tracker/internal/repository"
)

// Store is the slice of the persistent store the watcher needs.
type Store interface {
	ReminderCandidates(now time.Time, window time.Duration) ([]repository.ReminderCandidate, error)
	AdvanceWatermark(projectID uint64, prev *time.Time, ts time.Time) (bool, error)
}

// Options configures the watcher loop.
type Options struct {
	PollInterval    time.Duration
	CandidateWindow time.Duration
	SendTimeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = 30 * time.Minute
	}
	if o.CandidateWindow <= 0 {
		o.CandidateWindow = 24 * time.Hour
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 10 * time.Second
	}
	return o
}

// Watcher drives the deadline reminder poll loop.
//
// Delivery is at-least-once: a crash between a successful send and the
// watermark write repeats that notification on the next tick. The watermark
// only suppresses thresholds whose boundary it has passed.
type Watcher struct {
	store   Store
	channel channel.Channel
	opts    Options
	logger  zerolog.Logger

	now func() time.Time
}

// NewWatcher creates a new Watcher.
func NewWatcher(store Store, ch channel.Channel, opts Options, logger zerolog.Logger) *Watcher {
	return &Watcher{
		store:   store,
		channel: ch,
		opts:    opts.withDefaults(),
		logger:  logger.With().Str("component", "deadline_watcher").Logger(),
		now:     time.Now,
	}
}

// Run executes ticks until ctx is cancelled. The next tick is scheduled only
// after the previous one finishes, so ticks never overlap; a long tick
// drifts the schedule rather than stacking up.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info().
		Dur("poll_interval", w.opts.PollInterval).
		Dur("candidate_window", w.opts.CandidateWindow).
		Msg("deadline watcher started")

	for {
		w.Tick(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info().Msg("deadline watcher stopped")
			return
		case <-time.After(w.opts.PollInterval):
		}
	}
}

// Tick runs one poll cycle. Errors abort at most the current project or the
// current tick; the loop itself never terminates on error.
func (w *Watcher) Tick(ctx context.Context) {
	now := w.now()

	candidates, err := w.store.ReminderCandidates(now, w.opts.CandidateWindow)
	if err != nil {
		w.logger.Error().Err(err).Msg("candidate query failed, skipping tick")
		return
	}

	decisions := Evaluate(candidates, now, w.opts.CandidateWindow)
	if len(decisions) == 0 {
		return
	}

	w.logger.Info().Int("due", len(decisions)).Msg("reminders due")

	sent := 0
	for _, d := range decisions {
		if ctx.Err() != nil {
			return
		}
		if w.dispatch(ctx, now, d) {
			sent++
		}
	}

	w.logger.Info().Int("sent", sent).Int("due", len(decisions)).Msg("tick finished")
}

// CheckUser runs an immediate evaluation restricted to projects owned by one
// user, dispatching through the same send-then-watermark path as a tick.
// It reports how many reminders were delivered.
func (w *Watcher) CheckUser(ctx context.Context, userID uint64) (int, error) {
	now := w.now()

	candidates, err := w.store.ReminderCandidates(now, w.opts.CandidateWindow)
	if err != nil {
		return 0, fmt.Errorf("candidate query: %w", err)
	}

	owned := make([]repository.ReminderCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Project.CreatorID == userID {
			owned = append(owned, c)
		}
	}

	sent := 0
	for _, d := range Evaluate(owned, now, w.opts.CandidateWindow) {
		if w.dispatch(ctx, now, d) {
			sent++
		}
	}

	return sent, nil
}

// dispatch sends one reminder and advances the project's watermark. A failed
// send is logged and skipped; it is not retried within the tick.
func (w *Watcher) dispatch(ctx context.Context, now time.Time, d Decision) bool {
	project := d.Project.Project

	sendCtx, cancel := context.WithTimeout(ctx, w.opts.SendTimeout)
	err := w.channel.Send(sendCtx, project.CreatorID, reminderMessage(project.Title, *project.Deadline, d.HoursLeft))
	cancel()
	if err != nil {
		w.logger.Warn().Err(err).
			Uint64("project_id", project.ID).
			Uint64("user_id", project.CreatorID).
			Msg("reminder delivery failed")
		return false
	}

	ok, err := w.store.AdvanceWatermark(project.ID, project.LastNotificationSent, now)
	if err != nil {
		w.logger.Error().Err(err).Uint64("project_id", project.ID).Msg("watermark update failed")
		return true
	}
	if !ok {
		// Someone else moved the watermark since we read the candidate. The
		// guard keeps us from rolling it back.
		w.logger.Debug().Uint64("project_id", project.ID).Msg("watermark advanced concurrently")
	}

	return true
}

func reminderMessage(title string, deadline time.Time, hoursLeft int) channel.Message {
	return channel.Message{
		Subject: fmt.Sprintf("Deadline reminder: %s", title),
		Body: fmt.Sprintf("Project %q is due in %d hours, at %s.",
			title, hoursLeft, deadline.Format("02.01.2006 15:04")),
	}
}
