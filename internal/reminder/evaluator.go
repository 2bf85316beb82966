// Package reminder implements deadline reminders: a pure evaluator that
// decides which projects are due for a notification, and a watcher that
// polls the store, dispatches through a channel, and advances watermarks.
package reminder

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/yukikurage/project-tracker/internal/repository"
)

// Decision is a single reminder to deliver: one per project per tick, even
// when several thresholds crossed at once.
type Decision struct {
	Project repository.ReminderCandidate
	// HoursLeft is the chosen threshold: the smallest (most urgent) lead
	// time whose boundary has been crossed.
	HoursLeft int
}

// Evaluate decides which candidates are due for a reminder at now.
//
// A project is eligible when its deadline lies in [now, now+window] and the
// owner's policy is enabled. A threshold h is due when its boundary
// (deadline − h hours) has passed and the watermark has not advanced past
// that boundary. Results are ordered by deadline ascending.
//
// Pure function: no clock reads, no I/O, never fails.
func Evaluate(candidates []repository.ReminderCandidate, now time.Time, window time.Duration) []Decision {
	decisions := make([]Decision, 0, len(candidates))

	for _, c := range candidates {
		deadline := c.Project.Deadline
		if deadline == nil || deadline.Before(now) || deadline.After(now.Add(window)) {
			continue
		}
		if !c.Policy.Enabled {
			continue
		}

		chosen, due := dueThreshold(*deadline, c.Project.LastNotificationSent, c.Policy.Thresholds, now)
		if !due {
			continue
		}

		decisions = append(decisions, Decision{Project: c, HoursLeft: chosen})
	}

	sort.SliceStable(decisions, func(i, j int) bool {
		return decisions[i].Project.Project.Deadline.Before(*decisions[j].Project.Project.Deadline)
	})

	return decisions
}

// dueThreshold returns the smallest due threshold, if any.
func dueThreshold(deadline time.Time, watermark *time.Time, thresholds []int, now time.Time) (int, bool) {
	chosen := 0
	due := false

	for _, h := range lo.Uniq(thresholds) {
		if h <= 0 {
			continue
		}
		boundary := deadline.Add(-time.Duration(h) * time.Hour)
		if boundary.After(now) {
			continue
		}
		if watermark != nil && !watermark.Before(boundary) {
			continue
		}
		if !due || h < chosen {
			chosen = h
			due = true
		}
	}

	return chosen, due
}
