// backend/src/scheduler/reminder_digest.go
package scheduler

import (
	"fmt"
	"time"

	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/models"
)

// ReminderSource yields risk-classified reminders within a lookahead
// window. Satisfied by services.DashboardService.
type ReminderSource interface {
	GetReminders(entityID int64, days int, reference time.Time) ([]models.UpcomingReminder, error)
}

// DigestSender delivers a digest of reminders to one recipient.
// Satisfied by services.EmailService.
type DigestSender interface {
	SendReminderDigest(toEmail string, reminders []models.UpcomingReminder, generatedAt time.Time) error
}

// ReminderDigestJob emails the reminders that need a human: danger items
// and manual payments across all entities. Autopay items settle
// themselves and are left out. An empty window sends nothing.
type ReminderDigestJob struct {
	dashboard ReminderSource
	email     DigestSender
	recipient string
	lookahead time.Duration
}

func NewReminderDigestJob(dashboard ReminderSource, email DigestSender, recipient string, lookahead time.Duration) *ReminderDigestJob {
	return &ReminderDigestJob{
		dashboard: dashboard,
		email:     email,
		recipient: recipient,
		lookahead: lookahead,
	}
}

func (j *ReminderDigestJob) Name() string {
	return "reminder_digest"
}

func (j *ReminderDigestJob) Run() error {
	if j.recipient == "" {
		return fmt.Errorf("reminder digest has no recipient configured")
	}

	now := time.Now()
	days := int(j.lookahead.Hours() / 24)
	if days < 1 {
		days = 1
	}

	reminders, err := j.dashboard.GetReminders(0, days, now)
	if err != nil {
		return fmt.Errorf("error collecting reminders for digest: %w", err)
	}

	actionable := make([]models.UpcomingReminder, 0, len(reminders))
	for _, rem := range reminders {
		if rem.Risk == models.RiskAutopay {
			continue
		}
		actionable = append(actionable, rem)
	}
	if len(actionable) == 0 {
		logger.L.Info("Reminder digest skipped, nothing actionable", "lookaheadDays", days, "totalReminders", len(reminders))
		return nil
	}

	if err := j.email.SendReminderDigest(j.recipient, actionable, now); err != nil {
		return fmt.Errorf("error sending reminder digest: %w", err)
	}
	logger.L.Info("Reminder digest sent", "recipient", j.recipient, "reminderCount", len(actionable))
	return nil
}
