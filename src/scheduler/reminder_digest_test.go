// backend/src/scheduler/reminder_digest_test.go
package scheduler

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error", "json")
	os.Exit(m.Run())
}

type fakeReminderSource struct {
	reminders  []models.UpcomingReminder
	err        error
	gotEntity  int64
	gotDays    int
	callCount  int
	lastCalled time.Time
}

func (f *fakeReminderSource) GetReminders(entityID int64, days int, reference time.Time) ([]models.UpcomingReminder, error) {
	f.gotEntity = entityID
	f.gotDays = days
	f.callCount++
	f.lastCalled = reference
	return f.reminders, f.err
}

type fakeDigestSender struct {
	sentTo        string
	sentReminders []models.UpcomingReminder
	sendCount     int
	err           error
}

func (f *fakeDigestSender) SendReminderDigest(toEmail string, reminders []models.UpcomingReminder, generatedAt time.Time) error {
	f.sentTo = toEmail
	f.sentReminders = reminders
	f.sendCount++
	return f.err
}

func digestReminders() []models.UpcomingReminder {
	return []models.UpcomingReminder{
		{EntryID: 1, Name: "Rent", EntryType: models.EntryTypeExpense, Amount: 12000, Currency: "PHP", OccurrenceDate: "2025-01-20", ReminderDate: "2025-01-17", DaysUntil: 3, Risk: models.RiskDanger},
		{EntryID: 2, Name: "Netflix", EntryType: models.EntryTypeExpense, Amount: 549, Currency: "PHP", OccurrenceDate: "2025-01-21", ReminderDate: "2025-01-20", DaysUntil: 4, IsAutopay: true, Risk: models.RiskAutopay},
		{EntryID: 3, Name: "Electric bill", EntryType: models.EntryTypeExpense, Amount: 3200, Currency: "PHP", OccurrenceDate: "2025-01-22", ReminderDate: "2025-01-19", DaysUntil: 5, Risk: models.RiskManual},
	}
}

func TestReminderDigestSendsActionableReminders(t *testing.T) {
	source := &fakeReminderSource{reminders: digestReminders()}
	sender := &fakeDigestSender{}
	job := NewReminderDigestJob(source, sender, "owner@example.com", 72*time.Hour)

	require.NoError(t, job.Run())

	assert.Equal(t, 1, sender.sendCount)
	assert.Equal(t, "owner@example.com", sender.sentTo)
	assert.Equal(t, int64(0), source.gotEntity, "digest should cover all entities")
	assert.Equal(t, 3, source.gotDays)

	require.Len(t, sender.sentReminders, 2, "autopay reminders stay out of the digest")
	assert.Equal(t, "Rent", sender.sentReminders[0].Name)
	assert.Equal(t, models.RiskDanger, sender.sentReminders[0].Risk)
	assert.Equal(t, "Electric bill", sender.sentReminders[1].Name)
	assert.Equal(t, models.RiskManual, sender.sentReminders[1].Risk)
}

func TestReminderDigestSkipsWhenNothingDue(t *testing.T) {
	source := &fakeReminderSource{}
	sender := &fakeDigestSender{}
	job := NewReminderDigestJob(source, sender, "owner@example.com", 72*time.Hour)

	require.NoError(t, job.Run())
	assert.Equal(t, 0, sender.sendCount)
}

func TestReminderDigestSkipsWhenOnlyAutopay(t *testing.T) {
	source := &fakeReminderSource{reminders: []models.UpcomingReminder{
		{EntryID: 2, Name: "Netflix", Amount: 549, OccurrenceDate: "2025-01-21", IsAutopay: true, Risk: models.RiskAutopay},
	}}
	sender := &fakeDigestSender{}
	job := NewReminderDigestJob(source, sender, "owner@example.com", 72*time.Hour)

	require.NoError(t, job.Run())
	assert.Equal(t, 0, sender.sendCount)
}

func TestReminderDigestLookaheadFloorsAtOneDay(t *testing.T) {
	source := &fakeReminderSource{reminders: digestReminders()}
	sender := &fakeDigestSender{}
	job := NewReminderDigestJob(source, sender, "owner@example.com", 6*time.Hour)

	require.NoError(t, job.Run())
	assert.Equal(t, 1, source.gotDays)
}

func TestReminderDigestRequiresRecipient(t *testing.T) {
	source := &fakeReminderSource{reminders: digestReminders()}
	sender := &fakeDigestSender{}
	job := NewReminderDigestJob(source, sender, "", 72*time.Hour)

	err := job.Run()
	require.Error(t, err)
	assert.Equal(t, 0, source.callCount)
	assert.Equal(t, 0, sender.sendCount)
}

func TestReminderDigestPropagatesErrors(t *testing.T) {
	sourceErr := errors.New("database closed")
	job := NewReminderDigestJob(&fakeReminderSource{err: sourceErr}, &fakeDigestSender{}, "owner@example.com", 72*time.Hour)
	err := job.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, sourceErr)

	sendErr := errors.New("smtp unreachable")
	sender := &fakeDigestSender{err: sendErr}
	job = NewReminderDigestJob(&fakeReminderSource{reminders: digestReminders()}, sender, "owner@example.com", 72*time.Hour)
	err = job.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)
}

func TestSchedulerRegistersAndRunsJobs(t *testing.T) {
	source := &fakeReminderSource{reminders: digestReminders()}
	sender := &fakeDigestSender{}
	job := NewReminderDigestJob(source, sender, "owner@example.com", 72*time.Hour)

	s := New()
	require.NoError(t, s.AddJob("0 7 * * *", job))
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, sender.sendCount)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := New()
	err := s.AddJob("not a cron spec", NewReminderDigestJob(&fakeReminderSource{}, &fakeDigestSender{}, "owner@example.com", time.Hour))
	assert.Error(t, err)
}
