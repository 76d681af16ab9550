package services

import (
	"errors"
	"io"
	"time"

	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/store"
)

var (
	// ErrNotFound signals a lookup for a record that does not exist or is
	// not visible in the current entity scope. Shared with the store layer
	// so errors.Is works across both.
	ErrNotFound = store.ErrNotFound
	// ErrImportFailed wraps CSV parse failures during transaction import.
	ErrImportFailed = errors.New("import failed")
	// ErrUnknownTable signals an export request for a table outside the
	// portable set.
	ErrUnknownTable = errors.New("unknown export table")
)

// DashboardService computes every derived read the API serves: snapshots,
// projections, and the advisory wishlist math. All results are cached per
// entity; writes go through the handlers, which invalidate.
//
// entityID 0 means unscoped: every record regardless of entity.
type DashboardService interface {
	GetSnapshot(entityID int64, periodStart, periodEnd, now time.Time, currency string) (*models.DashboardSnapshot, error)
	GetDashboard(entityID int64, now time.Time) (*models.DashboardView, error)
	GetCashflow(entityID int64, months int, reference time.Time) ([]models.CashflowPeriod, error)
	GetUpcoming(entityID int64, days int, reference time.Time) ([]models.UpcomingItem, error)
	GetReminders(entityID int64, days int, reference time.Time) ([]models.UpcomingReminder, error)
	GetDisposable(entityID int64) (models.DisposableIncome, error)
	GetGoalsProgress(entityID int64) ([]models.GoalProgress, error)
	GetWishlistNextUp(entityID int64, now time.Time) ([]models.WishlistNextUp, error)
	GetWishlistPlan(entityID int64, now time.Time) (*models.WishlistPlan, error)
	GetWishlistReadiness(entityID, itemID int64, now time.Time) (*models.WishlistReadiness, error)
	InvalidateEntityCache(entityID int64)
}

// PortabilityService moves an entity's book in and out of the system.
type PortabilityService interface {
	ExportJSON(entityID int64) (*models.ExportBundle, error)
	ExportTableCSV(entityID int64, table string) ([]byte, error)
	ExportZIP(entityID int64) ([]byte, error)
	ImportTransactionsCSV(fileReader io.Reader, entityID int64) (*models.ImportSummary, error)
}

// EmailService sends the reminder digest. Provider selection happens at
// construction time from configuration.
type EmailService interface {
	SendReminderDigest(toEmail string, reminders []models.UpcomingReminder, generatedAt time.Time) error
}
