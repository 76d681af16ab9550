package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/models"
)

func TestBudgetEntryRoundTrip(t *testing.T) {
	resetDB(t)

	personal := mustCreateEntity(t, "Personal")
	maxRuns := 12
	entry := &models.BudgetEntry{
		EntityID:       &personal.ID,
		Name:           "Gym membership",
		EntryType:      models.EntryTypeExpense,
		Amount:         1200,
		Currency:       "PHP",
		Cadence:        models.CadenceMonthly,
		NextOccurrence: "2025-07-01",
		LeadTimeDays:   5,
		EndMode:        models.EndModeAfterOccurrences,
		MaxOccurrences: &maxRuns,
		IsAutopay:      true,
		IsActive:       true,
	}
	require.NoError(t, CreateBudgetEntry(database.DB, entry))
	assert.NotZero(t, entry.ID)

	got, err := GetBudgetEntryByID(database.DB, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gym membership", got.Name)
	assert.Equal(t, models.EntryTypeExpense, got.EntryType)
	assert.Equal(t, models.CadenceMonthly, got.Cadence)
	assert.Equal(t, "2025-07-01", got.NextOccurrence)
	assert.Equal(t, 5, got.LeadTimeDays)
	assert.Equal(t, models.EndModeAfterOccurrences, got.EndMode)
	require.NotNil(t, got.MaxOccurrences)
	assert.Equal(t, 12, *got.MaxOccurrences)
	assert.Empty(t, got.EndDate)
	assert.True(t, got.IsAutopay)

	got.EndMode = models.EndModeIndefinite
	got.MaxOccurrences = nil
	got.Amount = 1500
	require.NoError(t, UpdateBudgetEntry(database.DB, got))

	reloaded, err := GetBudgetEntryByID(database.DB, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EndModeIndefinite, reloaded.EndMode)
	assert.Nil(t, reloaded.MaxOccurrences)
	assert.InDelta(t, 1500.0, reloaded.Amount, 0.001)
}

func TestListBudgetEntriesOrderAndActiveFilter(t *testing.T) {
	resetDB(t)

	personal := mustCreateEntity(t, "Personal")
	seed := []*models.BudgetEntry{
		{EntityID: &personal.ID, Name: "Rent", EntryType: models.EntryTypeExpense, Amount: 12000, Currency: "PHP", Cadence: models.CadenceMonthly, NextOccurrence: "2025-08-01", EndMode: models.EndModeIndefinite, IsActive: true},
		{EntityID: &personal.ID, Name: "Netflix", EntryType: models.EntryTypeExpense, Amount: 549, Currency: "PHP", Cadence: models.CadenceMonthly, NextOccurrence: "2025-07-15", EndMode: models.EndModeIndefinite, IsActive: true},
		{EntityID: &personal.ID, Name: "Old loan", EntryType: models.EntryTypeExpense, Amount: 2000, Currency: "PHP", Cadence: models.CadenceMonthly, NextOccurrence: "2025-07-05", EndMode: models.EndModeIndefinite, IsActive: false},
	}
	for _, entry := range seed {
		require.NoError(t, CreateBudgetEntry(database.DB, entry))
	}

	all, err := ListBudgetEntries(database.DB, personal.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Old loan", all[0].Name)
	assert.Equal(t, "Netflix", all[1].Name)
	assert.Equal(t, "Rent", all[2].Name)

	active, err := ListBudgetEntries(database.DB, personal.ID, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Netflix", active[0].Name)
	assert.Equal(t, "Rent", active[1].Name)
}

func TestAdvanceBudgetEntryAnchor(t *testing.T) {
	resetDB(t)

	personal := mustCreateEntity(t, "Personal")
	entry := &models.BudgetEntry{
		EntityID: &personal.ID, Name: "Rent", EntryType: models.EntryTypeExpense,
		Amount: 12000, Currency: "PHP", Cadence: models.CadenceMonthly,
		NextOccurrence: "2025-08-01", EndMode: models.EndModeIndefinite, IsActive: true,
	}
	require.NoError(t, CreateBudgetEntry(database.DB, entry))

	require.NoError(t, AdvanceBudgetEntryAnchor(database.DB, entry.ID, "2025-09-01"))

	got, err := GetBudgetEntryByID(database.DB, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", got.NextOccurrence)

	assert.ErrorIs(t, AdvanceBudgetEntryAnchor(database.DB, 9999, "2025-10-01"), ErrNotFound)
}

func TestAllocationTypeFilter(t *testing.T) {
	resetDB(t)

	personal := mustCreateEntity(t, "Personal")
	seed := []*models.Allocation{
		{EntityID: &personal.ID, Name: "Emergency fund", AllocationType: models.AllocationTypeSavings, TargetAmount: 60000, CurrentAmount: 15000, IsActive: true},
		{EntityID: &personal.ID, Name: "Japan trip", AllocationType: models.AllocationTypeGoal, TargetAmount: 80000, MonthlyTarget: 5000, CurrentAmount: 20000, IsActive: true},
		{EntityID: &personal.ID, Name: "Dining out", AllocationType: models.AllocationTypeBudget, TargetAmount: 4000, IsActive: true},
	}
	for _, allocation := range seed {
		require.NoError(t, CreateAllocation(database.DB, allocation))
	}

	all, err := ListAllocations(database.DB, personal.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Dining out", all[0].Name)
	assert.Equal(t, "Emergency fund", all[1].Name)
	assert.Equal(t, "Japan trip", all[2].Name)

	goals, err := ListAllocations(database.DB, personal.ID, string(models.AllocationTypeGoal))
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Japan trip", goals[0].Name)
	assert.InDelta(t, 5000.0, goals[0].MonthlyTarget, 0.001)
}

func TestAllocationRoundTrip(t *testing.T) {
	resetDB(t)

	personal := mustCreateEntity(t, "Personal")
	savingsAccount := &models.Account{EntityID: &personal.ID, Name: "BPI Savings", AccountType: models.AccountTypeSavings, Currency: "PHP", IsActive: true}
	require.NoError(t, CreateAccount(database.DB, savingsAccount))

	allocation := &models.Allocation{
		EntityID:       &personal.ID,
		AccountID:      &savingsAccount.ID,
		Name:           "Emergency fund",
		AllocationType: models.AllocationTypeSavings,
		TargetAmount:   60000,
		CurrentAmount:  15000,
		IsActive:       true,
	}
	require.NoError(t, CreateAllocation(database.DB, allocation))

	got, err := GetAllocationByID(database.DB, allocation.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AccountID)
	assert.Equal(t, savingsAccount.ID, *got.AccountID)

	got.CurrentAmount = 18000
	require.NoError(t, UpdateAllocation(database.DB, got))

	reloaded, err := GetAllocationByID(database.DB, allocation.ID)
	require.NoError(t, err)
	assert.InDelta(t, 18000.0, reloaded.CurrentAmount, 0.001)

	require.NoError(t, DeleteAllocation(database.DB, allocation.ID))
	_, err = GetAllocationByID(database.DB, allocation.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWishlistPriorityOrdering(t *testing.T) {
	resetDB(t)

	personal := mustCreateEntity(t, "Personal")
	seed := []*models.WishlistItem{
		{EntityID: &personal.ID, Name: "Standing desk", EstimatedCost: 15000, Currency: "PHP", Priority: models.WishlistPriorityMedium},
		{EntityID: &personal.ID, Name: "Laptop repair", EstimatedCost: 8000, Currency: "PHP", Priority: models.WishlistPriorityCritical},
		{EntityID: &personal.ID, Name: "Headphones", EstimatedCost: 6000, Currency: "PHP", Priority: models.WishlistPriorityLow},
		{EntityID: &personal.ID, Name: "Office chair", EstimatedCost: 9000, Currency: "PHP", Priority: models.WishlistPriorityHigh},
		{EntityID: &personal.ID, Name: "Monitor", EstimatedCost: 11000, Currency: "PHP", Priority: models.WishlistPriorityMedium},
	}
	for _, item := range seed {
		require.NoError(t, CreateWishlistItem(database.DB, item))
	}

	items, err := ListWishlistItems(database.DB, personal.ID, true)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "Laptop repair", items[0].Name)
	assert.Equal(t, "Office chair", items[1].Name)
	// Same priority keeps insertion order.
	assert.Equal(t, "Standing desk", items[2].Name)
	assert.Equal(t, "Monitor", items[3].Name)
	assert.Equal(t, "Headphones", items[4].Name)
}

func TestWishlistPurchasedFilterAndRoundTrip(t *testing.T) {
	resetDB(t)

	personal := mustCreateEntity(t, "Personal")
	pending := &models.WishlistItem{EntityID: &personal.ID, Name: "Blender", EstimatedCost: 3000, Currency: "PHP", Priority: models.WishlistPriorityMedium, URL: "https://shop.example/blender", TargetDate: "2025-12-01"}
	bought := &models.WishlistItem{EntityID: &personal.ID, Name: "Kettle", EstimatedCost: 1200, Currency: "PHP", Priority: models.WishlistPriorityLow, IsPurchased: true, PurchasedAt: "2025-06-10 08:30:00"}
	require.NoError(t, CreateWishlistItem(database.DB, pending))
	require.NoError(t, CreateWishlistItem(database.DB, bought))

	open, err := ListWishlistItems(database.DB, personal.ID, false)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Blender", open[0].Name)
	assert.Equal(t, "https://shop.example/blender", open[0].URL)
	assert.Equal(t, "2025-12-01", open[0].TargetDate)

	everything, err := ListWishlistItems(database.DB, personal.ID, true)
	require.NoError(t, err)
	assert.Len(t, everything, 2)

	got, err := GetWishlistItemByID(database.DB, bought.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPurchased)
	assert.Equal(t, "2025-06-10 08:30:00", got.PurchasedAt)

	got.IsPurchased = false
	got.PurchasedAt = ""
	require.NoError(t, UpdateWishlistItem(database.DB, got))

	reloaded, err := GetWishlistItemByID(database.DB, bought.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsPurchased)
	assert.Empty(t, reloaded.PurchasedAt)
}

func TestWishlistDeleteNotFound(t *testing.T) {
	resetDB(t)

	assert.ErrorIs(t, DeleteWishlistItem(database.DB, 404), ErrNotFound)
}
