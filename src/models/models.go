package models

// Enumerations are typed strings with a closed value set. Values arriving
// over the API or from CSV import are validated at the boundary; the engine
// treats anything outside the set as inert rather than guessing.

type EntityType string

const (
	EntityTypePersonal EntityType = "personal"
	EntityTypeBusiness EntityType = "business"
)

func (t EntityType) IsValid() bool {
	return t == EntityTypePersonal || t == EntityTypeBusiness
}

type AccountType string

const (
	AccountTypeCash     AccountType = "cash"
	AccountTypeEWallet  AccountType = "e_wallet"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
	AccountTypeCredit   AccountType = "credit"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeCash, AccountTypeEWallet, AccountTypeSavings, AccountTypeChecking, AccountTypeCredit:
		return true
	}
	return false
}

type TransactionType string

const (
	TransactionTypeDebit    TransactionType = "debit"
	TransactionTypeCredit   TransactionType = "credit"
	TransactionTypeTransfer TransactionType = "transfer"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit || t == TransactionTypeTransfer
}

type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

func (t EntryType) IsValid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

type Cadence string

const (
	CadenceDaily      Cadence = "daily"
	CadenceWeekly     Cadence = "weekly"
	CadenceMonthly    Cadence = "monthly"
	CadenceQuarterly  Cadence = "quarterly"
	CadenceSemiAnnual Cadence = "semi_annual"
	CadenceAnnual     Cadence = "annual"
)

func (c Cadence) IsValid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceQuarterly, CadenceSemiAnnual, CadenceAnnual:
		return true
	}
	return false
}

type EndMode string

const (
	EndModeIndefinite       EndMode = "indefinite"
	EndModeOnDate           EndMode = "on_date"
	EndModeAfterOccurrences EndMode = "after_occurrences"
)

func (m EndMode) IsValid() bool {
	return m == EndModeIndefinite || m == EndModeOnDate || m == EndModeAfterOccurrences
}

type AllocationType string

const (
	AllocationTypeSavings AllocationType = "savings"
	AllocationTypeBudget  AllocationType = "budget"
	AllocationTypeGoal    AllocationType = "goal"
)

func (t AllocationType) IsValid() bool {
	return t == AllocationTypeSavings || t == AllocationTypeBudget || t == AllocationTypeGoal
}

type WishlistPriority string

const (
	WishlistPriorityLow      WishlistPriority = "low"
	WishlistPriorityMedium   WishlistPriority = "medium"
	WishlistPriorityHigh     WishlistPriority = "high"
	WishlistPriorityCritical WishlistPriority = "critical"
)

func (p WishlistPriority) IsValid() bool {
	switch p {
	case WishlistPriorityLow, WishlistPriorityMedium, WishlistPriorityHigh, WishlistPriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities for planning, most urgent first.
func (p WishlistPriority) Rank() int {
	switch p {
	case WishlistPriorityCritical:
		return 0
	case WishlistPriorityHigh:
		return 1
	case WishlistPriorityMedium:
		return 2
	default:
		return 3
	}
}

// Entity is an isolated book of records, e.g. "Personal" or a small
// business. Every other record optionally belongs to one entity; records
// with a nil entity are visible only to unscoped queries.
type Entity struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	EntityType      EntityType `json:"entity_type"`
	Description     string     `json:"description,omitempty"`
	DefaultCurrency string     `json:"default_currency"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       string     `json:"created_at,omitempty"`
	UpdatedAt       string     `json:"updated_at,omitempty"`
}

type Account struct {
	ID          int64       `json:"id"`
	EntityID    *int64      `json:"entity_id,omitempty"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"account_type"`
	Balance     float64     `json:"balance"`
	Currency    string      `json:"currency"`
	CreditLimit float64     `json:"credit_limit,omitempty"` // only meaningful for credit accounts
	IsActive    bool        `json:"is_active"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
}

type Category struct {
	ID          int64  `json:"id"`
	EntityID    *int64 `json:"entity_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"` // hex color for the UI
	IsExpense   bool   `json:"is_expense"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Transaction is a single money event. Amounts are always positive; the
// direction comes from TransactionType. Unposted rows are expected future
// movements and never touch balances or actual totals.
type Transaction struct {
	ID                    int64           `json:"id"`
	EntityID              *int64          `json:"entity_id,omitempty"`
	AccountID             *int64          `json:"account_id,omitempty"`
	CategoryID            *int64          `json:"category_id,omitempty"`
	BudgetEntryID         *int64          `json:"budget_entry_id,omitempty"`
	AllocationID          *int64          `json:"allocation_id,omitempty"`
	Description           string          `json:"description"`
	Amount                float64         `json:"amount"`
	TransactionType       TransactionType `json:"transaction_type"`
	TransactionDate       string          `json:"transaction_date"` // ISO date
	IsPosted              bool            `json:"is_posted"`
	TransferFromAccountID *int64          `json:"transfer_from_account_id,omitempty"`
	TransferToAccountID   *int64          `json:"transfer_to_account_id,omitempty"`
	ImportHash            string          `json:"-"` // dedup key for CSV imports
	CreatedAt             string          `json:"created_at,omitempty"`
	UpdatedAt             string          `json:"updated_at,omitempty"`
}

// BudgetEntry is a recurring income or expense template. NextOccurrence is
// the anchor the projection walks forward from; it is advanced as real
// transactions get matched against the entry.
type BudgetEntry struct {
	ID             int64     `json:"id"`
	EntityID       *int64    `json:"entity_id,omitempty"`
	AccountID      *int64    `json:"account_id,omitempty"`
	CategoryID     *int64    `json:"category_id,omitempty"`
	AllocationID   *int64    `json:"allocation_id,omitempty"`
	Name           string    `json:"name"`
	EntryType      EntryType `json:"entry_type"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	Cadence        Cadence   `json:"cadence"`
	NextOccurrence string    `json:"next_occurrence"` // ISO date
	LeadTimeDays   int       `json:"lead_time_days"`
	EndMode        EndMode   `json:"end_mode"`
	EndDate        string    `json:"end_date,omitempty"` // ISO date, on_date mode only
	MaxOccurrences *int      `json:"max_occurrences,omitempty"`
	IsAutopay      bool      `json:"is_autopay"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      string    `json:"created_at,omitempty"`
	UpdatedAt      string    `json:"updated_at,omitempty"`
}

// Allocation is a named bucket of money: an envelope with a spending limit
// (budget), a savings pot, or a goal with a target.
type Allocation struct {
	ID             int64          `json:"id"`
	EntityID       *int64         `json:"entity_id,omitempty"`
	AccountID      *int64         `json:"account_id,omitempty"`
	Name           string         `json:"name"`
	AllocationType AllocationType `json:"allocation_type"`
	TargetAmount   float64        `json:"target_amount"`
	MonthlyTarget  float64        `json:"monthly_target"`
	CurrentAmount  float64        `json:"current_amount"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      string         `json:"created_at,omitempty"`
	UpdatedAt      string         `json:"updated_at,omitempty"`
}

type WishlistItem struct {
	ID            int64            `json:"id"`
	EntityID      *int64           `json:"entity_id,omitempty"`
	CategoryID    *int64           `json:"category_id,omitempty"`
	Name          string           `json:"name"`
	EstimatedCost float64          `json:"estimated_cost"`
	Currency      string           `json:"currency"`
	Priority      WishlistPriority `json:"priority"`
	URL           string           `json:"url,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	TargetDate    string           `json:"target_date,omitempty"` // ISO date
	IsPurchased   bool             `json:"is_purchased"`
	PurchasedAt   string           `json:"purchased_at,omitempty"`
	CreatedAt     string           `json:"created_at,omitempty"`
	UpdatedAt     string           `json:"updated_at,omitempty"`
}
