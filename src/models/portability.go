package models

// ExportBundle is the full JSON export of one entity's book. Keys mirror the
// per-table CSV exports so the two formats stay interchangeable.
type ExportBundle struct {
	Entity        *Entity        `json:"entity"`
	ExportedAt    string         `json:"exported_at"`
	Accounts      []Account      `json:"accounts"`
	Transactions  []Transaction  `json:"transactions"`
	Categories    []Category     `json:"categories"`
	Allocations   []Allocation   `json:"allocations"`
	BudgetEntries []BudgetEntry  `json:"budget_entries"`
	WishlistItems []WishlistItem `json:"wishlist_items"`
}

// ImportSummary reports what happened to each row of an uploaded CSV.
type ImportSummary struct {
	TotalRows         int      `json:"total_rows"`
	Imported          int      `json:"imported"`
	DuplicatesSkipped int      `json:"duplicates_skipped"`
	InvalidSkipped    int      `json:"invalid_skipped"`
	Errors            []string `json:"errors,omitempty"`
}
