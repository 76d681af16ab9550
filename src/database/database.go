package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/tallytrace/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateAccountsTable()
	migrateTransactionsTable()
	migrateBudgetEntriesTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		entity_type TEXT NOT NULL DEFAULT 'personal',
		description TEXT,
		default_currency TEXT NOT NULL DEFAULT 'PHP',
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		balance REAL NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'PHP',
		credit_limit REAL NOT NULL DEFAULT 0,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(entity_id) REFERENCES entities(id)
	);

	CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER,
		name TEXT NOT NULL,
		description TEXT,
		color TEXT,
		is_expense BOOLEAN DEFAULT TRUE,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(entity_id) REFERENCES entities(id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER,
		account_id INTEGER,
		category_id INTEGER,
		budget_entry_id INTEGER,
		allocation_id INTEGER,
		description TEXT,
		amount REAL NOT NULL,
		transaction_type TEXT NOT NULL,
		transaction_date TEXT NOT NULL,
		is_posted BOOLEAN DEFAULT TRUE,
		transfer_from_account_id INTEGER,
		transfer_to_account_id INTEGER,
		import_hash TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(entity_id) REFERENCES entities(id),
		FOREIGN KEY(account_id) REFERENCES accounts(id),
		FOREIGN KEY(category_id) REFERENCES categories(id),
		FOREIGN KEY(budget_entry_id) REFERENCES budget_entries(id),
		UNIQUE(entity_id, import_hash)
	);

	CREATE TABLE IF NOT EXISTS budget_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER,
		account_id INTEGER,
		category_id INTEGER,
		allocation_id INTEGER,
		name TEXT NOT NULL,
		entry_type TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL DEFAULT 'PHP',
		cadence TEXT NOT NULL,
		next_occurrence TEXT NOT NULL,
		lead_time_days INTEGER NOT NULL DEFAULT 3,
		end_mode TEXT NOT NULL DEFAULT 'indefinite',
		end_date TEXT,
		max_occurrences INTEGER,
		is_autopay BOOLEAN DEFAULT FALSE,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(entity_id) REFERENCES entities(id),
		FOREIGN KEY(account_id) REFERENCES accounts(id),
		FOREIGN KEY(category_id) REFERENCES categories(id)
	);

	CREATE TABLE IF NOT EXISTS allocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER,
		account_id INTEGER,
		name TEXT NOT NULL,
		allocation_type TEXT NOT NULL,
		target_amount REAL NOT NULL DEFAULT 0,
		monthly_target REAL NOT NULL DEFAULT 0,
		current_amount REAL NOT NULL DEFAULT 0,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(entity_id) REFERENCES entities(id),
		FOREIGN KEY(account_id) REFERENCES accounts(id)
	);

	CREATE TABLE IF NOT EXISTS wishlist_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER,
		category_id INTEGER,
		name TEXT NOT NULL,
		estimated_cost REAL NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'PHP',
		priority TEXT NOT NULL DEFAULT 'medium',
		url TEXT,
		notes TEXT,
		target_date TEXT,
		is_purchased BOOLEAN DEFAULT FALSE,
		purchased_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(entity_id) REFERENCES entities(id),
		FOREIGN KEY(category_id) REFERENCES categories(id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_entity_date ON transactions(entity_id, transaction_date);
	CREATE INDEX IF NOT EXISTS idx_budget_entries_entity ON budget_entries(entity_id);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// columnSet returns the column names of an existing table, or nil when the
// table does not exist yet (CREATE TABLE will bring it up to date).
func columnSet(table string) map[string]bool {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		if logger.L != nil {
			logger.L.Error("Error checking for table", "table", table, "error", err)
		} else {
			stdlog.Printf("Error checking for table %s: %v", table, err)
		}
		return nil
	}

	rows, err := DB.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema", "table", table, "error", err)
		} else {
			stdlog.Printf("Error querying table schema for %s: %v", table, err)
		}
		return nil
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info", "table", table, "error", err)
			} else {
				stdlog.Printf("Error scanning column info for %s: %v", table, err)
			}
			return nil
		}
		columns[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info", "table", table, "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for %s: %v", table, err)
		}
		return nil
	}
	return columns
}

func addColumn(table, column, definition string) {
	_, err := DB.Exec("ALTER TABLE " + table + " ADD COLUMN " + column + " " + definition)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error adding column", "table", table, "column", column, "error", err)
		} else {
			stdlog.Printf("Error adding %s column to %s table: %v", column, table, err)
		}
		return
	}
	if logger.L != nil {
		logger.L.Info("Added column", "table", table, "column", column)
	} else {
		stdlog.Printf("Added %s column to %s table", column, table)
	}
}

func migrateAccountsTable() {
	columns := columnSet("accounts")
	if columns == nil {
		return
	}
	if !columns["credit_limit"] {
		addColumn("accounts", "credit_limit", "REAL NOT NULL DEFAULT 0")
	}
}

func migrateTransactionsTable() {
	columns := columnSet("transactions")
	if columns == nil {
		return
	}
	if !columns["import_hash"] {
		addColumn("transactions", "import_hash", "TEXT")
	}
	if !columns["allocation_id"] {
		addColumn("transactions", "allocation_id", "INTEGER")
	}
	if !columns["transfer_from_account_id"] {
		addColumn("transactions", "transfer_from_account_id", "INTEGER")
	}
	if !columns["transfer_to_account_id"] {
		addColumn("transactions", "transfer_to_account_id", "INTEGER")
	}
	if !columns["is_posted"] {
		addColumn("transactions", "is_posted", "BOOLEAN DEFAULT TRUE")
		_, err := DB.Exec("UPDATE transactions SET is_posted = TRUE WHERE is_posted IS NULL")
		if err != nil {
			if logger.L != nil {
				logger.L.Error("Error backfilling is_posted for existing rows", "error", err)
			} else {
				stdlog.Printf("Error backfilling is_posted for existing rows: %v", err)
			}
		}
	}
}

func migrateBudgetEntriesTable() {
	columns := columnSet("budget_entries")
	if columns == nil {
		return
	}
	if !columns["lead_time_days"] {
		addColumn("budget_entries", "lead_time_days", "INTEGER NOT NULL DEFAULT 3")
	}
	if !columns["is_autopay"] {
		addColumn("budget_entries", "is_autopay", "BOOLEAN DEFAULT FALSE")
	}
	if !columns["allocation_id"] {
		addColumn("budget_entries", "allocation_id", "INTEGER")
	}
}
