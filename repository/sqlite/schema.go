package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastygo/crm-reports/repository"
)

// InitSchema creates the CRM tables if they do not exist. Timestamps are
// stored as TEXT in TimeLayout.
func InitSchema(ctx context.Context, db *sql.DB, schema repository.Schema) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	customers := schema.Table(repository.EntityCustomers)
	policies := schema.Table(repository.EntityPolicies)
	representatives := schema.Table(repository.EntityRepresentatives)
	offers := schema.Table(repository.EntityOffers)
	tasks := schema.Table(repository.EntityTasks)

	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		birth_date TEXT,
		gender TEXT,
		marital_status TEXT,
		city TEXT,
		district TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS %[3]s (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		title TEXT,
		role_level INTEGER NOT NULL DEFAULT 5,
		status TEXT NOT NULL DEFAULT 'active',
		department TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS %[4]s (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES %[1]s(id),
		policy_type TEXT NOT NULL,
		premium_amount REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS %[2]s (
		id INTEGER PRIMARY KEY,
		policy_number TEXT NOT NULL,
		customer_id INTEGER NOT NULL REFERENCES %[1]s(id),
		representative_id INTEGER NOT NULL REFERENCES %[3]s(id),
		offer_id INTEGER REFERENCES %[4]s(id),
		policy_type TEXT NOT NULL,
		premium_amount REAL NOT NULL DEFAULT 0 CHECK (premium_amount >= 0),
		status TEXT NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'current',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS %[5]s (
		id INTEGER PRIMARY KEY,
		representative_id INTEGER NOT NULL REFERENCES %[3]s(id),
		customer_id INTEGER REFERENCES %[1]s(id),
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS %[2]s_customer_idx ON %[2]s(customer_id);
	CREATE INDEX IF NOT EXISTS %[2]s_created_idx ON %[2]s(created_at);
	CREATE INDEX IF NOT EXISTS %[3]s_user_idx ON %[3]s(user_id);
	`, customers, policies, representatives, offers, tasks)

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
