package table

import (
	"database/sql"
	"errors"
	"fmt"
)

// Table names. Each is provisioned by the startup migration.
const (
	Spaces         = "spaces"
	Memberships    = "memberships"
	UserPrefs      = "user_prefs"
	Invites        = "invites"
	CalendarEvents = "calendar_events"
	WorkOrders     = "work_orders"
	GroceryItems   = "grocery_items"
	Posts          = "posts"
)

// ErrNotFound reports that no entity exists at (partition, row). It is the
// only error callers may translate into an "absent" result; anything else is
// a backend failure and must stay an error.
var ErrNotFound = errors.New("entity not found")

// Store provides keyed-entity access to the named partitioned tables.
// An entity is a JSON body addressed by (partition key, row key).
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert writes a new entity and fails if one already exists at the key.
func (s *Store) Insert(tbl, partitionKey, rowKey string, body []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO `+tbl+` (partition_key, row_key, body) VALUES (?, ?, ?)`,
		partitionKey, rowKey, string(body),
	)
	if err != nil {
		return fmt.Errorf("insert %s (%s, %s): %w", tbl, partitionKey, rowKey, err)
	}
	return nil
}

// Upsert writes an entity, replacing any existing body at the key.
func (s *Store) Upsert(tbl, partitionKey, rowKey string, body []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO `+tbl+` (partition_key, row_key, body) VALUES (?, ?, ?)
		 ON CONFLICT (partition_key, row_key) DO UPDATE SET body = excluded.body`,
		partitionKey, rowKey, string(body),
	)
	if err != nil {
		return fmt.Errorf("upsert %s (%s, %s): %w", tbl, partitionKey, rowKey, err)
	}
	return nil
}

// Get returns the entity body at the key, or ErrNotFound.
func (s *Store) Get(tbl, partitionKey, rowKey string) ([]byte, error) {
	var body string
	err := s.db.QueryRow(
		`SELECT body FROM `+tbl+` WHERE partition_key = ? AND row_key = ?`,
		partitionKey, rowKey,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get %s (%s, %s): %w", tbl, partitionKey, rowKey, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s (%s, %s): %w", tbl, partitionKey, rowKey, err)
	}
	return []byte(body), nil
}

// Delete removes the entity at the key, returning ErrNotFound if absent.
func (s *Store) Delete(tbl, partitionKey, rowKey string) error {
	result, err := s.db.Exec(
		`DELETE FROM `+tbl+` WHERE partition_key = ? AND row_key = ?`,
		partitionKey, rowKey,
	)
	if err != nil {
		return fmt.Errorf("delete %s (%s, %s): %w", tbl, partitionKey, rowKey, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s (%s, %s): %w", tbl, partitionKey, rowKey, ErrNotFound)
	}
	return nil
}

// ListPartition returns the bodies of all entities in a partition.
// Order is unspecified; callers sort in memory.
func (s *Store) ListPartition(tbl, partitionKey string) ([][]byte, error) {
	rows, err := s.db.Query(
		`SELECT body FROM `+tbl+` WHERE partition_key = ?`,
		partitionKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list partition %s (%s): %w", tbl, partitionKey, err)
	}
	defer rows.Close()
	return collectBodies(rows)
}

// ListRow scans all partitions for entities with the given row key. This is
// the reverse lookup used for space-wide membership listing.
func (s *Store) ListRow(tbl, rowKey string) ([][]byte, error) {
	rows, err := s.db.Query(
		`SELECT body FROM `+tbl+` WHERE row_key = ?`,
		rowKey,
	)
	if err != nil {
		return nil, fmt.Errorf("list row %s (%s): %w", tbl, rowKey, err)
	}
	defer rows.Close()
	return collectBodies(rows)
}

func collectBodies(rows *sql.Rows) ([][]byte, error) {
	var bodies [][]byte
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan body: %w", err)
		}
		bodies = append(bodies, []byte(body))
	}
	return bodies, rows.Err()
}
