package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/liste/internal/model"
)

type ShoppingStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db, now: time.Now}
}

func scanShoppingItem(sc scanner) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var urgent, complete, notified int
	var completedBy sql.NullString
	var completedAt sql.NullInt64

	err := sc.Scan(
		&item.ID, &item.Label, &item.AddedBy, &item.Store, &item.Category,
		&urgent, &complete, &completedBy, &item.CreatedAt, &completedAt, &notified,
	)
	if err != nil {
		return nil, err
	}

	item.Urgent = urgent != 0
	item.Complete = complete != 0
	item.Notified = notified != 0
	item.CompletedBy = completedBy.String
	item.CompletedAt = completedAt.Int64
	return &item, nil
}

const shoppingCols = `id, label, added_by, store, category, urgent, complete, completed_by, created_at, completed_at, notified`

// List returns the whole collection in arrival order.
func (s *ShoppingStore) List() ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(`SELECT ` + shoppingCols + ` FROM shopping_items ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	items := []model.ShoppingItem{}
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ShoppingStore) GetByID(id string) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

func (s *ShoppingStore) Create(label, addedBy, store, category string, urgent bool) (*model.ShoppingItem, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO shopping_items (id, label, added_by, store, category, urgent, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM shopping_items))`,
		id, label, addedBy, store, category, boolInt(urgent), s.now().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping item: %w", err)
	}
	return s.GetByID(id)
}

// Update overwrites only the fields set in patch. It returns nil, nil when
// the item does not exist.
func (s *ShoppingStore) Update(id string, patch model.ShoppingPatch) (*model.ShoppingItem, error) {
	if patch.Empty() {
		return nil, ErrInvalidPatch
	}

	var sets []string
	var args []any
	if patch.Label != nil {
		sets = append(sets, "label = ?")
		args = append(args, *patch.Label)
	}
	if patch.Store != nil {
		sets = append(sets, "store = ?")
		args = append(args, *patch.Store)
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Urgent != nil {
		sets = append(sets, "urgent = ?")
		args = append(args, boolInt(*patch.Urgent))
	}
	args = append(args, id)

	_, err := s.db.Exec(`UPDATE shopping_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	return s.GetByID(id)
}

// SetComplete marks the item complete by the given user, or pending again.
// completed_by and completed_at are cleared when the item goes back to pending.
func (s *ShoppingStore) SetComplete(id string, complete bool, by string) (*model.ShoppingItem, error) {
	var err error
	if complete {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET complete = 1, completed_by = ?, completed_at = ? WHERE id = ?`,
			by, s.now().UnixMilli(), id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET complete = 0, completed_by = NULL, completed_at = NULL WHERE id = ?`,
			id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set complete: %w", err)
	}
	return s.GetByID(id)
}

// Toggle flips the completion state in a single statement.
func (s *ShoppingStore) Toggle(id string, by string) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET
		   complete     = 1 - complete,
		   completed_by = CASE WHEN complete = 0 THEN ? ELSE NULL END,
		   completed_at = CASE WHEN complete = 0 THEN ? ELSE NULL END
		 WHERE id = ?`,
		by, s.now().UnixMilli(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle complete: %w", err)
	}
	return s.GetByID(id)
}

// MarkNotified records that the other users were told about the item.
func (s *ShoppingStore) MarkNotified(id string) error {
	_, err := s.db.Exec(`UPDATE shopping_items SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// Delete removes one item and reports whether it existed.
func (s *ShoppingStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete shopping item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteAll clears the collection and returns the number of items removed.
func (s *ShoppingStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM shopping_items`)
	if err != nil {
		return 0, fmt.Errorf("clear shopping items: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// LastSeq returns the arrival position of the newest entry, or 0 when the
// collection is empty.
func (s *ShoppingStore) LastSeq() (int64, error) {
	var seq int64
	err := s.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM shopping_items`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last shopping items seq: %w", err)
	}
	return seq, nil
}

// DeleteThrough removes the entries that arrived at or before seq and returns
// how many were removed. Later arrivals are kept.
func (s *ShoppingStore) DeleteThrough(seq int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM shopping_items WHERE seq <= ?`, seq)
	if err != nil {
		return 0, fmt.Errorf("clear shopping items: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
