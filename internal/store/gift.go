package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/liste/internal/model"
)

type GiftStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewGiftStore(db *sql.DB) *GiftStore {
	return &GiftStore{db: db, now: time.Now}
}

func scanGiftIdea(sc scanner) (*model.GiftIdea, error) {
	var gift model.GiftIdea
	var purchased int
	var purchasedBy sql.NullString
	var purchasedAt sql.NullInt64

	err := sc.Scan(
		&gift.ID, &gift.Label, &gift.Recipient, &gift.Occasion, &gift.EstimatedPrice,
		&gift.AddedBy, &gift.CreatedAt, &purchased, &purchasedBy, &purchasedAt,
	)
	if err != nil {
		return nil, err
	}

	gift.Purchased = purchased != 0
	gift.PurchasedBy = purchasedBy.String
	gift.PurchasedAt = purchasedAt.Int64
	return &gift, nil
}

const giftCols = `id, label, recipient, occasion, estimated_price, added_by, created_at, purchased, purchased_by, purchased_at`

func (s *GiftStore) List() ([]model.GiftIdea, error) {
	rows, err := s.db.Query(`SELECT ` + giftCols + ` FROM gift_ideas ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list gift ideas: %w", err)
	}
	defer rows.Close()

	gifts := []model.GiftIdea{}
	for rows.Next() {
		gift, err := scanGiftIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gift idea: %w", err)
		}
		gifts = append(gifts, *gift)
	}
	return gifts, rows.Err()
}

func (s *GiftStore) GetByID(id string) (*model.GiftIdea, error) {
	row := s.db.QueryRow(`SELECT `+giftCols+` FROM gift_ideas WHERE id = ?`, id)
	gift, err := scanGiftIdea(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gift idea: %w", err)
	}
	return gift, nil
}

// Create stores a new idea. An empty price is replaced by model.DefaultGiftPrice.
func (s *GiftStore) Create(label, recipient, occasion, price, addedBy string) (*model.GiftIdea, error) {
	if strings.TrimSpace(price) == "" {
		price = model.DefaultGiftPrice
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO gift_ideas (id, label, recipient, occasion, estimated_price, added_by, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM gift_ideas))`,
		id, label, recipient, occasion, price, addedBy, s.now().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert gift idea: %w", err)
	}
	return s.GetByID(id)
}

func (s *GiftStore) Update(id string, patch model.GiftPatch) (*model.GiftIdea, error) {
	if patch.Empty() {
		return nil, ErrInvalidPatch
	}

	var sets []string
	var args []any
	if patch.Label != nil {
		sets = append(sets, "label = ?")
		args = append(args, *patch.Label)
	}
	if patch.Recipient != nil {
		sets = append(sets, "recipient = ?")
		args = append(args, *patch.Recipient)
	}
	if patch.Occasion != nil {
		sets = append(sets, "occasion = ?")
		args = append(args, *patch.Occasion)
	}
	if patch.EstimatedPrice != nil {
		price := string(*patch.EstimatedPrice)
		if strings.TrimSpace(price) == "" {
			price = model.DefaultGiftPrice
		}
		sets = append(sets, "estimated_price = ?")
		args = append(args, price)
	}
	args = append(args, id)

	_, err := s.db.Exec(`UPDATE gift_ideas SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update gift idea: %w", err)
	}
	return s.GetByID(id)
}

func (s *GiftStore) SetPurchased(id string, purchased bool, by string) (*model.GiftIdea, error) {
	var err error
	if purchased {
		_, err = s.db.Exec(
			`UPDATE gift_ideas SET purchased = 1, purchased_by = ?, purchased_at = ? WHERE id = ?`,
			by, s.now().UnixMilli(), id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE gift_ideas SET purchased = 0, purchased_by = NULL, purchased_at = NULL WHERE id = ?`,
			id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set purchased: %w", err)
	}
	return s.GetByID(id)
}

func (s *GiftStore) Toggle(id string, by string) (*model.GiftIdea, error) {
	_, err := s.db.Exec(
		`UPDATE gift_ideas SET
		   purchased    = 1 - purchased,
		   purchased_by = CASE WHEN purchased = 0 THEN ? ELSE NULL END,
		   purchased_at = CASE WHEN purchased = 0 THEN ? ELSE NULL END
		 WHERE id = ?`,
		by, s.now().UnixMilli(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle purchased: %w", err)
	}
	return s.GetByID(id)
}

func (s *GiftStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM gift_ideas WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete gift idea: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *GiftStore) DeleteAll() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM gift_ideas`)
	if err != nil {
		return 0, fmt.Errorf("clear gift ideas: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// LastSeq returns the arrival position of the newest entry, or 0 when the
// collection is empty.
func (s *GiftStore) LastSeq() (int64, error) {
	var seq int64
	err := s.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM gift_ideas`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last gift ideas seq: %w", err)
	}
	return seq, nil
}

// DeleteThrough removes the entries that arrived at or before seq and returns
// how many were removed. Later arrivals are kept.
func (s *GiftStore) DeleteThrough(seq int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM gift_ideas WHERE seq <= ?`, seq)
	if err != nil {
		return 0, fmt.Errorf("clear gift ideas: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
