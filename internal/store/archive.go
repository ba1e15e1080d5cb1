package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/liste/internal/model"
)

type ArchiveStore struct {
	db *sql.DB
}

func NewArchiveStore(db *sql.DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

const archiveCols = `id, filename, s3_key, reason, item_count, size_bytes, status, error_message, completed_at, created_at`

func scanArchive(sc scanner) (*model.Archive, error) {
	var a model.Archive
	var errMsg sql.NullString
	var completedAt sql.NullTime
	err := sc.Scan(&a.ID, &a.Filename, &a.S3Key, &a.Reason, &a.ItemCount, &a.SizeBytes, &a.Status, &errMsg, &completedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.ErrorMessage = errMsg.String
	if completedAt.Valid {
		a.CompletedAt = &completedAt.Time
	}
	return &a, nil
}

func (s *ArchiveStore) Create(filename, s3Key, reason string, itemCount int) (*model.Archive, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO archives (filename, s3_key, reason, item_count, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		filename, s3Key, reason, itemCount, model.ArchiveStatusPending, now,
	)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	id, _ := result.LastInsertId()
	return &model.Archive{
		ID:        id,
		Filename:  filename,
		S3Key:     s3Key,
		Reason:    reason,
		ItemCount: itemCount,
		Status:    model.ArchiveStatusPending,
		CreatedAt: now,
	}, nil
}

func (s *ArchiveStore) GetByID(id int64) (*model.Archive, error) {
	a, err := scanArchive(s.db.QueryRow(`SELECT `+archiveCols+` FROM archives WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get archive %d: %w", id, err)
	}
	return a, nil
}

// List returns the most recent archives first.
func (s *ArchiveStore) List(limit int) ([]model.Archive, error) {
	rows, err := s.db.Query(`SELECT `+archiveCols+` FROM archives ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	archives := []model.Archive{}
	for rows.Next() {
		a, err := scanArchive(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		archives = append(archives, *a)
	}
	return archives, rows.Err()
}

func (s *ArchiveStore) UpdateStatus(id int64, status model.ArchiveStatus, errorMsg string) error {
	var errPtr *string
	if errorMsg != "" {
		errPtr = &errorMsg
	}
	_, err := s.db.Exec(`UPDATE archives SET status = ?, error_message = ? WHERE id = ?`, status, errPtr, id)
	if err != nil {
		return fmt.Errorf("update archive status: %w", err)
	}
	return nil
}

func (s *ArchiveStore) UpdateCompleted(id, sizeBytes int64) error {
	_, err := s.db.Exec(
		`UPDATE archives SET status = ?, size_bytes = ?, completed_at = ? WHERE id = ?`,
		model.ArchiveStatusCompleted, sizeBytes, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update archive completed: %w", err)
	}
	return nil
}

func (s *ArchiveStore) LatestCompleted() (*model.Archive, error) {
	a, err := scanArchive(s.db.QueryRow(
		`SELECT `+archiveCols+` FROM archives WHERE status = ? ORDER BY id DESC LIMIT 1`,
		model.ArchiveStatusCompleted,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed archive: %w", err)
	}
	return a, nil
}
