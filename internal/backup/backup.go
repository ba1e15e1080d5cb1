// Package backup writes encrypted JSON archives of the lists to
// S3-compatible storage and reads them back.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/liste/internal/model"
)

var (
	// ErrDisabled is returned when storage or the passphrase is not configured.
	ErrDisabled = errors.New("archives not configured")
	// ErrNotFound is returned by Fetch for an unknown archive id.
	ErrNotFound = errors.New("archive not found")
)

// Archive reasons recorded with each run.
const (
	ReasonManual    = "manual"
	ReasonScheduled = "scheduled"
	ReasonClear     = "clear"
)

// FormatVersion is written into every archive document.
const FormatVersion = 1

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source reads the collections being archived.
type Source interface {
	LoadShopping() ([]model.ShoppingItem, error)
	LoadGifts() ([]model.GiftIdea, error)
}

// Records persists archive bookkeeping.
type Records interface {
	Create(filename, s3Key, reason string, itemCount int) (*model.Archive, error)
	GetByID(id int64) (*model.Archive, error)
	List(limit int) ([]model.Archive, error)
	UpdateStatus(id int64, status model.ArchiveStatus, errorMsg string) error
	UpdateCompleted(id, sizeBytes int64) error
	LatestCompleted() (*model.Archive, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3         S3Config
	Passphrase string
	// Prefix is prepended to every object key.
	Prefix string
	// Interval between scheduled archives; zero disables the schedule.
	Interval time.Duration
}

// Document is the plaintext content of an archive.
type Document struct {
	FormatVersion int                  `json:"format_version"`
	CreatedAt     time.Time            `json:"created_at"`
	Reason        string               `json:"reason"`
	Shopping      []model.ShoppingItem `json:"shopping,omitempty"`
	Gifts         []model.GiftIdea     `json:"gifts,omitempty"`
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State       State      `json:"state"`
	LastArchive *time.Time `json:"last_archive,omitempty"`
	Error       string     `json:"error,omitempty"`
	InProgress  bool       `json:"in_progress"`
}

// Manager manages encrypted archives in S3-compatible storage.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status
	client s3Client

	// run serializes archive runs.
	run sync.Mutex

	source  Source
	records Records
	logger  *slog.Logger
	now     func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a new backup manager. It starts disabled unless the
// bucket, both credentials and the passphrase are set.
func NewManager(cfg Config, source Source, records Records, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:     cfg,
		source:  source,
		records: records,
		logger:  logger.With("component", "backup"),
		now:     time.Now,
		status:  Status{State: StateDisabled},
	}

	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	if records != nil {
		if last, err := records.LatestCompleted(); err != nil {
			m.logger.Warn("load last archive", "error", err)
		} else if last != nil {
			m.status.LastArchive = last.CompletedAt
		}
	}

	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether archives can be written.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the scheduled archive loop when an interval is configured.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 {
		m.mu.Unlock()
		return
	}
	interval := m.cfg.Interval
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.Archive(ctx, ReasonScheduled); err != nil {
					m.logger.Error("scheduled archive failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	if s.LastArchive == nil {
		s.LastArchive = m.status.LastArchive
	}
	m.status = s
	m.mu.Unlock()
}

// Archive uploads the named collections, or both when none is named.
func (m *Manager) Archive(ctx context.Context, reason string, collections ...string) (*model.Archive, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	prefix := m.cfg.Prefix
	m.mu.RUnlock()

	if client == nil {
		return nil, ErrDisabled
	}

	m.run.Lock()
	defer m.run.Unlock()

	doc, err := m.document(reason, collections)
	if err != nil {
		return nil, err
	}
	plaintext, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal archive: %w", err)
	}

	m.setStatus(Status{State: StateRunning, InProgress: true})

	filename := fmt.Sprintf("liste-%s.json.enc", doc.CreatedAt.UTC().Format("2006-01-02T150405.000Z"))
	s3Key := path.Join(prefix, filename)

	record, err := m.records.Create(filename, s3Key, reason, len(doc.Shopping)+len(doc.Gifts))
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create archive record: %w", err)
	}
	fail := func(stage string, err error) (*model.Archive, error) {
		m.records.UpdateStatus(record.ID, model.ArchiveStatusFailed, err.Error())
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return fail("salt", err)
	}
	sealed, err := Encrypt(plaintext, passphrase, salt)
	if err != nil {
		return fail("encrypt", err)
	}

	m.records.UpdateStatus(record.ID, model.ArchiveStatusUploading, "")

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(s3Key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return fail("upload to s3", err)
	}

	size := int64(len(sealed))
	if err := m.records.UpdateCompleted(record.ID, size); err != nil {
		m.logger.Error("mark archive completed", "archive_id", record.ID, "error", err)
	}

	now := m.now().UTC()
	m.setStatus(Status{State: StateIdle, LastArchive: &now})
	m.logger.Info("archive uploaded", "archive_id", record.ID, "key", s3Key, "reason", reason, "items", record.ItemCount, "bytes", size)

	record.Status = model.ArchiveStatusCompleted
	record.SizeBytes = size
	record.CompletedAt = &now
	return record, nil
}

func (m *Manager) document(reason string, collections []string) (*Document, error) {
	if len(collections) == 0 {
		collections = []string{model.CollectionShopping, model.CollectionGifts}
	}

	doc := &Document{FormatVersion: FormatVersion, CreatedAt: m.now().UTC(), Reason: reason}
	for _, c := range collections {
		var err error
		switch c {
		case model.CollectionShopping:
			doc.Shopping, err = m.source.LoadShopping()
		case model.CollectionGifts:
			doc.Gifts, err = m.source.LoadGifts()
		default:
			err = fmt.Errorf("unknown collection %q", c)
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", c, err)
		}
	}
	return doc, nil
}

// List returns recent archive records, newest first.
func (m *Manager) List(limit int) ([]model.Archive, error) {
	return m.records.List(limit)
}

// Fetch downloads and decrypts an archive.
func (m *Manager) Fetch(ctx context.Context, id int64) (*Document, error) {
	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	passphrase := m.cfg.Passphrase
	m.mu.RUnlock()

	if client == nil {
		return nil, ErrDisabled
	}

	record, err := m.records.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get archive: %w", err)
	}
	if record == nil || record.Status != model.ArchiveStatusCompleted {
		return nil, ErrNotFound
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.S3Key),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	plaintext, err := Decrypt(sealed, passphrase)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal archive: %w", err)
	}
	return &doc, nil
}
