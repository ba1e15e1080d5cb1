package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dukerupert/liste/internal/database"
	"github.com/dukerupert/liste/internal/model"
	"github.com/dukerupert/liste/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

type fakeSource struct {
	shopping []model.ShoppingItem
	gifts    []model.GiftIdea
}

func (f fakeSource) LoadShopping() ([]model.ShoppingItem, error) { return f.shopping, nil }

func (f fakeSource) LoadGifts() ([]model.GiftIdea, error) { return f.gifts, nil }

var enabledConfig = Config{
	S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	Passphrase: "correct horse",
	Prefix:     "archives",
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupManager(t *testing.T, src Source) (*Manager, *mockS3Client, *store.ArchiveStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	records := store.NewArchiveStore(db)
	m := NewManager(enabledConfig, src, records, testLogger())
	mock := newMockS3()
	m.client = mock
	return m, mock, records
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, nil, testLogger())
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}
	if m.Enabled() {
		t.Error("expected disabled manager")
	}

	// Storage without a passphrase stays disabled
	noPass := enabledConfig
	noPass.Passphrase = ""
	if NewManager(noPass, nil, nil, testLogger()).Enabled() {
		t.Error("expected disabled manager without passphrase")
	}

	// With S3 config -> idle
	m2 := NewManager(enabledConfig, nil, nil, testLogger())
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
}

func TestArchiveDisabled(t *testing.T) {
	m := NewManager(Config{}, fakeSource{}, nil, testLogger())
	if _, err := m.Archive(context.Background(), ReasonManual); !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
	if _, err := m.Fetch(context.Background(), 1); !errors.Is(err, ErrDisabled) {
		t.Errorf("fetch err = %v, want ErrDisabled", err)
	}
}

func TestArchiveAndFetch(t *testing.T) {
	src := fakeSource{
		shopping: []model.ShoppingItem{{ID: "a", Label: "Lait", AddedBy: "Greg"}},
		gifts:    []model.GiftIdea{{ID: "g", Label: "Livre", Recipient: "Maman"}},
	}
	m, mock, records := setupManager(t, src)
	m.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

	rec, err := m.Archive(context.Background(), ReasonManual)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if rec.ItemCount != 2 || rec.Status != model.ArchiveStatusCompleted {
		t.Errorf("unexpected record: %+v", rec)
	}
	if !strings.HasPrefix(rec.S3Key, "archives/liste-2024-03-01T123000") {
		t.Errorf("key = %q", rec.S3Key)
	}

	stored := mock.objects[rec.S3Key]
	if len(stored) == 0 {
		t.Fatal("nothing uploaded")
	}
	if bytes.Contains(stored, []byte("Lait")) {
		t.Error("archive uploaded in clear text")
	}

	saved, _ := records.GetByID(rec.ID)
	if saved.Status != model.ArchiveStatusCompleted || saved.SizeBytes != int64(len(stored)) {
		t.Errorf("record not completed: %+v", saved)
	}
	if st := m.Status(); st.State != StateIdle || st.LastArchive == nil {
		t.Errorf("status = %+v", st)
	}

	doc, err := m.Fetch(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.FormatVersion != FormatVersion || doc.Reason != ReasonManual {
		t.Errorf("unexpected document header: %+v", doc)
	}
	if len(doc.Shopping) != 1 || doc.Shopping[0].Label != "Lait" || len(doc.Gifts) != 1 {
		t.Errorf("unexpected document content: %+v", doc)
	}
}

func TestArchiveSingleCollection(t *testing.T) {
	src := fakeSource{
		shopping: []model.ShoppingItem{{ID: "a"}, {ID: "b"}},
		gifts:    []model.GiftIdea{{ID: "g"}},
	}
	m, _, _ := setupManager(t, src)

	rec, err := m.Archive(context.Background(), ReasonClear, model.CollectionShopping)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if rec.ItemCount != 2 {
		t.Errorf("item count = %d, want 2", rec.ItemCount)
	}

	doc, err := m.Fetch(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(doc.Gifts) != 0 {
		t.Errorf("gifts should not be archived, got %d", len(doc.Gifts))
	}

	if _, err := m.Archive(context.Background(), ReasonManual, "notes"); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestArchiveUploadFailure(t *testing.T) {
	m, mock, records := setupManager(t, fakeSource{})
	mock.putErr = errors.New("bucket unreachable")

	if _, err := m.Archive(context.Background(), ReasonManual); err == nil {
		t.Fatal("expected upload error")
	}
	if st := m.Status(); st.State != StateError || st.Error == "" {
		t.Errorf("status = %+v", st)
	}

	list, _ := records.List(10)
	if len(list) != 1 || list[0].Status != model.ArchiveStatusFailed {
		t.Fatalf("expected one failed record, got %+v", list)
	}
	if _, err := m.Fetch(context.Background(), list[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("fetch failed archive err = %v, want ErrNotFound", err)
	}
}

func TestFetchWrongPassphrase(t *testing.T) {
	m, _, _ := setupManager(t, fakeSource{})

	rec, err := m.Archive(context.Background(), ReasonManual)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	m.cfg.Passphrase = "something else"
	if _, err := m.Fetch(context.Background(), rec.ID); err == nil {
		t.Error("expected decrypt error with changed passphrase")
	}
	if _, err := m.Fetch(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestManagerStopSafety(t *testing.T) {
	cfg := enabledConfig
	cfg.Interval = time.Hour
	m := NewManager(cfg, fakeSource{}, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{Interval: time.Millisecond}, nil, nil, testLogger())
	m.Start(context.Background())
	// Stop on never-started manager should not block
	m.Stop()

	noSchedule := NewManager(enabledConfig, nil, nil, testLogger())
	noSchedule.Start(context.Background())
	noSchedule.Stop()
}

func TestScheduledArchive(t *testing.T) {
	m, mock, _ := setupManager(t, fakeSource{shopping: []model.ShoppingItem{{ID: "a"}}})
	m.cfg.Interval = 10 * time.Millisecond

	m.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mock.mu.Lock()
		n := len(mock.objects)
		mock.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()

	mock.mu.Lock()
	defer mock.mu.Unlock()
	if len(mock.objects) == 0 {
		t.Error("expected at least one scheduled archive")
	}
}

func TestManagerRestoresLastArchive(t *testing.T) {
	m, _, records := setupManager(t, fakeSource{})
	if _, err := m.Archive(context.Background(), ReasonManual); err != nil {
		t.Fatalf("archive: %v", err)
	}

	restarted := NewManager(enabledConfig, fakeSource{}, records, testLogger())
	if restarted.Status().LastArchive == nil {
		t.Error("last archive time not restored")
	}
}
