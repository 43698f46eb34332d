package worker

import (
	"TuneRelay/internal/access"
	"TuneRelay/internal/cache"
	"TuneRelay/internal/fetch"
	"TuneRelay/internal/gateway"
	"TuneRelay/internal/queue"
	"TuneRelay/internal/repo"
	"TuneRelay/internal/stats"
	"TuneRelay/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakeGateway records outbound deliveries. Handles listed in stale are
// rejected like a transport that forgot the upload.
type fakeGateway struct {
	mu          sync.Mutex
	texts       []string
	uploads     []gateway.Audio
	handleSends []string
	stale       map[string]bool
	nextHandle  int
}

func (f *fakeGateway) Updates() <-chan gateway.Update { return nil }

func (f *fakeGateway) SendText(chatID int64, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return len(f.texts), nil
}

func (f *fakeGateway) EditText(chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeGateway) DeleteMessage(chatID int64, messageID int) error { return nil }

func (f *fakeGateway) SendAudioFile(chatID int64, path string, meta gateway.Audio) (string, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHandle++
	f.uploads = append(f.uploads, meta)
	return fmt.Sprintf("handle-%d", f.nextHandle), info.Size(), nil
}

func (f *fakeGateway) SendAudioHandle(chatID int64, handle string, meta gateway.Audio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale[handle] {
		return fmt.Errorf("resend %s: %w", handle, gateway.ErrStaleHandle)
	}
	f.handleSends = append(f.handleSends, handle)
	return nil
}

func (f *fakeGateway) SendApprovalRequest(adminChatID int64, subject gateway.UserRef) error {
	return nil
}

func (f *fakeGateway) AnswerCallback(callbackID, text string, alert bool) error { return nil }

func (f *fakeGateway) hasText(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, text := range f.texts {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

// fakeFetcher writes a fixed payload into a fresh work dir per call.
type fakeFetcher struct {
	payload []byte
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, sourceURL string) (*fetch.Artifact, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	dir, err := os.MkdirTemp("", "pipeline-test-")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "input.mp3")
	if err := os.WriteFile(path, f.payload, 0o644); err != nil {
		return nil, err
	}
	return &fetch.Artifact{
		Path:      path,
		Size:      int64(len(f.payload)),
		Title:     "Song",
		Performer: "Channel",
		WorkDir:   dir,
	}, nil
}

type fixture struct {
	pipeline *Pipeline
	gw       *fakeGateway
	fetcher  *fakeFetcher
	cache    *cache.Cache
	ctl      *access.Controller
}

func newFixture(t *testing.T, partLimit int64) *fixture {
	repo.InitTestDB(t)
	f := &fixture{
		gw:      &fakeGateway{stale: map[string]bool{}},
		fetcher: &fakeFetcher{payload: bytes.Repeat([]byte("x"), 20)},
		cache:   cache.New(repo.Db),
		ctl:     access.NewController(access.NewGormBackend(repo.Db)),
	}
	agg := stats.New(repo.Db, f.cache)
	f.pipeline = NewPipeline(f.gw, f.ctl, f.cache, agg, f.fetcher, partLimit)
	return f
}

func request(telegramID int64, url string) queue.Request {
	return queue.Request{
		ChatID:     telegramID,
		TelegramID: telegramID,
		FullName:   "User",
		UserName:   "user",
		SourceURL:  url,
	}
}

func loadUser(t *testing.T, telegramID int64) *model.User {
	t.Helper()
	var user model.User
	if err := repo.Db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	return &user
}

// TestProcessFreshFetch tests a cache miss end to end: fetch, upload,
// cache population and stats.
func TestProcessFreshFetch(t *testing.T) {
	f := newFixture(t, 1024)
	url := "https://youtu.be/abc"

	if err := f.pipeline.Process(context.Background(), request(100, url)); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if f.fetcher.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", f.fetcher.calls)
	}
	if len(f.gw.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(f.gw.uploads))
	}

	result, err := f.cache.Lookup(url)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result.State != cache.Complete || len(result.Parts) != 1 {
		t.Fatalf("expected a complete single-part cache entry, got %v with %d parts", result.State, len(result.Parts))
	}
	if result.Parts[0].Title != "Song" || result.Parts[0].FileSize != 20 {
		t.Fatalf("bad cached metadata: %+v", result.Parts[0])
	}

	user := loadUser(t, 100)
	if user.RequestsCount != 1 || user.DownloadsCount != 1 || user.TotalDownloadedSize != 20 {
		t.Fatalf("stats = %d/%d/%d, want 1/1/20",
			user.RequestsCount, user.DownloadsCount, user.TotalDownloadedSize)
	}
}

// TestProcessCachedRedelivery tests that a second request is served by
// stored handles without another fetch, and only the request counter
// moves.
func TestProcessCachedRedelivery(t *testing.T) {
	f := newFixture(t, 1024)
	url := "https://youtu.be/abc"

	for i := 0; i < 2; i++ {
		if err := f.pipeline.Process(context.Background(), request(100, url)); err != nil {
			t.Fatalf("Process #%d failed: %v", i+1, err)
		}
	}

	if f.fetcher.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", f.fetcher.calls)
	}
	if len(f.gw.handleSends) != 1 {
		t.Fatalf("expected 1 handle resend, got %d", len(f.gw.handleSends))
	}

	user := loadUser(t, 100)
	if user.RequestsCount != 2 || user.DownloadsCount != 1 {
		t.Fatalf("stats = %d/%d, want 2/1", user.RequestsCount, user.DownloadsCount)
	}
}

// TestProcessStaleHandle tests the fallback: a rejected handle leads to
// a fresh fetch, and the unique-delivery counter does not move again.
func TestProcessStaleHandle(t *testing.T) {
	f := newFixture(t, 1024)
	url := "https://youtu.be/abc"

	if err := f.pipeline.Process(context.Background(), request(100, url)); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	f.gw.stale["handle-1"] = true

	if err := f.pipeline.Process(context.Background(), request(100, url)); err != nil {
		t.Fatalf("second Process failed: %v", err)
	}

	if f.fetcher.calls != 2 {
		t.Fatalf("expected a refetch, got %d fetches", f.fetcher.calls)
	}
	if !f.gw.hasText("Cache is stale") {
		t.Fatal("expected the stale-cache notice")
	}
	if len(f.gw.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(f.gw.uploads))
	}

	user := loadUser(t, 100)
	if user.RequestsCount != 2 || user.DownloadsCount != 1 {
		t.Fatalf("stats = %d/%d, want 2/1", user.RequestsCount, user.DownloadsCount)
	}
}

// TestProcessFetchFailure tests that a failing fetch reports the cause
// and leaves the cache empty.
func TestProcessFetchFailure(t *testing.T) {
	f := newFixture(t, 1024)
	f.fetcher.err = errors.New("video unavailable")
	url := "https://youtu.be/gone"

	err := f.pipeline.Process(context.Background(), request(100, url))
	if err == nil {
		t.Fatal("Process should fail when the fetch fails")
	}
	if !f.gw.hasText("video unavailable") {
		t.Fatal("expected the failure cause reported to the user")
	}

	result, lookupErr := f.cache.Lookup(url)
	if lookupErr != nil {
		t.Fatalf("Lookup failed: %v", lookupErr)
	}
	if result.State != cache.Miss {
		t.Fatalf("expected an empty cache, got %v", result.State)
	}

	user := loadUser(t, 100)
	if user.RequestsCount != 0 || user.DownloadsCount != 0 {
		t.Fatalf("stats must not move on failure, got %d/%d", user.RequestsCount, user.DownloadsCount)
	}
}

// TestProcessMultiPart tests chunked delivery: a 20-byte artifact over
// an 8-byte limit stores three parts, and cached redelivery carries
// positional markers.
func TestProcessMultiPart(t *testing.T) {
	f := newFixture(t, 8)
	url := "https://youtu.be/long"

	if err := f.pipeline.Process(context.Background(), request(100, url)); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(f.gw.uploads) != 3 {
		t.Fatalf("expected 3 uploads, got %d", len(f.gw.uploads))
	}

	result, err := f.cache.Lookup(url)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result.State != cache.Complete || result.TotalParts != 3 {
		t.Fatalf("expected a complete 3-part entry, got %v/%d", result.State, result.TotalParts)
	}
	for i, part := range result.Parts {
		if part.PartNumber != i+1 {
			t.Fatalf("parts out of order: %+v", result.Parts)
		}
	}

	// Redelivery resends all parts with positional markers.
	if err := f.pipeline.Process(context.Background(), request(100, url)); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if len(f.gw.handleSends) != 3 {
		t.Fatalf("expected 3 handle resends, got %d", len(f.gw.handleSends))
	}
}
