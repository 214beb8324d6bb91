package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/rescuelink/disaster-response/internal/config"
	"github.com/rescuelink/disaster-response/internal/models"
	"github.com/rescuelink/disaster-response/internal/news"
	"github.com/rescuelink/disaster-response/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockReportRepo implements repository.ReportRepository for testing.
type mockReportRepo struct {
	mu      sync.Mutex
	reports map[string]models.Report
	byLink  map[string]bool
}

func newMockRepo() *mockReportRepo {
	return &mockReportRepo{
		reports: make(map[string]models.Report),
		byLink:  make(map[string]bool),
	}
}

func (m *mockReportRepo) Insert(ctx context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = *r
	m.byLink[r.Link] = true
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *mockReportRepo) ExistsByLink(ctx context.Context, link string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byLink[link], nil
}

func (m *mockReportRepo) List(ctx context.Context, opts repository.Filter) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Report
	for _, r := range m.reports {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockReportRepo) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	return nil
}

func (m *mockReportRepo) UpdateFields(ctx context.Context, id string, status models.Status, disasterType string) error {
	return nil
}

func (m *mockReportRepo) UpdateManyStatus(ctx context.Context, opts repository.Filter, status models.Status) (int64, error) {
	return 0, nil
}

func (m *mockReportRepo) Count(ctx context.Context, opts repository.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.reports)), nil
}

type fakeSource struct {
	mu        sync.Mutex
	headlines []news.Headline
	err       error
	queries   []string
}

func (f *fakeSource) Search(ctx context.Context, query string) ([]news.Headline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.headlines, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Worker: config.WorkerConfig{Count: 2, BufferSize: 20},
		News: config.NewsConfig{
			Enabled:      true,
			Region:       "India",
			PollInterval: time.Minute,
		},
	}
}

func runOnePoll(t *testing.T, repo repository.ReportRepository, source news.Source) {
	t.Helper()
	m := NewManager(testConfig(), repo, source)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	// Start performs an initial poll; give the pool time to drain it.
	time.Sleep(100 * time.Millisecond)
	cancel()
	m.Stop()
}

func TestManager_IngestsDisasterNews(t *testing.T) {
	repo := newMockRepo()
	source := &fakeSource{headlines: []news.Headline{
		{
			Title:       "Flood wreaks havoc in Pune, relief underway",
			Link:        "https://example.com/flood",
			Description: "Rescue teams deployed across the city.",
		},
	}}

	runOnePoll(t, repo, source)

	if len(repo.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(repo.reports))
	}
	for _, r := range repo.reports {
		if r.Source != models.SourceGoogleNews {
			t.Errorf("expected source %q, got %q", models.SourceGoogleNews, r.Source)
		}
		if r.DisasterType != "Flood" {
			t.Errorf("expected type Flood, got %q", r.DisasterType)
		}
		if r.Status != models.StatusVerified {
			t.Errorf("typed news report should be Verified, got %q", r.Status)
		}
		if r.Location != "India" {
			t.Errorf("expected default location India, got %q", r.Location)
		}
	}
}

func TestManager_SkipsExcludedHeadlines(t *testing.T) {
	repo := newMockRepo()
	source := &fakeSource{headlines: []news.Headline{
		{Title: "Military exercise Desert Cyclone begins in Pune", Link: "https://example.com/drill"},
	}}

	runOnePoll(t, repo, source)

	if len(repo.reports) != 0 {
		t.Errorf("excluded headlines must not be ingested, got %d reports", len(repo.reports))
	}
}

func TestManager_UntypedNewsGoesUnderReview(t *testing.T) {
	repo := newMockRepo()
	source := &fakeSource{headlines: []news.Headline{
		{Title: "Heavy monsoon brings traffic chaos", Link: "https://example.com/monsoon"},
	}}

	runOnePoll(t, repo, source)

	if len(repo.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(repo.reports))
	}
	for _, r := range repo.reports {
		if r.DisasterType != models.TypeUnknown {
			t.Errorf("expected Unknown type, got %q", r.DisasterType)
		}
		if r.Status != models.StatusUnderReview {
			t.Errorf("untyped news should be Under Review, got %q", r.Status)
		}
	}
}

func TestManager_DeduplicatesByLink(t *testing.T) {
	repo := newMockRepo()
	repo.byLink["https://example.com/flood"] = true
	source := &fakeSource{headlines: []news.Headline{
		{Title: "Flood damages homes, rescue underway", Link: "https://example.com/flood"},
	}}

	runOnePoll(t, repo, source)

	if len(repo.reports) != 0 {
		t.Errorf("already-seen links must be skipped, got %d reports", len(repo.reports))
	}
}

func TestManager_CapsEntriesPerPoll(t *testing.T) {
	repo := newMockRepo()
	var hs []news.Headline
	for i := 0; i < 12; i++ {
		hs = append(hs, news.Headline{
			Title: "Flood damages homes, rescue underway",
			Link:  "https://example.com/flood-" + string(rune('a'+i)),
		})
	}
	source := &fakeSource{headlines: hs}

	runOnePoll(t, repo, source)

	if len(repo.reports) != maxPerPoll {
		t.Errorf("expected %d reports, got %d", maxPerPoll, len(repo.reports))
	}
}

func TestManager_PollFailureIsIsolated(t *testing.T) {
	repo := newMockRepo()
	source := &fakeSource{err: errors.New("feed unavailable")}

	// Must not panic or wedge shutdown.
	runOnePoll(t, repo, source)

	if len(repo.reports) != 0 {
		t.Errorf("expected no reports after failed poll, got %d", len(repo.reports))
	}
}
