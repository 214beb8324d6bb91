// Package ingestion polls the news feed for disaster coverage and turns
// matching entries into Google News reports.
package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rescuelink/disaster-response/internal/config"
	"github.com/rescuelink/disaster-response/internal/models"
	"github.com/rescuelink/disaster-response/internal/news"
	"github.com/rescuelink/disaster-response/internal/repository"
	"github.com/rescuelink/disaster-response/internal/rules"
	"github.com/rescuelink/disaster-response/internal/worker"
)

// maxPerPoll caps how many feed entries are processed per poll cycle.
const maxPerPoll = 5

// summaryLen is how much of the body text the preview summary keeps.
const summaryLen = 200

type Manager struct {
	cfg    *config.Config
	repo   repository.ReportRepository
	source news.Source
	pool   *worker.Pool
	wg     sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.ReportRepository, source news.Source) *Manager {
	return &Manager{
		cfg:    cfg,
		repo:   repo,
		source: source,
	}
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, job worker.Job) error {
		report := job.Payload.(*models.Report)

		exists, err := m.repo.ExistsByLink(ctx, report.Link)
		if err != nil {
			slog.Error("error checking link existence", "link", report.Link, "error", err)
			return err
		}
		if exists {
			return nil
		}

		if err := m.repo.Insert(ctx, report); err != nil {
			slog.Error("error adding report", "id", report.ID, "error", err)
			return err
		}

		slog.Info("ingested news report", "id", report.ID, "type", report.DisasterType, "status", report.Status)
		return nil
	}

	m.pool = worker.NewPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	if m.cfg.News.Enabled {
		m.wg.Add(1)
		go m.runPoller(ctx)
	}
}

func (m *Manager) runPoller(ctx context.Context) {
	defer m.wg.Done()
	slog.Info("starting news poller", "interval", m.cfg.News.PollInterval)

	ticker := time.NewTicker(m.cfg.News.PollInterval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("news poller shutting down")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Manager) poll(ctx context.Context) {
	query := news.FeedQuery(m.cfg.News.Region)
	headlines, err := m.source.Search(ctx, query)
	if err != nil {
		slog.Error("news poll failed", "query", query, "error", err)
		return
	}

	if len(headlines) > maxPerPoll {
		headlines = headlines[:maxPerPoll]
	}

	submitted := 0
	for i := range headlines {
		report := m.toReport(&headlines[i])
		if report == nil {
			continue
		}
		m.pool.Submit(worker.Job{Payload: report})
		submitted++
	}

	slog.Debug("news poll complete", "fetched", len(headlines), "submitted", submitted)
}

// toReport converts a feed entry into a Google News report, or nil for
// entries the exclusion list rules out entirely.
func (m *Manager) toReport(h *news.Headline) *models.Report {
	if rules.HasExcludedKeyword(h.Title) {
		return nil
	}

	disasterType := rules.ExtractType(h.Title)

	status := models.StatusUnderReview
	if disasterType != models.TypeUnknown {
		status = models.StatusVerified
	}

	summary := h.Description
	if len(summary) > summaryLen {
		summary = summary[:summaryLen] + "..."
	}

	return &models.Report{
		ID:           uuid.NewString(),
		Source:       models.SourceGoogleNews,
		Title:        h.Title,
		Text:         h.Description,
		Summary:      summary,
		Link:         h.Link,
		Location:     m.cfg.News.Region,
		DisasterType: disasterType,
		Status:       status,
		Timestamp:    time.Now(),
	}
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}
