// Package verify implements the corroboration pipeline: matching citizen
// reports against independent news coverage and the maintenance sweeps
// that keep the report statuses honest.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rescuelink/disaster-response/internal/models"
	"github.com/rescuelink/disaster-response/internal/news"
	"github.com/rescuelink/disaster-response/internal/repository"
	"github.com/rescuelink/disaster-response/internal/rules"
)

// ErrInvalidLocation is returned when a submission's location is itself a
// disaster-type keyword, which would corrupt news-query construction.
var ErrInvalidLocation = errors.New("location must be a place name, not a disaster type")

// maxCandidates bounds the news-candidate scan per report. The feed may
// return more; only the head is inspected.
const maxCandidates = 10

// recentWindow is how far back the submission-time check looks for
// already-ingested news coverage.
const recentWindow = 24 * time.Hour

// Result summarizes one corroboration pass.
type Result struct {
	Verified   int `json:"verified"`
	Unverified int `json:"unverified"`
	Failed     int `json:"failed"`
}

type Verifier struct {
	repo   repository.ReportRepository
	source news.Source
	region string
}

func New(repo repository.ReportRepository, source news.Source, region string) *Verifier {
	return &Verifier{
		repo:   repo,
		source: source,
		region: region,
	}
}

// ValidateSubmission rejects a citizen submission whose location field is
// a reserved disaster-type keyword. Other fields pass through; presence
// constraints live at the HTTP boundary.
func ValidateSubmission(location string) error {
	if rules.IsReservedLocation(location) {
		return ErrInvalidLocation
	}
	return nil
}

// VerifyPending runs the deferred corroboration pass over every report
// still in "Pending News Verification". Reports with an Unknown disaster
// type are never corroborated and stay pending. A failed fetch for one
// report does not abort the rest of the batch.
func (v *Verifier) VerifyPending(ctx context.Context) (Result, error) {
	status := models.StatusPendingVerification
	unknown := models.TypeUnknown
	pending, err := v.repo.List(ctx, repository.Filter{Status: &status, NotType: &unknown})
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i := range pending {
		r := &pending[i]
		next := v.corroborate(ctx, r)
		switch next {
		case models.StatusVerified:
			res.Verified++
		case models.StatusUnverified:
			res.Unverified++
		case models.StatusVerificationFailed:
			res.Failed++
		}
		if err := v.repo.UpdateStatus(ctx, r.ID, next); err != nil {
			slog.Error("failed to persist verification outcome", "id", r.ID, "status", next, "error", err)
		}
	}

	slog.Info("corroboration pass complete",
		"eligible", len(pending), "verified", res.Verified,
		"unverified", res.Unverified, "failed", res.Failed)
	return res, nil
}

// VerifyByID is the deferred-job entry point: it re-checks eligibility
// before corroborating, so a report already verified at submission time
// (or manually moved) is left alone. That status guard is the only
// concurrency-safety mechanism between the immediate check and this pass.
func (v *Verifier) VerifyByID(ctx context.Context, id string) error {
	r, err := v.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != models.StatusPendingVerification || r.DisasterType == models.TypeUnknown {
		return nil
	}

	next := v.corroborate(ctx, r)
	return v.repo.UpdateStatus(ctx, r.ID, next)
}

// corroborate decides the terminal status for a single pending report.
func (v *Verifier) corroborate(ctx context.Context, r *models.Report) models.Status {
	query := news.BuildQuery(r.DisasterType, r.Location, v.region)
	headlines, err := v.source.Search(ctx, query)
	if err != nil {
		slog.Error("news fetch failed", "id", r.ID, "query", query, "error", err)
		return models.StatusVerificationFailed
	}

	if len(headlines) > maxCandidates {
		headlines = headlines[:maxCandidates]
	}

	typ := strings.ToLower(r.DisasterType)
	loc := strings.ToLower(r.Location)
	plausible := rules.Plausible(r.DisasterType, r.Title)

	for _, h := range headlines {
		title := strings.ToLower(h.Title)
		if strings.Contains(title, typ) && strings.Contains(title, loc) && plausible {
			slog.Info("report corroborated", "id", r.ID, "headline", h.Title)
			return models.StatusVerified
		}
	}
	return models.StatusUnverified
}

// ImmediateMatch is the best-effort submission-time check: it looks for
// already-ingested Google News reports of the same type within the last
// 24 hours that mention the location and read like genuine disaster
// coverage. A hit verifies the new report without waiting for the
// deferred pass.
func (v *Verifier) ImmediateMatch(ctx context.Context, disasterType, location string) (bool, error) {
	if disasterType == models.TypeUnknown {
		return false, nil
	}

	source := models.SourceGoogleNews
	since := time.Now().Add(-recentWindow)
	recent, err := v.repo.List(ctx, repository.Filter{
		Source: &source,
		Type:   &disasterType,
		Since:  &since,
	})
	if err != nil {
		return false, err
	}

	loc := strings.ToLower(location)
	for i := range recent {
		r := &recent[i]
		text := strings.ToLower(r.Title + " " + r.Text)
		if !strings.Contains(text, loc) && !strings.EqualFold(r.Location, location) {
			continue
		}
		if rules.HasExcludedKeyword(text) {
			continue
		}
		if rules.HasDisasterContext(text) {
			return true, nil
		}
	}
	return false, nil
}

// FixMisclassified scans all Verified reports and demotes any whose
// disaster type is logically inconsistent with its own title, resetting
// the type to Unknown for re-review. Idempotent: a second run with no new
// inconsistencies touches nothing.
func (v *Verifier) FixMisclassified(ctx context.Context) (int, error) {
	status := models.StatusVerified
	verified, err := v.repo.List(ctx, repository.Filter{Status: &status})
	if err != nil {
		return 0, err
	}

	fixed := 0
	for i := range verified {
		r := &verified[i]
		if rules.Plausible(r.DisasterType, r.Title) {
			continue
		}
		if err := v.repo.UpdateFields(ctx, r.ID, models.StatusMisclassified, models.TypeUnknown); err != nil {
			slog.Error("failed to flag misclassified report", "id", r.ID, "error", err)
			continue
		}
		slog.Info("flagged misclassified report", "id", r.ID, "type", r.DisasterType, "title", r.Title)
		fixed++
	}
	return fixed, nil
}

// VerifyAll bulk-promotes every Under Review report with a known disaster
// type straight to Verified. Returns the number of reports moved.
func (v *Verifier) VerifyAll(ctx context.Context) (int64, error) {
	status := models.StatusUnderReview
	unknown := models.TypeUnknown
	return v.repo.UpdateManyStatus(ctx,
		repository.Filter{Status: &status, NotType: &unknown},
		models.StatusVerified)
}
