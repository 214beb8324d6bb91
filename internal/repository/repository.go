package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rescuelink/disaster-response/internal/models"
)

var ErrNotFound = errors.New("report not found")

type Filter struct {
	Limit   int
	Status  *models.Status
	Source  *string
	Type    *string
	NotType *string // exclude reports of this disaster type
	Since   *time.Time
}

type ReportRepository interface {
	Insert(ctx context.Context, r *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ExistsByLink(ctx context.Context, link string) (bool, error)
	// List returns matching reports, newest first.
	List(ctx context.Context, opts Filter) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	// UpdateFields sets status and disaster type together (misclassification repair).
	UpdateFields(ctx context.Context, id string, status models.Status, disasterType string) error
	// UpdateManyStatus moves every report matching opts to status and
	// returns the number of rows changed.
	UpdateManyStatus(ctx context.Context, opts Filter, status models.Status) (int64, error)
	Count(ctx context.Context, opts Filter) (int64, error)
}

type NGORepository interface {
	AddNGO(ctx context.Context, n *models.NGO) error
	ListNGOs(ctx context.Context) ([]models.NGO, error)
	CountNGOs(ctx context.Context) (int64, error)
}
