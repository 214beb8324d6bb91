package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rescuelink/disaster-response/internal/classify"
	"github.com/rescuelink/disaster-response/internal/models"
	"github.com/rescuelink/disaster-response/internal/repository"
	"github.com/rescuelink/disaster-response/internal/rules"
	"github.com/rescuelink/disaster-response/internal/verify"
	"github.com/rescuelink/disaster-response/internal/worker"
)

// reportFeedLimit caps the dashboard feed at the latest 50 reports.
const reportFeedLimit = 50

// Oracle classifies a stored evidence image.
type Oracle interface {
	Classify(ctx context.Context, imagePath string) (string, error)
}

// Corroborator is the verification pipeline surface the handlers drive.
type Corroborator interface {
	ImmediateMatch(ctx context.Context, disasterType, location string) (bool, error)
	VerifyPending(ctx context.Context) (verify.Result, error)
	FixMisclassified(ctx context.Context) (int, error)
	VerifyAll(ctx context.Context) (int64, error)
}

// Queue accepts deferred corroboration jobs.
type Queue interface {
	Submit(job worker.Job)
}

type Handler struct {
	reports     repository.ReportRepository
	ngos        repository.NGORepository
	oracle      Oracle
	verifier    Corroborator
	queue       Queue
	uploadDir   string
	verifyDelay time.Duration
}

func NewHandler(reports repository.ReportRepository, ngos repository.NGORepository,
	oracle Oracle, verifier Corroborator, queue Queue,
	uploadDir string, verifyDelay time.Duration) *Handler {
	return &Handler{
		reports:     reports,
		ngos:        ngos,
		oracle:      oracle,
		verifier:    verifier,
		queue:       queue,
		uploadDir:   uploadDir,
		verifyDelay: verifyDelay,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/reports", h.getReports)
	r.POST("/api/report", h.submitReport)
	r.GET("/api/alerts", h.getAlerts)
	r.PUT("/api/report/:id/status", h.setStatus)
	r.POST("/api/verify-with-news", h.verifyWithNews)
	r.POST("/api/fix-misclassified", h.fixMisclassified)
	r.POST("/api/verify-all", h.verifyAll)
	r.GET("/api/stats", h.getStats)
	r.POST("/api/ngos", h.createNGO)
	r.GET("/api/ngos", h.getNGOs)
	r.GET("/health", h.health)
}

func (h *Handler) getReports(c *gin.Context) {
	reports, err := h.reports.List(c.Request.Context(), repository.Filter{Limit: reportFeedLimit})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (h *Handler) submitReport(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = "User Reported Incident"
	}
	location := strings.TrimSpace(c.PostForm("location"))
	description := c.PostForm("description")

	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}
	if err := verify.ValidateSubmission(location); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var (
		imagePath    string
		aiResult     string
		disasterType = models.TypeUnknown
	)
	if file, err := c.FormFile("image"); err == nil && file != nil {
		imagePath = filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, imagePath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
			return
		}

		raw, err := h.oracle.Classify(ctx, imagePath)
		if err != nil {
			// Classification unavailable: accept the report anyway with
			// an Unknown type.
			slog.Warn("classification unavailable", "image", imagePath, "error", err)
		} else {
			aiResult = strings.TrimSpace(raw)
		}
		disasterType = rules.NormalizeType(classify.ParseLabel(raw))
	}

	status := models.StatusPendingVerification
	if disasterType != models.TypeUnknown {
		matched, err := h.verifier.ImmediateMatch(ctx, disasterType, location)
		if err != nil {
			slog.Error("immediate corroboration check failed", "error", err)
		} else if matched {
			status = models.StatusVerified
		}
	}

	report := &models.Report{
		ID:           uuid.NewString(),
		Source:       models.SourceUserUpload,
		Title:        title,
		Text:         description,
		Location:     location,
		DisasterType: disasterType,
		Status:       status,
		ImagePath:    imagePath,
		Timestamp:    time.Now(),
	}

	if err := h.reports.Insert(ctx, report); err != nil {
		slog.Error("failed to save report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save report"})
		return
	}

	if status == models.StatusPendingVerification {
		h.queue.Submit(worker.Job{
			Payload: report.ID,
			DueAt:   time.Now().Add(h.verifyDelay),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Report Submitted Successfully!",
		"ai_result": aiResult,
		"report":    report,
	})
}

func (h *Handler) getAlerts(c *gin.Context) {
	status := models.StatusVerified
	alerts, err := h.reports.List(c.Request.Context(), repository.Filter{Status: &status})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// setStatus is the manual override: any status to any status, no guard
// rules. This is the only path that can reset a Verification Failed
// report back to Pending News Verification.
func (h *Handler) setStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	status := models.Status(body.Status)
	if !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + body.Status})
		return
	}

	id := c.Param("id")
	if err := h.reports.UpdateStatus(c.Request.Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status updated", "id": id, "status": status})
}

func (h *Handler) verifyWithNews(c *gin.Context) {
	res, err := h.verifier.VerifyPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification pass failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) fixMisclassified(c *gin.Context) {
	fixed, err := h.verifier.FixMisclassified(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "repair sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fixed": fixed})
}

func (h *Handler) verifyAll(c *gin.Context) {
	verified, err := h.verifier.VerifyAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk verify failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": verified})
}

func (h *Handler) getStats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.reports.Count(ctx, repository.Filter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	verified := models.StatusVerified
	verifiedCount, err := h.reports.Count(ctx, repository.Filter{Status: &verified})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	ngoCount, err := h.ngos.CountNGOs(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_reports":        total,
		"verified_emergencies": verifiedCount,
		"active_ngos":          ngoCount,
	})
}

func (h *Handler) createNGO(c *gin.Context) {
	var body struct {
		Name           string `json:"name" binding:"required"`
		Location       string `json:"location"`
		Specialization string `json:"specialization"`
		Contact        string `json:"contact"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	ngo := &models.NGO{
		ID:             uuid.NewString(),
		Name:           body.Name,
		Location:       body.Location,
		Specialization: body.Specialization,
		Contact:        body.Contact,
	}
	if err := h.ngos.AddNGO(c.Request.Context(), ngo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save ngo"})
		return
	}
	c.JSON(http.StatusOK, ngo)
}

func (h *Handler) getNGOs(c *gin.Context) {
	ngos, err := h.ngos.ListNGOs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch ngos"})
		return
	}
	c.JSON(http.StatusOK, ngos)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
