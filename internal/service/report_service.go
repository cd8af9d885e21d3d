package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-agenda-api/internal/access"
	"github.com/noah-isme/sma-agenda-api/internal/models"
	appErrors "github.com/noah-isme/sma-agenda-api/pkg/errors"
	"github.com/noah-isme/sma-agenda-api/pkg/export"
)

// reportHeaders is the fixed column set shared by CSV and PDF artifacts.
var reportHeaders = []string{"name", "start_date", "end_date", "start_time", "end_time"}

type activityLister interface {
	List(ctx context.Context) ([]models.Activity, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type artifactArchive interface {
	Save(filename string, data []byte) (string, error)
}

// ReportConfig tunes recency cadences and artifact archiving.
type ReportConfig struct {
	AdminLookback time.Duration
	UserLookback  time.Duration
	ArchiveCopies bool
}

// ReportArtifact is a rendered report plus transport metadata.
type ReportArtifact struct {
	Data        []byte
	ContentType string
	Filename    string
	Format      models.ReportFormat
}

// ReportService builds the per-role recency view and monthly PDF/CSV exports.
type ReportService struct {
	activities activityLister
	gate       *access.Gate
	csv        csvRenderer
	pdf        pdfRenderer
	archive    artifactArchive
	metrics    *MetricsService
	cfg        ReportConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(activities activityLister, gate *access.Gate, cfg ReportConfig, archive artifactArchive, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = access.NewGate()
	}
	if cfg.AdminLookback <= 0 {
		cfg.AdminLookback = 7 * 24 * time.Hour
	}
	if cfg.UserLookback <= 0 {
		cfg.UserLookback = 30 * 24 * time.Hour
	}
	return &ReportService{
		activities: activities,
		gate:       gate,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		archive:    archive,
		metrics:    metrics,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Recent returns the activities inside the caller's recency window. Admins see
// the weekly cadence, regular users the monthly one.
func (s *ReportService) Recent(ctx context.Context, role models.UserRole) ([]models.Activity, error) {
	if err := s.gate.Authorize(role, access.OpReportGenerate); err != nil {
		return nil, err
	}
	activities, err := s.activities.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return RecentSince(activities, s.now(), s.lookbackFor(role)), nil
}

// Download renders the monthly report for the requested format. Empty months
// produce a valid header-only artifact.
func (s *ReportService) Download(ctx context.Context, role models.UserRole, format, month string) (*ReportArtifact, error) {
	if err := s.gate.Authorize(role, access.OpReportGenerate); err != nil {
		return nil, err
	}

	reportFormat := models.ReportFormat(strings.ToLower(format))
	switch reportFormat {
	case models.ReportFormatCSV, models.ReportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported report format %q", format))
	}

	period, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be formatted as YYYY-MM")
	}

	activities, err := s.activities.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}

	dataset := buildDataset(filterMonth(activities, period))

	var payload []byte
	switch reportFormat {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Laporan Kegiatan %s", month))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	filename := fmt.Sprintf("laporan-%s.%s", month, reportFormat)
	if s.cfg.ArchiveCopies && s.archive != nil {
		if _, archiveErr := s.archive.Save(filename, payload); archiveErr != nil {
			s.logger.Warn("failed to archive report copy", zap.String("filename", filename), zap.Error(archiveErr))
		}
	}
	s.metrics.IncReportGenerated(string(reportFormat))

	return &ReportArtifact{
		Data:        payload,
		ContentType: reportFormat.ContentType(),
		Filename:    filename,
		Format:      reportFormat,
	}, nil
}

func (s *ReportService) lookbackFor(role models.UserRole) time.Duration {
	if role == models.RoleAdmin {
		return s.cfg.AdminLookback
	}
	return s.cfg.UserLookback
}

// filterMonth keeps activities whose start date falls inside the calendar
// month, independent of the recency cutoff used by the Laporan views.
func filterMonth(activities []models.Activity, period time.Time) []models.Activity {
	matched := make([]models.Activity, 0, len(activities))
	for _, activity := range activities {
		start := activity.StartDate.UTC()
		if start.Year() == period.Year() && start.Month() == period.Month() {
			matched = append(matched, activity)
		}
	}
	return matched
}

func buildDataset(activities []models.Activity) export.Dataset {
	rows := make([][]string, 0, len(activities))
	for _, activity := range activities {
		rows = append(rows, []string{
			activity.Name,
			activity.StartDate.UTC().Format("2006-01-02"),
			activity.EndDate.UTC().Format("2006-01-02"),
			activity.StartTime,
			activity.EndTime,
		})
	}
	return export.Dataset{Headers: reportHeaders, Rows: rows}
}
