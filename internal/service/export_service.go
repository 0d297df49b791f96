package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/internal/models"
	appErrors "github.com/noah-isme/idiomas-adm-api/pkg/errors"
	"github.com/noah-isme/idiomas-adm-api/pkg/export"
	"github.com/noah-isme/idiomas-adm-api/pkg/storage"
)

// ExportFormat selects the rendering backend for an export.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries a rendered export document.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders the validation queue and per-cycle academic
// summaries as downloadable CSV or PDF documents. A copy of every render
// is kept on disk for audit purposes.
type ExportService struct {
	lister     enrollmentLister
	attendance *AttendanceService
	grades     *GradeService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	files      *storage.LocalStorage
	logger     *zap.Logger
	batchSize  int
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(lister enrollmentLister, attendance *AttendanceService, grades *GradeService, files *storage.LocalStorage, logger *zap.Logger, batchSize int) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &ExportService{
		lister:     lister,
		attendance: attendance,
		grades:     grades,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		files:      files,
		logger:     logger,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// ValidationQueue exports every enrollment of the cycle currently awaiting
// validation.
func (s *ExportService) ValidationQueue(ctx context.Context, cycleID string, format ExportFormat) (*ExportResult, error) {
	if cycleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cycle id required")
	}
	records, err := s.collect(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Email", "Kind", "Status", "Payment Reference", "Amount (minor units)", "Paid At", "Registered At"},
	}
	for _, record := range records {
		if record.DisplayStatus() != models.StatusPreEnrolled {
			continue
		}
		row := []string{
			record.StudentName,
			record.StudentEmail,
			string(record.Kind),
			record.DisplayStatus().Label(),
			"", "", "",
			record.CreatedAt.Format("2006-01-02"),
		}
		if record.PaymentDetail != nil {
			row[4] = record.PaymentDetail.Reference
			row[5] = strconv.FormatInt(record.PaymentDetail.Amount, 10)
			row[6] = record.PaymentDetail.PaidAt.Format("2006-01-02")
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	return s.render(dataset, "validation queue", fmt.Sprintf("validation-queue-%s", cycleID), format)
}

// AcademicSummary exports attendance and grade figures for every
// enrollment in the cycle.
func (s *ExportService) AcademicSummary(ctx context.Context, cycleID string, format ExportFormat) (*ExportResult, error) {
	if cycleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cycle id required")
	}
	records, err := s.collect(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	reports, err := s.attendance.CycleAttendance(ctx, cycleID, ids, time.Time{})
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Status", "Attendance %", "Midterm", "Final", "Average", "Graded"},
	}
	for _, record := range records {
		summary, err := s.grades.Summary(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		attendancePct := ""
		if report, ok := reports[record.ID]; ok {
			attendancePct = strconv.Itoa(report.Percentage)
		}
		dataset.Rows = append(dataset.Rows, []string{
			record.StudentName,
			record.DisplayStatus().Label(),
			attendancePct,
			formatScore(summary.MidtermSubtotal),
			formatScore(summary.FinalSubtotal),
			formatScore(summary.Average),
			strconv.FormatBool(summary.Graded),
		})
	}

	return s.render(dataset, "academic summary", fmt.Sprintf("academic-summary-%s", cycleID), format)
}

// collect walks every page of the cycle's enrollments.
func (s *ExportService) collect(ctx context.Context, cycleID string) ([]models.EnrollmentRecord, error) {
	var records []models.EnrollmentRecord
	offset := 0
	for {
		batch, err := s.lister.ListByCycle(ctx, cycleID, offset, s.batchSize, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "enrollment listing interrupted")
		}
		records = append(records, batch...)
		if len(batch) < s.batchSize {
			return records, nil
		}
		offset += s.batchSize
	}
}

func (s *ExportService) render(dataset export.Dataset, title, baseName string, format ExportFormat) (*ExportResult, error) {
	stamp := s.now().UTC().Format("20060102-150405")
	var (
		data        []byte
		err         error
		fileName    string
		contentType string
	)
	switch format {
	case FormatCSV, "":
		data, err = s.csv.Render(dataset)
		fileName = fmt.Sprintf("%s-%s.csv", baseName, stamp)
		contentType = "text/csv"
	case FormatPDF:
		data, err = s.pdf.Render(dataset, title)
		fileName = fmt.Sprintf("%s-%s.pdf", baseName, stamp)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	if s.files != nil {
		if _, err := s.files.Save(fileName, data); err != nil {
			s.logger.Warn("failed to persist export copy", zap.String("file", fileName), zap.Error(err))
		}
	}
	return &ExportResult{FileName: fileName, ContentType: contentType, Data: data}, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
