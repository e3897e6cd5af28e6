package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/model"
	"github.com/ikkim/bookcity-backend/internal/app/repository"
	"github.com/ikkim/bookcity-backend/internal/db"
	"github.com/ikkim/bookcity-backend/internal/export"
	"github.com/ikkim/bookcity-backend/pkg/logger"
	"github.com/ikkim/bookcity-backend/pkg/util"
	"gorm.io/gorm"
)

// DashboardRecentOrders is how many orders the dashboard lists.
const DashboardRecentOrders = 15

type ReportType string

const (
	ReportSales     ReportType = "sales"
	ReportStock     ReportType = "stock"
	ReportStatement ReportType = "statement"
)

var (
	ErrUnknownReport      = errors.New("unknown report type")
	ErrInvalidDateRange   = errors.New("end date is before start date")
	ErrArchiveUnavailable = errors.New("report archiving is not configured")
)

var reportTitles = map[ReportType]string{
	ReportSales:     "Sales Report",
	ReportStock:     "Stock Level Report",
	ReportStatement: "Customer Statement",
}

// date columns are normalized to YYYY-MM-DD regardless of driver
var reportDateColumns = map[string]bool{
	"order_date": true,
	"due_date":   true,
}

// ReportArchiver stores an exported file and returns where it lives.
type ReportArchiver interface {
	Archive(ctx context.Context, body []byte, ext, contentType string) (string, error)
}

// ReportQuery selects the rows of a report. Stock reports ignore it.
type ReportQuery struct {
	Start      time.Time
	End        time.Time
	CustomerID uint
}

type Dashboard struct {
	TotalPublications   int64                `json:"total_publications"`
	TotalCustomers      int64                `json:"total_customers"`
	PendingOrders       int64                `json:"pending_orders"`
	TodayAdvertisements int64                `json:"today_advertisements"`
	RecentOrders        []model.OrderSummary `json:"recent_orders"`
}

type ExportFile struct {
	FileName    string
	ContentType string
	Body        []byte
	ArchiveURL  string
}

type ReportService interface {
	BuildReport(ctx context.Context, reportType ReportType, query ReportQuery) (*export.Report, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	Export(ctx context.Context, reportType ReportType, query ReportQuery, format export.Format, archive bool) (*ExportFile, error)
}

type reportService struct {
	reportRepo      repository.ReportRepository
	publicationRepo repository.PublicationRepository
	customerRepo    repository.CustomerRepository
	orderRepo       repository.OrderRepository
	adRepo          repository.AdvertisementRepository
	archiver        ReportArchiver
	location        *time.Location
}

// NewReportService builds the service. archiver may be nil.
func NewReportService(
	reportRepo repository.ReportRepository,
	publicationRepo repository.PublicationRepository,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	adRepo repository.AdvertisementRepository,
	archiver ReportArchiver,
	location *time.Location,
) ReportService {
	if location == nil {
		location = time.UTC
	}
	return &reportService{
		reportRepo:      reportRepo,
		publicationRepo: publicationRepo,
		customerRepo:    customerRepo,
		orderRepo:       orderRepo,
		adRepo:          adRepo,
		archiver:        archiver,
		location:        location,
	}
}

// ParseReportType accepts the short names used in URLs.
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := reportTitles[t]; !ok {
		return "", ErrUnknownReport
	}
	return t, nil
}

func (s *reportService) BuildReport(ctx context.Context, reportType ReportType, query ReportQuery) (*export.Report, error) {
	var (
		rows    []db.Row
		columns []string
		err     error
	)

	switch reportType {
	case ReportSales:
		if err := s.checkRange(&query); err != nil {
			return nil, err
		}
		columns = repository.SalesReportColumns
		rows, err = s.reportRepo.Sales(ctx, query.Start, query.End)
	case ReportStock:
		columns = repository.StockReportColumns
		rows, err = s.reportRepo.StockLevels(ctx)
	case ReportStatement:
		if err := s.checkRange(&query); err != nil {
			return nil, err
		}
		if _, err := s.customerRepo.FindByID(ctx, query.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCustomerNotFound
			}
			return nil, err
		}
		columns = repository.StatementReportColumns
		rows, err = s.reportRepo.CustomerStatement(ctx, query.CustomerID, query.Start, query.End)
	default:
		return nil, ErrUnknownReport
	}
	if err != nil {
		return nil, err
	}

	report := &export.Report{
		Title:   reportTitles[reportType],
		Columns: columns,
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	for _, row := range rows {
		values := make([]interface{}, len(columns))
		for i, col := range columns {
			v, _ := row.Get(col)
			if reportDateColumns[col] {
				v = normalizeDate(v)
			}
			values[i] = v
		}
		report.Rows = append(report.Rows, values)
	}
	return report, nil
}

// checkRange defaults a missing range to today and rejects an inverted one.
func (s *reportService) checkRange(query *ReportQuery) error {
	today := util.Today(s.location)
	if query.Start.IsZero() {
		query.Start = today
	}
	if query.End.IsZero() {
		query.End = today
	}
	if query.End.Before(query.Start) {
		return ErrInvalidDateRange
	}
	return nil
}

func normalizeDate(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(util.DateLayout)
	case string:
		if len(val) >= len(util.DateLayout) {
			if _, err := util.ParseDate(val[:len(util.DateLayout)]); err == nil {
				return val[:len(util.DateLayout)]
			}
		}
	}
	return v
}

func (s *reportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		dashboard Dashboard
		err       error
	)

	if dashboard.TotalPublications, err = s.publicationRepo.Count(ctx); err != nil {
		return nil, err
	}
	if dashboard.TotalCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, err
	}
	if dashboard.PendingOrders, err = s.orderRepo.CountPending(ctx); err != nil {
		return nil, err
	}
	today := util.DateOnly{Time: util.Today(s.location)}
	if dashboard.TodayAdvertisements, err = s.adRepo.CountByDate(ctx, today); err != nil {
		return nil, err
	}
	if dashboard.RecentOrders, err = s.orderRepo.FindRecent(ctx, DashboardRecentOrders); err != nil {
		return nil, err
	}
	if dashboard.RecentOrders == nil {
		dashboard.RecentOrders = []model.OrderSummary{}
	}
	return &dashboard, nil
}

// Export renders a report and, when asked, archives a copy.
func (s *reportService) Export(ctx context.Context, reportType ReportType, query ReportQuery, format export.Format, archive bool) (*ExportFile, error) {
	if archive && s.archiver == nil {
		return nil, ErrArchiveUnavailable
	}

	report, err := s.BuildReport(ctx, reportType, query)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, report, format); err != nil {
		return nil, err
	}

	file := &ExportFile{
		FileName:    export.FileName(report.Title, util.Today(s.location), format),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}

	if archive {
		url, err := s.archiver.Archive(ctx, file.Body, string(format), file.ContentType)
		if err != nil {
			return nil, err
		}
		file.ArchiveURL = url
	}

	logger.Info("Report exported", map[string]interface{}{
		"report":   reportType,
		"format":   format,
		"rows":     len(report.Rows),
		"archived": archive,
	})
	return file, nil
}
