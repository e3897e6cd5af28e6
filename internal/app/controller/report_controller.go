package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookcity-backend/internal/app/service"
	apperrors "github.com/ikkim/bookcity-backend/internal/errors"
	"github.com/ikkim/bookcity-backend/internal/export"
	"github.com/ikkim/bookcity-backend/internal/middleware"
)

// ArchiveURLHeader carries the storage location of an archived export.
const ArchiveURLHeader = "X-Archive-URL"

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// reportQuery reads ?start=&end=&customer_id=.
func reportQuery(c *gin.Context) (service.ReportQuery, bool) {
	var query service.ReportQuery

	start, ok := parseDateQuery(c, "start")
	if !ok {
		return query, false
	}
	end, ok := parseDateQuery(c, "end")
	if !ok {
		return query, false
	}
	query.Start = start
	query.End = end

	if raw := c.Query("customer_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid customer_id: "+raw)
			return query, false
		}
		query.CustomerID = uint(id)
	}
	return query, true
}

func (ctrl *ReportController) respondReport(c *gin.Context, reportType service.ReportType) {
	query, ok := reportQuery(c)
	if !ok {
		return
	}

	report, err := ctrl.reportService.BuildReport(c.Request.Context(), reportType, query)
	if err != nil {
		respondServiceError(c, err, "build "+string(reportType)+" report")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report": report,
		"count":  len(report.Rows),
	})
}

// SalesReport GET /api/v1/reports/sales?start=&end=
func (ctrl *ReportController) SalesReport(c *gin.Context) {
	ctrl.respondReport(c, service.ReportSales)
}

// StockReport GET /api/v1/reports/stock
func (ctrl *ReportController) StockReport(c *gin.Context) {
	ctrl.respondReport(c, service.ReportStock)
}

// StatementReport GET /api/v1/reports/statement?customer_id=&start=&end=
func (ctrl *ReportController) StatementReport(c *gin.Context) {
	ctrl.respondReport(c, service.ReportStatement)
}

// Dashboard GET /api/v1/reports/dashboard
func (ctrl *ReportController) Dashboard(c *gin.Context) {
	dashboard, err := ctrl.reportService.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "build dashboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}

// ExportReport streams a report as CSV or XLSX, optionally archiving it
// GET /api/v1/reports/:type/export?format=&archive=
func (ctrl *ReportController) ExportReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	reportType, err := service.ParseReportType(c.Param("type"))
	if err != nil {
		respondServiceError(c, err, "export report")
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ReportUnknownFormat, err.Error())
		return
	}

	archive := false
	if raw := c.Query("archive"); raw != "" {
		archive, err = strconv.ParseBool(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "archive must be a boolean")
			return
		}
	}

	query, ok := reportQuery(c)
	if !ok {
		return
	}

	file, err := ctrl.reportService.Export(c.Request.Context(), reportType, query, format, archive)
	if err != nil {
		respondServiceError(c, err, "export report")
		return
	}

	if file.ArchiveURL != "" {
		c.Header(ArchiveURLHeader, file.ArchiveURL)
		log.Info("Report archived", map[string]interface{}{
			"report": reportType,
			"url":    file.ArchiveURL,
		})
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
