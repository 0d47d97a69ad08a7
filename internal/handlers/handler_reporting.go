package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ewallet_ledger/internal/core/ports/services"
	"github.com/SscSPs/ewallet_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles report generation requests.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers routes related to reporting.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/monthly", h.getMonthlyComparison)
		reports.GET("/income-expenditure", h.getIncomeExpenditure)
		reports.GET("/analysis", h.getAnalysis)
		reports.POST("/analysis/rebuild", h.rebuildAnalysis)
	}
}

// getMonthlyComparison godoc
// @Summary Monthly deposits and debits
// @Description Sums deposits and debits per calendar month. An explicit date range wins over period.
// @Tags reports
// @Produce  json
// @Param   period query string false "today, this_week, last_week, this_month, last_month or all"
// @Param   startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {array} dto.MonthlySummaryResponse
// @Failure 400 {object} ErrorResponse "Unknown period or malformed dates"
// @Security BearerAuth
// @Router /reports/monthly [get]
func (h *reportingHandler) getMonthlyComparison(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var params dto.MonthlyComparisonParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	rows, err := h.reportingService.MonthlyComparison(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Failed to build monthly comparison")
		return
	}
	c.JSON(http.StatusOK, dto.ToMonthlySummaryResponses(rows))
}

// getIncomeExpenditure godoc
// @Summary Income and expenditure totals
// @Description All-time totals, or totals inside an inclusive date range
// @Tags reports
// @Produce  json
// @Param   startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} dto.IncomeExpenditureResponse
// @Failure 400 {object} ErrorResponse "Malformed dates"
// @Security BearerAuth
// @Router /reports/income-expenditure [get]
func (h *reportingHandler) getIncomeExpenditure(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var params dto.DateRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, err)
		return
	}

	totals, err := h.reportingService.IncomeExpenditure(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Failed to sum income and expenditure")
		return
	}
	c.JSON(http.StatusOK, dto.ToIncomeExpenditureResponse(totals))
}

// getAnalysis godoc
// @Summary Cached running totals
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.AnalysisResponse
// @Security BearerAuth
// @Router /reports/analysis [get]
func (h *reportingHandler) getAnalysis(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	a, err := h.reportingService.AnalysisSnapshot(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load analysis")
		return
	}
	c.JSON(http.StatusOK, dto.ToAnalysisResponse(a))
}

// rebuildAnalysis godoc
// @Summary Recompute the cached totals from the ledger
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.AnalysisResponse
// @Security BearerAuth
// @Router /reports/analysis/rebuild [post]
func (h *reportingHandler) rebuildAnalysis(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	a, err := h.reportingService.RebuildAnalysis(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to rebuild analysis")
		return
	}
	c.JSON(http.StatusOK, dto.ToAnalysisResponse(a))
}
