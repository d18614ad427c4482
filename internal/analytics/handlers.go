package analytics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// RegisterFinOpsRoutes wires the analytics read side under /api/finops.
func RegisterFinOpsRoutes(r *gin.Engine, stats *StatsService, costs *CostExplorer, reports *ReportService) {
	finops := r.Group("/api/finops")
	finops.GET("/metrics", metricsHandler(stats))
	finops.GET("/costs", costsHandler(costs))
	finops.GET("/forecast", forecastHandler(costs))
	finops.GET("/report", reportHandler(reports))
}

func metricsHandler(stats *StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, ok := parseDateRange(c, defaultLastWeek)
		if !ok {
			return
		}
		result, err := stats.OrderStatistics(c.Request.Context(), start, end)
		if err != nil {
			log.Error().Err(err).Msg("order statistics query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func costsHandler(costs *CostExplorer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, ok := parseDateRange(c, defaultLastWeek)
		if !ok {
			return
		}
		result, err := costs.ActualCosts(c.Request.Context(), start, end)
		if err != nil {
			log.Error().Err(err).Msg("cost explorer query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func forecastHandler(costs *CostExplorer) gin.HandlerFunc {
	return func(c *gin.Context) {
		forecast, err := costs.Forecast(c.Request.Context())
		if err != nil {
			log.Error().Err(err).Msg("cost forecast query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"forecastedMonthlyCost": forecast})
	}
}

func reportHandler(reports *ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end, ok := parseDateRange(c, defaultYesterday)
		if !ok {
			return
		}
		report, err := reports.Generate(c.Request.Context(), start, end)
		if err != nil {
			log.Error().Err(err).Msg("report generation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func defaultLastWeek(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -7), now
}

func defaultYesterday(now time.Time) (time.Time, time.Time) {
	y := now.AddDate(0, 0, -1)
	return y, y
}

// parseDateRange reads startDate/endDate query params, falling back to the
// given default range. A malformed date writes the 400 response itself.
func parseDateRange(c *gin.Context, defaults func(time.Time) (time.Time, time.Time)) (time.Time, time.Time, bool) {
	start, end := defaults(time.Now().UTC())

	if s := c.Query("startDate"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be formatted as YYYY-MM-DD"})
			return time.Time{}, time.Time{}, false
		}
		start = parsed
	}
	if s := c.Query("endDate"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be formatted as YYYY-MM-DD"})
			return time.Time{}, time.Time{}, false
		}
		end = parsed
	}
	return start, end, true
}
