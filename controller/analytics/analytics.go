package analytics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"webanalytics/dto"
	"webanalytics/middleware"
	"webanalytics/services"
)

// Provider is what the handlers need from the analytics service.
type Provider interface {
	Overview(ctx context.Context, propertyID string, params dto.DateRangeParams) (*dto.Report, error)
	TopPages(ctx context.Context, propertyID string, params dto.DateRangeParams, limit int64) (*dto.Report, error)
	Devices(ctx context.Context, propertyID string, params dto.DateRangeParams) (*dto.Report, error)
	Referrers(ctx context.Context, propertyID string, params dto.DateRangeParams, limit int64) (*dto.Report, error)
	ClickEvents(ctx context.Context, propertyID string, params dto.DateRangeParams, limit int64) (*dto.Report, error)
	SearchTerms(ctx context.Context, propertyID string, params dto.DateRangeParams, limit int64) (*dto.Report, error)
	SiteAnalytics(ctx context.Context, propertyID string, params dto.DateRangeParams) (*dto.SiteAnalytics, error)
}

func AnalyticsController(router *gin.Engine, provider Provider, accessSecret string) {
	routes := router.Group("/analytics", middleware.AccessTokenMiddleware(accessSecret))
	{
		routes.GET("", func(c *gin.Context) {
			GetReport(c, provider)
		})
		routes.POST("", func(c *gin.Context) {
			GetSiteAnalytics(c, provider)
		})
	}
}

// GetReport serves one report at a time, selected by the type query param.
// Optional sort/direction params order the rows server-side; format=display
// rewrites the overview date column and the topPages duration column for
// direct table rendering.
func GetReport(c *gin.Context, provider Provider) {
	propertyID := c.Query("propertyId")
	if propertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Property ID is required"})
		return
	}

	dataType := c.DefaultQuery("type", "overview")
	params := dto.DateRangeParams{
		Type:      c.DefaultQuery("range", "week"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}

	limit := int64(0)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	ctx := c.Request.Context()

	if dataType == "all" {
		data, err := provider.SiteAnalytics(ctx, propertyID, params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics data"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": data})
		return
	}

	var report *dto.Report
	var err error
	switch dataType {
	case "overview":
		report, err = provider.Overview(ctx, propertyID, params)
	case "topPages":
		report, err = provider.TopPages(ctx, propertyID, params, limit)
	case "devices":
		report, err = provider.Devices(ctx, propertyID, params)
	case "referrers":
		report, err = provider.Referrers(ctx, propertyID, params, limit)
	case "clicks":
		report, err = provider.ClickEvents(ctx, propertyID, params, limit)
	case "searchTerms":
		report, err = provider.SearchTerms(ctx, propertyID, params, limit)
	default:
		report, err = provider.Overview(ctx, propertyID, params)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics data"})
		return
	}

	if key := c.Query("sort"); key != "" {
		report.Rows = services.SortRows(report.Rows, key, c.DefaultQuery("direction", "ascending"))
	}
	if c.Query("format") == "display" {
		formatForDisplay(dataType, report)
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// GetSiteAnalytics serves the joined aggregate for the dashboard in one call.
func GetSiteAnalytics(c *gin.Context, provider Provider) {
	var request dto.AnalyticsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Property ID is required"})
		return
	}

	params := dto.DateRangeParams{Type: "week"}
	if request.DateRange != nil {
		params = *request.DateRange
	}

	data, err := provider.SiteAnalytics(c.Request.Context(), request.PropertyID, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func formatForDisplay(dataType string, report *dto.Report) {
	switch dataType {
	case "overview":
		for i := range report.Rows {
			if len(report.Rows[i].DimensionValues) > 0 {
				report.Rows[i].DimensionValues[0] = services.FormatReportDate(report.Rows[i].DimensionValues[0])
			}
		}
	case "topPages":
		for i := range report.Rows {
			if len(report.Rows[i].MetricValues) > 1 {
				report.Rows[i].MetricValues[1] = services.FormatDuration(report.Rows[i].MetricValues[1])
			}
		}
	}
}
