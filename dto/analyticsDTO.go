package dto

// DateRangeParams selects the reporting window. Type is one of
// day/week/month/custom; StartDate/EndDate are YYYY-MM-DD and only used for
// the custom type.
type DateRangeParams struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// DateRange is a resolved pair of inclusive calendar-date bounds.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ReportRow is one row of a report: dimension values followed by metric
// values, both positional against the report's headers.
type ReportRow struct {
	DimensionValues []string `json:"dimensionValues"`
	MetricValues    []string `json:"metricValues"`
}

// Report is the flattened result of one analytics query.
type Report struct {
	DimensionHeaders []string    `json:"dimensionHeaders"`
	MetricHeaders    []string    `json:"metricHeaders"`
	Rows             []ReportRow `json:"rows"`
	RowCount         int         `json:"rowCount"`
}

// SiteAnalytics joins every report for one site. ClickEvents and SearchTerms
// are nil when the property has not configured them.
type SiteAnalytics struct {
	Overview     *Report `json:"overview"`
	TopPages     *Report `json:"topPages"`
	DeviceData   *Report `json:"deviceData"`
	ReferrerData *Report `json:"referrerData"`
	ClickEvents  *Report `json:"clickEvents"`
	SearchTerms  *Report `json:"searchTerms"`
}

type AnalyticsRequest struct {
	PropertyID string           `json:"propertyId" binding:"required"`
	DateRange  *DateRangeParams `json:"dateRange"`
}
