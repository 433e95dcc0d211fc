package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"webanalytics/dto"
)

var ErrPropertyRequired = errors.New("property ID is required")

// ReportRunner issues one report query against a GA4 property. Implemented by
// GAReportRunner over the Data API service; faked in tests.
type ReportRunner interface {
	RunReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error)
}

// GAReportRunner adapts *analyticsdata.Service to ReportRunner.
type GAReportRunner struct {
	service *analyticsdata.Service
}

func NewGAReportRunner(service *analyticsdata.Service) *GAReportRunner {
	return &GAReportRunner{service: service}
}

func (r *GAReportRunner) RunReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	return r.service.Properties.RunReport(property, req).Context(ctx).Do()
}

// AnalyticsService issues parameterized report queries against a GA4 property
// and flattens the responses into plain rows.
type AnalyticsService struct {
	runner  ReportRunner
	logger  *zap.Logger
	timeout time.Duration
	limit   int64
}

func NewAnalyticsService(runner ReportRunner, logger *zap.Logger, timeout time.Duration, defaultLimit int64) *AnalyticsService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &AnalyticsService{runner: runner, logger: logger, timeout: timeout, limit: defaultLimit}
}

// Overview: page views, users and sessions per date.
func (s *AnalyticsService) Overview(ctx context.Context, propertyID string, params dto.DateRangeParams) (*dto.Report, error) {
	return s.run(ctx, propertyID, &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(params),
		Dimensions: dimensions("date"),
		Metrics:    metrics("screenPageViews", "totalUsers", "sessions"),
	})
}

// TopPages: most viewed pages with average session duration.
func (s *AnalyticsService) TopPages(ctx context.Context, propertyID string, params dto.DateRangeParams, limit int64) (*dto.Report, error) {
	return s.run(ctx, propertyID, &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(params),
		Dimensions: dimensions("pagePath", "pageTitle"),
		Metrics:    metrics("screenPageViews", "averageSessionDuration"),
		OrderBys:   metricDesc("screenPageViews"),
		Limit:      s.rowLimit(limit),
	})
}

// Devices: users per device category.
func (s *AnalyticsService) Devices(ctx context.Context, propertyID string, params dto.DateRangeParams) (*dto.Report, error) {
	return s.run(ctx, propertyID, &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(params),
		Dimensions: dimensions("deviceCategory"),
		Metrics:    metrics("totalUsers"),
	})
}

// Referrers: sessions per source.
func (s *AnalyticsService) Referrers(ctx context.Context, propertyID string, params dto.DateRangeParams, limit int64) (*dto.Report, error) {
	return s.run(ctx, propertyID, &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(params),
		Dimensions: dimensions("sessionSource"),
		Metrics:    metrics("sessions"),
		OrderBys:   metricDesc("sessions"),
		Limit:      s.rowLimit(limit),
	})
}

// ClickEvents: counts of events whose name begins with "click". Only works
// when the property has click tracking configured.
func (s *AnalyticsService) ClickEvents(ctx context.Context, propertyID string, params dto.DateRangeParams, limit int64) (*dto.Report, error) {
	return s.run(ctx, propertyID, &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(params),
		Dimensions: dimensions("eventName"),
		Metrics:    metrics("eventCount"),
		DimensionFilter: &analyticsdata.FilterExpression{
			Filter: &analyticsdata.Filter{
				FieldName: "eventName",
				StringFilter: &analyticsdata.StringFilter{
					MatchType: "BEGINS_WITH",
					Value:     "click",
				},
			},
		},
		Limit: s.rowLimit(limit),
	})
}

// SearchTerms: internal site-search keywords. Only works when the property has
// site search configured.
func (s *AnalyticsService) SearchTerms(ctx context.Context, propertyID string, params dto.DateRangeParams, limit int64) (*dto.Report, error) {
	return s.run(ctx, propertyID, &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(params),
		Dimensions: dimensions("searchTerm"),
		Metrics:    metrics("eventCount"),
		OrderBys:   metricDesc("eventCount"),
		Limit:      s.rowLimit(limit),
	})
}

// SiteAnalytics fans out every report concurrently and joins the results.
// The four required reports fail the whole call; click events and search terms
// degrade to nil when the property has not configured them.
func (s *AnalyticsService) SiteAnalytics(ctx context.Context, propertyID string, params dto.DateRangeParams) (*dto.SiteAnalytics, error) {
	if propertyID == "" {
		return nil, ErrPropertyRequired
	}

	type reportResult struct {
		name     string
		report   *dto.Report
		optional bool
		err      error
	}

	queries := []struct {
		name     string
		optional bool
		fetch    func() (*dto.Report, error)
	}{
		{"overview", false, func() (*dto.Report, error) { return s.Overview(ctx, propertyID, params) }},
		{"topPages", false, func() (*dto.Report, error) { return s.TopPages(ctx, propertyID, params, 0) }},
		{"devices", false, func() (*dto.Report, error) { return s.Devices(ctx, propertyID, params) }},
		{"referrers", false, func() (*dto.Report, error) { return s.Referrers(ctx, propertyID, params, 0) }},
		{"clicks", true, func() (*dto.Report, error) { return s.ClickEvents(ctx, propertyID, params, 0) }},
		{"searchTerms", true, func() (*dto.Report, error) { return s.SearchTerms(ctx, propertyID, params, 0) }},
	}

	results := make(chan reportResult, len(queries))
	for _, q := range queries {
		q := q
		go func() {
			defer func() {
				if r := recover(); r != nil {
					results <- reportResult{name: q.name, optional: q.optional, err: fmt.Errorf("panic in report fetch: %v", r)}
				}
			}()
			report, err := q.fetch()
			results <- reportResult{name: q.name, report: report, optional: q.optional, err: err}
		}()
	}

	joined := &dto.SiteAnalytics{}
	for range queries {
		result := <-results
		if result.err != nil {
			if result.optional {
				// Not configured on the property; partial results are valid.
				s.logger.Info("optional report unavailable",
					zap.String("report", result.name),
					zap.String("propertyId", propertyID),
					zap.Error(result.err))
				continue
			}
			return nil, fmt.Errorf("%s report: %w", result.name, result.err)
		}

		switch result.name {
		case "overview":
			joined.Overview = result.report
		case "topPages":
			joined.TopPages = result.report
		case "devices":
			joined.DeviceData = result.report
		case "referrers":
			joined.ReferrerData = result.report
		case "clicks":
			joined.ClickEvents = result.report
		case "searchTerms":
			joined.SearchTerms = result.report
		}
	}
	return joined, nil
}

func (s *AnalyticsService) run(ctx context.Context, propertyID string, req *analyticsdata.RunReportRequest) (*dto.Report, error) {
	if propertyID == "" {
		return nil, ErrPropertyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.runner.RunReport(ctx, property(propertyID), req)
	if err != nil {
		return nil, err
	}
	return flattenReport(resp), nil
}

func (s *AnalyticsService) rowLimit(limit int64) int64 {
	if limit <= 0 {
		return s.limit
	}
	return limit
}

// flattenReport strips the GA4 response down to header names and string
// values, positionally aligned.
func flattenReport(resp *analyticsdata.RunReportResponse) *dto.Report {
	report := &dto.Report{
		DimensionHeaders: make([]string, 0, len(resp.DimensionHeaders)),
		MetricHeaders:    make([]string, 0, len(resp.MetricHeaders)),
		Rows:             make([]dto.ReportRow, 0, len(resp.Rows)),
		RowCount:         int(resp.RowCount),
	}
	for _, h := range resp.DimensionHeaders {
		report.DimensionHeaders = append(report.DimensionHeaders, h.Name)
	}
	for _, h := range resp.MetricHeaders {
		report.MetricHeaders = append(report.MetricHeaders, h.Name)
	}
	for _, row := range resp.Rows {
		flat := dto.ReportRow{
			DimensionValues: make([]string, 0, len(row.DimensionValues)),
			MetricValues:    make([]string, 0, len(row.MetricValues)),
		}
		for _, v := range row.DimensionValues {
			flat.DimensionValues = append(flat.DimensionValues, v.Value)
		}
		for _, v := range row.MetricValues {
			flat.MetricValues = append(flat.MetricValues, v.Value)
		}
		report.Rows = append(report.Rows, flat)
	}
	return report
}

func property(propertyID string) string {
	return "properties/" + propertyID
}

func dateRanges(params dto.DateRangeParams) []*analyticsdata.DateRange {
	resolved := ResolveDateRange(params)
	return []*analyticsdata.DateRange{{
		StartDate: resolved.StartDate,
		EndDate:   resolved.EndDate,
	}}
}

func dimensions(names ...string) []*analyticsdata.Dimension {
	out := make([]*analyticsdata.Dimension, 0, len(names))
	for _, name := range names {
		out = append(out, &analyticsdata.Dimension{Name: name})
	}
	return out
}

func metrics(names ...string) []*analyticsdata.Metric {
	out := make([]*analyticsdata.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, &analyticsdata.Metric{Name: name})
	}
	return out
}

func metricDesc(name string) []*analyticsdata.OrderBy {
	return []*analyticsdata.OrderBy{{
		Metric: &analyticsdata.MetricOrderBy{MetricName: name},
		Desc:   true,
	}}
}
