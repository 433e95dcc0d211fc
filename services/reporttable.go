package services

import (
	"fmt"
	"sort"
	"strconv"

	"webanalytics/dto"
)

// Sort keys accepted by SortRows, mapped to a column of the report rows. The
// mapping matches the dashboard tables: dimension keys compare as strings,
// metric keys compare numerically.
var sortColumns = map[string]struct {
	index   int
	metric  bool
	decimal bool
}{
	"date":        {index: 0},
	"pagePath":    {index: 0},
	"pageTitle":   {index: 1},
	"device":      {index: 0},
	"referrer":    {index: 0},
	"pageViews":   {index: 0, metric: true},
	"sessions":    {index: 0, metric: true},
	"users":       {index: 1, metric: true},
	"avgDuration": {index: 1, metric: true, decimal: true},
}

// SortRows orders rows by the named key. direction is "ascending" or
// "descending". Unknown keys leave the order untouched.
func SortRows(rows []dto.ReportRow, key, direction string) []dto.ReportRow {
	out := make([]dto.ReportRow, len(rows))
	copy(out, rows)

	col, ok := sortColumns[key]
	if !ok {
		return out
	}
	descending := direction == "descending"

	sort.SliceStable(out, func(i, j int) bool {
		less := rowLess(out[i], out[j], col.index, col.metric, col.decimal)
		if descending {
			return rowLess(out[j], out[i], col.index, col.metric, col.decimal)
		}
		return less
	})
	return out
}

func rowLess(a, b dto.ReportRow, index int, metric, decimal bool) bool {
	if metric {
		return metricValue(a, index, decimal) < metricValue(b, index, decimal)
	}
	return dimensionValue(a, index) < dimensionValue(b, index)
}

func dimensionValue(row dto.ReportRow, index int) string {
	if index < len(row.DimensionValues) {
		return row.DimensionValues[index]
	}
	return ""
}

// metricValue reads the metric column, falling back to column zero when the
// row is narrower than the requested index (the overview "users" column sits
// at index 1 but device rows carry a single metric).
func metricValue(row dto.ReportRow, index int, decimal bool) float64 {
	raw := ""
	if index < len(row.MetricValues) {
		raw = row.MetricValues[index]
	} else if len(row.MetricValues) > 0 {
		raw = row.MetricValues[0]
	}

	if decimal {
		v, _ := strconv.ParseFloat(raw, 64)
		return v
	}
	v, _ := strconv.ParseInt(raw, 10, 64)
	return float64(v)
}

// FormatReportDate rewrites GA's YYYYMMDD date dimension as YYYY-MM-DD.
// Anything not eight characters long passes through unchanged.
func FormatReportDate(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	return raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8]
}

// FormatDuration renders a seconds metric as "MmSSs" for the tables.
func FormatDuration(raw string) string {
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	total := int(seconds)
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}
