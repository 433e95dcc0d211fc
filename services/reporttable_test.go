package services

import (
	"testing"

	"webanalytics/dto"
)

func pageRows() []dto.ReportRow {
	return []dto.ReportRow{
		{DimensionValues: []string{"/pricing", "Pricing"}, MetricValues: []string{"120", "30.5"}},
		{DimensionValues: []string{"/", "Home"}, MetricValues: []string{"900", "12.2"}},
		{DimensionValues: []string{"/about", "About"}, MetricValues: []string{"45", "88.0"}},
	}
}

func TestSortRowsByMetricDescending(t *testing.T) {
	sorted := SortRows(pageRows(), "pageViews", "descending")

	want := []string{"/", "/pricing", "/about"}
	for i, path := range want {
		if sorted[i].DimensionValues[0] != path {
			t.Errorf("row %d = %s, want %s", i, sorted[i].DimensionValues[0], path)
		}
	}
}

func TestSortRowsByDimensionAscending(t *testing.T) {
	sorted := SortRows(pageRows(), "pagePath", "ascending")

	if sorted[0].DimensionValues[0] != "/" || sorted[2].DimensionValues[0] != "/pricing" {
		t.Errorf("order = %v", sorted)
	}
}

func TestSortRowsByDecimalMetric(t *testing.T) {
	sorted := SortRows(pageRows(), "avgDuration", "descending")

	if sorted[0].DimensionValues[0] != "/about" {
		t.Errorf("top row = %s, want /about", sorted[0].DimensionValues[0])
	}
}

func TestSortRowsUnknownKeyKeepsOrder(t *testing.T) {
	rows := pageRows()
	sorted := SortRows(rows, "bounceRate", "descending")

	for i := range rows {
		if sorted[i].DimensionValues[0] != rows[i].DimensionValues[0] {
			t.Fatalf("order changed at row %d", i)
		}
	}
}

func TestSortRowsDoesNotMutateInput(t *testing.T) {
	rows := pageRows()
	SortRows(rows, "pageViews", "ascending")

	if rows[0].DimensionValues[0] != "/pricing" {
		t.Error("input slice was reordered")
	}
}

func TestSortRowsUsersFallsBackToSingleMetricColumn(t *testing.T) {
	// Device rows carry one metric; the "users" key targets column 1.
	rows := []dto.ReportRow{
		{DimensionValues: []string{"mobile"}, MetricValues: []string{"300"}},
		{DimensionValues: []string{"desktop"}, MetricValues: []string{"700"}},
	}
	sorted := SortRows(rows, "users", "descending")
	if sorted[0].DimensionValues[0] != "desktop" {
		t.Errorf("top row = %s, want desktop", sorted[0].DimensionValues[0])
	}
}

func TestFormatReportDate(t *testing.T) {
	if got := FormatReportDate("20240615"); got != "2024-06-15" {
		t.Errorf("FormatReportDate = %q", got)
	}
	if got := FormatReportDate("(other)"); got != "(other)" {
		t.Errorf("non-date passthrough = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration("125.7"); got != "2m05s" {
		t.Errorf("FormatDuration = %q", got)
	}
	if got := FormatDuration("n/a"); got != "n/a" {
		t.Errorf("unparseable passthrough = %q", got)
	}
}
