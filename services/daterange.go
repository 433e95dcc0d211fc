package services

import (
	"time"

	"webanalytics/dto"
)

const dateLayout = "2006-01-02"

// Date range selector types accepted by ResolveDateRange.
const (
	RangeDay    = "day"
	RangeWeek   = "week"
	RangeMonth  = "month"
	RangeCustom = "custom"
)

// ResolveDateRange maps a range selector to concrete inclusive calendar-date
// bounds, anchored on today. Time of day is ignored. Unknown selector types
// resolve as week.
func ResolveDateRange(params dto.DateRangeParams) dto.DateRange {
	return ResolveDateRangeAt(params, time.Now())
}

// ResolveDateRangeAt is ResolveDateRange with an explicit clock.
func ResolveDateRangeAt(params dto.DateRangeParams, now time.Time) dto.DateRange {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch params.Type {
	case RangeDay:
		return dto.DateRange{
			StartDate: today.Format(dateLayout),
			EndDate:   today.Format(dateLayout),
		}

	case RangeMonth:
		return trailingWindow(today, 30)

	case RangeCustom:
		if params.StartDate != "" && params.EndDate != "" {
			return dto.DateRange{
				StartDate: params.StartDate,
				EndDate:   params.EndDate,
			}
		}
		// Missing custom bounds fall back to the 30-day window.
		return trailingWindow(today, 30)

	default: // RangeWeek and anything unrecognized
		return trailingWindow(today, 7)
	}
}

// trailingWindow is the days-long window ending today, inclusive on both ends.
func trailingWindow(today time.Time, days int) dto.DateRange {
	return dto.DateRange{
		StartDate: today.AddDate(0, 0, -(days - 1)).Format(dateLayout),
		EndDate:   today.Format(dateLayout),
	}
}
