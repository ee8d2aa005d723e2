package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidTimeRange is returned for time ranges outside 7d, 30d, 90d and all.
var ErrInvalidTimeRange = errors.New("invalid time range")

type TimeRange string

const (
	TimeRange7d  TimeRange = "7d"
	TimeRange30d TimeRange = "30d"
	TimeRange90d TimeRange = "90d"
	TimeRangeAll TimeRange = "all"
)

// ParseTimeRange accepts the query form of a time range. Empty defaults to 7d.
func ParseTimeRange(value string) (TimeRange, error) {
	switch TimeRange(value) {
	case "":
		return TimeRange7d, nil
	case TimeRange7d, TimeRange30d, TimeRange90d, TimeRangeAll:
		return TimeRange(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeRange, value)
	}
}

// Since returns the start of the window ending at now. The zero time means unbounded.
func (r TimeRange) Since(now time.Time) time.Time {
	switch r {
	case TimeRange7d:
		return now.AddDate(0, 0, -7)
	case TimeRange30d:
		return now.AddDate(0, 0, -30)
	case TimeRange90d:
		return now.AddDate(0, 0, -90)
	default:
		return time.Time{}
	}
}

type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// Execution is one recorded run of a workflow.
type Execution struct {
	ID         string          `json:"id"`
	WorkflowID string          `json:"workflowId"`
	Status     ExecutionStatus `json:"status"     validate:"required,oneof=success failed"`
	DurationMs int64           `json:"durationMs" validate:"min=0"`
	StartedAt  time.Time       `json:"startedAt"`
}

// Analytics aggregates executions over a time range. WorkflowID is empty for the global view.
type Analytics struct {
	WorkflowID           string     `json:"workflowId,omitempty"`
	TimeRange            TimeRange  `json:"timeRange"`
	TotalExecutions      int        `json:"totalExecutions"`
	SuccessfulExecutions int        `json:"successfulExecutions"`
	FailedExecutions     int        `json:"failedExecutions"`
	SuccessRate          float64    `json:"successRate"`
	AvgExecutionTime     float64    `json:"avgExecutionTime"`
	LastExecutedAt       *time.Time `json:"lastExecutedAt,omitempty"`
}

// ComputeAnalytics aggregates the executions that started inside the range.
func ComputeAnalytics(workflowID string, executions []*Execution, timeRange TimeRange, now time.Time) *Analytics {
	analytics := &Analytics{
		WorkflowID: workflowID,
		TimeRange:  timeRange,
	}

	since := timeRange.Since(now)

	var totalDuration int64

	for _, execution := range executions {
		if !since.IsZero() && execution.StartedAt.Before(since) {
			continue
		}

		analytics.TotalExecutions++
		totalDuration += execution.DurationMs

		if execution.Status == ExecutionStatusSuccess {
			analytics.SuccessfulExecutions++
		} else {
			analytics.FailedExecutions++
		}

		if analytics.LastExecutedAt == nil || execution.StartedAt.After(*analytics.LastExecutedAt) {
			startedAt := execution.StartedAt
			analytics.LastExecutedAt = &startedAt
		}
	}

	if analytics.TotalExecutions > 0 {
		total := float64(analytics.TotalExecutions)
		analytics.SuccessRate = round2(float64(analytics.SuccessfulExecutions) / total * 100)
		analytics.AvgExecutionTime = round2(float64(totalDuration) / total)
	}

	return analytics
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
