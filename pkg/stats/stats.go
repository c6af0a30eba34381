package stats

import (
	"time"

	"github.com/yearplan/yearplan/pkg/calendar_math"
)

type StatsRenderer interface {
	RenderStats(stats StatsSummary) (string, error)
}

type MonthlyStats struct {
	Month      calendar_math.Month
	Categories map[int]int
	Total      int
}

type SourceStats struct {
	Source string
	Count  int
}

// StatsSummary is the plan of one operating year reduced to event counts.
type StatsSummary struct {
	StartDate         time.Time
	EndDate           time.Time
	Categories        []int
	Months            []MonthlyStats
	TotalByCategory   map[int]int
	Sources           []SourceStats
	Total             int
	Mandatory         int
	Uncategorized     int
	UnplacedMandatory int
}
