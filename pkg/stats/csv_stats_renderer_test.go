package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yearplan/yearplan/pkg/calendar_math"
)

var startDate = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
var endDate = time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

func TestCsvStatsRendererImpl_RenderStats(t1 *testing.T) {
	tests := []struct {
		name  string
		stats StatsSummary
		want  string
	}{
		{
			name: "RenderStats with valid data",
			stats: StatsSummary{
				StartDate:  startDate,
				EndDate:    endDate,
				Categories: []int{3, 5},
				Months: []MonthlyStats{
					{Month: calendar_math.Month{Year: 2026, Month: time.July}, Categories: map[int]int{3: 4, 5: 1}, Total: 5},
					{Month: calendar_math.Month{Year: 2026, Month: time.August}, Categories: map[int]int{3: 2}, Total: 2},
				},
				TotalByCategory: map[int]int{3: 6, 5: 1},
				Sources: []SourceStats{
					{Source: "RECURRING", Count: 5},
					{Source: "TEMPLATE", Count: 1},
					{Source: "MANUAL", Count: 1},
				},
				Total:             7,
				Mandatory:         1,
				Uncategorized:     2,
				UnplacedMandatory: 1,
			},
			want: ",Category 3,Category 5,SUM\n" +
				"07/2026,4,1,5\n" +
				"08/2026,2,0,2\n" +
				"Total,6,1,7\n" +
				"RECURRING,5\n" +
				"TEMPLATE,1\n" +
				"MANUAL,1\n" +
				"Mandatory,1\n" +
				"Uncategorized,2\n" +
				"Unplaced mandatory,1\n",
		},
		{
			name: "RenderStats of an empty plan",
			stats: StatsSummary{
				StartDate: startDate,
				EndDate:   endDate,
			},
			want: ",SUM\n" +
				"Total,0\n" +
				"Mandatory,0\n" +
				"Uncategorized,0\n" +
				"Unplaced mandatory,0\n",
		},
	}
	for _, tt := range tests {
		t1.Run(tt.name, func(t *testing.T) {
			renderer := NewCsvStatsRenderer()

			got, err := renderer.RenderStats(tt.stats)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
