package stats

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderStats writes one row per month of the year with event counts per category, followed by the
// category totals, the counts per source and the plan warnings.
func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {
	header := make([]string, 0, len(stats.Categories)+2)
	header = append(header, "")
	for _, categoryId := range stats.Categories {
		header = append(header, categoryName(categoryId))
	}
	header = append(header, "SUM")

	statsByMonth := make([][]string, 0, len(stats.Months))
	for _, monthlyStats := range stats.Months {
		statsByMonth = append(statsByMonth, getStatsForMonth(monthlyStats, stats.Categories))
	}

	totals := make([]string, 0, len(stats.Categories)+2)
	totals = append(totals, "Total")
	for _, categoryId := range stats.Categories {
		totals = append(totals, strconv.Itoa(stats.TotalByCategory[categoryId]))
	}
	totals = append(totals, strconv.Itoa(stats.Total))

	data := make([][]string, 0, 1+len(statsByMonth)+1+len(stats.Sources)+3)
	data = append(data, header)
	data = append(data, statsByMonth...)
	data = append(data, totals)
	for _, sourceStats := range stats.Sources {
		data = append(data, []string{sourceStats.Source, strconv.Itoa(sourceStats.Count)})
	}
	data = append(data,
		[]string{"Mandatory", strconv.Itoa(stats.Mandatory)},
		[]string{"Uncategorized", strconv.Itoa(stats.Uncategorized)},
		[]string{"Unplaced mandatory", strconv.Itoa(stats.UnplacedMandatory)},
	)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func getStatsForMonth(monthlyStats MonthlyStats, categories []int) []string {
	row := make([]string, 0, len(categories)+2)
	row = append(row, fmt.Sprintf("%02d/%d", int(monthlyStats.Month.Month), monthlyStats.Month.Year))
	for _, categoryId := range categories {
		row = append(row, strconv.Itoa(monthlyStats.Categories[categoryId]))
	}
	row = append(row, strconv.Itoa(monthlyStats.Total))
	return row
}

func categoryName(categoryId int) string {
	return "Category " + strconv.Itoa(categoryId)
}
