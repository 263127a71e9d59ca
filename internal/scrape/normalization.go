package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReportRow maps a normalization report column header (lower-cased,
// spaces replaced with underscores) to the cell text. The column set
// is whatever the remote table renders, not fixed in advance.
type ReportRow map[string]string

// ParseNormalizationReport parses the report's single table. Column
// keys are read from the table head, so new columns show up in the
// rows without code changes.
func ParseNormalizationReport(html string) ([]ReportRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse normalization report: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("normalization report contains no table")
	}

	var keys []string
	table.Find("thead tr").First().Find("th").Each(func(_ int, th *goquery.Selection) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(th.Text())), " ", "_")
		keys = append(keys, key)
	})
	if len(keys) == 0 {
		return nil, fmt.Errorf("normalization report table has no header row")
	}

	var report []ReportRow
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		row := make(ReportRow, len(keys))
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i < len(keys) {
				row[keys[i]] = strings.TrimSpace(td.Text())
			}
		})
		if len(row) > 0 {
			report = append(report, row)
		}
	})
	return report, nil
}
