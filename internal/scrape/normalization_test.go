package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNormalizationReport(t *testing.T) {
	html := `<table>
<thead><tr><th>File name</th><th>Preservation normalization attempted</th><th>Status</th></tr></thead>
<tbody>
<tr><td>one.tif</td><td>yes</td><td>OK</td></tr>
<tr><td>two.tif</td><td>no</td><td></td></tr>
</tbody>
</table>`

	report, err := ParseNormalizationReport(html)
	require.NoError(t, err, "Failed to parse normalization report")
	require.Len(t, report, 2)

	assert.Equal(t, "one.tif", report[0]["file_name"])
	assert.Equal(t, "yes", report[0]["preservation_normalization_attempted"])
	assert.Equal(t, "OK", report[0]["status"])
	assert.Equal(t, "no", report[1]["preservation_normalization_attempted"])
	assert.Empty(t, report[1]["status"])
}

func TestParseNormalizationReportNoHeader(t *testing.T) {
	_, err := ParseNormalizationReport(`<table><tbody><tr><td>x</td></tr></tbody></table>`)
	assert.Error(t, err, "A report table without a header row cannot be keyed")
}

func TestParseNormalizationReportNoTable(t *testing.T) {
	_, err := ParseNormalizationReport(`<div>nothing here</div>`)
	assert.Error(t, err)
}
