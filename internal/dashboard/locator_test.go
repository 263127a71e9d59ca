package dashboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUnitUUID = "5c8447ac-6beb-40a9-8e4b-ca2b2cc2a8ce"
	testJobUUID  = "8e35a0a8-9b13-4e9e-b87e-9d2bddcbeef0"
)

func jobRowHTML(stageName, jobUUID, status string) string {
	return fmt.Sprintf(`<div class="job">
<div class="job-detail-microservice"><span title="%s">%s</span></div>
<div class="job-detail-currentstep"><span>%s</span></div>
</div>`, jobUUID, stageName, status)
}

func groupHTML(groupName, contentStyle, jobs string) string {
	return fmt.Sprintf(`<div class="microservicegroup">
<div class="microservice-group"><span class="microservice-group-name">Micro-service: %s</span></div>
<div style="%s">%s</div>
</div>`, groupName, contentStyle, jobs)
}

func unitHTML(name, unitUUID, groups string) string {
	return fmt.Sprintf(`<div class="sip">
<div class="sip-detail-directory">%s<abbr title="%s">UUID</abbr></div>
<div class="sip-detail-uuid">%s</div>
<div id="sip-row-%s"></div>
%s
</div>`, name, unitUUID, unitUUID, unitUUID, groups)
}

func listingHTML(units ...string) string {
	body := ""
	for _, u := range units {
		body += u
	}
	return "<html><body>" + body + "</body></html>"
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(JobCompleted))
	assert.True(t, IsTerminalStatus(JobFailed))
	assert.False(t, IsTerminalStatus("Executing command(s)"))
	assert.False(t, IsTerminalStatus(""))
}

func TestFindJob(t *testing.T) {
	jobs := jobRowHTML("Approve transfer", testJobUUID, JobCompleted)
	doc, err := parseSnapshot(listingHTML(unitHTML("tr1", testUnitUUID, groupHTML("Approve transfer", "", jobs))))
	require.NoError(t, err)

	status, jobUUID, found := findJob(doc, testUnitUUID, "Approve transfer", "Approve transfer")
	require.True(t, found, "Job row should be located through unit and group")
	assert.Equal(t, JobCompleted, status)
	assert.Equal(t, testJobUUID, jobUUID)

	// Terminal matches are stable: the same snapshot yields the same
	// answer on repeated reads.
	status2, jobUUID2, found2 := findJob(doc, testUnitUUID, "Approve transfer", "Approve transfer")
	assert.True(t, found2)
	assert.Equal(t, status, status2)
	assert.Equal(t, jobUUID, jobUUID2)
}

func TestFindJobAbsentIsNotAnError(t *testing.T) {
	doc, err := parseSnapshot(listingHTML(unitHTML("tr1", testUnitUUID, groupHTML("Approve transfer", "", ""))))
	require.NoError(t, err)

	_, _, found := findJob(doc, testUnitUUID, "Approve transfer", "Approve transfer")
	assert.False(t, found, "Group without the job row should report not found")

	_, _, found = findJob(doc, testUnitUUID, "Verify transfer compliance", "Verify transfer compliance")
	assert.False(t, found, "Missing group should report not found")

	_, _, found = findJob(doc, "0f0f0f0f-0000-0000-0000-000000000000", "Approve transfer", "Approve transfer")
	assert.False(t, found, "Missing unit should report not found")
}

func TestGroupExpanded(t *testing.T) {
	collapsed := groupHTML("Scan for viruses", "display: none;", "")
	expanded := groupHTML("Approve transfer", "", "")
	doc, err := parseSnapshot(listingHTML(unitHTML("tr1", testUnitUUID, collapsed+expanded)))
	require.NoError(t, err)

	unit := unitPanel(doc, testUnitUUID)
	require.NotNil(t, unit)
	assert.False(t, groupExpanded(groupSection(unit, "Scan for viruses")))
	assert.True(t, groupExpanded(groupSection(unit, "Approve transfer")))
}

func TestUnitByName(t *testing.T) {
	other := "b2f0a3d1-1111-2222-3333-444455556666"
	doc, err := parseSnapshot(listingHTML(
		unitHTML("alpha", other, ""),
		unitHTML("beta", testUnitUUID, ""),
	))
	require.NoError(t, err)

	uuid, found := unitByName(doc, "beta")
	require.True(t, found)
	assert.Equal(t, testUnitUUID, uuid, "UUID should come from the abbr tooltip")

	_, found = unitByName(doc, "gamma")
	assert.False(t, found)
}

func TestUnitByNameFallsBackToUUIDLabel(t *testing.T) {
	// Wide layouts render no abbr tooltip; the UUID label next to the
	// name is the fallback.
	html := listingHTML(fmt.Sprintf(`<div class="sip">
<div class="sip-detail-directory">gamma</div>
<div class="sip-detail-uuid">%s</div>
<div id="sip-row-%s"></div>
</div>`, testUnitUUID, testUnitUUID))
	doc, err := parseSnapshot(html)
	require.NoError(t, err)

	uuid, found := unitByName(doc, "gamma")
	require.True(t, found)
	assert.Equal(t, testUnitUUID, uuid)
}

func TestHasUnits(t *testing.T) {
	doc, err := parseSnapshot(listingHTML(unitHTML("tr1", testUnitUUID, "")))
	require.NoError(t, err)
	assert.True(t, hasUnits(doc))

	empty, err := parseSnapshot(listingHTML())
	require.NoError(t, err)
	assert.False(t, hasUnits(empty))
}

func TestGroupXPathEmbedsIdentity(t *testing.T) {
	xpath := groupXPath(testUnitUUID, "Approve transfer")
	assert.Contains(t, xpath, "sip-row-"+testUnitUUID)
	assert.Contains(t, xpath, "Micro-service: Approve transfer")
}
