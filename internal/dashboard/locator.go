package dashboard

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Terminal job statuses. Any other status text means the job is still
// in progress. A job's status is monotone: once terminal it does not
// change again.
const (
	JobCompleted = "Completed successfully"
	JobFailed    = "Failed"
)

// IsTerminalStatus reports whether status is one of the two terminal
// values.
func IsTerminalStatus(status string) bool {
	return status == JobCompleted || status == JobFailed
}

// groupLabel is the rendered prefix on every microservice group panel.
const groupLabel = "Micro-service: "

// The locator functions below are pure reads over a snapshotted
// document: identity in the dashboard's unit/group/job tree is carried
// by rendered text, not stable keys, so we re-match on every snapshot
// instead of caching node references (which go stale on repaint).

// parseSnapshot parses snapshot HTML into a queryable document.
func parseSnapshot(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page snapshot: %w", err)
	}
	return doc, nil
}

// isHidden reports whether the selection carries an inline
// display:none, which is how the dashboard's client-side framework
// collapses panels.
func isHidden(sel *goquery.Selection) bool {
	style, _ := sel.Attr("style")
	return strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none")
}

// unitPanel finds the panel of the processing unit whose nested row
// identifier encodes uuid.
func unitPanel(doc *goquery.Document, uuid string) *goquery.Selection {
	var panel *goquery.Selection
	doc.Find("div.sip").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Find("#sip-row-"+uuid).Length() > 0 {
			panel = sel
			return false
		}
		return true
	})
	return panel
}

// groupSection finds the microservice group panel named groupName
// within a unit panel.
func groupSection(unit *goquery.Selection, groupName string) *goquery.Selection {
	expected := groupLabel + groupName
	var section *goquery.Selection
	unit.Find("div.microservicegroup").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := strings.TrimSpace(sel.Find("span.microservice-group-name").First().Text())
		if name == expected {
			section = sel
			return false
		}
		return true
	})
	return section
}

// groupExpanded reports whether the group's job list is displayed.
func groupExpanded(group *goquery.Selection) bool {
	content := group.Find("div.microservice-group + div").First()
	if content.Length() == 0 {
		return false
	}
	return !isHidden(content)
}

// jobStatus scans the group's job rows for the stage named stageName
// and returns its current status text plus the opaque job identifier
// carried on the stage label's title attribute. The identifier is only
// trustworthy once the status is terminal; before that the UI may not
// have populated it.
func jobStatus(group *goquery.Selection, stageName string) (status, jobUUID string, found bool) {
	group.Find("div.job").EachWithBreak(func(_ int, job *goquery.Selection) bool {
		job.Find("div.job-detail-microservice span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			if strings.TrimSpace(span.Text()) != stageName {
				return true
			}
			status = strings.TrimSpace(job.Find("div.job-detail-currentstep span").First().Text())
			jobUUID = strings.TrimSpace(span.AttrOr("title", ""))
			found = true
			return false
		})
		return !found
	})
	return status, jobUUID, found
}

// findJob locates the job row for stageName under the unit's group
// panel in one snapshot. found is false when the unit, group, or job
// row has not rendered yet.
func findJob(doc *goquery.Document, uuid, groupName, stageName string) (status, jobUUID string, found bool) {
	unit := unitPanel(doc, uuid)
	if unit == nil {
		return "", "", false
	}
	group := groupSection(unit, groupName)
	if group == nil {
		return "", "", false
	}
	return jobStatus(group, stageName)
}

// unitByName scans the unit listing for the unit named name and
// resolves its UUID. Narrow layouts truncate the name row and move the
// UUID into a tooltip attribute, so the abbr title wins when present;
// otherwise the adjacent UUID label is read.
func unitByName(doc *goquery.Document, name string) (uuid string, found bool) {
	doc.Find("div.sip").EachWithBreak(func(_ int, unit *goquery.Selection) bool {
		nameDiv := unit.Find("div.sip-detail-directory").First()
		unitName := strings.TrimSpace(nameDiv.Text())
		// The narrow layout appends a literal "UUID" caption to the
		// name text.
		unitName = strings.TrimSpace(strings.TrimSuffix(unitName, "UUID"))
		if unitName != name {
			return true
		}
		abbr := nameDiv.Find("abbr").First()
		if abbr.Length() > 0 && !isHidden(abbr) {
			uuid = strings.TrimSpace(abbr.AttrOr("title", ""))
		} else {
			uuid = strings.TrimSpace(unit.Find("div.sip-detail-uuid").First().Text())
		}
		found = uuid != ""
		return !found
	})
	return uuid, found
}

// hasUnits reports whether any unit panels are listed.
func hasUnits(doc *goquery.Document) bool {
	return doc.Find("div.sip").Length() > 0
}

// groupXPath addresses the group header for click purposes: the group
// panel inside the unit whose row identifier encodes uuid, matched by
// its rendered label.
func groupXPath(uuid, groupName string) string {
	return fmt.Sprintf(
		"//div[contains(@class, 'sip') and descendant::div[@id='sip-row-%s']]"+
			"//div[contains(@class, 'microservicegroup')]"+
			"[descendant::span[contains(@class, 'microservice-group-name') and normalize-space(text())='%s']]",
		uuid, groupLabel+groupName)
}
