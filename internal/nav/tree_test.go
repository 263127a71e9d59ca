package nav

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// fakeDriver scripts segment failures by query substring: each entry
// in failPresent is the number of times a matching WaitPresent should
// report absent before succeeding.
type fakeDriver struct {
	waits       []string
	clicks      []string
	failPresent map[string]int
}

func (d *fakeDriver) WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) bool {
	d.waits = append(d.waits, loc.Query)
	for substr, remaining := range d.failPresent {
		if remaining > 0 && strings.Contains(loc.Query, substr) {
			d.failPresent[substr]--
			return false
		}
	}
	return true
}

func (d *fakeDriver) WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) bool {
	return true
}

func (d *fakeDriver) Click(ctx context.Context, loc Locator) error {
	d.clicks = append(d.clicks, loc.Query)
	return nil
}

func countContaining(queries []string, substr string) int {
	n := 0
	for _, q := range queries {
		if strings.Contains(q, substr) {
			n++
		}
	}
	return n
}

// countWaits counts queries whose deepest segment label is with: they
// contain with but not the next-deeper label without.
func countWaits(queries []string, with, without string) int {
	n := 0
	for _, q := range queries {
		if strings.Contains(q, with) && !strings.Contains(q, without) {
			n++
		}
	}
	return n
}

func TestTreeNavigatorOpensPath(t *testing.T) {
	driver := &fakeDriver{}
	nav := &TreeNavigator{Driver: driver, Logger: arbor.NewLogger(), ConfirmSelector: "button.add"}

	require.NoError(t, nav.Open(context.Background(), "archive/images/pictures"))

	// Intermediate segments get expanded; the terminal segment is
	// clicked and then confirmed.
	require.NotEmpty(t, driver.clicks)
	assert.Equal(t, "button.add", driver.clicks[len(driver.clicks)-1])
	assert.Equal(t, 1, countContaining(driver.clicks, "'pictures'"))
	assert.Equal(t, 2, countContaining(driver.clicks, "tree-branch-head"), "One expand click per intermediate segment")
}

func TestTreeNavigatorRestartsFullPathOnSegmentFailure(t *testing.T) {
	driver := &fakeDriver{failPresent: map[string]int{"'images'": 1}}
	nav := &TreeNavigator{Driver: driver, Logger: arbor.NewLogger(), ConfirmSelector: "button.add"}

	require.NoError(t, nav.Open(context.Background(), "archive/images/pictures"))

	// The failed middle segment restarts the walk from the root, so
	// the first segment is waited on twice. Trail locators embed
	// ancestor labels, so per-segment waits are told apart by the
	// deepest label they carry.
	assert.Equal(t, 2, countWaits(driver.waits, "'archive'", "'images'"))
	assert.Equal(t, 2, countWaits(driver.waits, "'images'", "'pictures'"))
}

func TestTreeNavigatorExhaustsRetries(t *testing.T) {
	driver := &fakeDriver{failPresent: map[string]int{"'images'": 1000}}
	nav := &TreeNavigator{Driver: driver, Logger: arbor.NewLogger(), ConfirmSelector: "button.add"}

	err := nav.Open(context.Background(), "archive/images/pictures")
	require.Error(t, err)

	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "archive/images/pictures", pathErr.Path)
	assert.Equal(t, MaxPathTries, pathErr.Tries)
	assert.Contains(t, pathErr.Error(), "archive/images/pictures")
	assert.Equal(t, MaxPathTries, countContaining(driver.waits, "'images'"))
}

func TestTreeNavigatorHonorsContext(t *testing.T) {
	driver := &fakeDriver{failPresent: map[string]int{"'images'": 1000}}
	nav := &TreeNavigator{Driver: driver, Logger: arbor.NewLogger(), ConfirmSelector: "button.add"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := nav.Open(ctx, "archive/images/pictures")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTreeNavigatorScopesSegmentsToAncestors(t *testing.T) {
	driver := &fakeDriver{}
	nav := &TreeNavigator{Driver: driver, Logger: arbor.NewLogger(), ConfirmSelector: "button.add"}

	require.NoError(t, nav.Open(context.Background(), "top/nested"))

	// The terminal segment's locator embeds the ancestor's label so a
	// same-named folder elsewhere in the tree cannot match.
	last := ""
	for _, q := range driver.waits {
		if strings.Contains(q, "'nested'") {
			last = q
		}
	}
	require.NotEmpty(t, last)
	assert.Contains(t, last, "'top'")
	assert.Contains(t, last, "following-sibling::treeitem")
}

func TestExplorerNavigatorBuildsNodeIdentifiers(t *testing.T) {
	driver := &fakeDriver{}
	nav := &ExplorerNavigator{Driver: driver, Logger: arbor.NewLogger(), Root: "explorer_root"}

	uuid := "9c5c9b3a-0000-1111-2222-333344445555"
	path := "storeAIP/tr-" + uuid + "/METS." + uuid + ".xml"
	require.NoError(t, nav.Open(context.Background(), path))

	// The metadata file's leading dot is rewritten to a double
	// underscore and remaining dots are escaped for selector parsing.
	fileClick := driver.clicks[len(driver.clicks)-1]
	assert.Contains(t, fileClick, "METS__"+uuid+`\.xml`)
	assert.NotContains(t, fileClick, "METS."+uuid)
	assert.Contains(t, fileClick, "span.backbone-file-explorer-directory_entry_name")

	// Intermediate entries open through the folder icon control.
	assert.Equal(t, 2, countContaining(driver.clicks, "backbone-file-explorer-directory_icon_button"))
	assert.Contains(t, driver.clicks[0], "div#explorer_root_storeAIP ")
}

func TestExplorerNavigatorExhaustsRetries(t *testing.T) {
	driver := &fakeDriver{failPresent: map[string]int{"#explorer": 1000}}
	nav := &ExplorerNavigator{Driver: driver, Logger: arbor.NewLogger(), Root: "explorer_root"}

	err := nav.Open(context.Background(), "storeAIP/whatever")
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, MaxPathTries, pathErr.Tries)
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitPath("/a/b/"))
	assert.Equal(t, []string{"a"}, splitPath("a"))
}
