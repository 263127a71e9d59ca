package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGroupMapLookup(t *testing.T) {
	groups := DefaultGroupMap()

	group, err := groups.Lookup("Store AIP  (review)")
	require.NoError(t, err)
	assert.Equal(t, "Store AIP", group)

	group, err = groups.Lookup("Approve normalization")
	require.NoError(t, err)
	assert.Equal(t, "Normalize", group)
}

func TestLookupUnknownStage(t *testing.T) {
	_, err := DefaultGroupMap().Lookup("Some brand new microservice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Some brand new microservice")
}

func TestLoadGroupMapMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	content := `"Some brand new microservice": "New group"
"Store AIP  (review)": "Review"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	groups, err := LoadGroupMap(path)
	require.NoError(t, err)

	group, err := groups.Lookup("Some brand new microservice")
	require.NoError(t, err)
	assert.Equal(t, "New group", group)

	group, err = groups.Lookup("Store AIP  (review)")
	require.NoError(t, err)
	assert.Equal(t, "Review", group, "File entries override built-ins")

	group, err = groups.Lookup("Validate formats")
	require.NoError(t, err)
	assert.Equal(t, "Validation", group, "Untouched defaults survive the merge")
}

func TestLoadGroupMapMissingFile(t *testing.T) {
	_, err := LoadGroupMap(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
