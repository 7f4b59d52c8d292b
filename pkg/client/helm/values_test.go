package helm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/storeforge/pkg/client/helm"
)

func TestLoadValuesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.yaml")
	content := []byte("wordpress:\n  replicaCount: 2\ningress:\n  enabled: false\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	values, err := helm.LoadValuesFile(path)

	require.NoError(t, err)
	wordpress, ok := values["wordpress"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, wordpress["replicaCount"])
}

func TestLoadValuesFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := helm.LoadValuesFile(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
}

func TestLoadValuesFile_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := helm.LoadValuesFile(path)

	require.Error(t, err)
}

func TestMergeValues(t *testing.T) {
	t.Parallel()

	base := map[string]any{
		"wordpress": map[string]any{
			"enabled":           true,
			"wordpressUsername": "user",
			"mariadb": map[string]any{
				"enabled": true,
			},
		},
		"ingress": map[string]any{"enabled": true},
	}

	overlay := map[string]any{
		"wordpress": map[string]any{
			"wordpressUsername": "operator",
		},
		"extra": "value",
	}

	merged := helm.MergeValues(base, overlay)

	wordpress, ok := merged["wordpress"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "operator", wordpress["wordpressUsername"])
	assert.Equal(t, true, wordpress["enabled"])
	assert.Equal(t, map[string]any{"enabled": true}, wordpress["mariadb"])
	assert.Equal(t, "value", merged["extra"])

	// The inputs must not be mutated.
	baseWordpress, ok := base["wordpress"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user", baseWordpress["wordpressUsername"])
}

func TestMergeValues_ScalarReplacesMap(t *testing.T) {
	t.Parallel()

	base := map[string]any{"ingress": map[string]any{"enabled": true}}
	overlay := map[string]any{"ingress": "disabled"}

	merged := helm.MergeValues(base, overlay)

	assert.Equal(t, "disabled", merged["ingress"])
}

func TestMergeValues_EmptyOverlay(t *testing.T) {
	t.Parallel()

	base := map[string]any{"a": 1}

	merged := helm.MergeValues(base, nil)

	assert.Equal(t, base, merged)
}
