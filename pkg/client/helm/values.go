package helm

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// LoadValuesFile reads a YAML values overlay from disk.
func LoadValuesFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values file %s: %w", path, err)
	}

	values := map[string]any{}

	unmarshalErr := yaml.Unmarshal(data, &values)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("parse values file %s: %w", path, unmarshalErr)
	}

	return values, nil
}

// MergeValues deep-merges b over a, returning a new map. Nested maps are
// merged recursively; scalars and lists in b replace those in a.
func MergeValues(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}

	for k, v := range b {
		if v, ok := v.(map[string]any); ok {
			if bv, ok := out[k]; ok {
				if bv, ok := bv.(map[string]any); ok {
					out[k] = MergeValues(bv, v)

					continue
				}
			}
		}

		out[k] = v
	}

	return out
}
