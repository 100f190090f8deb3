package scan

import (
	"fmt"
	"sort"

	"multiscan/internal/fileutil"
)

// Metadata is the free-form capture metadata written by the device.
type Metadata map[string]any

// String returns the value at key when it is a string.
func (m Metadata) String(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// Keys lists the top-level keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// LoadMetadata reads <base>.json. A missing file reports ok=false; malformed
// JSON is returned as an error.
func (c Capture) LoadMetadata() (Metadata, bool, error) {
	var meta Metadata
	ok, err := fileutil.ReadJSON(c.MetadataFile(), &meta)
	if err != nil {
		return nil, false, fmt.Errorf("load capture metadata: %w", err)
	}
	return meta, ok, nil
}
