package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadFile parses a flat "key: value" mapping file. Blank lines and lines
// starting with # are ignored; surrounding single or double quotes on values
// are stripped. A missing file is an empty mapping, not an error.
func ReadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	out := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `'"`)
	}
	return out, nil
}

// WriteFile persists a mapping as one "key: value" line per entry, sorted by
// key so that repeated runs produce identical files.
func WriteFile(path string, m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating mapping directory: %w", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, m[k])
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
