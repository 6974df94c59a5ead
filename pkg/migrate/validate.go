package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var gooseMarkers = []string{"-- +goose Up", "-- +goose Down"}

// ValidateDir checks every .sql file in dir for a well-formed versioned
// filename, unique versions, and the goose Up/Down markers.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("migration dir is required")
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}

	versions := make(map[string]string, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		version, rest, ok := strings.Cut(name, "_")
		if !ok || len(version) != 14 || slugify(strings.TrimSuffix(rest, ".sql")) != strings.TrimSuffix(rest, ".sql") {
			return fmt.Errorf("migration %s: want YYYYMMDDHHMMSS_name.sql", name)
		}
		for _, c := range version {
			if c < '0' || c > '9' {
				return fmt.Errorf("migration %s: version is not numeric", name)
			}
		}
		if prev, dup := versions[version]; dup {
			return fmt.Errorf("version %s used by both %s and %s", version, prev, name)
		}
		versions[version] = name

		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		for _, marker := range gooseMarkers {
			if !strings.Contains(string(body), marker) {
				return fmt.Errorf("migration %s: missing %q", name, marker)
			}
		}
	}
	return nil
}
