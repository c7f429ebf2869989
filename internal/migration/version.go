package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// LatestVersion номер последней встроенной миграции
func LatestVersion() (uint, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("migration: list migrations: %w", err)
	}

	var latest uint
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		version, ok := parseVersion(name)
		if !ok {
			return 0, fmt.Errorf("migration: invalid filename %s", name)
		}
		if version > latest {
			latest = version
		}
	}

	if latest == 0 {
		return 0, errors.New("migration: no embedded migrations found")
	}
	return latest, nil
}

func parseVersion(name string) (uint, bool) {
	prefix, _, found := strings.Cut(name, "_")
	if !found || prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
