package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

`

const downTemplate = `-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}

`

// versionWidth matches the zero padding of the files under migrations/.
const versionWidth = 6

var (
	migrationFile = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.up\.sql$`)
	nonWord       = regexp.MustCompile(`[^a-z0-9]+`)
)

// MigrationFile describes a newly created up/down pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty pair numbered one above the highest
// existing version in dir.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}

	next := 1
	if n := len(existing); n > 0 {
		last, _ := strconv.Atoi(migrationFile.FindStringSubmatch(existing[n-1] + ".up.sql")[1])
		next = last + 1
	}

	version := fmt.Sprintf("%0*d", versionWidth, next)
	base := filepath.Join(dir, version+"_"+slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	if err := render(mf.UpPath, upTemplate, mf); err != nil {
		return nil, err
	}
	if err := render(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func render(path, text string, data *MigrationFile) error {
	tmpl := template.Must(template.New(filepath.Base(path)).Parse(text))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

// sanitizeName lower-cases name and collapses every other run of characters
// into a single underscore.
func sanitizeName(name string) string {
	s := nonWord.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(s, "_")
}

// ListMigrations returns the base names of every up migration in dir, in
// version order. A missing directory yields an empty list.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	type entry struct {
		version int
		base    string
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, _ := strconv.Atoi(m[1])
		found = append(found, entry{v, strings.TrimSuffix(e.Name(), ".up.sql")})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].version < found[j].version })

	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.base
	}
	return out, nil
}
