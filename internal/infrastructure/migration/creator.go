package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

// versionLayout sorts lexically in apply order
const versionLayout = "20060102150405"

var (
	upTemplate = template.Must(template.New("up").Parse(`-- {{.Description}}

`))
	downTemplate = template.Must(template.New("down").Parse(`-- Revert {{.Name}}

`))
)

// NewMigration describes a generated up/down file pair
type NewMigration struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// Create writes an empty up/down pair named <version>_<name> into dir.
// An empty description falls back to the name.
func Create(dir, name, description string, now time.Time) (*NewMigration, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if description == "" {
		description = name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	base := now.UTC().Format(versionLayout) + "_" + slug
	nm := &NewMigration{
		Version:     now.UTC().Format(versionLayout),
		Name:        slug,
		Description: description,
		UpPath:      filepath.Join(dir, base+".up.sql"),
		DownPath:    filepath.Join(dir, base+".down.sql"),
	}

	if err := writeTemplate(nm.UpPath, upTemplate, nm); err != nil {
		return nil, err
	}
	if err := writeTemplate(nm.DownPath, downTemplate, nm); err != nil {
		_ = os.Remove(nm.UpPath)
		return nil, err
	}
	return nm, nil
}

func writeTemplate(path string, tmpl *template.Template, data *NewMigration) error {
	// O_EXCL so two runs in the same second never clobber each other
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// slugify lowercases name and collapses every run of separators into one
// underscore; other punctuation is dropped
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// List returns the migration base names in dir in apply order. A missing
// directory is an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if base, ok := strings.CutSuffix(e.Name(), ".up.sql"); ok && !e.IsDir() {
			names = append(names, base)
		}
	}
	sort.Strings(names)
	return names, nil
}
