package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// file is the on-disk form of a dashboard: its display name plus the
// definition.
type file struct {
	Name       string `toml:"name" yaml:"name"`
	Definition `yaml:",inline"`
}

// DirCatalog serves dashboards from <id>.toml, <id>.yaml or <id>.yml files
// in a directory.
type DirCatalog struct {
	Dir string
}

// NewDirCatalog creates a DirCatalog reading from dir.
func NewDirCatalog(dir string) *DirCatalog {
	return &DirCatalog{Dir: dir}
}

// List implements Catalog. A missing directory lists nothing.
func (c *DirCatalog) List(ctx context.Context) (map[string]Summary, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Summary{}, nil
		}
		return nil, err
	}
	out := make(map[string]Summary)
	for _, e := range entries {
		if e.IsDir() || !isDashboardFile(e.Name()) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, dup := out[id]; dup {
			continue
		}
		d, err := LoadDashboard(filepath.Join(c.Dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", id, err)
		}
		out[id] = Summary{ID: d.ID, Name: d.Name}
	}
	return out, ctx.Err()
}

// Definition implements Catalog.
func (c *DirCatalog) Definition(ctx context.Context, id string) (*Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	for _, ext := range []string{".toml", ".yaml", ".yml"} {
		d, err := LoadDashboard(filepath.Join(c.Dir, id+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", id, err)
		}
		return d.Definition, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// LoadDashboard reads one dashboard file, choosing the decoder by
// extension. The id is the file's base name; the name defaults to it.
func LoadDashboard(path string) (*Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	switch filepath.Ext(path) {
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = fmt.Errorf("unsupported dashboard file %s", filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}
	f.normalize()

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := f.Name
	if name == "" {
		name = id
	}
	def := f.Definition
	return &Dashboard{ID: id, Name: name, Definition: &def}, nil
}

func isDashboardFile(name string) bool {
	switch filepath.Ext(name) {
	case ".toml", ".yaml", ".yml":
		return true
	}
	return false
}
