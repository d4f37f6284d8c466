package csvdb

import (
	"fmt"
	"goCrashFilter/pkg/utils"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
)

const (
	cKeyPath   = "path"
	cKeyColumn = "column"
	cKeyRows   = "rows"
)

// CatalogEntry describes one table saved to disk.
type CatalogEntry struct {
	Name    string
	Path    string
	Columns []string
	Rows    int
	Labels  map[string]string
}

// Catalog keeps a record of saved tables in <dir>/<name>.tbl.ini, one
// section per table. Columns are stored as one shadowed "column" key per
// column, so names may hold any character.
type Catalog struct {
	iniFile string
	entries map[string]*CatalogEntry
}

func OpenCatalog(dir, name string) (*Catalog, error) {
	c := new(Catalog)
	c.iniFile = filepath.Join(dir, fmt.Sprintf("%s.%s", name, cTblIniExt))
	c.entries = make(map[string]*CatalogEntry)
	if utils.PathExist(c.iniFile) {
		if err := c.load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Path() string {
	return c.iniFile
}

func (c *Catalog) load() error {
	cfg, err := ini.ShadowLoad(c.iniFile)
	if err != nil {
		return errors.WithStack(err)
	}
	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		e := &CatalogEntry{
			Name:   sec.Name(),
			Labels: make(map[string]string),
		}
		for _, k := range sec.Keys() {
			switch k.Name() {
			case cKeyPath:
				e.Path = k.String()
			case cKeyColumn:
				e.Columns = k.ValueWithShadows()
			case cKeyRows:
				e.Rows = k.MustInt(0)
			default:
				e.Labels[k.Name()] = k.String()
			}
		}
		c.entries[e.Name] = e
	}
	return nil
}

// Register records t as saved at path under t.Name(), replacing any
// earlier entry with the same name.
func (c *Catalog) Register(path string, t *Table, labels map[string]string) {
	name := t.Name()
	e := &CatalogEntry{
		Name:    name,
		Path:    path,
		Columns: t.Columns(),
		Rows:    t.Len(),
		Labels:  make(map[string]string, len(labels)),
	}
	for k, v := range labels {
		e.Labels[k] = v
	}
	c.entries[name] = e
}

func (c *Catalog) Get(name string) (*CatalogEntry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Entries returns every entry sorted by name.
func (c *Catalog) Entries() []*CatalogEntry {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]*CatalogEntry, len(names))
	for i, name := range names {
		entries[i] = c.entries[name]
	}
	return entries
}

func (c *Catalog) Save() error {
	if err := utils.EnsureDir(filepath.Dir(c.iniFile)); err != nil {
		return err
	}
	cfg := ini.Empty(ini.LoadOptions{AllowShadows: true})
	for _, e := range c.Entries() {
		sec, err := cfg.NewSection(e.Name)
		if err != nil {
			return errors.WithStack(err)
		}
		sec.Key(cKeyPath).SetValue(e.Path)
		for _, col := range e.Columns {
			if _, err := sec.NewKey(cKeyColumn, col); err != nil {
				return errors.WithStack(err)
			}
		}
		sec.Key(cKeyRows).SetValue(strconv.Itoa(e.Rows))

		labels := make([]string, 0, len(e.Labels))
		for k := range e.Labels {
			labels = append(labels, k)
		}
		sort.Strings(labels)
		for _, k := range labels {
			sec.Key(k).SetValue(e.Labels[k])
		}
	}
	if err := cfg.SaveTo(c.iniFile); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
