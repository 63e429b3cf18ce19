package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

var loadDefaults = sync.OnceValues(func() (map[string]Dictionary, error) {
	return decodeDefaults(defaultsFS, "defaults")
})

// Defaults returns the embedded dictionaries keyed by locale. Callers get
// copies.
func Defaults() (map[string]Dictionary, error) {
	tables, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Dictionary, len(tables))
	for code, table := range tables {
		out[code] = table.Clone()
	}
	return out, nil
}

// DecodeDictionary parses a flat YAML (or JSON) mapping of key to text.
func DecodeDictionary(payload []byte) (Dictionary, error) {
	dict := Dictionary{}
	if err := yaml.Unmarshal(payload, &dict); err != nil {
		return nil, fmt.Errorf("i18n: decode dictionary: %w", err)
	}
	return dict, nil
}

func decodeDefaults(fsys fs.FS, dir string) (map[string]Dictionary, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read embedded defaults: %w", err)
	}
	tables := make(map[string]Dictionary, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		payload, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}
		dict, err := DecodeDictionary(payload)
		if err != nil {
			return nil, fmt.Errorf("i18n: %s: %w", entry.Name(), err)
		}
		tables[strings.TrimSuffix(entry.Name(), ".yaml")] = dict
	}
	return tables, nil
}
