package deeplook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source is one raw delimited-text resource.
type Source struct {
	Name string
	Data []byte
}

// ReadSource reads a file into a Source named after its base name.
func ReadSource(ctx context.Context, path string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return Source{Name: filepath.Base(path), Data: data}, nil
}

// IsTableFile reports whether the path has a .csv or .tsv extension.
func IsTableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return true
	default:
		return false
	}
}

// ListResultFiles returns the .csv/.tsv files directly inside dir, sorted by name.
// Hidden files and editor lock files (~$name.csv) are skipped.
func ListResultFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", filepath.Base(dir), err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if IsTableFile(name) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// ParseSource decodes and parses a source. Files named *.tsv are split on tabs;
// everything else uses the configured delimiter.
func ParseSource(src Source, cfg Config) (Table, error) {
	text, err := DecodeText(src.Data, cfg.Encoding)
	if err != nil {
		return Table{}, fmt.Errorf("decode %s: %w", src.Name, err)
	}
	comma, err := delimiterByte(cfg.Delimiter)
	if err != nil {
		return Table{}, err
	}
	if strings.EqualFold(filepath.Ext(src.Name), ".tsv") {
		comma = '\t'
	}
	return ParseDelimited(text, comma), nil
}

// ResolveResultPaths picks the result files for a load: explicit args first, then
// the configured list, then every table file in the configured directory.
func ResolveResultPaths(args []string, cfg Config) ([]string, error) {
	if len(args) > 0 {
		return cloneStrings(args), nil
	}
	if len(cfg.ResultPaths) > 0 {
		return cloneStrings(cfg.ResultPaths), nil
	}
	if strings.TrimSpace(cfg.ResultDir) == "" {
		return nil, ErrNoSources
	}
	paths, err := ListResultFiles(cfg.ResultDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSources, cfg.ResultDir)
	}
	return paths, nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}
