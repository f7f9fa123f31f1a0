package batch

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// StdinPath names the document read from standard input.
const StdinPath = "-"

// Collect expands paths into the list of SQL files to process. Directories
// are walked recursively for *.sql files, skipping hidden directories.
// Explicitly named files are kept whatever their extension. The result is
// sorted and free of duplicates.
func Collect(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		if root == StdinPath {
			add(root)
			continue
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSQLFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// IsSQLFile reports whether path has a .sql extension.
func IsSQLFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sql")
}

// Load reads the documents named by paths. StdinPath reads from stdin.
func Load(paths []string, stdin io.Reader) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		var (
			data []byte
			err  error
		)
		if path == StdinPath {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, Document{Path: path, Source: string(data)})
	}
	return docs, nil
}
