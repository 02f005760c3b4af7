// Package scanner walks the target directory and classifies each regular
// file through the gpg inspection collaborator.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gpgsweep/logger"
)

// ErrNotDirectory marks a scan root that exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Scan lists the regular files under root. Non-recursive scans yield only
// files directly inside root; recursive scans yield every regular file
// reachable from it. Paths come back sorted lexicographically so repeated
// runs over an unchanged tree produce identical reports.
func Scan(root string, recursive bool) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: %w", root, ErrNotDirectory)
	}

	var files []string
	if recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warnf("Failed to access %s: %v", path, err)
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", root, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !entry.Type().IsRegular() {
				continue
			}
			files = append(files, filepath.Join(root, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
