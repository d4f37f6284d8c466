package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var nonAlnumRe = regexp.MustCompile(`[^0-9A-Za-z]+`)

// PathExist ..
func PathExist(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return true
}

func EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil && !os.IsExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

// SanitizeName upper-cases s and collapses every run of characters that are
// not ASCII letters or digits into a single "_".
// "Highland Ave / Tower St" -> "HIGHLAND_AVE_TOWER_ST"
func SanitizeName(s string) string {
	s = nonAlnumRe.ReplaceAllString(strings.ToUpper(s), "_")
	return strings.Trim(s, "_")
}

// GlobFiles returns the files matching any of the patterns inside dir,
// without descending into subdirectories. Names are sorted and unique.
func GlobFiles(dir string, patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	files := make([]string, 0)
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if st, err := os.Stat(m); err != nil || !st.Mode().IsRegular() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func RemoveDirectory(dir string) error {
	// Check if the directory exists
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Directory does not exist, nothing to do
		return nil
	}

	// Remove the directory and its contents
	err := os.RemoveAll(dir)
	if err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", dir, err)
	}

	return nil
}
