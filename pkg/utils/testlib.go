package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

func GetGotExpErr(title string, got interface{}, exp interface{}) error {
	if got == exp {
		return nil
	}
	return errors.New(fmt.Sprintf("%s got=%v expected=%v", title, got, exp))
}

// InitTestDir returns an empty directory dedicated to testname.
// Anything left by a previous run is removed first.
func InitTestDir(testname string) (string, error) {
	rootDir := filepath.Join(os.TempDir(), "crashfilter", testname)
	if err := RemoveDirectory(rootDir); err != nil {
		return "", err
	}
	if err := EnsureDir(rootDir); err != nil {
		return "", err
	}
	return rootDir, nil
}

// WriteTestFile writes content to dir/name and returns the full path.
func WriteTestFile(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", errors.WithStack(err)
	}
	return path, nil
}
