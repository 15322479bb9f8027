//go:build windows

package configpaths

import (
	"errors"
	"os"
	"path/filepath"
)

// SystemConfigDir returns the machine-wide configuration directory.
func SystemConfigDir() (string, error) {
	base := os.Getenv("ProgramData")
	if base == "" {
		return "", errors.New("ProgramData not set")
	}
	return filepath.Join(base, appDirName), nil
}
